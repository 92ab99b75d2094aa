// Package config загружает настройки клиента и сервера через viper:
// флаги cobra, переменные окружения SHELFSYNC_* и необязательный файл.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "SHELFSYNC"

// Ключи клиента
const (
	KeyServer       = "server"
	KeyDB           = "db"
	KeyZone         = "zone"
	KeyToken        = "token"
	KeyLogLevel     = "log-level"
	KeyLogFile      = "log-file"
	KeyMaxBatchSize = "max-batch-size"
	KeyPollInterval = "poll-interval"

	KeyNetworkRetryDelay = "network-retry-delay"
)

// Ключи сервера
const (
	KeyAddr            = "addr"
	KeyJWTSecret       = "jwt-secret"
	KeyPageSize        = "page-size"
	KeyRateLimit       = "rate-limit"
	KeyRateWindow      = "rate-window"
	KeyChangeRetention = "change-retention"
	KeyPruneInterval   = "prune-interval"
)

// Client настройки клиента синхронизации
type Client struct {
	Server            string
	DB                string
	Zone              string
	Token             string
	LogLevel          string
	LogFile           string
	MaxBatchSize      int
	PollInterval      time.Duration
	NetworkRetryDelay time.Duration
}

// Server настройки эталонного сервера
type Server struct {
	Addr            string
	DB              string
	JWTSecret       string
	LogLevel        string
	LogFile         string
	MaxBatchSize    int
	PageSize        int
	RateLimit       int
	RateWindow      time.Duration
	ChangeRetention time.Duration
	PruneInterval   time.Duration
}

// ErrMissingSecret возвращается, если не задан секрет подписи токенов
var ErrMissingSecret = errors.New("jwt-secret is required")

// New создает viper с окружением SHELFSYNC_* (дефисы заменяются на _).
// Empty configFile skips the file.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Bind привязывает флаги команды; флаг, заданный явно, важнее окружения и файла
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// ClientDefaults регистрирует значения по умолчанию клиента
func ClientDefaults(v *viper.Viper) {
	v.SetDefault(KeyServer, "http://localhost:8080")
	v.SetDefault(KeyDB, "shelfsync.db")
	v.SetDefault(KeyZone, "library")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMaxBatchSize, 400)
	v.SetDefault(KeyPollInterval, 30*time.Second)
	v.SetDefault(KeyNetworkRetryDelay, 5*time.Second)
}

// ServerDefaults регистрирует значения по умолчанию сервера
func ServerDefaults(v *viper.Viper) {
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyDB, "shelfsync-server.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMaxBatchSize, 400)
	v.SetDefault(KeyPageSize, 200)
	v.SetDefault(KeyRateLimit, 600)
	v.SetDefault(KeyRateWindow, time.Minute)
	v.SetDefault(KeyChangeRetention, 30*24*time.Hour)
	v.SetDefault(KeyPruneInterval, time.Hour)
}

// LoadClient читает и проверяет настройки клиента
func LoadClient(v *viper.Viper) (*Client, error) {
	cfg := &Client{
		Server:            v.GetString(KeyServer),
		DB:                v.GetString(KeyDB),
		Zone:              v.GetString(KeyZone),
		Token:             v.GetString(KeyToken),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
		MaxBatchSize:      v.GetInt(KeyMaxBatchSize),
		PollInterval:      v.GetDuration(KeyPollInterval),
		NetworkRetryDelay: v.GetDuration(KeyNetworkRetryDelay),
	}

	u, err := url.Parse(cfg.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", cfg.Server)
	}
	if cfg.DB == "" {
		return nil, errors.New("db path is required")
	}
	if cfg.Zone == "" {
		return nil, errors.New("zone is required")
	}
	if cfg.MaxBatchSize <= 0 {
		return nil, fmt.Errorf("max-batch-size must be positive, got %d", cfg.MaxBatchSize)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll-interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.NetworkRetryDelay <= 0 {
		return nil, fmt.Errorf("network-retry-delay must be positive, got %s", cfg.NetworkRetryDelay)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadServer читает и проверяет настройки сервера
func LoadServer(v *viper.Viper) (*Server, error) {
	cfg := &Server{
		Addr:            v.GetString(KeyAddr),
		DB:              v.GetString(KeyDB),
		JWTSecret:       v.GetString(KeyJWTSecret),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFile:         v.GetString(KeyLogFile),
		MaxBatchSize:    v.GetInt(KeyMaxBatchSize),
		PageSize:        v.GetInt(KeyPageSize),
		RateLimit:       v.GetInt(KeyRateLimit),
		RateWindow:      v.GetDuration(KeyRateWindow),
		ChangeRetention: v.GetDuration(KeyChangeRetention),
		PruneInterval:   v.GetDuration(KeyPruneInterval),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.MaxBatchSize <= 0 || cfg.PageSize <= 0 {
		return nil, errors.New("max-batch-size and page-size must be positive")
	}
	if cfg.RateLimit <= 0 || cfg.RateWindow <= 0 {
		return nil, errors.New("rate-limit and rate-window must be positive")
	}
	if cfg.ChangeRetention <= 0 || cfg.PruneInterval <= 0 {
		return nil, errors.New("change-retention and prune-interval must be positive")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}
