package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	ClientDefaults(v)

	cfg, err := LoadClient(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, "library", cfg.Zone)
	assert.Equal(t, 400, cfg.MaxBatchSize)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.NetworkRetryDelay)
}

func TestLoadClient_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "shelfsync.yaml")
	require.NoError(t, os.WriteFile(file, []byte("zone: from-file\nmax-batch-size: 50\nserver: http://file:8080\n"), 0o600))
	t.Setenv("SHELFSYNC_MAX_BATCH_SIZE", "70")
	t.Setenv("SHELFSYNC_POLL_INTERVAL", "5s")
	t.Setenv("SHELFSYNC_NETWORK_RETRY_DELAY", "750ms")

	v, err := New(file)
	require.NoError(t, err)
	ClientDefaults(v)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(KeyServer, "", "")
	require.NoError(t, flags.Parse([]string{"--server", "http://flag:9090"}))
	require.NoError(t, Bind(v, flags))

	cfg, err := LoadClient(v)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:9090", cfg.Server, "flag wins")
	assert.Equal(t, 70, cfg.MaxBatchSize, "env wins over file")
	assert.Equal(t, "from-file", cfg.Zone)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 750*time.Millisecond, cfg.NetworkRetryDelay)
}

func TestLoadClient_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "server without scheme", key: KeyServer, value: "localhost"},
		{name: "empty zone", key: KeyZone, value: ""},
		{name: "zero batch", key: KeyMaxBatchSize, value: 0},
		{name: "bad level", key: KeyLogLevel, value: "loud"},
		{name: "zero network retry delay", key: KeyNetworkRetryDelay, value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New("")
			require.NoError(t, err)
			ClientDefaults(v)
			v.Set(tt.key, tt.value)

			_, err = LoadClient(v)
			assert.Error(t, err)
		})
	}
}

func TestLoadServer(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	ServerDefaults(v)

	_, err = LoadServer(v)
	assert.ErrorIs(t, err, ErrMissingSecret)

	v.Set(KeyJWTSecret, "s3cret")
	cfg, err := LoadServer(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*24*time.Hour, cfg.ChangeRetention)
	assert.Equal(t, time.Minute, cfg.RateWindow)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogger("warn", "", JSONFormat, &buf)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	logger.Info("hidden")
	logger.Warn("shown", slog.String("zone", "library"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"zone":"library"`)

	_, _, err = NewLogger("verbose", "", TextFormat, &buf)
	assert.Error(t, err)
}

func TestNewLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "client.log")
	var fallback bytes.Buffer

	logger, closer, err := NewLogger("debug", file, TextFormat, &fallback)
	require.NoError(t, err)
	logger.Debug("to file")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "to file")
	assert.Empty(t, fallback.String())
}
