package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFormat формат записей лога
type LogFormat int

const (
	// TextFormat для CLI
	TextFormat LogFormat = iota
	// JSONFormat для сервера
	JSONFormat
)

// ParseLevel переводит debug/info/warn/error в slog.Level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// NewLogger создает slog логгер. With a non-empty file the log goes to a
// rotating file instead of fallback. The returned closer closes the file.
func NewLogger(level, file string, format LogFormat, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	var closer io.Closer = nopCloser{}
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // мегабайты
			MaxBackups: 3,
			MaxAge:     28, // дни
		}
		out = rotating
		closer = rotating
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
