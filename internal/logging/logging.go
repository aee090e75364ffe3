// Package logging builds the zerolog logger used by the command-line tools.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel  = "SHIPENGINE_LOG_LEVEL"
	EnvLogFormat = "SHIPENGINE_LOG_FORMAT"
)

// Format selects the log encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config describes how to build a logger.
type Config struct {
	Level  zerolog.Level
	Format Format
	Out    io.Writer
}

// DefaultConfig logs at info level to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:  zerolog.InfoLevel,
		Format: FormatConsole,
		Out:    os.Stderr,
	}
}

// New returns a logger for app configured from the environment.
func New(app string) zerolog.Logger {
	cfg := DefaultConfig()
	applyEnvOverrides(&cfg, os.Getenv)
	return Build(app, cfg)
}

// Build returns a logger for app from cfg.
func Build(app string, cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(cfg.Level).With().Timestamp().Str("app", app).Logger()
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	switch Format(strings.ToLower(strings.TrimSpace(getenv(EnvLogFormat)))) {
	case FormatJSON:
		cfg.Format = FormatJSON
	case FormatConsole:
		cfg.Format = FormatConsole
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
