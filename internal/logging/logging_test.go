package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw    string
		want   zerolog.Level
		wantOK bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARNING ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"verbose", zerolog.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseLevel(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{EnvLogLevel: "debug", EnvLogFormat: "JSON"}
	cfg := DefaultConfig()
	applyEnvOverrides(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestApplyEnvOverrides_UnknownFormatIgnored(t *testing.T) {
	cfg := DefaultConfig()
	applyEnvOverrides(&cfg, func(k string) string {
		if k == EnvLogFormat {
			return "xml"
		}
		return ""
	})
	assert.Equal(t, FormatConsole, cfg.Format)
}

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Build("shipengine", Config{Level: zerolog.InfoLevel, Format: FormatJSON, Out: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Str("method", "carrier.list.v1").Msg("call")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "shipengine", line["app"])
	assert.Equal(t, "carrier.list.v1", line["method"])
	assert.Equal(t, "call", line["message"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestBuild_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := Build("shipengine", Config{Level: zerolog.InfoLevel, Format: FormatConsole, Out: &buf})
	logger.Info().Msg("ready")

	assert.Contains(t, buf.String(), "ready")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output is not JSON")
}
