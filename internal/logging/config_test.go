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
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := parseLevel(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")
	t.Setenv(EnvLogFormat, "JSON")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.ErrorLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestApplyEnvOverrides_IgnoresGarbage(t *testing.T) {
	t.Setenv(EnvLogLevel, "shout")
	t.Setenv(EnvLogTimestamp, "maybe")
	t.Setenv(EnvLogFormat, "xml")

	cfg := defaultConfig(ProfileTest)
	applyEnvOverrides(&cfg)

	assert.Equal(t, defaultConfig(ProfileTest), cfg)
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: zerolog.WarnLevel, Format: FormatJSON}, &buf)

	l.Info().Msg("hidden")
	l.Warn().Str("component", "session").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "session", rec["component"])
	assert.Equal(t, "shown", rec["message"])
	assert.NotContains(t, rec, "time")
}

func TestL_BeforeConfigureIsNop(t *testing.T) {
	if root.Load() != nil {
		t.Skip("root logger already configured by another test")
	}
	l := L()
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}
