// Package logging configures the process-wide zerolog logger.
//
// Binaries call ConfigureRuntime once at startup and tests call
// ConfigureTests; components then derive child loggers with Component.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "YUMMY_LOG_LEVEL"
	EnvLogTimestamp = "YUMMY_LOG_TIMESTAMP"
	EnvLogNoColor   = "YUMMY_LOG_NOCOLOR"
	EnvLogFormat    = "YUMMY_LOG_FORMAT"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config controls how log lines are rendered.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	Format    string
}

var (
	configureOnce sync.Once
	root          atomic.Pointer[zerolog.Logger]
)

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the root logger for profile. Only the first call has an effect.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		l := New(cfg, os.Stderr)
		root.Store(&l)
	})
}

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) zerolog.Logger {
	out := w
	if cfg.Format != FormatJSON {
		cw := zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor, TimeFormat: time.RFC3339}
		if !cfg.Timestamp {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		out = cw
	}
	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// L returns the root logger. Before Configure runs it is a no-op logger.
func L() zerolog.Logger {
	if l := root.Load(); l != nil {
		return *l
	}
	return zerolog.Nop()
}

// Component returns a child of the root logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, Timestamp: false, NoColor: true, Format: FormatConsole}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true, Format: FormatConsole}
	}
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if f, ok := parseFormat(os.Getenv(EnvLogFormat)); ok {
		cfg.Format = f
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
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func parseFormat(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case FormatConsole:
		return FormatConsole, true
	case FormatJSON:
		return FormatJSON, true
	default:
		return "", false
	}
}
