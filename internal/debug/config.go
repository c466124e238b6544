package debug

import (
	"os"
	"strconv"

	"github.com/sufield/yummy/internal/bg"
)

// Environment variables read by Init.
const (
	EnvDebug        = "YUMMY_DEBUG"
	EnvSingleThread = "YUMMY_DEBUG_SINGLE_THREAD"
	EnvServer       = "YUMMY_DEBUG_SERVER"
	EnvServerAddr   = "YUMMY_DEBUG_ADDR"

	DefaultServerAddr = "127.0.0.1:6061"
)

// Config holds debug mode configuration
type Config struct {
	// Enabled is the global debug on/off switch
	Enabled bool

	// SingleThreaded runs blocking callbacks, such as the login URL opener,
	// inline instead of in goroutines
	SingleThreaded bool

	// LocalDebugServer enables localhost debug HTTP server
	LocalDebugServer bool

	// DebugServerAddr is the address for the debug HTTP server
	DebugServerAddr string
}

// Active is the global debug configuration
var Active Config

// Init initializes debug configuration from environment variables
func Init() {
	Active = FromEnv()
}

// FromEnv reads the debug configuration without installing it.
// Any sub-feature being on turns Enabled on.
func FromEnv() Config {
	cfg := Config{
		Enabled:          parseBool(os.Getenv(EnvDebug), false),
		SingleThreaded:   parseBool(os.Getenv(EnvSingleThread), false),
		LocalDebugServer: parseBool(os.Getenv(EnvServer), false),
		DebugServerAddr:  getEnvOrDefault(EnvServerAddr, DefaultServerAddr),
	}
	if cfg.SingleThreaded || cfg.LocalDebugServer {
		cfg.Enabled = true
	}
	return cfg
}

// Merge turns on the features set in other. Used to combine file and
// environment configuration; the environment can only enable, not disable.
func (c Config) Merge(other Config) Config {
	c.Enabled = c.Enabled || other.Enabled
	c.SingleThreaded = c.SingleThreaded || other.SingleThreaded
	c.LocalDebugServer = c.LocalDebugServer || other.LocalDebugServer
	if other.DebugServerAddr != "" && other.DebugServerAddr != DefaultServerAddr {
		c.DebugServerAddr = other.DebugServerAddr
	}
	if c.DebugServerAddr == "" {
		c.DebugServerAddr = DefaultServerAddr
	}
	if c.SingleThreaded || c.LocalDebugServer {
		c.Enabled = true
	}
	return c
}

// Runner returns the background runner matching the configuration.
func (c Config) Runner() bg.Runner {
	if c.SingleThreaded {
		return bg.Sync{}
	}
	return bg.Async{}
}

func parseBool(s string, defaultVal bool) bool {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsEnabled returns whether debug mode is enabled
func IsEnabled() bool {
	return Active.Enabled
}
