package debug

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sufield/yummy/internal/logging"
)

// Logger is the printf-style debug surface used by debug tooling.
//
//	logger := debug.GetLogger()
//	logger.Debugf("armed %d signature failures", n)
type Logger interface {
	Debugf(format string, args ...any)
	Debug(args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Debug(...any)          {}

// zeroLogger writes debug lines through zerolog regardless of the root level.
type zeroLogger struct {
	l zerolog.Logger
}

func (z zeroLogger) Debugf(format string, args ...any) {
	z.l.Debug().Msgf(format, args...)
}

func (z zeroLogger) Debug(args ...any) {
	z.l.Debug().Msg(fmt.Sprint(args...))
}

var (
	l    Logger = nopLogger{}
	once sync.Once
)

// GetLogger returns the configured debug logger.
func GetLogger() Logger {
	return l
}

// InitLogger installs the debug logger once Active is known.
// Call it after Init and after logging is configured.
func InitLogger() {
	once.Do(func() {
		if Active.Enabled {
			l = newZeroLogger(logging.Component("debug"))
			l.Debug("debug logging enabled")
		}
	})
}

func newZeroLogger(base zerolog.Logger) Logger {
	return zeroLogger{l: base.Level(zerolog.DebugLevel)}
}
