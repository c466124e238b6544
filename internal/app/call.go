package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/logging"
	"github.com/sufield/yummy/internal/ports"
)

// CallOption configures a single Call.
type CallOption func(*callConfig)

type callConfig struct {
	name    string
	policy  domain.RetryPolicy
	clock   ports.Clock
	log     zerolog.Logger
	notices *NoticeBoard
	onRetry func(attempt int, delay time.Duration, err error)
}

// WithPolicy replaces the default 3 x 100ms policy.
func WithPolicy(p domain.RetryPolicy) CallOption {
	return func(c *callConfig) { c.policy = p }
}

// WithClock replaces the wall clock used for backoff.
func WithClock(clock ports.Clock) CallOption {
	return func(c *callConfig) { c.clock = clock }
}

func WithLogger(l zerolog.Logger) CallOption {
	return func(c *callConfig) { c.log = l }
}

// WithNotices posts terminal outcomes to the notice board.
func WithNotices(n *NoticeBoard) CallOption {
	return func(c *callConfig) { c.notices = n }
}

// WithName labels the call in logs.
func WithName(name string) CallOption {
	return func(c *callConfig) { c.name = name }
}

// OnRetry is invoked before each backoff sleep.
func OnRetry(fn func(attempt int, delay time.Duration, err error)) CallOption {
	return func(c *callConfig) { c.onRetry = fn }
}

var errNilGuard = errors.New("call: session guard is nil")

// Call invokes op and retries it while it fails with a transient signature
// error.
//
// After policy.MaxAttempts transient failures the call ends: if guard is not
// authenticated it is logged out once and Call returns the zero value and a
// nil error; otherwise the last error is returned. The k-th retry waits
// InitialDelay * 2^(k-1).
//
// Other failures are not counted. With OtherErrorsRetry (the default) they are
// logged and op is invoked again; with OtherErrorsAbort they are returned.
// Cancelling ctx ends the call with ctx.Err() before the next attempt or
// during a backoff.
func Call[T any](ctx context.Context, guard SessionGuard, op func(context.Context) (T, error), opts ...CallOption) (T, error) {
	var zero T
	if guard == nil {
		return zero, errNilGuard
	}

	cfg := callConfig{
		policy: domain.DefaultRetryPolicy(),
		clock:  SystemClock{},
		log:    logging.Component("call"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.policy.Validate(); err != nil {
		return zero, err
	}
	log := cfg.log
	if cfg.name != "" {
		log = log.With().Str("op", cfg.name).Logger()
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		if !domain.IsTransientSignature(err) {
			if cfg.policy.OtherErrors == domain.OtherErrorsAbort {
				return zero, err
			}
			log.Warn().Err(err).Msg("call failed, retrying")
			continue
		}

		attempts++
		if attempts >= cfg.policy.MaxAttempts {
			if !guard.IsAuthenticated() {
				log.Warn().Err(err).Int("attempts", attempts).Msg("retries exhausted without a session, logging out")
				if lerr := guard.Logout(ctx); lerr != nil {
					log.Warn().Err(lerr).Msg("forced logout")
				}
				cfg.notice("Session expired, please log in again", domain.SeverityWarning)
				return zero, nil
			}
			log.Error().Err(err).Int("attempts", attempts).Msg("retries exhausted")
			cfg.notice(err.Error(), domain.SeverityError)
			return zero, err
		}

		delay := cfg.policy.Delay(attempts)
		log.Debug().Err(err).Int("attempt", attempts).Dur("delay", delay).Msg("signature check failed, backing off")
		if cfg.onRetry != nil {
			cfg.onRetry(attempts, delay, err)
		}
		if err := cfg.clock.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

func (c *callConfig) notice(text string, sev domain.Severity) {
	if c.notices != nil {
		c.notices.Show(text, sev, 0)
	}
}
