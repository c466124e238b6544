package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultMaxAttempts is the number of transient failures tolerated per call.
	DefaultMaxAttempts = 3

	// DefaultInitialDelay is the wait before the first retry.
	DefaultInitialDelay = 100 * time.Millisecond
)

// OtherErrorMode decides what a retrying call does with failures that are
// not transient signature errors.
type OtherErrorMode int

const (
	// OtherErrorsRetry logs the failure and invokes the operation again
	// without counting an attempt. This is the historical client behavior:
	// an operation that always fails this way is re-invoked until the
	// context is cancelled.
	OtherErrorsRetry OtherErrorMode = iota

	// OtherErrorsAbort returns the failure to the caller immediately.
	OtherErrorsAbort
)

// String returns the config spelling of the mode.
func (m OtherErrorMode) String() string {
	switch m {
	case OtherErrorsAbort:
		return "abort"
	default:
		return "retry"
	}
}

// ParseOtherErrorMode parses "retry" or "abort". The empty string means retry.
func ParseOtherErrorMode(s string) (OtherErrorMode, error) {
	switch s {
	case "", "retry":
		return OtherErrorsRetry, nil
	case "abort":
		return OtherErrorsAbort, nil
	default:
		return OtherErrorsRetry, fmt.Errorf("%w: unknown other-errors mode %q (want retry or abort)", ErrInvalidRetryPolicy, s)
	}
}

// RetryPolicy bounds the retries of a single remote call.
//
// A policy is immutable per call: the wrapper copies it at entry.
type RetryPolicy struct {
	// MaxAttempts is how many transient failures end the call (>= 1).
	MaxAttempts int

	// InitialDelay is the wait before the first retry (>= 0). Later waits
	// double: InitialDelay * 2^(k-1) before the k-th retry.
	InitialDelay time.Duration

	// OtherErrors selects the handling of non-transient failures.
	OtherErrors OtherErrorMode
}

// DefaultRetryPolicy returns 3 attempts starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		OtherErrors:  OtherErrorsRetry,
	}
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be >= 1, got %d", ErrInvalidRetryPolicy, p.MaxAttempts)
	}
	if p.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay must be >= 0, got %s", ErrInvalidRetryPolicy, p.InitialDelay)
	}
	if p.OtherErrors != OtherErrorsRetry && p.OtherErrors != OtherErrorsAbort {
		return fmt.Errorf("%w: unknown other-errors mode %d", ErrInvalidRetryPolicy, p.OtherErrors)
	}
	return nil
}

// Delay returns the wait before retry number attempt (1-based):
// InitialDelay * 2^(attempt-1). Values saturate instead of overflowing.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.InitialDelay <= 0 {
		return 0
	}
	shift := attempt - 1
	if shift >= 63 || p.InitialDelay > time.Duration(math.MaxInt64>>shift) {
		return time.Duration(math.MaxInt64)
	}
	return p.InitialDelay << shift
}
