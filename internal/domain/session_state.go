package domain

import "time"

// AuthState is the tri-state authentication flag of a session.
//
// AuthUnknown is the state before bootstrap has run; a session never returns
// to it once bootstrap has completed.
type AuthState int

const (
	AuthUnknown AuthState = iota
	AuthFalse
	AuthTrue
)

// String returns the lowercase name of the state.
func (s AuthState) String() string {
	switch s {
	case AuthFalse:
		return "false"
	case AuthTrue:
		return "true"
	default:
		return "unknown"
	}
}

// Known reports whether bootstrap has decided the state.
func (s AuthState) Known() bool {
	return s == AuthFalse || s == AuthTrue
}

// SessionState is a point-in-time copy of a client session.
//
// It carries only sanitized data (no keys, no live handles) so it is safe to
// log, print, or expose over a debug endpoint.
//
// Invariant: Principal is non-empty if and only if Auth == AuthTrue.
type SessionState struct {
	// Ready becomes true once, after the first bootstrap completes.
	Ready bool

	// Auth is the tri-state authentication flag.
	Auth AuthState

	// Principal is the textual identity of the authenticated user.
	Principal string

	// ExpiresAt is when the provider credential stops being valid.
	// Zero when unauthenticated or when the provider does not report expiry.
	ExpiresAt time.Time
}

// Authenticated reports whether the snapshot is in the authenticated state.
func (s SessionState) Authenticated() bool {
	return s.Auth == AuthTrue
}

// Unauthenticated returns the reset state used after logout or a failed bootstrap.
func Unauthenticated(ready bool) SessionState {
	return SessionState{Ready: ready, Auth: AuthFalse}
}
