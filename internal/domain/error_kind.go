package domain

import (
	"errors"
	"fmt"
	"strings"
)

// SignatureFailureMessage is the reject text the replica gateway returns when a
// request certificate fails signature verification. It is only used to tag
// errors from transports that do not tag their own failures.
const SignatureFailureMessage = "Invalid certificate: Signature verification failed"

// ErrorKind classifies remote call failures.
type ErrorKind int

const (
	// KindOther is any failure that is not specifically classified.
	KindOther ErrorKind = iota

	// KindTransientSignature is a certificate signature verification failure,
	// assumed recoverable by retrying.
	KindTransientSignature

	// KindAuthProvider is a failure reported by the identity provider during login.
	KindAuthProvider

	// KindNotAuthenticated is raised when an operation needs a session that does not exist.
	KindNotAuthenticated
)

// String returns a stable name for logs.
func (k ErrorKind) String() string {
	switch k {
	case KindTransientSignature:
		return "transient_signature"
	case KindAuthProvider:
		return "auth_provider"
	case KindNotAuthenticated:
		return "not_authenticated"
	default:
		return "other"
	}
}

// CallError tags a remote call failure with its kind.
//
// Adapters wrap transport errors in CallError at the boundary so callers
// classify with errors.As instead of inspecting messages.
type CallError struct {
	Kind ErrorKind
	// Op names the remote method, e.g. "delete_recipe". May be empty.
	Op  string
	Err error
}

// NewCallError builds a tagged error.
func NewCallError(kind ErrorKind, op string, err error) *CallError {
	return &CallError{Kind: kind, Op: op, Err: err}
}

func (e *CallError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// kinded is implemented by errors from other layers that know their own kind
// (for example the identity provider error type in ports).
type kinded interface {
	ErrorKind() ErrorKind
}

// Classify returns the kind of err.
//
// Order:
//  1. a *CallError anywhere in the chain
//  2. any error in the chain that reports its own kind
//  3. ErrNotAuthenticated
//  4. the signature failure text, for untagged errors
//
// A nil error is KindOther.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return KindNotAuthenticated
	}
	if strings.Contains(err.Error(), SignatureFailureMessage) {
		return KindTransientSignature
	}
	return KindOther
}

// IsTransientSignature is shorthand for Classify(err) == KindTransientSignature.
func IsTransientSignature(err error) bool {
	return Classify(err) == KindTransientSignature
}
