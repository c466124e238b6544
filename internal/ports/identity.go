package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/sufield/yummy/internal/domain"
)

// Identity is an opaque credential handle issued by the identity provider.
//
// Adapters may additionally implement Signer and DelegationCarrier; callers
// discover those with type assertions.
type Identity interface {
	// Principal is the textual identity of the user or workload.
	Principal() string

	// ExpiresAt is when the credential stops being valid (zero if unknown).
	ExpiresAt() time.Time
}

// Signer is implemented by identities that hold a signing key.
type Signer interface {
	PublicKey() []byte
	Sign(msg []byte) ([]byte, error)
}

// DelegationCarrier is implemented by identities that carry a delegation chain
// proving the session key may act for the principal.
type DelegationCarrier interface {
	// Delegation returns the encoded chain.
	Delegation() []byte
}

// CreateOptions configures auth client creation.
type CreateOptions struct {
	// DisableIdle turns off the provider's idle-logout timer.
	DisableIdle bool
}

// LoginOptions configures an interactive login.
type LoginOptions struct {
	// IdentityProvider is the provider URL. Empty selects the adapter default.
	IdentityProvider string

	// MaxTimeToLive is the maximum session lifetime requested from the provider.
	// Adapters convert it to the provider's native unit.
	MaxTimeToLive time.Duration
}

// AuthClient is the client half of the identity provider contract.
//
// Error Contract:
//   - IsAuthenticated returns ErrStoreCorrupt if stored credentials cannot be read
//   - Identity returns domain.ErrNotAuthenticated when no session exists
//   - Login returns *AuthProviderError when the provider reports a failure,
//     ErrProviderUnavailable when it cannot be reached, ErrLoginInProgress if
//     another login is pending, or ctx.Err() if the context ends first
//   - Logout is safe to call when no session exists
type AuthClient interface {
	// IsAuthenticated reports whether a usable session already exists.
	IsAuthenticated(ctx context.Context) (bool, error)

	// Identity returns the current credential handle.
	Identity(ctx context.Context) (Identity, error)

	// Login runs the provider's login flow and returns once it has succeeded
	// or failed.
	Login(ctx context.Context, opts LoginOptions) error

	// Logout invalidates the session with the provider.
	Logout(ctx context.Context) error
}

// AuthClientFactory creates auth clients.
//
// Error Contract:
//   - Create returns ErrProviderUnavailable or ErrStoreCorrupt (wrapped) on failure
type AuthClientFactory interface {
	Create(ctx context.Context, opts CreateOptions) (AuthClient, error)
}

// AuthProviderError carries the payload of a provider-reported login failure.
type AuthProviderError struct {
	Payload string
}

// NewAuthProviderError builds an AuthProviderError.
func NewAuthProviderError(payload string) *AuthProviderError {
	return &AuthProviderError{Payload: payload}
}

func (e *AuthProviderError) Error() string {
	return fmt.Sprintf("identity provider: %s", e.Payload)
}

// ErrorKind lets domain.Classify recognize provider errors.
func (e *AuthProviderError) ErrorKind() domain.ErrorKind {
	return domain.KindAuthProvider
}
