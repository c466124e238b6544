package delegation

import (
	"crypto/ed25519"
	"time"

	"github.com/sufield/yummy/internal/ports"
)

// Identity is a delegated identity: requests are signed with the session
// key, and the delegation chain proves the user's key authorized it.
type Identity struct {
	principal string
	expires   time.Time
	key       ed25519.PrivateKey
	chain     []byte
}

var (
	_ ports.Identity          = (*Identity)(nil)
	_ ports.Signer            = (*Identity)(nil)
	_ ports.DelegationCarrier = (*Identity)(nil)
)

func newIdentity(s session) *Identity {
	return &Identity{
		principal: PrincipalFromPublicKey(s.userKey),
		expires:   s.expiration,
		key:       s.key,
		chain:     append([]byte(nil), s.chain...),
	}
}

func (i *Identity) Principal() string    { return i.principal }
func (i *Identity) ExpiresAt() time.Time { return i.expires }

// PublicKey returns the session public key.
func (i *Identity) PublicKey() []byte {
	return append([]byte(nil), i.key.Public().(ed25519.PublicKey)...)
}

func (i *Identity) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(i.key, msg), nil
}

func (i *Identity) Delegation() []byte {
	return append([]byte(nil), i.chain...)
}
