package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

// DefaultPrincipal is the principal a login produces unless configured.
const DefaultPrincipal = "2vxsx-fae-memory"

// Identity is an in-memory credential.
type Identity struct {
	principal string
	expires   time.Time
}

var _ ports.Identity = Identity{}

// NewIdentity builds an identity; a zero expires means no expiry.
func NewIdentity(principal string, expires time.Time) Identity {
	return Identity{principal: principal, expires: expires}
}

func (i Identity) Principal() string    { return i.principal }
func (i Identity) ExpiresAt() time.Time { return i.expires }

// Counts records provider usage.
type Counts struct {
	Creates int
	Logins  int
	Logouts int
}

// Provider is a scripted identity provider. A single Provider is both the
// factory and the client it creates.
type Provider struct {
	mu            sync.Mutex
	principal     string
	authenticated bool
	failCreate    bool
	loginErr      error
	lastLogin     ports.LoginOptions
	now           func() time.Time
	counts        Counts
}

var (
	_ ports.AuthClientFactory = (*Provider)(nil)
	_ ports.AuthClient        = (*Provider)(nil)
)

// ProviderOption scripts a Provider.
type ProviderOption func(*Provider)

// WithExistingSession starts the provider already logged in as principal.
func WithExistingSession(principal string) ProviderOption {
	return func(p *Provider) {
		p.principal = principal
		p.authenticated = true
	}
}

// WithPrincipal sets the principal a successful login produces.
func WithPrincipal(principal string) ProviderOption {
	return func(p *Provider) { p.principal = principal }
}

// WithLoginError makes every login fail with err.
func WithLoginError(err error) ProviderOption {
	return func(p *Provider) { p.loginErr = err }
}

// WithFailingCreate makes Create fail.
func WithFailingCreate() ProviderOption {
	return func(p *Provider) { p.failCreate = true }
}

func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{principal: DefaultPrincipal, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Create(ctx context.Context, opts ports.CreateOptions) (ports.AuthClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts.Creates++
	if p.failCreate || debug.Faults.ShouldFailCreate() {
		return nil, fmt.Errorf("create in-memory client: %w", ports.ErrProviderUnavailable)
	}
	return p, nil
}

func (p *Provider) IsAuthenticated(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticated, nil
}

func (p *Provider) Identity(ctx context.Context) (ports.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authenticated {
		return nil, domain.ErrNotAuthenticated
	}
	var expires time.Time
	if p.lastLogin.MaxTimeToLive > 0 {
		expires = p.now().Add(p.lastLogin.MaxTimeToLive)
	}
	return NewIdentity(p.principal, expires), nil
}

// Login succeeds immediately unless scripted or faulted otherwise.
func (p *Provider) Login(ctx context.Context, opts ports.LoginOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts.Logins++
	if debug.Faults.ShouldRejectLogin() {
		return ports.NewAuthProviderError("UserInterrupt")
	}
	if p.loginErr != nil {
		return p.loginErr
	}
	p.lastLogin = opts
	p.authenticated = true
	return nil
}

func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts.Logouts++
	p.authenticated = false
	return nil
}

// LastLogin returns the options of the most recent successful login.
func (p *Provider) LastLogin() ports.LoginOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLogin
}

func (p *Provider) Counts() Counts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts
}
