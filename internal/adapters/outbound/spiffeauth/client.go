package spiffeauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"

	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

const (
	DefaultInitialFetchTimeout = 30 * time.Second
	DefaultRequestTimeout      = 30 * time.Second
)

// Config configures a Factory. Exactly one of ExpectedServerID and
// ExpectedServerTrustDomain must be set.
type Config struct {
	// WorkloadSocket is the Workload API address (unix:// or tcp://, or a
	// bare path). Empty reads SPIFFE_ENDPOINT_SOCKET.
	WorkloadSocket string

	// InitialFetchTimeout bounds the wait for the first SVID.
	InitialFetchTimeout time.Duration

	ExpectedServerID          string
	ExpectedServerTrustDomain string

	// RequestTimeout is the timeout of the mTLS HTTP client.
	RequestTimeout time.Duration

	// Dial defaults to DialWorkloadAPI.
	Dial Dialer

	Logger *zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Authorizer builds the server authorizer named by cfg.
func Authorizer(cfg Config) (tlsconfig.Authorizer, error) {
	switch {
	case cfg.ExpectedServerID != "" && cfg.ExpectedServerTrustDomain != "":
		return nil, errors.New("set only one of expected server ID or trust domain")
	case cfg.ExpectedServerID != "":
		id, err := spiffeid.FromString(cfg.ExpectedServerID)
		if err != nil {
			return nil, fmt.Errorf("invalid expected server ID: %w", err)
		}
		return tlsconfig.AuthorizeID(id), nil
	case cfg.ExpectedServerTrustDomain != "":
		td, err := spiffeid.TrustDomainFromString(cfg.ExpectedServerTrustDomain)
		if err != nil {
			return nil, fmt.Errorf("invalid expected server trust domain: %w", err)
		}
		return tlsconfig.AuthorizeMemberOf(td), nil
	default:
		return nil, errors.New("expected server ID or trust domain is required")
	}
}

// Factory creates SPIFFE auth clients.
type Factory struct {
	cfg        Config
	authorizer tlsconfig.Authorizer
	log        zerolog.Logger
}

var _ ports.AuthClientFactory = (*Factory)(nil)

// NewFactory validates cfg and fills in defaults.
func NewFactory(cfg Config) (*Factory, error) {
	authorizer, err := Authorizer(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.InitialFetchTimeout <= 0 {
		cfg.InitialFetchTimeout = DefaultInitialFetchTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Dial == nil {
		cfg.Dial = DialWorkloadAPI
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Factory{cfg: cfg, authorizer: authorizer, log: log}, nil
}

// Create returns a client that has not contacted the Workload API yet.
func (f *Factory) Create(_ context.Context, _ ports.CreateOptions) (ports.AuthClient, error) {
	if debug.Faults.ShouldFailCreate() {
		return nil, fmt.Errorf("%w: injected fault", ports.ErrProviderUnavailable)
	}
	return &Client{factory: f}, nil
}

// Client holds the Workload API connection between Login and Logout.
type Client struct {
	factory *Factory

	mu       sync.Mutex
	source   Source
	http     *http.Client
	inFlight bool
}

var _ ports.AuthClient = (*Client)(nil)

func (c *Client) IsAuthenticated(_ context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.identityLocked()
	return err == nil, nil
}

func (c *Client) Identity(_ context.Context) (ports.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identityLocked()
}

func (c *Client) identityLocked() (*Identity, error) {
	if c.source == nil {
		return nil, domain.ErrNotAuthenticated
	}
	svid, err := c.source.GetX509SVID()
	if err != nil || len(svid.Certificates) == 0 {
		return nil, domain.ErrNotAuthenticated
	}
	expires := svid.Certificates[0].NotAfter
	if !c.factory.cfg.Now().Before(expires) {
		return nil, domain.ErrNotAuthenticated
	}
	return &Identity{principal: svid.ID.String(), expires: expires, client: c.http}, nil
}

// Login connects to the Workload API and waits for the first SVID. The
// login options have no effect; a workload has nothing to choose.
func (c *Client) Login(ctx context.Context, _ ports.LoginOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if debug.Faults.ShouldRejectLogin() {
		return ports.NewAuthProviderError("UserInterrupt")
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ports.ErrLoginInProgress
	}
	if c.source != nil {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	cfg := c.factory.cfg
	fetchCtx, cancel := context.WithTimeout(ctx, cfg.InitialFetchTimeout)
	defer cancel()

	src, err := cfg.Dial(fetchCtx, cfg.WorkloadSocket)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ports.ErrProviderUnavailable, err)
	}
	src = &closeOnce{Source: src}

	client := &http.Client{
		Transport: &taggingTransport{base: &http.Transport{
			TLSClientConfig:     tlsconfig.MTLSClientConfig(src, src, c.factory.authorizer),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}},
		Timeout: cfg.RequestTimeout,
	}

	c.mu.Lock()
	c.source, c.http = src, client
	id, idErr := c.identityLocked()
	if idErr != nil {
		c.source, c.http = nil, nil
	}
	c.mu.Unlock()

	if idErr != nil {
		_ = src.Close()
		return fmt.Errorf("%w: no usable SVID", ports.ErrProviderUnavailable)
	}
	c.factory.log.Info().Str("principal", id.Principal()).Time("expires", id.ExpiresAt()).Msg("SVID acquired")
	return nil
}

// Logout releases the Workload API connection.
func (c *Client) Logout(_ context.Context) error {
	c.mu.Lock()
	src, client := c.source, c.http
	c.source, c.http = nil, nil
	c.mu.Unlock()

	if client != nil {
		client.CloseIdleConnections()
	}
	if src == nil {
		return nil
	}
	if err := src.Close(); err != nil {
		return fmt.Errorf("close X509Source: %w", err)
	}
	c.factory.log.Info().Msg("SVID released")
	return nil
}

// Close is called when the owning session is destroyed.
func (c *Client) Close(ctx context.Context) error {
	return c.Logout(ctx)
}

// Identity is the workload's SVID identity.
type Identity struct {
	principal string
	expires   time.Time
	client    *http.Client
}

var _ ports.Identity = (*Identity)(nil)

// Principal is the SPIFFE ID.
func (i *Identity) Principal() string    { return i.principal }
func (i *Identity) ExpiresAt() time.Time { return i.expires }

// HTTPClient returns the mTLS client presenting the SVID.
func (i *Identity) HTTPClient() *http.Client { return i.client }
