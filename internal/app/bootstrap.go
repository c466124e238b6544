package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sufield/yummy/internal/adapters/outbound/backend"
	"github.com/sufield/yummy/internal/adapters/outbound/delegation"
	"github.com/sufield/yummy/internal/adapters/outbound/inmemory"
	"github.com/sufield/yummy/internal/adapters/outbound/spiffeauth"
	"github.com/sufield/yummy/internal/config"
	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/logging"
	"github.com/sufield/yummy/internal/ports"
)

// BootstrapOption adjusts how Bootstrap wires adapters.
type BootstrapOption func(*bootstrapOptions)

type bootstrapOptions struct {
	out          io.Writer
	opener       delegation.Opener
	clock        ports.Clock
	authFactory  ports.AuthClientFactory
	actorFactory ports.ActorFactory
}

// WithOutput is where the login URL is printed when no opener is set.
func WithOutput(w io.Writer) BootstrapOption {
	return func(o *bootstrapOptions) { o.out = w }
}

// WithOpener presents the login URL, for example by launching a browser.
func WithOpener(fn delegation.Opener) BootstrapOption {
	return func(o *bootstrapOptions) { o.opener = fn }
}

func WithBootstrapClock(c ports.Clock) BootstrapOption {
	return func(o *bootstrapOptions) { o.clock = c }
}

// WithAdapters replaces the adapters selected from the configuration.
func WithAdapters(auth ports.AuthClientFactory, actors ports.ActorFactory) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.authFactory = auth
		o.actorFactory = actors
	}
}

// Bootstrap wires application components:
// - Validates the configuration
// - Applies a default timeout if the caller didn't set one
// - Builds the identity provider and backend adapters for the network
// - Initializes the session
// - Starts the debug server when enabled
func Bootstrap(ctx context.Context, cfg config.FileConfig, opts ...BootstrapOption) (*Application, error) {
	o := bootstrapOptions{out: os.Stderr, clock: SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if (o.authFactory == nil) != (o.actorFactory == nil) {
		return nil, fmt.Errorf("auth and actor factories must be replaced together")
	}

	// Ensure we don't hang indefinitely if caller forgot a deadline
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
	}

	// Step 1: Validate configuration and derive policies
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	policy, err := config.RetryPolicy(cfg)
	if err != nil {
		return nil, err
	}
	ttl, err := config.MaxTimeToLive(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Debug != (config.DebugSection{}) {
		debug.Active = debug.Active.Merge(debug.Config{
			Enabled:          cfg.Debug.Enabled,
			SingleThreaded:   cfg.Debug.SingleThreaded,
			LocalDebugServer: cfg.Debug.Server,
			DebugServerAddr:  cfg.Debug.ServerAddr,
		})
	}

	// Step 2: Build adapters
	kind := config.ProviderKind(cfg)
	authFactory, actorFactory := o.authFactory, o.actorFactory
	if authFactory == nil {
		authFactory, actorFactory, err = buildAdapters(cfg, kind, o)
		if err != nil {
			return nil, fmt.Errorf("build %s adapters: %w", kind, err)
		}
	}

	// Step 3: Create and initialize the session
	session, err := NewSession(SessionConfig{
		AuthFactory:  authFactory,
		ActorFactory: actorFactory,
		CanisterID:   cfg.Backend.CanisterID,
		Login: ports.LoginOptions{
			IdentityProvider: config.IdentityProviderURL(cfg),
			MaxTimeToLive:    ttl,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Init(ctx)

	// Step 4: Notices and the delete flow
	notices := NewNoticeBoard(WithNoticeClock(o.clock), WithHistory(cfg.Notices.History))
	deleter, err := NewDeleter(session, notices)
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:   cfg,
		Session:  session,
		Notices:  notices,
		Deleter:  deleter,
		Policy:   policy,
		provider: kind,
		clock:    o.clock,
		log:      logging.Component("app"),
	}

	// Step 5: Debug server (no-op unless built with -tags debug and enabled)
	a.stopDebug = debug.Start(a)

	a.log.Debug().
		Str("network", cfg.Network).
		Str("provider", kind).
		Stringer("auth", session.Snapshot().Auth).
		Msg("bootstrapped")
	return a, nil
}

func buildAdapters(cfg config.FileConfig, kind string, o bootstrapOptions) (ports.AuthClientFactory, ports.ActorFactory, error) {
	switch kind {
	case config.ProviderMemory:
		return inmemory.NewProvider(), inmemory.NewBackend(), nil

	case config.ProviderDelegation:
		opener := o.opener
		if opener == nil {
			opener = delegation.PrintOpener(o.out)
		}
		log := logging.Component("delegation")
		auth, err := delegation.NewFactory(delegation.Config{
			StorePath:        cfg.Session.StorePath,
			CallbackAddr:     cfg.IdentityProvider.CallbackAddr,
			IdentityProvider: config.IdentityProviderURL(cfg),
			Opener:           opener,
			Runner:           debug.Active.Runner(),
			Logger:           &log,
			Now:              o.clock.Now,
		})
		if err != nil {
			return nil, nil, err
		}
		actors, err := newBackendFactory(cfg)
		return auth, actors, err

	case config.ProviderSPIFFE:
		log := logging.Component("spiffe")
		auth, err := spiffeauth.NewFactory(spiffeauth.Config{
			WorkloadSocket:            cfg.SPIFFE.WorkloadSocket,
			InitialFetchTimeout:       config.InitialFetchTimeout(cfg),
			ExpectedServerID:          cfg.SPIFFE.ExpectedServerSPIFFEID,
			ExpectedServerTrustDomain: cfg.SPIFFE.ExpectedServerTrustDomain,
			RequestTimeout:            config.BackendTimeout(cfg),
			Logger:                    &log,
			Now:                       o.clock.Now,
		})
		if err != nil {
			return nil, nil, err
		}
		actors, err := newBackendFactory(cfg)
		return auth, actors, err

	default:
		return nil, nil, fmt.Errorf("unknown identity provider kind %q", kind)
	}
}

func newBackendFactory(cfg config.FileConfig) (ports.ActorFactory, error) {
	opts := []backend.Option{backend.WithLogger(logging.Component("backend"))}
	if d := config.BackendTimeout(cfg); d > 0 {
		opts = append(opts, backend.WithHTTPClient(&http.Client{Timeout: d}))
	}
	return backend.NewFactory(config.BackendHost(cfg), opts...)
}
