// Package yummy is the client library of the yummy recipe-sharing service.
//
// It keeps an authenticated session with the identity provider, calls the
// recipe backend with bounded retry for transient signature failures, and
// reports outcomes as short-lived notices.
//
// Quick Start:
//
//	client, shutdown, err := yummy.Open("yummy.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown()
//
//	if !client.Session().Authenticated() {
//	    if err := client.Login(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	names, err := client.RecipeNames(ctx)
//
// Configuration (yummy.yaml):
//
//	network: local
//	backend:
//	  canister_id: bkyz2-fmaaa-aaaaa-qaaaq-cai
//	identity_provider:
//	  canister_id: rdmx6-jaaaa-aaaaa-aaadq-cai
//
// Environment variables (DFX_NETWORK, CANISTER_ID_YUMMY_BACKEND,
// CANISTER_ID_INTERNET_IDENTITY and the YUMMY_* family) override the file.
package yummy

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sufield/yummy/internal/app"
	"github.com/sufield/yummy/internal/config"
	"github.com/sufield/yummy/internal/domain"
)

// Public names for the values the client returns.
type (
	SessionState = domain.SessionState
	AuthState    = domain.AuthState
	Notice       = domain.Notice
	Severity     = domain.Severity
	User         = domain.User
	RecipeBrief  = domain.RecipeBrief
	BackendError = domain.BackendError
)

// Errors callers may test for with errors.Is.
var (
	ErrNotAuthenticated = domain.ErrNotAuthenticated
	ErrSessionDestroyed = domain.ErrSessionDestroyed
	ErrEmptyName        = domain.ErrEmptyName
)

// Option adjusts Open.
type Option func(*options)

type options struct {
	opener func(ctx context.Context, url string) error
	out    io.Writer
}

// WithBrowser sets how the login URL is presented, for example by launching
// a browser. By default it is printed to the output writer.
func WithBrowser(open func(ctx context.Context, url string) error) Option {
	return func(o *options) { o.opener = open }
}

// WithOutput sets where the login URL is printed. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// Client is an open yummy client.
type Client struct {
	app *app.Application
}

// OpenFromEnv opens the client configured by the YUMMY_CONFIG file.
//
// It returns an error if YUMMY_CONFIG is not set; use Open for an explicit
// path or for the default yummy.yaml lookup.
func OpenFromEnv(opts ...Option) (*Client, func() error, error) {
	path := os.Getenv(config.EnvConfigPath)
	if path == "" {
		return nil, nil, fmt.Errorf("%s environment variable not set; set it or call Open with a config path", config.EnvConfigPath)
	}
	return Open(path, opts...)
}

// Open loads the configuration, applies environment overrides, and
// initializes the session. An empty path looks for yummy.yaml in the
// working directory and falls back to defaults plus environment.
//
// Shutdown semantics:
//   - The shutdown function is safe to call multiple times (idempotent)
//   - It releases provider resources but keeps a stored login, so the next
//     Open finds the session again
func Open(configPath string, opts ...Option) (*Client, func() error, error) {
	o := options{out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	bootOpts := []app.BootstrapOption{app.WithOutput(o.out)}
	if o.opener != nil {
		bootOpts = append(bootOpts, app.WithOpener(o.opener))
	}
	a, err := app.Bootstrap(context.Background(), cfg, bootOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start client: %w", err)
	}

	var shutdownOnce sync.Once
	var shutdownErr error
	shutdown := func() error {
		shutdownOnce.Do(func() {
			shutdownErr = a.Close(context.Background())
		})
		return shutdownErr
	}
	return &Client{app: a}, shutdown, nil
}

// Session returns a snapshot of the session state.
func (c *Client) Session() SessionState {
	return c.app.Session.Snapshot()
}

// Provider names the identity provider in use: delegation, spiffe or memory.
func (c *Client) Provider() string {
	return c.app.Provider()
}

// Notice returns the notice currently on display, if any.
func (c *Client) Notice() (Notice, bool) {
	n := c.app.Notices.Current()
	return n, n.Visible
}

// Notices returns up to n recent notices, newest first. n <= 0 returns all
// that are kept.
func (c *Client) Notices(n int) []Notice {
	return c.app.Notices.Recent(n)
}

// Login runs the identity provider's login flow. It blocks until the
// provider answers or ctx ends.
func (c *Client) Login(ctx context.Context) error {
	return c.app.Login(ctx)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.app.Logout(ctx)
}

// WhoAmI returns the caller's user record.
func (c *Client) WhoAmI(ctx context.Context) (User, error) {
	return c.app.UserInfo(ctx)
}

// Register creates the caller's user record.
func (c *Client) Register(ctx context.Context, name string) (uint64, error) {
	return c.app.CreateUser(ctx, name)
}

func (c *Client) RecipeNames(ctx context.Context) ([]string, error) {
	return c.app.RecipeNames(ctx)
}

func (c *Client) RecipesOfType(ctx context.Context, recipeType string) ([]RecipeBrief, error) {
	return c.app.RecipesOfType(ctx, recipeType)
}

// DeleteRecipe deletes a recipe the caller wrote. The outcome is reported as
// a notice; only transport failures are returned.
func (c *Client) DeleteRecipe(ctx context.Context, name string) error {
	return c.app.DeleteRecipe(ctx, name)
}

// DeleteUser deletes the caller's account and recipes. The outcome is
// reported as a notice; only transport failures are returned.
func (c *Client) DeleteUser(ctx context.Context) error {
	return c.app.DeleteUser(ctx)
}
