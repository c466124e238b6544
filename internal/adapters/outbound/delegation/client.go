package delegation

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sufield/yummy/internal/bg"
	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

const (
	// CallbackPath is where the provider redirects after login.
	CallbackPath = "/callback"

	// DefaultCallbackAddr picks a free loopback port.
	DefaultCallbackAddr = "127.0.0.1:0"

	// defaultTimeToLive is used when neither the caller nor the provider
	// says how long a delegation lasts.
	defaultTimeToLive = 8 * time.Hour

	shutdownTimeout = 2 * time.Second
)

// Opener presents the provider URL to the user.
type Opener func(ctx context.Context, authURL string) error

// PrintOpener returns an Opener that writes the URL to w.
func PrintOpener(w io.Writer) Opener {
	return func(_ context.Context, authURL string) error {
		_, err := fmt.Fprintf(w, "Open this URL in your browser to log in:\n\n  %s\n\n", authURL)
		return err
	}
}

// Config configures a Factory.
type Config struct {
	// StorePath is the session store file. Empty selects the default location.
	StorePath string

	// CallbackAddr is the loopback listen address for the login callback.
	CallbackAddr string

	// IdentityProvider is used when LoginOptions.IdentityProvider is empty.
	IdentityProvider string

	// Opener defaults to PrintOpener(os.Stderr).
	Opener Opener

	// Runner runs the Opener. Defaults to bg.Async.
	Runner bg.Runner

	Logger *zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Factory creates delegation auth clients.
type Factory struct {
	store        *Store
	callbackAddr string
	provider     string
	opener       Opener
	runner       bg.Runner
	log          zerolog.Logger
	now          func() time.Time
}

var _ ports.AuthClientFactory = (*Factory)(nil)

// NewFactory validates cfg and fills in defaults.
func NewFactory(cfg Config) (*Factory, error) {
	store, err := NewStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	if cfg.CallbackAddr == "" {
		cfg.CallbackAddr = DefaultCallbackAddr
	}
	if _, _, err := net.SplitHostPort(cfg.CallbackAddr); err != nil {
		return nil, fmt.Errorf("invalid callback address %q: %w", cfg.CallbackAddr, err)
	}
	if cfg.Opener == nil {
		cfg.Opener = PrintOpener(os.Stderr)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Factory{
		store:        store,
		callbackAddr: cfg.CallbackAddr,
		provider:     cfg.IdentityProvider,
		opener:       cfg.Opener,
		runner:       bg.Default(cfg.Runner),
		log:          log,
		now:          cfg.Now,
	}, nil
}

// Create loads the stored session, generating a session key if there is none.
// The idle-logout option has no effect: the client never logs out on its own.
func (f *Factory) Create(_ context.Context, _ ports.CreateOptions) (ports.AuthClient, error) {
	if debug.Faults.ShouldFailCreate() {
		return nil, fmt.Errorf("%w: injected fault", ports.ErrProviderUnavailable)
	}

	sess, err := f.store.Load()
	if err != nil {
		return nil, err
	}
	if sess.key == nil {
		if sess.key, err = newSessionKey(); err != nil {
			return nil, err
		}
	}

	f.log.Debug().Str("store", f.store.Path()).Bool("delegated", sess.hasDelegation()).Msg("auth client created")
	return &Client{factory: f, sess: sess}, nil
}

// Client is a delegation auth client.
type Client struct {
	factory *Factory

	mu       sync.Mutex
	sess     session
	inFlight bool
}

var _ ports.AuthClient = (*Client)(nil)

func (c *Client) IsAuthenticated(_ context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validLocked(), nil
}

func (c *Client) validLocked() bool {
	return c.sess.hasDelegation() && c.factory.now().Before(c.sess.expiration)
}

func (c *Client) Identity(_ context.Context) (ports.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.validLocked() {
		return nil, domain.ErrNotAuthenticated
	}
	return newIdentity(c.sess), nil
}

// Logout forgets the delegation and the session key, so the next login
// starts with a fresh key.
func (c *Client) Logout(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess = session{}
	if err := c.factory.store.Save(c.sess); err != nil {
		return err
	}
	c.factory.log.Info().Msg("logged out")
	return nil
}

// Login runs the browser flow and blocks until the provider calls back or
// ctx ends.
func (c *Client) Login(ctx context.Context, opts ports.LoginOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if debug.Faults.ShouldRejectLogin() {
		return ports.NewAuthProviderError("UserInterrupt")
	}

	providerURL := opts.IdentityProvider
	if providerURL == "" {
		providerURL = c.factory.provider
	}
	if providerURL == "" {
		return errors.New("login: no identity provider URL")
	}

	key, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	ttl := opts.MaxTimeToLive
	if ttl <= 0 {
		ttl = defaultTimeToLive
	}

	res, err := c.await(ctx, providerURL, key, ttl)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = session{key: key, chain: res.chain, userKey: res.userKey, expiration: res.expiration}
	if err := c.factory.store.Save(c.sess); err != nil {
		return err
	}
	c.factory.log.Info().
		Str("principal", PrincipalFromPublicKey(res.userKey)).
		Time("expires", res.expiration).
		Msg("logged in")
	return nil
}

// begin marks a login in flight and makes sure a session key exists.
func (c *Client) begin() (ed25519.PrivateKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return nil, ports.ErrLoginInProgress
	}
	if c.sess.key == nil {
		key, err := newSessionKey()
		if err != nil {
			return nil, err
		}
		c.sess = session{key: key}
		if err := c.factory.store.Save(c.sess); err != nil {
			return nil, err
		}
	}
	c.inFlight = true
	return c.sess.key, nil
}

func (c *Client) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

type callbackResult struct {
	chain      []byte
	userKey    []byte
	expiration time.Time
	err        error
}

func (c *Client) await(ctx context.Context, providerURL string, key ed25519.PrivateKey, ttl time.Duration) (callbackResult, error) {
	f := c.factory

	ln, err := net.Listen("tcp", f.callbackAddr)
	if err != nil {
		return callbackResult{}, fmt.Errorf("start callback listener: %w", err)
	}

	cb := &callback{
		state:   uuid.NewString(),
		ttl:     ttl,
		now:     f.now,
		log:     f.log,
		results: make(chan callbackResult, 1),
	}
	router := chi.NewRouter()
	router.Get(CallbackPath, cb.handle)
	router.Post(CallbackPath, cb.handle)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	served := bg.Go(bg.Async{}, func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.log.Warn().Err(err).Msg("callback server stopped")
		}
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-served
	}()

	redirect := "http://" + ln.Addr().String() + CallbackPath
	authURL, err := authorizeURL(providerURL, cb.state, key.Public().(ed25519.PublicKey), ttl, redirect)
	if err != nil {
		return callbackResult{}, err
	}

	opened := make(chan error, 1)
	f.runner.Do(func() { opened <- f.opener(ctx, authURL) })

	for {
		select {
		case <-ctx.Done():
			return callbackResult{}, ctx.Err()
		case err := <-opened:
			if err != nil {
				return callbackResult{}, fmt.Errorf("%w: open provider: %v", ports.ErrProviderUnavailable, err)
			}
			opened = nil
		case res := <-cb.results:
			if res.err != nil {
				return callbackResult{}, res.err
			}
			return res, nil
		}
	}
}

// authorizeURL adds the login request to the provider URL's query.
func authorizeURL(providerURL, state string, pub ed25519.PublicKey, ttl time.Duration, redirect string) (string, error) {
	u, err := url.Parse(providerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid identity provider URL %q", providerURL)
	}
	q := u.Query()
	q.Set("state", state)
	q.Set("session_public_key", base64.RawURLEncoding.EncodeToString(pub))
	q.Set("max_time_to_live", strconv.FormatInt(ttl.Nanoseconds(), 10))
	q.Set("redirect_uri", redirect)
	u.RawQuery = q.Encode()
	u.Fragment = "authorize"
	return u.String(), nil
}

// callback handles provider redirects. Only the first valid one completes
// the login; requests with the wrong state are refused.
type callback struct {
	state   string
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
	once    sync.Once
	results chan callbackResult
}

func (cb *callback) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	if r.Form.Get("state") != cb.state {
		cb.log.Warn().Str("remote", r.RemoteAddr).Msg("callback with unknown state")
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	if msg := r.Form.Get("error"); msg != "" {
		cb.complete(callbackResult{err: ports.NewAuthProviderError(msg)})
		fmt.Fprintln(w, "Login failed. You can close this window.")
		return
	}

	res, err := cb.parse(r.Form)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cb.complete(res)
	fmt.Fprintln(w, "Login complete. You can close this window.")
}

func (cb *callback) complete(res callbackResult) {
	cb.once.Do(func() { cb.results <- res })
}

func (cb *callback) parse(form url.Values) (callbackResult, error) {
	chain, err := decodeParam(form, "delegation")
	if err != nil {
		return callbackResult{}, err
	}
	userKey, err := decodeParam(form, "user_public_key")
	if err != nil {
		return callbackResult{}, err
	}

	expiration := cb.now().Add(cb.ttl)
	if raw := form.Get("expiration"); raw != "" {
		ns, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ns <= 0 {
			return callbackResult{}, fmt.Errorf("invalid expiration %q", raw)
		}
		expiration = time.Unix(0, ns)
	}
	return callbackResult{chain: chain, userKey: userKey, expiration: expiration}, nil
}

func decodeParam(form url.Values, name string) ([]byte, error) {
	raw := form.Get(name)
	if raw == "" {
		return nil, fmt.Errorf("missing %s", name)
	}
	if b, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s encoding", name)
	}
	return b, nil
}

func newSessionKey() (ed25519.PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return key, nil
}
