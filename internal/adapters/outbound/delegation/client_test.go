package delegation_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yummy/internal/adapters/outbound/delegation"
	"github.com/sufield/yummy/internal/bg"
	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

const testProvider = "http://127.0.0.1:4943/?canisterId=rdmx6-jaaaa-aaaaa-aaadq-cai"

var userKey = []byte("user-public-key-der")

// browser plays the provider: it reads the authorize URL and posts forms
// back to the redirect URI.
type browser struct {
	forms func(state string) []url.Values

	mu       sync.Mutex
	authURL  string
	statuses []int
}

func (b *browser) open(ctx context.Context, authURL string) error {
	b.mu.Lock()
	b.authURL = authURL
	b.mu.Unlock()

	u, err := url.Parse(authURL)
	if err != nil {
		return err
	}
	q := u.Query()
	for _, form := range b.forms(q.Get("state")) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.Get("redirect_uri"), nil)
		if err != nil {
			return err
		}
		req.URL.RawQuery = form.Encode()
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()

		b.mu.Lock()
		b.statuses = append(b.statuses, resp.StatusCode)
		b.mu.Unlock()
	}
	return nil
}

func (b *browser) seen() (string, []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authURL, append([]int(nil), b.statuses...)
}

func success(state string, expires time.Time) url.Values {
	return url.Values{
		"state":           {state},
		"delegation":      {base64.RawURLEncoding.EncodeToString([]byte("signed-chain"))},
		"user_public_key": {base64.StdEncoding.EncodeToString(userKey)},
		"expiration":      {strconv.FormatInt(expires.UnixNano(), 10)},
	}
}

func newClient(t *testing.T, dir string, b *browser) ports.AuthClient {
	t.Helper()
	f, err := delegation.NewFactory(delegation.Config{
		StorePath:        filepath.Join(dir, "session.yaml"),
		IdentityProvider: testProvider,
		Opener:           b.open,
		Runner:           bg.Sync{},
	})
	require.NoError(t, err)

	client, err := f.Create(context.Background(), ports.CreateOptions{DisableIdle: true})
	require.NoError(t, err)
	return client
}

func TestClient_LoginStoresDelegation(t *testing.T) {
	t.Parallel()

	// Arrange
	dir := t.TempDir()
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	b := &browser{forms: func(state string) []url.Values {
		return []url.Values{success(state, expires)}
	}}
	client := newClient(t, dir, b)
	ctx := context.Background()

	ok, err := client.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Act
	err = client.Login(ctx, ports.LoginOptions{MaxTimeToLive: 2 * time.Hour})

	// Assert
	require.NoError(t, err)
	ok, err = client.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	id, err := client.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, delegation.PrincipalFromPublicKey(userKey), id.Principal())
	assert.True(t, expires.Equal(id.ExpiresAt()))
	assert.Equal(t, []byte("signed-chain"), id.(ports.DelegationCarrier).Delegation())

	authURL, statuses := b.seen()
	assert.Equal(t, []int{http.StatusOK}, statuses)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "authorize", u.Fragment)
	assert.Equal(t, "rdmx6-jaaaa-aaaaa-aaadq-cai", u.Query().Get("canisterId"))
	assert.Equal(t, strconv.FormatInt((2*time.Hour).Nanoseconds(), 10), u.Query().Get("max_time_to_live"))
	assert.Equal(t,
		base64.RawURLEncoding.EncodeToString(id.(ports.Signer).PublicKey()),
		u.Query().Get("session_public_key"))

	// A second client over the same store sees the session.
	again := newClient(t, dir, &browser{})
	ok, err = again.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_StateMismatchDoesNotComplete(t *testing.T) {
	t.Parallel()

	b := &browser{forms: func(state string) []url.Values {
		forged := success("not-"+state, time.Now().Add(time.Hour))
		return []url.Values{forged, {"state": {state}, "error": {"UserInterrupt"}}}
	}}
	client := newClient(t, t.TempDir(), b)

	err := client.Login(context.Background(), ports.LoginOptions{})

	var perr *ports.AuthProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "UserInterrupt", perr.Payload)
	_, statuses := b.seen()
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusOK}, statuses)

	ok, err := client.IsAuthenticated(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_MalformedCallbackIsRefused(t *testing.T) {
	t.Parallel()

	b := &browser{forms: func(state string) []url.Values {
		bad := success(state, time.Now().Add(time.Hour))
		bad.Set("expiration", "soon")
		return []url.Values{bad, success(state, time.Now().Add(time.Hour))}
	}}
	client := newClient(t, t.TempDir(), b)

	require.NoError(t, client.Login(context.Background(), ports.LoginOptions{}))
	_, statuses := b.seen()
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusOK}, statuses)
}

func TestClient_LoginHonorsContext(t *testing.T) {
	t.Parallel()

	client := newClient(t, t.TempDir(), &browser{forms: func(string) []url.Values { return nil }})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Login(ctx, ports.LoginOptions{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_SecondLoginIsRejected(t *testing.T) {
	t.Parallel()

	opened := make(chan struct{})
	f, err := delegation.NewFactory(delegation.Config{
		StorePath:        filepath.Join(t.TempDir(), "session.yaml"),
		IdentityProvider: testProvider,
		Opener: func(context.Context, string) error {
			close(opened)
			return nil
		},
		Runner: bg.Async{},
	})
	require.NoError(t, err)
	client, err := f.Create(context.Background(), ports.CreateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- client.Login(ctx, ports.LoginOptions{}) }()
	<-opened

	err = client.Login(context.Background(), ports.LoginOptions{})
	assert.ErrorIs(t, err, ports.ErrLoginInProgress)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)
}

func TestClient_OpenerFailure(t *testing.T) {
	t.Parallel()

	f, err := delegation.NewFactory(delegation.Config{
		StorePath:        filepath.Join(t.TempDir(), "session.yaml"),
		IdentityProvider: testProvider,
		Opener:           func(context.Context, string) error { return errors.New("no browser") },
		Runner:           bg.Sync{},
	})
	require.NoError(t, err)
	client, err := f.Create(context.Background(), ports.CreateOptions{})
	require.NoError(t, err)

	err = client.Login(context.Background(), ports.LoginOptions{})
	assert.ErrorIs(t, err, ports.ErrProviderUnavailable)
}

func TestClient_LogoutClearsStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := &browser{forms: func(state string) []url.Values {
		return []url.Values{success(state, time.Now().Add(time.Hour))}
	}}
	client := newClient(t, dir, b)
	ctx := context.Background()
	require.NoError(t, client.Login(ctx, ports.LoginOptions{}))
	id, err := client.Identity(ctx)
	require.NoError(t, err)
	oldKey := id.(ports.Signer).PublicKey()

	require.NoError(t, client.Logout(ctx))

	_, err = client.Identity(ctx)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	again := newClient(t, dir, &browser{})
	ok, err := again.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// The next login uses a fresh session key.
	require.NoError(t, client.Login(ctx, ports.LoginOptions{}))
	id, err = client.Identity(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, id.(ports.Signer).PublicKey())
}

func TestClient_ExpiredDelegationIsNotAuthenticated(t *testing.T) {
	t.Parallel()

	b := &browser{forms: func(state string) []url.Values {
		return []url.Values{success(state, time.Now().Add(-time.Minute))}
	}}
	client := newClient(t, t.TempDir(), b)

	require.NoError(t, client.Login(context.Background(), ports.LoginOptions{}))

	ok, err := client.IsAuthenticated(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFactory_Validation(t *testing.T) {
	t.Parallel()

	_, err := delegation.NewFactory(delegation.Config{
		StorePath:    filepath.Join(t.TempDir(), "s.yaml"),
		CallbackAddr: "no-port",
	})
	assert.Error(t, err)

	f, err := delegation.NewFactory(delegation.Config{StorePath: filepath.Join(t.TempDir(), "s.yaml")})
	require.NoError(t, err)
	client, err := f.Create(context.Background(), ports.CreateOptions{})
	require.NoError(t, err)
	err = client.Login(context.Background(), ports.LoginOptions{})
	assert.ErrorContains(t, err, "no identity provider URL")
	err = client.Login(context.Background(), ports.LoginOptions{IdentityProvider: "not a url"})
	assert.ErrorContains(t, err, "invalid identity provider URL")
}

// Fault injection uses process-wide state, so these tests are not parallel.

func TestFactory_InjectedCreateFailure(t *testing.T) {
	debug.Faults.Reset()
	t.Cleanup(debug.Faults.Reset)
	debug.Faults.SetFailNextCreate(true)

	f, err := delegation.NewFactory(delegation.Config{StorePath: filepath.Join(t.TempDir(), "s.yaml")})
	require.NoError(t, err)

	_, err = f.Create(context.Background(), ports.CreateOptions{})
	assert.ErrorIs(t, err, ports.ErrProviderUnavailable)

	_, err = f.Create(context.Background(), ports.CreateOptions{})
	assert.NoError(t, err)
}

func TestClient_InjectedLoginRejection(t *testing.T) {
	debug.Faults.Reset()
	t.Cleanup(debug.Faults.Reset)
	debug.Faults.SetRejectNextLogin(true)

	client := newClient(t, t.TempDir(), &browser{})

	err := client.Login(context.Background(), ports.LoginOptions{})

	var perr *ports.AuthProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "UserInterrupt", perr.Payload)
}
