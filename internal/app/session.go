package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sufield/yummy/internal/assert"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/logging"
	"github.com/sufield/yummy/internal/ports"
)

// MaxTimeToLive is the longest session requested from the identity provider.
const MaxTimeToLive = 7 * 24 * time.Hour

// SessionGuard is the part of a session the retry wrapper and the delete
// flow depend on.
type SessionGuard interface {
	IsAuthenticated() bool
	Logout(ctx context.Context) error
}

// SessionConfig wires a Session to its providers.
type SessionConfig struct {
	AuthFactory  ports.AuthClientFactory
	ActorFactory ports.ActorFactory

	// CanisterID is the backend service actors are created for.
	CanisterID string

	// Login is passed to the provider on every interactive login.
	// A zero MaxTimeToLive is replaced by MaxTimeToLive.
	Login ports.LoginOptions

	// Logger defaults to the "session" component logger.
	Logger *zerolog.Logger
}

// Session is the client's authenticated session with the identity provider.
//
// Init runs once at startup. Login, Logout and Init must not be called
// concurrently with each other; the read accessors are safe at any time.
type Session struct {
	cfg SessionConfig
	log zerolog.Logger

	mu        sync.RWMutex
	state     domain.SessionState
	client    ports.AuthClient
	identity  ports.Identity
	actor     ports.Actor
	destroyed bool
}

var _ SessionGuard = (*Session)(nil)

// NewSession validates the configuration and returns an uninitialized session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.AuthFactory == nil {
		return nil, fmt.Errorf("auth client factory is nil")
	}
	if cfg.ActorFactory == nil {
		return nil, fmt.Errorf("actor factory is nil")
	}
	if cfg.CanisterID == "" {
		return nil, fmt.Errorf("backend canister id is required")
	}
	if cfg.Login.MaxTimeToLive <= 0 {
		cfg.Login.MaxTimeToLive = MaxTimeToLive
	}

	log := logging.Component("session")
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Session{cfg: cfg, log: log}, nil
}

// Init creates the provider client and adopts an existing session if the
// provider has one. It never fails: any error leaves the session
// unauthenticated. Ready is set on return either way.
func (s *Session) Init(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.state.Ready = true
		s.mu.Unlock()
	}()

	client, err := s.cfg.AuthFactory.Create(ctx, ports.CreateOptions{DisableIdle: true})
	if err != nil {
		s.log.Warn().Err(err).Msg("create auth client")
		s.reset()
		return
	}

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	if err := s.refresh(ctx, client); err != nil {
		s.log.Warn().Err(err).Msg("restore session")
		s.reset()
		return
	}

	snap := s.Snapshot()
	s.log.Info().
		Stringer("auth", snap.Auth).
		Str("principal", snap.Principal).
		Msg("session initialized")
}

// Login runs the provider's interactive login and, on success, rebuilds the
// identity and actor. A provider failure is returned as *ports.AuthProviderError
// and leaves the session as it was.
func (s *Session) Login(ctx context.Context) error {
	s.mu.RLock()
	client, destroyed := s.client, s.destroyed
	s.mu.RUnlock()

	if destroyed {
		return domain.ErrSessionDestroyed
	}
	if client == nil {
		return ports.ErrNoAuthClient
	}

	if err := client.Login(ctx, s.cfg.Login); err != nil {
		var pe *ports.AuthProviderError
		if errors.As(err, &pe) {
			s.log.Error().Str("payload", pe.Payload).Msg("login failed")
			return pe
		}
		s.log.Error().Err(err).Msg("login failed")
		return fmt.Errorf("login: %w", err)
	}

	if err := s.refresh(ctx, client); err != nil {
		s.reset()
		return fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("principal", s.Snapshot().Principal).Msg("logged in")
	return nil
}

// Logout resets the session and invalidates it with the provider. Without a
// provider client it only resets. A provider error is returned after the
// local reset has happened.
func (s *Session) Logout(ctx context.Context) error {
	s.reset()

	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return nil
	}

	if err := client.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("provider logout")
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Msg("logged out")
	return nil
}

// Destroy drops the provider client and local handles. The provider session
// itself is kept, so a stored login survives the process. If the client
// holds resources (io.Closer-like), they are released. Later Login calls
// return domain.ErrSessionDestroyed.
func (s *Session) Destroy(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.destroyed = true
	s.mu.Unlock()

	s.reset()

	closer, ok := client.(interface{ Close(context.Context) error })
	if !ok {
		return nil
	}
	if err := closer.Close(ctx); err != nil {
		return fmt.Errorf("close auth client: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether the session is in the authenticated state.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated()
}

// IsReady reports whether Init has completed.
func (s *Session) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Ready
}

// Identity returns the credential handle while authenticated.
func (s *Session) Identity() (ports.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.identity != nil
}

// Actor returns the backend actor while authenticated.
func (s *Session) Actor() (ports.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor, s.actor != nil
}

// refresh asks the provider whether a session exists and rebuilds the
// identity and actor from it.
func (s *Session) refresh(ctx context.Context, client ports.AuthClient) error {
	ok, err := client.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("query authentication: %w", err)
	}
	if !ok {
		s.reset()
		return nil
	}

	identity, err := client.Identity(ctx)
	if err != nil {
		return fmt.Errorf("get identity: %w", err)
	}
	actor, err := s.cfg.ActorFactory.CreateActor(ctx, s.cfg.CanisterID, ports.ActorOptions{Identity: identity})
	if err != nil {
		return fmt.Errorf("create actor: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.actor = actor
	s.state.Auth = domain.AuthTrue
	s.state.Principal = identity.Principal()
	s.state.ExpiresAt = identity.ExpiresAt()
	s.checkLocked()
	return nil
}

// reset moves to the unauthenticated state, keeping Ready as it is.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.actor = nil
	s.state = domain.Unauthenticated(s.state.Ready)
	s.checkLocked()
}

func (s *Session) checkLocked() {
	auth := s.state.Auth == domain.AuthTrue
	assert.Invariantf(auth == (s.identity != nil) && auth == (s.actor != nil),
		"session auth=%s but identity=%t actor=%t", s.state.Auth, s.identity != nil, s.actor != nil)
}
