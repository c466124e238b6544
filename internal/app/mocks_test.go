package app_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

// MockAuthClientFactory is a mock implementation of ports.AuthClientFactory for testing
type MockAuthClientFactory struct {
	mock.Mock
}

func (m *MockAuthClientFactory) Create(ctx context.Context, opts ports.CreateOptions) (ports.AuthClient, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.AuthClient), args.Error(1)
}

// MockAuthClient is a mock implementation of ports.AuthClient for testing
type MockAuthClient struct {
	mock.Mock
}

func (m *MockAuthClient) IsAuthenticated(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthClient) Identity(ctx context.Context) (ports.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Identity), args.Error(1)
}

func (m *MockAuthClient) Login(ctx context.Context, opts ports.LoginOptions) error {
	return m.Called(ctx, opts).Error(0)
}

func (m *MockAuthClient) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// closingAuthClient adds a Close method so Destroy releases it.
type closingAuthClient struct {
	MockAuthClient
	closed int
}

func (c *closingAuthClient) Close(context.Context) error {
	c.closed++
	return nil
}

// MockActorFactory is a mock implementation of ports.ActorFactory for testing
type MockActorFactory struct {
	mock.Mock
}

func (m *MockActorFactory) CreateActor(ctx context.Context, canisterID string, opts ports.ActorOptions) (ports.Actor, error) {
	args := m.Called(ctx, canisterID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Actor), args.Error(1)
}

// stubActor satisfies ports.Actor; only Principal is meaningful.
type stubActor struct {
	principal string
}

func (a stubActor) Principal() string { return a.principal }
func (stubActor) GetUserInfo(context.Context) (domain.User, error) {
	return domain.User{}, nil
}
func (stubActor) CreateUser(context.Context, string) (uint64, error) { return 0, nil }
func (stubActor) UpdateUsername(context.Context, uint64, string) (domain.User, error) {
	return domain.User{}, nil
}
func (stubActor) DeleteUser(context.Context) (domain.DeleteResult, error) {
	return domain.DeleteOk("deleted"), nil
}
func (stubActor) DeleteRecipe(context.Context, string) (domain.DeleteResult, error) {
	return domain.DeleteOk("deleted"), nil
}
func (stubActor) RecipesOfType(context.Context, string) ([]domain.RecipeBrief, error) {
	return nil, nil
}
func (stubActor) RecipeNames(context.Context) ([]string, error) { return nil, nil }

type stubIdentity struct {
	principal string
	expires   time.Time
}

func (i stubIdentity) Principal() string    { return i.principal }
func (i stubIdentity) ExpiresAt() time.Time { return i.expires }

// MockGuard is a mock implementation of app.SessionGuard for testing
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) IsAuthenticated() bool {
	return m.Called().Bool(0)
}

func (m *MockGuard) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// fakeClock records sleeps and advances its time by them instead of blocking.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// signatureErr is what a transport returns for a failed certificate check.
func signatureErr() error {
	return domain.NewCallError(domain.KindTransientSignature, "get_user_info", errSignature)
}

var errSignature = errorString(domain.SignatureFailureMessage)

type errorString string

func (e errorString) Error() string { return string(e) }
