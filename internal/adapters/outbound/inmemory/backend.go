package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

// Recipe is a stored recipe.
type Recipe struct {
	domain.RecipeBrief
	// Type is the listing it belongs to, e.g. "popularRecipes".
	Type string
}

// Backend is an in-memory recipe backend shared by all actors it creates.
type Backend struct {
	mu        sync.Mutex
	nextIndex uint64
	users     map[uint64]domain.User
	recipes   map[string]Recipe
	calls     int
}

var _ ports.ActorFactory = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{
		nextIndex: 1,
		users:     make(map[uint64]domain.User),
		recipes:   make(map[string]Recipe),
	}
}

// AddRecipe seeds a recipe.
func (b *Backend) AddRecipe(r Recipe) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recipes[r.Name] = r
}

// Calls returns how many actor calls reached the backend.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *Backend) CreateActor(ctx context.Context, canisterID string, opts ports.ActorOptions) (ports.Actor, error) {
	if canisterID == "" {
		return nil, fmt.Errorf("canister id is required")
	}
	principal := ""
	if opts.Identity != nil {
		principal = opts.Identity.Principal()
	}
	return &Actor{backend: b, principal: principal}, nil
}

// Actor calls the in-memory backend as one principal. An empty principal is
// the anonymous caller.
type Actor struct {
	backend   *Backend
	principal string
}

var _ ports.Actor = (*Actor)(nil)

func (a *Actor) Principal() string { return a.principal }

// enter counts the call, applies injected faults and locks the backend.
// The caller must unlock.
func (a *Actor) enter(op string) error {
	if err := checkFault(op); err != nil {
		return err
	}
	a.backend.mu.Lock()
	a.backend.calls++
	return nil
}

func checkFault(op string) error {
	if debug.Faults.ShouldFailSignature() {
		return domain.NewCallError(domain.KindTransientSignature, op, fmt.Errorf("%s", domain.SignatureFailureMessage))
	}
	return nil
}

// userIndexLocked finds the caller's user. The backend must be locked.
func (a *Actor) userIndexLocked() (uint64, domain.User, bool) {
	for idx, u := range a.backend.users {
		if u.ID == a.principal {
			return idx, u, true
		}
	}
	return 0, domain.User{}, false
}

func (a *Actor) GetUserInfo(ctx context.Context) (domain.User, error) {
	if err := a.enter("get_user_info"); err != nil {
		return domain.User{}, err
	}
	defer a.backend.mu.Unlock()

	_, u, ok := a.userIndexLocked()
	if !ok {
		return domain.User{}, &domain.BackendError{Kind: domain.UserNotFound, Msg: "You are not authenticated - login to perform this action"}
	}
	return u, nil
}

func (a *Actor) CreateUser(ctx context.Context, name string) (uint64, error) {
	if err := a.enter("create_user"); err != nil {
		return 0, err
	}
	defer a.backend.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return 0, &domain.BackendError{Kind: domain.InvalidName, Msg: "Name cannot be empty"}
	}
	if _, _, ok := a.userIndexLocked(); ok {
		return 0, &domain.BackendError{Kind: domain.UserAlreadyExists, Msg: "User already exists"}
	}
	idx := a.backend.nextIndex
	a.backend.nextIndex++
	a.backend.users[idx] = domain.User{ID: a.principal, Name: name}
	return idx, nil
}

func (a *Actor) UpdateUsername(ctx context.Context, index uint64, name string) (domain.User, error) {
	if err := a.enter("update_username"); err != nil {
		return domain.User{}, err
	}
	defer a.backend.mu.Unlock()

	u, ok := a.backend.users[index]
	if !ok {
		return domain.User{}, &domain.BackendError{Kind: domain.UserNotFound, Msg: "User not found"}
	}
	if name == "" {
		return domain.User{}, &domain.BackendError{Kind: domain.InvalidName, Msg: "Name cannot be empty"}
	}
	if a.principal == "" || u.ID != a.principal {
		return domain.User{}, &domain.BackendError{Kind: domain.CallerNotAuthorized, Msg: "The caller is not authorized"}
	}
	u.Name = name
	a.backend.users[index] = u
	return u, nil
}

// DeleteUser removes the caller and every recipe they authored.
func (a *Actor) DeleteUser(ctx context.Context) (domain.DeleteResult, error) {
	if err := a.enter("delete_user"); err != nil {
		return domain.DeleteResult{}, err
	}
	defer a.backend.mu.Unlock()

	idx, u, ok := a.userIndexLocked()
	if !ok {
		return domain.DeleteErr(domain.UserNotFound, "You are not authenticated - login to perform this action"), nil
	}
	for name, r := range a.backend.recipes {
		if r.Author == u.Name {
			delete(a.backend.recipes, name)
		}
	}
	delete(a.backend.users, idx)
	return domain.DeleteOk("User deleted successfully"), nil
}

// DeleteRecipe removes a recipe authored by the caller.
func (a *Actor) DeleteRecipe(ctx context.Context, name string) (domain.DeleteResult, error) {
	if err := a.enter("delete_recipe"); err != nil {
		return domain.DeleteResult{}, err
	}
	defer a.backend.mu.Unlock()

	r, ok := a.backend.recipes[name]
	if !ok {
		return domain.DeleteErr(domain.RecipeNotFound, "Recipe not found"), nil
	}
	_, u, ok := a.userIndexLocked()
	if !ok || r.Author != u.Name {
		return domain.DeleteErr(domain.CallerNotAuthorized, "The caller is not authorized"), nil
	}
	delete(a.backend.recipes, name)
	return domain.DeleteOk("Recipe deleted successfully"), nil
}

// RecipesOfType lists recipes of one type sorted by name.
func (a *Actor) RecipesOfType(ctx context.Context, recipeType string) ([]domain.RecipeBrief, error) {
	if err := a.enter("get_recipes_of_type"); err != nil {
		return nil, err
	}
	defer a.backend.mu.Unlock()

	var out []domain.RecipeBrief
	for _, r := range a.backend.recipes {
		if r.Type == recipeType {
			out = append(out, r.RecipeBrief)
		}
	}
	if len(out) == 0 {
		return nil, &domain.BackendError{Kind: domain.RecipesNotFound, Msg: "Recipes not found"}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (a *Actor) RecipeNames(ctx context.Context) ([]string, error) {
	if err := a.enter("get_recipes_names"); err != nil {
		return nil, err
	}
	defer a.backend.mu.Unlock()

	names := make([]string, 0, len(a.backend.recipes))
	for name := range a.backend.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
