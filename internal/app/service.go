package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

// Login runs the interactive login and posts the outcome as a notice.
func (a *Application) Login(ctx context.Context) error {
	err := a.Session.Login(ctx)

	var pe *ports.AuthProviderError
	switch {
	case err == nil:
		a.Notices.Show("Logged in as "+a.Session.Snapshot().Principal, domain.SeveritySuccess, 0)
	case errors.As(err, &pe):
		a.Notices.Show("Login failed: "+pe.Payload, domain.SeverityError, 0)
	default:
		a.Notices.Show("Login failed", domain.SeverityError, 0)
	}
	return err
}

// Logout ends the session. The local state is reset even when the
// provider reports an error.
func (a *Application) Logout(ctx context.Context) error {
	if err := a.Session.Logout(ctx); err != nil {
		a.Notices.Show("Logged out locally; the provider did not confirm", domain.SeverityWarning, 0)
		return err
	}
	a.Notices.Show("Logged out", domain.SeverityInfo, 0)
	return nil
}

// UserInfo returns the caller's user record.
func (a *Application) UserInfo(ctx context.Context) (domain.User, error) {
	return callActor(ctx, a, "get_user_info", func(ctx context.Context, actor ports.Actor) (domain.User, error) {
		return actor.GetUserInfo(ctx)
	})
}

// CreateUser registers the caller under name and returns the user index.
func (a *Application) CreateUser(ctx context.Context, name string) (uint64, error) {
	if name == "" {
		return 0, domain.ErrEmptyName
	}
	return callActor(ctx, a, "create_user", func(ctx context.Context, actor ports.Actor) (uint64, error) {
		return actor.CreateUser(ctx, name)
	})
}

// RecipeNames lists every recipe name.
func (a *Application) RecipeNames(ctx context.Context) ([]string, error) {
	return callActor(ctx, a, "get_recipes_names", func(ctx context.Context, actor ports.Actor) ([]string, error) {
		return actor.RecipeNames(ctx)
	})
}

// RecipesOfType lists the recipes of one type.
func (a *Application) RecipesOfType(ctx context.Context, recipeType string) ([]domain.RecipeBrief, error) {
	return callActor(ctx, a, "get_recipes_of_specific_type", func(ctx context.Context, actor ports.Actor) ([]domain.RecipeBrief, error) {
		return actor.RecipesOfType(ctx, recipeType)
	})
}

// DeleteRecipe runs the confirmed delete flow for one recipe.
func (a *Application) DeleteRecipe(ctx context.Context, name string) error {
	return a.confirmDelete(ctx, "delete_recipe", func(ctx context.Context, actor ports.Actor) (domain.DeleteResult, error) {
		return actor.DeleteRecipe(ctx, name)
	})
}

// DeleteUser runs the confirmed delete flow for the caller's account.
func (a *Application) DeleteUser(ctx context.Context) error {
	return a.confirmDelete(ctx, "delete_user", func(ctx context.Context, actor ports.Actor) (domain.DeleteResult, error) {
		return actor.DeleteUser(ctx)
	})
}

func (a *Application) confirmDelete(ctx context.Context, name string, fn func(context.Context, ports.Actor) (domain.DeleteResult, error)) error {
	a.Deleter.RequestDelete()
	return a.Deleter.ConfirmDelete(ctx, func(ctx context.Context) (domain.DeleteResult, error) {
		actor, ok := a.Session.Actor()
		if !ok {
			return domain.DeleteResult{}, domain.ErrNotAuthenticated
		}
		res, err := Call(ctx, a.Session, func(ctx context.Context) (domain.DeleteResult, error) {
			return fn(ctx, actor)
		}, a.callOptions(name)...)
		if err == nil && res.Ok == nil && res.Err == nil {
			// Retries ran out and the session was logged out.
			return res, domain.ErrNotAuthenticated
		}
		return res, err
	})
}

// backendReply carries either a value or the backend's own Err arm, so that
// a domain refusal is a result of the call and not a failure to retry.
type backendReply[T any] struct {
	value T
	err   *domain.BackendError
}

// callActor runs fn against the current actor through Call.
func callActor[T any](ctx context.Context, a *Application, name string, fn func(context.Context, ports.Actor) (T, error)) (T, error) {
	var zero T
	actor, ok := a.Session.Actor()
	if !ok {
		return zero, domain.ErrNotAuthenticated
	}

	reply, err := Call(ctx, a.Session, func(ctx context.Context) (backendReply[T], error) {
		v, err := fn(ctx, actor)
		var be *domain.BackendError
		if errors.As(err, &be) {
			return backendReply[T]{err: be}, nil
		}
		if err != nil {
			return backendReply[T]{}, err
		}
		return backendReply[T]{value: v}, nil
	}, a.callOptions(name)...)
	switch {
	case err != nil:
		return zero, fmt.Errorf("%s: %w", name, err)
	case reply.err != nil:
		return zero, reply.err
	case !a.Session.IsAuthenticated():
		return zero, domain.ErrNotAuthenticated
	}
	return reply.value, nil
}

func (a *Application) callOptions(name string) []CallOption {
	return []CallOption{
		WithPolicy(a.Policy),
		WithClock(a.clock),
		WithNotices(a.Notices),
		WithName(name),
		WithLogger(a.log),
	}
}
