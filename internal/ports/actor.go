package ports

import (
	"context"

	"github.com/sufield/yummy/internal/domain"
)

// ActorOptions binds an actor to a credential.
type ActorOptions struct {
	// Identity signs requests on behalf of the user.
	Identity Identity
}

// Actor is an authenticated client of the recipe backend.
//
// Error Contract:
//   - transport and reject failures are returned as *domain.CallError, with
//     Kind KindTransientSignature for certificate signature failures
//   - the backend's own Err arm is returned as *domain.BackendError, except by
//     the delete methods which return it inside domain.DeleteResult
type Actor interface {
	// Principal is the identity the actor signs as.
	Principal() string

	GetUserInfo(ctx context.Context) (domain.User, error)
	CreateUser(ctx context.Context, name string) (uint64, error)
	UpdateUsername(ctx context.Context, index uint64, name string) (domain.User, error)
	DeleteUser(ctx context.Context) (domain.DeleteResult, error)
	DeleteRecipe(ctx context.Context, name string) (domain.DeleteResult, error)
	RecipesOfType(ctx context.Context, recipeType string) ([]domain.RecipeBrief, error)
	RecipeNames(ctx context.Context) ([]string, error)
}

// ActorFactory constructs actors for a backend service.
type ActorFactory interface {
	CreateActor(ctx context.Context, canisterID string, opts ActorOptions) (Actor, error)
}
