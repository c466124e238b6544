package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yummy/internal/adapters/outbound/inmemory"
	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

func actorFor(t *testing.T, b *inmemory.Backend, principal string) ports.Actor {
	t.Helper()
	a, err := b.CreateActor(context.Background(), "backend", ports.ActorOptions{Identity: inmemory.NewIdentity(principal, time.Time{})})
	require.NoError(t, err)
	return a
}

func TestBackend_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	b := inmemory.NewBackend()
	alice := actorFor(t, b, "alice-principal")

	_, err := alice.GetUserInfo(ctx)
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, domain.UserNotFound, be.Kind)

	idx, err := alice.CreateUser(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)

	_, err = alice.CreateUser(ctx, "Alice again")
	require.ErrorAs(t, err, &be)
	assert.Equal(t, domain.UserAlreadyExists, be.Kind)

	u, err := alice.UpdateUsername(ctx, idx, "Alicia")
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "alice-principal", Name: "Alicia"}, u)

	res, err := alice.DeleteUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Ok)
	assert.Equal(t, "User deleted successfully", *res.Ok)

	res, err = alice.DeleteUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Err)
	assert.Equal(t, domain.UserNotFound, res.Err.Kind)
}

func TestBackend_UpdateUsernameRules(t *testing.T) {
	ctx := context.Background()
	b := inmemory.NewBackend()
	alice := actorFor(t, b, "alice-principal")
	mallory := actorFor(t, b, "mallory-principal")
	idx, err := alice.CreateUser(ctx, "Alice")
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor ports.Actor
		index uint64
		value string
		want  domain.BackendErrorKind
	}{
		{"unknown index", alice, 99, "x", domain.UserNotFound},
		{"empty name", alice, idx, "", domain.InvalidName},
		{"other caller", mallory, idx, "Mallory", domain.CallerNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.actor.UpdateUsername(ctx, tt.index, tt.value)
			var be *domain.BackendError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.want, be.Kind)
		})
	}
}

func TestBackend_DeleteRecipe(t *testing.T) {
	ctx := context.Background()
	b := inmemory.NewBackend()
	alice := actorFor(t, b, "alice-principal")
	bob := actorFor(t, b, "bob-principal")
	_, err := alice.CreateUser(ctx, "Alice")
	require.NoError(t, err)
	_, err = bob.CreateUser(ctx, "Bob")
	require.NoError(t, err)
	b.AddRecipe(inmemory.Recipe{RecipeBrief: domain.RecipeBrief{Name: "Pancakes", Author: "Alice"}, Type: "recipesByTag"})

	res, err := bob.DeleteRecipe(ctx, "Pancakes")
	require.NoError(t, err)
	assert.Equal(t, domain.CallerNotAuthorized, res.Err.Kind)

	res, err = alice.DeleteRecipe(ctx, "Waffles")
	require.NoError(t, err)
	assert.Equal(t, domain.RecipeNotFound, res.Err.Kind)

	res, err = alice.DeleteRecipe(ctx, "Pancakes")
	require.NoError(t, err)
	require.NotNil(t, res.Ok)

	names, err := alice.RecipeNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestBackend_RecipeListings(t *testing.T) {
	ctx := context.Background()
	b := inmemory.NewBackend()
	b.AddRecipe(inmemory.Recipe{RecipeBrief: domain.RecipeBrief{Name: "Shakshuka", Tags: []string{"Breakfast"}, TotalMinutes: 30}, Type: "recipesByTag"})
	b.AddRecipe(inmemory.Recipe{RecipeBrief: domain.RecipeBrief{Name: "Bibimbap", TotalMinutes: 45}, Type: "popularRecipes"})
	b.AddRecipe(inmemory.Recipe{RecipeBrief: domain.RecipeBrief{Name: "Arepas", TotalMinutes: 40}, Type: "popularRecipes"})
	anon := actorFor(t, b, "")

	popular, err := anon.RecipesOfType(ctx, "popularRecipes")
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "Arepas", popular[0].Name)

	_, err = anon.RecipesOfType(ctx, "dessert")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, domain.RecipesNotFound, be.Kind)

	names, err := anon.RecipeNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arepas", "Bibimbap", "Shakshuka"}, names)
	assert.Equal(t, 3, b.Calls())
}

func TestBackend_SignatureFault(t *testing.T) {
	t.Cleanup(debug.Faults.Reset)
	require.NoError(t, debug.Faults.SetFailSignatureChecks(1))
	a := actorFor(t, inmemory.NewBackend(), "p")

	_, err := a.RecipeNames(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsTransientSignature(err))

	_, err = a.RecipeNames(context.Background())
	require.NoError(t, err)
}

func TestBackend_CreateActorNeedsCanister(t *testing.T) {
	_, err := inmemory.NewBackend().CreateActor(context.Background(), "", ports.ActorOptions{})
	require.Error(t, err)
}
