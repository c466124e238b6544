package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yummy/internal/domain"
)

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	s, err := domain.ParseSeverity("")
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityInfo, s)

	s, err = domain.ParseSeverity(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityWarning, s)

	_, err = domain.ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestNotice_VisibleAt(t *testing.T) {
	t.Parallel()

	shown := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := domain.Notice{Text: "Deleting...", Severity: domain.SeverityWarning, Duration: 5 * time.Second, ShownAt: shown, Visible: true}

	assert.True(t, n.VisibleAt(shown))
	assert.True(t, n.VisibleAt(shown.Add(4999*time.Millisecond)))
	assert.False(t, n.VisibleAt(shown.Add(5*time.Second)))

	n.Visible = false
	assert.False(t, n.VisibleAt(shown))
}

func TestDeleteResult_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, domain.DeleteOk("Recipe deleted").Validate())
	assert.NoError(t, domain.DeleteErr(domain.RecipeNotFound, "Recipe not found").Validate())
	assert.ErrorIs(t, domain.DeleteResult{}.Validate(), domain.ErrMalformedResult)

	both := domain.DeleteOk("x")
	both.Err = &domain.BackendError{Kind: domain.UserNotFound, Msg: "y"}
	assert.ErrorIs(t, both.Validate(), domain.ErrMalformedResult)
}

func TestAuthState(t *testing.T) {
	t.Parallel()

	assert.False(t, domain.AuthUnknown.Known())
	assert.True(t, domain.AuthFalse.Known())
	assert.Equal(t, "true", domain.AuthTrue.String())

	st := domain.Unauthenticated(true)
	assert.True(t, st.Ready)
	assert.False(t, st.Authenticated())
	assert.Empty(t, st.Principal)
}
