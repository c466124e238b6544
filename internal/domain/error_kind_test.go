package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sufield/yummy/internal/domain"
)

type selfKinded struct{}

func (selfKinded) Error() string               { return "provider said no" }
func (selfKinded) ErrorKind() domain.ErrorKind { return domain.KindAuthProvider }

func TestClassify(t *testing.T) {
	t.Parallel()

	tagged := domain.NewCallError(domain.KindTransientSignature, "delete_recipe", errors.New("boom"))

	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"nil", nil, domain.KindOther},
		{"plain", errors.New("connection refused"), domain.KindOther},
		{"tagged", tagged, domain.KindTransientSignature},
		{"wrapped tag", fmt.Errorf("call: %w", tagged), domain.KindTransientSignature},
		{"tag wins over message", domain.NewCallError(domain.KindOther, "", errors.New(domain.SignatureFailureMessage)), domain.KindOther},
		{"self kinded", fmt.Errorf("login: %w", selfKinded{}), domain.KindAuthProvider},
		{"not authenticated", fmt.Errorf("delete: %w", domain.ErrNotAuthenticated), domain.KindNotAuthenticated},
		{"legacy message", errors.New("Call failed: " + domain.SignatureFailureMessage + " (code 5)"), domain.KindTransientSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.Classify(tt.err))
		})
	}
}

func TestCallError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("bad sig")
	err := domain.NewCallError(domain.KindTransientSignature, "whoami", inner)

	assert.Equal(t, "whoami transient_signature: bad sig", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.True(t, domain.IsTransientSignature(err))

	anon := domain.NewCallError(domain.KindOther, "", inner)
	assert.Equal(t, "other: bad sig", anon.Error())
}
