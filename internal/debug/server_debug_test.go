//go:build debug

package debug

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedIntrospector struct{ snap Snapshot }

func (f fixedIntrospector) SnapshotData(context.Context) Snapshot { return f.snap }

func serve(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestServer_Index(t *testing.T) {
	s := newServer("127.0.0.1:0", nil)

	w := serve(t, s, http.MethodGet, "/_debug/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/_debug/faults")
}

func TestServer_SetAndResetFaults(t *testing.T) {
	t.Cleanup(Faults.Reset)
	s := newServer("127.0.0.1:0", nil)

	w := serve(t, s, http.MethodPost, "/_debug/faults", `{"fail_signature_checks":2,"reject_next_login":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(2), got["fail_signature_checks"])
	assert.Equal(t, true, got["reject_next_login"])
	assert.Equal(t, false, got["fail_next_create"])

	w = serve(t, s, http.MethodPost, "/_debug/faults/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, Faults.ShouldFailSignature())
	assert.False(t, Faults.ShouldRejectLogin())
}

func TestServer_SetFaults_BadInput(t *testing.T) {
	t.Cleanup(Faults.Reset)
	s := newServer("127.0.0.1:0", nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"negative count", `{"fail_signature_checks":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, s, http.MethodPost, "/_debug/faults", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestServer_ResetRequiresPost(t *testing.T) {
	s := newServer("127.0.0.1:0", nil)

	w := serve(t, s, http.MethodGet, "/_debug/faults/reset", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_Session(t *testing.T) {
	t.Run("without introspector", func(t *testing.T) {
		w := serve(t, newServer("127.0.0.1:0", nil), http.MethodGet, "/_debug/session", "")
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("with introspector", func(t *testing.T) {
		intro := fixedIntrospector{snap: Snapshot{
			Mode:    "debug",
			Network: "memory",
			Session: SessionView{Ready: true, Authenticated: "true", Principal: "aaaaa-aa"},
		}}
		w := serve(t, newServer("127.0.0.1:0", intro), http.MethodGet, "/_debug/session", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, intro.snap.Session, got.Session)
		assert.Equal(t, "memory", got.Network)
	})
}

func TestStart_DisabledReturnsNoopStop(t *testing.T) {
	prev := Active
	t.Cleanup(func() { Active = prev })
	Active = Config{}

	stop := Start(nil)

	assert.NoError(t, stop(context.Background()))
}
