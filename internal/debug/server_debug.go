//go:build debug

package debug

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sufield/yummy/internal/bg"
)

const (
	maxRequestBodyBytes = 10 * 1024 // 10KB max for fault injection requests
)

// Server is the debug HTTP server
type Server struct {
	addr         string
	router       chi.Router
	introspector Introspector
}

// FaultRequest represents a fault injection request
type FaultRequest struct {
	FailSignatureChecks *int  `json:"fail_signature_checks,omitempty"`
	RejectNextLogin     *bool `json:"reject_next_login,omitempty"`
	FailNextCreate      *bool `json:"fail_next_create,omitempty"`
}

// Start starts the debug HTTP server (debug build only) when
// Active.LocalDebugServer is set. The server listens on localhost only.
//
// introspector may be nil, in which case /_debug/session answers 501.
// The returned func shuts the server down.
func Start(introspector Introspector) func(context.Context) error {
	if !Active.LocalDebugServer {
		return func(context.Context) error { return nil }
	}

	srv := newServer(Active.DebugServerAddr, introspector)
	httpServer := &http.Server{
		Addr:              srv.addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 2 * time.Second,
	}

	bg.Async{}.Do(func() {
		logger := GetLogger()
		logger.Debugf("debug server listening on %s", srv.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Debugf("debug server error: %v", err)
		}
	})

	return httpServer.Shutdown
}

func newServer(addr string, introspector Introspector) *Server {
	s := &Server{addr: addr, router: chi.NewRouter(), introspector: introspector}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.router.Use(middleware.Recoverer)
	s.router.Route("/_debug", func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Get("/state", s.handleState)
		r.Get("/faults", s.getFaults)
		r.Post("/faults", s.setFaults)
		r.Post("/faults/reset", s.handleFaultsReset)
		r.Get("/session", s.handleSession)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	const html = `<!DOCTYPE html>
<html>
<head><title>yummy debug</title></head>
<body>
<h1>yummy client - debug interface</h1>
<p><strong>WARNING:</strong> debug build. Never expose this listener.</p>
<ul>
<li><a href="/_debug/state">/_debug/state</a> - debug flags and armed faults</li>
<li><a href="/_debug/session">/_debug/session</a> - session snapshot and recent notices</li>
<li><a href="/_debug/faults">/_debug/faults</a> - view (GET) or arm (POST) faults</li>
<li>/_debug/faults/reset - clear all faults (POST)</li>
</ul>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"debug_enabled":     Active.Enabled,
		"single_thread":     Active.SingleThreaded,
		"debug_server_addr": Active.DebugServerAddr,
		"faults":            Faults.Snapshot(),
	})
}

func (s *Server) getFaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, Faults.Snapshot())
}

// setFaults applies the fields present in the JSON body and answers with the new state.
func (s *Server) setFaults(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req FaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Debugf("failed to decode fault request: %v", err)
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if req.FailSignatureChecks != nil {
		if err := Faults.SetFailSignatureChecks(*req.FailSignatureChecks); err != nil {
			http.Error(w, fmt.Sprintf("Invalid count: %v", err), http.StatusBadRequest)
			return
		}
		logger.Debugf("fault set: fail_signature_checks=%d", *req.FailSignatureChecks)
	}
	if req.RejectNextLogin != nil {
		Faults.SetRejectNextLogin(*req.RejectNextLogin)
		logger.Debugf("fault set: reject_next_login=%v", *req.RejectNextLogin)
	}
	if req.FailNextCreate != nil {
		Faults.SetFailNextCreate(*req.FailNextCreate)
		logger.Debugf("fault set: fail_next_create=%v", *req.FailNextCreate)
	}

	s.getFaults(w, r)
}

func (s *Server) handleFaultsReset(w http.ResponseWriter, r *http.Request) {
	Faults.Reset()
	GetLogger().Debug("all faults reset")
	writeJSON(w, map[string]string{"status": "reset"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if s.introspector == nil {
		http.Error(w, "session introspection not available", http.StatusNotImplemented)
		return
	}
	writeJSON(w, s.introspector.SnapshotData(r.Context()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
