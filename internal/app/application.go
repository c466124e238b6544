package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sufield/yummy/internal/config"
	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/ports"
)

// Application holds the components wired by Bootstrap.
type Application struct {
	Config  config.FileConfig
	Session *Session
	Notices *NoticeBoard
	Deleter *Deleter
	Policy  domain.RetryPolicy

	provider  string
	clock     ports.Clock
	log       zerolog.Logger
	stopDebug func(context.Context) error

	closeOnce sync.Once
	closeErr  error
}

// Provider names the identity provider adapter in use.
func (a *Application) Provider() string {
	return a.provider
}

// Close destroys the session and stops the debug server. It is safe to call
// more than once; later calls return the first result.
func (a *Application) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.Session != nil {
			if err := a.Session.Destroy(ctx); err != nil {
				errs = append(errs, fmt.Errorf("destroy session: %w", err))
			}
		}
		if a.stopDebug != nil {
			if err := a.stopDebug(ctx); err != nil {
				errs = append(errs, fmt.Errorf("stop debug server: %w", err))
			}
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

// SnapshotData describes the client for the debug server.
func (a *Application) SnapshotData(_ context.Context) debug.Snapshot {
	mode := "production"
	if debug.Active.Enabled {
		mode = "debug"
	}

	st := a.Session.Snapshot()
	view := debug.SessionView{
		Ready:         st.Ready,
		Authenticated: st.Auth.String(),
		Principal:     st.Principal,
	}
	if !st.ExpiresAt.IsZero() {
		view.ExpiresInSeconds = int64(st.ExpiresAt.Sub(a.clock.Now()) / time.Second)
	}

	recent := a.Notices.Recent(0)
	notices := make([]debug.NoticeView, 0, len(recent))
	for _, n := range recent {
		notices = append(notices, debug.NoticeView{Text: n.Text, Severity: string(n.Severity), Visible: n.Visible})
	}

	return debug.Snapshot{
		Mode:     mode,
		Network:  a.Config.Network,
		Provider: a.provider,
		Session:  view,
		Notices:  notices,
	}
}

var _ debug.Introspector = (*Application)(nil)
