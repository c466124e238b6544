package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/sufield/yummy/internal/domain"
)

// DeleteAction performs the backend delete. It usually wraps an actor method
// in Call.
type DeleteAction func(ctx context.Context) (domain.DeleteResult, error)

// Deleter runs the confirm-then-delete flow and reports the outcome on a
// notice board.
type Deleter struct {
	guard   SessionGuard
	notices *NoticeBoard

	mu      sync.Mutex
	confirm bool
}

func NewDeleter(guard SessionGuard, notices *NoticeBoard) (*Deleter, error) {
	if guard == nil {
		return nil, fmt.Errorf("session guard is nil")
	}
	if notices == nil {
		return nil, fmt.Errorf("notice board is nil")
	}
	return &Deleter{guard: guard, notices: notices}, nil
}

// RequestDelete asks for confirmation.
func (d *Deleter) RequestDelete() {
	d.setConfirm(true)
}

func (d *Deleter) CancelDelete() {
	d.setConfirm(false)
}

// ConfirmationVisible reports whether a delete is waiting for confirmation.
func (d *Deleter) ConfirmationVisible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.confirm
}

// ConfirmDelete closes the confirmation and runs action.
//
// Without a session it posts "Not logged in" and returns nil. A backend Err
// result is posted as a warning and a backend Ok result as a success; both
// return nil. Only a failure of action itself is returned.
func (d *Deleter) ConfirmDelete(ctx context.Context, action DeleteAction) error {
	d.notices.Show("Deleting...", domain.SeverityWarning, 0)
	d.setConfirm(false)

	if !d.guard.IsAuthenticated() {
		d.notices.Show("Not logged in", domain.SeverityError, 0)
		return nil
	}

	res, err := action(ctx)
	if err != nil {
		d.notices.Show(fmt.Sprintf("Delete failed: %v", err), domain.SeverityError, 0)
		return fmt.Errorf("delete: %w", err)
	}
	if err := res.Validate(); err != nil {
		d.notices.Show("Delete failed: unexpected reply", domain.SeverityError, 0)
		return fmt.Errorf("delete: %w", err)
	}

	if res.Err != nil {
		d.notices.Show(res.Err.Msg, domain.SeverityWarning, 0)
		return nil
	}
	d.notices.Show(*res.Ok, domain.SeveritySuccess, 0)
	return nil
}

func (d *Deleter) setConfirm(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirm = v
}
