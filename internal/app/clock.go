package app

import (
	"context"
	"time"

	"github.com/sufield/yummy/internal/ports"
)

// SystemClock is the wall clock.
type SystemClock struct{}

var _ ports.Clock = SystemClock{}

func (SystemClock) Now() time.Time { return time.Now() }

// Sleep waits for d or until ctx is done. A non-positive d returns at once
// unless ctx is already done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
