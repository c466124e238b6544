package ports

import (
	"context"
	"time"
)

// Clock abstracts time so backoff and expiry can be tested without sleeping.
type Clock interface {
	Now() time.Time

	// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}
