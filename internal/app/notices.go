package app

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sufield/yummy/internal/domain"
	"github.com/sufield/yummy/internal/logging"
	"github.com/sufield/yummy/internal/ports"
)

// DefaultNoticeHistory is how many past notices a board keeps.
const DefaultNoticeHistory = 32

// NoticeBoard holds the notice currently shown to the user and a short history.
type NoticeBoard struct {
	clock ports.Clock
	log   zerolog.Logger
	limit int

	mu      sync.Mutex
	current domain.Notice
	history *queue.Queue // of domain.Notice, oldest first
}

// NoticeOption configures a NoticeBoard.
type NoticeOption func(*NoticeBoard)

func WithNoticeClock(c ports.Clock) NoticeOption {
	return func(b *NoticeBoard) { b.clock = c }
}

func WithNoticeLogger(l zerolog.Logger) NoticeOption {
	return func(b *NoticeBoard) { b.log = l }
}

// WithHistory sets the history length. Values below 1 keep the default.
func WithHistory(n int) NoticeOption {
	return func(b *NoticeBoard) {
		if n > 0 {
			b.limit = n
		}
	}
}

func NewNoticeBoard(opts ...NoticeOption) *NoticeBoard {
	b := &NoticeBoard{
		clock:   SystemClock{},
		log:     logging.Component("notices"),
		limit:   DefaultNoticeHistory,
		history: queue.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Show replaces the current notice. An invalid severity becomes info and a
// non-positive duration becomes domain.DefaultNoticeDuration.
func (b *NoticeBoard) Show(text string, sev domain.Severity, d time.Duration) domain.Notice {
	if !sev.IsValid() {
		sev = domain.SeverityInfo
	}
	if d <= 0 {
		d = domain.DefaultNoticeDuration
	}
	n := domain.Notice{
		ID:       uuid.NewString(),
		Text:     text,
		Severity: sev,
		Duration: d,
		ShownAt:  b.clock.Now(),
		Visible:  true,
	}

	b.mu.Lock()
	b.current = n
	b.history.Add(n)
	for b.history.Length() > b.limit {
		b.history.Remove()
	}
	b.mu.Unlock()

	b.event(sev).Str("notice_id", n.ID).Msg(text)
	return n
}

// Hide clears the visibility of the current notice.
func (b *NoticeBoard) Hide() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current.Visible = false
}

// Current returns the current notice with Visible reflecting expiry.
func (b *NoticeBoard) Current() domain.Notice {
	b.mu.Lock()
	n := b.current
	b.mu.Unlock()
	n.Visible = n.VisibleAt(b.clock.Now())
	return n
}

// Recent returns up to n past notices, most recent first. n <= 0 returns all
// of them.
func (b *NoticeBoard) Recent(n int) []domain.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := b.history.Length()
	if n <= 0 || n > size {
		n = size
	}
	now := b.clock.Now()
	out := make([]domain.Notice, 0, n)
	for i := size - 1; i >= size-n; i-- {
		item := b.history.Get(i).(domain.Notice)
		item.Visible = item.ID == b.current.ID && b.current.VisibleAt(now)
		out = append(out, item)
	}
	return out
}

func (b *NoticeBoard) event(sev domain.Severity) *zerolog.Event {
	switch sev {
	case domain.SeverityError:
		return b.log.Error()
	case domain.SeverityWarning:
		return b.log.Warn()
	default:
		return b.log.Info().Str("severity", string(sev))
	}
}
