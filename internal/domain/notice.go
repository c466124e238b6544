package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultNoticeDuration is how long a notice stays visible when no duration is given.
const DefaultNoticeDuration = 5 * time.Second

// Severity is the display level of a notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// IsValid reports whether s is one of the known severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeveritySuccess:
		return true
	}
	return false
}

// ParseSeverity parses a severity name, case-insensitively. Empty means info.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return SeverityInfo, nil
	}
	if !s.IsValid() {
		return SeverityInfo, fmt.Errorf("unknown severity %q", raw)
	}
	return s, nil
}

// Notice is a transient user-facing notification.
type Notice struct {
	ID       string
	Text     string
	Severity Severity
	Duration time.Duration
	ShownAt  time.Time
	Visible  bool
}

// ExpiresAt returns when the notice stops being visible on its own.
func (n Notice) ExpiresAt() time.Time {
	return n.ShownAt.Add(n.Duration)
}

// VisibleAt reports whether the notice is still displayed at now.
func (n Notice) VisibleAt(now time.Time) bool {
	return n.Visible && now.Before(n.ExpiresAt())
}
