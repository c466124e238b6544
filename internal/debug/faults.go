package debug

import (
	"fmt"
	"sync"
)

// FaultProfile holds faults that adapters consult before doing real work.
// Every fault is consumed when it fires, so a test arms exactly the failures
// it wants to see.
type FaultProfile struct {
	mu sync.RWMutex

	// FailSignatureChecks is how many upcoming backend calls fail with the
	// certificate signature error.
	FailSignatureChecks int

	// RejectNextLogin makes the next interactive login fail with a provider error.
	RejectNextLogin bool

	// FailNextCreate makes the next auth client creation fail.
	FailNextCreate bool
}

// Faults is the global fault profile
var Faults = &FaultProfile{}

// SetFailSignatureChecks arms n signature failures. n must be >= 0.
func (f *FaultProfile) SetFailSignatureChecks(n int) error {
	if n < 0 {
		return fmt.Errorf("signature failure count must be non-negative, got %d", n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailSignatureChecks = n
	return nil
}

// ShouldFailSignature consumes one armed signature failure.
func (f *FaultProfile) ShouldFailSignature() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSignatureChecks > 0 {
		f.FailSignatureChecks--
		return true
	}
	return false
}

func (f *FaultProfile) SetRejectNextLogin(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RejectNextLogin = enabled
}

// ShouldRejectLogin checks and consumes the reject login flag
func (f *FaultProfile) ShouldRejectLogin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RejectNextLogin {
		f.RejectNextLogin = false
		return true
	}
	return false
}

func (f *FaultProfile) SetFailNextCreate(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailNextCreate = enabled
}

// ShouldFailCreate checks and consumes the fail create flag
func (f *FaultProfile) ShouldFailCreate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNextCreate {
		f.FailNextCreate = false
		return true
	}
	return false
}

// Reset clears all fault flags
func (f *FaultProfile) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailSignatureChecks = 0
	f.RejectNextLogin = false
	f.FailNextCreate = false
}

// Snapshot returns a point-in-time copy of the faults keyed by their JSON names.
func (f *FaultProfile) Snapshot() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return map[string]any{
		"fail_signature_checks": f.FailSignatureChecks,
		"reject_next_login":     f.RejectNextLogin,
		"fail_next_create":      f.FailNextCreate,
	}
}
