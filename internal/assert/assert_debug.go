//go:build debug

package assert

import "fmt"

// Invariant panics if ok is false. Debug builds only.
//
// Use it for internal state that must always hold, for example that a
// session holds an identity exactly when it is authenticated. It is not for
// validating input.
//
//	assert.Invariant(s.identity != nil, "authenticated session must hold an identity")
func Invariant(ok bool, msg string) {
	if !ok {
		panic(fmt.Sprintf("INVARIANT VIOLATION: %s", msg))
	}
}

// Invariantf is Invariant with a formatted message. The message is only
// formatted when the check fails.
func Invariantf(ok bool, format string, args ...any) {
	if !ok {
		panic("INVARIANT VIOLATION: " + fmt.Sprintf(format, args...))
	}
}
