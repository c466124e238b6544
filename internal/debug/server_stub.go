//go:build !debug

package debug

import "context"

// Start is a no-op outside debug builds. The returned stop func does nothing.
func Start(introspector Introspector) func(context.Context) error {
	_ = introspector
	return func(context.Context) error { return nil }
}
