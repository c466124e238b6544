package debug

import "context"

// Introspector is implemented by components that can describe their state
// to the debug server.
type Introspector interface {
	// SnapshotData returns a sanitized view of the client state. It must
	// never include keys or delegation material.
	SnapshotData(ctx context.Context) Snapshot
}
