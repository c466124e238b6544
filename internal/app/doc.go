// Package app contains the client's use cases and its composition root.
//
// Responsibilities
//   - Session: bootstraps and tracks the authenticated session with the
//     identity provider (session.go).
//   - Call: wraps a remote call with bounded retry for transient signature
//     failures, forcing a logout when retries run out without a session
//     (call.go).
//   - NoticeBoard: transient user notifications with a short history
//     (notices.go).
//   - Deleter: the confirm-then-delete flow (delete.go).
//   - Bootstrap: builds the adapters named by the configuration and returns
//     a wired Application (bootstrap.go, application.go, service.go).
//
// Architectural notes
//   - Adapters are reached only through internal/ports; Bootstrap is the one
//     place that names concrete adapter packages.
//   - Session is an explicit object. There is no package-level session.
package app
