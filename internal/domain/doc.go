// Package domain contains the domain model for the yummy client.
//
// This package is the CORE of the hexagonal architecture - it defines the
// session, retry, notice and backend-result value objects with ZERO
// dependencies on identity-provider SDKs, HTTP transports, or logging.
//
// Hexagonal Architecture Boundaries:
//   - Domain NEVER imports from: internal/adapters, internal/ports, internal/app, external SDKs
//   - Domain ONLY imports from: standard library, other domain types
//   - Domain exposes: value objects, enums, domain errors
//   - Domain does NOT: perform I/O, call remote services, sleep
//
// Files and types:
//   - session_state.go: AuthState (tri-state flag) and SessionState (sanitized snapshot)
//   - retry_policy.go: RetryPolicy, bounded exponential backoff for transient failures
//   - error_kind.go: ErrorKind, CallError and Classify for remote call failures
//   - notice.go: Notice and Severity for transient user-facing notifications
//   - backend.go: User, RecipeBrief, DeleteResult, BackendError returned by the recipe backend
//   - errors.go: sentinel errors for business failures
package domain
