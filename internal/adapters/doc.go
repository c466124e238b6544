// Package adapters contains infrastructure implementations of port interfaces.
//
// This package is the ADAPTER LAYER in hexagonal architecture - it implements
// the port interfaces defined in internal/ports using concrete technologies
// (go-spiffe, net/http, chi). Adapters translate between the session and call
// logic in internal/app and the identity provider or recipe backend.
//
// Hexagonal Architecture Boundaries:
//   - Adapters implement: internal/ports interfaces
//   - Adapters import from: internal/domain, internal/ports, external SDKs, standard library
//   - Adapters are instantiated: by internal/app.Bootstrap (composition root)
//   - Domain/App service code: NEVER imports concrete adapters directly
//
// Outbound Adapters (Driven Adapters)
//
// Example: delegation (outbound/delegation/)
//   - Implements: ports.AuthClientFactory, ports.AuthClient
//   - Technology: browser login with a loopback chi callback server, ed25519 session keys
//   - Purpose: Obtains a delegation from the identity provider and keeps it on disk
//
// Example: spiffeauth (outbound/spiffeauth/)
//   - Implements: ports.AuthClientFactory, ports.AuthClient
//   - Technology: go-spiffe SDK (workloadapi, spiffetls/tlsconfig)
//   - Purpose: Uses the workload's X.509 SVID as the session identity
//   - External dependency: SPIRE Agent via the Workload API socket
//
// Example: backend (outbound/backend/)
//   - Implements: ports.ActorFactory, ports.Actor
//   - Technology: net/http with JSON bodies, signed with the session identity
//   - Purpose: Calls the recipe backend's query and update methods
//
// Example: inmemory (outbound/inmemory/)
//   - Implements: both factories
//   - Purpose: Local "memory" network and test doubles with fault hooks
//
// Example Dependency Flow
//
//	yummy.Open / cmd/yummy
//	    ↓ calls
//	app.Bootstrap(ctx, cfg)
//	    ↓ picks by config
//	delegation.Factory | spiffeauth.Factory | inmemory.Provider
//	    ↓ passed to
//	app.Session (ports.AuthClientFactory, ports.ActorFactory)
//
// See Also
//   - internal/ports/ - Port interface definitions
//   - internal/domain/ - Domain models
//   - internal/app/ - Session, call and delete orchestration
package adapters
