// Package ports defines the outbound ports (interfaces and types) used to
// decouple the session and call logic from identity-provider and backend
// adapters.
//
// Purpose
// -------
// Ports are the boundary between the domain/application and the
// infrastructure (adapters). Interfaces represent the contracts that
// adapters must satisfy. Keep these interfaces stable and focused; adapters
// implement concrete behavior using external SDKs (go-spiffe, net/http, chi).
//
// Files and responsibilities
// --------------------------
//   - identity.go: AuthClientFactory, AuthClient and Identity, the client half
//     of the identity provider contract, plus AuthProviderError.
//   - actor.go: ActorFactory and Actor, the authenticated recipe-backend client.
//   - clock.go: Clock, so retry backoff and notice expiry can be driven by tests.
//   - errors.go: infrastructure errors returned by adapters.
//
// Each interface includes an "Error Contract" in comments describing
// sentinel errors returned by implementations.
package ports
