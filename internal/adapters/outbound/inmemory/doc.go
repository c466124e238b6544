// Package inmemory contains in-process implementations of the identity
// provider and recipe backend ports.
//
// They let the client run with network "memory" and give tests scripted,
// deterministic providers. They are not suitable for production use.
//
// Files
//
//   - provider.go
//     Provider: implements ports.AuthClientFactory and ports.AuthClient.
//     Options script an existing session, a login failure, or a failing
//     Create. Counters record how often each operation ran.
//
//   - backend.go
//     Backend: implements ports.ActorFactory over a user and recipe map.
//     Actor methods follow the recipe backend's rules (one user per
//     principal, only the author may delete a recipe, empty names rejected).
//
// Both consult debug.Faults so the debug server can inject failures.
package inmemory
