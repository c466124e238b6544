// Package delegation is the client half of an interactive, browser based
// identity provider login.
//
// The client keeps an ed25519 session key and, after a login, a delegation
// from the user's key to the session key, both in a YAML store file. Login
// starts a loopback listener, hands the provider URL to an Opener (normally
// the user's browser) and waits for the provider to redirect back to
// /callback with either a delegation or an error.
package delegation
