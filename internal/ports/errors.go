package ports

import "errors"

// Infrastructure errors for adapter layer.
//
// These errors represent infrastructure/adapter concerns and are separate from
// domain errors which represent business/semantic failures.

// ErrNoAuthClient indicates the session has no identity provider client,
// either because bootstrap has not run or because client creation failed.
var ErrNoAuthClient = errors.New("no auth client")

// ErrProviderUnavailable indicates the identity provider (browser flow
// endpoint or SPIRE agent) cannot be reached.
var ErrProviderUnavailable = errors.New("identity provider unavailable")

// ErrStoreCorrupt indicates the local credential store could not be decoded.
var ErrStoreCorrupt = errors.New("credential store corrupt")

// ErrLoginInProgress indicates a second interactive login was started while
// one is still waiting for its callback.
var ErrLoginInProgress = errors.New("login already in progress")

// Compile-time check that errors implement error interface
var (
	_ error = ErrNoAuthClient
	_ error = ErrProviderUnavailable
	_ error = ErrStoreCorrupt
	_ error = ErrLoginInProgress
)
