// Package bg decides how yummy starts its own goroutines.
//
// Callbacks that may block on the outside world, such as opening the login
// URL in a browser, go through a Runner so tests and single threaded debug
// sessions can run them inline with Sync while production uses Async.
// Listener loops always use Async: Serve never returns under Sync.
package bg

// Runner executes functions, either synchronously or asynchronously.
type Runner interface {
	// Do executes the given function.
	// The implementation determines whether this happens synchronously or asynchronously.
	Do(fn func())
}

// Go runs fn through r and returns a channel that is closed once fn returns.
//
// With Sync the channel is already closed when Go returns.
func Go(r Runner, fn func()) <-chan struct{} {
	done := make(chan struct{})
	r.Do(func() {
		defer close(done)
		fn()
	})
	return done
}

// Default returns the runner used when none is configured.
func Default(r Runner) Runner {
	if r == nil {
		return Async{}
	}
	return r
}
