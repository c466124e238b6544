package bg

// Sync runs each function in the calling goroutine and blocks until it returns.
type Sync struct{}

// Do executes the function immediately in the current goroutine.
func (Sync) Do(fn func()) {
	fn()
}
