package bg

// Async runs each function in a new goroutine.
type Async struct{}

// Do executes the function in a new goroutine.
func (Async) Do(fn func()) {
	go fn()
}
