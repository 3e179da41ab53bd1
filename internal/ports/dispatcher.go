package ports

// Dispatcher serializes work onto a single goroutine. Post never blocks and
// reports false once the dispatcher stopped accepting work.
type Dispatcher interface {
	Post(fn func()) bool
}
