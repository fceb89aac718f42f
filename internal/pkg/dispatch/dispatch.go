// Package dispatch runs blocking work off the caller's goroutine and hands
// the result back on a queue the caller drains itself.
package dispatch

import (
	"context"
)

// Future is the pending result of a function started with Go.
type Future[T any] struct {
	done  chan struct{}
	value T
}

// Go runs fn on a new goroutine.
func Go[T any](fn func() T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value = fn()
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the result is ready or ctx ends. The work itself keeps
// running after ctx ends; only the wait is abandoned.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Queue accepts callbacks to run on its owner's goroutine.
type Queue interface {
	Post(fn func())
}

// Then posts cb(result) onto q once f completes. cb never runs on the
// worker goroutine.
func Then[T any](f *Future[T], q Queue, cb func(T)) {
	go func() {
		<-f.done
		v := f.value
		q.Post(func() { cb(v) })
	}()
}
