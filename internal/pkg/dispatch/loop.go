package dispatch

import (
	"context"
	"sync"
)

// Loop is a Queue drained by whichever goroutine calls Run.
type Loop struct {
	ch   chan func()
	quit chan struct{}
	once sync.Once
}

// NewLoop creates a loop with room for size pending callbacks.
func NewLoop(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		ch:   make(chan func(), size),
		quit: make(chan struct{}),
	}
}

// Post enqueues fn. It blocks while the buffer is full and drops fn once
// the loop has been closed.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.quit:
		return
	default:
	}
	select {
	case l.ch <- fn:
	case <-l.quit:
	}
}

// Run executes posted callbacks in order until ctx ends or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.quit:
			return
		case fn := <-l.ch:
			fn()
		}
	}
}

// Close stops the loop. Callbacks still queued are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
}
