// Package loop implements a single serialized "core loop": every mutation
// of ThingManager, RuleEngine and TimeManager state happens on one
// goroutine, reached only through Post, in place of a mutex-guarded core.
package loop

import (
	"context"
)

// Loop serializes closures onto a single goroutine.
type Loop struct {
	jobs chan func()
	done chan struct{}
}

// New creates a Loop with the given mailbox capacity.
func New(capacity int) *Loop {
	return &Loop{
		jobs: make(chan func(), capacity),
		done: make(chan struct{}),
	}
}

// Run executes posted jobs in arrival order until ctx is cancelled. It
// blocks the calling goroutine and should typically be run via `go l.Run(ctx)`.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-l.jobs:
			job()
		}
	}
}

// Post enqueues fn to run on the loop goroutine. Safe to call from any
// goroutine, including the loop goroutine itself (fn then runs after
// whatever posted it).
func (l *Loop) Post(fn func()) {
	l.jobs <- fn
}

// PostWait enqueues fn and blocks until it has run, returning its result.
// Used by synchronous ThingManager/RuleEngine operations that must observe
// core state consistently.
func PostWait[T any](l *Loop, fn func() T) T {
	result := make(chan T, 1)
	l.Post(func() {
		result <- fn()
	})
	return <-result
}

// Done returns a channel closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }
