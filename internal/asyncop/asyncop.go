// Package asyncop correlates asynchronous plugin callbacks back to the
// pending operation that triggered them: discovery, pairing/setup, action
// execution, and browsing all suspend while a plugin works in the
// background, and resume only when PluginHost calls back with a matching
// (kind, correlation id) pair.
package asyncop

import (
	"time"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// Kind distinguishes the class of operation, since the correlation id space
// is only unique within a kind (a discovery id and a setup id may collide).
type Kind int

const (
	KindDiscovery Kind = iota
	KindPairing
	KindSetup
	KindAction
	KindBrowse
)

// DefaultTimeout returns the standard suspension budget for k.
func DefaultTimeout(k Kind) time.Duration {
	switch k {
	case KindDiscovery:
		return 30 * time.Second
	case KindPairing, KindSetup:
		return 10 * time.Minute
	case KindAction, KindBrowse:
		return 30 * time.Second
	default:
		return 30 * time.Second
	}
}

type key struct {
	kind Kind
	id   model.ID
}

// Result is what a pending operation resolves to: a status code (including
// status.Timeout if nobody ever replied) plus an opaque payload the caller
// type-asserts back to its expected shape.
type Result struct {
	Code    status.Code
	Payload interface{}
}

type pending struct {
	resultCh chan Result
	timer    *time.Timer
}

// Tracker holds every in-flight suspension. Every method must be called
// from the single core loop goroutine, including Complete: a plugin
// callback arriving on its own goroutine must be re-posted onto the core
// loop (via loop.Post) before calling Complete, exactly like any other
// mutation of core state.
type Tracker struct {
	ops map[key]*pending
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{ops: make(map[key]*pending)}
}

// Begin registers a new suspension for (kind, id) and returns a channel that
// receives at most one Result: a real completion via Complete, or the code
// passed to TimeoutNow/Cancel. When timeout elapses Begin sends nothing
// itself; it only calls onTimeout, which fires on whatever goroutine the
// time.Timer uses and must only ever loop.Post its cleanup work (typically
// TimeoutNow) rather than touch core state directly.
func (t *Tracker) Begin(k Kind, id model.ID, timeout time.Duration, onTimeout func()) <-chan Result {
	ch := make(chan Result, 1)
	kk := key{kind: k, id: id}
	timer := time.AfterFunc(timeout, func() {
		if onTimeout != nil {
			onTimeout()
		}
	})
	t.ops[kk] = &pending{resultCh: ch, timer: timer}
	return ch
}

// Complete resolves a pending operation. A callback that arrives after the
// operation already timed out (and was removed by TimeoutNow) is silently
// dropped: late callbacks must never resurrect an operation the caller has
// already given up on.
func (t *Tracker) Complete(k Kind, id model.ID, code status.Code, payload interface{}) bool {
	kk := key{kind: k, id: id}
	p, ok := t.ops[kk]
	if !ok {
		return false
	}
	delete(t.ops, kk)
	p.timer.Stop()
	p.resultCh <- Result{Code: code, Payload: payload}
	close(p.resultCh)
	return true
}

// TimeoutNow forcibly expires a pending operation, delivering status.Timeout
// to its waiter and removing it so a later Complete is dropped. Called by
// the onTimeout callback passed to Begin, once re-posted onto the core loop.
func (t *Tracker) TimeoutNow(k Kind, id model.ID) {
	t.Cancel(k, id, status.Timeout)
}

// Cancel forcibly resolves a pending operation with code, removing it so a
// later Complete from the same plugin callback is dropped. Used both for
// timeout expiry and for ops whose target thing was removed mid-flight.
func (t *Tracker) Cancel(k Kind, id model.ID, code status.Code) {
	kk := key{kind: k, id: id}
	p, ok := t.ops[kk]
	if !ok {
		return
	}
	delete(t.ops, kk)
	p.timer.Stop()
	p.resultCh <- Result{Code: code}
	close(p.resultCh)
}

// Pending reports whether (kind, id) still has an outstanding operation.
func (t *Tracker) Pending(k Kind, id model.ID) bool {
	_, ok := t.ops[key{kind: k, id: id}]
	return ok
}
