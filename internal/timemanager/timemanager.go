// Package timemanager implements the per-second tick and per-minute
// dateTimeChanged signal: one coarse 1-second ticker, a test-only override
// offset, and a minute-boundary comparison against the last emitted instant
// rather than a second independent timer.
package timemanager

import (
	"context"
	"sync"
	"time"

	"github.com/nymea/nymea-sub004/internal/logger"
)

// TickHandler is invoked once per second.
type TickHandler func()

// DateTimeHandler is invoked when the minute changes, or immediately after
// SetTime.
type DateTimeHandler func(dt time.Time)

// TimeManager emits tick and dateTimeChanged. Ticker-driven handler
// invocations happen on whatever goroutine calls Run, while SetTime runs its
// handlers on its own caller's goroutine; callers that need
// serialization with the rest of the core should wrap handlers in a
// loop.Post call before registering them.
type TimeManager struct {
	mu                sync.Mutex
	overrideDiff      time.Duration
	lastMinute        int
	lastEventWallTime time.Time

	tickHandlers     []TickHandler
	dateTimeHandlers []DateTimeHandler

	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once
}

// New creates a TimeManager. The ticker is not started until Run is called.
func New() *TimeManager {
	return &TimeManager{
		stopCh: make(chan struct{}),
	}
}

// CurrentDateTime returns the wall clock adjusted by any test override set
// with SetTime.
func (m *TimeManager) CurrentDateTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Now().Add(m.overrideDiff)
}

// SetTime overrides the manager's notion of "now" for tests: offset =
// dt - now. dateTimeChanged is emitted immediately with dt, matching
// timemanager.cpp's setTime behavior ("You should only see this in tests").
func (m *TimeManager) SetTime(dt time.Time) {
	m.mu.Lock()
	m.overrideDiff = dt.Sub(time.Now())
	m.lastMinute = dt.Minute()
	m.lastEventWallTime = dt
	handlers := append([]DateTimeHandler(nil), m.dateTimeHandlers...)
	m.mu.Unlock()

	logger.Time().Warn().Time("dt", dt).Msg("TimeManager time overridden; this should only happen in tests")
	for _, h := range handlers {
		h(dt)
	}
}

// OnTick registers a handler invoked every tick.
func (m *TimeManager) OnTick(h TickHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickHandlers = append(m.tickHandlers, h)
}

// OnDateTimeChanged registers a handler invoked on every minute boundary.
func (m *TimeManager) OnDateTimeChanged(h DateTimeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dateTimeHandlers = append(m.dateTimeHandlers, h)
}

// Run starts the 1-second ticker and blocks until ctx is cancelled or Stop
// is called. Call it from its own goroutine.
func (m *TimeManager) Run(ctx context.Context) {
	now := m.CurrentDateTime()
	m.mu.Lock()
	m.ticker = time.NewTicker(time.Second)
	m.lastEventWallTime = now
	m.lastMinute = now.Minute()
	ticker := m.ticker
	m.mu.Unlock()

	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.emitTick()
		}
	}
}

func (m *TimeManager) emitTick() {
	m.mu.Lock()
	tickHandlers := append([]TickHandler(nil), m.tickHandlers...)
	m.mu.Unlock()
	for _, h := range tickHandlers {
		h()
	}

	now := m.CurrentDateTime()
	m.mu.Lock()
	minuteChanged := now.Minute() != m.lastMinute
	if minuteChanged {
		m.lastMinute = now.Minute()
		m.lastEventWallTime = now
	}
	dtHandlers := append([]DateTimeHandler(nil), m.dateTimeHandlers...)
	m.mu.Unlock()

	if minuteChanged {
		for _, h := range dtHandlers {
			h(now)
		}
	}
}

// Tick fires tick handlers once, without waiting for the real ticker. For
// tests that want to drive the per-second evaluation path without SetTime's
// minute-boundary semantics.
func (m *TimeManager) Tick() {
	m.mu.Lock()
	handlers := append([]TickHandler(nil), m.tickHandlers...)
	m.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

// Stop halts tick emission. Idempotent.
func (m *TimeManager) Stop() {
	m.once.Do(func() {
		close(m.stopCh)
	})
}
