// Package clock abstracts wall-clock time and deferred callbacks so timer
// behavior can be tested deterministically.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// Clock provides the current time and callback scheduling.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// System is the real clock backed by the time package.
type System struct{}

// NewSystem returns the real clock.
func NewSystem() System { return System{} }

// Now implements Clock.
func (System) Now() time.Time { return time.Now() }

// AfterFunc implements Clock.
func (System) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Mock is a manually advanced clock for tests. Callbacks fire synchronously
// from Advance, in deadline order.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

// NewMock returns a mock clock starting at the given time.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

// Now implements Clock.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc implements Clock.
func (m *Mock) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTimer{clock: m, deadline: m.now.Add(d), fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer whose deadline has
// passed. Callbacks run without the clock lock held, so they may schedule
// new timers.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now

	var due []*mockTimer
	var rest []*mockTimer
	for _, t := range m.timers {
		if !t.stopped && !t.deadline.After(now) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.timers = rest
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, t := range due {
		t.fn()
	}
}

type mockTimer struct {
	clock    *Mock
	deadline time.Time
	fn       func()
	stopped  bool
}

// Stop implements Timer.
func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	for i, other := range t.clock.timers {
		if other == t {
			t.stopped = true
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}
	// Already fired or removed.
	t.stopped = true
	return false
}
