package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/dlsl-isg/reaction-ring/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Timers scheduled
// with AfterFunc fire synchronously from Advance when their deadline passes.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to fire when the mock clock advances past d
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{clock: c, deadline: c.now.Add(d), f: f, pending: true}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by the given duration, firing any timers
// whose deadline is reached in deadline order
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	due := c.takeDueLocked()
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *MockClock) takeDueLocked() []*mockTimer {
	var due, pending []*mockTimer
	for _, t := range c.timers {
		if t.pending && !t.deadline.After(c.now) {
			t.pending = false
			due = append(due, t)
		} else if t.pending {
			pending = append(pending, t)
		}
	}
	c.timers = pending
	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	f        func()
	pending  bool
}

func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.pending
	t.pending = false
	return was
}

func (t *mockTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.pending
	t.deadline = t.clock.now.Add(d)
	if !t.pending {
		t.pending = true
		t.clock.timers = append(t.clock.timers, t)
	}
	return was
}
