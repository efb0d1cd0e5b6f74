package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// AfterFunc schedules f to run after d elapses, on its own goroutine.
	// The returned Timer can be stopped or re-armed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a stoppable, re-armable deadline
type Timer interface {
	// Stop cancels the timer; reports whether it was still pending
	Stop() bool

	// Reset re-arms the timer for a new duration; reports whether it was
	// still pending
	Reset(d time.Duration) bool
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f using time.AfterFunc
func (c *RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return &realTimer{t: time.AfterFunc(d, f)}
}

type realTimer struct {
	t *time.Timer
}

func (t *realTimer) Stop() bool {
	return t.t.Stop()
}

func (t *realTimer) Reset(d time.Duration) bool {
	return t.t.Reset(d)
}
