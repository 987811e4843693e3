package clock

import (
	"sync"
	"time"
)

// Clock abstracts the current time so date defaults are testable.
type Clock interface {
	Now() time.Time
}

// RealClock returns the device's local time. Calendar dates written to
// remote rows follow the site's wall clock, not UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a controllable clock for tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a FakeClock set to t.
func NewFake(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t.
func (f *FakeClock) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
