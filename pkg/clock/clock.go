// Package clock abstracts blocking delays so that sampling loops can run on simulated time in tests.
package clock

import (
	"context"
	"sync"
	"time"
)

// Sleeper suspends the caller for a duration.
type Sleeper interface {
	// Sleep blocks for d or until ctx is done, in which case it returns ctx.Err().
	Sleep(ctx context.Context, d time.Duration) error
}

var (
	_ Sleeper = Real{}
	_ Sleeper = (*Fake)(nil)
)

// Real sleeps on the wall clock.
type Real struct{}

// Sleep waits on a timer.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fake records requested sleeps and returns immediately.
type Fake struct {
	mu      sync.Mutex
	sleeps  []time.Duration
	elapsed time.Duration

	// OnSleep, if set, is called after each recorded sleep with the call index and
	// the total simulated time. Tests use it to cancel a loop after some cycles.
	OnSleep func(n int, elapsed time.Duration)
}

// Sleep records d and advances the simulated time.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	f.elapsed += d
	n, elapsed, hook := len(f.sleeps), f.elapsed, f.OnSleep
	f.mu.Unlock()

	if hook != nil {
		hook(n, elapsed)
	}
	return ctx.Err()
}

// Sleeps returns a copy of all recorded durations.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

// Elapsed returns the total simulated time.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

// Count returns how many sleeps of exactly d were recorded.
func (f *Fake) Count(d time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, s := range f.sleeps {
		if s == d {
			n++
		}
	}
	return n
}
