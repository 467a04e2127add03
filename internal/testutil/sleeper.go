package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/prilive-com/gramsea/internal/resilience"
)

// FakeSleeper records the delays asked of it and returns at once, so retry
// and backoff schedules can be asserted without waiting.
type FakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

var _ resilience.Sleeper = (*FakeSleeper)(nil)

// Sleep records d. A done ctx is reported and not recorded.
func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.delays = append(f.delays, d)
	f.mu.Unlock()
	return nil
}

func (f *FakeSleeper) snapshot() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.delays)
}

// Calls returns the recorded delays in order.
func (f *FakeSleeper) Calls() []time.Duration { return f.snapshot() }

// CallCount returns how many delays were recorded.
func (f *FakeSleeper) CallCount() int { return len(f.snapshot()) }

// CallAt returns the delay at index, or 0 when out of range.
func (f *FakeSleeper) CallAt(index int) time.Duration {
	delays := f.snapshot()
	if index < 0 || index >= len(delays) {
		return 0
	}
	return delays[index]
}

// LastCall returns the latest delay, or 0.
func (f *FakeSleeper) LastCall() time.Duration {
	return f.CallAt(f.CallCount() - 1)
}

// TotalDuration sums the recorded delays.
func (f *FakeSleeper) TotalDuration() time.Duration {
	var total time.Duration
	for _, d := range f.snapshot() {
		total += d
	}
	return total
}

// Reset forgets every recorded delay.
func (f *FakeSleeper) Reset() {
	f.mu.Lock()
	f.delays = nil
	f.mu.Unlock()
}
