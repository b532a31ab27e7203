// Package throttle limits how many provider operations run concurrently and
// lets any of them pause the whole group in response to backpressure (a
// rate-limit response, a secondary abuse limit) without killing work already
// in flight.
package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/observability"
)

// minPauseExtension is the minimum extension a new pause needs over an
// already-active one to take effect. It absorbs clock drift between
// concurrent callers that all discover the same rate-limit reset time, so
// they don't each "win" a redundant pause.
const minPauseExtension = 1 * time.Second

// Throttler bounds concurrency with a counting semaphore and supports
// pausing all dispatch for a duration. The longest of any overlapping
// pauses wins.
type Throttler struct {
	name  string
	slots chan struct{}

	mu       sync.Mutex
	paused   bool
	resumeAt time.Time
	resumeCh chan struct{}
}

// New creates a Throttler that allows at most maxConcurrent operations to
// hold a permit at once. name labels the pauses this throttler reports.
func New(maxConcurrent int, name string) *Throttler {
	slots := make(chan struct{}, maxConcurrent)
	for i := 0; i < maxConcurrent; i++ {
		slots <- struct{}{}
	}
	return &Throttler{
		name:     name,
		slots:    slots,
		resumeCh: make(chan struct{}),
	}
}

// Permit represents a held concurrency slot. Release must be called exactly
// once to return the slot to the pool.
type Permit struct {
	t *Throttler
}

// Release returns the slot to the throttler.
func (p Permit) Release() {
	p.t.slots <- struct{}{}
}

// Acquire waits until the throttler is unpaused, then takes a concurrency
// slot. The caller must call Release on the returned Permit when the unit of
// work completes.
func (t *Throttler) Acquire(ctx context.Context) (Permit, error) {
	for {
		t.mu.Lock()
		paused := t.paused
		resumeCh := t.resumeCh
		t.mu.Unlock()

		if paused {
			select {
			case <-resumeCh:
				continue
			case <-ctx.Done():
				return Permit{}, ctx.Err()
			}
		}

		select {
		case <-t.slots:
			return Permit{t: t}, nil
		case <-ctx.Done():
			return Permit{}, ctx.Err()
		}
	}
}

// IsPaused reports whether the throttler is currently pausing dispatch.
func (t *Throttler) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// PauseFor pauses dispatch for duration, then automatically resumes. Tasks
// already holding a permit are unaffected; tasks blocked in Acquire remain
// parked until the pause elapses. If an equal or longer pause is already
// active, PauseFor is a no-op and returns false.
func (t *Throttler) PauseFor(duration time.Duration) bool {
	newResumeAt := time.Now().Add(duration)

	t.mu.Lock()
	if !t.resumeAt.IsZero() && t.resumeAt.Add(minPauseExtension).After(newResumeAt) {
		t.mu.Unlock()
		return false
	}
	t.resumeAt = newResumeAt
	t.paused = true
	t.mu.Unlock()

	observability.ThrottlerPauses.WithLabelValues(t.name).Inc()

	time.AfterFunc(duration, func() {
		t.mu.Lock()
		shouldResume := !t.resumeAt.IsZero() && !time.Now().Before(t.resumeAt)
		if shouldResume {
			t.resumeAt = time.Time{}
			t.paused = false
			closing := t.resumeCh
			t.resumeCh = make(chan struct{})
			t.mu.Unlock()
			close(closing)
			return
		}
		t.mu.Unlock()
	})

	return true
}
