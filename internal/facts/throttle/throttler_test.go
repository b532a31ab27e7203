package throttle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLimitsConcurrency(t *testing.T) {
	th := New(2, "test")
	var active atomic.Int64
	var maxSeen atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			permit, err := th.Acquire(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			defer permit.Release()

			current := active.Add(1)
			for {
				prev := maxSeen.Load()
				if current <= prev || maxSeen.CompareAndSwap(prev, current) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if maxSeen.Load() > 2 {
		t.Errorf("max concurrency observed = %d, want <= 2", maxSeen.Load())
	}
}

func TestPauseBlocksNewWork(t *testing.T) {
	th := New(5, "test")
	th.PauseFor(200 * time.Millisecond)

	start := time.Now()
	permit, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer permit.Release()
	elapsed := time.Since(start)

	if elapsed < 150*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 150ms", elapsed)
	}
}

func TestPauseForLongerPauseWins(t *testing.T) {
	th := New(1, "test")
	if !th.PauseFor(300 * time.Millisecond) {
		t.Fatal("expected first pause to take effect")
	}
	if th.PauseFor(50 * time.Millisecond) {
		t.Fatal("expected shorter overlapping pause to be a no-op")
	}
	if !th.IsPaused() {
		t.Fatal("expected throttler to remain paused")
	}
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	th := New(1, "test")
	th.PauseFor(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := th.Acquire(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}
