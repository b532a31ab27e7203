package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireLockCreatesLockFile(t *testing.T) {
	dir := t.TempDir()
	guard, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer guard.Release()
}

func TestLockReleasedAllowsReacquire(t *testing.T) {
	dir := t.TempDir()
	guard, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	guard.Release()

	guard2, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	guard2.Release()
}

func TestAcquireLockTwiceSequentially(t *testing.T) {
	dir := t.TempDir()
	g1, err := AcquireLock(dir)
	if err != nil {
		t.Fatal(err)
	}
	g1.Release()

	g2, err := AcquireLock(dir)
	if err != nil {
		t.Fatal(err)
	}
	g2.Release()
}

func TestExclusiveLockBlocksConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	var acquired atomic.Int32
	var released atomic.Bool
	var wg sync.WaitGroup
	wg.Add(2)

	started := make(chan struct{})
	go func() {
		defer wg.Done()
		guard, err := AcquireLock(dir)
		if err != nil {
			t.Error(err)
			return
		}
		acquired.Add(1)
		close(started)
		time.Sleep(50 * time.Millisecond)
		released.Store(true)
		guard.Release()
	}()

	go func() {
		defer wg.Done()
		<-started
		guard, err := AcquireLock(dir)
		if err != nil {
			t.Error(err)
			return
		}
		if acquired.Load() < 1 {
			t.Error("expected first goroutine to have acquired the lock already")
		}
		if !released.Load() {
			t.Error("expected second acquire to block until the first guard was released")
		}
		guard.Release()
	}()

	wg.Wait()
}
