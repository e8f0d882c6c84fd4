package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestImportLimiter_SlotAccounting(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	steps := []struct {
		action        string
		wantActive    int
		wantAvailable int
	}{
		{"acquire", 1, 1},
		{"acquire", 2, 0},
		{"release", 1, 1},
		{"release", 0, 2},
	}

	for i, step := range steps {
		switch step.action {
		case "acquire":
			if err := limiter.Acquire(ctx); err != nil {
				t.Fatalf("step %d: Acquire() error = %v", i, err)
			}
		case "release":
			limiter.Release()
		}

		status := limiter.Status()
		if status.Active != step.wantActive || status.Available != step.wantAvailable {
			t.Errorf("step %d (%s): status = %+v, want active=%d available=%d",
				i, step.action, status, step.wantActive, step.wantAvailable)
		}
	}
}

func TestImportLimiter_RejectsAfterMaxWait(t *testing.T) {
	limiter := NewImportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire() on empty limiter = false")
	}
	defer limiter.Release()

	if limiter.TryAcquire() {
		limiter.Release()
		t.Fatal("TryAcquire() on full limiter = true")
	}

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyImports) {
		t.Fatalf("Acquire() error = %v, want ErrTooManyImports", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire() gave up after %v, want about 50ms", elapsed)
	}
}

func TestImportLimiter_AcquireHonoursContext(t *testing.T) {
	limiter := NewImportLimiter(1, 5*time.Second)
	limiter.TryAcquire()
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() did not return after cancellation")
	}
}

func TestImportLimiter_NeverExceedsLimit(t *testing.T) {
	const limit = 2
	limiter := NewImportLimiter(limit, time.Second)

	var (
		wg      sync.WaitGroup
		running atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer limiter.Release()

			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrency = %d, want <= %d", got, limit)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() after all done = %d, want 0", got)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	limiter.TryAcquire()

	done := make(chan error, 1)
	go func() { done <- limiter.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain() returned while an import was running")
	case <-time.After(150 * time.Millisecond):
	}

	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain() did not return after release")
	}
}

func TestImportLimiter_WaitForDrainDeadline(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)
	limiter.TryAcquire()
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() error = %v, want DeadlineExceeded", err)
	}
}

func TestImportLimiter_Defaults(t *testing.T) {
	limiter := NewImportLimiter(0, 0)

	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentImports {
		t.Errorf("MaxConcurrent() = %d, want %d", got, DefaultMaxConcurrentImports)
	}
	if limiter.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWaitTime)
	}
}
