package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *int64
	err     error
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	atomic.AddInt64(j.counter, 1)
	return &countResult{err: j.err}
}

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	var executed int64
	for i := 0; i < 20; i++ {
		pool.Submit(&countJob{counter: &executed})
	}

	results := pool.Wait()
	if got := atomic.LoadInt64(&executed); got != 20 {
		t.Errorf("executed %d jobs, want 20", got)
	}
	if len(results) != 20 {
		t.Errorf("collected %d results, want 20", len(results))
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int64
	pool.Submit(&countJob{counter: &executed})
	pool.Submit(&countJob{counter: &executed, err: context.DeadlineExceeded})

	failures := 0
	for _, result := range pool.Wait() {
		if result.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestPoolZeroWorkers(t *testing.T) {
	pool := NewPool(context.Background(), 0)
	pool.Start()

	var executed int64
	pool.Submit(&countJob{counter: &executed})
	pool.Wait()

	if executed != 1 {
		t.Errorf("zero-worker pool should fall back to one worker, executed %d", executed)
	}
}

func TestPoolBacklogLargerThanBuffers(t *testing.T) {
	pool := NewPool(context.Background(), 5)
	pool.Start()

	// One run can queue far more jobs than the pool buffers hold; the
	// submit loop must not stall waiting for Wait to drain results.
	var executed int64
	done := make(chan []Result, 1)
	go func() {
		for i := 0; i < 40; i++ {
			pool.Submit(&countJob{counter: &executed})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if got := atomic.LoadInt64(&executed); got != 40 {
			t.Errorf("executed %d jobs, want 40", got)
		}
		if len(results) != 40 {
			t.Errorf("collected %d results, want 40", len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submit loop stalled with more jobs than the pool buffers")
	}
}

type blockingJob struct{}

func (j *blockingJob) Execute(ctx context.Context) Result {
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
	return &countResult{err: ctx.Err()}
}

func TestPoolCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 2)
	pool.Start()

	pool.Submit(&blockingJob{})
	pool.Submit(&blockingJob{})

	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not drain after context cancellation")
	}
}
