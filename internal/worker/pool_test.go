package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsJobsBeforeStopReturns(t *testing.T) {
	p := NewPool(10)
	p.Start(context.Background(), 2)

	var count int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(Job{Name: "count", Run: func(ctx context.Context) error {
			atomic.AddInt32(&count, 1)
			return nil
		}}))
	}
	p.Stop()

	assert.Equal(t, int32(5), atomic.LoadInt32(&count))
	assert.ErrorIs(t, p.Submit(Job{Name: "late", Run: func(context.Context) error { return nil }}), ErrStopped)
}

func TestPoolSurvivesFailingAndPanickingJobs(t *testing.T) {
	p := NewPool(10)
	p.Start(context.Background(), 1)

	var ran int32
	require.NoError(t, p.Submit(Job{Name: "fail", Run: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(Job{Name: "panic", Run: func(context.Context) error { panic("boom") }}))
	require.NoError(t, p.Submit(Job{Name: "ok", Run: func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}}))
	p.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestPoolQueueFull(t *testing.T) {
	p := NewPool(1)
	noop := Job{Name: "noop", Run: func(context.Context) error { return nil }}

	require.NoError(t, p.Submit(noop))
	assert.ErrorIs(t, p.Submit(noop), ErrQueueFull)

	p.Start(context.Background(), 1)
	p.Stop()
}

func TestPoolLimitsConcurrentJobs(t *testing.T) {
	p := NewPool(20)
	p.Start(context.Background(), 2)

	var running, peak int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(Job{Name: "slow", Run: func(context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}}))
	}
	p.Stop()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPoolStopWithoutStart(t *testing.T) {
	p := NewPool(1)
	p.Stop()
	p.Stop()

	assert.ErrorIs(t, p.Submit(Job{Name: "late", Run: func(context.Context) error { return nil }}), ErrStopped)
}

func TestPoolWorkersExitOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(1)
	p.Start(ctx, 3)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the context was cancelled")
	}
}
