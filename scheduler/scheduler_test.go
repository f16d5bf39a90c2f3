package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerTicks(t *testing.T) {
	var calls int64

	sched := New(10*time.Millisecond, func(ctx context.Context) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 0, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	assert.GreaterOrEqual(t, atomic.LoadInt64(&calls), int64(2))
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	sched := New(0, func(ctx context.Context) (int, error) { return 0, nil })
	assert.Equal(t, time.Minute, sched.interval)
}

func TestSchedulerSurvivesPublishErrors(t *testing.T) {
	var calls int64

	sched := New(10*time.Millisecond, func(ctx context.Context) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 0, context.DeadlineExceeded
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	sched.Start(ctx)

	// Errors are logged, not fatal: the loop keeps ticking
	assert.GreaterOrEqual(t, atomic.LoadInt64(&calls), int64(2))
}
