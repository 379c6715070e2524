package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupervisorRestartsTaskOnError(t *testing.T) {
	minRestartDelay = time.Millisecond
	t.Cleanup(func() { minRestartDelay = time.Second })

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s := New()
	s.Add("flaky", func(ctx context.Context) error {
		n := calls.Add(1)
		if n < 3 {
			return errors.New("boom")
		}
		cancel()
		<-ctx.Done()
		return nil
	})

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not return after cancellation")
	}

	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestSupervisorStopsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	s := New()
	s.Add("long-runner", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	<-started
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not return after shutdown")
	}
}

func TestSupervisorRunsMultipleTasksConcurrently(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started atomic.Int32
	s := New()
	for i := 0; i < 3; i++ {
		s.Add("task", func(ctx context.Context) error {
			started.Add(1)
			<-ctx.Done()
			return nil
		})
	}

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	require.Eventually(t, func() bool {
		return started.Load() == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not drain all tasks")
	}
}
