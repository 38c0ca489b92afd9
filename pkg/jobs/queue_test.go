package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)
	done := make(chan struct{}, 3)

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		seen[job.ID]++
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Options{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "t"}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 3)
	for id, count := range seen {
		assert.Equal(t, 1, count, "job %s handled once", id)
	}
}

func TestQueueRetriesUntilExhausted(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	exhausted := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		attempts++
		if attempts > 2 {
			mu.Unlock()
			close(exhausted)
			return errors.New("still failing")
		}
		mu.Unlock()
		return errors.New("boom")
	}, Options{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a", Type: "t"}))

	select {
	case <-exhausted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retries")
	}
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var mu sync.Mutex
	processed := 0
	release := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		<-release
		mu.Lock()
		processed++
		mu.Unlock()
		return nil
	}, Options{Workers: 1, BufferSize: 8})

	q.Start(context.Background())

	// The worker blocks on the first job, the rest sit in the buffer.
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "t"}))
	}
	close(release)
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, processed)
}

func TestEnqueueAfterStopFails(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, Options{})
	q.Start(context.Background())
	q.Stop()

	err := q.Enqueue(Job{ID: "a"})

	require.Error(t, err)
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, Options{})

	err := q.Enqueue(Job{ID: "a"})

	require.Error(t, err)
}

func TestEnqueueFullBufferFails(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, Options{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// First job occupies the worker, second fills the buffer; give the
	// worker a moment to pick up the first.
	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "b"}))

	err := q.Enqueue(Job{ID: "c"})
	assert.Error(t, err)
}
