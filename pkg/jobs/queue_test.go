package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("broker unavailable")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 5, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Type: "publish"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to completion")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueDropsPermanentFailures(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return Permanent(errors.New("bad payload"))
	}, QueueConfig{MaxRetries: 5, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "1", Type: "publish"}))
	time.Sleep(50 * time.Millisecond)
	q.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "1"}))
}

func TestRouterDispatch(t *testing.T) {
	router := NewRouter()
	var got string
	router.Handle("allotment.publish", func(ctx context.Context, job Job) error {
		got = job.Payload.(string)
		return nil
	})

	require.NoError(t, router.Dispatch(context.Background(), Job{Type: "allotment.publish", Payload: "a-1"}))
	assert.Equal(t, "a-1", got)
	assert.Equal(t, []string{"allotment.publish"}, router.Types())

	err := router.Dispatch(context.Background(), Job{Type: "unknown"})
	assert.True(t, IsPermanent(err))
}

func TestQueueBackoffDoublesAndCaps(t *testing.T) {
	q := NewQueue("backoff", func(context.Context, Job) error { return nil }, QueueConfig{RetryDelay: time.Second})

	assert.Equal(t, time.Second, q.backoff(1))
	assert.Equal(t, 2*time.Second, q.backoff(2))
	assert.Equal(t, 8*time.Second, q.backoff(4))
	assert.Equal(t, maxRetryDelay, q.backoff(12))
}
