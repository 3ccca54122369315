package queue

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreads/internal/catalog"
)

type recordingHandler struct {
	mu    sync.Mutex
	tasks []Task
	err   error
	done  chan struct{}
}

func (h *recordingHandler) HandleTask(_ context.Context, task Task) error {
	h.mu.Lock()
	h.tasks = append(h.tasks, task)
	h.mu.Unlock()
	if h.done != nil {
		h.done <- struct{}{}
	}
	return h.err
}

func TestDecodeTask(t *testing.T) {
	at := time.Date(2024, 2, 3, 4, 5, 6, 7, time.UTC)
	task, err := DecodeTask(Task{Type: TaskSweep, EnqueuedAt: at}.values())
	require.NoError(t, err)
	assert.Equal(t, TaskSweep, task.Type)
	assert.True(t, at.Equal(task.EnqueuedAt))

	_, err = DecodeTask(map[string]any{"enqueuedAt": "x"})
	assert.Error(t, err)

	_, err = DecodeTask(map[string]any{"type": "sweep", "enqueuedAt": "yesterday"})
	assert.Error(t, err)

	task, err = DecodeTask(map[string]any{"type": "snapshot"})
	require.NoError(t, err)
	assert.True(t, task.EnqueuedAt.IsZero())
}

func TestInlineDispatcher(t *testing.T) {
	h := &recordingHandler{}
	d := NewInlineDispatcher(h, zerolog.Nop())

	require.NoError(t, d.Dispatch(context.Background(), Task{Type: TaskSnapshot}))
	assert.Equal(t, []Task{{Type: TaskSnapshot}}, h.tasks)

	h.err = errors.New("boom")
	assert.EqualError(t, d.Dispatch(context.Background(), Task{Type: TaskSweep}), "boom")
}

func TestEventPublisherDropsWhenFull(t *testing.T) {
	p := NewEventPublisher(nil, "events", zerolog.Nop())
	for i := 0; i < cap(p.events)+5; i++ {
		p.Observe(catalog.Event{ID: int64(i)})
	}
	assert.Len(t, p.events, cap(p.events))
}

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("SMARTREADS_TEST_REDIS")
	if addr == "" {
		t.Skip("SMARTREADS_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisDispatcherAndConsumer(t *testing.T) {
	client := redisClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream := "smartreads:test:tasks:" + time.Now().Format("150405.000")
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	h := &recordingHandler{done: make(chan struct{}, 1)}
	consumer := NewConsumer(client, stream, "test", "c1", time.Second, zerolog.Nop(), h)
	require.NoError(t, consumer.EnsureGroup(ctx))
	require.NoError(t, consumer.EnsureGroup(ctx), "group creation is idempotent")

	go func() { _ = consumer.Start(ctx) }()

	require.NoError(t, NewRedisDispatcher(client, stream).Dispatch(ctx, Task{Type: TaskSweep, EnqueuedAt: time.Now()}))

	select {
	case <-h.done:
	case <-ctx.Done():
		t.Fatal("task not consumed")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, TaskSweep, h.tasks[0].Type)
}

func TestEventPublisherWritesStream(t *testing.T) {
	client := redisClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream := "smartreads:test:events:" + time.Now().Format("150405.000")
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	p := NewEventPublisher(client, stream, zerolog.Nop())
	require.NoError(t, p.publish(ctx, catalog.Event{Action: catalog.ActionCreated, Name: "x"}))

	n, err := client.XLen(ctx, stream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
