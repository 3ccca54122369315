package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskSnapshot = "snapshot"
	TaskSweep    = "sweep"
)

// Task is one unit of background work. It travels as the fields of a
// redis stream entry.
type Task struct {
	Type       string
	EnqueuedAt time.Time
}

func (t Task) values() map[string]any {
	return map[string]any{
		"type":       t.Type,
		"enqueuedAt": t.EnqueuedAt.UTC().Format(time.RFC3339Nano),
	}
}

func DecodeTask(values map[string]any) (Task, error) {
	typ, _ := values["type"].(string)
	if typ == "" {
		return Task{}, fmt.Errorf("task without type")
	}
	task := Task{Type: typ}
	if raw, ok := values["enqueuedAt"].(string); ok && raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Task{}, fmt.Errorf("parse enqueuedAt: %w", err)
		}
		task.EnqueuedAt = at
	}
	return task, nil
}

type Handler interface {
	HandleTask(ctx context.Context, task Task) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, task Task) error
}

// RedisDispatcher appends tasks to a stream read by Consumer.
type RedisDispatcher struct {
	client *redis.Client
	stream string
}

func NewRedisDispatcher(client *redis.Client, stream string) *RedisDispatcher {
	return &RedisDispatcher{client: client, stream: stream}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, task Task) error {
	_, err := d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: task.values(),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", d.stream, err)
	}
	return nil
}

// InlineDispatcher runs the task on the caller's goroutine. It is used when
// no redis is configured.
type InlineDispatcher struct {
	handler Handler
	log     zerolog.Logger
}

func NewInlineDispatcher(handler Handler, log zerolog.Logger) *InlineDispatcher {
	return &InlineDispatcher{handler: handler, log: log}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, task Task) error {
	d.log.Debug().Str("type", task.Type).Msg("running task inline")
	return d.handler.HandleTask(ctx, task)
}
