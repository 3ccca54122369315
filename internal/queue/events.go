package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"smartreads/internal/catalog"
)

const eventStreamMaxLen = 1000

// EventPublisher mirrors catalog events onto a capped redis stream. Events
// are buffered and dropped when the buffer is full so catalog writes never
// wait on redis.
type EventPublisher struct {
	client *redis.Client
	stream string
	events chan catalog.Event
	log    zerolog.Logger
}

func NewEventPublisher(client *redis.Client, stream string, log zerolog.Logger) *EventPublisher {
	return &EventPublisher{
		client: client,
		stream: stream,
		events: make(chan catalog.Event, 64),
		log:    log,
	}
}

// Observe is registered with catalog.Subscribe.
func (p *EventPublisher) Observe(e catalog.Event) {
	select {
	case p.events <- e:
	default:
		p.log.Warn().Str("kind", string(e.Kind)).Int64("id", e.ID).Msg("event buffer full, dropping")
	}
}

func (p *EventPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-p.events:
			if err := p.publish(ctx, e); err != nil {
				p.log.Error().Err(err).Str("stream", p.stream).Msg("publish catalog event failed")
			}
		}
	}
}

func (p *EventPublisher) publish(ctx context.Context, e catalog.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"kind":   string(e.Kind),
			"action": string(e.Action),
			"event":  string(payload),
		},
	}).Err()
}
