package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroker fans events out through Redis pub/sub so every API instance
// sees events published by any other instance.
type RedisBroker struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisBroker(client *redis.Client, log *slog.Logger) *RedisBroker {
	return &RedisBroker{client: client, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, topic Topic, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.client.Publish(ctx, topic.String(), data).Err()
}

// Subscribe blocks until Redis confirms the subscription, so events published
// after it returns are not missed.
func (b *RedisBroker) Subscribe(ctx context.Context, topics ...Topic) (Subscription, error) {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.String()
	}

	ps := b.client.Subscribe(ctx, names...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %v: %w", names, err)
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan *Event, subscriberBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump(ctx, b.log)
	return sub, nil
}

// Close is a no-op; the client is owned by the caller.
func (b *RedisBroker) Close() error {
	return nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan *Event
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) Events() <-chan *Event {
	return s.events
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *redisSubscription) pump(ctx context.Context, log *slog.Logger) {
	defer close(s.events)
	ch := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn("discarding malformed event", "channel", msg.Channel, "error", err)
				continue
			}
			select {
			case s.events <- &event:
			default:
				log.Warn("dropping event for slow subscriber", "channel", msg.Channel, "type", event.Type)
			}
		}
	}
}
