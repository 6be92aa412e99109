package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// LocalBroker delivers events within a single process. It backs tests and
// single-instance deployments without Redis.
type LocalBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[*localSubscription]struct{}
	closed bool
	log    *slog.Logger
}

func NewLocalBroker(log *slog.Logger) *LocalBroker {
	return &LocalBroker{
		subs: make(map[string]map[*localSubscription]struct{}),
		log:  log,
	}
}

func (b *LocalBroker) Publish(_ context.Context, topic Topic, event *Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs[topic.String()] {
		sub.deliver(event, b.log)
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, topics ...Topic) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	sub := &localSubscription{
		broker: b,
		events: make(chan *Event, subscriberBuffer),
	}
	for _, t := range topics {
		name := t.String()
		sub.topics = append(sub.topics, name)
		if b.subs[name] == nil {
			b.subs[name] = make(map[*localSubscription]struct{})
		}
		b.subs[name][sub] = struct{}{}
	}

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()
	return sub, nil
}

func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subs {
		for sub := range subs {
			sub.closeLocked()
		}
	}
	b.subs = make(map[string]map[*localSubscription]struct{})
	return nil
}

func (b *LocalBroker) remove(sub *localSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range sub.topics {
		delete(b.subs[name], sub)
		if len(b.subs[name]) == 0 {
			delete(b.subs, name)
		}
	}
	sub.closeLocked()
}

type localSubscription struct {
	broker *LocalBroker
	topics []string
	events chan *Event
	once   sync.Once
}

func (s *localSubscription) Events() <-chan *Event {
	return s.events
}

func (s *localSubscription) Close() error {
	s.broker.remove(s)
	return nil
}

// closeLocked closes the event channel; callers hold the broker lock.
func (s *localSubscription) closeLocked() {
	s.once.Do(func() { close(s.events) })
}

func (s *localSubscription) deliver(event *Event, log *slog.Logger) {
	select {
	case s.events <- event:
	default:
		if log != nil {
			log.Warn("dropping event for slow subscriber", "type", event.Type, "order_id", event.OrderID)
		}
	}
}
