package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mesa/internal/realtime"
)

// EventPublisher is an additional sink for order events, such as the kitchen
// exchange.
type EventPublisher interface {
	Publish(ctx context.Context, event *realtime.Event) error
}

// Notifier emits order events after commit. Emission never blocks the caller
// and its failures are only logged.
type Notifier struct {
	broker  realtime.Broker
	sinks   []EventPublisher
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(broker realtime.Broker, log *slog.Logger, sinks ...EventPublisher) *Notifier {
	return &Notifier{
		broker:  broker,
		sinks:   sinks,
		log:     log,
		timeout: 5 * time.Second,
	}
}

// Notify publishes event to its restaurant topic, its order topic and every
// configured sink in the background.
func (n *Notifier) Notify(ctx context.Context, event *realtime.Event) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		n.emit(ctx, event)
	}()
}

func (n *Notifier) emit(ctx context.Context, event *realtime.Event) {
	topics := []realtime.Topic{
		realtime.RestaurantTopic(event.RestaurantID),
		realtime.OrderTopic(event.OrderID),
	}
	for _, topic := range topics {
		if err := n.broker.Publish(ctx, topic, event); err != nil {
			n.log.Warn("order event not published", "topic", topic.String(), "type", event.Type, "error", err)
		}
	}
	for _, sink := range n.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			n.log.Warn("order event not forwarded", "type", event.Type, "order_id", event.OrderID, "error", err)
		}
	}
}

// Wait blocks until all in-flight notifications have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
