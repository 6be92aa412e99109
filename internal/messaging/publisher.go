package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mesa/internal/realtime"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const (
	// OrdersExchange is the topic exchange kitchen consumers bind to.
	OrdersExchange = "orders_topic"
	KitchenQueue   = "kitchen_queue"

	publishTimeout = 5 * time.Second
	dialAttempts   = 5
)

// RoutingKey returns "restaurant.<id>.<event type>", for example
// "restaurant.<uuid>.order.created".
func RoutingKey(restaurantID uuid.UUID, eventType realtime.EventType) string {
	return "restaurant." + restaurantID.String() + "." + string(eventType)
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// KitchenPublisher forwards order events to RabbitMQ for kitchen displays and
// printers.
type KitchenPublisher struct {
	url  string
	log  *slog.Logger
	mu   sync.Mutex
	conn *amqp091.Connection
	ch   channel
}

// Dial connects to RabbitMQ and declares the exchange and kitchen queue,
// retrying with a linear backoff.
func Dial(url string, log *slog.Logger) (*KitchenPublisher, error) {
	p := &KitchenPublisher{url: url, log: log}
	var err error
	for i := 0; i < dialAttempts; i++ {
		if err = p.connect(); err == nil {
			return p, nil
		}
		if i < dialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			log.Warn("rabbitmq connection failed, retrying", "error", err, "wait", wait)
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", dialAttempts, err)
}

func (p *KitchenPublisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	p.conn = conn
	p.ch = ch
	return nil
}

func declareTopology(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s exchange: %w", OrdersExchange, err)
	}
	if _, err := ch.QueueDeclare(KitchenQueue, true, false, false, false, amqp091.Table{
		"x-message-ttl": int32(300000),
	}); err != nil {
		return fmt.Errorf("declare %s: %w", KitchenQueue, err)
	}
	if err := ch.QueueBind(KitchenQueue, "restaurant.#", OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", KitchenQueue, err)
	}
	return nil
}

// Publish sends event to the orders exchange, reconnecting once if the
// connection was lost.
func (p *KitchenPublisher) Publish(ctx context.Context, event *realtime.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(ctx, OrdersExchange, RoutingKey(event.RestaurantID, event.Type), false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    event.At,
		Type:         string(event.Type),
		MessageId:    uuid.NewString(),
		Body:         body,
	})
}

func (p *KitchenPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
