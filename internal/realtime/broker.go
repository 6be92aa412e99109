package realtime

import (
	"context"
	"errors"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
)

// ErrClosed is returned when publishing to or subscribing on a closed broker.
var ErrClosed = errors.New("broker closed")

type TopicKind string

const (
	KindRestaurant TopicKind = "restaurant"
	KindOrder      TopicKind = "order"
)

// Topic addresses a channel of events. Restaurant topics carry every event of
// one restaurant; order topics carry the events of a single order.
type Topic struct {
	Kind TopicKind
	ID   uuid.UUID
}

func RestaurantTopic(id uuid.UUID) Topic {
	return Topic{Kind: KindRestaurant, ID: id}
}

func OrderTopic(id uuid.UUID) Topic {
	return Topic{Kind: KindOrder, ID: id}
}

// String renders the channel name, e.g. "mesa:restaurant:<uuid>".
func (t Topic) String() string {
	return "mesa:" + string(t.Kind) + ":" + t.ID.String()
}

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// Event is the payload delivered to subscribers and to the kitchen exchange.
type Event struct {
	Type         EventType           `json:"type"`
	RestaurantID uuid.UUID           `json:"restaurant_id"`
	OrderID      uuid.UUID           `json:"order_id"`
	From         *models.OrderStatus `json:"from,omitempty"`
	To           *models.OrderStatus `json:"to,omitempty"`
	Order        *models.Order       `json:"order,omitempty"`
	At           time.Time           `json:"at"`
}

// OrderCreated builds the event announcing a newly placed order.
func OrderCreated(order *models.Order) *Event {
	return &Event{
		Type:         EventOrderCreated,
		RestaurantID: order.RestaurantID,
		OrderID:      order.ID,
		Order:        order,
		At:           time.Now().UTC(),
	}
}

// StatusChanged builds the event for a status transition. order already
// carries the new status.
func StatusChanged(order *models.Order, from models.OrderStatus) *Event {
	to := order.Status
	return &Event{
		Type:         EventOrderStatusChanged,
		RestaurantID: order.RestaurantID,
		OrderID:      order.ID,
		From:         &from,
		To:           &to,
		Order:        order,
		At:           time.Now().UTC(),
	}
}

// Broker fans events out to the currently connected subscribers of a topic.
// Delivery is at most once and nothing is replayed.
type Broker interface {
	Publish(ctx context.Context, topic Topic, event *Event) error
	Subscribe(ctx context.Context, topics ...Topic) (Subscription, error)
	Close() error
}

type Subscription interface {
	Events() <-chan *Event
	Close() error
}

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// events are dropped for it.
const subscriberBuffer = 32
