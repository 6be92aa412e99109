package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"mesa/internal/models"
	"mesa/internal/realtime"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func TestRoutingKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "restaurant.11111111-2222-3333-4444-555555555555.order.created", RoutingKey(id, realtime.EventOrderCreated))
	assert.Equal(t, "restaurant.11111111-2222-3333-4444-555555555555.order.status_changed", RoutingKey(id, realtime.EventOrderStatusChanged))
}

func TestPublish_SendsPersistentJSON(t *testing.T) {
	ch := new(MockChannel)
	p := &KitchenPublisher{ch: ch}

	order := &models.Order{ID: uuid.New(), RestaurantID: uuid.New(), Number: "#003", Status: models.OrderStatusPending}
	event := realtime.OrderCreated(order)

	ch.On("PublishWithContext", mock.Anything, OrdersExchange, RoutingKey(order.RestaurantID, realtime.EventOrderCreated), false, false,
		mock.MatchedBy(func(msg amqp091.Publishing) bool {
			var decoded realtime.Event
			if err := json.Unmarshal(msg.Body, &decoded); err != nil {
				return false
			}
			return msg.ContentType == "application/json" &&
				msg.DeliveryMode == amqp091.Persistent &&
				msg.Type == "order.created" &&
				decoded.OrderID == order.ID
		})).Return(nil)

	require.NoError(t, p.Publish(context.Background(), event))
	ch.AssertExpectations(t)
}

func TestPublish_PropagatesChannelError(t *testing.T) {
	ch := new(MockChannel)
	p := &KitchenPublisher{ch: ch}

	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).
		Return(amqp091.ErrClosed)

	err := p.Publish(context.Background(), realtime.OrderCreated(&models.Order{ID: uuid.New(), RestaurantID: uuid.New()}))
	assert.ErrorIs(t, err, amqp091.ErrClosed)
}
