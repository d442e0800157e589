package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"medislot/models"
)

// EventHandler applies one payment event.
type EventHandler func(ctx context.Context, event models.PaymentEvent) error

var eventKeys = []string{
	models.PaymentEventPaid,
	models.PaymentEventFailed,
	models.PaymentEventDismissed,
}

// EventConsumer reads payment events from a RabbitMQ topic exchange.
type EventConsumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *zap.Logger
}

func NewEventConsumer(url, exchange, queue string, logger *zap.Logger) (*EventConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*EventConsumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	for _, key := range eventKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fail("bind "+key, err)
		}
	}
	if err := ch.Qos(8, 0, false); err != nil {
		return fail("set qos", err)
	}

	return &EventConsumer{conn: conn, ch: ch, queue: q.Name, logger: logger}, nil
}

// Run consumes until ctx is done or the broker closes the channel.
func (c *EventConsumer) Run(ctx context.Context, handle EventHandler) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "medislot", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("payment events channel closed")
			}
			dispatch(ctx, d, handle, c.logger)
		}
	}
}

func (c *EventConsumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// dispatch acks handled events, requeues failed ones and drops bodies that cannot be decoded.
func dispatch(ctx context.Context, d amqp.Delivery, handle EventHandler, logger *zap.Logger) {
	event, err := decodeDelivery(d)
	if err != nil {
		logger.Warn("undecodable payment event dropped", zap.String("routingKey", d.RoutingKey), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if err := handle(ctx, event); err != nil {
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// decodeDelivery reads the JSON body; the routing key and message id fill in a missing type or event id.
func decodeDelivery(d amqp.Delivery) (models.PaymentEvent, error) {
	var event models.PaymentEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return event, fmt.Errorf("decode payment event: %w", err)
	}
	if event.Type == "" {
		event.Type = d.RoutingKey
	}
	if event.EventID == "" {
		event.EventID = d.MessageId
	}
	return event, nil
}
