package messaging

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/forgo/lending/internal/model"
)

// channel is the part of *amqp.Channel the publisher needs
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes reservation events to a topic exchange, using
// the event type as routing key.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// NewRabbitPublisher dials the broker and declares a durable topic
// exchange. An empty URL disables publishing and returns nil, nil; a nil
// *RabbitPublisher is safe to use.
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends the event as a persistent JSON message
func (r *RabbitPublisher) Publish(ctx context.Context, event *model.ReservationEvent) error {
	if r == nil || r.ch == nil {
		return nil
	}

	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}

	if err := r.ch.PublishWithContext(ctx, r.exchange, string(event.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close closes the channel and the connection
func (r *RabbitPublisher) Close() error {
	if r == nil {
		return nil
	}

	var errs []error
	if r.ch != nil {
		errs = append(errs, r.ch.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}

func encodeEvent(event *model.ReservationEvent) (amqp.Publishing, error) {
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}
