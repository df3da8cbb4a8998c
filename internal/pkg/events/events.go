// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: callers log failures and carry on, the database stays the source
// of truth.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"propertydesk/internal/pkg/logger"
)

const (
	BookingCreated      = "booking.created"
	BookingCheckedIn    = "booking.checked_in"
	BookingCheckedOut   = "booking.checked_out"
	BookingExtended     = "booking.extended"
	BookingCancelled    = "booking.cancelled"
	TaskCleaningCreated = "task.cleaning_created"
	PaymentRecorded     = "payment.recorded"
	ExchangeRateUpdated = "exchange_rate.updated"
	RoomStatusChanged   = "room.status_changed"
)

// Topics lists every queue declared by the AMQP publisher.
var Topics = []string{
	BookingCreated,
	BookingCheckedIn,
	BookingCheckedOut,
	BookingExtended,
	BookingCancelled,
	TaskCleaningCreated,
	PaymentRecorded,
	ExchangeRateUpdated,
	RoomStatusChanged,
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Envelope is the message body written to the broker.
type Envelope struct {
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

var ErrClosed = errors.New("events: publisher closed")

// AMQPPublisher keeps one connection open and publishes each event as a
// persistent message on a durable queue named after the topic.
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
	log  logrus.FieldLogger
}

func DialAMQP(url string, log logrus.FieldLogger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	for _, topic := range Topics {
		if _, err := ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("rabbitmq declare %s: %w", topic, err)
		}
	}
	return &AMQPPublisher{conn: conn, ch: ch, log: logger.OrDiscard(log)}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := encode(topic, payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return ErrClosed
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", topic, false, false, msg); err != nil {
		p.log.WithField("topic", topic).WithError(err).Warn("rabbitmq publish failed")
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	_ = p.ch.Close()
	err := p.conn.Close()
	p.ch, p.conn = nil, nil
	return err
}

func encode(topic string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	return json.Marshal(Envelope{Topic: topic, OccurredAt: time.Now().UTC(), Payload: raw})
}

// Noop drops every event. Used when AMQP_URL is empty or the broker is down.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

// Recorder keeps published envelopes in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Envelope
}

func (r *Recorder) Publish(_ context.Context, topic string, payload any) error {
	body, err := encode(topic, payload)
	if err != nil {
		return err
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return err
	}
	r.mu.Lock()
	r.Events = append(r.Events, env)
	r.mu.Unlock()
	return nil
}

// Topics returns the recorded topics in publish order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Topic)
	}
	return out
}
