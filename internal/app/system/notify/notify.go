// internal/app/system/notify/notify.go

// Package notify publishes domain events to the notification queue.
// Publishing is best-effort everywhere: a broker outage is logged and
// never fails the mutation that triggered the event.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event kinds placed on the queue.
const (
	RegistrationCreated = "registration.created"
	ClubStatusChanged   = "club.status_changed"
)

// Message is the queue payload.
type Message struct {
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher sends Messages. The nil *Publisher is a valid no-op, so
// wiring stays simple when no broker is configured.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *zap.Logger
}

// Connect dials the broker and declares the durable queue. An empty
// URI returns a nil Publisher (publishing disabled).
func Connect(uri, queue string, log *zap.Logger) (*Publisher, error) {
	if uri == "" {
		log.Info("notification queue disabled (no amqp uri)")
		return nil, nil
	}
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	log.Info("connected to notification queue", zap.String("queue", queue))
	return &Publisher{conn: conn, ch: ch, queue: queue, log: log}, nil
}

// Publish sends one event. Failures are logged, never returned, so a
// broker outage cannot fail a registration or approval.
func (p *Publisher) Publish(ctx context.Context, kind string, data any) {
	if p == nil {
		return
	}
	body, err := json.Marshal(Message{Kind: kind, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		p.log.Warn("notification marshal failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		p.log.Warn("notification publish failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	p.log.Debug("notification published", zap.String("kind", kind))
}

// Close tears down the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
