package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/queue"
)

// EventPublisher sends reservation events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ReservationEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue through the
// default exchange. Each publish opens its own connection, so a broker
// outage costs one failed publish and nothing else.
type AMQPPublisher struct {
	URL     string
	Queue   string
	Timeout time.Duration
	Log     *logger.Logger
}

// NewAMQPPublisher returns a publisher for url. An empty queue name means
// queue.DefaultQueue.
func NewAMQPPublisher(url, queueName string, log *logger.Logger) *AMQPPublisher {
	if queueName == "" {
		queueName = queue.DefaultQueue
	}
	return &AMQPPublisher{URL: url, Queue: queueName, Timeout: 3 * time.Second, Log: log}
}

// Publish marshals ev and publishes it as a persistent message. Timeout
// bounds the dial and handshake as well as the publish. Errors are logged
// and returned so the caller can choose to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cfg := amqp.Config{Heartbeat: 10 * time.Second, Locale: "en_US"}
	if p.Timeout > 0 {
		cfg.Dial = amqp.DefaultDial(p.Timeout)
	}
	conn, err := amqp.DialConfig(p.URL, cfg)
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.Log.Warn("rabbitmq: marshal event failed", "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", "error", err, "type", ev.Type)
		return err
	}
	return nil
}
