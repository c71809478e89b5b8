// Package service holds outbound integrations used by the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/seat-inventory/internal/queue"
)

// Publisher emits domain events.  Handlers treat publish failures as
// non-fatal: the redemption is already committed when the event is sent.
type Publisher interface {
	PublishDiscountRedeemed(ctx context.Context, ev queue.DiscountRedeemedEvent) error
}

// AMQPPublisher publishes to RabbitMQ, dialling once per event.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// PublishDiscountRedeemed sends ev to the discount.redeemed queue as a
// persistent message.  An empty EventID is filled with a random UUID and a
// zero RedeemedAt with the current time.
func (p *AMQPPublisher) PublishDiscountRedeemed(ctx context.Context, ev queue.DiscountRedeemedEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.RedeemedAt.IsZero() {
		ev.RedeemedAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Errorf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Errorf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.RedemptionQueue, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		log.Errorf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.RedeemedAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.RedemptionQueue, false, false, pub); err != nil {
		log.Errorf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// NewPublisher returns an AMQPPublisher for url, or a NopPublisher when
// events are disabled.
func NewPublisher(enabled bool, url string) Publisher {
	if !enabled || url == "" {
		return NopPublisher{}
	}
	return NewAMQPPublisher(url)
}

// NopPublisher drops every event.  It stands in when events are disabled.
type NopPublisher struct{}

// PublishDiscountRedeemed implements Publisher.
func (NopPublisher) PublishDiscountRedeemed(context.Context, queue.DiscountRedeemedEvent) error {
	return nil
}
