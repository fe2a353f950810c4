package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends paid-booking events to RabbitMQ. It implements the
// booking service's Notifier interface. Publishing is best-effort:
// errors are logged and returned so the caller can ignore them
// without interrupting the payment flow.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher that dials the broker at the given
// AMQP URL on each publish.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, log: log}
}

// BookingPaid publishes a BookingPaidEvent to the booking.paid queue.
// The queue is declared durable and messages are marked persistent so
// they survive broker restarts.
func (p *Publisher) BookingPaid(ctx context.Context, ev BookingPaidEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		BookingPaidQueue, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		p.log.Error("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		BookingPaidQueue, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		pub,
	); err != nil {
		p.log.Error("rabbitmq publish failed", zap.Error(err))
		return err
	}
	return nil
}
