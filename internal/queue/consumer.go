package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/zumagrand/booking-api/internal/mailer"
)

// Consumer listens on the booking.paid queue and emails the operator
// about each newly paid booking. It is the isolated failure domain of
// the notification path: a broker outage or a mailer error never
// reaches the payment flow.
type Consumer struct {
	url        string
	mail       mailer.Mailer
	hotelEmail string
	fromAddr   string
	log        *zap.Logger
}

// NewConsumer returns a Consumer that notifies hotelEmail from
// fromAddr for every event it receives.
func NewConsumer(url string, mail mailer.Mailer, hotelEmail, fromAddr string, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{url: url, mail: mail, hotelEmail: hotelEmail, fromAddr: fromAddr, log: log}
}

// Run connects to RabbitMQ, declares the booking.paid queue (durable)
// and consumes messages until the context is cancelled. It runs a
// reconnect loop with exponential backoff; processing errors are
// logged and the offending message is rejected without requeue so the
// consumer keeps operating.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking consumer: broker dial failed",
				zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := c.consumeLoop(ctx, conn); err != nil {
			c.log.Warn("booking consumer: consume loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.log.Warn("booking consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(BookingPaidQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingPaidQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.log.Error("booking consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // reject, no requeue, to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev BookingPaidEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	c.log.Info("booking paid",
		zap.String("booking_id", ev.BookingID),
		zap.String("guest", ev.FullName),
		zap.Uint32("room_number", ev.RoomNumber),
		zap.Uint64("total_amount", ev.TotalAmount))

	if c.mail == nil || c.hotelEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("New Booking: %s - Room %d (%d nights)", ev.FullName, ev.RoomNumber, ev.Nights)
	if err := c.mail.Send(ctx, mailer.Email{
		From:    c.fromAddr,
		To:      c.hotelEmail,
		Subject: subject,
		Body:    renderBookingEmail(ev),
	}); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// renderBookingEmail produces the fixed operator notification
// template with the booking fields filled in.
func renderBookingEmail(ev BookingPaidEvent) string {
	shortRef := ev.BookingID
	if len(shortRef) > 8 {
		shortRef = shortRef[:8]
	}
	rows := []struct{ label, value string }{
		{"Booking Reference", strings.ToUpper(shortRef)},
		{"Guest Name", ev.FullName},
		{"Guest Email", ev.Email},
		{"Guest Phone", ev.Phone},
		{"Room Number", fmt.Sprintf("%d", ev.RoomNumber)},
		{"Room Type", ev.RoomType},
		{"Number of Guests", fmt.Sprintf("%d", ev.Guests)},
		{"Check-in Date", ev.CheckIn},
		{"Check-out Date", ev.CheckOut},
		{"Duration", fmt.Sprintf("%d night(s)", ev.Nights)},
		{"Total Amount Paid", fmt.Sprintf("₦%d", ev.TotalAmount)},
	}
	var b strings.Builder
	b.WriteString(`<h1>Zuma Grand Hotel</h1><h2>New Booking Confirmed</h2><table>`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr><td>%s</td><td><strong>%s</strong></td></tr>`, r.label, r.value)
	}
	b.WriteString(`</table><p>This is an automated booking notification from Zuma Grand Hotel.</p>`)
	return b.String()
}
