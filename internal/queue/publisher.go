// Package queue publishes domain events to RabbitMQ so downstream
// consumers (notifications, analytics) can react to bookings without
// coupling to the request path.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
)

const bookingCreatedQueue = "booking.created"

// BookingCreatedEvent is the payload published when a booking is accepted.
type BookingCreatedEvent struct {
	BookingID       string    `json:"booking_id"`
	CustomerID      string    `json:"customer_id"`
	ShopID          string    `json:"shop_id"`
	ServiceID       string    `json:"service_id"`
	AppointmentTime time.Time `json:"appointment_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	PublishedAt     time.Time `json:"published_at"`
}

// Publisher emits booking events over a single AMQP connection. Publish
// failures are reported to the caller but the request flow treats them
// as best effort.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

// NewPublisher dials the broker and declares the booking queue.
func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
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

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(bookingCreatedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", bookingCreatedQueue, err)
	}

	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

// PublishBookingCreated emits a BookingCreatedEvent for the booking.
func (p *Publisher) PublishBookingCreated(ctx context.Context, booking *models.Booking) error {
	event := BookingCreatedEvent{
		BookingID:       booking.ID,
		CustomerID:      booking.CustomerID,
		ShopID:          booking.ShopID,
		ServiceID:       booking.ServiceID,
		AppointmentTime: booking.AppointmentTime,
		EndTime:         booking.EndTime,
		Status:          string(booking.Status),
		PublishedAt:     time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.PublishedAt,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, "", bookingCreatedQueue, false, false, pub); err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}

	p.logger.Debug("booking event published", zap.String("booking_id", booking.ID))
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
