package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/room-reservations/internal/scheduler"
)

// DefaultExchange is the topic exchange reservation events are published to.
const DefaultExchange = "reservations"

// Publisher is the subset of *amqp.Channel used to publish.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventPayload is the JSON body of a published event.
type EventPayload struct {
	Event         Event     `json:"event"`
	ReservationID string    `json:"reservationId"`
	RoomID        string    `json:"roomId"`
	RoomName      string    `json:"roomName"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// AMQPNotifier publishes events to a RabbitMQ topic exchange with routing key
// "reservation.{event}" so mail or chat workers can consume them.
type AMQPNotifier struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	publisher Publisher
	exchange  string
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
}

// DialAMQP connects to url and declares a durable topic exchange.
func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQPNotifier, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	n := NewAMQPNotifier(ch, exchange, logger)
	n.conn = conn
	n.channel = ch
	n.logger.Info("RabbitMQ notifier connected", "exchange", exchange)
	return n, nil
}

// NewAMQPNotifier publishes through an already configured publisher.
func NewAMQPNotifier(publisher Publisher, exchange string, logger *slog.Logger) *AMQPNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPNotifier{
		publisher: publisher,
		exchange:  exchange,
		logger:    logger.With("component", "amqp_notifier"),
		now:       time.Now,
	}
}

// RoutingKey returns the routing key used for event.
func RoutingKey(event Event) string {
	return "reservation." + string(event)
}

// Notify implements Notifier.
func (n *AMQPNotifier) Notify(ctx context.Context, event Event, r scheduler.Reservation) error {
	msg, err := Compose(event, r)
	if err != nil {
		return err
	}
	now := n.now()
	body, err := json.Marshal(EventPayload{
		Event:         event,
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		RoomName:      r.RoomName,
		Date:          r.Date.String(),
		StartTime:     r.Start.String(),
		EndTime:       r.End.String(),
		UserID:        r.UserID,
		UserName:      r.UserName,
		Title:         r.Title,
		Status:        string(r.Status),
		Subject:       msg.Subject,
		Body:          msg.Body,
		OccurredAt:    now,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	key := RoutingKey(event)
	err = n.publisher.PublishWithContext(ctx, n.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    r.ID + ":" + string(event),
		Timestamp:    now,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	n.logger.DebugContext(ctx, "event published", "routing_key", key, "size", len(body))
	return nil
}

// Close closes the channel and connection opened by DialAMQP.
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.channel != nil {
		if err := n.channel.Close(); err != nil {
			n.logger.Warn("error closing channel", "error", err)
		}
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
