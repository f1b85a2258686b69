// Package notification tells reservation owners about confirmations,
// cancellations and upcoming meetings.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/scheduler"
)

// Event identifies why a notification is sent.
type Event string

const (
	EventConfirmed Event = "confirmed"
	EventCancelled Event = "cancelled"
	EventReminder  Event = "reminder"
)

// Notifier delivers one event about one reservation.
type Notifier interface {
	Notify(ctx context.Context, event Event, reservation scheduler.Reservation) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event, reservation scheduler.Reservation) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, event Event, reservation scheduler.Reservation) error {
	return f(ctx, event, reservation)
}

// Message is the human readable rendering of an event.
type Message struct {
	Subject string
	Body    string
}

// Compose renders the message sent to the owner of reservation.
func Compose(event Event, r scheduler.Reservation) (Message, error) {
	var b strings.Builder
	switch event {
	case EventConfirmed:
		b.WriteString("Olá! Sua reserva foi confirmada com sucesso.\n\n")
		b.WriteString("Detalhes da Reserva:\n")
		fmt.Fprintf(&b, "  • Sala: %s\n", r.RoomName)
		fmt.Fprintf(&b, "  • Data/Hora: %s\n", calendar.FormatDateTime(r.Date, r.Start))
		fmt.Fprintf(&b, "  • Término: %s\n", r.End)
		fmt.Fprintf(&b, "  • Título: %s\n", r.Title)
		if r.Description != "" {
			fmt.Fprintf(&b, "  • Descrição: %s\n", r.Description)
		}
		fmt.Fprintf(&b, "  • Setor: %s\n\n", r.Sector)
		b.WriteString("Um lembrete será enviado 30 minutos antes do horário.\n")
		return Message{Subject: "Confirmação de Reserva de Sala", Body: b.String()}, nil

	case EventReminder:
		b.WriteString("Sua reunião começa em 30 minutos!\n\n")
		b.WriteString("Detalhes:\n")
		fmt.Fprintf(&b, "  • Sala: %s\n", r.RoomName)
		fmt.Fprintf(&b, "  • Horário: %s - %s\n", r.Start, r.End)
		fmt.Fprintf(&b, "  • Título: %s\n\n", r.Title)
		b.WriteString("Não se esqueça de comparecer!\n")
		return Message{Subject: "Lembrete: Sua reunião começa em 30 minutos", Body: b.String()}, nil

	case EventCancelled:
		b.WriteString("Sua reserva foi cancelada.\n\n")
		b.WriteString("Reserva Cancelada:\n")
		fmt.Fprintf(&b, "  • Sala: %s\n", r.RoomName)
		fmt.Fprintf(&b, "  • Data/Hora: %s\n", calendar.FormatDateTime(r.Date, r.Start))
		fmt.Fprintf(&b, "  • Título: %s\n\n", r.Title)
		b.WriteString("Se você não solicitou este cancelamento, entre em contato com o administrador.\n")
		return Message{Subject: "Reserva Cancelada", Body: b.String()}, nil
	}
	return Message{}, fmt.Errorf("notification: unknown event %q", event)
}

// LogNotifier writes every notification to a structured logger instead of
// delivering it.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger falls back to slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notification")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event Event, r scheduler.Reservation) error {
	msg, err := Compose(event, r)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "notification",
		"event", string(event),
		"reservation_id", r.ID,
		"to", fmt.Sprintf("%s (%s)", r.UserName, r.UserID),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// Multi fans an event out to every notifier and joins their errors. When
// some notifiers succeeded the joined error is wrapped in a
// *PartialDeliveryError.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, event Event, r scheduler.Reservation) error {
	var (
		errs      []error
		delivered int
	)
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event, r); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered++
	}
	if len(errs) == 0 {
		return nil
	}
	if delivered > 0 {
		return &PartialDeliveryError{Delivered: delivered, Err: errors.Join(errs...)}
	}
	return errors.Join(errs...)
}

// PartialDeliveryError means at least one notifier of a Multi delivered the
// event. Resending would duplicate it on those.
type PartialDeliveryError struct {
	Delivered int
	Err       error
}

func (e *PartialDeliveryError) Error() string {
	return fmt.Sprintf("delivered by %d notifier(s), others failed: %v", e.Delivered, e.Err)
}

func (e *PartialDeliveryError) Unwrap() error { return e.Err }

// Sent is one notification captured by a Recorder.
type Sent struct {
	Event       Event
	Reservation scheduler.Reservation
}

// Recorder keeps every notification in memory. Err, when set, is returned
// from Notify after recording.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, event Event, reservation scheduler.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Event: event, Reservation: reservation})
	return r.Err
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Events returns the recorded event kinds in order.
func (r *Recorder) Events() []Event {
	sent := r.Sent()
	events := make([]Event, len(sent))
	for i, s := range sent {
		events[i] = s.Event
	}
	return events
}
