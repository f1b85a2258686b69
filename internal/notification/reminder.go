package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/metrics"
	"github.com/example/room-reservations/internal/scheduler"
)

// DefaultReminderInterval is how often upcoming reservations are checked.
const DefaultReminderInterval = time.Minute

// Source lists the current reservations with refreshed statuses.
type Source interface {
	List(ctx context.Context) ([]scheduler.Reservation, error)
}

// ReminderWorker periodically sends a Reminder for every Scheduled
// reservation that starts within calendar.ReminderLead. Each reservation is
// reminded at most once per process.
type ReminderWorker struct {
	source   Source
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.Mutex
	reminded  map[string]struct{}
	scheduler gocron.Scheduler
}

// NewReminderWorker creates a worker. A nil now defaults to time.Now and a
// non-positive interval to DefaultReminderInterval.
func NewReminderWorker(source Source, notifier Notifier, interval time.Duration, now func() time.Time, logger *slog.Logger) *ReminderWorker {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderWorker{
		source:   source,
		notifier: notifier,
		interval: interval,
		now:      now,
		logger:   logger.With("component", "reminder_worker"),
		reminded: make(map[string]struct{}),
	}
}

// Start schedules Tick every interval until ctx is done or Stop is called.
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.scheduler != nil {
		return fmt.Errorf("reminder worker already started")
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(w.now().Location()))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			if _, err := w.Tick(ctx); err != nil {
				w.logger.WarnContext(ctx, "reminder tick failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("schedule reminder job: %w", err)
	}

	s.Start()
	w.scheduler = s
	w.logger.InfoContext(ctx, "reminder worker started", "interval", w.interval)

	go func() {
		<-ctx.Done()
		_ = w.Stop()
	}()
	return nil
}

// Stop shuts the scheduler down. It is safe to call more than once.
func (w *ReminderWorker) Stop() error {
	w.mu.Lock()
	s := w.scheduler
	w.scheduler = nil
	w.mu.Unlock()

	if s == nil {
		return nil
	}
	w.logger.Info("reminder worker stopping")
	return s.Shutdown()
}

// Tick sends the reminders that are due now and returns how many were sent.
// A failed delivery is retried on the next tick while still in the window. A
// partial delivery counts as sent.
func (w *ReminderWorker) Tick(ctx context.Context) (int, error) {
	reservations, err := w.source.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reservations: %w", err)
	}

	now := w.now()
	scheduled := make(map[string]struct{}, len(reservations))
	var due []scheduler.Reservation
	for _, r := range reservations {
		if r.Status != scheduler.StatusScheduled {
			continue
		}
		scheduled[r.ID] = struct{}{}
		if calendar.ShouldSendReminder(r.Date, r.Start, now) && !w.wasReminded(r.ID) {
			due = append(due, r)
		}
	}

	sent := 0
	for _, r := range due {
		err := w.notifier.Notify(ctx, EventReminder, r)
		metrics.ObserveNotification(string(EventReminder), err)
		var partial *PartialDeliveryError
		switch {
		case errors.As(err, &partial):
			w.logger.WarnContext(ctx, "reminder only partially delivered", "reservation_id", r.ID, "error", err)
		case err != nil:
			w.logger.WarnContext(ctx, "failed to send reminder", "reservation_id", r.ID, "error", err)
			continue
		}
		w.markReminded(r.ID)
		sent++
	}

	w.forgetExcept(scheduled)
	return sent, nil
}

func (w *ReminderWorker) wasReminded(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.reminded[id]
	return ok
}

func (w *ReminderWorker) markReminded(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reminded[id] = struct{}{}
}

// forgetExcept drops ids that are no longer Scheduled.
func (w *ReminderWorker) forgetExcept(keep map[string]struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id := range w.reminded {
		if _, ok := keep[id]; !ok {
			delete(w.reminded, id)
		}
	}
}
