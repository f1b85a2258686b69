package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/scheduler"
)

type staticSource struct {
	mu   sync.Mutex
	list []scheduler.Reservation
	err  error
}

func (s *staticSource) List(context.Context) ([]scheduler.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scheduler.Reservation(nil), s.list...), s.err
}

func reservationAt(id, start string, status scheduler.Status) scheduler.Reservation {
	r := sampleReservation()
	r.ID = id
	r.Start = calendar.MustParseTime(start)
	r.End = r.Start + 60
	r.Status = status
	return r
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestReminderWorkerTick(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 40, 0, 0, time.UTC)
	source := &staticSource{list: []scheduler.Reservation{
		reservationAt("due", "14:00", scheduler.StatusScheduled),
		reservationAt("edge", "14:10", scheduler.StatusScheduled),
		reservationAt("later", "14:11", scheduler.StatusScheduled),
		reservationAt("cancelled", "14:00", scheduler.StatusCancelled),
		reservationAt("started", "13:40", scheduler.StatusScheduled),
	}}
	recorder := &Recorder{}
	w := NewReminderWorker(source, recorder, time.Minute, func() time.Time { return now }, quietLogger())

	sent, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	ids := make([]string, 0, 2)
	for _, s := range recorder.Sent() {
		assert.Equal(t, EventReminder, s.Event)
		ids = append(ids, s.Reservation.ID)
	}
	assert.Equal(t, []string{"due", "edge"}, ids)

	sent, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, recorder.Sent(), 2)
}

func TestReminderWorkerRetriesFailedDelivery(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 40, 0, 0, time.UTC)
	source := &staticSource{list: []scheduler.Reservation{reservationAt("due", "14:00", scheduler.StatusScheduled)}}
	recorder := &Recorder{Err: errors.New("broker down")}
	w := NewReminderWorker(source, recorder, time.Minute, func() time.Time { return now }, quietLogger())

	sent, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	recorder.Err = nil
	sent, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderWorkerRemindsOwnerWithoutMailboxOnce(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 40, 0, 0, time.UTC)
	due := reservationAt("due", "14:00", scheduler.StatusScheduled)
	due.UserID = "1"
	source := &staticSource{list: []scheduler.Reservation{due}}

	recorder := &Recorder{}
	sender := &fakeSender{}
	notifier := Multi{recorder, NewMailNotifier(sender, "reservas@antonelly.com", mailbox, quietLogger())}
	w := NewReminderWorker(source, notifier, time.Minute, func() time.Time { return now }, quietLogger())

	for i := 0; i < 3; i++ {
		_, err := w.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, recorder.Sent(), 1)
	assert.Empty(t, sender.sent)
}

func TestReminderWorkerDoesNotRepeatPartialDelivery(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 40, 0, 0, time.UTC)
	source := &staticSource{list: []scheduler.Reservation{reservationAt("due", "14:00", scheduler.StatusScheduled)}}

	recorder := &Recorder{}
	sender := &fakeSender{err: errors.New("smtp down")}
	notifier := Multi{recorder, NewMailNotifier(sender, "reservas@antonelly.com", mailbox, quietLogger())}
	w := NewReminderWorker(source, notifier, time.Minute, func() time.Time { return now }, quietLogger())

	sent, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, recorder.Sent(), 1)
	assert.Len(t, sender.sent, 1)
}

func TestReminderWorkerForgetsFinishedReservations(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 40, 0, 0, time.UTC)
	source := &staticSource{list: []scheduler.Reservation{reservationAt("due", "14:00", scheduler.StatusScheduled)}}
	w := NewReminderWorker(source, &Recorder{}, time.Minute, func() time.Time { return now }, quietLogger())

	_, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, w.wasReminded("due"))

	source.mu.Lock()
	source.list[0].Status = scheduler.StatusCancelled
	source.mu.Unlock()

	_, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, w.wasReminded("due"))
}

func TestReminderWorkerSourceError(t *testing.T) {
	w := NewReminderWorker(&staticSource{err: errors.New("store offline")}, &Recorder{}, 0, nil, quietLogger())

	_, err := w.Tick(context.Background())
	assert.ErrorContains(t, err, "store offline")
	assert.Equal(t, DefaultReminderInterval, w.interval)
}

func TestReminderWorkerStartStop(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 40, 0, 0, time.UTC)
	source := &staticSource{list: []scheduler.Reservation{reservationAt("due", "14:00", scheduler.StatusScheduled)}}
	recorder := &Recorder{}
	w := NewReminderWorker(source, recorder, 20*time.Millisecond, func() time.Time { return now }, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.Error(t, w.Start(ctx))

	assert.Eventually(t, func() bool { return len(recorder.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
