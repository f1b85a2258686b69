package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/catalog"
	"github.com/example/room-reservations/internal/metrics"
	"github.com/example/room-reservations/internal/notification"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

// ReservationService owns the reservation collection stored under one slot.
// Writes go through a compare-and-swap on the slot, so services in separate
// processes sharing one store never both book the same window. Within a
// process a mutex keeps callers from retrying against each other.
type ReservationService struct {
	store       persistence.SlotStore
	slot        string
	rooms       catalog.Catalog
	notifier    notification.Notifier
	idGenerator func() string
	now         func() time.Time
	validate    *validator.Validate
	logger      *slog.Logger

	mu sync.Mutex
}

// NewReservationService constructs a ReservationService with the provided dependencies.
func NewReservationService(store persistence.SlotStore, slot string, rooms catalog.Catalog, notifier notification.Notifier, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(store, slot, rooms, notifier, idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a ReservationService with a specified logger.
// An empty slot selects persistence.DefaultSlot and a nil idGenerator uses random UUIDs.
func NewReservationServiceWithLogger(store persistence.SlotStore, slot string, rooms catalog.Catalog, notifier notification.Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if slot == "" {
		slot = persistence.DefaultSlot
	}
	if rooms == nil {
		rooms = catalog.Default()
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		store:       store,
		slot:        slot,
		rooms:       rooms,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		validate:    newValidator(),
		logger:      defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

func (s *ReservationService) ready() error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("slot store not configured")
	}
	return nil
}

// List returns every reservation in stored order with statuses refreshed
// against the current time. An empty store is seeded with the demo
// reservations first.
func (s *ReservationService) List(ctx context.Context) (list []scheduler.Reservation, err error) {
	if err = s.ready(); err != nil {
		return nil, err
	}

	started := time.Now()
	logger := s.loggerWith(ctx, "List")
	defer func() {
		metrics.ObserveOperation("List", ErrorKind(err), time.Since(started))
		if err != nil {
			logFailure(ctx, logger, "failed to list reservations", err)
			return
		}
		observeStatuses(list)
		logger.DebugContext(ctx, "reservations listed", "count", len(list))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var loaded bool
	list, loaded, err = s.change(ctx, logger, nil)
	if err != nil && loaded {
		logger.WarnContext(ctx, "failed to persist refreshed statuses", "error", err)
		err = nil
	}
	return list, err
}

// Get returns the reservation with id.
func (s *ReservationService) Get(ctx context.Context, id string) (scheduler.Reservation, error) {
	list, err := s.List(ctx)
	if err != nil {
		return scheduler.Reservation{}, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], nil
	}
	return scheduler.Reservation{}, ErrReservationNotFound
}

// Create books a room for principal.
func (s *ReservationService) Create(ctx context.Context, principal Principal, input CreateReservationInput) (created scheduler.Reservation, err error) {
	if err = s.ready(); err != nil {
		return scheduler.Reservation{}, err
	}

	started := time.Now()
	logger := s.loggerWith(ctx, "Create",
		"principal_id", principal.UserID,
		"room_id", input.RoomID,
		"date", input.Date,
	)
	defer func() {
		metrics.ObserveOperation("Create", ErrorKind(err), time.Since(started))
		if err != nil {
			logFailure(ctx, logger, "failed to create reservation", err)
			return
		}
		logger.With(
			"reservation_id", created.ID,
			"status", string(created.Status),
		).InfoContext(ctx, "reservation created")
	}()

	if strings.TrimSpace(principal.UserID) == "" {
		err = ErrUnauthorized
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Sector = strings.TrimSpace(input.Sector)

	vErr := structErrors(s.validate, input)
	date, start, end := parseWindow(vErr, input.Date, input.StartTime, input.EndTime)
	if err = vErr.errOrNil(); err != nil {
		return
	}

	room, ok := s.rooms.RoomByID(input.RoomID)
	if !ok {
		err = ErrRoomNotFound
		return
	}

	sector := input.Sector
	if sector == "" {
		sector = principal.Sector
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	_, _, err = s.change(ctx, logger, func(list []scheduler.Reservation, now time.Time) ([]scheduler.Reservation, error) {
		if conflicts := scheduler.FindConflicts(list, room.ID, date, start, end, ""); len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}
		if id == "" {
			id = s.idGenerator()
		}
		created = scheduler.Reservation{
			ID:          id,
			RoomID:      room.ID,
			RoomName:    room.Name,
			Date:        date,
			Start:       start,
			End:         end,
			UserID:      principal.UserID,
			UserName:    principal.Name,
			Sector:      sector,
			Title:       input.Title,
			Description: input.Description,
			Status:      scheduler.StatusScheduled,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created.Status = scheduler.DeriveStatus(created, now)
		return append(list, created), nil
	})
	if err != nil {
		created = scheduler.Reservation{}
		return
	}

	s.notify(ctx, logger, notification.EventConfirmed, created)
	return created, nil
}

// Update changes the reservation id on behalf of its owner.
func (s *ReservationService) Update(ctx context.Context, principal Principal, id string, patch UpdateReservationPatch) (updated scheduler.Reservation, err error) {
	if err = s.ready(); err != nil {
		return scheduler.Reservation{}, err
	}

	started := time.Now()
	logger := s.loggerWith(ctx, "Update",
		"principal_id", principal.UserID,
		"reservation_id", id,
		"reschedules", patch.reschedules(),
	)
	defer func() {
		metrics.ObserveOperation("Update", ErrorKind(err), time.Since(started))
		if err != nil {
			logFailure(ctx, logger, "failed to update reservation", err)
			return
		}
		logger.With("status", string(updated.Status)).InfoContext(ctx, "reservation updated")
	}()

	vErr := structErrors(s.validate, patch)
	if err = vErr.errOrNil(); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, err = s.change(ctx, logger, func(list []scheduler.Reservation, now time.Time) ([]scheduler.Reservation, error) {
		index := indexOf(list, id)
		if index < 0 {
			return nil, ErrReservationNotFound
		}
		existing := list[index]

		if existing.UserID != principal.UserID {
			return nil, ErrForbidden
		}
		if !scheduler.CanEdit(existing.Status) {
			return nil, ErrInvalidState
		}

		updated = existing
		if patch.reschedules() {
			windowErr := &ValidationError{}
			date, start, end := parseWindow(windowErr,
				valueOr(patch.Date, existing.Date.String()),
				valueOr(patch.StartTime, existing.Start.String()),
				valueOr(patch.EndTime, existing.End.String()),
			)
			if err := windowErr.errOrNil(); err != nil {
				return nil, err
			}
			if conflicts := scheduler.FindConflicts(list, existing.RoomID, date, start, end, existing.ID); len(conflicts) > 0 {
				return nil, &ConflictError{Conflicts: conflicts, Rescheduling: true}
			}
			updated.Date, updated.Start, updated.End = date, start, end
		}

		updated.Sector = strings.TrimSpace(valueOr(patch.Sector, existing.Sector))
		if title := strings.TrimSpace(valueOr(patch.Title, "")); title != "" {
			updated.Title = title
		}
		if patch.Description != nil {
			updated.Description = strings.TrimSpace(*patch.Description)
		}

		updated.UpdatedAt = now
		updated.Status = scheduler.DeriveStatus(updated, now)

		next := append([]scheduler.Reservation(nil), list...)
		next[index] = updated
		return next, nil
	})
	if err != nil {
		updated = scheduler.Reservation{}
		return
	}
	return updated, nil
}

// Cancel cancels the reservation id. Admin and Staff principals may cancel any
// reservation. Regular principals may cancel only their own.
func (s *ReservationService) Cancel(ctx context.Context, principal Principal, id string) (cancelled scheduler.Reservation, err error) {
	if err = s.ready(); err != nil {
		return scheduler.Reservation{}, err
	}

	started := time.Now()
	logger := s.loggerWith(ctx, "Cancel",
		"principal_id", principal.UserID,
		"role", string(principal.Role),
		"reservation_id", id,
	)
	defer func() {
		metrics.ObserveOperation("Cancel", ErrorKind(err), time.Since(started))
		if err != nil {
			logFailure(ctx, logger, "failed to cancel reservation", err)
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, err = s.change(ctx, logger, func(list []scheduler.Reservation, now time.Time) ([]scheduler.Reservation, error) {
		index := indexOf(list, id)
		if index < 0 {
			return nil, ErrReservationNotFound
		}
		existing := list[index]

		if !principal.canCancelOthers() && existing.UserID != principal.UserID {
			return nil, ErrForbidden
		}
		if !scheduler.CanCancel(existing.Status) {
			return nil, ErrInvalidState
		}

		cancelled = existing
		cancelled.Status = scheduler.StatusCancelled
		cancelled.UpdatedAt = now

		next := append([]scheduler.Reservation(nil), list...)
		next[index] = cancelled
		return next, nil
	})
	if err != nil {
		cancelled = scheduler.Reservation{}
		return
	}

	s.notify(ctx, logger, notification.EventCancelled, cancelled)
	return cancelled, nil
}

// AvailableSlots returns the time grid for roomID on date minus the slots
// covered by active reservations.
func (s *ReservationService) AvailableSlots(ctx context.Context, roomID, date string) ([]calendar.TimeOfDay, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, ok := s.rooms.RoomByID(roomID); !ok {
		return nil, ErrRoomNotFound
	}
	day, err := calendar.ParseDate(date)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("date", "date must be YYYY-MM-DD")
		return nil, vErr
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.AvailableSlots(list, roomID, day, calendar.TimeSlots()), nil
}

// Reset removes every stored reservation. The next List seeds the demo data again.
func (s *ReservationService) Reset(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx, s.slot); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.loggerWith(ctx, "Reset").InfoContext(ctx, "reservations reset", "slot", s.slot)
	return nil
}

// Seed replaces the stored collection with the demo reservations.
func (s *ReservationService) Seed(ctx context.Context) ([]scheduler.Reservation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := SeedReservations(s.now())
	if err := s.store.Save(ctx, s.slot, toRecords(seeded)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.loggerWith(ctx, "Seed").InfoContext(ctx, "reservations seeded", "count", len(seeded))
	return seeded, nil
}

// mutation edits the refreshed collection read from the store. It may run
// more than once when another writer changes the slot in between.
type mutation func(list []scheduler.Reservation, now time.Time) ([]scheduler.Reservation, error)

// change reads the slot, seeding it when empty, refreshes statuses, applies
// fn and writes the result back only if the slot is unchanged. Errors from fn
// are returned as-is, store failures wrap ErrPersistence. A nil fn writes only
// when seeding or refreshing changed something.
//
// loaded reports whether the collection was read. In that case current holds
// it even when the write failed.
func (s *ReservationService) change(ctx context.Context, logger *slog.Logger, fn mutation) (current []scheduler.Reservation, loaded bool, err error) {
	var (
		opErr  error
		seeded bool
	)
	err = persistence.Update(ctx, s.store, s.slot, func(records []persistence.Reservation, exists bool) ([]persistence.Reservation, error) {
		current, loaded, opErr, seeded = nil, false, nil, false
		now := s.now()

		var list []scheduler.Reservation
		if exists {
			decoded, err := fromRecords(records)
			if err != nil {
				return nil, err
			}
			list = decoded
		} else {
			list, seeded = SeedReservations(now), true
		}

		list, changed := scheduler.RefreshAll(list, now)
		current, loaded = list, true

		if fn != nil {
			next, err := fn(list, now)
			if err != nil {
				opErr = err
				return nil, err
			}
			return toRecords(next), nil
		}
		if !seeded && !changed {
			return nil, persistence.ErrSkipWrite
		}
		return toRecords(list), nil
	})

	switch {
	case opErr != nil:
		return nil, false, opErr
	case err != nil:
		return current, loaded, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if seeded {
		logger.InfoContext(ctx, "seeded empty reservation store", "count", len(current))
	}
	return current, loaded, nil
}

func (s *ReservationService) notify(ctx context.Context, logger *slog.Logger, event notification.Event, r scheduler.Reservation) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, event, r)
	metrics.ObserveNotification(string(event), err)
	if err != nil {
		logger.WarnContext(ctx, "failed to send notification", "event", string(event), "error", err)
	}
}

var allStatuses = []string{
	string(scheduler.StatusScheduled),
	string(scheduler.StatusInProgress),
	string(scheduler.StatusCompleted),
	string(scheduler.StatusCancelled),
}

func observeStatuses(list []scheduler.Reservation) {
	counts := make(map[string]int, len(allStatuses))
	for _, r := range list {
		counts[string(r.Status)]++
	}
	metrics.SetReservationsByStatus(allStatuses, counts)
}

func indexOf(list []scheduler.Reservation, id string) int {
	for i, r := range list {
		if r.ID == id {
			return i
		}
	}
	return -1
}
