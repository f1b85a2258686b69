package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/room-reservations/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, custom, defaultLogger(custom))
	assert.Same(t, slog.Default(), defaultLogger(nil))
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewTextHandler(&scoped, nil)))

	serviceLogger(ctx, baseLogger, "ReservationService", "Create", "room_id", "1").Info("hello")

	assert.Empty(t, base.String())
	assert.Contains(t, scoped.String(), "service=ReservationService")
	assert.Contains(t, scoped.String(), "operation=Create")
	assert.Contains(t, scoped.String(), "room_id=1")
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrForbidden, "forbidden"},
		{ErrReservationNotFound, "not_found"},
		{ErrRoomNotFound, "not_found"},
		{ErrInvalidState, "invalid_state"},
		{&ConflictError{}, "conflict"},
		{fmt.Errorf("%w: disk full", ErrPersistence), "persistence"},
		{fmt.Errorf("wrap: %w", ErrInvalidFormat), "invalid_format"},
		{&ValidationError{FieldErrors: map[string]string{"date": "bad"}}, "validation"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ErrorKind(tc.err), "error %v", tc.err)
	}
}

func TestFailureLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want slog.Level
	}{
		{&ValidationError{FieldErrors: map[string]string{"title": "required"}}, slog.LevelInfo},
		{&ConflictError{}, slog.LevelInfo},
		{ErrReservationNotFound, slog.LevelInfo},
		{ErrInvalidState, slog.LevelInfo},
		{ErrForbidden, slog.LevelWarn},
		{ErrInvalidCredentials, slog.LevelWarn},
		{fmt.Errorf("%w: disk full", ErrPersistence), slog.LevelError},
		{errors.New("boom"), slog.LevelError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FailureLevel(tc.err), "error %v", tc.err)
	}
}

func TestLogFailureUsesKindLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logFailure(context.Background(), logger, "failed to create reservation", &ConflictError{})
	assert.Empty(t, buf.String())

	logFailure(context.Background(), logger, "failed to create reservation", ErrForbidden)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "error_kind=forbidden")
}
