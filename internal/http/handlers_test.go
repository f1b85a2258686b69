package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/catalog"
	"github.com/example/room-reservations/internal/notification"
	"github.com/example/room-reservations/internal/testfixtures"
)

type apiHarness struct {
	clock    *testfixtures.Clock
	recorder *notification.Recorder
	handler  http.Handler
}

func newAPI(t *testing.T, health HealthCheck) *apiHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := testfixtures.NewClock(time.Time{})
	factory := testfixtures.NewServiceFactory(testfixtures.WithClock(clock))
	recorder := &notification.Recorder{}

	reservations := factory.NewReservationService(testfixtures.ReservationServiceDeps{Notifier: recorder, Logger: logger})
	auth, err := factory.NewAuthService(testfixtures.AuthServiceDeps{Logger: logger})
	require.NoError(t, err)

	handler := NewRouter(RouterConfig{
		Sessions:     NewSessionHandler(auth, logger),
		Rooms:        NewRoomHandler(catalog.Default(), reservations, logger),
		Reservations: NewReservationHandler(reservations, clock.NowFunc(), logger),
		Validator:    auth,
		Metrics:      promhttp.Handler(),
		Health:       health,
		Logger:       logger,
		Middleware:   []func(http.Handler) http.Handler{RequestLogger(logger), RecordMetrics()},
	})
	return &apiHarness{clock: clock, recorder: recorder, handler: handler}
}

func (a *apiHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *apiHarness) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/sessions", "", loginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func today() string { return testfixtures.ReferenceDate().String() }

func TestSessionHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)

		rec := api.do(t, http.MethodPost, "/sessions", "", loginRequest{Email: "joao@antonelly.com", Password: "user123"})
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decode[loginResponse](t, rec)
		assert.Contains(t, resp.Token, "fake-jwt-token-2-")
		assert.Equal(t, "USER", resp.User.Role)
		assert.Equal(t, resp.Token, rec.Header().Get("X-Session-Token"))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "session_token="+resp.Token)
	})

	t.Run("login rejects bad credentials", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)

		rec := api.do(t, http.MethodPost, "/sessions", "", loginRequest{Email: "admin", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Credenciais inválidas", decode[errorResponse](t, rec).Message)

		rec = api.do(t, http.MethodPost, "/sessions", "", loginRequest{Email: "admin"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errMissingCredentials.Error(), decode[errorResponse](t, rec).Message)
	})

	t.Run("current session is restored until logout", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)
		token := api.login(t, "portaria@antonelly.com", "portaria123")

		rec := api.do(t, http.MethodGet, "/sessions/current", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Maria Portaria", decode[currentSessionResponse](t, rec).User.Name)

		rec = api.do(t, http.MethodDelete, "/sessions", token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = api.do(t, http.MethodGet, "/sessions/current", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRoomHandlers(t *testing.T) {
	t.Parallel()
	api := newAPI(t, nil)
	token := api.login(t, "joao@antonelly.com", "user123")

	rec := api.do(t, http.MethodGet, "/rooms", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listRoomsResponse](t, rec).Rooms, 5)

	rec = api.do(t, http.MethodGet, "/rooms/4", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sala de Treinamento", decode[catalog.Room](t, rec).Name)

	rec = api.do(t, http.MethodGet, "/rooms/99", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/rooms/1/slots?date="+today(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decode[slotsResponse](t, rec).Slots
	assert.NotContains(t, slots, "14:00")
	assert.NotContains(t, slots, "14:30")
	assert.Contains(t, slots, "15:00")
	assert.Len(t, slots, len(calendar.TimeSlots())-2)

	rec = api.do(t, http.MethodGet, "/rooms/1/slots?date=amanha", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodGet, "/rooms/99/slots?date="+today(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Sala não encontrada", decode[errorResponse](t, rec).Message)

	rec = api.do(t, http.MethodGet, "/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReservationHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create and list", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)
		token := api.login(t, "joao@antonelly.com", "user123")

		rec := api.do(t, http.MethodPost, "/reservations", token, createReservationRequest{
			RoomID: "3", Date: today(), StartTime: "11:00", EndTime: "12:00", Title: "Retro", Description: "  ",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode[reservationDTO](t, rec)
		assert.Equal(t, "Sala de Reunião 3", created.RoomName)
		assert.Equal(t, "RH", created.Sector)
		assert.Equal(t, "Agendado", created.Status)
		assert.Empty(t, created.Description)
		assert.Equal(t, []notification.Event{notification.EventConfirmed}, api.recorder.Events())

		rec = api.do(t, http.MethodGet, "/reservations", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[listReservationsResponse](t, rec).Reservations, 4)

		rec = api.do(t, http.MethodGet, "/reservations?mine=true", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var ids []string
		for _, r := range decode[listReservationsResponse](t, rec).Reservations {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"1", "3", created.ID}, ids)

		rec = api.do(t, http.MethodGet, "/reservations/"+created.ID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Retro", decode[reservationDTO](t, rec).Title)

		rec = api.do(t, http.MethodGet, "/reservations/missing", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Reserva não encontrada", decode[errorResponse](t, rec).Message)
	})

	t.Run("create conflicts and validation", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)
		token := api.login(t, "joao@antonelly.com", "user123")

		rec := api.do(t, http.MethodPost, "/reservations", token, createReservationRequest{
			RoomID: "1", Date: today(), StartTime: "14:30", EndTime: "15:30", Title: "Sobreposta",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Conflito de horário! A sala já está reservada das 14:00 às 15:00.", decode[errorResponse](t, rec).Message)

		rec = api.do(t, http.MethodPost, "/reservations", token, createReservationRequest{
			RoomID: "1", Date: calendar.AddDays(testfixtures.ReferenceDate(), -1).String(), StartTime: "09:00", EndTime: "10:00", Title: "Ontem",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Não é possível reservar em uma data passada.", decode[errorResponse](t, rec).Errors["date"])

		rec = api.do(t, http.MethodPost, "/reservations", token, createReservationRequest{
			RoomID: "1", Date: today(), StartTime: "16:00", EndTime: "15:00",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "Preencha o título.", resp.Errors["title"])
		assert.Equal(t, "O horário de término deve ser posterior ao de início.", resp.Errors["end_time"])

		rec = api.do(t, http.MethodPost, "/reservations", token, createReservationRequest{
			RoomID: "77", Date: today(), StartTime: "11:00", EndTime: "12:00", Title: "Nenhuma",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+token)
		bad := httptest.NewRecorder()
		api.handler.ServeHTTP(bad, req)
		assert.Equal(t, http.StatusBadRequest, bad.Code)
	})

	t.Run("update enforces ownership and state", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)
		joao := api.login(t, "joao@antonelly.com", "user123")
		admin := api.login(t, "admin", "admin")

		title := "Nova integração"
		rec := api.do(t, http.MethodPatch, "/reservations/1", admin, updateReservationRequest{Title: &title})
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Você não tem permissão para editar esta reserva", decode[errorResponse](t, rec).Message)

		rec = api.do(t, http.MethodPatch, "/reservations/1", joao, updateReservationRequest{Title: &title})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, title, decode[reservationDTO](t, rec).Title)

		end := "18:00"
		rec = api.do(t, http.MethodPatch, "/reservations/3", joao, updateReservationRequest{EndTime: &end})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "O horário de término deve estar entre 08:00 e 17:30.", decode[errorResponse](t, rec).Errors["end_time"])

		rec = api.do(t, http.MethodPost, "/reservations", admin, createReservationRequest{
			RoomID: "1", Date: today(), StartTime: "15:00", EndTime: "16:00", Title: "Diretoria",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		end = "15:30"
		rec = api.do(t, http.MethodPatch, "/reservations/1", joao, updateReservationRequest{EndTime: &end})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Conflito de horário! Escolha outro horário.", decode[errorResponse](t, rec).Message)

		api.clock.Set(time.Date(2024, time.January, 2, 14, 15, 0, 0, time.UTC))
		rec = api.do(t, http.MethodPatch, "/reservations/1", joao, updateReservationRequest{Title: &title})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Não é possível editar uma reserva com este status", decode[errorResponse](t, rec).Message)
	})

	t.Run("update trims reschedule fields", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)
		joao := api.login(t, "joao@antonelly.com", "user123")

		date, start, end := " "+today()+" ", " 15:00", "16:00 "
		rec := api.do(t, http.MethodPatch, "/reservations/1", joao, updateReservationRequest{Date: &date, StartTime: &start, EndTime: &end})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[reservationDTO](t, rec)
		assert.Equal(t, today(), updated.Date)
		assert.Equal(t, "15:00", updated.StartTime)
		assert.Equal(t, "16:00", updated.EndTime)
	})

	t.Run("cancel follows roles", func(t *testing.T) {
		t.Parallel()
		api := newAPI(t, nil)
		joao := api.login(t, "joao@antonelly.com", "user123")
		desk := api.login(t, "portaria@antonelly.com", "portaria123")

		rec := api.do(t, http.MethodPost, "/reservations/2/cancel", joao, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Você não tem permissão para cancelar esta reserva", decode[errorResponse](t, rec).Message)

		rec = api.do(t, http.MethodPost, "/reservations/2/cancel", desk, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Cancelado", decode[reservationDTO](t, rec).Status)

		rec = api.do(t, http.MethodPost, "/reservations/2/cancel", desk, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Não é possível cancelar uma reserva com este status", decode[errorResponse](t, rec).Message)

		assert.Equal(t, []notification.Event{notification.EventCancelled}, api.recorder.Events())

		rec = api.do(t, http.MethodGet, "/reservations/2/cancel", desk, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	t.Parallel()

	api := newAPI(t, nil)
	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[healthResponse](t, rec).Status)

	rec = api.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reservations_http_requests_total")

	failing := newAPI(t, func(context.Context) error { return errors.New("store down") })
	rec = failing.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
