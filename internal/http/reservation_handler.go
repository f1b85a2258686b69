package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/scheduler"
)

type reservationService interface {
	List(ctx context.Context) ([]scheduler.Reservation, error)
	Get(ctx context.Context, id string) (scheduler.Reservation, error)
	Create(ctx context.Context, principal application.Principal, input application.CreateReservationInput) (scheduler.Reservation, error)
	Update(ctx context.Context, principal application.Principal, id string, patch application.UpdateReservationPatch) (scheduler.Reservation, error)
	Cancel(ctx context.Context, principal application.Principal, id string) (scheduler.Reservation, error)
}

var (
	updateMessages = errorMessages{
		application.ErrForbidden:    "Você não tem permissão para editar esta reserva",
		application.ErrInvalidState: "Não é possível editar uma reserva com este status",
	}
	cancelMessages = errorMessages{
		application.ErrForbidden:    "Você não tem permissão para cancelar esta reserva",
		application.ErrInvalidState: "Não é possível cancelar uma reserva com este status",
	}
)

type ReservationHandler struct {
	service   reservationService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

// NewReservationHandler builds the reservation endpoints. now decides which
// dates count as past for new bookings.
func NewReservationHandler(service reservationService, now func() time.Time, logger *slog.Logger) *ReservationHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, now: now, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

// List handles GET /reservations. With mine=true only the caller's
// reservations are returned.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservations, err := h.service.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if mine, _ := strconv.ParseBool(r.URL.Query().Get("mine")); mine {
		principal, _ := PrincipalFromContext(r.Context())
		owned := reservations[:0:0]
		for _, res := range reservations {
			if res.UserID == principal.UserID {
				owned = append(owned, res)
			}
		}
		reservations = owned
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

// Get handles GET /reservations/{id}.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	reservation, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReservationDTO(reservation))
}

// Create handles POST /reservations.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", req.RoomID)

	if date, err := calendar.ParseDate(req.Date); err == nil && !calendar.IsFutureDate(date, h.now()) {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"date": "date must not be in the past"},
		})
		return
	}

	reservation, err := h.service.Create(r.Context(), principal, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toReservationDTO(reservation))
}

// Update handles PATCH /reservations/{id}.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	var req updateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "reservation_id", id)

	reservation, err := h.service.Update(r.Context(), principal, id, req.toPatch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err, updateMessages)
		return
	}

	logger.InfoContext(r.Context(), "reservation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReservationDTO(reservation))
}

// Cancel handles POST /reservations/{id}/cancel.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "principal_id", principal.UserID, "reservation_id", id)

	reservation, err := h.service.Cancel(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err, cancelMessages)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReservationDTO(reservation))
}

func (h *ReservationHandler) reservationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return "", false
	}
	return id, true
}

type createReservationRequest struct {
	RoomID      string `json:"roomId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Sector      string `json:"sector"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (req createReservationRequest) toInput() application.CreateReservationInput {
	return application.CreateReservationInput{
		RoomID:      strings.TrimSpace(req.RoomID),
		Date:        strings.TrimSpace(req.Date),
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		Sector:      req.Sector,
		Title:       req.Title,
		Description: req.Description,
	}
}

type updateReservationRequest struct {
	Date        *string `json:"date"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Sector      *string `json:"sector"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (req updateReservationRequest) toPatch() application.UpdateReservationPatch {
	return application.UpdateReservationPatch{
		Date:        trimmed(req.Date),
		StartTime:   trimmed(req.StartTime),
		EndTime:     trimmed(req.EndTime),
		Sector:      req.Sector,
		Title:       req.Title,
		Description: req.Description,
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

type reservationDTO struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	Sector      string `json:"sector"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

func toReservationDTO(r scheduler.Reservation) reservationDTO {
	return reservationDTO{
		ID:          r.ID,
		RoomID:      r.RoomID,
		RoomName:    r.RoomName,
		Date:        r.Date.String(),
		StartTime:   r.Start.String(),
		EndTime:     r.End.String(),
		UserID:      r.UserID,
		UserName:    r.UserName,
		Sector:      r.Sector,
		Title:       r.Title,
		Description: r.Description,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toReservationDTOs(list []scheduler.Reservation) []reservationDTO {
	out := make([]reservationDTO, len(list))
	for i, r := range list {
		out[i] = toReservationDTO(r)
	}
	return out
}
