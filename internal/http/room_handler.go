package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/catalog"
)

type slotService interface {
	AvailableSlots(ctx context.Context, roomID, date string) ([]calendar.TimeOfDay, error)
}

type RoomHandler struct {
	rooms     catalog.Catalog
	slots     slotService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(rooms catalog.Catalog, slots slotService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{rooms: rooms, slots: slots, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

// List handles GET /rooms.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms := h.rooms.Rooms()
	h.log(r.Context(), "List", "count", len(rooms)).DebugContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: rooms})
}

// Get handles GET /rooms/{id}.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	room, found := h.rooms.RoomByID(roomID)
	if !found {
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: "Sala não encontrada"})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, room)
}

// Slots handles GET /rooms/{id}/slots?date=YYYY-MM-DD.
func (h *RoomHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.slots == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	logger := h.log(r.Context(), "Slots", "room_id", roomID, "date", date)

	slots, err := h.slots.AvailableSlots(r.Context(), roomID, date)
	if err != nil {
		logger.Log(r.Context(), application.FailureLevel(err), "failed to compute available slots", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotsResponse{RoomID: roomID, Date: date, Slots: out})
}

type listRoomsResponse struct {
	Rooms []catalog.Room `json:"rooms"`
}

type slotsResponse struct {
	RoomID string   `json:"room_id"`
	Date   string   `json:"date"`
	Slots  []string `json:"slots"`
}
