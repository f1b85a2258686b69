package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-reservations/internal/application"
)

var (
	errBadRequestBody       = errors.New("Formato de requisição inválido.")
	errInvalidReservationID = errors.New("ID de reserva inválido.")
	errInvalidRoomID        = errors.New("ID de sala inválido.")
	errMissingSessionToken  = errors.New("Informe o token de autenticação.")
	errMissingCredentials   = errors.New("Por favor, preencha todos os campos")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		r.loggerFor(ctx).Log(ctx, level, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// errorMessages overrides the default message of a sentinel error for one operation.
type errorMessages map[error]string

func (m errorMessages) pick(target error, fallback string) string {
	if msg, ok := m[target]; ok {
		return msg
	}
	return fallback
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error, overrides ...errorMessages) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var messages errorMessages
	if len(overrides) > 0 {
		messages = overrides[0]
	}

	var (
		conflict *application.ConflictError
		vErr     *application.ValidationError
	)
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "Dados inválidos. Verifique os campos informados.",
			Errors:    localizeValidationErrors(vErr),
		})
	case errors.As(err, &conflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SCHEDULING_CONFLICT",
			Message:   conflictMessage(conflict),
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Credenciais inválidas",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_UNAUTHORIZED",
			Message:   "Usuário não autenticado",
		})
	case errors.Is(err, application.ErrForbidden):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   messages.pick(application.ErrForbidden, "Você não tem permissão para realizar esta ação."),
		})
	case errors.Is(err, application.ErrReservationNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Reserva não encontrada"})
	case errors.Is(err, application.ErrRoomNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Sala não encontrada"})
	case errors.Is(err, application.ErrInvalidState):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "INVALID_STATE",
			Message:   messages.pick(application.ErrInvalidState, "A reserva não permite esta operação no status atual."),
		})
	case errors.Is(err, application.ErrPersistence):
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Erro ao salvar dados"})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: localizedStatusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func conflictMessage(err *application.ConflictError) string {
	if err.Rescheduling || len(err.Conflicts) == 0 {
		return "Conflito de horário! Escolha outro horário."
	}
	first := err.Conflicts[0]
	return fmt.Sprintf("Conflito de horário! A sala já está reservada das %s às %s.", first.Start, first.End)
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requisição inválida."
	case http.StatusUnauthorized:
		return "Usuário não autenticado"
	case http.StatusForbidden:
		return "Você não tem permissão para realizar esta ação."
	case http.StatusNotFound:
		return "Recurso não encontrado."
	case http.StatusConflict:
		return "A requisição conflita com o estado atual do recurso."
	case http.StatusUnprocessableEntity:
		return "Dados inválidos. Verifique os campos informados."
	case http.StatusServiceUnavailable:
		return "Serviço indisponível."
	default:
		return "Erro interno do servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "room id is required":
		return "Selecione uma sala."
	case "title is required":
		return "Preencha o título."
	case "date is required":
		return "Informe a data."
	case "start time is required":
		return "Informe o horário de início."
	case "end time is required":
		return "Informe o horário de término."
	case "date must be YYYY-MM-DD":
		return "Data inválida. Use o formato AAAA-MM-DD."
	case "date must not be in the past":
		return "Não é possível reservar em uma data passada."
	case "start time must be HH:MM":
		return "Horário de início inválido. Use o formato HH:MM."
	case "end time must be HH:MM":
		return "Horário de término inválido. Use o formato HH:MM."
	case "start time must be within business hours":
		return "O horário de início deve estar entre 08:00 e 17:30."
	case "end time must be within business hours":
		return "O horário de término deve estar entre 08:00 e 17:30."
	case "end time must be after start time":
		return "O horário de término deve ser posterior ao de início."
	case "title is too long":
		return "O título é muito longo."
	case "sector is too long":
		return "O setor é muito longo."
	case "description is too long":
		return "A descrição é muito longa."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
