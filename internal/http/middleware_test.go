package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservations/internal/application"
)

type stubValidator struct {
	users map[string]application.User
	err   error
}

func (s stubValidator) Validate(_ context.Context, token string) (application.User, error) {
	if s.err != nil {
		return application.User{}, s.err
	}
	user, ok := s.users[token]
	if !ok {
		return application.User{}, application.ErrUnauthorized
	}
	return user, nil
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	joao := application.User{ID: "2", Name: "João Silva", Role: application.RoleRegular, Sector: "RH"}
	validator := stubValidator{users: map[string]application.User{"good": joao}}

	echoPrincipal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(principal.UserID + "/" + principal.Sector))
	})

	tests := []struct {
		name       string
		validator  SessionValidator
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing token", validator: validator, wantStatus: http.StatusUnauthorized, wantBody: errMissingSessionToken.Error()},
		{name: "unknown bearer token", validator: validator, header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantBody: "AUTH_SESSION_INVALID"},
		{name: "bearer token", validator: validator, header: "Bearer good", wantStatus: http.StatusOK, wantBody: "2/RH"},
		{name: "cookie token", validator: validator, cookie: "good", wantStatus: http.StatusOK, wantBody: "2/RH"},
		{name: "validator failure", validator: stubValidator{err: errors.New("boom")}, header: "Bearer good", wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session_token", Value: tc.cookie})
			}
			rec := httptest.NewRecorder()

			RequireSession(tc.validator, nil)(echoPrincipal).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LoggerFromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reservations", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "request started")
	assert.Contains(t, out, "msg=\"inside handler\" request_id=1")
	assert.Contains(t, out, "status=202")
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, rec.code())

	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusNotFound, rec.code())
}

func TestRouteLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/":                        "/",
		"/sessions":                "/sessions",
		"/sessions/current":        "/sessions/current",
		"/rooms/3":                 "/rooms/{id}",
		"/rooms/3/slots":           "/rooms/{id}/slots",
		"/reservations":            "/reservations",
		"/reservations/abc/cancel": "/reservations/{id}/cancel",
		"/metrics":                 "/metrics",
		"/wp-admin/setup.php":      "other",
	}
	for path, want := range tests {
		assert.Equal(t, want, routeLabel(path), path)
	}
}
