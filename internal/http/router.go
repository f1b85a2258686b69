package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	Sessions     *SessionHandler
	Rooms        *RoomHandler
	Reservations *ReservationHandler
	// Validator guards every route except login, health and metrics. A nil
	// validator leaves routes unguarded.
	Validator  SessionValidator
	Metrics    http.Handler
	Health     HealthCheck
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.Validator != nil {
		guard := RequireSession(cfg.Validator, cfg.Logger)
		protect = func(h http.HandlerFunc) http.Handler { return guard(h) }
	}

	if cfg.Sessions != nil {
		logout := protect(cfg.Sessions.Delete)
		current := protect(cfg.Sessions.Current)
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Sessions.Create(w, r)
			case http.MethodDelete:
				logout.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			current.ServeHTTP(w, r)
		})
	}

	if cfg.Rooms != nil {
		list := protect(cfg.Rooms.List)
		get := protect(cfg.Rooms.Get)
		slots := protect(cfg.Rooms.Slots)
		mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			list.ServeHTTP(w, r)
		})
		mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
			id, action, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/rooms/"), "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithRoomID(r.Context(), id))
			switch action {
			case "":
				get.ServeHTTP(w, r)
			case "slots":
				slots.ServeHTTP(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Reservations != nil {
		list := protect(cfg.Reservations.List)
		create := protect(cfg.Reservations.Create)
		get := protect(cfg.Reservations.Get)
		update := protect(cfg.Reservations.Update)
		cancel := protect(cfg.Reservations.Cancel)
		mux.HandleFunc("/reservations", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				list.ServeHTTP(w, r)
			case http.MethodPost:
				create.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/reservations/", func(w http.ResponseWriter, r *http.Request) {
			id, action, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/reservations/"), "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithReservationID(r.Context(), id))
			switch action {
			case "":
				switch r.Method {
				case http.MethodGet:
					get.ServeHTTP(w, r)
				case http.MethodPatch:
					update.ServeHTTP(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPatch)
				}
			case "cancel":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cancel.ServeHTTP(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	health := newResponder(cfg.Logger)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				health.loggerFor(r.Context()).WarnContext(r.Context(), "health check failed", "error", err)
				health.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		health.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	})

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

type healthResponse struct {
	Status string `json:"status"`
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
