package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sshpoker/sshpoker/internal/middleware"
	"github.com/sshpoker/sshpoker/internal/registry"
	"github.com/sshpoker/sshpoker/internal/session"
	"github.com/sshpoker/sshpoker/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Registry *registry.Registry
	Sessions *session.Manager
	Storage  storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	h := &handlers{
		registry: cfg.Registry,
		sessions: cfg.Sessions,
		storage:  cfg.Storage,
	}

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, apiPanicHandler)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(recoveryMiddleware)
	v1.Use(loggingMiddleware)

	v1.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	v1.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	v1.HandleFunc("/sessions", h.Sessions).Methods(http.MethodGet)
	v1.HandleFunc("/users/{fingerprint}", h.User).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	WriteError(w, NewInternalError())
}
