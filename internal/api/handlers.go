package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/registry"
	"github.com/sshpoker/sshpoker/internal/session"
	"github.com/sshpoker/sshpoker/internal/storage"
)

// handlers serves the admin endpoints
type handlers struct {
	registry *registry.Registry
	sessions *session.Manager
	storage  storage.Storage
}

// Status handles GET /api/v1/status
func (h *handlers) Status(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, StatusResponse{
		Occupancy:  h.registry.Count(),
		MaxClients: h.sessions.MaxClients(),
	})
}

// Sessions handles GET /api/v1/sessions
func (h *handlers) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.storage.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionFromModel(s))
	}
	JSON(w, http.StatusOK, SessionsResponse{Sessions: out})
}

// User handles GET /api/v1/users/{fingerprint}
func (h *handlers) User(w http.ResponseWriter, r *http.Request) {
	fingerprint := mux.Vars(r)["fingerprint"]
	if fingerprint == "" {
		WriteError(w, NewInvalidRequestError("fingerprint is required"))
		return
	}

	profile, err := h.storage.GetProfile(r.Context(), model.Fingerprint(fingerprint))
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, ProfileFromModel(profile))
}
