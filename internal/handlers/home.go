package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"colortap/internal/game"
	"colortap/internal/viewmodel"
	"colortap/views/pages"
)

const title = "Color Tap"

// HomeHandler serves the landing page and session creation.
type HomeHandler struct {
	store *game.Store
}

// NewHomeHandler returns a handler backed by store.
func NewHomeHandler(store *game.Store) *HomeHandler {
	return &HomeHandler{store: store}
}

// RegisterRoutes registers the landing, create and health routes.
func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/sessions", h.createSession)
	r.Get("/health", h.health)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.Sessions()
	data := viewmodel.HomePage{
		Title:    title,
		Sessions: make([]viewmodel.SessionSummary, 0, len(sessions)),
	}
	for _, s := range sessions {
		snap := s.Snapshot()
		data.Sessions = append(data.Sessions, viewmodel.SessionSummary{
			ID:    s.ID,
			Phase: snap.Phase.String(),
			Score: snap.Score,
		})
	}
	render(w, r, pages.HomePage(data))
}

func (h *HomeHandler) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.CreateSession()
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/sessions/"+session.ID, http.StatusSeeOther)
}

func (h *HomeHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": len(h.store.Sessions()),
	})
}
