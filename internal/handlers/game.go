package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"colortap/internal/game"
	"colortap/internal/viewmodel"
	"colortap/views/components"
	"colortap/views/pages"
)

// KeepAliveInterval is how often an idle SSE stream sends a comment line.
var KeepAliveInterval = 25 * time.Second

// GameHandler serves the game page, its fragments and the JSON controller.
type GameHandler struct {
	store *game.Store
}

// NewGameHandler returns a handler backed by store.
func NewGameHandler(store *game.Store) *GameHandler {
	return &GameHandler{store: store}
}

// RegisterRoutes registers the per-session page, fragment and command routes.
func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{id}", h.gamePage)
	r.Get("/sessions/{id}/round", h.roundFragment)
	r.Get("/sessions/{id}/state", h.state)
	r.Post("/sessions/{id}/submit", h.submit)
	r.Post("/sessions/{id}/restart", h.restart)
}

// RegisterStreamRoutes registers the long-lived SSE endpoint, which must not sit behind a request timeout.
func (h *GameHandler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/sessions/{id}/stream", h.stream)
}

func (h *GameHandler) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	session, ok := h.store.GetSession(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return session, true
}

func (h *GameHandler) gamePage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	data := viewmodel.GamePage{
		Title:     title,
		SessionID: session.ID,
		Round:     buildRoundFragment(session.ID, session.Snapshot()),
	}
	render(w, r, pages.GamePage(data))
}

func (h *GameHandler) roundFragment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	render(w, r, components.RoundFragment(buildRoundFragment(session.ID, session.Snapshot())))
}

func (h *GameHandler) state(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildState(session.ID, session.Snapshot()))
}

func (h *GameHandler) submit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	seq, err := strconv.ParseUint(strings.TrimSpace(r.FormValue("round")), 10, 64)
	if err != nil {
		http.Error(w, "round required", http.StatusBadRequest)
		return
	}
	color := game.Color(strings.ToLower(strings.TrimSpace(r.FormValue("color"))))

	res, err := session.Submit(r.Context(), seq, color)
	if err != nil {
		log.Debug().Err(err).Str("session_id", session.ID).Uint64("round", seq).Msg("submit rejected")
		writeError(w, err)
		return
	}
	if isHTMX(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, buildResult(res))
}

func (h *GameHandler) restart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.Restart(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if isHTMX(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/sessions/"+session.ID, http.StatusSeeOther)
}

func (h *GameHandler) stream(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	hub, ok := h.store.Broadcaster(session.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendRound := func(snap game.Snapshot) {
		writeSSE(w, "round", renderToString(r, components.RoundFragment(buildRoundFragment(session.ID, snap))))
		flusher.Flush()
	}

	sendRound(session.Snapshot())

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case u, ok := <-sub:
			if !ok {
				writeSSE(w, "closed", "")
				flusher.Flush()
				return
			}
			sendRound(u.Snapshot)
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}
