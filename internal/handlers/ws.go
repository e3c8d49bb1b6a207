package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"colortap/internal/game"
	"colortap/internal/viewmodel"
)

// ConnectionConfig holds configuration for websocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns the default websocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Client message types.
const (
	MessageSubmit  = "submit"
	MessageRestart = "restart"
)

// Server message types.
const (
	MessageState  = "state"
	MessageResult = "result"
	MessageError  = "error"
)

// ClientMessage is a command sent by a websocket client.
type ClientMessage struct {
	Type  string `json:"type"`
	Round uint64 `json:"round,omitempty"`
	Color string `json:"color,omitempty"`
}

// ServerMessage is pushed to websocket clients.
type ServerMessage struct {
	Type   string                 `json:"type"`
	State  *viewmodel.State       `json:"state,omitempty"`
	Result *viewmodel.ResultState `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Status int                    `json:"status,omitempty"`
}

// SocketHandler serves the websocket controller for a session.
type SocketHandler struct {
	store    *game.Store
	config   ConnectionConfig
	upgrader websocket.Upgrader
}

// NewSocketHandler returns a websocket handler backed by store.
func NewSocketHandler(store *game.Store, config ConnectionConfig) *SocketHandler {
	return &SocketHandler{
		store:  store,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *SocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{id}/ws", h.serve)
}

type connection struct {
	id      string
	conn    *websocket.Conn
	session *game.Session
	config  ConnectionConfig
	send    chan ServerMessage
}

func (h *SocketHandler) serve(w http.ResponseWriter, r *http.Request) {
	session, ok := h.store.GetSession(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	hub, ok := h.store.Broadcaster(session.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	c := &connection{
		id:      uuid.New().String(),
		conn:    conn,
		session: session,
		config:  h.config,
		send:    make(chan ServerMessage, 16),
	}
	log.Info().
		Str("connection_id", c.id).
		Str("session_id", session.ID).
		Msg("websocket connection established")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		c.readPump(ctx)
		cancel()
	}()
	c.writePump(ctx, sub)

	log.Info().Str("connection_id", c.id).Msg("websocket connection closed")
}

// writePump is the only writer on the connection.
func (c *connection) writePump(ctx context.Context, updates <-chan game.Update) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	state := buildState(c.session.ID, c.session.Snapshot())
	if err := c.write(ServerMessage{Type: MessageState, State: &state}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			state := buildState(u.SessionID, u.Snapshot)
			if err := c.write(ServerMessage{Type: MessageState, State: &state}); err != nil {
				return
			}
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", c.id).Msg("failed to send ping")
				return
			}
		}
	}
}

func (c *connection) write(msg ServerMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Error().Err(err).Str("connection_id", c.id).Msg("failed to write message to websocket")
		return err
	}
	return nil
}

func (c *connection) readPump(ctx context.Context) {
	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		reply := c.handleClientMessage(ctx, data)
		select {
		case c.send <- reply:
		case <-ctx.Done():
			return
		}
	}
}

var errUnknownMessage = errors.New("unknown message type")

func (c *connection) handleClientMessage(ctx context.Context, data []byte) ServerMessage {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMessage{Type: MessageError, Error: "invalid message", Status: http.StatusBadRequest}
	}
	switch msg.Type {
	case MessageSubmit:
		color := game.Color(strings.ToLower(strings.TrimSpace(msg.Color)))
		res, err := c.session.Submit(ctx, msg.Round, color)
		if err != nil {
			return errorMessage(err)
		}
		result := buildResult(res)
		return ServerMessage{Type: MessageResult, Result: &result}
	case MessageRestart:
		if err := c.session.Restart(ctx); err != nil {
			return errorMessage(err)
		}
		state := buildState(c.session.ID, c.session.Snapshot())
		return ServerMessage{Type: MessageState, State: &state}
	default:
		log.Debug().Str("connection_id", c.id).Str("type", msg.Type).Msg("unknown client message - ignoring")
		return ServerMessage{Type: MessageError, Error: errUnknownMessage.Error(), Status: http.StatusBadRequest}
	}
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{Type: MessageError, Error: err.Error(), Status: statusFor(err)}
}
