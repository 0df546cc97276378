package wsadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/usecase"
)

// Message is what the server writes to the socket. The first message after
// connecting is a snapshot; every command read afterwards gets a result or
// an error.
type Message struct {
	Type     string           `json:"type"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Result   *usecase.Result  `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

const (
	TypeSnapshot = "snapshot"
	TypeResult   = "result"
	TypeError    = "error"
)

// Handler streams commands for one session over a WebSocket. Commands from
// one connection are applied strictly in order.
type Handler struct {
	UC       *usecase.Service
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(uc *usecase.Service, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		UC:       uc,
		Logger:   l,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *Handler) Register(r *mux.Router) {
	r.Handle("/api/sessions/{id}/ws", h).Methods(http.MethodGet)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	snap, err := h.UC.Get(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ports.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("ws upgrade failed", "id", id, "err", err)
		return
	}
	defer conn.Close()
	h.Logger.Debug("ws connected", "id", id)

	if err := conn.WriteJSON(Message{Type: TypeSnapshot, Snapshot: &snap}); err != nil {
		return
	}
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Logger.Warn("ws read failed", "id", id, "err", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := conn.WriteJSON(h.apply(r, id, data)); err != nil {
			return
		}
	}
}

func (h *Handler) apply(r *http.Request, id string, data []byte) Message {
	var cmd domain.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Message{Type: TypeError, Error: "invalid JSON: " + err.Error()}
	}
	res, err := h.UC.Apply(r.Context(), id, cmd)
	if err != nil {
		return Message{Type: TypeError, Error: err.Error()}
	}
	return Message{Type: TypeResult, Result: &res}
}
