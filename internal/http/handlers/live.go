package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/cricket-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/broadcast"
	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// LiveHandler streams match snapshots over a websocket.
type LiveHandler struct {
	svc      *matches.Service
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewLiveHandler constructs a LiveHandler. An empty origin list accepts any origin.
func NewLiveHandler(svc *matches.Service, logger *slog.Logger, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Stream sends the current state and then every newer snapshot until the
// client disconnects.
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	id := matchID(r)

	sub, err := h.svc.Subscribe(id)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}
	defer sub.Cancel()

	current, err := h.svc.LiveMatchState(id)
	if err != nil {
		writeDomainError(w, r, err, logger)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(logger, "websocket upgrade failed", logging.FieldMatchID, id, "error", err)
		return
	}
	defer conn.Close()

	logger = logger.With(slog.String(logging.FieldClientID, sub.ID))
	closed := readPump(conn)
	writePump(conn, sub, current, closed, logger)
}

// readPump discards client frames and keeps the pong deadline fresh. The
// returned channel closes when the peer goes away.
func readPump(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return closed
}

func writePump(conn *websocket.Conn, sub *broadcast.Subscription, current domainmatches.MatchState, closed <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	lastVersion := current.Version
	if err := writeState(conn, current); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			logging.Info(logger, "live client disconnected")
			return
		case state, ok := <-sub.C:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if state.Version <= lastVersion {
				continue
			}
			if err := writeState(conn, state); err != nil {
				logging.Warn(logger, "live write failed", "error", err)
				return
			}
			lastVersion = state.Version
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeState(conn *websocket.Conn, state domainmatches.MatchState) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(state)
}
