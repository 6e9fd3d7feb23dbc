package ws

import (
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MarkShawn2020/lovcode/backend/internal/infrastructure/logging"
	"github.com/MarkShawn2020/lovcode/backend/internal/infrastructure/monitoring"
	"github.com/MarkShawn2020/lovcode/backend/internal/providers/terminal"
	"github.com/MarkShawn2020/lovcode/backend/internal/shared/types"
)

// pollInterval paces output polling; each poll blocks at most the
// registry's 100ms read window, so the effective cadence stays responsive.
const pollInterval = 50 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Handler manages WebSocket connections for terminal sessions
type Handler struct {
	sessions *terminal.Registry
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *terminal.Registry, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

// stream serializes writes to a connection; the poll goroutine and the
// inbound loop both send.
type stream struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *stream) send(data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(data)
}

func (s *stream) sendError(msg string) error {
	return s.send(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}

// HandleConnection upgrades the request and attaches it to a session named
// by the session_id query parameter.
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" || !h.sessions.Exists(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	h.logger.Info("websocket attached", zap.String("session_id", sessionID))

	st := &stream{conn: conn}
	done := make(chan struct{})
	go h.pollOutput(st, sessionID, done)

	// Inbound loop: input, resize, ping. Closing the connection only
	// detaches the stream; the session keeps running.
	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "input":
			if err := h.sessions.Write(sessionID, []byte(msg.Data)); err != nil {
				st.sendError(err.Error())
			}
		case "resize":
			if err := h.sessions.Resize(sessionID, msg.Cols, msg.Rows); err != nil {
				st.sendError(err.Error())
			}
		case "ping":
			st.send(map[string]interface{}{"type": "pong"})
		default:
			st.sendError("unknown message type")
		}
	}

	close(done)
	h.logger.Info("websocket detached", zap.String("session_id", sessionID))
}

// pollOutput forwards session output to the client until the connection or
// the session goes away.
func (h *Handler) pollOutput(st *stream, sessionID string, done <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		output, err := h.sessions.Read(sessionID)
		if err != nil {
			// Session killed from elsewhere
			st.sendError(err.Error())
			return
		}
		if len(output) == 0 {
			continue
		}

		if err := st.send(map[string]interface{}{
			"type": "output",
			"data": base64.StdEncoding.EncodeToString(output),
		}); err != nil {
			return
		}
	}
}
