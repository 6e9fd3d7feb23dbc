package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarkShawn2020/lovcode/backend/internal/providers/terminal"
	"github.com/MarkShawn2020/lovcode/backend/internal/service"
	"github.com/MarkShawn2020/lovcode/backend/internal/shared/id"
	"github.com/MarkShawn2020/lovcode/backend/internal/shared/types"
)

// Handlers bundles the HTTP endpoint implementations
type Handlers struct {
	sessions *terminal.Registry
	services *service.Registry
}

// NewHandlers creates the handler set
func NewHandlers(sessions *terminal.Registry, services *service.Registry) *Handlers {
	return &Handlers{
		sessions: sessions,
		services: services,
	}
}

// Root returns the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "lovcode-backend",
		"status":  "running",
	})
}

// Health returns liveness information
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"sessions":  len(h.sessions.List()),
		"timestamp": time.Now().Unix(),
	})
}

// ListServices returns all registered service definitions
func (h *Handlers) ListServices(c *gin.Context) {
	services := h.services.List()
	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"count":    len(services),
	})
}

// ExecuteService dispatches a tool call through the service registry
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appCtx := &types.Context{AppID: req.AppID}
	result, err := h.services.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateSession creates a terminal session. The id is caller-supplied and
// generated only when omitted.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req types.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := req.ID
	if sessionID == "" {
		sessionID = id.NewTerminalID().String()
	}

	if err := h.sessions.Create(sessionID, req.Cwd, req.Shell); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	info, _ := h.sessions.Get(sessionID)
	c.JSON(http.StatusCreated, info)
}

// ListSessions returns all registered session ids
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.sessions.List()
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession returns session metadata
func (h *Handlers) GetSession(c *gin.Context) {
	info, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// KillSession tears down a session. Idempotent: unknown ids also succeed.
func (h *Handlers) KillSession(c *gin.Context) {
	if err := h.sessions.Kill(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// WriteSession sends input to a session
func (h *Handlers) WriteSession(c *gin.Context) {
	var req types.WriteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Write(c.Param("id"), []byte(req.Input)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReadSession drains buffered output from a session. An empty payload
// means no data was available within the read window.
func (h *Handlers) ReadSession(c *gin.Context) {
	output, err := h.sessions.Read(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"output":        string(output),
		"output_base64": base64.StdEncoding.EncodeToString(output),
		"length":        len(output),
	})
}

// ResizeSession changes terminal dimensions
func (h *Handlers) ResizeSession(c *gin.Context) {
	var req types.ResizeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Resize(c.Param("id"), req.Cols, req.Rows); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// statusFor maps registry errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case terminal.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, terminal.ErrExists):
		return http.StatusConflict
	case errors.Is(err, terminal.ErrClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
