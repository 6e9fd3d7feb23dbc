package types

// ExecuteRequest represents a service execution request
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params" binding:"required"`
	AppID  *string                `json:"app_id,omitempty"`
}

// CreateSessionRequest represents a terminal session creation request.
// ID is optional; one is generated when absent.
type CreateSessionRequest struct {
	ID    string `json:"id"`
	Cwd   string `json:"cwd" binding:"required"`
	Shell string `json:"shell"`
}

// WriteSessionRequest carries input for a terminal session
type WriteSessionRequest struct {
	Input string `json:"input" binding:"required"`
}

// ResizeSessionRequest carries new terminal dimensions
type ResizeSessionRequest struct {
	Cols uint16 `json:"cols" binding:"required"`
	Rows uint16 `json:"rows" binding:"required"`
}

// WSMessage represents a WebSocket message in either direction
type WSMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols uint16 `json:"cols,omitempty"`
	Rows uint16 `json:"rows,omitempty"`
}
