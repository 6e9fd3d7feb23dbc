package terminal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/MarkShawn2020/lovcode/backend/internal/shared/id"
	"github.com/MarkShawn2020/lovcode/backend/internal/shared/types"
)

// Provider exposes the session registry through the service tool surface
type Provider struct {
	registry *Registry
}

// NewProvider wraps a registry in a provider
func NewProvider(registry *Registry) *Provider {
	return &Provider{registry: registry}
}

// Registry returns the underlying session registry
func (p *Provider) Registry() *Registry {
	return p.registry
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "terminal",
		Name:        "Terminal Service",
		Description: "PTY-backed shell sessions: create, write, read, resize, kill",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"pty",
			"shell",
			"interactive",
			"sessions",
			"resize",
		},
		Tools: p.getTools(),
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "terminal.create_session":
		return p.createSession(params)
	case "terminal.write":
		return p.write(params)
	case "terminal.read":
		return p.read(params)
	case "terminal.resize":
		return p.resize(params)
	case "terminal.kill":
		return p.kill(params)
	case "terminal.list_sessions":
		return p.listSessions()
	case "terminal.exists":
		return p.exists(params)
	case "terminal.get_session":
		return p.getSession(params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) getTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "terminal.create_session",
			Name:        "Create Terminal Session",
			Description: "Create a new interactive shell session with PTY",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Caller-supplied session id. Generated when omitted",
					Required:    false,
				},
				{
					Name:        "cwd",
					Type:        "string",
					Description: "Working directory for the shell",
					Required:    true,
				},
				{
					Name:        "shell",
					Type:        "string",
					Description: "Shell executable (e.g. /bin/zsh). Defaults to $SHELL",
					Required:    false,
				},
			},
			Returns: "session_id",
		},
		{
			ID:          "terminal.write",
			Name:        "Write to Terminal",
			Description: "Send input to a terminal session",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Terminal session ID",
					Required:    true,
				},
				{
					Name:        "input",
					Type:        "string",
					Description: "Input to send to terminal",
					Required:    true,
				},
			},
			Returns: "success",
		},
		{
			ID:          "terminal.read",
			Name:        "Read from Terminal",
			Description: "Read buffered output from a terminal session (non-blocking, 100ms max)",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Terminal session ID",
					Required:    true,
				},
			},
			Returns: "output_data",
		},
		{
			ID:          "terminal.resize",
			Name:        "Resize Terminal",
			Description: "Change terminal dimensions",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Terminal session ID",
					Required:    true,
				},
				{
					Name:        "cols",
					Type:        "number",
					Description: "New width in columns",
					Required:    true,
				},
				{
					Name:        "rows",
					Type:        "number",
					Description: "New height in rows",
					Required:    true,
				},
			},
			Returns: "success",
		},
		{
			ID:          "terminal.kill",
			Name:        "Kill Terminal Session",
			Description: "Terminate a terminal session (idempotent)",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Terminal session ID",
					Required:    true,
				},
			},
			Returns: "success",
		},
		{
			ID:          "terminal.list_sessions",
			Name:        "List Terminal Sessions",
			Description: "List all registered session ids",
			Parameters:  []types.Parameter{},
			Returns:     "sessions_list",
		},
		{
			ID:          "terminal.exists",
			Name:        "Session Exists",
			Description: "Check whether a session id is registered",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Terminal session ID",
					Required:    true,
				},
			},
			Returns: "exists",
		},
		{
			ID:          "terminal.get_session",
			Name:        "Get Session Info",
			Description: "Get metadata for a terminal session",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Terminal session ID",
					Required:    true,
				},
			},
			Returns: "session_info",
		},
	}
}

func (p *Provider) createSession(params map[string]interface{}) (*types.Result, error) {
	sessionID, _ := params["session_id"].(string)
	if sessionID == "" {
		sessionID = string(id.NewTerminalID())
	}

	cwd, _ := params["cwd"].(string)
	shell, _ := params["shell"].(string)

	if err := p.registry.Create(sessionID, cwd, shell); err != nil {
		return nil, err
	}

	info, _ := p.registry.Get(sessionID)

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"shell":       info.Shell,
			"working_dir": info.WorkingDir,
			"cols":        info.Cols,
			"rows":        info.Rows,
			"started_at":  info.StartedAt,
		},
	}, nil
}

func (p *Provider) write(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	input, ok := params["input"].(string)
	if !ok {
		return nil, fmt.Errorf("input is required")
	}

	if err := p.registry.Write(sessionID, []byte(input)); err != nil {
		return nil, err
	}

	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"success": true},
	}, nil
}

func (p *Provider) read(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	output, err := p.registry.Read(sessionID)
	if err != nil {
		return nil, err
	}

	// Base64 alongside the raw string keeps binary output transport-safe
	encoded := base64.StdEncoding.EncodeToString(output)

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"output":        string(output),
			"output_base64": encoded,
			"length":        len(output),
		},
	}, nil
}

func (p *Provider) resize(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	cols, ok := params["cols"].(float64)
	if !ok {
		return nil, fmt.Errorf("cols is required")
	}

	rows, ok := params["rows"].(float64)
	if !ok {
		return nil, fmt.Errorf("rows is required")
	}

	if err := p.registry.Resize(sessionID, uint16(cols), uint16(rows)); err != nil {
		return nil, err
	}

	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"success": true},
	}, nil
}

func (p *Provider) kill(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	if err := p.registry.Kill(sessionID); err != nil {
		return nil, err
	}

	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"success": true},
	}, nil
}

func (p *Provider) listSessions() (*types.Result, error) {
	sessions := p.registry.List()

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"sessions": sessions,
			"count":    len(sessions),
		},
	}, nil
}

func (p *Provider) exists(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"exists": p.registry.Exists(sessionID)},
	}, nil
}

func (p *Provider) getSession(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	info, ok := p.registry.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"id":          info.ID,
			"shell":       info.Shell,
			"working_dir": info.WorkingDir,
			"cols":        info.Cols,
			"rows":        info.Rows,
			"started_at":  info.StartedAt,
			"active":      info.Active,
		},
	}, nil
}

// IsNotFound reports whether err is a session lookup failure
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
