package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/MarkShawn2020/lovcode/backend/internal/infrastructure/logging"
	"github.com/MarkShawn2020/lovcode/backend/internal/infrastructure/monitoring"
)

const (
	// Initial geometry for new sessions. Fixed; callers resize afterwards.
	defaultCols = 80
	defaultRows = 24

	// readChunkSize bounds a single drain from the PTY.
	readChunkSize = 8 * 1024

	// readTimeout is the longest a Read caller waits for new output
	// before getting an empty result.
	readTimeout = 100 * time.Millisecond

	// outputBufferSize bounds per-session buffered output; oldest bytes
	// are dropped when a slow poller falls behind.
	outputBufferSize = 256 * 1024

	// fallbackShell is used when neither the caller nor $SHELL names one.
	fallbackShell = "/bin/bash"
)

// Registry manages terminal sessions keyed by caller-supplied ids.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	logger  *logging.Logger
	metrics *monitoring.Metrics
	shell   string
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logging.NewNop(),
		shell:    fallbackShell,
	}
}

// WithLogger attaches a logger to the registry
func (r *Registry) WithLogger(logger *logging.Logger) *Registry {
	r.logger = logger
	return r
}

// WithMetrics attaches a metrics collector to the registry
func (r *Registry) WithMetrics(metrics *monitoring.Metrics) *Registry {
	r.metrics = metrics
	return r
}

// WithFallbackShell overrides the shell used when neither the caller nor
// $SHELL names one.
func (r *Registry) WithFallbackShell(shell string) *Registry {
	if shell != "" {
		r.shell = shell
	}
	return r
}

// Create spawns a shell attached to a new PTY and registers it under id.
// The id must be non-empty and not already in use. An empty shell falls
// back to $SHELL, then to the registry's configured fallback.
func (r *Registry) Create(id, cwd, shell string) error {
	if id == "" {
		return fmt.Errorf("session id must not be empty")
	}

	shellCmd := shell
	if shellCmd == "" {
		shellCmd = os.Getenv("SHELL")
	}
	if shellCmd == "" {
		shellCmd = r.shell
	}

	// Holding the write lock across the spawn keeps the duplicate check
	// and the publish atomic; create is rare and bounded by native-call
	// latency.
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return fmt.Errorf("session %q: %w", id, ErrExists)
	}

	ptmx, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}

	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: defaultCols, Rows: defaultRows}); err != nil {
		ptmx.Close()
		tty.Close()
		return fmt.Errorf("failed to size pty: %w", err)
	}

	cmd := exec.Command(shellCmd)
	cmd.Dir = cwd
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		ptmx.Close()
		tty.Close()
		return fmt.Errorf("failed to spawn shell: %w", err)
	}

	// The child owns the subordinate side now.
	tty.Close()

	session := &Session{
		ID:         id,
		Shell:      shellCmd,
		WorkingDir: cwd,
		Cols:       defaultCols,
		Rows:       defaultRows,
		StartedAt:  time.Now(),
		cmd:        cmd,
		ptmx:       ptmx,
		output:     NewBuffer(outputBufferSize),
		notify:     make(chan struct{}, 1),
	}

	r.sessions[id] = session

	go r.readOutput(session)
	go r.waitForExit(session)

	if r.metrics != nil {
		r.metrics.IncSessionsCreated()
		r.metrics.SetSessionsActive(len(r.sessions))
	}
	r.logger.Info("terminal session created",
		zap.String("session_id", id),
		zap.String("shell", shellCmd),
		zap.String("cwd", cwd),
		zap.Int("pid", cmd.Process.Pid))

	return nil
}

// readOutput continuously drains the PTY into the session buffer and wakes
// blocked readers. Exits when the PTY is closed or the shell hangs up.
func (r *Registry) readOutput(s *Session) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.output.Write(buf[:n])
			if r.metrics != nil {
				r.metrics.AddTerminalBytesRead(n)
			}
			select {
			case s.notify <- struct{}{}:
			default:
			}
		}
		if err != nil {
			if err != io.EOF {
				r.logger.Debug("terminal read loop ended",
					zap.String("session_id", s.ID), zap.Error(err))
			}
			return
		}
	}
}

// waitForExit marks the session closed once the shell exits. The session
// stays registered so buffered output remains readable until Kill.
func (r *Registry) waitForExit(s *Session) {
	_ = s.cmd.Wait()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	_ = s.ptmx.Close()

	// Wake a blocked reader so it re-checks the buffer promptly.
	select {
	case s.notify <- struct{}{}:
	default:
	}

	r.logger.Debug("terminal session exited", zap.String("session_id", s.ID))
}

func (r *Registry) get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Write sends data verbatim to the session's input. The PTY handle is
// unbuffered, so bytes reach the shell immediately.
func (r *Registry) Write(id string, data []byte) error {
	s, ok := r.get(id)
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("session %q: %w", id, ErrClosed)
	}

	n, err := s.ptmx.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to session %q: %w", id, err)
	}
	if r.metrics != nil {
		r.metrics.AddTerminalBytesWritten(n)
	}
	return nil
}

// Read drains buffered output from the session. When the buffer is empty
// it waits up to 100ms for the reader goroutine to deliver more; a timeout
// yields an empty slice, not an error, since callers poll.
func (r *Registry) Read(id string) ([]byte, error) {
	s, ok := r.get(id)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	if data := s.output.ReadAll(); len(data) > 0 {
		return data, nil
	}

	select {
	case <-s.notify:
		return s.output.ReadAll(), nil
	case <-time.After(readTimeout):
		if r.metrics != nil {
			r.metrics.IncTerminalReadTimeouts()
		}
		return []byte{}, nil
	}
}

// Resize changes the session's terminal geometry immediately.
func (r *Registry) Resize(id string, cols, rows uint16) error {
	s, ok := r.get(id)
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session %q: %w", id, ErrClosed)
	}

	if err := pty.Setsize(s.ptmx, &pty.Winsize{Cols: cols, Rows: rows}); err != nil {
		return fmt.Errorf("failed to resize session %q: %w", id, err)
	}

	s.Cols = int(cols)
	s.Rows = int(rows)
	return nil
}

// Kill terminates a session and removes it from the registry. Idempotent:
// unknown ids succeed silently.
func (r *Registry) Kill(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	remaining := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()

	if !alreadyClosed && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}

	// Closing the controller side hangs up the shell and unblocks the
	// reader goroutine.
	_ = s.ptmx.Close()

	if r.metrics != nil {
		r.metrics.IncSessionsKilled()
		r.metrics.SetSessionsActive(remaining)
	}
	r.logger.Info("terminal session killed", zap.String("session_id", id))

	return nil
}

// List returns all registered session ids in no particular order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Exists reports whether id is registered. Creation and teardown publish
// atomically, so this cannot disagree with Get or List.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Get returns a metadata snapshot for the session
func (r *Registry) Get(id string) (*SessionInfo, bool) {
	s, ok := r.get(id)
	if !ok {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return &SessionInfo{
		ID:         s.ID,
		Shell:      s.Shell,
		WorkingDir: s.WorkingDir,
		Cols:       s.Cols,
		Rows:       s.Rows,
		StartedAt:  s.StartedAt,
		Active:     !s.closed,
	}, true
}

// Shutdown kills every session. Used at server teardown.
func (r *Registry) Shutdown() {
	for _, id := range r.List() {
		_ = r.Kill(id)
	}
}
