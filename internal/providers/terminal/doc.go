// Package terminal provides PTY-backed shell session management.
//
// Sessions are identified by caller-supplied string ids. Each session owns
// a pseudoterminal pair with a shell process attached to the subordinate
// side; the registry retains the controller side for writes, resizes and a
// dedicated reader goroutine that drains output into a bounded buffer.
//
// The registry is safe for concurrent use from arbitrary goroutines. Only
// Read blocks, and only up to a fixed 100ms window while waiting for new
// output; an empty result means "no data available now", never an error.
//
// Example Usage:
//
//	reg := terminal.NewRegistry()
//	defer reg.Shutdown()
//
//	// Create a session running the user's shell in /tmp
//	err := reg.Create("s1", "/tmp", "")
//
//	// Send input
//	reg.Write("s1", []byte("echo hi\n"))
//
//	// Poll for output (returns within 100ms)
//	out, err := reg.Read("s1")
//
//	// Change terminal dimensions
//	reg.Resize("s1", 120, 40)
//
//	// Tear down (idempotent)
//	reg.Kill("s1")
package terminal
