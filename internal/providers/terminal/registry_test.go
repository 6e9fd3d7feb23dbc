package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShell = "/bin/sh"

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	t.Cleanup(reg.Shutdown)
	return reg
}

// pollRead accumulates output until it contains want or the deadline
// passes. Read itself blocks at most 100ms per call.
func pollRead(t *testing.T, reg *Registry, id, want string, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var out []byte
	for time.Now().Before(deadline) {
		chunk, err := reg.Read(id)
		require.NoError(t, err)
		out = append(out, chunk...)
		if strings.Contains(string(out), want) {
			break
		}
	}
	return string(out)
}

func TestCreateWriteReadKill(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("s1", "/tmp", testShell))
	require.True(t, reg.Exists("s1"))

	require.NoError(t, reg.Write("s1", []byte("echo hi\n")))

	out := pollRead(t, reg, "s1", "hi", 2*time.Second)
	assert.Contains(t, out, "hi")

	require.NoError(t, reg.Kill("s1"))
	assert.False(t, reg.Exists("s1"))
}

func TestCommandOutput(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("s1", "/tmp", testShell))

	// The marker never appears verbatim in the echoed input, so seeing it
	// proves the shell executed the command.
	require.NoError(t, reg.Write("s1", []byte("echo ma''rker\n")))

	out := pollRead(t, reg, "s1", "marker", 2*time.Second)
	assert.Contains(t, out, "marker")
}

func TestCreateEmptyID(t *testing.T) {
	reg := newTestRegistry(t)
	require.Error(t, reg.Create("", "/tmp", testShell))
}

func TestCreateDuplicateRejected(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("dup", "/tmp", testShell))

	err := reg.Create("dup", "/tmp", testShell)
	require.ErrorIs(t, err, ErrExists)

	// The original session is untouched
	require.True(t, reg.Exists("dup"))
	require.NoError(t, reg.Write("dup", []byte("echo still-alive\n")))
}

func TestCreateSpawnFailure(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.Create("bad", "/tmp", "/nonexistent/shell")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to spawn shell")
	assert.False(t, reg.Exists("bad"))
}

func TestUnknownSession(t *testing.T) {
	reg := newTestRegistry(t)

	require.ErrorIs(t, reg.Write("nope", []byte("x")), ErrNotFound)

	_, err := reg.Read("nope")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, reg.Resize("nope", 80, 24), ErrNotFound)

	// Kill, Exists and List never fail for unknown ids
	require.NoError(t, reg.Kill("nope"))
	assert.False(t, reg.Exists("nope"))
	assert.Empty(t, reg.List())

	_, ok := reg.Get("nope")
	assert.False(t, ok)
}

func TestKillIdempotent(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("k1", "/tmp", testShell))
	require.NoError(t, reg.Kill("k1"))
	require.NoError(t, reg.Kill("k1"))
	assert.False(t, reg.Exists("k1"))
}

func TestResizeGeometry(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("r1", "/tmp", testShell))

	info, ok := reg.Get("r1")
	require.True(t, ok)
	assert.Equal(t, 80, info.Cols)
	assert.Equal(t, 24, info.Rows)

	require.NoError(t, reg.Resize("r1", 120, 40))

	info, ok = reg.Get("r1")
	require.True(t, ok)
	assert.Equal(t, 120, info.Cols)
	assert.Equal(t, 40, info.Rows)
}

func TestReadLatencyBounded(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("q1", "/tmp", testShell))

	// Drain startup output until the session goes quiet
	require.Eventually(t, func() bool {
		out, err := reg.Read("q1")
		require.NoError(t, err)
		return len(out) == 0
	}, 2*time.Second, 10*time.Millisecond)

	start := time.Now()
	out, err := reg.Read("q1")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestSessionIsolation(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("a", "/tmp", testShell))
	require.NoError(t, reg.Create("b", "/tmp", testShell))

	require.NoError(t, reg.Kill("a"))

	// B is fully functional after A is gone
	assert.True(t, reg.Exists("b"))
	require.NoError(t, reg.Write("b", []byte("echo b-al''ive\n")))
	out := pollRead(t, reg, "b", "b-alive", 2*time.Second)
	assert.Contains(t, out, "b-alive")
	require.NoError(t, reg.Resize("b", 100, 30))

	// A's id is now unknown
	require.ErrorIs(t, reg.Write("a", []byte("x")), ErrNotFound)
}

func TestListSessions(t *testing.T) {
	reg := newTestRegistry(t)

	assert.Empty(t, reg.List())

	require.NoError(t, reg.Create("l1", "/tmp", testShell))
	require.NoError(t, reg.Create("l2", "/tmp", testShell))

	ids := reg.List()
	assert.Len(t, ids, 2)
	assert.ElementsMatch(t, []string{"l1", "l2"}, ids)
}

func TestWriteAfterExit(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("x1", "/tmp", testShell))
	require.NoError(t, reg.Write("x1", []byte("exit\n")))

	// The session stays registered but turns inactive once the shell exits
	require.Eventually(t, func() bool {
		info, ok := reg.Get("x1")
		return ok && !info.Active
	}, 3*time.Second, 20*time.Millisecond)

	require.ErrorIs(t, reg.Write("x1", []byte("x")), ErrClosed)
	require.ErrorIs(t, reg.Resize("x1", 90, 30), ErrClosed)

	// Still killable
	require.NoError(t, reg.Kill("x1"))
	assert.False(t, reg.Exists("x1"))
}

func TestSessionMetadata(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("m1", "/tmp", testShell))

	info, ok := reg.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "m1", info.ID)
	assert.Equal(t, "/tmp", info.WorkingDir)
	assert.Equal(t, testShell, info.Shell)
	assert.True(t, info.Active)
	assert.WithinDuration(t, time.Now(), info.StartedAt, 5*time.Second)
}

func TestShutdown(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Create("s1", "/tmp", testShell))
	require.NoError(t, reg.Create("s2", "/tmp", testShell))

	reg.Shutdown()

	assert.Empty(t, reg.List())
	assert.False(t, reg.Exists("s1"))
	assert.False(t, reg.Exists("s2"))
}

func TestConcurrentAccess(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Create("c1", "/tmp", testShell))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			reg.Read("c1")
		}
	}()

	for i := 0; i < 20; i++ {
		require.NoError(t, reg.Write("c1", []byte("echo tick\n")))
		reg.List()
		reg.Exists("c1")
	}
	<-done
}
