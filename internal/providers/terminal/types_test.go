package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferWriteRead(t *testing.T) {
	b := NewBuffer(64)

	n, err := b.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, b.Len())

	assert.Equal(t, []byte("hello"), b.ReadAll())

	// Drained after read
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.ReadAll())
}

func TestBufferDropsOldestWhenFull(t *testing.T) {
	b := NewBuffer(8)

	b.Write([]byte("0123456789"))

	// The ring keeps the most recent size-1 bytes
	assert.Equal(t, []byte("3456789"), b.ReadAll())
}

func TestBufferWraparound(t *testing.T) {
	b := NewBuffer(8)

	b.Write([]byte("abcde"))
	assert.Equal(t, []byte("abcde"), b.ReadAll())

	// Second write wraps past the end of the backing array
	b.Write([]byte("fghij"))
	assert.Equal(t, []byte("fghij"), b.ReadAll())
}

func TestBufferInterleaved(t *testing.T) {
	b := NewBuffer(32)

	b.Write([]byte("one"))
	b.Write([]byte("two"))
	assert.Equal(t, []byte("onetwo"), b.ReadAll())

	b.Write([]byte("three"))
	assert.Equal(t, []byte("three"), b.ReadAll())
}
