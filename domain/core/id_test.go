package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		assert.False(t, id.IsEmpty())
		assert.False(t, ids[id], "duplicate ID %s", id)
		ids[id] = true
	}
	assert.Len(t, ids, numIDs)
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "req-123", ID("req-123").String())
	assert.True(t, ID("").IsEmpty())
}

func TestHash(t *testing.T) {
	h := NewHash([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h.String())
	assert.Equal(t, "ba7816bf8f01", h.Short())
	assert.Equal(t, NewHash([]byte("abc")), h)
	assert.Equal(t, "ab", Hash("ab").Short())
}
