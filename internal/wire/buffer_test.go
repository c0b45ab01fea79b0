package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferRejectsBelowMinimum(t *testing.T) {
	_, err := NewBuffer(MinBufferCapacity - 1)
	require.Error(t, err)
}

func TestBufferAppendAndReadSpan(t *testing.T) {
	b, err := NewBuffer(MinBufferCapacity)
	require.NoError(t, err)

	ok := b.Append([]byte("hello"))
	require.True(t, ok)
	assert.Equal(t, 5, b.ReadLen())
	assert.Equal(t, []byte("hello"), b.ReadSpan())

	b.AdvanceRead(2)
	assert.Equal(t, []byte("llo"), b.ReadSpan())
}

func TestBufferCompactIsIdempotent(t *testing.T) {
	b, err := NewBuffer(MinBufferCapacity)
	require.NoError(t, err)
	b.Append([]byte("abcdef"))
	b.AdvanceRead(3)

	b.Compact()
	assert.Equal(t, []byte("def"), b.ReadSpan())
	before := b.ReadSpan()

	b.Compact() // idempotent, already at offset 0
	assert.Equal(t, before, b.ReadSpan())
}

func TestBufferReserveCompactsFirst(t *testing.T) {
	b, err := NewBuffer(MinBufferCapacity)
	require.NoError(t, err)
	// fill to near capacity, then consume the front so only a compact
	// can make room for a large trailing reservation.
	filler := make([]byte, MinBufferCapacity-10)
	require.True(t, b.Append(filler))
	b.AdvanceRead(len(filler))

	ok := b.Reserve(MinBufferCapacity - 5)
	assert.True(t, ok)
	assert.Equal(t, 0, b.ReadLen())
}

func TestBufferReserveFailsWhenTooLarge(t *testing.T) {
	b, err := NewBuffer(MinBufferCapacity)
	require.NoError(t, err)
	b.Append([]byte("abc"))

	ok := b.Reserve(MinBufferCapacity) // more than capacity - readLen allows
	assert.False(t, ok)
}

func TestBufferPokeUint32LE(t *testing.T) {
	b, err := NewBuffer(MinBufferCapacity)
	require.NoError(t, err)
	PutInt32LE(b, 0) // first field, will be poked
	PutInt32LE(b, 7) // second field, left as written
	b.PokeUint32LE(0, 0xdeadbeef)

	assert.Equal(t, int32(-559038737), int32(getUint32LE(b.ReadSpan()[:4])))
}

func TestBufferResetClearsCursors(t *testing.T) {
	b, err := NewBuffer(MinBufferCapacity)
	require.NoError(t, err)
	b.Append([]byte("abc"))
	b.Reset()
	assert.Equal(t, 0, b.ReadLen())
	assert.Equal(t, b.Capacity(), b.FreeLen())
}
