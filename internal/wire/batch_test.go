package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeRecord writes a record frame of exactly n bytes into buf and
// returns n, mimicking what the engine does before calling
// AccountRecord.
func writeFakeRecord(t *testing.T, buf *Buffer, n int) int {
	t.Helper()
	require.True(t, buf.Reserve(n))
	payload := make([]byte, n)
	require.True(t, buf.Append(payload))
	return n
}

func TestBatchSizeFieldCorrectness(t *testing.T) {
	buf, err := NewBuffer(1024)
	require.NoError(t, err)
	s := NewBatchSerializer(buf)

	require.True(t, s.Begin(42))
	sizeOffset := 4 // cid (4 bytes) precedes the size field
	n1 := writeFakeRecord(t, buf, 10)
	s.AccountRecord(n1)
	n2 := writeFakeRecord(t, buf, 20)
	s.AccountRecord(n2)
	require.True(t, s.End())

	assert.Equal(t, uint32(n1+n2), getUint32LE(buf.data[sizeOffset:sizeOffset+4]))
	assert.False(t, s.IsOpen())
}

func TestBatchCurrentCIDTracksOpenState(t *testing.T) {
	buf, err := NewBuffer(1024)
	require.NoError(t, err)
	s := NewBatchSerializer(buf)

	_, ok := s.CurrentCID()
	assert.False(t, ok)

	s.Begin(5)
	cid, ok := s.CurrentCID()
	assert.True(t, ok)
	assert.EqualValues(t, 5, cid)

	s.End()
	_, ok = s.CurrentCID()
	assert.False(t, ok)
}

func TestBatchEndWithoutBeginIsNoop(t *testing.T) {
	buf, err := NewBuffer(1024)
	require.NoError(t, err)
	s := NewBatchSerializer(buf)
	assert.True(t, s.End())
	assert.Equal(t, 0, buf.ReadLen())
}

func TestBatchSwitchSequence(t *testing.T) {
	buf, err := NewBuffer(1024)
	require.NoError(t, err)
	s := NewBatchSerializer(buf)

	require.True(t, s.Begin(1))
	n := writeFakeRecord(t, buf, 8)
	s.AccountRecord(n)
	require.True(t, s.End())

	require.True(t, s.Begin(2))
	n = writeFakeRecord(t, buf, 16)
	s.AccountRecord(n)
	require.True(t, s.End())

	// batch 1 header starts at offset 0: cid(4) size(4) record(8) end(4) = 20 bytes
	assert.EqualValues(t, 1, int32(getUint32LE(buf.data[0:4])))
	assert.Equal(t, uint32(8), getUint32LE(buf.data[4:8]))
	// batch 2 header starts at offset 20
	assert.EqualValues(t, 2, int32(getUint32LE(buf.data[20:24])))
	assert.Equal(t, uint32(16), getUint32LE(buf.data[24:28]))
}
