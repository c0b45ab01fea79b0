package tstorage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atendeindustries/tstorage-go/transport"
)

// bytesAdapter is the simplest possible Adapter[[]byte]: payloads pass
// through unchanged.
type bytesAdapter struct{}

func (bytesAdapter) Serialize(v []byte, dst []byte) int {
	if len(dst) >= len(v) {
		copy(dst, v)
	}
	return len(v)
}

func (bytesAdapter) Deserialize(span []byte) ([]byte, bool) {
	out := make([]byte, len(span))
	copy(out, span)
	return out, true
}

// rejectingAdapter fails to deserialize any payload that does not
// start with the magic byte it expects, simulating a reader built for
// a different payload shape than what was written.
type rejectingAdapter struct{ want byte }

func (rejectingAdapter) Serialize(v []byte, dst []byte) int {
	if len(dst) >= len(v) {
		copy(dst, v)
	}
	return len(v)
}

func (a rejectingAdapter) Deserialize(span []byte) ([]byte, bool) {
	if len(span) == 0 || span[0] != a.want {
		return nil, false
	}
	return span, true
}

func newTestClient(t *testing.T, srv *fakeServer) *Client[[]byte] {
	t.Helper()
	tr := transport.NewFake(srv.handle)
	c := NewWithTransport[[]byte](Config{Host: "fake", Port: 0}, bytesAdapter{}, tr)
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	return c
}

func fullRangeKeys() (Key, Key) {
	kmin := Key{CID: 0, MID: math.MinInt64, MOID: math.MinInt32, Cap: math.MinInt64, Acq: math.MinInt64}
	kmax := Key{CID: math.MaxInt32, MID: math.MaxInt64, MOID: math.MaxInt32, Cap: math.MaxInt64, Acq: math.MaxInt64}
	return kmin, kmax
}

func TestScenarioRoundTripPutGet(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)

	acqMin, acqMax, err := c.Put([]Record[[]byte]{
		{Key: Key{CID: 1, MID: 10, MOID: 100, Cap: 500}, Payload: []byte{0x11, 0x22}},
		{Key: Key{CID: 1, MID: 11, MOID: 101, Cap: 500}, Payload: []byte{0x33}},
	})
	require.NoError(t, err)
	assert.True(t, acqMin <= acqMax)

	kmin, kmax := fullRangeKeys()
	set, acq, err := c.Get(kmin, kmax)
	require.NoError(t, err)
	assert.Greater(t, acq, int64(0))
	require.Equal(t, 2, set.Len())
	for i := 0; i < set.Len(); i++ {
		r := set.At(i)
		assert.Equal(t, int32(1), r.Key.CID)
		assert.Greater(t, r.Key.Acq, int64(0))
	}
}

func TestScenarioGetAcqAfterEmptyPut(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)

	_, _, err := c.Put(nil)
	require.NoError(t, err)

	kmin, kmax := fullRangeKeys()
	acq, err := c.GetAcq(kmin, kmax)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acq, int64(0))
}

func TestScenarioInvalidKeyMidPuta(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)

	_, _, err := c.Puta([]Record[[]byte]{
		{Key: Key{CID: 1, MID: 2, MOID: 3, Cap: 4, Acq: 5}, Payload: []byte{0xAA}},
		{Key: Key{CID: -1, MID: 0, MOID: 0, Cap: 0, Acq: 0}, Payload: []byte{0xBB}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKey)

	require.NoError(t, c.Connect()) // reconnect after the forced disconnect

	kmin, kmax := fullRangeKeys()
	set, _, err := c.Get(kmin, kmax)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, int64(2), set.At(0).Key.MID)
}

func TestScenarioMemoryLimitEnforcementOnGet(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)

	records := make([]Record[[]byte], 100)
	for i := range records {
		records[i] = Record[[]byte]{
			Key:     Key{CID: 1, MID: int64(i), MOID: 0, Cap: 0},
			Payload: make([]byte, 12), // 32B key + 12B payload ~= 44B/record
		}
	}
	_, _, err := c.Put(records)
	require.NoError(t, err)

	require.NoError(t, c.SetMemoryLimit(512))
	require.NoError(t, c.Close())
	require.NoError(t, c.Connect())

	kmin, kmax := fullRangeKeys()
	set, _, err := c.Get(kmin, kmax)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Greater(t, set.Len(), 0)
	assert.Less(t, set.Len(), 100)
}

func TestScenarioStreamChunking(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)

	const n = 10_000
	records := make([]Record[[]byte], n)
	for i := range records {
		records[i] = Record[[]byte]{
			Key:     Key{CID: 1, MID: int64(i), MOID: 0, Cap: 0},
			Payload: []byte{byte(i)},
		}
	}
	_, _, err := c.Put(records)
	require.NoError(t, err)

	require.NoError(t, c.SetMemoryLimit(512))
	require.NoError(t, c.Close())
	require.NoError(t, c.Connect())

	kmin, kmax := fullRangeKeys()
	chunks := 0
	delivered := 0
	err = c.GetStream(kmin, kmax, func(chunk *RecordsSet[[]byte]) error {
		chunks++
		delivered += chunk.Len()
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, chunks, 2)
	assert.Equal(t, n, delivered)
}

func TestScenarioDeserializerRejection(t *testing.T) {
	srv := newFakeServer()
	writer := newTestClient(t, srv)

	_, _, err := writer.Put([]Record[[]byte]{
		{Key: Key{CID: 1, MID: 1, MOID: 0, Cap: 0}, Payload: []byte{0x01, 0xFF}},
		{Key: Key{CID: 1, MID: 2, MOID: 0, Cap: 0}, Payload: []byte{0x01, 0xEE}},
	})
	require.NoError(t, err)

	tr := transport.NewFake(srv.handle)
	reader := NewWithTransport[[]byte](Config{Host: "fake"}, rejectingAdapter{want: 0x02}, tr)
	require.NoError(t, reader.Connect())

	kmin, kmax := fullRangeKeys()
	_, _, err = reader.Get(kmin, kmax)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeserializationError)
}
