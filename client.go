// Package tstorage is a client library for a proprietary time-series
// database's binary TCP wire protocol (GET, GETACQ, PUT, PUTA). See
// New for how to construct a Client.
package tstorage

import (
	"time"

	"github.com/atendeindustries/tstorage-go/internal/engine"
	"github.com/atendeindustries/tstorage-go/internal/xlog"
	"github.com/atendeindustries/tstorage-go/transport"
)

// Client is the caller-facing handle for one server connection. P is
// the caller's payload type; Client never interprets it except
// through the Adapter supplied to New. Not safe for concurrent use:
// callers serialize their own access, matching the single-threaded
// engine beneath it.
type Client[P any] struct {
	eng     *engine.Engine
	adapter Adapter[P]
}

// New constructs a disconnected Client. cfg.MemoryLimit of zero selects
// DefaultMemoryLimit. The transport defaults to a real TCP connection;
// tests and other callers needing a different one should use NewWithTransport.
func New[P any](cfg Config, adapter Adapter[P]) *Client[P] {
	return NewWithTransport[P](cfg, adapter, transport.NewTCP())
}

// NewWithTransport is New, but with an explicit Transport — the hook
// the module's own tests use to substitute transport.Fake.
func NewWithTransport[P any](cfg Config, adapter Adapter[P], tr transport.Transport) *Client[P] {
	limit := cfg.MemoryLimit
	if limit == 0 {
		limit = DefaultMemoryLimit
	}
	eng := engine.New(tr, cfg.Host, cfg.Port, limit, xlog.Default)
	if cfg.Timeout > 0 {
		eng.SetTimeout(cfg.Timeout)
	}
	return &Client[P]{eng: eng, adapter: adapter}
}

// Connect allocates the buffer at the configured memory limit and
// opens the transport.
func (c *Client[P]) Connect() error {
	return c.eng.Connect()
}

// Close performs a graceful transport shutdown.
func (c *Client[P]) Close() error {
	return c.eng.Close()
}

// SetTimeout applies to every subsequent Send and Recv, in both
// directions.
func (c *Client[P]) SetTimeout(d time.Duration) {
	c.eng.SetTimeout(d)
}

// SetMemoryLimit changes the memory ceiling; this only takes effect at
// the next Connect.
func (c *Client[P]) SetMemoryLimit(bytes int) error {
	return c.eng.SetMemoryLimit(bytes)
}

// Put uploads records under command PUT, returning the server-assigned
// (acqMin, acqMax) range covering them.
func (c *Client[P]) Put(records []Record[P]) (acqMin, acqMax int64, err error) {
	return c.eng.Put(&recordSource[P]{records: records, adapter: c.adapter})
}

// Puta uploads records under command PUTA; every key must carry an
// explicit, non-sentinel Acq.
func (c *Client[P]) Puta(records []Record[P]) (acqMin, acqMax int64, err error) {
	return c.eng.Puta(&recordSource[P]{records: records, adapter: c.adapter})
}

// Get retrieves every record with a key in [keyMin, keyMax), returning
// it alongside the closing acquisition stamp. On MemoryLimitExceeded
// the returned RecordsSet still holds however many records fit before
// the limit was hit.
func (c *Client[P]) Get(keyMin, keyMax Key) (*RecordsSet[P], int64, error) {
	set := &RecordsSet[P]{}
	sink := &recordSink[P]{set: set, adapter: c.adapter}
	acq, err := c.eng.Get(keyMin, keyMax, sink)
	return set, acq, err
}

// GetAcq reports the greatest Acq among keys in [keyMin, keyMax).
func (c *Client[P]) GetAcq(keyMin, keyMax Key) (int64, error) {
	return c.eng.GetAcq(keyMin, keyMax)
}

// GetStream is Get's chunked counterpart: callback is invoked with each
// accumulated chunk as it becomes available, at least once even for an
// empty result, in server-emitted order. Returning a non-nil error
// from callback aborts the stream and forces a disconnect.
func (c *Client[P]) GetStream(keyMin, keyMax Key, callback func(*RecordsSet[P]) error) error {
	sink := newStreamSink[P](c.adapter, callback)
	return c.eng.GetStream(keyMin, keyMax, sink)
}
