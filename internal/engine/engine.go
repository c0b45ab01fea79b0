// Package engine implements the stateful protocol engine described by
// the wire format in package wire: request framing, response decoding,
// the Connected/Disconnected state machine, and the fault/propagation
// policy that distinguishes client-side faults from benign
// server-reported results.
//
// The engine is deliberately payload-type-agnostic: it only ever
// exchanges Key values and raw byte spans with its caller (the façade
// in the root package), which is what keeps it free of Go generics and
// able to be driven by a fixed caller-supplied serialize/deserialize
// pair without weaving that type parameter into the state machine
// itself. Its control flow follows suilz-ffcgi-client's top-level
// client.go (package ffcgiclient) — Do/writeRequest/readResponse —
// generalized into an explicit state machine with
// client-fault-vs-server-error propagation.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/atendeindustries/tstorage-go/internal/wire"
	"github.com/atendeindustries/tstorage-go/internal/xlog"
	"github.com/atendeindustries/tstorage-go/transport"
	"github.com/atendeindustries/tstorage-go/tserr"
)

// State is one of the engine's two top-level states.
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

// Engine is the protocol state machine. Not safe for concurrent use;
// the caller (the façade) serializes all access.
type Engine struct {
	tr   transport.Transport
	host string
	port int

	buf   *wire.Buffer
	batch *wire.BatchSerializer

	memoryLimit        int
	pendingMemoryLimit int
	timeout            time.Duration

	state State
	log   *xlog.Logger
}

// New constructs a disconnected Engine bound to host:port. memoryLimit
// must be >= wire.MinBufferCapacity; a non-positive value selects
// wire.DefaultMemoryLimit. A nil logger selects xlog.Default.
func New(tr transport.Transport, host string, port int, memoryLimit int, logger *xlog.Logger) *Engine {
	if memoryLimit <= 0 {
		memoryLimit = wire.DefaultMemoryLimit
	}
	if logger == nil {
		logger = xlog.Default
	}
	return &Engine{
		tr:                 tr,
		host:               host,
		port:               port,
		memoryLimit:        memoryLimit,
		pendingMemoryLimit: memoryLimit,
		state:              StateDisconnected,
		log:                logger,
	}
}

// State reports the engine's current top-level state.
func (e *Engine) State() State {
	return e.state
}

// Connect allocates the buffer at the (possibly just-changed) memory
// limit and opens the transport. Calling Connect while already
// Connected is a no-op.
func (e *Engine) Connect() error {
	const op = "Connect"
	if e.state == StateConnected {
		return nil
	}

	e.memoryLimit = e.pendingMemoryLimit
	buf, err := wire.NewBuffer(e.memoryLimit)
	if err != nil {
		return tserr.New(op, tserr.CodeOutOfMemory, err)
	}

	if err := e.tr.Connect(e.host, e.port); err != nil {
		return mapTransportErr(op, err)
	}
	if e.timeout > 0 {
		e.tr.SetTimeout(e.timeout)
	}

	e.buf = buf
	e.batch = wire.NewBatchSerializer(buf)
	e.state = StateConnected
	e.log.Infof(op, "connected to %s:%d (memory_limit=%d)", e.host, e.port, e.memoryLimit)
	return nil
}

// Close gracefully shuts down the transport and frees the buffer.
// Idempotent after the first successful close: calling Close while
// already Disconnected returns NOT_CONNECTED and has no side effects.
func (e *Engine) Close() error {
	const op = "Close"
	if e.state == StateDisconnected {
		return tserr.New(op, tserr.CodeNotConnected, nil)
	}
	err := e.tr.Close()
	e.buf = nil
	e.batch = nil
	e.state = StateDisconnected
	e.log.Infof(op, "closed connection to %s:%d", e.host, e.port)
	if err != nil {
		return mapTransportErr(op, err)
	}
	return nil
}

// SetTimeout applies immediately to the live transport (if Connected)
// and to every future Connect.
func (e *Engine) SetTimeout(d time.Duration) {
	e.timeout = d
	if e.state == StateConnected {
		e.tr.SetTimeout(d)
	}
}

// SetMemoryLimit records the requested limit; it takes effect at the
// next Connect, regardless of current state.
func (e *Engine) SetMemoryLimit(n int) error {
	if n < wire.MinBufferCapacity {
		return tserr.New("SetMemoryLimit", tserr.CodeMemoryLimitExceeded,
			fmt.Errorf("limit %d below minimum %d", n, wire.MinBufferCapacity))
	}
	e.pendingMemoryLimit = n
	return nil
}

func (e *Engine) requireConnected(op string) error {
	if e.state != StateConnected {
		return tserr.New(op, tserr.CodeNotConnected, nil)
	}
	return nil
}

// fault performs the client-side-fault transition: abort the
// transport, drop the buffer, and move to Disconnected.
func (e *Engine) fault(op string, err *tserr.Error) error {
	e.log.Errorf(op, "client fault (%s), aborting connection", err.Code)
	_ = e.tr.Abort()
	e.buf = nil
	e.batch = nil
	e.state = StateDisconnected
	return err
}

// mapTransportErr classifies a transport-layer error into the matching
// tserr.Code via the sentinel errors transport declares.
func mapTransportErr(op string, err error) *tserr.Error {
	switch {
	case errors.Is(err, transport.ErrConnTimeout):
		return tserr.New(op, tserr.CodeConnTimeout, err)
	case errors.Is(err, transport.ErrConnRefused):
		return tserr.New(op, tserr.CodeConnRefused, err)
	case errors.Is(err, transport.ErrConnReset):
		return tserr.New(op, tserr.CodeConnReset, err)
	case errors.Is(err, transport.ErrConnClosed):
		return tserr.New(op, tserr.CodeConnClosed, err)
	case errors.Is(err, transport.ErrBadAddress):
		return tserr.New(op, tserr.CodeBadAddress, err)
	default:
		return tserr.New(op, tserr.CodeConnError, err)
	}
}

// sendAll writes the buffer's full unread span to the transport.
func (e *Engine) sendAll(buf *wire.Buffer) error {
	data := buf.ReadSpan()
	sent := 0
	for sent < len(data) {
		n, err := e.tr.Send(data[sent:])
		if err != nil {
			return err
		}
		sent += n
	}
	return nil
}

// flush sends the whole buffer and resets it. On transport failure this
// is itself a client-side fault.
func (e *Engine) flush(op string, buf *wire.Buffer) error {
	if err := e.sendAll(buf); err != nil {
		return e.fault(op, mapTransportErr(op, err))
	}
	buf.Reset()
	return nil
}

// ensure receives into buf (compacting as needed) until n bytes are
// available to read. Used for every fixed-size response decode where
// the engine is allowed to reclaim already-consumed space.
func (e *Engine) ensure(op string, buf *wire.Buffer, n int) *tserr.Error {
	for !buf.Require(n) {
		if !buf.Reserve(n - buf.ReadLen()) {
			return tserr.New(op, tserr.CodeMemoryLimitExceeded,
				fmt.Errorf("response needs %d bytes, buffer capacity %d", n, buf.Capacity()))
		}
		recvd, err := e.tr.Recv(buf.WriteSpan())
		if err != nil {
			return mapTransportErr(op, err)
		}
		if recvd == 0 {
			return tserr.New(op, tserr.CodeConnClosed, errUnexpectedEOF)
		}
		buf.AdvanceWrite(recvd)
	}
	return nil
}

// ensureNoCompact is the non-reclaiming variant used by plain Get: it
// never compacts, so the whole call's consumption (header + every
// record decoded so far) is charged against the one fixed buffer
// capacity, enforcing a hard MEMORY_LIMIT_EXCEEDED once the
// capacity is exhausted rather than silently reclaiming space the way
// GetStream does.
func (e *Engine) ensureNoCompact(op string, buf *wire.Buffer, n int) *tserr.Error {
	for !buf.Require(n) {
		if n-buf.ReadLen() > buf.FreeLen() {
			return tserr.New(op, tserr.CodeMemoryLimitExceeded,
				fmt.Errorf("record needs %d bytes, only %d remain in the memory limit", n, buf.ReadLen()+buf.FreeLen()))
		}
		recvd, err := e.tr.Recv(buf.WriteSpan())
		if err != nil {
			return mapTransportErr(op, err)
		}
		if recvd == 0 {
			return tserr.New(op, tserr.CodeConnClosed, errUnexpectedEOF)
		}
		buf.AdvanceWrite(recvd)
	}
	return nil
}

var errUnexpectedEOF = fmt.Errorf("engine: connection closed before response completed")
