package engine

import (
	"errors"
	"fmt"

	"github.com/atendeindustries/tstorage-go/internal/wire"
	"github.com/atendeindustries/tstorage-go/tserr"
)

// closingOverhead is the trailing space every accumulating request
// buffer must keep free: room to close the open batch (End) and to
// append the final end-of-stream marker, so neither ever needs its own
// flush-and-retry dance mid-record.
const closingOverhead = 2 * wire.EndMarkerSize

// RecordSource is the engine's view of the records a Put/Puta call is
// sending: a byte-span producer, indexed and serialized one at a time
// so the engine never needs to know the payload's Go type.
type RecordSource interface {
	// Len reports how many records the source holds.
	Len() int
	// KeyAt returns the key of the i'th record.
	KeyAt(i int) wire.Key
	// SerializeAt writes the i'th record's payload into dst and returns
	// the number of bytes required. If that exceeds len(dst), dst's
	// contents are undefined and the engine retries with a
	// large-enough span.
	SerializeAt(i int, dst []byte) int
}

// Put sends every record in src under command PUT. ErrInvalidKey aborts
// the connection and sends none of the records from the offending one
// onward; records before it have already reached the server.
func (e *Engine) Put(src RecordSource) (acqMin, acqMax int64, err error) {
	return e.write("Put", wire.CmdPut, false, src)
}

// Puta is Put's acquisition-stamped counterpart (command PUTA); keys
// must additionally carry an explicit, non-sentinel Acq value.
func (e *Engine) Puta(src RecordSource) (acqMin, acqMax int64, err error) {
	return e.write("Puta", wire.CmdPuta, true, src)
}

func (e *Engine) write(op string, cmd wire.Command, puta bool, src RecordSource) (int64, int64, error) {
	if err := e.requireConnected(op); err != nil {
		return 0, 0, err
	}
	buf, batch := e.buf, e.batch
	buf.Reset()

	wire.PutInt32LE(buf, int32(cmd))
	// The request header's size field is never back-patched: PUT/PUTA
	// bodies are framed by their own end-of-stream marker, so the
	// length prefix carries no information the server needs (see
	// DESIGN.md, open question 2).
	wire.PutUint64LE(buf, 0)

	abbrevSize := wire.AbbrevKeySizePut
	if puta {
		abbrevSize = wire.AbbrevKeySizePuta
	}

	scratch := make([]byte, 8)
	n := src.Len()
	for i := 0; i < n; i++ {
		key := src.KeyAt(i)
		valid := wire.ValidForPut(key)
		if puta {
			valid = wire.ValidForPuta(key)
		}
		if !valid {
			return e.abortMidStream(op, buf, batch)
		}

		if cid, open := batch.CurrentCID(); !open || cid != key.CID {
			if open {
				if err := e.closeBatchOrFlush(op, buf, batch); err != nil {
					return 0, 0, err
				}
			}
			if err := e.beginBatchOrFlush(op, buf, batch, key.CID); err != nil {
				return 0, 0, err
			}
		}

		required := src.SerializeAt(i, scratch)
		if required > len(scratch) {
			scratch = make([]byte, required)
			required = src.SerializeAt(i, scratch)
		}
		if required > wire.PayloadSizeMax {
			return 0, 0, e.fault(op, tserr.New(op, tserr.CodePayloadTooLarge,
				fmt.Errorf("record %d requires %d bytes, limit is %d", i, required, wire.PayloadSizeMax)))
		}

		frameLen := 4 + abbrevSize + required
		needed := frameLen + closingOverhead
		if needed > buf.Capacity() {
			return 0, 0, e.fault(op, tserr.New(op, tserr.CodeMemoryLimitExceeded,
				fmt.Errorf("record %d needs %d bytes, buffer capacity is %d", i, needed, buf.Capacity())))
		}
		if !buf.Reserve(needed) {
			if err := e.closeBatchOrFlush(op, buf, batch); err != nil {
				return 0, 0, err
			}
			if err := e.flush(op, buf); err != nil {
				return 0, 0, err
			}
			if err := e.beginBatchOrFlush(op, buf, batch, key.CID); err != nil {
				return 0, 0, err
			}
			if !buf.Reserve(needed) {
				return 0, 0, e.fault(op, tserr.New(op, tserr.CodeMemoryLimitExceeded,
					fmt.Errorf("record %d does not fit even in an empty buffer", i)))
			}
		}

		wire.PutInt32LE(buf, int32(required))
		if puta {
			wire.PutKeyAbbrevPuta(buf, key)
		} else {
			wire.PutKeyAbbrevPut(buf, key)
		}
		buf.Append(scratch[:required])
		batch.AccountRecord(frameLen)
	}

	if _, open := batch.CurrentCID(); open {
		if err := e.closeBatchOrFlush(op, buf, batch); err != nil {
			return 0, 0, err
		}
	}
	if !wire.PutInt32LE(buf, 0) {
		if err := e.flush(op, buf); err != nil {
			return 0, 0, err
		}
		wire.PutInt32LE(buf, 0)
	}
	if err := e.flush(op, buf); err != nil {
		return 0, 0, err
	}

	return e.readWriteAck(op)
}

func (e *Engine) closeBatchOrFlush(op string, buf *wire.Buffer, batch *wire.BatchSerializer) error {
	if batch.End() {
		return nil
	}
	if err := e.flush(op, buf); err != nil {
		return err
	}
	if !batch.End() {
		return e.fault(op, tserr.New(op, tserr.CodeMemoryLimitExceeded,
			errors.New("cannot close batch even in a freshly flushed buffer")))
	}
	return nil
}

func (e *Engine) beginBatchOrFlush(op string, buf *wire.Buffer, batch *wire.BatchSerializer, cid int32) error {
	if buf.Reserve(wire.BatchHeaderSize+closingOverhead) && batch.Begin(cid) {
		return nil
	}
	if err := e.flush(op, buf); err != nil {
		return err
	}
	if !batch.Begin(cid) {
		return e.fault(op, tserr.New(op, tserr.CodeMemoryLimitExceeded,
			errors.New("cannot open batch even in a freshly flushed buffer")))
	}
	return nil
}

// abortMidStream implements the invalid-key abort path: close whatever
// batch is open, append the end-of-stream marker, send
// what has accumulated, best-effort drain the server's acknowledgement
// of the partial stream, then force a disconnect and report
// CodeInvalidKey. The transport-level error path is preserved (a send
// failure here still forces Disconnected, just with a different
// underlying cause recorded).
func (e *Engine) abortMidStream(op string, buf *wire.Buffer, batch *wire.BatchSerializer) (int64, int64, error) {
	if _, open := batch.CurrentCID(); open {
		batch.End()
	}
	wire.PutInt32LE(buf, 0)

	if sendErr := e.sendAll(buf); sendErr != nil {
		_ = e.tr.Abort()
		e.buf, e.batch, e.state = nil, nil, StateDisconnected
		return 0, 0, tserr.New(op, tserr.CodeInvalidKey,
			fmt.Errorf("invalid key, and flushing the partial stream failed: %w", sendErr))
	}
	buf.Reset()
	_ = e.tryDrainAck(op, buf)

	_ = e.tr.Abort()
	e.buf, e.batch, e.state = nil, nil, StateDisconnected
	return 0, 0, tserr.New(op, tserr.CodeInvalidKey, nil)
}

// tryDrainAck best-effort reads and discards the server's response to a
// stream that is being aborted; any failure here is swallowed since the
// connection is being torn down regardless.
func (e *Engine) tryDrainAck(op string, buf *wire.Buffer) error {
	if fe := e.ensure(op, buf, wire.ResponseHeaderSize); fe != nil {
		return fe
	}
	result := wire.GetInt32LE(buf)
	wire.GetUint64LE(buf)
	if result != 0 {
		return nil
	}
	if fe := e.ensure(op, buf, 16); fe != nil {
		return fe
	}
	return nil
}

// readWriteAck decodes the PUT/PUTA response: a header, then, only on
// success, the (acqMin, acqMax) pair.
func (e *Engine) readWriteAck(op string) (int64, int64, error) {
	buf := e.buf
	buf.Reset()
	if fe := e.ensure(op, buf, wire.ResponseHeaderSize); fe != nil {
		return 0, 0, e.fault(op, fe)
	}
	result := wire.GetInt32LE(buf)
	wire.GetUint64LE(buf)
	if result != 0 {
		buf.Reset()
		return 0, 0, tserr.NewServer(op, result)
	}

	if fe := e.ensure(op, buf, 16); fe != nil {
		return 0, 0, e.fault(op, fe)
	}
	acqMin := wire.GetInt64LE(buf)
	acqMax := wire.GetInt64LE(buf)
	buf.Reset()
	return acqMin, acqMax, nil
}
