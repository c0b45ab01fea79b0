package engine

import (
	"errors"
	"fmt"

	"github.com/atendeindustries/tstorage-go/internal/wire"
	"github.com/atendeindustries/tstorage-go/tserr"
)

// ErrSinkDeserialize is the sentinel a RecordSink/StreamSink's Append
// should wrap (via fmt.Errorf("%w: ...", ErrSinkDeserialize, ...) or
// errors.Join) when it rejects a payload because the caller's Adapter
// could not deserialize it. The engine reports that case as
// CodeDeserializationError instead of the generic CodeBadResponse, and
// treats it as a client-side fault: the connection is
// disconnected even though the bytes the server sent were well-formed.
var ErrSinkDeserialize = errors.New("engine: sink rejected record payload")

// RecordSink receives decoded records one at a time during a Get.
type RecordSink interface {
	// Append is handed the key and payload span of one decoded record.
	// The span aliases engine-owned storage and is invalid once Append
	// returns, so an Append that retains it must copy.
	Append(key wire.Key, payload []byte) error
}

// StreamSink is a RecordSink used by GetStream: Flush is called
// whenever the engine needs to hand off what has accumulated so far
// (either because the wire buffer needs the room, or once at the very
// end to signal completion), and at least once per GetStream call even
// if no records matched.
type StreamSink interface {
	RecordSink
	Flush() error
}

// GetAcq asks the server for the greatest Acq among keys within
// [kmin, kmax).
func (e *Engine) GetAcq(kmin, kmax wire.Key) (int64, error) {
	const op = "GetAcq"
	if err := e.requireConnected(op); err != nil {
		return 0, err
	}
	if wire.RangeEmpty(kmin, kmax) {
		return 0, tserr.New(op, tserr.CodeEmptyKeyRange, nil)
	}
	buf := e.buf
	if err := e.sendRangeRequest(op, buf, wire.CmdGetAcq, kmin, kmax); err != nil {
		return 0, err
	}

	if fe := e.ensure(op, buf, wire.ResponseHeaderSize); fe != nil {
		return 0, e.fault(op, fe)
	}
	result := wire.GetInt32LE(buf)
	wire.GetUint64LE(buf)
	if result != 0 {
		buf.Reset()
		return 0, tserr.NewServer(op, result)
	}

	if fe := e.ensure(op, buf, 8); fe != nil {
		return 0, e.fault(op, fe)
	}
	acq := wire.GetInt64LE(buf)
	buf.Reset()
	return acq, nil
}

// Get streams every record with a key in [kmin, kmax) to sink, one at a
// time, then returns the closing acquisition stamp. The whole result
// set is charged against the engine's memory limit with no
// reclamation, so a range producing more bytes than the buffer can hold
// fails with CodeMemoryLimitExceeded after delivering however many
// records fit; sink has already received those.
func (e *Engine) Get(kmin, kmax wire.Key, sink RecordSink) (int64, error) {
	const op = "Get"
	if err := e.requireConnected(op); err != nil {
		return 0, err
	}
	if wire.RangeEmpty(kmin, kmax) {
		return 0, tserr.New(op, tserr.CodeEmptyKeyRange, nil)
	}
	buf := e.buf
	if err := e.sendRangeRequest(op, buf, wire.CmdGet, kmin, kmax); err != nil {
		return 0, err
	}

	if fe := e.ensureNoCompact(op, buf, wire.ResponseHeaderSize); fe != nil {
		return 0, e.fault(op, fe)
	}
	result := wire.GetInt32LE(buf)
	wire.GetUint64LE(buf)
	if result != 0 {
		buf.Reset()
		return 0, tserr.NewServer(op, result)
	}

	for {
		if fe := e.ensureNoCompact(op, buf, wire.EndMarkerSize); fe != nil {
			return 0, e.fault(op, fe)
		}
		recSize := wire.GetInt32LE(buf)
		if recSize == 0 {
			return e.readTrailingAcq(op, buf, e.ensureNoCompact)
		}
		if recSize < wire.FullKeySize {
			return 0, e.fault(op, tserr.New(op, tserr.CodeBadResponse,
				fmt.Errorf("record_size %d is smaller than a key", recSize)))
		}

		if fe := e.ensureNoCompact(op, buf, int(recSize)); fe != nil {
			return 0, e.fault(op, fe)
		}
		key := wire.GetKeyFull(buf)
		payloadLen := int(recSize) - wire.FullKeySize
		payload := buf.ReadSpan()[:payloadLen]
		appendErr := sink.Append(key, payload)
		buf.AdvanceRead(payloadLen)
		if appendErr != nil {
			return 0, e.faultFromSink(op, appendErr)
		}
	}
}

// GetStream is Get's chunked counterpart: sink.Flush is invoked
// whenever the next record wouldn't fit the buffer's current free
// space, and once more at completion (guaranteeing at least one Flush
// overall, even for an empty result). Unlike Get, GetStream reclaims
// already-delivered bytes via compaction, so it is bounded only by the
// size of any single record, never by the total result size.
func (e *Engine) GetStream(kmin, kmax wire.Key, sink StreamSink) error {
	const op = "GetStream"
	if err := e.requireConnected(op); err != nil {
		return err
	}
	if wire.RangeEmpty(kmin, kmax) {
		return tserr.New(op, tserr.CodeEmptyKeyRange, nil)
	}
	buf := e.buf
	if err := e.sendRangeRequest(op, buf, wire.CmdGet, kmin, kmax); err != nil {
		return err
	}

	if fe := e.ensure(op, buf, wire.ResponseHeaderSize); fe != nil {
		return e.fault(op, fe)
	}
	result := wire.GetInt32LE(buf)
	wire.GetUint64LE(buf)
	if result != 0 {
		buf.Reset()
		return tserr.NewServer(op, result)
	}

	for {
		if fe := e.ensure(op, buf, wire.EndMarkerSize); fe != nil {
			return e.fault(op, fe)
		}
		recSize := wire.PeekInt32LE(buf)
		if recSize == 0 {
			wire.GetInt32LE(buf)
			if _, err := e.readTrailingAcq(op, buf, e.ensure); err != nil {
				return err
			}
			if ferr := sink.Flush(); ferr != nil {
				return e.fault(op, tserr.New(op, tserr.CodeBadResponse, ferr))
			}
			return nil
		}
		if recSize < wire.FullKeySize {
			return e.fault(op, tserr.New(op, tserr.CodeBadResponse,
				fmt.Errorf("record_size %d is smaller than a key", recSize)))
		}
		if int(recSize) > buf.Capacity() {
			return e.fault(op, tserr.New(op, tserr.CodeMemoryLimitExceeded,
				fmt.Errorf("record of %d bytes exceeds buffer capacity %d", recSize, buf.Capacity())))
		}

		if int(recSize) > buf.FreeLen() {
			if ferr := sink.Flush(); ferr != nil {
				return e.fault(op, tserr.New(op, tserr.CodeBadResponse, ferr))
			}
			buf.Compact()
		}

		wire.GetInt32LE(buf) // consume the size field peeked above
		if fe := e.ensure(op, buf, int(recSize)); fe != nil {
			return e.fault(op, fe)
		}
		key := wire.GetKeyFull(buf)
		payloadLen := int(recSize) - wire.FullKeySize
		payload := buf.ReadSpan()[:payloadLen]
		appendErr := sink.Append(key, payload)
		buf.AdvanceRead(payloadLen)
		if appendErr != nil {
			return e.faultFromSink(op, appendErr)
		}
	}
}

func (e *Engine) sendRangeRequest(op string, buf *wire.Buffer, cmd wire.Command, kmin, kmax wire.Key) error {
	buf.Reset()
	wire.PutInt32LE(buf, int32(cmd))
	wire.PutUint64LE(buf, uint64(2*wire.FullKeySize))
	wire.PutKeyFull(buf, kmin)
	wire.PutKeyFull(buf, kmax)
	return e.flush(op, buf)
}

// readTrailingAcq decodes the closing response header and acq value
// that follow the zero record-size terminator, using the supplied
// receive strategy (compacting or not) to match the caller's windowing
// policy.
func (e *Engine) readTrailingAcq(op string, buf *wire.Buffer, recv func(string, *wire.Buffer, int) *tserr.Error) (int64, error) {
	if fe := recv(op, buf, wire.ResponseHeaderSize); fe != nil {
		return 0, e.fault(op, fe)
	}
	trailerResult := wire.GetInt32LE(buf)
	wire.GetUint64LE(buf)
	if trailerResult != 0 {
		buf.Reset()
		return 0, tserr.NewServer(op, trailerResult)
	}
	if fe := recv(op, buf, 8); fe != nil {
		return 0, e.fault(op, fe)
	}
	acq := wire.GetInt64LE(buf)
	buf.Reset()
	return acq, nil
}

// faultFromSink classifies a RecordSink.Append failure and forces the
// client-side-fault transition: a deserialization rejection is
// still a fault (the stream cannot be resynchronized mid-record), just
// reported under a more specific code than an arbitrary sink error.
func (e *Engine) faultFromSink(op string, err error) error {
	if errors.Is(err, ErrSinkDeserialize) {
		return e.fault(op, tserr.New(op, tserr.CodeDeserializationError, err))
	}
	return e.fault(op, tserr.New(op, tserr.CodeBadResponse, err))
}
