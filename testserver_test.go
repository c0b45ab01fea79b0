package tstorage

import (
	"io"
	"net"
	"sync"

	"github.com/atendeindustries/tstorage-go/internal/wire"
)

// fakeServer is a minimal in-process stand-in for the real time-series
// server, enough to drive end-to-end test scenarios: it accepts
// PUT/PUTA streams and assigns an ever-increasing acq, and answers
// GET/GETACQ by scanning its in-memory store. State is shared across
// reconnects (via the fakeServer value, not the transport), matching a
// real server's persistence across client sessions.
type fakeServer struct {
	mu      sync.Mutex
	records []storedRecord
	acq     int64
}

type storedRecord struct {
	key     wire.Key
	payload []byte
}

func newFakeServer() *fakeServer {
	return &fakeServer{acq: 0}
}

// handle is passed as a transport.Fake handler: one call per Connect.
func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	for {
		cmd, ok := s.readRequestHeader(conn)
		if !ok {
			return
		}
		switch wire.Command(cmd) {
		case wire.CmdPut:
			s.handlePutStream(conn, false)
		case wire.CmdPuta:
			s.handlePutStream(conn, true)
		case wire.CmdGet:
			s.handleGet(conn)
		case wire.CmdGetAcq:
			s.handleGetAcq(conn)
		default:
			return
		}
	}
}

func (s *fakeServer) readRequestHeader(conn net.Conn) (int32, bool) {
	hdr := make([]byte, wire.RequestHeaderSize)
	if _, err := io.ReadFull(conn, hdr); err != nil {
		return 0, false
	}
	cmd := int32(hdr[0]) | int32(hdr[1])<<8 | int32(hdr[2])<<16 | int32(hdr[3])<<24
	return cmd, true
}

func readI32(conn net.Conn) (int32, bool) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(conn, b); err != nil {
		return 0, false
	}
	return int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24, true
}

func readI64(conn net.Conn) (int64, bool) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(conn, b); err != nil {
		return 0, false
	}
	lo := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24
	hi := uint64(b[4]) | uint64(b[5])<<8 | uint64(b[6])<<16 | uint64(b[7])<<24
	return int64(lo | hi<<32), true
}

func writeI32(conn net.Conn, v int32) {
	b := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	conn.Write(b)
}

func writeI64(conn net.Conn, v int64) {
	u := uint64(v)
	b := []byte{
		byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24),
		byte(u >> 32), byte(u >> 40), byte(u >> 48), byte(u >> 56),
	}
	conn.Write(b)
}

func writeU64(conn net.Conn, v uint64) {
	writeI64(conn, int64(v))
}

func readFullKey(conn net.Conn) (wire.Key, bool) {
	var k wire.Key
	var ok bool
	if k.CID, ok = readI32(conn); !ok {
		return k, false
	}
	if k.MID, ok = readI64(conn); !ok {
		return k, false
	}
	if k.MOID, ok = readI32(conn); !ok {
		return k, false
	}
	if k.Cap, ok = readI64(conn); !ok {
		return k, false
	}
	if k.Acq, ok = readI64(conn); !ok {
		return k, false
	}
	return k, true
}

func (s *fakeServer) handlePutStream(conn net.Conn, puta bool) {
	var batch []storedRecord
	for {
		cid, ok := readI32(conn)
		if !ok {
			return
		}
		if cid == 0 {
			break // end of stream
		}
		if _, ok := readI32(conn); !ok { // batch size, unused by this fake
			return
		}
		for {
			payloadSize, ok := readI32(conn)
			if !ok {
				return
			}
			if payloadSize == 0 {
				break // end of batch
			}
			var mid int64
			var moid int32
			var cap_ int64
			var acq int64
			if mid, ok = readI64(conn); !ok {
				return
			}
			if moid, ok = readI32(conn); !ok {
				return
			}
			if cap_, ok = readI64(conn); !ok {
				return
			}
			if puta {
				if acq, ok = readI64(conn); !ok {
					return
				}
			}
			payload := make([]byte, payloadSize)
			if _, err := io.ReadFull(conn, payload); err != nil {
				return
			}
			batch = append(batch, storedRecord{
				key:     wire.Key{CID: cid, MID: mid, MOID: moid, Cap: cap_, Acq: acq},
				payload: payload,
			})
		}
	}

	s.mu.Lock()
	acqMin := s.acq + 1
	for i := range batch {
		s.acq++
		if !puta {
			batch[i].key.Acq = s.acq
		}
	}
	acqMax := s.acq
	s.records = append(s.records, batch...)
	s.mu.Unlock()

	writeI32(conn, 0) // result = success
	writeU64(conn, 16)
	writeI64(conn, acqMin)
	writeI64(conn, acqMax)
}

func (s *fakeServer) matching(kmin, kmax wire.Key) []storedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storedRecord
	for _, r := range s.records {
		if !r.key.Less(kmin) && r.key.Less(kmax) {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeServer) handleGet(conn net.Conn) {
	kmin, ok := readFullKey(conn)
	if !ok {
		return
	}
	kmax, ok := readFullKey(conn)
	if !ok {
		return
	}
	matches := s.matching(kmin, kmax)

	writeI32(conn, 0)
	writeU64(conn, 0)
	for _, r := range matches {
		writeI32(conn, int32(wire.FullKeySize+len(r.payload)))
		writeI32(conn, r.key.CID)
		writeI64(conn, r.key.MID)
		writeI32(conn, r.key.MOID)
		writeI64(conn, r.key.Cap)
		writeI64(conn, r.key.Acq)
		conn.Write(r.payload)
	}
	writeI32(conn, 0) // end of records

	s.mu.Lock()
	acq := s.acq
	s.mu.Unlock()
	writeI32(conn, 0)
	writeU64(conn, 8)
	writeI64(conn, acq)
}

func (s *fakeServer) handleGetAcq(conn net.Conn) {
	kmin, ok := readFullKey(conn)
	if !ok {
		return
	}
	kmax, ok := readFullKey(conn)
	if !ok {
		return
	}
	matches := s.matching(kmin, kmax)
	var acq int64
	for _, r := range matches {
		if r.key.Acq > acq {
			acq = r.key.Acq
		}
	}
	if acq == 0 {
		s.mu.Lock()
		acq = s.acq
		s.mu.Unlock()
	}
	writeI32(conn, 0)
	writeU64(conn, 8)
	writeI64(conn, acq)
}
