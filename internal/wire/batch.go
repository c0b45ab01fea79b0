package wire

// BatchSerializer assembles the PUT/PUTA batch framing directly into a
// Buffer: a batch header (cid, size), a run of records sharing that
// cid, and an end-of-batch marker with the size field back-patched to
// the number of bytes written in between.
//
// At most one batch is ever open at a time; callers drive Begin/End
// around runs of same-CID records per the engine's batch-switch
// policy.
type BatchSerializer struct {
	buf             *Buffer
	open            bool
	cid             int32
	sizeFieldOffset int
	runningSize     int32
}

// NewBatchSerializer returns a serializer writing into buf.
func NewBatchSerializer(buf *Buffer) *BatchSerializer {
	return &BatchSerializer{buf: buf}
}

// IsOpen reports whether a batch is currently open.
func (s *BatchSerializer) IsOpen() bool {
	return s.open
}

// CurrentCID returns the open batch's CID and true, or (0, false) when
// no batch is open.
func (s *BatchSerializer) CurrentCID() (int32, bool) {
	if !s.open {
		return 0, false
	}
	return s.cid, true
}

// Begin writes a batch header (cid, placeholder size) and opens a new
// batch. It reports false without mutating the buffer if there is not
// enough room for the header.
func (s *BatchSerializer) Begin(cid int32) bool {
	if !s.buf.Reserve(BatchHeaderSize) {
		return false
	}
	PutInt32LE(s.buf, cid)
	offset := s.buf.w
	PutInt32LE(s.buf, 0) // placeholder size, back-patched in End
	s.open = true
	s.cid = cid
	s.sizeFieldOffset = offset
	s.runningSize = 0
	return true
}

// AccountRecord registers n bytes of record-frame content (payload_size
// field + abbreviated key + payload) written into the open batch since
// the last Begin/AccountRecord. Call this immediately after writing
// each record's frame.
func (s *BatchSerializer) AccountRecord(n int) {
	s.runningSize += int32(n)
}

// End writes the end-of-batch marker and back-patches the remembered
// size field with the accumulated record-frame byte count, then clears
// batch state. It reports false without mutating the buffer if there
// is no room for the marker; the batch remains open in that case.
func (s *BatchSerializer) End() bool {
	if !s.open {
		return true
	}
	if !s.buf.Reserve(EndMarkerSize) {
		return false
	}
	PutInt32LE(s.buf, 0)
	s.buf.PokeUint32LE(s.sizeFieldOffset, uint32(s.runningSize))
	s.open = false
	s.cid = 0
	s.sizeFieldOffset = 0
	s.runningSize = 0
	return true
}
