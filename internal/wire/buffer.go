package wire

import "fmt"

// Buffer is a bounded FIFO byte arena with a read cursor and a write
// cursor into one fixed-size, preallocated slice. It backs in-place
// request/response framing: the engine never allocates beyond the
// buffer's configured capacity.
type Buffer struct {
	data []byte
	r, w int
}

// NewBuffer constructs a Buffer with the given capacity, which must be
// at least MinBufferCapacity.
func NewBuffer(capacity int) (*Buffer, error) {
	if capacity < MinBufferCapacity {
		return nil, fmt.Errorf("wire: buffer capacity %d below minimum %d", capacity, MinBufferCapacity)
	}
	return &Buffer{data: make([]byte, capacity)}, nil
}

// Capacity returns the buffer's fixed allocated size.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// ReadSpan returns the contiguous unread region. The slice aliases the
// buffer's storage and is only valid until the next mutating call.
func (b *Buffer) ReadSpan() []byte {
	return b.data[b.r:b.w]
}

// ReadLen returns the number of unread bytes.
func (b *Buffer) ReadLen() int {
	return b.w - b.r
}

// WriteSpan returns the contiguous writable region between the write
// cursor and the end of the backing storage. It does not include space
// that could be reclaimed by Compact.
func (b *Buffer) WriteSpan() []byte {
	return b.data[b.w:]
}

// FreeLen returns len(WriteSpan()).
func (b *Buffer) FreeLen() int {
	return len(b.data) - b.w
}

// Require reports whether at least n unread bytes are available. Codec
// decode helpers assume the caller has checked this first.
func (b *Buffer) Require(n int) bool {
	return b.ReadLen() >= n
}

// AdvanceRead moves the read cursor forward by k bytes. k must not
// exceed ReadLen().
func (b *Buffer) AdvanceRead(k int) {
	if k < 0 || k > b.ReadLen() {
		panic("wire: AdvanceRead out of range")
	}
	b.r += k
}

// AdvanceWrite moves the write cursor forward by k bytes. k must not
// exceed FreeLen().
func (b *Buffer) AdvanceWrite(k int) {
	if k < 0 || k > b.FreeLen() {
		panic("wire: AdvanceWrite out of range")
	}
	b.w += k
}

// Compact moves unread bytes to offset 0, zeroing the read cursor. It
// is idempotent when the buffer is already compacted (r == 0).
func (b *Buffer) Compact() {
	if b.r == 0 {
		return
	}
	n := copy(b.data, b.data[b.r:b.w])
	b.r = 0
	b.w = n
}

// Reserve ensures at least n bytes of free trailing space, compacting
// first if necessary. It reports false (and leaves the buffer merely
// compacted) when n exceeds the space a full compaction could free.
func (b *Buffer) Reserve(n int) bool {
	if n > len(b.data)-b.ReadLen() {
		return false
	}
	if n <= b.FreeLen() {
		return true
	}
	b.Compact()
	return n <= b.FreeLen()
}

// Reset returns both cursors to 0, discarding all buffered content.
func (b *Buffer) Reset() {
	b.r = 0
	b.w = 0
}

// Append reserves n bytes of trailing space, copies p into it, and
// advances the write cursor. It reports false without mutating the
// buffer if there is no room.
func (b *Buffer) Append(p []byte) bool {
	if !b.Reserve(len(p)) {
		return false
	}
	n := copy(b.WriteSpan(), p)
	b.AdvanceWrite(n)
	return true
}

// PokeUint32LE back-patches 4 little-endian bytes at an absolute byte
// offset that must already have been written (offset+4 <= write
// cursor).
func (b *Buffer) PokeUint32LE(offset int, value uint32) {
	if offset < 0 || offset+4 > b.w {
		panic("wire: PokeUint32LE offset out of range")
	}
	putUint32LE(b.data[offset:offset+4], value)
}
