package wire

// Low-level little-endian helpers. Kept hand-rolled (rather than
// reaching for encoding/binary) because every call site already holds
// a byte slice of exactly the right width from the Buffer; a
// binary.Write/Read round trip through an io.Writer would cost an
// interface dispatch per field for no benefit here.

func putUint32LE(dst []byte, v uint32) {
	_ = dst[3]
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func getUint32LE(src []byte) uint32 {
	_ = src[3]
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
}

func putUint64LE(dst []byte, v uint64) {
	_ = dst[7]
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
	dst[4] = byte(v >> 32)
	dst[5] = byte(v >> 40)
	dst[6] = byte(v >> 48)
	dst[7] = byte(v >> 56)
}

func getUint64LE(src []byte) uint64 {
	_ = src[7]
	return uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 | uint64(src[3])<<24 |
		uint64(src[4])<<32 | uint64(src[5])<<40 | uint64(src[6])<<48 | uint64(src[7])<<56
}

// PutInt32LE appends a little-endian i32 to the buffer, reserving room
// first. It reports false if the buffer has no space.
func PutInt32LE(b *Buffer, v int32) bool {
	if !b.Reserve(4) {
		return false
	}
	putUint32LE(b.WriteSpan(), uint32(v))
	b.AdvanceWrite(4)
	return true
}

// GetInt32LE decodes a little-endian i32 from the read cursor. The
// caller must have verified Require(4).
func GetInt32LE(b *Buffer) int32 {
	v := int32(getUint32LE(b.ReadSpan()))
	b.AdvanceRead(4)
	return v
}

// PeekInt32LE decodes a little-endian i32 at the read cursor without
// advancing it. The caller must have verified Require(4).
func PeekInt32LE(b *Buffer) int32 {
	return int32(getUint32LE(b.ReadSpan()))
}

// PutInt64LE appends a little-endian i64 to the buffer, reserving room
// first. It reports false if the buffer has no space.
func PutInt64LE(b *Buffer, v int64) bool {
	if !b.Reserve(8) {
		return false
	}
	putUint64LE(b.WriteSpan(), uint64(v))
	b.AdvanceWrite(8)
	return true
}

// GetInt64LE decodes a little-endian i64 from the read cursor. The
// caller must have verified Require(8).
func GetInt64LE(b *Buffer) int64 {
	v := int64(getUint64LE(b.ReadSpan()))
	b.AdvanceRead(8)
	return v
}

// PutUint64LE appends a little-endian u64 (used for request header
// "size" fields) to the buffer.
func PutUint64LE(b *Buffer, v uint64) bool {
	if !b.Reserve(8) {
		return false
	}
	putUint64LE(b.WriteSpan(), v)
	b.AdvanceWrite(8)
	return true
}

// GetUint64LE decodes a little-endian u64 from the read cursor. The
// caller must have verified Require(8).
func GetUint64LE(b *Buffer) uint64 {
	v := getUint64LE(b.ReadSpan())
	b.AdvanceRead(8)
	return v
}

// PutKeyFull appends the 32-byte full encoding: cid, mid, moid, cap, acq.
func PutKeyFull(b *Buffer, k Key) bool {
	if !b.Reserve(FullKeySize) {
		return false
	}
	PutInt32LE(b, k.CID)
	PutInt64LE(b, k.MID)
	PutInt32LE(b, k.MOID)
	PutInt64LE(b, k.Cap)
	PutInt64LE(b, k.Acq)
	return true
}

// GetKeyFull decodes a 32-byte full key. The caller must have verified
// Require(FullKeySize).
func GetKeyFull(b *Buffer) Key {
	return Key{
		CID:  GetInt32LE(b),
		MID:  GetInt64LE(b),
		MOID: GetInt32LE(b),
		Cap:  GetInt64LE(b),
		Acq:  GetInt64LE(b),
	}
}

// PutKeyAbbrevPuta appends the 28-byte PUTA abbreviation: mid, moid,
// cap, acq (CID lives in the enclosing batch header).
func PutKeyAbbrevPuta(b *Buffer, k Key) bool {
	if !b.Reserve(AbbrevKeySizePuta) {
		return false
	}
	PutInt64LE(b, k.MID)
	PutInt32LE(b, k.MOID)
	PutInt64LE(b, k.Cap)
	PutInt64LE(b, k.Acq)
	return true
}

// GetKeyAbbrevPuta decodes a 28-byte PUTA abbreviation, filling in cid
// from the enclosing batch header. The caller must have verified
// Require(AbbrevKeySizePuta).
func GetKeyAbbrevPuta(b *Buffer, cid int32) Key {
	return Key{
		CID:  cid,
		MID:  GetInt64LE(b),
		MOID: GetInt32LE(b),
		Cap:  GetInt64LE(b),
		Acq:  GetInt64LE(b),
	}
}

// PutKeyAbbrevPut appends the 20-byte PUT abbreviation: mid, moid, cap
// (CID lives in the batch header; ACQ is server-assigned).
func PutKeyAbbrevPut(b *Buffer, k Key) bool {
	if !b.Reserve(AbbrevKeySizePut) {
		return false
	}
	PutInt64LE(b, k.MID)
	PutInt32LE(b, k.MOID)
	PutInt64LE(b, k.Cap)
	return true
}

// GetKeyAbbrevPut decodes a 20-byte PUT abbreviation, filling in cid and
// acq from context. The caller must have verified
// Require(AbbrevKeySizePut).
func GetKeyAbbrevPut(b *Buffer, cid int32, acq int64) Key {
	return Key{
		CID:  cid,
		MID:  GetInt64LE(b),
		MOID: GetInt32LE(b),
		Cap:  GetInt64LE(b),
		Acq:  acq,
	}
}
