// Package wire is the single source of truth for the server's binary
// framing: sizes, command/result codes, and the Key type the rest of
// the client is built around. Every integer on the wire is
// little-endian, two's complement, packed with no padding.
//
// Frame sizes:
//
//	request header    12 B  (cmd:i32, size:u64)
//	response header    12 B  (result:i32, size:u64)
//	full key            32 B  (cid:i32, mid:i64, moid:i32, cap:i64, acq:i64)
//	abbrev key (PUTA)   28 B  (mid, moid, cap, acq)
//	abbrev key (PUT)    20 B  (mid, moid, cap)
//	batch header         8 B  (cid:i32, size:i32)
//
// Terminators are all a zero i32 at the level they close: end of batch
// (where a record's payload_size would appear), end of stream of
// batches (where a batch cid would appear), end of records (where a
// record_size would appear).
package wire

// Command identifies an outbound request kind.
type Command int32

// Command wire values. These are placeholders for the server's
// authoritative constants table (see the module's DESIGN.md, open
// question 1); the mapping must be verified against the server before
// interoperating with a real deployment.
const (
	CmdGet    Command = 1
	CmdGetAcq Command = 2
	CmdPut    Command = 3
	CmdPuta   Command = 4
)

// Result is a server response's result code. Zero is success; negative
// values are server-side errors; a small positive range is reserved for
// benign continuation status. Placeholders, see DESIGN.md.
type Result int32

const (
	ResultSuccess         Result = 0
	ResultGenericError    Result = -1
	ResultInvalidArgument Result = -2
	ResultRetry           Result = -3
	ResultTimeout         Result = -4
	ResultOutOfMemory     Result = -5
	ResultIOError         Result = -6
)

// Frame sizes, all in bytes.
const (
	RequestHeaderSize  = 12
	ResponseHeaderSize = 12
	FullKeySize        = 32
	AbbrevKeySizePuta  = 28
	AbbrevKeySizePut   = 20
	BatchHeaderSize    = 8

	// EndMarkerSize is the size of every zero-i32 terminator (end of
	// batch, end of stream, end of records).
	EndMarkerSize = 4
)

// PayloadSizeMax is the per-record payload ceiling a serializer may
// report before the engine fails the record with PAYLOAD_TOO_LARGE.
// 2^31 - 21 plus the 20-byte PUT abbreviated key is exactly 2^31 - 1,
// the largest signed i32. The server-advertised practical limit is
// far lower, 32 MiB.
const PayloadSizeMax = (1 << 31) - 21

// MinBufferCapacity is the smallest buffer capacity the engine will
// allocate: enough for a request header plus two full keys.
const MinBufferCapacity = 128

// DefaultMemoryLimit is the façade's default buffer capacity.
const DefaultMemoryLimit = 64 * 1024
