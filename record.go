package tstorage

import "github.com/atendeindustries/tstorage-go/internal/wire"

// PayloadSizeMax is the per-record payload ceiling enforced on the
// wire (2^31 − 21), independent of any particular adapter's own
// documented limits.
const PayloadSizeMax = wire.PayloadSizeMax

// Key is the five-field record key (cid, mid, moid, cap, acq), ordered
// lexicographically on that tuple. It is a direct alias of the
// internal wire encoding so the façade never needs to translate
// between two otherwise-identical types.
type Key = wire.Key

// Record pairs a Key with a caller-defined payload. P is opaque to the
// engine: the only operations ever performed on it are through the
// Adapter supplied to New.
type Record[P any] struct {
	Key     Key
	Payload P
}

// RecordsSet is an insertion-ordered, append-only sequence of records,
// returned by Get and delivered per chunk to a GetStream callback.
type RecordsSet[P any] struct {
	records []Record[P]
}

// Len reports the number of records currently held.
func (s *RecordsSet[P]) Len() int {
	return len(s.records)
}

// At returns the i'th record in insertion order.
func (s *RecordsSet[P]) At(i int) Record[P] {
	return s.records[i]
}

// Append adds a record to the end of the set.
func (s *RecordsSet[P]) Append(r Record[P]) {
	s.records = append(s.records, r)
}

// Adapter bridges an opaque payload type P to and from the wire. It is
// supplied once, at construction, and is never assumed to be safe for
// concurrent use beyond the single engine instance that owns it.
type Adapter[P any] interface {
	// Serialize reports the number of bytes required to encode v. If
	// len(dst) is at least that size, Serialize also writes the
	// encoding into dst[:required]; otherwise dst's contents are
	// undefined and the caller must retry with a larger dst.
	Serialize(v P, dst []byte) (required int)

	// Deserialize consumes exactly len(span) bytes and decodes a
	// value, or reports failure.
	Deserialize(span []byte) (P, bool)
}
