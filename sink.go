package tstorage

import (
	"fmt"

	"github.com/atendeindustries/tstorage-go/internal/engine"
	"github.com/atendeindustries/tstorage-go/internal/wire"
)

// recordSource adapts a []Record[P] plus an Adapter[P] to
// engine.RecordSource, so the engine can drive Put/Puta without ever
// knowing P.
type recordSource[P any] struct {
	records []Record[P]
	adapter Adapter[P]
}

func (s *recordSource[P]) Len() int { return len(s.records) }

func (s *recordSource[P]) KeyAt(i int) wire.Key { return s.records[i].Key }

func (s *recordSource[P]) SerializeAt(i int, dst []byte) int {
	return s.adapter.Serialize(s.records[i].Payload, dst)
}

// recordSink adapts a *RecordsSet[P] plus an Adapter[P] to
// engine.RecordSink, used by Get.
type recordSink[P any] struct {
	set     *RecordsSet[P]
	adapter Adapter[P]
}

func (s *recordSink[P]) Append(key wire.Key, payload []byte) error {
	v, ok := s.adapter.Deserialize(payload)
	if !ok {
		return fmt.Errorf("%w: adapter rejected a %d-byte payload", engine.ErrSinkDeserialize, len(payload))
	}
	s.set.Append(Record[P]{Key: key, Payload: v})
	return nil
}

// streamSink adapts a per-chunk callback plus an Adapter[P] to
// engine.StreamSink, used by GetStream. Each Flush hands the
// accumulated chunk to callback and starts a fresh, empty RecordsSet,
// matching the engine's "drop and recreate" chunking contract.
type streamSink[P any] struct {
	adapter  Adapter[P]
	callback func(*RecordsSet[P]) error
	current  RecordsSet[P]
}

func newStreamSink[P any](adapter Adapter[P], callback func(*RecordsSet[P]) error) *streamSink[P] {
	return &streamSink[P]{adapter: adapter, callback: callback}
}

func (s *streamSink[P]) Append(key wire.Key, payload []byte) error {
	v, ok := s.adapter.Deserialize(payload)
	if !ok {
		return fmt.Errorf("%w: adapter rejected a %d-byte payload", engine.ErrSinkDeserialize, len(payload))
	}
	s.current.Append(Record[P]{Key: key, Payload: v})
	return nil
}

func (s *streamSink[P]) Flush() error {
	chunk := s.current
	s.current = RecordsSet[P]{}
	return s.callback(&chunk)
}
