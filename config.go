package tstorage

import (
	"time"

	"github.com/atendeindustries/tstorage-go/internal/wire"
)

// DefaultMemoryLimit is used when Config.MemoryLimit is zero.
const DefaultMemoryLimit = wire.DefaultMemoryLimit

// MinMemoryLimit is the smallest memory limit Connect will accept.
const MinMemoryLimit = wire.MinBufferCapacity

// Config bundles the connection parameters for a Client. Validated
// once, at Connect.
type Config struct {
	// Host and Port identify the server to dial.
	Host string
	Port int

	// MemoryLimit caps both the total bytes buffered for a single
	// request and the maximum per-record frame. Zero or a negative
	// value selects DefaultMemoryLimit; a positive value below
	// MinMemoryLimit is rejected at Connect.
	MemoryLimit int

	// Timeout bounds every Send and Recv call made against the
	// transport once connected (applies to both directions, per
	// SetTimeout). Zero means no deadline.
	Timeout time.Duration
}
