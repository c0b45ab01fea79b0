package tstorage

import "github.com/atendeindustries/tstorage-go/tserr"

// Error is every public operation's dynamic error type; it is a direct
// alias of the internal taxonomy so callers can type-assert or
// errors.As into *tstorage.Error without reaching into an internal
// package.
type Error = tserr.Error

// Code classifies an Error. See the Code<Name> constants below.
type Code = tserr.Code

const (
	CodeInvalidKey           = tserr.CodeInvalidKey
	CodeEmptyKeyRange        = tserr.CodeEmptyKeyRange
	CodePayloadTooLarge      = tserr.CodePayloadTooLarge
	CodeMemoryLimitExceeded  = tserr.CodeMemoryLimitExceeded
	CodeOutOfMemory          = tserr.CodeOutOfMemory
	CodeBadResponse          = tserr.CodeBadResponse
	CodeDeserializationError = tserr.CodeDeserializationError
	CodeNotConnected         = tserr.CodeNotConnected
	CodeConnError            = tserr.CodeConnError
	CodeConnRefused          = tserr.CodeConnRefused
	CodeConnReset            = tserr.CodeConnReset
	CodeConnClosed           = tserr.CodeConnClosed
	CodeConnTimeout          = tserr.CodeConnTimeout
	CodeBadAddress           = tserr.CodeBadAddress
	CodeSocketError          = tserr.CodeSocketError
	CodeSetOptError          = tserr.CodeSetOptError
	CodeSignal               = tserr.CodeSignal
	CodeServerError          = tserr.CodeServerError
)

// Sentinel errors, one per client-side code, for errors.Is(err,
// tstorage.ErrInvalidKey) style checks.
var (
	ErrInvalidKey           = tserr.ErrInvalidKey
	ErrEmptyKeyRange        = tserr.ErrEmptyKeyRange
	ErrPayloadTooLarge      = tserr.ErrPayloadTooLarge
	ErrMemoryLimitExceeded  = tserr.ErrMemoryLimitExceeded
	ErrOutOfMemory          = tserr.ErrOutOfMemory
	ErrBadResponse          = tserr.ErrBadResponse
	ErrDeserializationError = tserr.ErrDeserializationError
	ErrNotConnected         = tserr.ErrNotConnected
	ErrConnError            = tserr.ErrConnError
	ErrConnRefused          = tserr.ErrConnRefused
	ErrConnReset            = tserr.ErrConnReset
	ErrConnClosed           = tserr.ErrConnClosed
	ErrConnTimeout          = tserr.ErrConnTimeout
	ErrBadAddress           = tserr.ErrBadAddress
	ErrSocketError          = tserr.ErrSocketError
	ErrSetOptError          = tserr.ErrSetOptError
	ErrSignal               = tserr.ErrSignal
)

// IsClientFault reports whether code denotes a client-side fault that
// forces the connection to Disconnected, as opposed to a benign
// server-reported result that leaves it open.
func IsClientFault(code Code) bool {
	return tserr.IsClientFault(code)
}
