// Package tserr defines the client-side error taxonomy used throughout
// the tstorage client: codec/engine failures, transport failures, and
// server-reported result codes, all surfaced to callers as a single
// structured error type.
package tserr

import "fmt"

// Code identifies a class of client-side failure. Codes are disjoint
// from the server's own result-code range (see CodeServerError, which
// carries the server's raw code separately).
type Code int

const (
	// CodeInvalidKey: a caller-supplied key violates the key domain
	// constraints (negative CID, or a field at its max representable
	// value where the command forbids it).
	CodeInvalidKey Code = iota + 1
	// CodeEmptyKeyRange: keyMin >= keyMax lexicographically.
	CodeEmptyKeyRange
	// CodePayloadTooLarge: a serializer reported a size above the wire
	// ceiling.
	CodePayloadTooLarge
	// CodeMemoryLimitExceeded: a single frame would exceed the
	// configured buffer capacity.
	CodeMemoryLimitExceeded
	// CodeOutOfMemory: buffer allocation at connect time failed.
	CodeOutOfMemory
	// CodeBadResponse: the server sent bytes violating the wire
	// framing contract.
	CodeBadResponse
	// CodeDeserializationError: the caller's payload deserializer
	// refused a payload.
	CodeDeserializationError
	// CodeNotConnected: an operation was invoked while Disconnected.
	CodeNotConnected
	// CodeConnError is a generic transport failure.
	CodeConnError
	// CodeConnRefused: the peer actively refused the connection.
	CodeConnRefused
	// CodeConnReset: the peer reset the connection.
	CodeConnReset
	// CodeConnClosed: the peer closed the connection.
	CodeConnClosed
	// CodeConnTimeout: a transport operation exceeded its deadline.
	CodeConnTimeout
	// CodeBadAddress: the host/port could not be resolved.
	CodeBadAddress
	// CodeSocketError: a low-level socket operation failed.
	CodeSocketError
	// CodeSetOptError: a socket option (e.g. timeout) could not be set.
	CodeSetOptError
	// CodeSignal: the operation was interrupted by a signal.
	CodeSignal
	// CodeServerError: the server responded with a non-zero result
	// code. ServerResult on the Error carries the raw value.
	CodeServerError
)

var codeNames = map[Code]string{
	CodeInvalidKey:           "INVALID_KEY",
	CodeEmptyKeyRange:        "EMPTY_KEY_RANGE",
	CodePayloadTooLarge:      "PAYLOAD_TOO_LARGE",
	CodeMemoryLimitExceeded:  "MEMORY_LIMIT_EXCEEDED",
	CodeOutOfMemory:          "OUT_OF_MEMORY",
	CodeBadResponse:          "BAD_RESPONSE",
	CodeDeserializationError: "DESERIALIZATION_ERROR",
	CodeNotConnected:         "NOT_CONNECTED",
	CodeConnError:            "CONNERROR",
	CodeConnRefused:          "CONNREFUSED",
	CodeConnReset:            "CONNRESET",
	CodeConnClosed:           "CONNCLOSED",
	CodeConnTimeout:          "CONNTIMEOUT",
	CodeBadAddress:           "BAD_ADDRESS",
	CodeSocketError:          "SOCKET_ERROR",
	CodeSetOptError:          "SETOPT_ERROR",
	CodeSignal:               "SIGNAL",
	CodeServerError:          "SERVER_ERROR",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is the single error type every public operation returns.
type Error struct {
	// Op names the failing operation, e.g. "Connect", "Put", "Get".
	Op string
	// Code classifies the failure.
	Code Code
	// ServerResult carries the server's raw result code when
	// Code == CodeServerError; zero otherwise.
	ServerResult int32
	// Err is the wrapped cause, if any (e.g. a *net.OpError).
	Err error
}

// New builds an *Error for a client-side failure.
func New(op string, code Code, cause error) *Error {
	return &Error{Op: op, Code: code, Err: cause}
}

// NewServer builds an *Error surfacing a server-reported result code.
func NewServer(op string, result int32) *Error {
	return &Error{Op: op, Code: CodeServerError, ServerResult: result}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code == CodeServerError {
		if e.Op != "" {
			return fmt.Sprintf("tstorage: %s: server error %d", e.Op, e.ServerResult)
		}
		return fmt.Sprintf("tstorage: server error %d", e.ServerResult)
	}
	msg := e.Code.String()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("tstorage: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("tstorage: %s", msg)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is supports errors.Is against a sentinel *Error carrying only a Code
// (such as the package-level Err* values), matching on Code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	if t.Err == nil && t.ServerResult == 0 {
		return e.Code == t.Code
	}
	return e == t
}

// Sentinel errors, one per client-side code, for use with errors.Is.
var (
	ErrInvalidKey           = &Error{Code: CodeInvalidKey}
	ErrEmptyKeyRange        = &Error{Code: CodeEmptyKeyRange}
	ErrPayloadTooLarge      = &Error{Code: CodePayloadTooLarge}
	ErrMemoryLimitExceeded  = &Error{Code: CodeMemoryLimitExceeded}
	ErrOutOfMemory          = &Error{Code: CodeOutOfMemory}
	ErrBadResponse          = &Error{Code: CodeBadResponse}
	ErrDeserializationError = &Error{Code: CodeDeserializationError}
	ErrNotConnected         = &Error{Code: CodeNotConnected}
	ErrConnError            = &Error{Code: CodeConnError}
	ErrConnRefused          = &Error{Code: CodeConnRefused}
	ErrConnReset            = &Error{Code: CodeConnReset}
	ErrConnClosed           = &Error{Code: CodeConnClosed}
	ErrConnTimeout          = &Error{Code: CodeConnTimeout}
	ErrBadAddress           = &Error{Code: CodeBadAddress}
	ErrSocketError          = &Error{Code: CodeSocketError}
	ErrSetOptError          = &Error{Code: CodeSetOptError}
	ErrSignal               = &Error{Code: CodeSignal}
)

// IsClientFault reports whether code denotes a client-side fault that
// must force the engine to Disconnected, as opposed to a benign
// server-reported result that leaves the connection open.
func IsClientFault(code Code) bool {
	return code != CodeServerError && code != CodeEmptyKeyRange
}
