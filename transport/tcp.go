package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"
)

// TCP is the production Transport, a thin, timeout-aware wrapper around
// net.Conn, with explicit timeout control and a hard Abort for forcing
// a connection closed on a client-side fault.
type TCP struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
}

// NewTCP returns an unconnected TCP transport.
func NewTCP() *TCP {
	return &TCP{}
}

// Connect dials host:port, using the configured timeout (if any) as the
// dial deadline.
func (t *TCP) Connect(host string, port int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	dialer := net.Dialer{Timeout: t.timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return classifyDialError(err)
	}
	t.conn = conn
	return nil
}

// Send writes all of buf, applying the configured send deadline.
func (t *TCP) Send(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	timeout := t.timeout
	t.mu.Unlock()
	if conn == nil {
		return 0, errNotConnected
	}
	if timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	n, err := conn.Write(buf)
	if err != nil {
		return n, classifyIOError(err)
	}
	return n, nil
}

// Recv reads into buf, applying the configured recv deadline.
func (t *TCP) Recv(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	timeout := t.timeout
	t.mu.Unlock()
	if conn == nil {
		return 0, errNotConnected
	}
	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	}
	n, err := conn.Read(buf)
	if err != nil {
		return n, classifyIOError(err)
	}
	return n, nil
}

// SetTimeout sets the per-call send/recv deadline used by subsequent
// Send/Recv calls (and the next Connect's dial timeout).
func (t *TCP) SetTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = d
}

// Abort forces the connection closed regardless of any in-flight
// operation. Idempotent.
func (t *TCP) Abort() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	// A deadline in the past unblocks any concurrent Read/Write before
	// Close tears down the socket.
	_ = t.conn.SetDeadline(time.Now().Add(-time.Second))
	err := t.conn.Close()
	t.conn = nil
	return err
}

// Close performs a graceful shutdown. Idempotent.
func (t *TCP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

var errNotConnected = errors.New("transport: not connected")

func classifyDialError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrConnTimeout, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", ErrConnRefused, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	return fmt.Errorf("%w: %v", ErrConnError, err)
}

func classifyIOError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrConnTimeout, err)
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return fmt.Errorf("%w: %v", ErrConnReset, err)
	}
	if errors.Is(err, syscall.EPIPE) {
		return fmt.Errorf("%w: %v", ErrConnClosed, err)
	}
	return fmt.Errorf("%w: %v", ErrConnError, err)
}

// Sentinel classification errors. The engine maps these (via
// errors.Is) onto tserr.Code values; transport itself stays
// tserr-agnostic so it has no dependency on the façade's error package.
var (
	ErrConnTimeout = errors.New("transport: timeout")
	ErrConnRefused = errors.New("transport: connection refused")
	ErrConnReset   = errors.New("transport: connection reset")
	ErrConnClosed  = errors.New("transport: connection closed")
	ErrBadAddress  = errors.New("transport: bad address")
	ErrConnError   = errors.New("transport: connection error")
)
