package transport

import (
	"net"
	"sync"
	"time"
)

// Fake is an in-memory Transport for tests: Connect opens a net.Pipe
// and, if a handler was supplied, runs it in a goroutine against the
// pipe's server side. This is the test-only analogue of a real
// server, grounded on the pack's fake-TCP-server pattern but avoiding
// a real listening socket.
//
// Fake is not part of the caller-facing API; it lives in this
// (exported, non-internal) package only because the engine's own
// _test.go files need to construct one.
type Fake struct {
	mu         sync.Mutex
	client     net.Conn
	handler    func(server net.Conn)
	timeout    time.Duration
	connectErr error
}

// NewFake returns a Fake transport that, once Connected, runs handler
// against the server side of an in-memory pipe. handler may be nil for
// tests that only exercise Connect/Close.
func NewFake(handler func(server net.Conn)) *Fake {
	return &Fake{handler: handler}
}

// FailConnect makes the next Connect call return err instead of
// dialing, for testing connect-time failure paths.
func (f *Fake) FailConnect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

// Connect implements Transport.
func (f *Fake) Connect(host string, port int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	client, server := net.Pipe()
	f.client = client
	if f.handler != nil {
		go f.handler(server)
	}
	return nil
}

// Send implements Transport.
func (f *Fake) Send(buf []byte) (int, error) {
	f.mu.Lock()
	conn, timeout := f.client, f.timeout
	f.mu.Unlock()
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

// Recv implements Transport.
func (f *Fake) Recv(buf []byte) (int, error) {
	f.mu.Lock()
	conn, timeout := f.client, f.timeout
	f.mu.Unlock()
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

// SetTimeout implements Transport.
func (f *Fake) SetTimeout(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeout = d
}

// Abort implements Transport.
func (f *Fake) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		return nil
	}
	_ = f.client.SetDeadline(time.Now().Add(-time.Second))
	err := f.client.Close()
	f.client = nil
	return err
}

// Close implements Transport.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}
