package ipmi

import (
	"fmt"
	"net"
	"time"
)

// DefaultBMCPort is the UDP port IPMI-over-LAN listens on.
const DefaultBMCPort = 623

// recvBufferSize bounds a single receive; it is sized well above any
// BMC response this codec parses.
const recvBufferSize = 8192

// Transport is a single-request, single-response UDP adapter: it binds
// a local endpoint, connects it to one BMC, and exchanges exactly one
// datagram per call. It does not retransmit; that policy belongs to the
// caller.
type Transport struct {
	conn    net.Conn
	timeout time.Duration
}

// TransportOptions configures a Transport.
type TransportOptions struct {
	// RecvTimeout bounds each Send+Recv round trip. Zero selects a 2
	// second default.
	RecvTimeout time.Duration
	// DialRetries bounds the number of additional dial attempts on
	// transient connect failure. This is a transport-level reconnect
	// policy, not protocol-level retransmission: each attempt still
	// performs exactly one dial, not a resend of any handshake message.
	DialRetries int
}

// NewTransport binds and connects a UDP socket to addr (host:port; if
// no port is given, DefaultBMCPort is used).
func NewTransport(addr string, opts TransportOptions) (*Transport, error) {
	if opts.RecvTimeout == 0 {
		opts.RecvTimeout = 2 * time.Second
	}
	addr = withDefaultPort(addr, DefaultBMCPort)

	var conn net.Conn
	var err error
	attempts := opts.DialRetries + 1
	for i := 0; i < attempts; i++ {
		conn, err = net.DialTimeout("udp", addr, opts.RecvTimeout)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, ErrConnectToIPMIServer{Addr: addr, Cause: err}
	}

	return &Transport{conn: conn, timeout: opts.RecvTimeout}, nil
}

func withDefaultPort(addr string, defaultPort int) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return fmt.Sprintf("%s:%d", addr, defaultPort)
}

// SendRecv writes packet and waits for exactly one reply, bounded by
// the transport's configured timeout.
func (t *Transport) SendRecv(packet []byte) ([]byte, error) {
	if err := t.conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, ErrFailedSend{Cause: err}
	}
	if _, err := t.conn.Write(packet); err != nil {
		return nil, ErrFailedSend{Cause: err}
	}

	buf := make([]byte, recvBufferSize)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, ErrNoResponse{Cause: err}
	}
	if n == 0 {
		return nil, ErrNoResponse{Cause: fmt.Errorf("empty datagram")}
	}
	return buf[:n], nil
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}
