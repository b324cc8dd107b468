package transport

import (
	"context"
	"net"
	"time"
)

// TCPDialer establishes plain TCP connections.  The same dialer is
// used by the reachability probe (with its per-attempt timeout) and
// by the session dial.
type TCPDialer struct {
	Timeout time.Duration // per-dial timeout (0 = OS default)
}

// Dial connects to address over TCP.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
