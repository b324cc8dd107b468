package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"goforza/internal/logging"
	"goforza/tunnel"
)

// SSHDialer reaches the match server through a bastion hop.  The hop
// comes up lazily on the first Dial and is reused by every dial after
// it, so probe attempts and the session share one SSH handshake.  A
// failed hop attempt is not cached: the next Dial tries again, which
// lets the reachability probe retry through a bastion that is still
// booting.
type SSHDialer struct {
	tunnel    *tunnel.SSHTunnel
	config    *tunnel.SSHConfig
	log       *logging.Logger
	mu        sync.Mutex
	connected bool
}

// NewSSHDialer wraps cfg in a dialer.  Nothing is dialed until the
// first Dial call.
func NewSSHDialer(cfg *tunnel.SSHConfig, log *logging.Logger) *SSHDialer {
	return &SSHDialer{
		tunnel: tunnel.NewSSHTunnel(cfg, log),
		config: cfg,
		log:    log,
	}
}

// connect brings the hop up exactly once across concurrent callers.
func (d *SSHDialer) connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}

	d.log.Debug().
		Str("user", d.config.User).
		Str("host", d.config.Host).
		Int("port", d.config.Port).
		Msg("establishing ssh tunnel")

	if err := d.tunnel.Connect(ctx); err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}

	d.connected = true
	d.log.Debug().Msg("ssh tunnel established")
	return nil
}

// Dial forwards a connection to address through the bastion.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Close drops the bastion hop.  A dialer that never connected has
// nothing to drop.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		d.connected = false
		return d.tunnel.Close()
	}
	return nil
}
