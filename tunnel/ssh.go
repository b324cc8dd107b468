package tunnel

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"

	fzerr "goforza/internal/errors"
	"goforza/internal/logging"
)

// Defaults filled in by NewSSHTunnel when the config leaves them zero.
const (
	defaultSSHPort          = 22
	defaultHandshakeTimeout = 30 * time.Second
)

// SSHConfig describes the bastion hop: who to log in as, where, and
// how to prove it.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string // private key file, empty for none
	PromptPass    bool   // ask for a password on stderr
	UseAgent      bool   // sign via the local ssh-agent
	StrictHostKey bool   // verify the bastion against known_hosts
	KnownHosts    string // known_hosts path, empty for ~/.ssh/known_hosts
	ConnTimeout   time.Duration
}

// SSHTunnel is a Tunnel over a single ssh.Client.  Forwarded
// connections share the client, so the handshake cost is paid once per
// run no matter how many dials follow.
type SSHTunnel struct {
	config *SSHConfig
	log    *logging.Logger

	mu     sync.Mutex
	client *ssh.Client
	alive  atomic.Bool
}

// NewSSHTunnel prepares a tunnel for Connect, defaulting the port and
// handshake timeout.
func NewSSHTunnel(cfg *SSHConfig, log *logging.Logger) *SSHTunnel {
	if cfg.Port == 0 {
		cfg.Port = defaultSSHPort
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = defaultHandshakeTimeout
	}
	return &SSHTunnel{config: cfg, log: log}
}

// addr returns the bastion endpoint in host:port form.
func (t *SSHTunnel) addr() string {
	return net.JoinHostPort(t.config.Host, strconv.Itoa(t.config.Port))
}

// clientConfig assembles credentials and host-key policy into the
// x/crypto client configuration.
func (t *SSHTunnel) clientConfig() (*ssh.ClientConfig, error) {
	auth, err := BuildAuthMethods(t.config)
	if err != nil {
		return nil, fzerr.WrapSSH("auth", t.config.Host, t.config.Port, err)
	}
	hostKeys, err := hostKeyCallback(t.config)
	if err != nil {
		return nil, fzerr.WrapSSH("hostkey", t.config.Host, t.config.Port, err)
	}
	return &ssh.ClientConfig{
		User:            t.config.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         t.config.ConnTimeout,
	}, nil
}

// Connect dials the bastion and completes the handshake.  The TCP leg
// honours ctx; the handshake itself is bounded by ConnTimeout.
func (t *SSHTunnel) Connect(ctx context.Context) error {
	sshCfg, err := t.clientConfig()
	if err != nil {
		return err
	}

	addr := t.addr()
	t.log.Debug().Str("addr", addr).Str("user", t.config.User).Msg("dialing bastion")

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fzerr.Wrap("dial", addr, err)
	}

	conn, chans, reqs, err := ssh.NewClientConn(raw, addr, sshCfg)
	if err != nil {
		raw.Close()
		return fzerr.WrapSSH("handshake", t.config.Host, t.config.Port, err)
	}

	t.mu.Lock()
	t.client = ssh.NewClient(conn, chans, reqs)
	t.mu.Unlock()
	t.alive.Store(true)

	go t.watch()
	return nil
}

// Dial opens a forwarded connection to address through the bastion.
func (t *SSHTunnel) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil || !t.alive.Load() {
		return nil, fzerr.ErrTunnelClosed
	}

	t.log.Debug().Str("network", network).Str("addr", address).Msg("forwarding dial")
	conn, err := client.DialContext(ctx, network, address)
	if err != nil {
		return nil, fzerr.WrapSSH("forward", t.config.Host, t.config.Port, err)
	}
	return conn, nil
}

// Close tears the tunnel down.  Safe to call repeatedly and before
// Connect.
func (t *SSHTunnel) Close() error {
	t.alive.Store(false)

	t.mu.Lock()
	client := t.client
	t.client = nil
	t.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Close()
}

// IsAlive reports whether the bastion connection is still up.
func (t *SSHTunnel) IsAlive() bool { return t.alive.Load() }

// watch blocks until the SSH connection dies and clears the alive
// flag, so later dials fail fast instead of hanging on a dead hop.
func (t *SSHTunnel) watch() {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return
	}

	err := client.Wait()
	t.alive.Store(false)
	t.log.Debug().Err(err).Msg("bastion connection ended")
}
