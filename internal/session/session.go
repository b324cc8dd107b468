// Package session owns the single connection to the match server and
// the primitives everything else builds on: one dial, newline-framed
// sends, chunk receives, and an idempotent teardown.
//
// Sessions decouple capabilities from concrete I/O sources — a
// capability doesn't need to know whether it's reading from os.Stdin
// or a test buffer, it just uses the session's Stdin/Stdout.
package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	fzerr "goforza/internal/errors"
	"goforza/internal/logging"
	"goforza/internal/metrics"
	"goforza/internal/transport"
)

// BufferSize is the fixed size of the inbound read buffer.  One read
// is one display unit; chunks are never reassembled into lines.
const BufferSize = 4096

// Session encapsulates the runtime context for the client's single
// server connection.  Two flags rule its lifecycle: connected (the
// socket is usable) and running (the client wants to keep going).
// running starts true and never returns to true once cleared.
type Session struct {
	host   string
	port   int
	dialer transport.Dialer
	log    *logging.Logger
	stats  *metrics.Collector

	Stdin  io.Reader
	Stdout io.Writer

	mu        sync.Mutex // guards conn and username
	conn      net.Conn
	username  string
	buf       []byte
	connected atomic.Bool
	running   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a disconnected session for host:port.  The dialer is
// injected so the same session works over plain TCP or an SSH tunnel.
func New(host string, port int, dialer transport.Dialer, log *logging.Logger, stats *metrics.Collector) *Session {
	s := &Session{
		host:   host,
		port:   port,
		dialer: dialer,
		log:    log,
		stats:  stats,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		buf:    make([]byte, BufferSize),
		done:   make(chan struct{}),
	}
	s.running.Store(true)
	return s
}

// Addr returns the server address in host:port form.
func (s *Session) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// ── Lifecycle ────────────────────────────────────────────────────────

// Connect performs a single dial attempt.  There is no retry here:
// readiness waiting is the probe's job, done before Connect.
func (s *Session) Connect(ctx context.Context) error {
	if !s.running.Load() {
		return fmt.Errorf("connect %s: session already closed", s.Addr())
	}
	if s.connected.Load() {
		return nil
	}

	conn, err := s.dialer.Dial(ctx, "tcp", s.Addr())
	if err != nil {
		s.stats.RecordError(err.Error())
		s.log.Error().Err(err).Str("addr", s.Addr()).Msg("dial failed")
		return fzerr.Wrap("dial", s.Addr(), err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.connected.Store(true)

	s.log.Info().Str("addr", s.Addr()).Msg("connected")
	return nil
}

// Disconnect tears the session down:
// clears both flags, closes the done channel and the socket exactly
// once, and logs a final metrics snapshot.  Closing the socket is
// what unblocks a receive pending in another goroutine.  Safe to call
// repeatedly and before Connect.
func (s *Session) Disconnect() {
	s.running.Store(false)
	s.connected.Store(false)

	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		conn := s.conn
		s.conn = nil
		s.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}

		s.log.Info().
			Str("addr", s.Addr()).
			Interface("metrics", s.stats.Snapshot()).
			Msg("session closed")
	})
}

// ── Wire primitives ──────────────────────────────────────────────────

// Send writes one command line, appending the protocol's newline
// terminator.  It never reconnects: a session that lost its socket
// reports ErrNotConnected and leaves recovery to the user.
func (s *Session) Send(text string) error {
	if !s.connected.Load() {
		return fzerr.ErrNotConnected
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fzerr.ErrNotConnected
	}

	payload := []byte(text + "\n")
	if _, err := conn.Write(payload); err != nil {
		s.stats.RecordError(err.Error())
		s.log.Error().Err(err).Str("addr", s.Addr()).Msg("send failed")
		return fzerr.Wrap("write", s.Addr(), err)
	}

	s.stats.CommandSent(len(payload))
	s.log.Debug().Int("bytes", len(payload)).Msg("command sent")
	return nil
}

// ReceiveOnce blocks for the next inbound chunk.  The returned slice
// aliases the session's read buffer and is valid until the next call;
// there is exactly one receiver, so this is safe.  An orderly remote
// close surfaces as io.EOF, a zero-byte read included.
func (s *Session) ReceiveOnce() ([]byte, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, fzerr.ErrNotConnected
	}

	n, err := conn.Read(s.buf)
	if n > 0 {
		s.stats.ChunkReceived(n)
		return s.buf[:n], nil
	}
	if err == nil || err == io.EOF {
		return nil, io.EOF
	}
	return nil, fzerr.Wrap("read", s.Addr(), err)
}

// Conn exposes the raw connection for capabilities that bypass the
// framed primitives (the raw relay mode).  Nil when disconnected.
func (s *Session) Conn() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// ── State accessors ──────────────────────────────────────────────────

// Connected reports whether the socket is currently usable.
func (s *Session) Connected() bool { return s.connected.Load() }

// Running reports whether the client still wants the session alive.
func (s *Session) Running() bool { return s.running.Load() }

// MarkDisconnected clears only the connected flag.  The receiver uses
// it when the remote side goes away so the input loop stops sending,
// before both tasks converge on Disconnect.
func (s *Session) MarkDisconnected() { s.connected.Store(false) }

// Done is closed when the session shuts down.  Select on it to react
// to a disconnect initiated elsewhere.
func (s *Session) Done() <-chan struct{} { return s.done }

// ── Identity ─────────────────────────────────────────────────────────

// SetUsername records the name the player logged in with.  The first
// non-empty line sent to the server answers its username prompt, and
// the input loop captures it here.  Display only, never validated.
func (s *Session) SetUsername(name string) {
	s.mu.Lock()
	s.username = name
	s.mu.Unlock()
}

// Username returns the captured username, or "" before login.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}
