// Package errors defines how goforza failures are represented.
//
// The client has three failure domains with different audiences: wire
// errors (dial, read, write against the match server), tunnel errors
// (the SSH hop to a bastion), and config errors (the player typed
// something wrong).  Each gets a structured type so callers can react
// to fields instead of parsing strings, and the package re-exports the
// stdlib helpers so call sites need a single errors import.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// ── Sentinels ────────────────────────────────────────────────────────

var (
	// ErrNotConnected is returned by wire operations called before
	// Connect or after the session lost its socket.
	ErrNotConnected = errors.New("not connected")

	// ErrProbeExhausted means the reachability gate used up its
	// attempt budget without one dial ever completing.
	ErrProbeExhausted = errors.New("server never became reachable")

	// ErrTunnelClosed is returned when dialing through a tunnel that
	// was already shut down.
	ErrTunnelClosed = errors.New("tunnel is closed")

	// ErrAuthFailed means the bastion accepted none of the configured
	// SSH authentication methods.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrHostKeyMismatch means the bastion presented a host key the
	// known_hosts file does not vouch for.
	ErrHostKeyMismatch = errors.New("host key mismatch")
)

// ── Wire errors ──────────────────────────────────────────────────────

// NetworkError is a failed operation against the match server.  Op is
// one of "probe", "dial", "read" or "write"; Retryable records whether
// the failure looked transient at classification time.
type NetworkError struct {
	Op        string
	Addr      string
	Err       error
	Retryable bool
}

func (e *NetworkError) Error() string {
	suffix := ""
	if e.Retryable {
		suffix = " (retryable)"
	}
	return fmt.Sprintf("%s %s: %v%s", e.Op, e.Addr, e.Err, suffix)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Wrap builds a NetworkError around err, classifying retryability from
// the underlying error chain.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err, Retryable: classifyRetryable(err)}
}

// ── Tunnel errors ────────────────────────────────────────────────────

// SSHError is a failure on the bastion hop, tagged with the phase it
// happened in ("handshake", "auth", "forward").
type SSHError struct {
	Op   string
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	addr := net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	return fmt.Sprintf("ssh %s %s: %v", e.Op, addr, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// WrapSSH builds an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Config errors ────────────────────────────────────────────────────

// ConfigError is an invalid flag, argument or environment value.  The
// rendered message leads with the offending field and value and ends
// with an optional hint line, so the player sees what to fix without
// reading a manual.
type ConfigError struct {
	Field   string
	Value   interface{} // nil when the value is absent rather than wrong
	Message string
	Hint    string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config: --%s", e.Field)
	if e.Value != nil {
		fmt.Fprintf(&b, "=%v", e.Value)
	}
	b.WriteString(": " + e.Message)
	if e.Hint != "" {
		b.WriteString("\n  hint: " + e.Hint)
	}
	return b.String()
}

// ── Classification ───────────────────────────────────────────────────

// IsClosed reports whether err only says the connection is gone:
// orderly EOF, or a read/write raced against our own Close.  During
// shutdown these are expected and should not be reported to the user.
func IsClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}

// IsRetryable reports whether err is worth another attempt.  A
// NetworkError answers from its own flag; anything else is classified
// fresh.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// classifyRetryable treats an error as transient when something in its
// chain self-reports as temporary (net.OpError, net.DNSError and
// friends all implement net.Error).
func classifyRetryable(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Temporary() //nolint:staticcheck // deprecated, but exactly the hint wanted here
	}
	return false
}

// ── Stdlib pass-throughs ─────────────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
