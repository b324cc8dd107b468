// Package probe waits for the match server to come up before the
// session dials.  It retries a connect-and-discard cycle on a fixed
// cadence and reports progress to the player in protocol style.
package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	fzerr "goforza/internal/errors"
	"goforza/internal/format"
	"goforza/internal/logging"
	"goforza/internal/metrics"
	"goforza/internal/retry"
	"goforza/internal/transport"
)

// Defaults for the readiness gate.
const (
	DefaultAttempts = 15
	DefaultDelay    = 2 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// Probe checks reachability of host:port through a Dialer.  Each
// attempt opens and immediately discards a connection; the session
// dials on its own afterwards.  Probing goes through the same Dialer
// as the session, so a tunnelled setup is probed through the tunnel.
type Probe struct {
	Host     string
	Port     int
	Attempts int           // total tries (default 15)
	Delay    time.Duration // pause between failed tries (default 2s)
	Timeout  time.Duration // per-attempt dial timeout (default 5s)

	Dialer transport.Dialer
	Out    io.Writer
	Format *format.Formatter
	Log    *logging.Logger
	Stats  *metrics.Collector
}

// Run blocks until the server accepts a connection or the attempt
// budget runs out.  It returns nil on success and an error wrapping
// ErrProbeExhausted when the server never answered.  The delay is
// slept between attempts only, never after the last one.  Context
// cancellation aborts quietly without the exhaustion notice.
func (p *Probe) Run(ctx context.Context) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	log := p.Log
	if log == nil {
		log = logging.Nop()
	}

	addr := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))

	fmt.Fprintln(out, p.Format.Paint(format.Yellow,
		fmt.Sprintf("[CLIENT] Attesa del server %s:%d...", p.Host, p.Port)))
	log.Info().Str("addr", addr).Int("attempts", attempts).Dur("delay", delay).Msg("probe started")

	backoff := retry.Constant(delay, attempts)
	err := backoff.Do(ctx, func(attempt int) error {
		p.Stats.ProbeAttempt()

		dctx, cancel := context.WithTimeout(ctx, timeout)
		conn, derr := p.Dialer.Dial(dctx, "tcp", addr)
		cancel()

		if derr == nil {
			conn.Close()
			return nil
		}

		log.Debug().
			Int("attempt", attempt).
			Bool("retryable", fzerr.IsRetryable(derr)).
			Err(derr).
			Msg("probe attempt failed")

		// A cancelled parent context means the player is quitting,
		// not that the server is down.
		if ctx.Err() != nil {
			return retry.Permanent(derr)
		}

		if attempt < attempts {
			fmt.Fprintln(out, p.Format.Paint(format.Yellow,
				fmt.Sprintf("[CLIENT] Tentativo %d/%d - Riprovo in %gs...",
					attempt, attempts, delay.Seconds())))
		}
		return derr
	})

	if err == nil {
		fmt.Fprintln(out, p.Format.Paint(format.Green, "[CLIENT] Server disponibile!"))
		log.Info().Str("addr", addr).Msg("server reachable")
		return nil
	}

	if ctx.Err() != nil {
		log.Info().Str("addr", addr).Msg("probe cancelled")
		return ctx.Err()
	}

	fmt.Fprintln(out, p.Format.Paint(format.Red,
		fmt.Sprintf("[CLIENT] Server non raggiungibile dopo %d tentativi.", attempts)))
	log.Error().Str("addr", addr).Int("attempts", attempts).Msg("probe exhausted")
	return fmt.Errorf("%w: %v", fzerr.ErrProbeExhausted, err)
}
