// Package retry paces repeated connection attempts.
//
// The client's one retry loop is the startup reachability gate, which
// dials on a fixed cadence, so Constant is the profile that matters
// here.  Backoff also supports exponential growth with jitter for
// callers that need to spread load instead of polling evenly.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff describes how failed attempts are spaced.  The zero value is
// usable: missing fields fall back to 1s initial delay, 60s cap and
// doubling.
type Backoff struct {
	// InitialDelay is the pause after the first failure (default 1s).
	InitialDelay time.Duration
	// MaxDelay caps the pause once it has grown (default 60s).
	MaxDelay time.Duration
	// Multiplier scales the pause after each failure (default 2.0).
	// 1.0 keeps attempts evenly spaced.
	Multiplier float64
	// MaxAttempts is the total number of tries including the first.
	// 0 means unlimited, bounded only by the context.
	MaxAttempts int
	// Jitter randomises each pause by ±25% so simultaneous clients
	// do not dial in lockstep.
	Jitter bool
}

// Constant returns a Backoff that spaces attempts evenly with no
// jitter.  The pause runs between attempts only, never after the last
// one.
func Constant(delay time.Duration, attempts int) *Backoff {
	return &Backoff{
		InitialDelay: delay,
		MaxDelay:     delay,
		Multiplier:   1.0,
		MaxAttempts:  attempts,
	}
}

// normalized returns a copy with the documented defaults filled in.
func (b *Backoff) normalized() Backoff {
	p := *b
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = time.Minute
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	return p
}

// Do calls fn until it returns nil, returns an error marked Permanent,
// the attempt budget runs out, or ctx is cancelled during a pause.
// The attempt number passed to fn is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	p := b.normalized()
	wait := p.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}

		var pe *PermanentError
		if errors.As(err, &pe) {
			return pe.Err
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", p.MaxAttempts, err)
		}

		if err := sleep(ctx, p.pause(wait)); err != nil {
			return err
		}
		wait = p.grow(wait)
	}
}

// pause returns the concrete duration to wait, applying jitter when
// configured.
func (b Backoff) pause(d time.Duration) time.Duration {
	if b.Jitter {
		return addJitter(d)
	}
	return d
}

// grow advances the pause for the next round, capped at MaxDelay.
func (b Backoff) grow(d time.Duration) time.Duration {
	next := time.Duration(float64(d) * b.Multiplier)
	if next > b.MaxDelay {
		next = b.MaxDelay
	}
	return next
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry aborted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// addJitter spreads d over [0.75d, 1.25d), with a 1ms floor.
func addJitter(d time.Duration) time.Duration {
	span := float64(d) / 2
	j := float64(d) - span/2 + rand.Float64()*span
	if j < float64(time.Millisecond) {
		j = float64(time.Millisecond)
	}
	return time.Duration(j)
}

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError tells Do that more attempts cannot help.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err so the retry loop stops and returns the inner
// error as is.  Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries the Permanent marker.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
