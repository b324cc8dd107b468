// Package metrics counts what a game session did: chunks and bytes
// in, commands out, probe attempts, errors.  The session logs a
// snapshot at teardown so a played match leaves a usable trace.
//
// Counters are atomics, safe from any goroutine.  Every method treats
// a nil *Collector as a no-op, so plumbing code passes the collector
// through without nil checks.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector accumulates the session counters.  The zero value works;
// New additionally pins the start time for uptime reporting.
type Collector struct {
	bytesIn       atomic.Int64
	bytesOut      atomic.Int64
	chunks        atomic.Int64
	commands      atomic.Int64
	probeAttempts atomic.Int64
	errorsTotal   atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New returns a Collector whose uptime starts now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── I/O metrics ──────────────────────────────────────────────────────

// ChunkReceived records one inbound read of n bytes.
func (c *Collector) ChunkReceived(n int) {
	if c == nil {
		return
	}
	c.chunks.Add(1)
	c.bytesIn.Add(int64(n))
}

// CommandSent records one outbound command of n bytes (newline included).
func (c *Collector) CommandSent(n int) {
	if c == nil {
		return
	}
	c.commands.Add(1)
	c.bytesOut.Add(int64(n))
}

// TotalBytesIn returns the bytes received so far.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns the bytes sent so far.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ChunksReceived returns the number of inbound reads delivered.
func (c *Collector) ChunksReceived() int64 {
	if c == nil {
		return 0
	}
	return c.chunks.Load()
}

// CommandsSent returns the number of outbound commands written.
func (c *Collector) CommandsSent() int64 {
	if c == nil {
		return 0
	}
	return c.commands.Load()
}

// ── Probe metrics ────────────────────────────────────────────────────

// ProbeAttempt records one reachability attempt.
func (c *Collector) ProbeAttempt() {
	if c == nil {
		return
	}
	c.probeAttempts.Add(1)
}

// ProbeAttempts returns the number of reachability attempts made.
func (c *Collector) ProbeAttempts() int64 {
	if c == nil {
		return 0
	}
	return c.probeAttempts.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError counts a failure and keeps its message for the next
// snapshot.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns how many failures were recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a consistent view of every counter at one moment,
// shaped for JSON logging.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	ChunksReceived   int64  `json:"chunks_received"`
	CommandsSent     int64  `json:"commands_sent"`
	ProbeAttempts    int64  `json:"probe_attempts"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot captures the current counter values.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:         time.Since(c.startTime).Truncate(time.Second).String(),
		BytesIn:        c.bytesIn.Load(),
		BytesOut:       c.bytesOut.Load(),
		ChunksReceived: c.chunks.Load(),
		CommandsSent:   c.commands.Load(),
		ProbeAttempts:  c.probeAttempts.Load(),
		ErrorsTotal:    c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON renders the snapshot as indented JSON.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
