package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"goforza/internal/capability"
	"goforza/internal/format"
	"goforza/internal/logging"
	"goforza/internal/metrics"
	"goforza/internal/probe"
	"goforza/internal/session"
	"goforza/internal/transport"
)

// PlayMode waits for the match server to come up, establishes the game
// session, and hands it to a capability — the default client mode.
type PlayMode struct {
	Probe      *probe.Probe
	Dialer     transport.Dialer
	Capability capability.Capability
	Host       string
	Port       int
	Format     *format.Formatter
	Log        *logging.Logger
	Stats      *metrics.Collector

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *PlayMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *PlayMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run probes the server, connects the session, and runs the capability
// until the game ends.  The transport is closed when Run returns.
func (m *PlayMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	if err := m.Probe.Run(ctx); err != nil {
		return err
	}

	sess := session.New(m.Host, m.Port, m.Dialer, m.Log, m.Stats)
	sess.Stdin = m.stdin()
	sess.Stdout = m.stdout()

	if err := sess.Connect(ctx); err != nil {
		fmt.Fprintln(m.stdout(), m.Format.Paint(format.Red,
			fmt.Sprintf("[ERRORE] Connessione fallita: %v", err)))
		return err
	}
	defer sess.Disconnect()

	return m.Capability.Handle(ctx, sess)
}
