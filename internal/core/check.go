package core

import (
	"context"

	"goforza/internal/logging"
	"goforza/internal/probe"
	"goforza/internal/transport"
)

// CheckMode runs the readiness probe and exits without playing — the
// -z flag.  Scripts and container healthchecks use it to learn
// whether the match server accepts connections, via the exit code.
type CheckMode struct {
	Probe  *probe.Probe
	Dialer transport.Dialer
	Log    *logging.Logger
}

// Run probes the server through the full attempt budget.  The
// underlying transport is closed when Run returns.
func (m *CheckMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()
	return m.Probe.Run(ctx)
}
