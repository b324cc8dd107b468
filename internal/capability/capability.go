// Package capability defines what happens over an established
// connection.  Each Capability encapsulates a single behaviour
// (play the game interactively, relay raw I/O) and operates on a
// Session rather than a raw net.Conn, which keeps capabilities
// testable and decoupled from transport details.
package capability

import (
	"context"

	"goforza/internal/session"
)

// Capability handles the server connection according to a specific
// behaviour.
type Capability interface {
	// Handle runs the capability against the given session.
	// It blocks until the connection is done or the context is
	// cancelled.
	Handle(ctx context.Context, sess *session.Session) error
}
