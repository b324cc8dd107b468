// Package core is the orchestration layer.  It composes transports,
// the readiness probe, and capabilities into complete operational
// modes and provides a builder that selects the right mode from a
// Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  capability  →  core  →  cmd (CLI)
//
// The builder in this package is the single dispatch point: a Config
// maps to exactly one Mode, and the mode owns its full lifecycle from
// the readiness probe to teardown.
package core

import "context"

// Mode represents a complete operational mode of goforza (play the
// game, or check server reachability).  Each mode owns its full
// lifecycle from connection establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
