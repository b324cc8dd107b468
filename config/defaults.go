package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultHost is the match server's hostname on the game network.
	DefaultHost = "server"

	// DefaultPort is the match server's listening port.
	DefaultPort = 8080

	// DefaultProbeAttempts is how many times the readiness probe dials
	// before giving up on the server.
	DefaultProbeAttempts = 15

	// DefaultProbeDelay is the pause between probe attempts.
	DefaultProbeDelay = 2 * time.Second

	// DefaultProbeTimeout bounds a single probe dial.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultGrace is the pause between sending a final quit and
	// tearing the connection down, so the server's goodbye can still
	// arrive and be displayed.
	DefaultGrace = 300 * time.Millisecond

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the TCP dial timeout for the SSH bastion.
	DefaultConnTimeout = 30 * time.Second
)

// Defaults returns the built-in configuration layer, merged in last so
// flags and environment variables always win.
func Defaults() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		ProbeAttempts: DefaultProbeAttempts,
		ProbeDelay:    DefaultProbeDelay,
		ProbeTimeout:  DefaultProbeTimeout,
		Grace:         DefaultGrace,
	}
}
