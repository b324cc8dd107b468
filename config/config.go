// Package config defines the runtime configuration for goforza and
// resolves it from three layers: CLI flags, environment variables,
// and built-in defaults (highest wins).
package config

import (
	"regexp"
	"strconv"
	"time"

	fzerr "goforza/internal/errors"
)

// Config holds every tuneable for a single client run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host string `env:"SERVER_HOST"`
	Port int    `env:"SERVER_PORT"`

	// ── Readiness probe ──────────────────────────────────────────────
	ProbeAttempts int           `env:"FORZA_PROBE_ATTEMPTS"`
	ProbeDelay    time.Duration `env:"FORZA_PROBE_DELAY"`
	ProbeTimeout  time.Duration `env:"FORZA_PROBE_TIMEOUT"`

	// ── Game loop ────────────────────────────────────────────────────
	Grace   time.Duration `env:"FORZA_GRACE"` // pause after quit
	Raw     bool          `env:"FORZA_RAW"`   // verbatim passthrough, no game UI
	Check   bool          // -z: probe and exit
	NoColor bool          `env:"FORZA_NO_COLOR"`
	Color   bool          // resolved by cmd from NoColor + terminal detection

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string `env:"FORZA_TUNNEL"` // raw user@host[:port]
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string `env:"FORZA_SSH_KEY"`
	SSHPassword    bool   `env:"FORZA_SSH_PASSWORD"` // true → prompt interactively
	UseSSHAgent    bool   `env:"FORZA_SSH_AGENT"`
	StrictHostKey  bool   `env:"FORZA_STRICT_HOSTKEY"`
	KnownHostsPath string `env:"FORZA_KNOWN_HOSTS"`

	// ── Diagnostics ──────────────────────────────────────────────────
	LogFile string `env:"FORZA_LOG"`
	Verbose int    `env:"FORZA_VERBOSE"`
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe is the [user@]host[:port] shape of a --tunnel argument.
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec splits a spec like "admin@bastion.example.com:2222"
// into its parts.  A missing port means the SSH default, 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, &fzerr.ConfigError{
			Field:   "tunnel",
			Value:   spec,
			Message: "invalid tunnel spec",
			Hint:    "expected [user@]host[:port]",
		}
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, &fzerr.ConfigError{
				Field:   "tunnel",
				Value:   m[3],
				Message: "invalid tunnel port",
				Hint:    "use a port between 1 and 65535",
			}
		}
	}
	if host == "" {
		return "", "", 0, &fzerr.ConfigError{
			Field:   "tunnel",
			Message: "tunnel host is required",
		}
	}
	return user, host, port, nil
}

// ── Finalisation & validation ────────────────────────────────────────

// Finalize derives computed fields after the layers are merged: the
// tunnel spec is split into its parts.  Must run before Validate.
func (c *Config) Finalize() error {
	if c.TunnelSpec != "" {
		user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
		if err != nil {
			return err
		}
		c.TunnelEnabled = true
		c.TunnelUser = user
		c.TunnelHost = host
		c.TunnelPort = port
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &fzerr.ConfigError{
			Field:   "host",
			Message: "server host is required",
			Hint:    "pass it as the first argument or set SERVER_HOST",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &fzerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    "use a port between 1 and 65535",
		}
	}
	if c.ProbeAttempts < 1 {
		return &fzerr.ConfigError{
			Field:   "probe-attempts",
			Value:   c.ProbeAttempts,
			Message: "at least one attempt is required",
		}
	}
	if c.ProbeDelay < 0 || c.ProbeTimeout < 0 || c.Grace < 0 {
		return &fzerr.ConfigError{
			Field:   "probe-delay",
			Message: "durations must not be negative",
		}
	}
	if c.TunnelEnabled && c.TunnelUser == "" {
		return &fzerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: "tunnel user is required",
			Hint:    "use user@host[:port]",
		}
	}
	if c.Check && c.Raw {
		return &fzerr.ConfigError{
			Field:   "check",
			Message: "--check and --raw are mutually exclusive",
		}
	}
	return nil
}
