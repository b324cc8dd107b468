package core

import (
	"goforza/config"
	"goforza/internal/capability"
	"goforza/internal/format"
	"goforza/internal/logging"
	"goforza/internal/metrics"
	"goforza/internal/probe"
	"goforza/internal/transport"
	"goforza/tunnel"
)

// Build constructs the appropriate Mode from the given configuration.
// This is the single dispatch point between the CLI and the runtime.
func Build(cfg *config.Config, log *logging.Logger) (Mode, error) {
	stats := metrics.New()
	f := format.New(cfg.Color)
	dialer := buildDialer(cfg, log)
	p := buildProbe(cfg, dialer, f, log, stats)

	if cfg.Check {
		return &CheckMode{
			Probe:  p,
			Dialer: dialer,
			Log:    log,
		}, nil
	}

	return &PlayMode{
		Probe:      p,
		Dialer:     dialer,
		Capability: buildCapability(cfg, f, log),
		Host:       cfg.Host,
		Port:       cfg.Port,
		Format:     f,
		Log:        log,
		Stats:      stats,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

// buildProbe wires the readiness probe to the same dialer the session
// will use, so a tunnelled setup is probed through the tunnel.
func buildProbe(cfg *config.Config, d transport.Dialer, f *format.Formatter, log *logging.Logger, stats *metrics.Collector) *probe.Probe {
	return &probe.Probe{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Attempts: cfg.ProbeAttempts,
		Delay:    cfg.ProbeDelay,
		Timeout:  cfg.ProbeTimeout,
		Dialer:   d,
		Format:   f,
		Log:      log,
		Stats:    stats,
	}
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, log *logging.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
		}, log)
	}

	return &transport.TCPDialer{Timeout: cfg.ProbeTimeout}
}

// buildCapability selects the per-session behaviour.
func buildCapability(cfg *config.Config, f *format.Formatter, log *logging.Logger) capability.Capability {
	if cfg.Raw {
		return &capability.Relay{}
	}
	return &capability.Play{
		Format: f,
		Log:    log,
		Grace:  cfg.Grace,
	}
}
