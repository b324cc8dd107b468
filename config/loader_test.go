package config

import (
	"errors"
	"testing"
	"time"

	fzerr "goforza/internal/errors"
)

func TestBuilder_DefaultsOnly(t *testing.T) {
	cfg, err := NewBuilder().WithDefaults().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Host != "server" {
		t.Errorf("Host = %q, want %q", cfg.Host, "server")
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.ProbeAttempts != 15 {
		t.Errorf("ProbeAttempts = %d, want 15", cfg.ProbeAttempts)
	}
	if cfg.ProbeDelay != 2*time.Second {
		t.Errorf("ProbeDelay = %v, want 2s", cfg.ProbeDelay)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want 5s", cfg.ProbeTimeout)
	}
	if cfg.Grace != 300*time.Millisecond {
		t.Errorf("Grace = %v, want 300ms", cfg.Grace)
	}
}

func TestBuilder_EnvLayer(t *testing.T) {
	t.Setenv("SERVER_HOST", "arena.example.com")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FORZA_PROBE_ATTEMPTS", "3")
	t.Setenv("FORZA_PROBE_DELAY", "500ms")
	t.Setenv("FORZA_GRACE", "1s")
	t.Setenv("FORZA_LOG", "/tmp/forza.log")

	cfg, err := NewBuilder().WithEnv().WithDefaults().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Host != "arena.example.com" {
		t.Errorf("Host = %q, want %q", cfg.Host, "arena.example.com")
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.ProbeAttempts != 3 {
		t.Errorf("ProbeAttempts = %d, want 3", cfg.ProbeAttempts)
	}
	if cfg.ProbeDelay != 500*time.Millisecond {
		t.Errorf("ProbeDelay = %v, want 500ms", cfg.ProbeDelay)
	}
	if cfg.Grace != time.Second {
		t.Errorf("Grace = %v, want 1s", cfg.Grace)
	}
	if cfg.LogFile != "/tmp/forza.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	// Fields with no env var still come from defaults.
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want 5s", cfg.ProbeTimeout)
	}
}

func TestBuilder_FlagsBeatEnv(t *testing.T) {
	t.Setenv("SERVER_HOST", "env-host")
	t.Setenv("SERVER_PORT", "7000")

	flags := &Config{Host: "cli-host"}
	cfg, err := NewBuilder().WithFlags(flags).WithEnv().WithDefaults().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Host != "cli-host" {
		t.Errorf("Host = %q, want flag value %q", cfg.Host, "cli-host")
	}
	// Port was not set on the flag layer, so env wins over defaults.
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want env value 7000", cfg.Port)
	}
}

func TestBuilder_SSHEnvFields(t *testing.T) {
	t.Setenv("FORZA_TUNNEL", "admin@bastion:2222")
	t.Setenv("FORZA_SSH_KEY", "/home/user/.ssh/id_ed25519")
	t.Setenv("FORZA_SSH_AGENT", "true")
	t.Setenv("FORZA_STRICT_HOSTKEY", "true")
	t.Setenv("FORZA_KNOWN_HOSTS", "/custom/known_hosts")

	cfg, err := NewBuilder().WithEnv().WithDefaults().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !cfg.TunnelEnabled {
		t.Fatal("TunnelEnabled should be true")
	}
	if cfg.TunnelUser != "admin" {
		t.Errorf("TunnelUser = %q, want %q", cfg.TunnelUser, "admin")
	}
	if cfg.TunnelHost != "bastion" {
		t.Errorf("TunnelHost = %q, want %q", cfg.TunnelHost, "bastion")
	}
	if cfg.TunnelPort != 2222 {
		t.Errorf("TunnelPort = %d, want 2222", cfg.TunnelPort)
	}
	if cfg.SSHKeyPath != "/home/user/.ssh/id_ed25519" {
		t.Errorf("SSHKeyPath = %q", cfg.SSHKeyPath)
	}
	if !cfg.UseSSHAgent {
		t.Error("UseSSHAgent should be true")
	}
	if !cfg.StrictHostKey {
		t.Error("StrictHostKey should be true")
	}
	if cfg.KnownHostsPath != "/custom/known_hosts" {
		t.Errorf("KnownHostsPath = %q", cfg.KnownHostsPath)
	}
}

func TestBuilder_InvalidEnvValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	_, err := NewBuilder().WithEnv().WithDefaults().Build()
	if err == nil {
		t.Fatal("expected an error for a malformed SERVER_PORT")
	}
	var cerr *fzerr.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
}

func TestBuilder_ValidationFailureSurfaces(t *testing.T) {
	flags := &Config{Port: 99999}
	_, err := NewBuilder().WithFlags(flags).WithDefaults().Build()
	if err == nil {
		t.Fatal("expected an error for an out-of-range port")
	}
	var cerr *fzerr.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if cerr.Field != "port" {
		t.Errorf("Field = %q, want %q", cerr.Field, "port")
	}
}

func TestBuilder_Verbose(t *testing.T) {
	t.Setenv("FORZA_VERBOSE", "2")
	cfg, err := NewBuilder().WithEnv().WithDefaults().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.Verbose != 2 {
		t.Errorf("Verbose = %d, want 2", cfg.Verbose)
	}
}
