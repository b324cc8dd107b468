package config

import (
	"testing"
)

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@bastion.example.com:2222", "admin", "bastion.example.com", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

// ── Config.Validate ──────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid play",
			cfg:     Config{Host: "server", Port: 8080, ProbeAttempts: 15},
			wantErr: false,
		},
		{
			name:    "valid check",
			cfg:     Config{Host: "server", Port: 8080, ProbeAttempts: 1, Check: true},
			wantErr: false,
		},
		{
			name:    "valid raw",
			cfg:     Config{Host: "server", Port: 8080, ProbeAttempts: 1, Raw: true},
			wantErr: false,
		},
		{
			name:    "no host",
			cfg:     Config{Port: 8080, ProbeAttempts: 1},
			wantErr: true,
		},
		{
			name:    "port zero",
			cfg:     Config{Host: "server", ProbeAttempts: 1},
			wantErr: true,
		},
		{
			name:    "port too high",
			cfg:     Config{Host: "server", Port: 70000, ProbeAttempts: 1},
			wantErr: true,
		},
		{
			name:    "no probe attempts",
			cfg:     Config{Host: "server", Port: 8080},
			wantErr: true,
		},
		{
			name: "valid tunnel",
			cfg: Config{
				Host: "server", Port: 8080, ProbeAttempts: 1,
				TunnelEnabled: true, TunnelUser: "admin", TunnelHost: "gw", TunnelPort: 22,
			},
			wantErr: false,
		},
		{
			name: "tunnel missing user",
			cfg: Config{
				Host: "server", Port: 8080, ProbeAttempts: 1,
				TunnelEnabled: true, TunnelHost: "gw", TunnelPort: 22,
			},
			wantErr: true,
		},
		{
			name: "check raw conflict",
			cfg: Config{
				Host: "server", Port: 8080, ProbeAttempts: 1,
				Check: true, Raw: true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
