package config

// loader.go - layered configuration resolution.
//
// Precedence order (highest wins):
//   1. CLI flags  (parsed by cmd/root.go)
//   2. Environment variables  (SERVER_HOST, SERVER_PORT, FORZA_*)
//   3. Defaults   (defaults.go)
//
// Layers are merged front to back with first-non-zero-wins semantics,
// so a layer only fills the fields the layers before it left unset.

import (
	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"

	fzerr "goforza/internal/errors"
)

// Builder accumulates configuration layers and produces the final,
// validated Config.
type Builder struct {
	cfg *Config
	err error
}

// NewBuilder starts an empty configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: &Config{}}
}

// WithFlags merges the CLI flag layer.  Call it first so flags beat
// every other source.
func (b *Builder) WithFlags(flags *Config) *Builder {
	return b.merge(flags)
}

// WithEnv merges the environment variable layer.
func (b *Builder) WithEnv() *Builder {
	if b.err != nil {
		return b
	}
	layer := &Config{}
	if err := env.Parse(layer); err != nil {
		b.err = &fzerr.ConfigError{
			Field:   "env",
			Message: err.Error(),
			Hint:    "check the SERVER_* and FORZA_* variables",
		}
		return b
	}
	return b.merge(layer)
}

// WithDefaults merges the built-in defaults.  Call it last.
func (b *Builder) WithDefaults() *Builder {
	return b.merge(Defaults())
}

// Build finalizes derived fields and validates the result.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.Finalize(); err != nil {
		return nil, err
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	return b.cfg, nil
}

func (b *Builder) merge(layer *Config) *Builder {
	if b.err != nil || layer == nil {
		return b
	}
	if err := mergo.Merge(b.cfg, *layer); err != nil {
		b.err = err
	}
	return b
}
