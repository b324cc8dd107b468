// Package cmd wires up the CLI flags and dispatches to the goforza core.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"goforza/config"
	"goforza/internal/core"
	fzerr "goforza/internal/errors"
	"goforza/internal/format"
	"goforza/internal/logging"
)

// version is overridable at link time:
//
//	go build -ldflags "-X goforza/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args, resolves the configuration, and runs the
// appropriate goforza mode.
func Execute(ctx context.Context, args []string) error {
	flags := &config.Config{}
	fs := flag.NewFlagSet("goforza", flag.ContinueOnError)

	// ── probe ────────────────────────────────────────────────────
	fs.IntVar(&flags.ProbeAttempts, "probe-attempts", 0, "Dial attempts before giving up")
	fs.DurationVar(&flags.ProbeDelay, "probe-delay", 0, "Pause between failed attempts")
	fs.DurationVar(&flags.ProbeTimeout, "probe-timeout", 0, "Per-attempt dial timeout")
	fs.BoolVarP(&flags.Check, "check", "z", false, "Probe the server and exit")

	// ── game ─────────────────────────────────────────────────────
	fs.DurationVar(&flags.Grace, "grace", 0, "Pause after quit before disconnecting")
	fs.BoolVar(&flags.Raw, "raw", false, "Verbatim relay, no game UI")
	fs.BoolVar(&flags.NoColor, "no-color", false, "Disable ANSI colors")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&flags.TunnelSpec, "tunnel", "T", "", "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&flags.SSHKeyPath, "ssh-key", "", "SSH private key file")
	fs.BoolVar(&flags.SSHPassword, "ssh-password", false, "Prompt for SSH password")
	fs.BoolVar(&flags.UseSSHAgent, "ssh-agent", false, "Use SSH agent")
	fs.BoolVar(&flags.StrictHostKey, "strict-hostkey", false, "Verify SSH host keys")
	fs.StringVar(&flags.KnownHostsPath, "known-hosts", "", "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.StringVar(&flags.LogFile, "log-file", "", "Diagnostic log path (default next to the executable)")
	fs.CountVarP(&flags.Verbose, "verbose", "v", "Increase log verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("goforza %s\n", version)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(flags, fs.Args()); err != nil {
		return err
	}

	// ── resolve layers ───────────────────────────────────────────
	cfg, err := config.NewBuilder().
		WithFlags(flags).
		WithEnv().
		WithDefaults().
		Build()
	if err != nil {
		return err
	}
	cfg.Color = !cfg.NoColor && term.IsTerminal(int(os.Stdout.Fd()))

	if dryRun {
		fmt.Printf("goforza: configurazione valida, server %s:%d\n", cfg.Host, cfg.Port)
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	log := logging.New(cfg.LogFile, cfg.Verbose)
	log.Info().Str("version", version).Str("host", cfg.Host).Int("port", cfg.Port).Msg("starting")

	mode, err := core.Build(cfg, log)
	if err != nil {
		return err
	}

	if !cfg.Check && !cfg.Raw {
		f := format.New(cfg.Color)
		fmt.Println(f.Paint(format.Cyan, banner()))
		fmt.Println(f.Paint(format.Blue,
			fmt.Sprintf("[CLIENT] Host: %s, Porta: %d", cfg.Host, cfg.Port)))
	}

	err = mode.Run(ctx)
	if fzerr.Is(err, context.Canceled) {
		// Ctrl-C is an orderly exit for an interactive client.
		return nil
	}
	return err
}

// ── helpers ──────────────────────────────────────────────────────────

// parsePositional maps the optional [host] [port] arguments onto the
// flag layer, where they share its precedence over the environment.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
	case 1:
		cfg.Host = remaining[0]
	case 2:
		cfg.Host = remaining[0]
		port, err := strconv.Atoi(remaining[1])
		if err != nil {
			return &fzerr.ConfigError{
				Field:   "port",
				Value:   remaining[1],
				Message: "not a number",
				Hint:    "use a port between 1 and 65535",
			}
		}
		cfg.Port = port
	default:
		return &fzerr.ConfigError{
			Field:   "args",
			Message: "too many arguments",
			Hint:    "usage: goforza [options] [host] [port]",
		}
	}
	return nil
}

// bannerInner is the width between the box borders of the splash.
const bannerInner = 63

var bannerArt = []string{
	"╔═══════════════════════════════════════════════════════════════╗",
	"║                                                               ║",
	"║     ███████╗ ██████╗ ██████╗ ███████╗ █████╗     ██╗  ██╗     ║",
	"║     ██╔════╝██╔═══██╗██╔══██╗╚══███╔╝██╔══██╗    ██║  ██║     ║",
	"║     █████╗  ██║   ██║██████╔╝  ███╔╝ ███████║    ███████║     ║",
	"║     ██╔══╝  ██║   ██║██╔══██╗ ███╔╝  ██╔══██║    ╚════██║     ║",
	"║     ██║     ╚██████╔╝██║  ██║███████╗██║  ██║         ██║     ║",
	"║     ╚═╝      ╚═════╝ ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝         ╚═╝     ║",
	"║                                                               ║",
	"", // title row, centred at runtime
	"║                                                               ║",
	"╚═══════════════════════════════════════════════════════════════╝",
}

// banner returns the Forza 4 splash with the version centred in the
// title row.
func banner() string {
	title := "CLIENT GO v" + version
	if len(title) > bannerInner {
		title = title[:bannerInner]
	}
	left := (bannerInner - len(title)) / 2
	right := bannerInner - len(title) - left

	rows := make([]string, len(bannerArt))
	copy(rows, bannerArt)
	rows[9] = "║" + strings.Repeat(" ", left) + title + strings.Repeat(" ", right) + "║"
	return "\n" + strings.Join(rows, "\n")
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `goforza – Forza 4 terminal client v%s

Connects to a Forza 4 match server, waits for it to come up, and runs
the interactive game loop.

Usage:
  goforza [options] [host] [port]           Play (default server:8080)
  goforza -z [host] [port]                  Check reachability, exit code only
  goforza --raw [host] [port]               Verbatim relay, no game UI
  goforza -T user@gateway [host] [port]     Play through an SSH bastion

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  SERVER_HOST, SERVER_PORT                  Server address
  FORZA_PROBE_ATTEMPTS, FORZA_PROBE_DELAY,
  FORZA_PROBE_TIMEOUT, FORZA_GRACE          Timing (Go durations, e.g. 2s)
  FORZA_TUNNEL, FORZA_SSH_KEY               SSH bastion
  FORZA_LOG, FORZA_VERBOSE                  Diagnostics

Examples:
  goforza                                   Play on server:8080
  goforza 127.0.0.1 9000                    Play on a local server
  goforza -z && echo up                     Healthcheck
  goforza -T admin@bastion server 8080      Through a bastion host
`)
}
