// Package format decorates protocol messages with ANSI colors.
//
// The match server emits plain text tagged with a fixed vocabulary
// ([ERRORE], [OK], [TURNO], ...).  Decoration is a stateless
// byte-level substitution over that vocabulary with no assumption
// that the input is line-aligned.  A chunk that slices a tag in
// half simply passes through untouched.
package format

import "strings"

// ── ANSI escapes ─────────────────────────────────────────────────────

// Bright ANSI color escapes used across the client UI.
const (
	Reset   = "\033[0m"
	Red     = "\033[91m"
	Green   = "\033[92m"
	Yellow  = "\033[93m"
	Blue    = "\033[94m"
	Magenta = "\033[95m"
	Cyan    = "\033[96m"
	White   = "\033[97m"
)

// ClearScreen wipes the terminal and homes the cursor.
const ClearScreen = "\033[2J\033[H"

// ── Substitution table ───────────────────────────────────────────────

type rule struct {
	old string
	new string
}

// rules maps each protocol token to its colored form.  Order matters
// only in that it is fixed; the tokens never overlap.  The board
// symbols keep their delimiting spaces outside the escapes so column
// alignment survives decoration.
var rules = []rule{
	{"[ERRORE]", Red + "[ERRORE]" + Reset},
	{"[OK]", Green + "[OK]" + Reset},
	{"[NOTIFICA]", Cyan + "[NOTIFICA]" + Reset},
	{"[RICHIESTA]", Yellow + "[RICHIESTA]" + Reset},
	{"[TURNO]", Green + "[TURNO]" + Reset},
	{"[INFO]", Blue + "[INFO]" + Reset},
	{"[STATUS]", Magenta + "[STATUS]" + Reset},
	{" X ", " " + Red + "X" + Reset + " "},
	{" O ", " " + Yellow + "O" + Reset + " "},
	{"HAI VINTO!", Green + "HAI VINTO!" + Reset},
	{"HAI PERSO!", Red + "HAI PERSO!" + Reset},
	{"PAREGGIO!", Yellow + "PAREGGIO!" + Reset},
}

// ── Formatter ────────────────────────────────────────────────────────

// Formatter applies the substitution table to inbound text.  A
// disabled formatter (plain terminals, --no-color) is the identity
// function, so callers never branch on color support themselves.
type Formatter struct {
	enabled bool
}

// New returns a Formatter.  Pass enabled=false to emit plain text.
func New(enabled bool) *Formatter {
	return &Formatter{enabled: enabled}
}

// Enabled reports whether decoration is active.
func (f *Formatter) Enabled() bool {
	return f != nil && f.enabled
}

// Decorate replaces every occurrence of every known token with its
// colored form.  Text outside the tokens is returned byte-identical,
// and input with no tokens comes back unchanged.
func (f *Formatter) Decorate(s string) string {
	if !f.Enabled() {
		return s
	}
	for _, r := range rules {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return s
}

// Paint wraps s in the given color escape.  Used for client-side
// notices (probe progress, shutdown messages) so they match the
// decorated server output.  A disabled formatter returns s as is.
func (f *Formatter) Paint(color, s string) string {
	if !f.Enabled() || s == "" {
		return s
	}
	return color + s + Reset
}
