package capability

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"goforza/internal/display"
	fzerr "goforza/internal/errors"
	"goforza/internal/format"
	"goforza/internal/logging"
	"goforza/internal/session"
)

// DefaultGrace is how long the client lingers after sending quit, so
// the server's farewell can arrive and display before teardown.
const DefaultGrace = 300 * time.Millisecond

// Play is the interactive game capability: a background receiver
// pumps server chunks to the display while the foreground loop reads
// player commands.  Lines starting with "/" are local commands and
// never reach the wire; everything else is forwarded verbatim.
type Play struct {
	Format *format.Formatter
	Log    *logging.Logger
	Grace  time.Duration // pause after quit (default 300ms)
}

// Handle runs the game until the player quits, input ends, the
// context is cancelled, or the server goes away.  All exits converge
// on the same idempotent session teardown.
func (p *Play) Handle(ctx context.Context, sess *session.Session) error {
	grace := p.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	log := p.Log
	if log == nil {
		log = logging.Nop()
	}
	f := p.Format

	out := display.New(sess.Stdout)
	defer out.Close()

	out.Println(f.Paint(format.Green, fmt.Sprintf("[CLIENT] Connesso a %s", sess.Addr())))
	out.Print("Digita /help per la guida locale o 'help' per i comandi di gioco.\n\n")

	rcv := &receiver{sess: sess, out: out, format: f, log: log}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rcv.run()
	}()

	// Feed stdin lines through a channel so the loop below can also
	// react to cancellation and to a disconnect noticed elsewhere.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(sess.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-sess.Done():
				return
			}
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			out.Print("\n" + f.Paint(format.Yellow, "[CLIENT] Interruzione...") + "\n")
			log.Info().Msg("interrupted")
			if sess.Connected() {
				if err := sess.Send("quit"); err == nil {
					time.Sleep(grace)
				}
			}
			break loop

		case <-sess.Done():
			break loop

		case line, ok := <-lines:
			if !ok {
				log.Debug().Msg("input stream ended")
				break loop
			}
			if p.handleLine(sess, out, log, line, grace) {
				break loop
			}
		}
	}

	sess.Disconnect()
	wg.Wait()
	out.Println("\n" + f.Paint(format.Cyan, "[CLIENT] Disconnesso."))
	return nil
}

// handleLine processes one line of player input and reports whether
// the loop should exit.
func (p *Play) handleLine(sess *session.Session, out *display.Sink, log *logging.Logger, line string, grace time.Duration) bool {
	if !sess.Connected() {
		return true
	}

	if strings.HasPrefix(line, "/") {
		return p.localCommand(sess, out, log, line, grace)
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}

	// Remote quit keeps the player's exact spelling on the wire.
	if low := strings.ToLower(trimmed); low == "quit" || low == "exit" {
		p.send(sess, out, log, line)
		time.Sleep(grace)
		return true
	}

	// The first non-empty line answers the server's username prompt.
	if sess.Username() == "" {
		sess.SetUsername(trimmed)
		log.Debug().Str("username", trimmed).Msg("username captured")
	}

	p.send(sess, out, log, line)
	return false
}

// localCommand dispatches a "/"-prefixed command.  Local commands
// never reach the wire except /quit and /exit, which translate to the
// protocol's literal quit.
func (p *Play) localCommand(sess *session.Session, out *display.Sink, log *logging.Logger, line string, grace time.Duration) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/help":
		p.printHelp(sess, out)
		return false

	case "/clear":
		out.Print(format.ClearScreen)
		return false

	case "/quit", "/exit":
		log.Info().Msg("local quit")
		p.send(sess, out, log, "quit")
		time.Sleep(grace)
		return true

	default:
		out.Println(p.Format.Paint(format.Yellow, "Comando locale sconosciuto. Usa /help"))
		return false
	}
}

// send forwards one command, translating failures into the player's
// error notices.  A failed send does not end the loop: the receiver
// decides when the session is really gone.
func (p *Play) send(sess *session.Session, out *display.Sink, log *logging.Logger, line string) {
	err := sess.Send(line)
	switch {
	case err == nil:
	case fzerr.Is(err, fzerr.ErrNotConnected):
		out.Println(p.Format.Paint(format.Red, "[ERRORE] Non connesso al server."))
	default:
		out.Println(p.Format.Paint(format.Red, fmt.Sprintf("[ERRORE] Invio fallito: %v", err)))
		log.Error().Err(err).Msg("send failed")
	}
}

// printHelp writes the local command guide as one block so inbound
// chunks cannot interleave with it.
func (p *Play) printHelp(sess *session.Session, out *display.Sink) {
	user := sess.Username()
	if user == "" {
		user = "Non impostato"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(p.Format.Paint(format.Cyan, "╔════════════════════════════════════════╗") + "\n")
	sb.WriteString(p.Format.Paint(format.Cyan, "║          GUIDA COMANDI LOCALI          ║") + "\n")
	sb.WriteString(p.Format.Paint(format.Cyan, "╚════════════════════════════════════════╝") + "\n")
	fmt.Fprintf(&sb, "  Server: %s\n", sess.Addr())
	fmt.Fprintf(&sb, "  Utente: %s\n\n", user)
	sb.WriteString("  /help   - Mostra questa guida\n")
	sb.WriteString("  /clear  - Pulisce lo schermo\n")
	sb.WriteString("  /quit   - Esci dal gioco\n")
	sb.WriteString("  /exit   - Esci dal gioco\n\n")
	sb.WriteString("  Usa 'help' (senza /) per i comandi del server.\n\n")
	out.Print(sb.String())
}
