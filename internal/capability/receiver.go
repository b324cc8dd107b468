package capability

import (
	"fmt"
	"io"
	"unicode/utf8"

	"goforza/internal/display"
	fzerr "goforza/internal/errors"
	"goforza/internal/format"
	"goforza/internal/logging"
	"goforza/internal/session"
)

// receiver pumps inbound chunks from the session to the display.  It
// runs in its own goroutine for the whole life of the connection and
// is the only task that learns first when the remote side goes away.
type receiver struct {
	sess   *session.Session
	out    *display.Sink
	format *format.Formatter
	log    *logging.Logger
}

// run blocks on the session until the stream ends, decorating each
// chunk and printing it immediately.  Chunks display as received:
// there is no buffering and no line reassembly between the socket
// and the screen.
func (r *receiver) run() {
	for r.sess.Running() && r.sess.Connected() {
		chunk, err := r.sess.ReceiveOnce()
		if err != nil {
			r.stop(err)
			return
		}

		if !utf8.Valid(chunk) {
			if r.sess.Running() {
				r.out.Println("\n" + r.format.Paint(format.Red,
					"[ERRORE] Errore di ricezione: messaggio non decodificabile (utf-8)"))
			}
			r.log.Error().Int("bytes", len(chunk)).Msg("invalid utf-8 chunk")
			r.sess.MarkDisconnected()
			r.sess.Disconnect()
			return
		}

		r.out.Print(r.format.Decorate(string(chunk)))
	}
}

// stop reports why the stream ended and tears the session down so the
// input loop unblocks without waiting for the player to press enter.
func (r *receiver) stop(err error) {
	switch {
	case fzerr.Is(err, io.EOF):
		if r.sess.Running() {
			// The leading newline lifts the notice off any half-typed
			// input line.
			r.out.Println("\n" + r.format.Paint(format.Yellow, "[INFO] Connessione chiusa dal server."))
		}
		r.log.Info().Msg("server closed the connection")
	case !r.sess.Running():
		// Our own shutdown closed the socket under the pending read.
		r.log.Debug().Err(err).Msg("receive unblocked by local shutdown")
	default:
		r.out.Println("\n" + r.format.Paint(format.Red,
			fmt.Sprintf("[ERRORE] Errore di ricezione: %v", err)))
		r.log.Error().Err(err).Msg("receive failed")
	}

	r.sess.MarkDisconnected()
	r.sess.Disconnect()
}
