package capability

import (
	"context"
	"io"
	"net"
	"sync"

	fzerr "goforza/internal/errors"
	"goforza/internal/session"
)

// Relay copies data verbatim between the connection and the session's
// stdin/stdout, with no decoration and no local commands.  This is
// the --raw mode for poking at the match protocol directly or
// scripting against it.
type Relay struct{}

// Handle shuttles bytes in both directions until one side closes or
// the context is cancelled.
func (r *Relay) Handle(ctx context.Context, sess *session.Session) error {
	conn := sess.Conn()
	if conn == nil {
		return fzerr.ErrNotConnected
	}
	defer sess.Disconnect()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	// network → stdout
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := io.Copy(sess.Stdout, conn)
		errCh <- err
		cancel()
	}()

	// stdin → network
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := io.Copy(conn, sess.Stdin)
		// Half-close the write side so the server knows we are done
		// sending, but keep reading: it may still have output (the
		// farewell after quit) for the other goroutine to drain.
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.CloseWrite() //nolint:errcheck
		}
		errCh <- err
		// A normal EOF from stdin must not tear the connection down
		// before the server finishes sending.
		if err != nil {
			cancel()
		}
	}()

	<-ctx.Done()
	conn.Close() // unblock any pending reads/writes
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil && !fzerr.IsClosed(err) {
			return err
		}
	}
	return nil
}
