package capability

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"goforza/internal/format"
	"goforza/internal/logging"
	"goforza/internal/metrics"
	"goforza/internal/session"
	"goforza/internal/transport"
)

// holdReader blocks until released, then reports EOF.  Appended after
// a scripted stdin it mimics an interactive terminal where no further
// input arrives but the stream does not end either.
type holdReader struct {
	release <-chan struct{}
}

func (h holdReader) Read([]byte) (int, error) {
	<-h.release
	return 0, io.EOF
}

// collectServer accepts one connection, optionally writes a banner,
// then records everything the client sends until the client closes.
func collectServer(t *testing.T, banner string) (host string, port int, got <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ch := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if banner != "" {
			conn.Write([]byte(banner))
		}
		data, _ := io.ReadAll(conn)
		ch <- data
	}()

	h, p := mustSplit(t, ln.Addr().String())
	return h, p, ch
}

func mustSplit(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %q: %v", addr, err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// newPlaySession connects a session to host:port with a scripted
// stdin and a captured stdout.  The hold reader keeps stdin open
// until the session shuts down, like a real terminal.
func newPlaySession(t *testing.T, host string, port int, script string) (*session.Session, *bytes.Buffer) {
	t.Helper()

	sess := session.New(host, port, &transport.TCPDialer{Timeout: 2 * time.Second}, logging.Nop(), metrics.New())

	var out bytes.Buffer
	sess.Stdout = &out
	sess.Stdin = io.MultiReader(strings.NewReader(script), holdReader{release: sess.Done()})

	if err := sess.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return sess, &out
}

func testPlay() *Play {
	return &Play{
		Format: format.New(false),
		Log:    logging.Nop(),
		Grace:  20 * time.Millisecond,
	}
}

func wireFrom(t *testing.T, got <-chan []byte) string {
	t.Helper()
	select {
	case data := <-got:
		return string(data)
	case <-time.After(3 * time.Second):
		t.Fatal("server never saw the client close")
		return ""
	}
}

func TestPlay_LocalQuitSendsLiteralQuit(t *testing.T) {
	host, port, got := collectServer(t, "")
	sess, out := newPlaySession(t, host, port, "/quit\n")

	if err := testPlay().Handle(context.Background(), sess); err != nil {
		t.Fatalf("Handle = %v", err)
	}

	if wire := wireFrom(t, got); wire != "quit\n" {
		t.Errorf("wire = %q, want %q", wire, "quit\n")
	}
	if !strings.Contains(out.String(), "[CLIENT] Disconnesso.") {
		t.Errorf("missing farewell notice:\n%s", out.String())
	}
	if strings.Contains(out.String(), "[ERRORE]") {
		t.Errorf("voluntary quit produced an error notice:\n%s", out.String())
	}
}

func TestPlay_BareQuitKeepsPlayerSpelling(t *testing.T) {
	host, port, got := collectServer(t, "")
	sess, _ := newPlaySession(t, host, port, "QUIT\n")

	testPlay().Handle(context.Background(), sess)

	if wire := wireFrom(t, got); wire != "QUIT\n" {
		t.Errorf("wire = %q, want %q", wire, "QUIT\n")
	}
}

func TestPlay_EmptyLinesNeverReachTheWire(t *testing.T) {
	host, port, got := collectServer(t, "")
	sess, _ := newPlaySession(t, host, port, "\n   \n/quit\n")

	testPlay().Handle(context.Background(), sess)

	if wire := wireFrom(t, got); wire != "quit\n" {
		t.Errorf("wire = %q, want only the quit command", wire)
	}
}

func TestPlay_CommandsForwardVerbatim(t *testing.T) {
	host, port, got := collectServer(t, "")
	sess, _ := newPlaySession(t, host, port, "alice\nmove 4\n/quit\n")

	testPlay().Handle(context.Background(), sess)

	if wire := wireFrom(t, got); wire != "alice\nmove 4\nquit\n" {
		t.Errorf("wire = %q, want alice, move 4, quit", wire)
	}
	if sess.Username() != "alice" {
		t.Errorf("username = %q, want alice", sess.Username())
	}
}

func TestPlay_UnknownLocalCommandStaysLocal(t *testing.T) {
	host, port, got := collectServer(t, "")
	sess, out := newPlaySession(t, host, port, "/lista\n/quit\n")

	testPlay().Handle(context.Background(), sess)

	if wire := wireFrom(t, got); wire != "quit\n" {
		t.Errorf("wire = %q, unknown local command leaked", wire)
	}
	if !strings.Contains(out.String(), "Comando locale sconosciuto. Usa /help") {
		t.Errorf("missing unknown-command notice:\n%s", out.String())
	}
}

func TestPlay_HelpPanel(t *testing.T) {
	host, port, _ := collectServer(t, "")
	sess, out := newPlaySession(t, host, port, "giulia\n/help\n/quit\n")

	testPlay().Handle(context.Background(), sess)

	text := out.String()
	for _, want := range []string{
		"GUIDA COMANDI LOCALI",
		"Utente: giulia",
		"Server: " + sess.Addr(),
		"/clear  - Pulisce lo schermo",
		"Usa 'help' (senza /) per i comandi del server.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("help panel missing %q:\n%s", want, text)
		}
	}
}

func TestPlay_HelpBeforeLogin(t *testing.T) {
	host, port, _ := collectServer(t, "")
	sess, out := newPlaySession(t, host, port, "/help\n/quit\n")

	testPlay().Handle(context.Background(), sess)

	if !strings.Contains(out.String(), "Utente: Non impostato") {
		t.Errorf("expected placeholder username:\n%s", out.String())
	}
}

func TestPlay_ClearScreen(t *testing.T) {
	host, port, _ := collectServer(t, "")
	sess, out := newPlaySession(t, host, port, "/clear\n/quit\n")

	testPlay().Handle(context.Background(), sess)

	if !strings.Contains(out.String(), format.ClearScreen) {
		t.Error("missing clear-screen escape in output")
	}
}

func TestPlay_DecoratesInboundChunks(t *testing.T) {
	host, port, _ := collectServer(t, "[OK] Benvenuto su FORZA 4!\n")
	sess, out := newPlaySession(t, host, port, "")

	p := testPlay()
	p.Format = format.New(true)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Handle(context.Background(), sess)
	}()

	// Give the banner time to arrive, then end the game from the
	// server side.
	time.Sleep(150 * time.Millisecond)
	sess.Disconnect()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Handle did not return after disconnect")
	}

	if want := format.Green + "[OK]" + format.Reset; !strings.Contains(out.String(), want) {
		t.Errorf("banner not decorated:\n%q", out.String())
	}
}

func TestPlay_ServerCloseEndsLoopWithoutInput(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Write([]byte("[TURNO] Tocca a te!\n"))
		time.Sleep(50 * time.Millisecond)
		conn.Close()
	}()

	host, port := mustSplit(t, ln.Addr().String())
	sess, out := newPlaySession(t, host, port, "") // no input at all

	done := make(chan struct{})
	go func() {
		defer close(done)
		testPlay().Handle(context.Background(), sess)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("loop kept waiting for input after the server closed")
	}

	text := out.String()
	if !strings.Contains(text, "[INFO] Connessione chiusa dal server.") {
		t.Errorf("missing remote-close notice:\n%s", text)
	}
	if !strings.Contains(text, "[CLIENT] Disconnesso.") {
		t.Errorf("missing farewell notice:\n%s", text)
	}
	if i, j := strings.Index(text, "Connessione chiusa"), strings.Index(text, "Disconnesso."); i > j {
		t.Errorf("notices out of order:\n%s", text)
	}
}

func TestPlay_ContextCancelSendsQuit(t *testing.T) {
	host, port, got := collectServer(t, "")
	sess, out := newPlaySession(t, host, port, "") // player never types

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		testPlay().Handle(ctx, sess)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Handle did not return after cancellation")
	}

	if wire := wireFrom(t, got); wire != "quit\n" {
		t.Errorf("wire = %q, want a best-effort quit", wire)
	}
	if !strings.Contains(out.String(), "[CLIENT] Interruzione...") {
		t.Errorf("missing interrupt notice:\n%s", out.String())
	}
}

func TestPlay_StdinEOFEndsQuietly(t *testing.T) {
	host, port, got := collectServer(t, "")

	sess := session.New(host, port, &transport.TCPDialer{Timeout: 2 * time.Second}, logging.Nop(), metrics.New())
	var out bytes.Buffer
	sess.Stdout = &out
	sess.Stdin = strings.NewReader("") // immediate EOF, like a closed pipe

	if err := sess.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	testPlay().Handle(context.Background(), sess)

	// EOF is termination, not a quit: nothing goes on the wire.
	if wire := wireFrom(t, got); wire != "" {
		t.Errorf("wire = %q, want nothing", wire)
	}
	if !strings.Contains(out.String(), "[CLIENT] Disconnesso.") {
		t.Errorf("missing farewell notice:\n%s", out.String())
	}
}
