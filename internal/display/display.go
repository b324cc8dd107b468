// Package display serializes everything the player sees.
//
// Inbound chunks arrive on a background goroutine while the input
// loop prints its own notices from the foreground, so writing to
// stdout directly from both would interleave mid-line.  A Sink routes
// every message through one channel drained by a single writer
// goroutine: whole messages come out in submission order, nothing
// tears.
package display

import (
	"fmt"
	"io"
	"sync"
)

// queueSize bounds how many messages may be in flight before
// producers block.  Inbound chunks are at most 4096 bytes each, so
// even a chatty server stays far from real memory pressure.
const queueSize = 64

// Sink is an ordered, concurrency-safe writer.  Messages are written
// verbatim: callers that want a line break include it themselves,
// matching the chunk-is-the-display-unit rule for server output.
type Sink struct {
	ch   chan string
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// New starts the writer goroutine draining into w.
func New(w io.Writer) *Sink {
	s := &Sink{
		ch:   make(chan string, queueSize),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		for msg := range s.ch {
			io.WriteString(w, msg)
		}
	}()
	return s
}

// Print queues msg for writing exactly as given.  After Close the
// message is dropped silently; a shutdown race must not panic the
// producer.
func (s *Sink) Print(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- msg
}

// Println queues msg with a trailing newline.
func (s *Sink) Println(msg string) {
	s.Print(msg + "\n")
}

// Printf formats and queues a message.
func (s *Sink) Printf(format string, args ...any) {
	s.Print(fmt.Sprintf(format, args...))
}

// Close stops accepting messages, waits until everything already
// queued has been written, and returns.  Safe to call more than once.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	<-s.done
}
