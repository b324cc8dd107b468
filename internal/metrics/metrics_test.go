package metrics

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestCollector_Chunks(t *testing.T) {
	c := New()

	c.ChunkReceived(1024)
	c.ChunkReceived(100)

	if c.ChunksReceived() != 2 {
		t.Errorf("chunks = %d, want 2", c.ChunksReceived())
	}
	if c.TotalBytesIn() != 1124 {
		t.Errorf("bytes in = %d, want 1124", c.TotalBytesIn())
	}
}

func TestCollector_Commands(t *testing.T) {
	c := New()

	c.CommandSent(len("move 4\n"))
	c.CommandSent(len("grid\n"))

	if c.CommandsSent() != 2 {
		t.Errorf("commands = %d, want 2", c.CommandsSent())
	}
	if c.TotalBytesOut() != 12 {
		t.Errorf("bytes out = %d, want 12", c.TotalBytesOut())
	}
}

func TestCollector_ProbeAttempts(t *testing.T) {
	c := New()

	c.ProbeAttempt()
	c.ProbeAttempt()
	c.ProbeAttempt()

	if c.ProbeAttempts() != 3 {
		t.Errorf("probe attempts = %d, want 3", c.ProbeAttempts())
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
}

func TestCollector_Snapshot(t *testing.T) {
	c := New()
	c.ChunkReceived(100)
	c.CommandSent(50)
	c.ProbeAttempt()
	c.RecordError("test")

	snap := c.Snapshot()
	if snap.BytesIn != 100 {
		t.Errorf("snap bytes in = %d", snap.BytesIn)
	}
	if snap.ChunksReceived != 1 {
		t.Errorf("snap chunks = %d", snap.ChunksReceived)
	}
	if snap.CommandsSent != 1 {
		t.Errorf("snap commands = %d", snap.CommandsSent)
	}
	if snap.ProbeAttempts != 1 {
		t.Errorf("snap probe attempts = %d", snap.ProbeAttempts)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("snap errors = %d", snap.ErrorsTotal)
	}
	if snap.LastErrorMessage != "test" {
		t.Errorf("snap error msg = %q", snap.LastErrorMessage)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.CommandSent(42)

	raw := c.JSON()
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.BytesOut != 42 {
		t.Errorf("JSON bytes out = %d", snap.BytesOut)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.ChunkReceived(1)
				c.CommandSent(1)
			}
		}()
	}
	wg.Wait()

	if c.ChunksReceived() != 1000 {
		t.Errorf("chunks = %d, want 1000", c.ChunksReceived())
	}
	if c.TotalBytesOut() != 1000 {
		t.Errorf("bytes out = %d, want 1000", c.TotalBytesOut())
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.ChunkReceived(100)
	c.CommandSent(100)
	c.ProbeAttempt()
	c.RecordError("test")

	if c.ChunksReceived() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.TotalBytesIn() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.ErrorCount() != 0 {
		t.Error("nil collector should return 0")
	}

	snap := c.Snapshot()
	if snap.ChunksReceived != 0 {
		t.Error("nil snapshot should be zero")
	}

	j := c.JSON()
	if j == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
