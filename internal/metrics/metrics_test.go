package metrics_test

import (
	"testing"
	"time"

	"github.com/AndrewDonelson/stash/internal/metrics"
)

func TestNoop_AllMethods(t *testing.T) {
	var n metrics.MetricsRecorder = metrics.Noop{}
	n.RecordHit("profile")
	n.RecordMiss("profile")
	n.RecordLatency("profile", "read", 100*time.Millisecond)
	n.RecordError("profile", "write")
	n.RecordCorrupt("profile")
	n.RecordPending("profile", 1)
}

func TestCounter_Snapshot(t *testing.T) {
	c := metrics.NewCounter()
	c.RecordHit("a")
	c.RecordHit("b")
	c.RecordMiss("a")
	c.RecordCorrupt("a")
	c.RecordError("a", "write")
	c.RecordError("b", "write")
	c.RecordLatency("a", "read", time.Millisecond)
	c.RecordLatency("b", "read", 2*time.Millisecond)
	c.RecordPending("a", 1)
	c.RecordPending("a", 0)

	s := c.Snapshot()
	if s.Hits != 2 || s.Misses != 1 || s.Corrupt != 1 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.Errors["write"] != 2 {
		t.Fatalf("write errors = %d, want 2", s.Errors["write"])
	}
	if s.Latency["read"] != 3*time.Millisecond {
		t.Fatalf("read latency = %s, want 3ms", s.Latency["read"])
	}
	if s.Pending["a"] != 0 {
		t.Fatalf("pending = %d, want 0", s.Pending["a"])
	}

	s.Errors["write"] = 99
	if c.Snapshot().Errors["write"] != 2 {
		t.Fatal("snapshot must not alias the counter")
	}
}
