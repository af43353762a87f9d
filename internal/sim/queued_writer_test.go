package sim

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"netsim-dashboard/internal/telemetry"
)

// gatedSink blocks its first stats batch until gate is closed.
type gatedSink struct {
	batchRecorder
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
	closes  int
}

func newGatedSink() *gatedSink {
	return &gatedSink{entered: make(chan struct{}), gate: make(chan struct{})}
}

func (g *gatedSink) WriteStatsBatch(rows []telemetry.StatsRow) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.gate
	})
	return g.batchRecorder.WriteStatsBatch(rows)
}

func (g *gatedSink) Close() error {
	g.closes++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitEntered(t *testing.T, g *gatedSink) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received a batch")
	}
}

func TestQueuedWriterDoesNotWaitOnSlowSink(t *testing.T) {
	sink := newGatedSink()
	q := NewQueuedWriter(sink, sink, 16, quietLogger())
	q.WriteStats(telemetry.StatsRow{ElapsedSeconds: 1})
	waitEntered(t, sink)

	start := time.Now()
	for i := 2; i <= 4; i++ {
		if err := q.WriteStats(telemetry.StatsRow{ElapsedSeconds: int64(i)}); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
	}
	q.WriteEvent(telemetry.EventRow{Type: telemetry.EventStopped})
	if d := time.Since(start); d > time.Second {
		t.Fatalf("writes waited %v on a blocked sink", d)
	}

	close(sink.gate)
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(sink.statBatches) != 2 || sink.statBatches[0] != 1 || sink.statBatches[1] != 3 {
		t.Fatalf("unexpected stats batches %v", sink.statBatches)
	}
	if len(sink.Rows) != 4 || sink.Rows[3].ElapsedSeconds != 4 {
		t.Fatalf("unexpected rows %+v", sink.Rows)
	}
	if len(sink.Events) != 1 {
		t.Fatalf("expected the queued event, got %d", len(sink.Events))
	}
	if sink.closes != 1 {
		t.Fatalf("expected the sink closed once, got %d", sink.closes)
	}
}

func TestQueuedWriterDropsWhenFull(t *testing.T) {
	sink := newGatedSink()
	q := NewQueuedWriter(sink, nil, 1, quietLogger())
	q.WriteStats(telemetry.StatsRow{ElapsedSeconds: 1})
	waitEntered(t, sink)
	q.WriteStats(telemetry.StatsRow{ElapsedSeconds: 2})
	q.WriteStats(telemetry.StatsRow{ElapsedSeconds: 3})
	if got := q.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped row, got %d", got)
	}
	close(sink.gate)
	q.Close()
	if len(sink.Rows) != 2 {
		t.Fatalf("expected 2 rows written, got %d", len(sink.Rows))
	}
}

func TestQueuedWriterAfterClose(t *testing.T) {
	sink := newGatedSink()
	close(sink.gate)
	q := NewQueuedWriter(sink, sink, 4, quietLogger())
	q.Close()
	if err := q.WriteStats(telemetry.StatsRow{}); err != nil {
		t.Fatalf("WriteStats after close: %v", err)
	}
	if q.Dropped() != 1 {
		t.Fatalf("expected the late row to be dropped")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
