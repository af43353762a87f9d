package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

func TestStdoutWriterJSONFallback(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &StdoutWriter{colorize: false, json: &JSONStdoutWriter{out: buf}}
	row := telemetry.StatsRow{SessionID: "s1", TotalSent: 303, TotalReceived: 299, LossPercent: 1.3, Timestamp: time.Unix(0, 0)}
	if err := w.WriteStats(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.WriteEvent(telemetry.EventRow{Type: telemetry.EventStopped, Message: "Simulation stopped"}); err != nil {
		t.Fatalf("write event failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %q", buf.String())
	}
	var got telemetry.StatsRow
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalSent != 303 || got.LossPercent != 1.3 {
		t.Fatalf("unexpected row %+v", got)
	}
	if !strings.Contains(lines[1], `"message":"Simulation stopped"`) {
		t.Fatalf("unexpected event line %q", lines[1])
	}
}

func TestStdoutWriterColorized(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &StdoutWriter{colorize: true, color: newColorStdoutWriter(buf, topology.Default())}
	row := telemetry.StatsRow{Running: true, ElapsedSeconds: 3, TotalSent: 310, TotalReceived: 305, LossPercent: 1.6, Timestamp: time.Unix(0, 0)}
	if err := w.WriteStats(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Network Topology:") || !strings.Contains(output, "Devices:") {
		t.Fatalf("overview not printed: %q", output)
	}
	if !strings.Contains(output, "\x1b[") {
		t.Fatalf("expected color codes in output: %q", output)
	}
	if !strings.Contains(output, "1.6%") || !strings.Contains(output, "RUNNING") {
		t.Fatalf("stats not printed: %q", output)
	}

	buf.Reset()
	if err := w.WriteEvent(telemetry.EventRow{Type: telemetry.EventFaultInjected, Message: "Network fault injected - link R1-R2 down"}); err != nil {
		t.Fatalf("event write failed: %v", err)
	}
	if strings.Contains(buf.String(), "Network Topology:") {
		t.Fatalf("overview printed more than once")
	}
	if !strings.Contains(buf.String(), "link R1-R2 down") {
		t.Fatalf("event not printed: %q", buf.String())
	}
}

func TestColorStdoutWriterWithoutSnapshot(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newColorStdoutWriter(buf, nil)
	_ = w.WriteStats(telemetry.StatsRow{FaultInjected: true})
	if strings.Contains(buf.String(), "Network Topology:") {
		t.Fatalf("overview printed without a snapshot")
	}
	if !strings.Contains(buf.String(), "down") {
		t.Fatalf("fault link state missing: %q", buf.String())
	}
}
