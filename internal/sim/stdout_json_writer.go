package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"netsim-dashboard/internal/telemetry"
)

// JSONStdoutWriter prints stats rows and events as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteStats outputs a stats row in JSON format.
func (w *JSONStdoutWriter) WriteStats(row telemetry.StatsRow) error {
	return w.line(row)
}

// WriteStatsBatch outputs multiple stats rows in JSON format.
func (w *JSONStdoutWriter) WriteStatsBatch(rows []telemetry.StatsRow) error {
	for _, r := range rows {
		_ = w.WriteStats(r)
	}
	return nil
}

// WriteEvent outputs an event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(ev telemetry.EventRow) error {
	return w.line(ev)
}

// WriteEvents outputs multiple events in JSON format.
func (w *JSONStdoutWriter) WriteEvents(evs []telemetry.EventRow) error {
	for _, e := range evs {
		_ = w.WriteEvent(e)
	}
	return nil
}

func (w *JSONStdoutWriter) line(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
