// Writer implementation printing stats to STDOUT
package sim

import (
	"os"

	"golang.org/x/term"

	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

// StdoutWriter prints colorized rows on a terminal and JSON lines otherwise.
type StdoutWriter struct {
	colorize bool
	color    *ColorStdoutWriter
	json     *JSONStdoutWriter
}

// NewStdoutWriter detects whether STDOUT is a terminal.
func NewStdoutWriter(snap *topology.Snapshot) *StdoutWriter {
	return &StdoutWriter{
		colorize: term.IsTerminal(int(os.Stdout.Fd())),
		color:    NewColorStdoutWriter(snap),
		json:     NewJSONStdoutWriter(),
	}
}

// WriteStats outputs a single stats row.
func (w *StdoutWriter) WriteStats(row telemetry.StatsRow) error {
	if w.colorize {
		return w.color.WriteStats(row)
	}
	return w.json.WriteStats(row)
}

// WriteStatsBatch outputs multiple stats rows.
func (w *StdoutWriter) WriteStatsBatch(rows []telemetry.StatsRow) error {
	for _, r := range rows {
		_ = w.WriteStats(r)
	}
	return nil
}

// WriteEvent prints a notification.
func (w *StdoutWriter) WriteEvent(ev telemetry.EventRow) error {
	if w.colorize {
		return w.color.WriteEvent(ev)
	}
	return w.json.WriteEvent(ev)
}
