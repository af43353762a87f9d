package sim

import (
	"errors"

	"netsim-dashboard/internal/telemetry"
)

// MultiWriter fans stats rows and events out to multiple writers.
type MultiWriter struct {
	statwriters []StatsWriter
	evwriters   []EventWriter
}

// NewMultiWriter creates a new MultiWriter. Nil entries are dropped.
func NewMultiWriter(sws []StatsWriter, ews []EventWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range sws {
		if w != nil {
			mw.statwriters = append(mw.statwriters, w)
		}
	}
	for _, w := range ews {
		if w != nil {
			mw.evwriters = append(mw.evwriters, w)
		}
	}
	return mw
}

// WriteStats sends a stats row to all writers. A failing writer does not
// keep the row from the others.
func (mw *MultiWriter) WriteStats(row telemetry.StatsRow) error {
	var errs []error
	for _, w := range mw.statwriters {
		if err := w.WriteStats(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteStatsBatch sends multiple stats rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteStatsBatch(rows []telemetry.StatsRow) error {
	var errs []error
	for _, w := range mw.statwriters {
		if err := writeStatsBatch(w, rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteEvent sends an event to all event writers.
func (mw *MultiWriter) WriteEvent(ev telemetry.EventRow) error {
	var errs []error
	for _, w := range mw.evwriters {
		if err := w.WriteEvent(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteEvents sends multiple events to all event writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(evs []telemetry.EventRow) error {
	var errs []error
	for _, w := range mw.evwriters {
		if err := writeEventBatch(w, evs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetActions forwards the controller actions to interactive writers.
func (mw *MultiWriter) SetActions(a Actions) {
	for _, w := range mw.all() {
		if s, ok := w.(ActionSetter); ok {
			s.SetActions(a)
		}
	}
}

// SetAdminStatus forwards the web UI status to writers that display it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.all() {
		if s, ok := w.(AdminStatusWriter); ok {
			s.SetAdminStatus(listening)
		}
	}
}

// Close closes every writer implementing io.Closer once.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.all() {
		if c, ok := w.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// all returns each distinct writer once, stats writers first.
func (mw *MultiWriter) all() []any {
	seen := map[any]bool{}
	var out []any
	add := func(w any) {
		if seen[w] {
			return
		}
		seen[w] = true
		out = append(out, w)
	}
	for _, w := range mw.statwriters {
		add(w)
	}
	for _, w := range mw.evwriters {
		add(w)
	}
	return out
}
