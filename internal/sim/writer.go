package sim

import "netsim-dashboard/internal/telemetry"

// StatsWriter receives the simulation counters after every state change.
type StatsWriter interface {
	WriteStats(telemetry.StatsRow) error
}

// EventWriter receives user-visible notifications.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

// Optional: writers may accept several stats rows at once.
type batchStatsWriter interface {
	WriteStatsBatch([]telemetry.StatsRow) error
}

// Optional: writers may accept several events at once.
type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}

// writeStatsBatch uses the batch form when w has one and falls back to
// single writes, stopping at the first error.
func writeStatsBatch(w StatsWriter, rows []telemetry.StatsRow) error {
	if len(rows) == 0 {
		return nil
	}
	if bw, ok := w.(batchStatsWriter); ok {
		return bw.WriteStatsBatch(rows)
	}
	for _, r := range rows {
		if err := w.WriteStats(r); err != nil {
			return err
		}
	}
	return nil
}

func writeEventBatch(w EventWriter, evs []telemetry.EventRow) error {
	if len(evs) == 0 {
		return nil
	}
	if bw, ok := w.(batchEventWriter); ok {
		return bw.WriteEvents(evs)
	}
	for _, e := range evs {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}
