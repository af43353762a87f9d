package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"netsim-dashboard/internal/telemetry"
)

// replayBatch caps the rows handed to a writer in one call.
const replayBatch = 100

// ReplayStatsLog decodes JSON lines of stats rows from r and hands them to w
// in batches. Rows recorded at the same instant share a batch. With
// speed > 0 the recorded gap before each later row is slept, divided by
// speed; otherwise rows are written back to back. Rows read before a decode
// error are still written.
func ReplayStatsLog(r io.Reader, w StatsWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var (
		batch []telemetry.StatsRow
		prev  time.Time
	)
	for n := 1; ; n++ {
		var row telemetry.StatsRow
		if err := dec.Decode(&row); err != nil {
			flushErr := writeStatsBatch(w, batch)
			if errors.Is(err, io.EOF) {
				return flushErr
			}
			return errors.Join(fmt.Errorf("stats log record %d: %w", n, err), flushErr)
		}
		wait := replayGap(prev, row.Timestamp, speed)
		if wait > 0 || len(batch) >= replayBatch {
			if err := writeStatsBatch(w, batch); err != nil {
				return err
			}
			batch = nil
		}
		if wait > 0 {
			time.Sleep(wait)
		}
		batch = append(batch, row)
		prev = row.Timestamp
	}
}

// replayGap is the scaled wait between two recorded timestamps.
func replayGap(prev, next time.Time, speed float64) time.Duration {
	if prev.IsZero() || speed <= 0 {
		return 0
	}
	return time.Duration(float64(next.Sub(prev)) / speed)
}

// ReplayStatsLogFile replays the stats log at path.
func ReplayStatsLogFile(path string, w StatsWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayStatsLog(f, w, speed)
}

// ReplayEventLog writes the events in r to w without delay, in batches.
func ReplayEventLog(r io.Reader, w EventWriter) error {
	dec := json.NewDecoder(r)
	var batch []telemetry.EventRow
	for n := 1; ; n++ {
		var ev telemetry.EventRow
		if err := dec.Decode(&ev); err != nil {
			flushErr := writeEventBatch(w, batch)
			if errors.Is(err, io.EOF) {
				return flushErr
			}
			return errors.Join(fmt.Errorf("event log record %d: %w", n, err), flushErr)
		}
		batch = append(batch, ev)
		if len(batch) == replayBatch {
			if err := writeEventBatch(w, batch); err != nil {
				return err
			}
			batch = nil
		}
	}
}

// ReplayEventLogFile replays the event log at path.
func ReplayEventLogFile(path string, w EventWriter) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayEventLog(f, w)
}
