package sim

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"netsim-dashboard/internal/telemetry"
)

// FileWriter writes stats rows and events to JSONL files.
type FileWriter struct {
	mu        sync.Mutex
	statsFile *os.File
	evFile    *os.File
	statsEnc  *json.Encoder
	evEnc     *json.Encoder
}

// NewFileWriter creates a FileWriter. eventsPath may be empty to skip the event log.
func NewFileWriter(statsPath, eventsPath string) (*FileWriter, error) {
	sf, err := os.Create(statsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{statsFile: sf, statsEnc: json.NewEncoder(sf)}
	if eventsPath != "" {
		ef, err := os.Create(eventsPath)
		if err != nil {
			sf.Close()
			return nil, err
		}
		fw.evFile = ef
		fw.evEnc = json.NewEncoder(ef)
	}
	return fw, nil
}

// WriteStats logs a single stats row.
func (f *FileWriter) WriteStats(row telemetry.StatsRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsEnc.Encode(row)
}

// WriteStatsBatch logs multiple stats rows.
func (f *FileWriter) WriteStatsBatch(rows []telemetry.StatsRow) error {
	for _, r := range rows {
		if err := f.WriteStats(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a single event, if enabled.
func (f *FileWriter) WriteEvent(ev telemetry.EventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.evEnc == nil {
		return nil
	}
	return f.evEnc.Encode(ev)
}

// WriteEvents logs multiple events.
func (f *FileWriter) WriteEvents(evs []telemetry.EventRow) error {
	for _, e := range evs {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	if f.statsFile != nil {
		errs = append(errs, f.statsFile.Close())
		f.statsFile = nil
	}
	if f.evFile != nil {
		errs = append(errs, f.evFile.Close())
		f.evFile = nil
	}
	return errors.Join(errs...)
}
