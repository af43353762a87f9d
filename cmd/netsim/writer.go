package main

import (
	"log/slog"
	"os"

	"netsim-dashboard/internal/admin"
	"netsim-dashboard/internal/scenario"
	"netsim-dashboard/internal/sim"
	"netsim-dashboard/internal/topology"
)

// writerOptions selects the stats and event sinks of serve.
type writerOptions struct {
	Snapshot  *topology.Snapshot
	PrintOnly bool
	LogFile   string
	TUI       bool
	FaultLink string
	Hub       *admin.Hub
	Scenario  *scenario.Scenario
	Logger    *slog.Logger
}

// outputWriter is the terminal or database sink for stats and events.
type outputWriter interface {
	sim.StatsWriter
	sim.EventWriter
}

// newWriters sets up the sinks based on flags and env vars.
// It returns the fan-out writer and a cleanup function to close any resources.
func newWriters(opts writerOptions) (*sim.MultiWriter, func(), error) {
	var sws []sim.StatsWriter
	var ews []sim.EventWriter

	ow, err := baseWriter(opts.Snapshot, opts.PrintOnly, opts.TUI)
	if err != nil {
		return nil, nil, err
	}
	ow = queueSlowSink(ow, opts.Logger)
	if ow != nil {
		sws = append(sws, ow)
		ews = append(ews, ow)
	}
	if opts.LogFile != "" {
		fw, err := sim.NewFileWriter(opts.LogFile, opts.LogFile+".events")
		if err != nil {
			return nil, nil, err
		}
		sws = append(sws, fw)
		ews = append(ews, fw)
	}
	if opts.TUI {
		tw := sim.NewTUIWriter(opts.Snapshot, opts.FaultLink)
		sws = append(sws, tw)
		ews = append(ews, tw)
	}
	if opts.Hub != nil {
		sws = append(sws, opts.Hub)
		ews = append(ews, opts.Hub)
	}
	if opts.Scenario != nil {
		sws = append(sws, sim.NewScenarioRunner(opts.Scenario, sim.Actions{}, opts.Logger))
	}

	mw := sim.NewMultiWriter(sws, ews)
	cleanup := func() {
		if err := mw.Close(); err != nil {
			slog.Error("closing writers", "err", err)
		}
	}
	return mw, cleanup, nil
}

// baseWriter chooses GreptimeDB when GREPTIMEDB_ENDPOINT is set and
// printOnly is false, STDOUT otherwise. The TUI replaces STDOUT, so with tui
// set the fallback is nil.
func baseWriter(snap *topology.Snapshot, printOnly, tui bool) (outputWriter, error) {
	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !printOnly {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		w, err := sim.NewGreptimeDBWriter(endpoint, database)
		if err != nil {
			return nil, err
		}
		slog.Info("writing rows to GreptimeDB", "endpoint", endpoint, "database", database)
		return w, nil
	}
	if tui {
		return nil, nil
	}
	slog.Info("print-only mode: rows will be printed to STDOUT")
	return sim.NewStdoutWriter(snap), nil
}

// queueSlowSink puts a database writer behind a queue so controller actions
// never wait on the network. Other writers are returned unchanged.
func queueSlowSink(w outputWriter, log *slog.Logger) outputWriter {
	if gw, ok := w.(*sim.GreptimeDBWriter); ok {
		return sim.NewQueuedWriter(gw, gw, sim.DefaultQueueSize, log)
	}
	return w
}

// defaultFaultLink names the first snapshot link, or the built-in default.
func defaultFaultLink(snap *topology.Snapshot) string {
	if snap != nil && len(snap.Links) > 0 {
		return topology.LinkID(snap.Links[0])
	}
	return sim.DefaultFaultLink
}
