package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"netsim-dashboard/internal/sim"
)

var (
	replayInput     string
	replayEvents    string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded stats log",
	Long:  "replay feeds stats rows and events from log files back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replaySpeed <= 0 {
			return fmt.Errorf("speed must be positive, got %v", replaySpeed)
		}
		base, err := baseWriter(nil, replayPrintOnly, false)
		if err != nil {
			return err
		}
		return replayLogs(base, replayEvents, replayInput, replaySpeed)
	},
}

// replayLogs writes the event log, then the stats log, through a fan-out
// writer so both reach the sink in batches.
func replayLogs(w outputWriter, eventsPath, statsPath string, speed float64) (err error) {
	mw := sim.NewMultiWriter([]sim.StatsWriter{w}, []sim.EventWriter{w})
	defer func() {
		err = errors.Join(err, mw.Close())
	}()
	if eventsPath != "" {
		if err := sim.ReplayEventLogFile(eventsPath, mw); err != nil {
			return err
		}
	}
	return sim.ReplayStatsLogFile(statsPath, mw, speed)
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to stats log file")
	replayCmd.Flags().StringVar(&replayEvents, "events", "", "Path to event log file replayed before the stats")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
