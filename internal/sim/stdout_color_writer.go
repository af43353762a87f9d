// ColorStdoutWriter prints human-friendly, colorized stats to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

// ColorStdoutWriter prints stats rows and events using ANSI colors.
type ColorStdoutWriter struct {
	snap *topology.Snapshot
	out  io.Writer
	once sync.Once
	mu   sync.Mutex

	gray, cyan, green, yellow, red, magenta *color.Color
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
// The snapshot, if any, is summarized before the first row.
func NewColorStdoutWriter(snap *topology.Snapshot) *ColorStdoutWriter {
	return newColorStdoutWriter(os.Stdout, snap)
}

func newColorStdoutWriter(out io.Writer, snap *topology.Snapshot) *ColorStdoutWriter {
	w := &ColorStdoutWriter{
		snap:    snap,
		out:     out,
		gray:    color.New(color.FgHiBlack),
		cyan:    color.New(color.FgCyan),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{w.gray, w.cyan, w.green, w.yellow, w.red, w.magenta} {
		c.EnableColor()
	}
	return w
}

func (w *ColorStdoutWriter) printOverview() {
	if w.snap == nil {
		return
	}
	s := w.snap.Summary
	fmt.Fprintln(w.out, w.cyan.Sprint("Network Topology:"))
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Nodes:\t%d\n", s.TotalNodes)
	fmt.Fprintf(tw, "Links:\t%d\n", s.TotalLinks)
	fmt.Fprintf(tw, "VLANs:\t%d\n", s.TotalVLANs)
	fmt.Fprintf(tw, "Issues:\t%d\n", s.TotalIssues)
	fmt.Fprintf(tw, "Health:\t%d%%\n", s.TopologyHealth)
	tw.Flush()

	fmt.Fprintln(w.out, "\nDevices:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tHostname\tType\tSent\tReceived\n")
	for _, id := range w.snap.DeviceIDs() {
		n, _ := w.snap.Node(id)
		st := w.snap.Simulation.DeviceStats[id]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", w.magenta.Sprint(id), n.Hostname, n.Type, st.PacketsSent, st.PacketsReceived)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// WriteStats outputs a single stats row in colorized format.
func (w *ColorStdoutWriter) WriteStats(row telemetry.StatsRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	state := w.gray.Sprint("STOPPED")
	if row.Running {
		state = w.green.Sprint("RUNNING")
	}
	loss := w.green
	if row.LossPercent >= 5 {
		loss = w.red
	} else if row.LossPercent >= 1 {
		loss = w.yellow
	}
	link := w.green.Sprint("up")
	if row.FaultInjected {
		link = w.red.Sprint("down")
	}
	fmt.Fprintf(w.out, "%s %s elapsed=%s sent=%s received=%s loss=%s fault_link=%s\n",
		w.gray.Sprintf("[%s]", row.Timestamp.Format(time.RFC3339)),
		state,
		w.cyan.Sprintf("%ds", row.ElapsedSeconds),
		w.cyan.Sprint(row.TotalSent),
		w.cyan.Sprint(row.TotalReceived),
		loss.Sprintf("%.1f%%", row.LossPercent),
		link)
	return nil
}

// WriteStatsBatch outputs multiple stats rows.
func (w *ColorStdoutWriter) WriteStatsBatch(rows []telemetry.StatsRow) error {
	for _, r := range rows {
		_ = w.WriteStats(r)
	}
	return nil
}

// WriteEvent prints a controller notification.
func (w *ColorStdoutWriter) WriteEvent(ev telemetry.EventRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	label := w.cyan
	switch ev.Type {
	case telemetry.EventFaultInjected:
		label = w.red
	case telemetry.EventFaultRestored, telemetry.EventStarted:
		label = w.green
	case telemetry.EventFaultRequested:
		label = w.yellow
	}
	fmt.Fprintf(w.out, "%s %s %s\n",
		w.gray.Sprintf("[%s]", ev.Timestamp.Format(time.RFC3339)),
		label.Sprint("EVENT"),
		ev.Message)
	return nil
}

// WriteEvents prints multiple notifications.
func (w *ColorStdoutWriter) WriteEvents(evs []telemetry.EventRow) error {
	for _, e := range evs {
		_ = w.WriteEvent(e)
	}
	return nil
}
