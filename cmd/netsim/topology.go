package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"netsim-dashboard/internal/topology"
)

var (
	topoSnapshot string
	topoOutput   string
)

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Inspect the topology snapshot",
}

var topologySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the network summary, validation issues and recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(topoSnapshot)
		if err != nil {
			return err
		}
		return printSummary(cmd.OutOrStdout(), snap)
	},
}

var topologyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the topology analysis JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(topoSnapshot)
		if err != nil {
			return err
		}
		if topoOutput == "" || topoOutput == "-" {
			return snap.WriteAnalysis(cmd.OutOrStdout())
		}
		f, err := os.Create(topoOutput)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		if err := snap.WriteAnalysis(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	topologyCmd.PersistentFlags().StringVar(&topoSnapshot, "snapshot", "", "Path to a topology snapshot YAML (embedded sample when empty)")
	topologyExportCmd.Flags().StringVarP(&topoOutput, "output", "o", "topology_analysis.json", "Output file, - for STDOUT")
	topologyCmd.AddCommand(topologySummaryCmd)
	topologyCmd.AddCommand(topologyExportCmd)
}

var severityColors = map[string]*color.Color{
	"high":   color.New(color.FgRed, color.Bold),
	"medium": color.New(color.FgYellow),
	"low":    color.New(color.FgGreen),
}

func printSummary(out io.Writer, snap *topology.Snapshot) error {
	heading := color.New(color.FgCyan, color.Bold)
	s := snap.Summary

	heading.Fprintln(out, "Network Summary")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Nodes:\t%d\n", s.TotalNodes)
	fmt.Fprintf(tw, "Links:\t%d\n", s.TotalLinks)
	fmt.Fprintf(tw, "VLANs:\t%d\n", s.TotalVLANs)
	fmt.Fprintf(tw, "Issues:\t%d\n", s.TotalIssues)
	fmt.Fprintf(tw, "Health:\t%d%%\n", s.TopologyHealth)
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := snap.SeverityCounts()
	fmt.Fprintln(out)
	heading.Fprintln(out, "Validation Issues")
	for _, sev := range []string{"high", "medium", "low"} {
		severityColors[sev].Fprintf(out, "  %-7s %d\n", sev, counts[sev])
	}
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, is := range snap.FilterIssues("", "") {
		c, ok := severityColors[is.Severity]
		if !ok {
			c = color.New(color.Reset)
		}
		fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\n", is.ID, c.Sprint(is.Severity), is.Title, is.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	heading.Fprintln(out, "Recommendations")
	for _, r := range snap.Recommendations {
		fmt.Fprintf(out, "  [%s] %s: %s\n", r.Priority, r.Title, r.Recommendation)
	}
	return nil
}
