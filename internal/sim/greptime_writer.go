package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"netsim-dashboard/internal/telemetry"
)

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes stats rows and events to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client      greptimeClient
	statsTable  string
	eventsTable string
	timeout     time.Duration
	log         *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port"). Tables are
// created on first write from the row schema.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port := endpoint, 0
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("greptimedb port %q: %w", p, err)
		}
		host, port = h, n
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port > 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptimedb client: %w", err)
	}
	return &GreptimeDBWriter{
		client:      client,
		statsTable:  telemetry.StatsTableName,
		eventsTable: telemetry.EventsTableName,
		timeout:     5 * time.Second,
		log:         slog.Default().With("writer", "greptimedb"),
	}, nil
}

// WriteStats inserts a single stats row.
func (w *GreptimeDBWriter) WriteStats(row telemetry.StatsRow) error {
	return w.WriteStatsBatch([]telemetry.StatsRow{row})
}

// WriteStatsBatch inserts multiple stats rows.
func (w *GreptimeDBWriter) WriteStatsBatch(rows []telemetry.StatsRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.statsTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddFieldColumn("running", types.BOOLEAN)
	tbl.AddFieldColumn("elapsed_seconds", types.INT64)
	tbl.AddFieldColumn("total_sent", types.INT64)
	tbl.AddFieldColumn("total_received", types.INT64)
	tbl.AddFieldColumn("loss_percent", types.FLOAT64)
	tbl.AddFieldColumn("fault_injected", types.BOOLEAN)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			r.SessionID,
			r.Running,
			r.ElapsedSeconds,
			r.TotalSent,
			r.TotalReceived,
			r.LossPercent,
			r.FaultInjected,
			r.Timestamp,
		); err != nil {
			return fmt.Errorf("stats row: %w", err)
		}
	}
	return w.write(tbl, len(rows))
}

// WriteEvent inserts a single event.
func (w *GreptimeDBWriter) WriteEvent(ev telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{ev})
}

// WriteEvents inserts multiple events.
func (w *GreptimeDBWriter) WriteEvents(evs []telemetry.EventRow) error {
	if len(evs) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventsTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddTagColumn("type", types.STRING)
	tbl.AddFieldColumn("id", types.STRING)
	tbl.AddFieldColumn("message", types.STRING)
	tbl.AddFieldColumn("link", types.STRING)
	tbl.AddFieldColumn("elapsed_seconds", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, e := range evs {
		if err := tbl.AddRow(e.SessionID, e.Type, e.ID, e.Message, e.Link, e.ElapsedSeconds, e.Timestamp); err != nil {
			return fmt.Errorf("event row: %w", err)
		}
	}
	return w.write(tbl, len(evs))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.logger().Error("write failed", "rows", n, "err", err)
		return err
	}
	w.logger().Debug("wrote rows", "rows", n)
	return nil
}

func (w *GreptimeDBWriter) logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}
