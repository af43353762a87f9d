// Simulation output rows shared by writers and storage
package telemetry

import (
	"os"
	"time"
)

// Controls reports which simulation actions are currently enabled.
type Controls struct {
	Start   bool `json:"start"`
	Stop    bool `json:"stop"`
	Inject  bool `json:"inject"`
	Restore bool `json:"restore"`
}

// StatsRow is one projection of the simulation counters for the display layer.
type StatsRow struct {
	Seq            uint64    `json:"seq"`
	SessionID      string    `json:"session_id"` // TAG
	Running        bool      `json:"running"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	TotalSent      int64     `json:"total_sent"`
	TotalReceived  int64     `json:"total_received"`
	LossPercent    float64   `json:"loss_percent"`
	FaultInjected  bool      `json:"fault_injected"`
	Controls       Controls  `json:"controls"`
	Timestamp      time.Time `json:"ts"` // TIME INDEX
}

// Event types.
const (
	EventStarted        = "started"
	EventStopped        = "stopped"
	EventFaultRequested = "fault_requested"
	EventFaultInjected  = "fault_injected"
	EventFaultRestored  = "fault_restored"
)

// EventRow is a user-visible notification emitted by the controller.
type EventRow struct {
	Seq            uint64    `json:"seq"`
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	Link           string    `json:"link,omitempty"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	Timestamp      time.Time `json:"ts"`
}

// StatsTableName holds the table name used when writing stats to GreptimeDB.
// It defaults to "network_sim_stats" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var StatsTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "network_sim_stats"
}()

// EventsTableName is the GreptimeDB table for controller events,
// overridable via GREPTIMEDB_EVENT_TABLE.
var EventsTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_EVENT_TABLE"); env != "" {
		return env
	}
	return "network_sim_events"
}()
