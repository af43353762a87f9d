// Simulation controller owning the pseudo-simulation state
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

// Notification texts.
const (
	MsgStarted = "Simulation started successfully"
	MsgStopped = "Simulation stopped"
)

// DefaultFaultLink is used when neither the settings nor the snapshot name a link.
const DefaultFaultLink = "R1-R2"

// Pending fault actions.
const (
	ActionInjectFault  = "inject_fault"
	ActionRestoreFault = "restore_fault"
)

// Settings holds the controller timing.
type Settings struct {
	TickInterval   time.Duration
	InjectLatency  time.Duration
	RestoreLatency time.Duration
	FaultLink      string
	Logger         *slog.Logger
}

// DefaultSettings returns a 1s tick, 1500ms inject and 1000ms restore latency.
func DefaultSettings() Settings {
	return Settings{
		TickInterval:   time.Second,
		InjectLatency:  1500 * time.Millisecond,
		RestoreLatency: time.Second,
	}
}

// Status is a point-in-time view of the controller.
type Status struct {
	SessionID     string             `json:"session_id"`
	State         State              `json:"state"`
	Fault         FaultState         `json:"fault"`
	Controls      telemetry.Controls `json:"controls"`
	LossPercent   float64            `json:"loss_percent"`
	FaultLink     string             `json:"fault_link"`
	LinkStatus    string             `json:"link_status"`
	PendingAction string             `json:"pending_action,omitempty"`
}

// Controller owns the simulation state and the timers driving it.
type Controller struct {
	mu            sync.Mutex
	state         State
	controls      telemetry.Controls
	devices       map[string]topology.DeviceStat
	sessionID     string
	settings      Settings
	gen           *telemetry.Generator
	sched         Scheduler
	ticker        Task
	tickGen       uint64
	pending       Task
	pendingAction string
	faultGen      uint64
	seq           uint64
	stats         StatsWriter
	events        EventWriter
	now           func() time.Time
	log           *slog.Logger

	// outbox holds rows in the order their state changes happened. It is
	// appended to under mu and drained by one goroutine at a time.
	outMu    sync.Mutex
	outbox   []outgoing
	draining bool
}

// NewController builds a stopped controller from the snapshot counters.
// Nil writers are skipped; a nil scheduler uses the wall clock; a nil rand
// seeds from the clock; a nil now uses time.Now.
func NewController(snap *topology.Snapshot, settings Settings, stats StatsWriter, events EventWriter, sched Scheduler, r *rand.Rand, now func() time.Time) *Controller {
	def := DefaultSettings()
	if settings.TickInterval <= 0 {
		settings.TickInterval = def.TickInterval
	}
	if settings.InjectLatency < 0 {
		settings.InjectLatency = def.InjectLatency
	}
	if settings.RestoreLatency < 0 {
		settings.RestoreLatency = def.RestoreLatency
	}
	if settings.FaultLink == "" {
		settings.FaultLink = DefaultFaultLink
		if snap != nil && len(snap.Links) > 0 {
			settings.FaultLink = topology.LinkID(snap.Links[0])
		}
	}
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}
	if sched == nil {
		sched = ClockScheduler{}
	}
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		controls:  initialControls(),
		devices:   map[string]topology.DeviceStat{},
		sessionID: uuid.NewString(),
		settings:  settings,
		gen:       telemetry.NewGenerator(r),
		sched:     sched,
		stats:     stats,
		events:    events,
		now:       now,
		log:       settings.Logger,
	}
	if snap != nil {
		c.state = InitialState(snap.Simulation)
		c.devices = snap.DeviceStats()
	}
	return c
}

// Start enters Running, resets elapsed time and schedules the tick. Any
// active tick task is cancelled first, so at most one is ever live.
func (c *Controller) Start() Status {
	c.mu.Lock()
	c.cancelTickLocked()
	c.state = c.state.Started()
	c.controls = startedControls(c.state.FaultInjected)
	c.sessionID = uuid.NewString()
	gen := c.tickGen
	c.ticker = c.sched.Every(c.settings.TickInterval, func() { c.tick(gen) })
	row := c.statsRowLocked()
	ev := c.eventLocked(telemetry.EventStarted, MsgStarted)
	st := c.statusLocked()
	c.enqueueLocked(&row, &ev)
	c.mu.Unlock()

	c.log.Info("simulation started", "session_id", st.SessionID, "tick_interval", c.settings.TickInterval)
	c.drain()
	return st
}

// Stop leaves Running and cancels the tick. Stopping twice only refreshes
// the controls. A pending fault action is not cancelled.
func (c *Controller) Stop() Status {
	c.mu.Lock()
	wasRunning := c.state.Running
	c.cancelTickLocked()
	c.state = c.state.Stopped()
	c.controls = stoppedControls()
	row := c.statsRowLocked()
	var ev *telemetry.EventRow
	if wasRunning {
		e := c.eventLocked(telemetry.EventStopped, MsgStopped)
		ev = &e
	}
	st := c.statusLocked()
	c.enqueueLocked(&row, ev)
	c.mu.Unlock()

	if wasRunning {
		c.log.Info("simulation stopped", "session_id", st.SessionID, "elapsed_seconds", st.State.ElapsedSeconds)
	}
	c.drain()
	return st
}

// InjectFault takes the fault link down after the inject latency.
func (c *Controller) InjectFault() Status {
	return c.requestFault(true)
}

// RestoreFault brings the fault link back up after the restore latency.
func (c *Controller) RestoreFault() Status {
	return c.requestFault(false)
}

func (c *Controller) requestFault(inject bool) Status {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Cancel()
	}
	c.faultGen++
	gen := c.faultGen
	delay, action := c.settings.RestoreLatency, ActionRestoreFault
	msg := fmt.Sprintf("Restoring link %s", c.settings.FaultLink)
	if inject {
		delay, action = c.settings.InjectLatency, ActionInjectFault
		msg = fmt.Sprintf("Injecting fault on link %s", c.settings.FaultLink)
	}
	c.pendingAction = action
	c.pending = c.sched.After(delay, func() { c.completeFault(gen, inject) })
	ev := c.eventLocked(telemetry.EventFaultRequested, msg)
	ev.Link = c.settings.FaultLink
	st := c.statusLocked()
	c.enqueueLocked(nil, &ev)
	c.mu.Unlock()

	c.log.Debug("fault action scheduled", "action", action, "delay", delay)
	c.drain()
	return st
}

func (c *Controller) completeFault(gen uint64, inject bool) {
	c.mu.Lock()
	if gen != c.faultGen {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.pendingAction = ""
	c.state = c.state.Faulted(inject)
	c.controls = faultControls(c.controls, inject)
	row := c.statsRowLocked()
	var ev telemetry.EventRow
	if inject {
		ev = c.eventLocked(telemetry.EventFaultInjected,
			fmt.Sprintf("Network fault injected - link %s down", c.settings.FaultLink))
	} else {
		ev = c.eventLocked(telemetry.EventFaultRestored,
			fmt.Sprintf("Network link restored - %s connection up", c.settings.FaultLink))
	}
	ev.Link = c.settings.FaultLink
	c.enqueueLocked(&row, &ev)
	c.mu.Unlock()

	c.log.Info(ev.Message, "link", c.settings.FaultLink, "fault", inject)
	c.drain()
}

// Close cancels the tick and any pending fault action.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTickLocked()
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
	c.faultGen++
	c.pendingAction = ""
}

// Status returns the current state and action enablement.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// DeviceStats returns a copy of the per-device counters.
func (c *Controller) DeviceStats() map[string]topology.DeviceStat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]topology.DeviceStat, len(c.devices))
	for id, st := range c.devices {
		out[id] = st
	}
	return out
}

// LinkStatus returns the displayed status of a link: the fault link is
// down while a fault is injected, other links keep their snapshot status.
func (c *Controller) LinkStatus(l topology.Link) string {
	if topology.LinkID(l) != c.settings.FaultLink {
		return l.Status
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.FaultInjected {
		return topology.StatusDown
	}
	return l.Status
}

func (c *Controller) cancelTickLocked() {
	if c.ticker != nil {
		c.ticker.Cancel()
		c.ticker = nil
	}
	// Invalidate ticks already in flight on another goroutine.
	c.tickGen++
}

func (c *Controller) statusLocked() Status {
	link := topology.StatusUp
	if c.state.FaultInjected {
		link = topology.StatusDown
	}
	return Status{
		SessionID:     c.sessionID,
		State:         c.state,
		Fault:         c.state.Fault(),
		Controls:      c.controls,
		LossPercent:   c.state.LossPercent(),
		FaultLink:     c.settings.FaultLink,
		LinkStatus:    link,
		PendingAction: c.pendingAction,
	}
}

func (c *Controller) statsRowLocked() telemetry.StatsRow {
	c.seq++
	return telemetry.StatsRow{
		Seq:            c.seq,
		SessionID:      c.sessionID,
		Running:        c.state.Running,
		ElapsedSeconds: c.state.ElapsedSeconds,
		TotalSent:      c.state.TotalSent,
		TotalReceived:  c.state.TotalReceived,
		LossPercent:    c.state.LossPercent(),
		FaultInjected:  c.state.FaultInjected,
		Controls:       c.controls,
		Timestamp:      c.now().UTC(),
	}
}

func (c *Controller) eventLocked(typ, msg string) telemetry.EventRow {
	c.seq++
	return telemetry.EventRow{
		Seq:            c.seq,
		ID:             uuid.NewString(),
		SessionID:      c.sessionID,
		Type:           typ,
		Message:        msg,
		ElapsedSeconds: c.state.ElapsedSeconds,
		Timestamp:      c.now().UTC(),
	}
}

type outgoing struct {
	row *telemetry.StatsRow
	ev  *telemetry.EventRow
}

// enqueueLocked records rows for the sinks. Callers hold mu, so the outbox
// order matches the order of state changes.
func (c *Controller) enqueueLocked(row *telemetry.StatsRow, ev *telemetry.EventRow) {
	c.outMu.Lock()
	c.outbox = append(c.outbox, outgoing{row: row, ev: ev})
	c.outMu.Unlock()
}

// drain hands queued rows to the sinks outside mu. If another goroutine is
// already draining, it delivers these rows after its own and drain returns
// at once, so a slow sink never reorders rows and a sink may call back into
// the controller.
func (c *Controller) drain() {
	c.outMu.Lock()
	if c.draining {
		c.outMu.Unlock()
		return
	}
	c.draining = true
	for len(c.outbox) > 0 {
		next := c.outbox[0]
		c.outbox[0] = outgoing{}
		c.outbox = c.outbox[1:]
		c.outMu.Unlock()
		c.publish(next.row, next.ev)
		c.outMu.Lock()
	}
	c.outbox = nil
	c.draining = false
	c.outMu.Unlock()
}

// publish writes one state change to the sinks. Missing sinks are skipped
// and sink errors only logged.
func (c *Controller) publish(row *telemetry.StatsRow, ev *telemetry.EventRow) {
	if ev != nil && c.events != nil {
		if err := c.events.WriteEvent(*ev); err != nil {
			c.log.Error("event write failed", "type", ev.Type, "err", err)
		}
	}
	if row != nil && c.stats != nil {
		if err := c.stats.WriteStats(*row); err != nil {
			c.log.Error("stats write failed", "session_id", row.SessionID, "err", err)
		}
	}
}
