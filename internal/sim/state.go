package sim

import (
	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

// FaultState tells whether the simulated link fault is active.
type FaultState string

const (
	FaultRestored FaultState = "restored"
	FaultInjected FaultState = "injected"
)

// State is the mutable simulation state. Transitions are pure: each returns
// a new value and leaves the receiver untouched.
type State struct {
	Running        bool  `json:"running"`
	ElapsedSeconds int64 `json:"elapsed_seconds"`
	TotalSent      int64 `json:"total_sent"`
	TotalReceived  int64 `json:"total_received"`
	FaultInjected  bool  `json:"fault_injected"`
}

// InitialState derives the starting state from the snapshot counters.
func InitialState(stats topology.SimulationStats) State {
	sent := max(stats.TotalSent, 0)
	received := min(max(stats.TotalReceived, 0), sent)
	return State{TotalSent: sent, TotalReceived: received}
}

// Started enters Running and resets the elapsed time.
func (s State) Started() State {
	s.Running = true
	s.ElapsedSeconds = 0
	return s
}

// Stopped leaves Running. Counters and elapsed time are kept.
func (s State) Stopped() State {
	s.Running = false
	return s
}

// Ticked advances elapsed time by one second and the counters by one draw.
func (s State) Ticked(g *telemetry.Generator) State {
	s.ElapsedSeconds++
	s.TotalSent, s.TotalReceived = g.Next(s.TotalSent)
	return s
}

// Faulted sets the fault flag.
func (s State) Faulted(injected bool) State {
	s.FaultInjected = injected
	return s
}

// Fault reports the fault flag as a FaultState.
func (s State) Fault() FaultState {
	if s.FaultInjected {
		return FaultInjected
	}
	return FaultRestored
}

// LossPercent is the packet loss of the current counters.
func (s State) LossPercent() float64 {
	return telemetry.PacketLoss(s.TotalSent, s.TotalReceived)
}

// initialControls enables only the start action.
func initialControls() telemetry.Controls {
	return telemetry.Controls{Start: true}
}

func startedControls(faultInjected bool) telemetry.Controls {
	return telemetry.Controls{Stop: true, Inject: !faultInjected, Restore: faultInjected}
}

func stoppedControls() telemetry.Controls {
	return telemetry.Controls{Start: true}
}

// faultControls keeps start/stop and makes exactly one fault action available.
func faultControls(c telemetry.Controls, injected bool) telemetry.Controls {
	c.Inject = !injected
	c.Restore = injected
	return c
}
