package sim

import (
	"math/rand"
	"testing"
	"time"

	"netsim-dashboard/internal/scenario"
	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

func TestScenarioRunnerDrivesController(t *testing.T) {
	sc := &scenario.Scenario{Name: "drill", Steps: []scenario.Step{
		{At: 2, Action: scenario.ActionInjectFault},
		{At: 5, Action: scenario.ActionRestoreFault},
		{At: 8, Action: scenario.ActionStop},
	}}
	sched := NewManualScheduler()
	w := &MockWriter{}
	runner := NewScenarioRunner(sc, Actions{}, nil)
	c := NewController(topology.Default(), DefaultSettings(), NewMultiWriter([]StatsWriter{w, runner}, nil), w, sched, rand.New(rand.NewSource(7)), nil)
	runner.SetActions(ActionsFor(c))

	c.Start()
	sched.Advance(4 * time.Second)
	if !c.Status().State.FaultInjected {
		t.Fatalf("fault not injected by scenario")
	}
	sched.Advance(3 * time.Second)
	if c.Status().State.FaultInjected {
		t.Fatalf("fault not restored by scenario")
	}
	sched.Advance(5 * time.Second)
	st := c.Status()
	if st.State.Running || st.State.ElapsedSeconds != 8 {
		t.Fatalf("scenario did not stop the simulation at 8s: %+v", st.State)
	}
}

func TestScenarioRunnerFiresOncePerSession(t *testing.T) {
	sc := &scenario.Scenario{Steps: []scenario.Step{{At: 1, Action: scenario.ActionInjectFault}}}
	count := 0
	runner := NewScenarioRunner(sc, Actions{InjectFault: func() { count++ }}, nil)
	row := telemetry.StatsRow{SessionID: "a", Running: true, ElapsedSeconds: 1}
	_ = runner.WriteStats(row)
	_ = runner.WriteStats(row)
	if count != 1 {
		t.Fatalf("step fired %d times", count)
	}
	_ = runner.WriteStats(telemetry.StatsRow{SessionID: "a", Running: false, ElapsedSeconds: 1})
	row.SessionID = "b"
	_ = runner.WriteStats(row)
	if count != 2 {
		t.Fatalf("new session did not re-arm the step, count=%d", count)
	}
}
