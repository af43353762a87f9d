package sim

import (
	"log/slog"
	"sync"

	"netsim-dashboard/internal/scenario"
	"netsim-dashboard/internal/telemetry"
)

// ScenarioRunner watches stats rows and fires scripted actions when their
// elapsed offset is reached. Each offset fires once per session.
type ScenarioRunner struct {
	mu        sync.Mutex
	sc        *scenario.Scenario
	actions   Actions
	sessionID string
	fired     map[int64]bool
	log       *slog.Logger
}

// NewScenarioRunner binds sc to the given actions.
func NewScenarioRunner(sc *scenario.Scenario, actions Actions, log *slog.Logger) *ScenarioRunner {
	if log == nil {
		log = slog.Default()
	}
	return &ScenarioRunner{sc: sc, actions: actions, fired: map[int64]bool{}, log: log}
}

// SetActions replaces the bound actions.
func (r *ScenarioRunner) SetActions(a Actions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = a
}

// WriteStats implements StatsWriter.
func (r *ScenarioRunner) WriteStats(row telemetry.StatsRow) error {
	if !row.Running || r.sc == nil {
		return nil
	}
	r.mu.Lock()
	if row.SessionID != r.sessionID {
		r.sessionID = row.SessionID
		r.fired = map[int64]bool{}
	}
	if r.fired[row.ElapsedSeconds] {
		r.mu.Unlock()
		return nil
	}
	r.fired[row.ElapsedSeconds] = true
	steps := r.sc.Due(row.ElapsedSeconds)
	actions := r.actions
	r.mu.Unlock()

	for _, st := range steps {
		r.log.Info("scenario step", "scenario", r.sc.Name, "at", st.At, "action", st.Action)
		var fn func()
		switch st.Action {
		case scenario.ActionInjectFault:
			fn = actions.InjectFault
		case scenario.ActionRestoreFault:
			fn = actions.RestoreFault
		case scenario.ActionStop:
			fn = actions.Stop
		}
		if fn != nil {
			fn()
		}
	}
	return nil
}
