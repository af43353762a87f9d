package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Step actions.
const (
	ActionInjectFault  = "inject_fault"
	ActionRestoreFault = "restore_fault"
	ActionStop         = "stop"
)

// Scenario is a scripted sequence of controller actions keyed by elapsed seconds.
type Scenario struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step fires Action once the simulation has run for At seconds.
type Step struct {
	At     int64  `yaml:"at"`
	Action string `yaml:"action"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	s.sort()
	return &s, nil
}

// Resolve returns the built-in scenario called nameOrPath, or loads it from disk.
func Resolve(nameOrPath string) (*Scenario, error) {
	if s, ok := BuiltIn()[nameOrPath]; ok {
		s.sort()
		return &s, nil
	}
	return Load(nameOrPath)
}

// Validate rejects unknown actions and negative offsets.
func (s *Scenario) Validate() error {
	var errs []error
	for i, st := range s.Steps {
		switch st.Action {
		case ActionInjectFault, ActionRestoreFault, ActionStop:
		default:
			errs = append(errs, fmt.Errorf("step %d: unknown action %q", i, st.Action))
		}
		if st.At < 0 {
			errs = append(errs, fmt.Errorf("step %d: negative offset %d", i, st.At))
		}
	}
	return errors.Join(errs...)
}

// Due returns the steps scheduled at exactly elapsed seconds, in file order.
func (s *Scenario) Due(elapsed int64) []Step {
	var out []Step
	for _, st := range s.Steps {
		if st.At == elapsed {
			out = append(out, st)
		}
	}
	return out
}

// Last is the offset of the final step.
func (s *Scenario) Last() int64 {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].At
}

func (s *Scenario) sort() {
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
}
