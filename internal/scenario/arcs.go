package scenario

// BuiltIn returns predefined fault drills.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"link-failure": {
			Name:        "Link Failure",
			Description: "Take the core link down after traffic settles, then bring it back.",
			Steps: []Step{
				{At: 10, Action: ActionInjectFault},
				{At: 30, Action: ActionRestoreFault},
			},
		},
		"flapping-link": {
			Name:        "Flapping Link",
			Description: "Toggle the core link every five seconds to exercise recovery.",
			Steps: []Step{
				{At: 5, Action: ActionInjectFault},
				{At: 10, Action: ActionRestoreFault},
				{At: 15, Action: ActionInjectFault},
				{At: 20, Action: ActionRestoreFault},
				{At: 25, Action: ActionInjectFault},
				{At: 30, Action: ActionRestoreFault},
			},
		},
		"outage-drill": {
			Name:        "Outage Drill",
			Description: "Fail the core link, leave it down while traffic accumulates, then restore and stop.",
			Steps: []Step{
				{At: 15, Action: ActionInjectFault},
				{At: 45, Action: ActionRestoreFault},
				{At: 60, Action: ActionStop},
			},
		},
	}
}
