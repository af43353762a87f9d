package sim

// AdminStatusWriter allows writers to receive web UI status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

// ActionSetter is implemented by interactive writers that can trigger
// controller operations.
type ActionSetter interface {
	SetActions(Actions)
}

// Actions are the operations an interactive shell may trigger.
type Actions struct {
	Start        func()
	Stop         func()
	InjectFault  func()
	RestoreFault func()
}

// ActionsFor binds the operations of c.
func ActionsFor(c *Controller) Actions {
	return Actions{
		Start:        func() { c.Start() },
		Stop:         func() { c.Stop() },
		InjectFault:  func() { c.InjectFault() },
		RestoreFault: func() { c.RestoreFault() },
	}
}
