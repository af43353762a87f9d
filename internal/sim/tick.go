package sim

import (
	"context"

	"netsim-dashboard/internal/logging"
)

// Run blocks until the context is done, then cancels all timers.
func (c *Controller) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("simulation controller ready",
		"tick_interval", c.settings.TickInterval,
		"inject_latency", c.settings.InjectLatency,
		"restore_latency", c.settings.RestoreLatency,
		"fault_link", c.settings.FaultLink)
	<-ctx.Done()
	c.Close()
	log.Info("stopping simulation controller")
}

// tick advances elapsed time and counters. Ticks from a cancelled task
// generation are dropped.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if !c.state.Running || gen != c.tickGen {
		c.mu.Unlock()
		return
	}
	c.state = c.state.Ticked(c.gen)
	row := c.statsRowLocked()
	c.enqueueLocked(&row, nil)
	c.mu.Unlock()

	c.log.Debug("tick", "elapsed_seconds", row.ElapsedSeconds, "sent", row.TotalSent, "received", row.TotalReceived)
	c.drain()
}
