// Package watchdog implements the watchdog-timer abstraction (spec.md
// §4.6): board configuration selects at most one concrete watchdog driver;
// Select probes the configured candidates in turn and returns the first
// that is present, mirroring watchdog_get's fallback-selection pattern.
package watchdog

import "github.com/socfw/scp/internal/device"

// Ops is the per-watchdog vtable.
type Ops interface {
	// ResetSystem triggers an immediate full system reset.
	ResetSystem()
	// Restart restarts (kicks) the watchdog countdown; the system state
	// machine calls it on every iteration while awake.
	Restart()
}

// Candidate is one board-configured watchdog driver instance.
type Candidate struct {
	Dev *device.Device
	Ops Ops
}

// Select probes each candidate in order and returns the first one that
// probes successfully, or nil if none are present on this board.
func Select(candidates []Candidate) *Candidate {
	for i := range candidates {
		if device.GetOrNull(candidates[i].Dev) != nil {
			return &candidates[i]
		}
	}
	return nil
}

func ResetSystem(c *Candidate) { c.Ops.ResetSystem() }
func Restart(c *Candidate)     { c.Ops.Restart() }
