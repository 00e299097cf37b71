// Package pmic implements the power-management-IC abstraction (spec.md
// §4.6): board configuration selects at most one concrete PMIC driver, and
// Select probes each candidate in turn (the "fall back to the next
// configured part" pattern the original's weak pmic_get override performs
// at link time) until one probes successfully or all are exhausted.
package pmic

import "github.com/socfw/scp/internal/device"

// Ops is the per-PMIC vtable the system state machine drives during power
// transitions.
type Ops interface {
	Suspend() error
	Resume() error
	Shutdown() error
	Reset() error
}

// Candidate is one board-configured PMIC driver instance.
type Candidate struct {
	Dev *device.Device
	Ops Ops
}

// Select probes each candidate in order and returns the first one that
// probes successfully, or nil if none are present on this board. This
// mirrors pmic_get's behavior, generalized from the original's fixed
// AXP803/AXP805 pair to an arbitrary board-supplied candidate list.
func Select(candidates []Candidate) *Candidate {
	for i := range candidates {
		if device.GetOrNull(candidates[i].Dev) != nil {
			return &candidates[i]
		}
	}
	return nil
}

func Suspend(c *Candidate) error  { return c.Ops.Suspend() }
func Resume(c *Candidate) error   { return c.Ops.Resume() }
func Shutdown(c *Candidate) error { return c.Ops.Shutdown() }
func Reset(c *Candidate) error    { return c.Ops.Reset() }
