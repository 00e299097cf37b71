// Package clock implements the hierarchical clock tree described in
// spec.md §3/§4.4: a clock handle is a (controller device, clock id) pair;
// acquiring one recursively acquires its parent and enables the clock
// top-down (reset deassert, ungate, PLL lock wait); releasing reverses the
// order bottom-up.
package clock

import (
	"fmt"

	"github.com/socfw/scp/internal/device"
	"github.com/socfw/scp/internal/errcode"
	"github.com/socfw/scp/internal/mmio"
)

// State is the run state of a clock, as returned by Controller.State.
type State int

const (
	Disabled State = iota // reset asserted, or an ancestor is disabled
	Gated                 // reset deasserted but gate closed
	Enabled               // ungated, reset deasserted (lock is not checked)
)

// Descriptor carries the register layout for one clock id: offset and bit
// positions for gate / reset / PLL-lock / config-update bits. A zero bit
// position means "not present" (e.g. a clock with no reset line sets
// ResetBit to 0 and Reset is always considered deasserted).
type Descriptor struct {
	RegOffset uintptr
	GateBit   uint32 // 0 = no gate
	ResetBit  uint32 // 0 = no reset line
	LockBit   uint32 // 0 = no PLL lock to wait for
	UpdateBit uint32 // 0 = no config-update strobe
}

// Controller is implemented per clock-controller device. It supplies the
// parent-lookup and rate-computation hooks spec.md §4.4 requires, plus
// access to the controller's register space and per-id descriptors.
type Controller interface {
	// Parent returns the parent clock handle for id, or ok=false if id has
	// no parent (e.g. an oscillator).
	Parent(id int) (Handle, bool)
	// Descriptor returns the register layout for id.
	Descriptor(id int) Descriptor
	// ComputeRate applies this controller's id-specific transform (e.g. a
	// divider) to the parent's rate (0 if id has no parent).
	ComputeRate(id int, parentRate uint32) uint32
	// Registers returns the controller's simulated register space.
	Registers() *mmio.RegisterSpace
	// WaitLock busy-waits for the PLL lock bit to be set, returning false
	// on timeout. Only called when the descriptor declares a lock bit.
	WaitLock(id int) bool
}

// perClockState is one clock's mutable refcount.
type perClockState struct {
	refcount int
}

// ControllerState holds the per-clock refcounts for every id a controller
// exposes. It is kept separate from the controller device's own
// device.State (which tracks whether the controller itself has been
// probed) because device.Device.State is a concrete *device.State, not an
// extension point: a clock Handle carries both.
type ControllerState struct {
	clocks []perClockState
}

// NewControllerState allocates per-clock refcount storage for numClocks ids.
func NewControllerState(numClocks int) *ControllerState {
	return &ControllerState{clocks: make([]perClockState, numClocks)}
}

// Handle identifies one clock: a controller device, the shared refcount
// table for that controller, and a clock id scoped to it. Handles are
// small and copied by value, never owned.
type Handle struct {
	Dev   *device.Device
	State *ControllerState
	ID    int
	Ctl   Controller
}

func (h Handle) state() *perClockState {
	return &h.State.clocks[h.ID]
}

// Active reports whether the clock currently has at least one reference.
func (h Handle) Active() bool {
	return h.state().refcount > 0
}

// Get acquires the controller device, recursively acquires the parent (if
// any), and enables the clock. Subsequent references after the first are
// O(1): only the refcount is bumped and Enable is re-run (idempotent).
func Get(h Handle) error {
	st := h.state()
	if st.refcount == 0 {
		if err := device.Get(h.Dev); err != nil {
			return err
		}
		if parent, ok := h.Ctl.Parent(h.ID); ok {
			if err := Get(parent); err != nil {
				device.Put(h.Dev)
				return err
			}
		}
	}
	st.refcount++
	if err := Enable(h); err != nil {
		return err
	}
	return nil
}

// Put releases a reference; on the last release the clock is fully
// disabled (gated, reset asserted) and the parent reference is dropped.
func Put(h Handle) {
	st := h.state()
	if st.refcount == 0 {
		panic(fmt.Sprintf("clock: over-release of clock %d on %s", h.ID, h.Dev.Name))
	}
	st.refcount--
	if st.refcount > 0 {
		return
	}
	Disable(h)
	if parent, ok := h.Ctl.Parent(h.ID); ok {
		Put(parent)
	}
	device.Put(h.Dev)
}

// Enable performs the idempotent hardware transition to the enabled state:
// deassert reset, ungate, strobe the config-update bit, then wait for PLL
// lock if the descriptor declares one. It does not change the refcount.
func Enable(h Handle) error {
	d := h.Ctl.Descriptor(h.ID)
	regs := h.Ctl.Registers()

	if d.ResetBit != 0 {
		regs.Set(d.RegOffset, d.ResetBit) // deassert reset before ungating
	}
	if d.GateBit != 0 {
		regs.Set(d.RegOffset, d.GateBit)
	}
	if d.UpdateBit != 0 {
		regs.Set(d.RegOffset, d.UpdateBit)
	}
	if d.LockBit != 0 {
		if !h.Ctl.WaitLock(h.ID) {
			return errcode.EIO
		}
	}
	return nil
}

// Disable performs the idempotent hardware transition to the disabled
// state: gate, then assert reset (the reverse order of Enable).
func Disable(h Handle) {
	d := h.Ctl.Descriptor(h.ID)
	regs := h.Ctl.Registers()

	if d.GateBit != 0 {
		regs.Clr(d.RegOffset, d.GateBit)
	}
	if d.ResetBit != 0 {
		regs.Clr(d.RegOffset, d.ResetBit)
	}
}

// Rate recursively computes the clock's current rate in Hz.
func Rate(h Handle) uint32 {
	var parentRate uint32
	if parent, ok := h.Ctl.Parent(h.ID); ok {
		parentRate = Rate(parent)
	}
	return h.Ctl.ComputeRate(h.ID, parentRate)
}

// GetState returns Disabled if any ancestor or own reset is asserted, Gated
// if the gate is closed, Enabled otherwise.
func GetState(h Handle) State {
	if parent, ok := h.Ctl.Parent(h.ID); ok {
		if ps := GetState(parent); ps != Enabled {
			return ps
		}
	}

	d := h.Ctl.Descriptor(h.ID)
	regs := h.Ctl.Registers()
	v := regs.Read32(d.RegOffset)

	if d.ResetBit != 0 && v&d.ResetBit == 0 {
		return Disabled
	}
	if d.GateBit != 0 && v&d.GateBit == 0 {
		return Gated
	}
	return Enabled
}
