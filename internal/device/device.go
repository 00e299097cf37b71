// Package device implements the reference-counted device lifecycle model
// (spec.md §3, §4.3): a device is "probed" iff its reference count is
// greater than zero, state is lazily initialized on first acquisition and
// torn down on last release, and reference counts are deliberately plain
// ints rather than atomics — the single cooperative control thread is the
// only mutator (spec.md §5).
package device

import (
	"fmt"

	"github.com/socfw/scp/internal/errcode"
)

// State is the minimum mutable state every device carries. Drivers extend
// it by embedding State as the first field of their own mutable state
// struct (intrusive containment, spec.md §9); Go field access replaces the
// container_of idiom the original C uses.
type State struct {
	Refcount int
}

// Probed reports whether the device's reference count is greater than zero.
func (s *State) Probed() bool { return s.Refcount > 0 }

// Driver is the per-device vtable: Probe runs on the first Get, Release on
// the last Put. Probe failures must not mutate shared state visible beyond
// the call (Get only bumps the refcount after Probe succeeds).
type Driver interface {
	Probe(dev *Device) error
	Release(dev *Device)
}

// Device is an immutable descriptor (name + driver) paired with separately
// allocated mutable state. Descriptors are expected to be constructed once,
// at start of day, and never mutated; only the State they point to changes.
type Device struct {
	Name  string
	Drv   Driver
	State *State
}

// New constructs a device descriptor with freshly allocated zeroed state.
func New(name string, drv Driver) *Device {
	return &Device{Name: name, Drv: drv, State: &State{}}
}

// Get acquires a reference to dev. If this is the first reference, the
// driver's Probe is called; on failure the refcount is left unchanged and
// the error is returned. On success the refcount is incremented only after
// Probe succeeds.
func Get(dev *Device) error {
	if dev == nil {
		return errcode.ENoDev
	}
	if !dev.State.Probed() {
		if err := dev.Drv.Probe(dev); err != nil {
			return fmt.Errorf("%s: probe failed: %w", dev.Name, err)
		}
	}
	dev.State.Refcount++
	return nil
}

// GetOrNull acquires dev, returning dev on success or nil on failure. This
// is the "fall back to a safe default" pattern spec.md §7 requires of most
// callers: errors are swallowed and treated as "the optional feature is
// unavailable".
func GetOrNull(dev *Device) *Device {
	if Get(dev) != nil {
		return nil
	}
	return dev
}

// Put releases a reference to dev. Release never fails; when the last
// reference is dropped the driver's Release hook runs.
func Put(dev *Device) {
	if dev == nil {
		return
	}
	dev.State.Refcount--
	if dev.State.Refcount < 0 {
		panic(fmt.Sprintf("%s: refcount underflow", dev.Name))
	}
	if dev.State.Refcount == 0 {
		dev.Drv.Release(dev)
	}
}

// Dummy is a no-op Driver, useful for devices with no real probe/release
// work (e.g. purely virtual controllers in tests).
type Dummy struct{}

func (Dummy) Probe(*Device) error { return nil }
func (Dummy) Release(*Device)     {}
