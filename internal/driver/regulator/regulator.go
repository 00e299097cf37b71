// Package regulator implements the power-supply regulator abstraction
// (spec.md §4.6): a small vtable (enable/disable/get-state by id) over a
// regulator controller device, letting the firmware's system supply hooks
// turn board-configured rails on and off without knowing which PMIC or discrete
// regulator is wired to which id.
package regulator

import (
	"github.com/socfw/scp/internal/device"
)

// Ops is the per-controller vtable a regulator driver supplies.
type Ops interface {
	SetState(id uint8, enable bool) error
	GetState(id uint8) (bool, error)
}

// Controller pairs a device with the ops it implements, analogous to the
// original's regulator_driver wrapping a device_driver.
type Controller struct {
	Dev *device.Device
	Ops Ops
}

// Enable turns on the rail identified by id.
func Enable(c *Controller, id uint8) error {
	return c.Ops.SetState(id, true)
}

// Disable turns off the rail identified by id.
func Disable(c *Controller, id uint8) error {
	return c.Ops.SetState(id, false)
}

// GetState reports whether the rail identified by id is currently enabled.
func GetState(c *Controller, id uint8) (bool, error) {
	return c.Ops.GetState(id)
}
