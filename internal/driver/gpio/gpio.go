// Package gpio implements the GPIO pin abstraction (spec.md §4.5): a pin
// handle pairs a controller device with a pin number; acquiring a handle
// probes the controller and configures the pin's mode/drive/pull, and
// releasing it restores the pin to its disabled state before releasing the
// controller.
package gpio

import (
	"github.com/socfw/scp/internal/device"
)

// Mode selects a pin's direction.
type Mode uint8

const (
	ModeInput Mode = iota
	ModeOutput
)

// Drive selects a pin's output drive strength.
type Drive uint8

const (
	Drive10mA Drive = iota
	Drive20mA
	Drive30mA
	Drive40mA
)

// Pull selects a pin's internal pull resistor.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Config is the (drive strength, mode, pull) triple applied when a pin is
// acquired, matching spec.md §3's pin handle definition.
type Config struct {
	Mode  Mode
	Drive Drive
	Pull  Pull
}

// Ops is the per-controller vtable a GPIO driver supplies.
type Ops interface {
	InitPin(pin uint32, cfg Config) error
	ReleasePin(pin uint32)
	GetValue(pin uint32) (bool, error)
	SetValue(pin uint32, value bool) error
}

// Handle identifies one pin on one controller, plus the configuration
// applied to it on acquisition.
type Handle struct {
	Dev    *device.Device
	Ops    Ops
	Pin    uint32
	Config Config
}

// Get acquires the controller device and configures the pin.
func Get(h Handle) error {
	if err := device.Get(h.Dev); err != nil {
		return err
	}
	if err := h.Ops.InitPin(h.Pin, h.Config); err != nil {
		device.Put(h.Dev)
		return err
	}
	return nil
}

// Put restores the pin to its disabled state and releases the controller.
func Put(h Handle) {
	h.Ops.ReleasePin(h.Pin)
	device.Put(h.Dev)
}

// GetValue reads the pin's current level.
func GetValue(h Handle) (bool, error) {
	return h.Ops.GetValue(h.Pin)
}

// SetValue drives the pin to the given level.
func SetValue(h Handle, value bool) error {
	return h.Ops.SetValue(h.Pin, value)
}
