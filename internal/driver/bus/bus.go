// Package bus implements the two-wire (I2C-style) register bus abstraction
// used to talk to the PMIC and other off-chip devices (spec.md §4.5). It
// models the start/write*/read*/stop transaction shape the original i2c.c
// exposes, built on top of a controller device handle.
package bus

import (
	"github.com/socfw/scp/internal/device"
	"github.com/socfw/scp/internal/errcode"
)

// Direction selects the transfer direction of a transaction.
type Direction uint8

const (
	Write Direction = iota
	Read
)

// Ops is the per-controller vtable a bus driver supplies.
type Ops interface {
	Start(addr uint8, dir Direction) error
	Write(data uint8) error
	Read() (uint8, error)
	Stop()
}

// Handle identifies a bus controller and the target device address on it.
type Handle struct {
	Dev  *device.Device
	Ops  Ops
	Addr uint8
}

// ReadReg performs a register read: write the register address, repeated
// start, then read count bytes.
func ReadReg(h Handle, reg uint8, count int) ([]byte, error) {
	if err := device.Get(h.Dev); err != nil {
		return nil, err
	}
	defer device.Put(h.Dev)

	if err := h.Ops.Start(h.Addr, Write); err != nil {
		return nil, err
	}
	if err := h.Ops.Write(reg); err != nil {
		h.Ops.Stop()
		return nil, err
	}
	if err := h.Ops.Start(h.Addr, Read); err != nil {
		h.Ops.Stop()
		return nil, err
	}

	out := make([]byte, count)
	for i := range out {
		b, err := h.Ops.Read()
		if err != nil {
			h.Ops.Stop()
			return nil, err
		}
		out[i] = b
	}
	h.Ops.Stop()
	return out, nil
}

// WriteReg performs a register write: write the register address followed
// by each data byte, in a single transaction.
func WriteReg(h Handle, reg uint8, data ...byte) error {
	if len(data) == 0 {
		return errcode.EInval
	}
	if err := device.Get(h.Dev); err != nil {
		return err
	}
	defer device.Put(h.Dev)

	if err := h.Ops.Start(h.Addr, Write); err != nil {
		return err
	}
	if err := h.Ops.Write(reg); err != nil {
		h.Ops.Stop()
		return err
	}
	for _, b := range data {
		if err := h.Ops.Write(b); err != nil {
			h.Ops.Stop()
			return err
		}
	}
	h.Ops.Stop()
	return nil
}
