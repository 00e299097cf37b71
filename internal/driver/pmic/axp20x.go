package pmic

import "github.com/socfw/scp/internal/driver/bus"

// AXP20X register offsets, grounded on drivers/pmic/axp20x.h.
const (
	axp20xWakeupCtrlReg   = 0x31
	axp20xPowerDisableReg = 0x32
)

// AXP20X bit positions, grounded on drivers/pmic/axp20x.c /
// drivers/pmic/axp223.c.
const (
	axp20xResetBit        = 1 << 6
	axp20xResumeBit       = 1 << 5
	axp20xShutdownBit     = 1 << 7
	axp20xSuspendAllowIRQ = 1<<4 | 1<<3
)

// AXP20X is a bus-register-backed PMIC driver for the AXP20X family,
// grounded on drivers/pmic/axp20x.c and drivers/pmic/axp223.c: every action
// is a single read-modify-write through the bus handle, so this package
// never branches on whether the board wires the part over I2C or RSB.
type AXP20X struct {
	Bus bus.Handle
}

func (a AXP20X) setBits(reg uint8, bits uint8) error {
	cur, err := bus.ReadReg(a.Bus, reg, 1)
	if err != nil {
		return err
	}
	return bus.WriteReg(a.Bus, reg, cur[0]|bits)
}

func (a AXP20X) Reset() error {
	return a.setBits(axp20xWakeupCtrlReg, axp20xResetBit)
}

func (a AXP20X) Resume() error {
	return a.setBits(axp20xWakeupCtrlReg, axp20xResumeBit)
}

func (a AXP20X) Shutdown() error {
	return a.setBits(axp20xPowerDisableReg, axp20xShutdownBit)
}

func (a AXP20X) Suspend() error {
	return a.setBits(axp20xWakeupCtrlReg, axp20xSuspendAllowIRQ)
}
