package pmic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socfw/scp/internal/device"
	"github.com/socfw/scp/internal/driver/bus"
)

// fakeBusOps is a minimal single-register-at-a-time I2C-style bus: the byte
// written right after a write-direction Start is always the target
// register address; any Write after that is a data byte to it.
type fakeBusOps struct {
	regs      map[uint8]uint8
	lastReg   uint8
	expectReg bool
}

func newFakeBusOps() *fakeBusOps { return &fakeBusOps{regs: map[uint8]uint8{}} }

func (f *fakeBusOps) Start(_ uint8, dir bus.Direction) error {
	if dir == bus.Write {
		f.expectReg = true
	}
	return nil
}

func (f *fakeBusOps) Write(data uint8) error {
	if f.expectReg {
		f.lastReg = data
		f.expectReg = false
		return nil
	}
	f.regs[f.lastReg] = data
	return nil
}

func (f *fakeBusOps) Read() (uint8, error) { return f.regs[f.lastReg], nil }
func (f *fakeBusOps) Stop()                {}

func TestAXP20XResumeSetsResumeBitOnly(t *testing.T) {
	ops := newFakeBusOps()
	a := AXP20X{Bus: bus.Handle{Dev: device.New("axp20x", device.Dummy{}), Ops: ops, Addr: 0x34}}

	require.NoError(t, a.Resume())
	assert.Equal(t, uint8(axp20xResumeBit), ops.regs[axp20xWakeupCtrlReg])
}

func TestAXP20XShutdownSetsShutdownBit(t *testing.T) {
	ops := newFakeBusOps()
	a := AXP20X{Bus: bus.Handle{Dev: device.New("axp20x", device.Dummy{}), Ops: ops, Addr: 0x34}}

	require.NoError(t, a.Shutdown())
	assert.Equal(t, uint8(axp20xShutdownBit), ops.regs[axp20xPowerDisableReg])
}

func TestAXP20XResetPreservesExistingBits(t *testing.T) {
	ops := newFakeBusOps()
	ops.regs[axp20xWakeupCtrlReg] = axp20xResumeBit
	a := AXP20X{Bus: bus.Handle{Dev: device.New("axp20x", device.Dummy{}), Ops: ops, Addr: 0x34}}

	require.NoError(t, a.Reset())
	assert.Equal(t, uint8(axp20xResumeBit|axp20xResetBit), ops.regs[axp20xWakeupCtrlReg])
}

func TestAXP20XSatisfiesOps(t *testing.T) {
	var _ Ops = AXP20X{}
}
