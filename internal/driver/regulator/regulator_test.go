package regulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socfw/scp/internal/device"
)

type fakeOps struct {
	states map[uint8]bool
}

func newFakeOps() *fakeOps { return &fakeOps{states: map[uint8]bool{}} }

func (f *fakeOps) SetState(id uint8, enable bool) error {
	f.states[id] = enable
	return nil
}

func (f *fakeOps) GetState(id uint8) (bool, error) {
	return f.states[id], nil
}

func TestEnableDisableRoundTrip(t *testing.T) {
	ops := newFakeOps()
	c := &Controller{Dev: device.New("pmic0", device.Dummy{}), Ops: ops}

	require.NoError(t, Enable(c, 3))
	state, err := GetState(c, 3)
	require.NoError(t, err)
	assert.True(t, state)

	require.NoError(t, Disable(c, 3))
	state, err = GetState(c, 3)
	require.NoError(t, err)
	assert.False(t, state)
}

func TestRailsAreIndependent(t *testing.T) {
	ops := newFakeOps()
	c := &Controller{Dev: device.New("pmic0", device.Dummy{}), Ops: ops}

	require.NoError(t, Enable(c, 1))
	state, err := GetState(c, 2)
	require.NoError(t, err)
	assert.False(t, state, "enabling rail 1 must not affect rail 2")
}
