package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socfw/scp/internal/device"
	"github.com/socfw/scp/internal/mmio"
)

const (
	gateBit   = 1 << 0
	resetBit  = 1 << 1
	lockBit   = 1 << 2
	updateBit = 1 << 3
)

// fakeController is a two-level tree: clock 1 (child) has parent clock 0
// (root). Both live in the same register space at different offsets and
// share one refcount table.
type fakeController struct {
	regs      *mmio.RegisterSpace
	dev       *device.Device
	state     *ControllerState
	lockReady bool
	waits     int
}

func newFakeController() *fakeController {
	return &fakeController{
		regs:      mmio.NewRegisterSpace(16),
		dev:       device.New("clkctl", device.Dummy{}),
		state:     NewControllerState(2),
		lockReady: true,
	}
}

func (c *fakeController) root() Handle  { return Handle{Dev: c.dev, State: c.state, ID: 0, Ctl: c} }
func (c *fakeController) child() Handle { return Handle{Dev: c.dev, State: c.state, ID: 1, Ctl: c} }

func (c *fakeController) Parent(id int) (Handle, bool) {
	if id != 1 {
		return Handle{}, false
	}
	return c.root(), true
}

func (c *fakeController) Descriptor(id int) Descriptor {
	if id == 0 {
		return Descriptor{RegOffset: 0, GateBit: gateBit, ResetBit: resetBit, LockBit: lockBit, UpdateBit: updateBit}
	}
	return Descriptor{RegOffset: 4, GateBit: gateBit, ResetBit: resetBit}
}

func (c *fakeController) ComputeRate(id int, parentRate uint32) uint32 {
	if id == 0 {
		return 24_000_000
	}
	return parentRate / 2
}

func (c *fakeController) Registers() *mmio.RegisterSpace { return c.regs }

func (c *fakeController) WaitLock(int) bool {
	c.waits++
	return c.lockReady
}

func TestEnableDeassertsResetBeforeGating(t *testing.T) {
	c := newFakeController()
	h := c.root()

	require.NoError(t, Get(h))
	v := c.regs.Read32(0)
	assert.NotZero(t, v&resetBit)
	assert.NotZero(t, v&gateBit)
	assert.NotZero(t, v&updateBit)
	assert.Equal(t, 1, c.waits)
}

func TestDisableGatesBeforeAssertingReset(t *testing.T) {
	c := newFakeController()
	h := c.root()

	require.NoError(t, Get(h))
	Put(h)

	v := c.regs.Read32(0)
	assert.Zero(t, v&gateBit)
	assert.Zero(t, v&resetBit)
}

func TestGetFailsWhenLockNeverAsserts(t *testing.T) {
	c := newFakeController()
	c.lockReady = false

	err := Get(c.root())
	require.Error(t, err)
}

func TestRefcountCoalescesRepeatedGet(t *testing.T) {
	c := newFakeController()
	h := c.root()

	require.NoError(t, Get(h))
	require.NoError(t, Get(h))
	assert.True(t, h.Active())
	Put(h)
	assert.True(t, h.Active())
	Put(h)
	assert.False(t, h.Active())
}

func TestOverReleasePanics(t *testing.T) {
	c := newFakeController()
	assert.Panics(t, func() { Put(c.root()) })
}

func TestGetStateReflectsAncestry(t *testing.T) {
	c := newFakeController()

	// The root was never enabled, so its reset is still asserted.
	assert.Equal(t, Disabled, GetState(c.root()))

	// The child's own reset and gate are open, but it reports the state of
	// its disabled ancestor.
	require.NoError(t, Enable(c.child()))
	assert.Equal(t, Disabled, GetState(c.child()))
}

func TestGettingChildRecursivelyGetsParent(t *testing.T) {
	c := newFakeController()
	child := c.child()

	require.NoError(t, Get(child))
	assert.True(t, c.root().Active())
	assert.Equal(t, uint32(12_000_000), Rate(child))

	Put(child)
	assert.False(t, c.root().Active())
}

func TestPutOnlyReleasesParentOnLastChildReference(t *testing.T) {
	c := newFakeController()
	child := c.child()

	require.NoError(t, Get(child))
	require.NoError(t, Get(child))
	Put(child)
	assert.True(t, c.root().Active())
	Put(child)
	assert.False(t, c.root().Active())
}
