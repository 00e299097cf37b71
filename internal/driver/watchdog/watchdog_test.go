package watchdog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socfw/scp/internal/device"
)

type fakeOps struct {
	resetSystems, restarts int
}

func (f *fakeOps) ResetSystem() { f.resetSystems++ }
func (f *fakeOps) Restart()     { f.restarts++ }

type absentDriver struct{}

func (absentDriver) Probe(*device.Device) error { return errors.New("not present") }
func (absentDriver) Release(*device.Device)      {}

func TestSelectFallsThroughToSecondCandidate(t *testing.T) {
	ops := &fakeOps{}
	candidates := []Candidate{
		{Dev: device.New("sun6i-wdt", absentDriver{}), Ops: &fakeOps{}},
		{Dev: device.New("sun9i-twd", device.Dummy{}), Ops: ops},
	}

	got := Select(candidates)
	require.NotNil(t, got)
	ResetSystem(got)
	assert.Equal(t, 1, ops.resetSystems)
}

func TestSelectReturnsNilWhenNoWatchdogConfigured(t *testing.T) {
	candidates := []Candidate{
		{Dev: device.New("sun6i-wdt", absentDriver{}), Ops: &fakeOps{}},
	}
	assert.Nil(t, Select(candidates))
}
