package pmic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socfw/scp/internal/device"
)

type fakeOps struct {
	suspended, resumed, shutdowns, resets int
}

func (f *fakeOps) Suspend() error  { f.suspended++; return nil }
func (f *fakeOps) Resume() error   { f.resumed++; return nil }
func (f *fakeOps) Shutdown() error { f.shutdowns++; return nil }
func (f *fakeOps) Reset() error    { f.resets++; return nil }

type absentDriver struct{}

func (absentDriver) Probe(*device.Device) error { return errors.New("not present on this board") }
func (absentDriver) Release(*device.Device)      {}

func TestSelectSkipsAbsentCandidates(t *testing.T) {
	ops := &fakeOps{}
	candidates := []Candidate{
		{Dev: device.New("axp803", absentDriver{}), Ops: &fakeOps{}},
		{Dev: device.New("axp805", device.Dummy{}), Ops: ops},
	}

	got := Select(candidates)
	require.NotNil(t, got)
	assert.Same(t, ops, got.Ops)
}

func TestSelectReturnsNilWhenNoneConfigured(t *testing.T) {
	candidates := []Candidate{
		{Dev: device.New("axp803", absentDriver{}), Ops: &fakeOps{}},
	}
	assert.Nil(t, Select(candidates))
}

func TestSelectPrefersFirstMatchingCandidate(t *testing.T) {
	first := &fakeOps{}
	second := &fakeOps{}
	candidates := []Candidate{
		{Dev: device.New("axp803", device.Dummy{}), Ops: first},
		{Dev: device.New("axp805", device.Dummy{}), Ops: second},
	}

	got := Select(candidates)
	require.NotNil(t, got)
	assert.Same(t, first, got.Ops)

	require.NoError(t, Suspend(got))
	assert.Equal(t, 1, first.suspended)
	assert.Equal(t, 0, second.suspended)
}
