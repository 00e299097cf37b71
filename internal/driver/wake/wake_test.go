package wake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	avcc, vddSys bool
	events       uint32
}

func (f *fakeSource) NeedsAVCC() bool    { return f.avcc }
func (f *fakeSource) NeedsVDDSys() bool  { return f.vddSys }
func (f *fakeSource) Poll() uint32       { e := f.events; f.events = 0; return e }

func TestNeedsAVCCIsTrueIfAnySourceRequiresIt(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeSource{})
	r.Register(&fakeSource{avcc: true})

	assert.True(t, r.NeedsAVCC())
	assert.False(t, r.NeedsVDDSys())
}

func TestEmptyRegistryNeedsNothing(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.NeedsAVCC())
	assert.False(t, r.NeedsVDDSys())
}

func TestPollAggregatesAndClearsEvents(t *testing.T) {
	r := NewRegistry()
	a := &fakeSource{events: 0x1}
	b := &fakeSource{events: 0x4}
	r.Register(a)
	r.Register(b)

	assert.Equal(t, uint32(0x5), r.Poll())
	assert.Equal(t, uint32(0), r.Poll())
}
