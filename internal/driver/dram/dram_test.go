package dram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeController struct {
	inits, suspends, resumes int
}

func (f *fakeController) Init()    { f.inits++ }
func (f *fakeController) Suspend() { f.suspends++ }
func (f *fakeController) Resume()  { f.resumes++ }

func TestInitSuspendResumeSequence(t *testing.T) {
	c := &fakeController{}
	Init(c)
	Suspend(c)
	Resume(c)

	assert.Equal(t, 1, c.inits)
	assert.Equal(t, 1, c.suspends)
	assert.Equal(t, 1, c.resumes)
}

func TestVerifyChecksumPassesWhenMemoryUnchanged(t *testing.T) {
	mem := NewMemory(1 << 20)
	copy(mem.Bytes(), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	mem.SaveChecksum()

	assert.NotPanics(t, mem.VerifyChecksum)
}

func TestVerifyChecksumPanicsWhenMemoryCorrupted(t *testing.T) {
	mem := NewMemory(1 << 20)
	copy(mem.Bytes(), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	mem.SaveChecksum()
	mem.Bytes()[12] ^= 0xff

	assert.Panics(t, mem.VerifyChecksum)
}

func TestVerifyChecksumIsNoopBeforeAnySave(t *testing.T) {
	mem := NewMemory(1 << 10)
	assert.NotPanics(t, mem.VerifyChecksum)
}
