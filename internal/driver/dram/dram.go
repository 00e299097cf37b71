// Package dram implements the DRAM controller suspend/resume abstraction
// (spec.md SUPPLEMENTED FEATURES): entering self-refresh and suspending the
// controller during a deep suspend, and resuming/exiting self-refresh on
// the way back out. Unlike most drivers here there is no reference count:
// exactly one DRAM controller exists and the system state machine drives it
// directly, mirroring the original's dram_init/dram_suspend/dram_resume
// global functions rather than a device-model handle.
package dram

// Controller is implemented by the board's concrete DRAM controller.
type Controller interface {
	Init()
	Suspend()
	Resume()
}

// Init initializes the DRAM controller driver. Must be called once, before
// any Suspend/Resume call.
func Init(c Controller) { c.Init() }

// Suspend enters self-refresh and suspends the DRAM controller.
func Suspend(c Controller) { c.Suspend() }

// Resume resumes the DRAM controller and exits self-refresh.
func Resume(c Controller) { c.Resume() }

// Memory models the span of DRAM a board-specific Controller checksums
// before cutting power to it, standing in for the original's direct reads
// from a fixed physical base address. A real Controller implementation
// backs this with the board's actual memory map; the simulator backs it
// with a plain byte slice.
type Memory struct {
	bytes    []byte
	saved    uint32
	hasSaved bool
}

// NewMemory wraps size bytes of simulated DRAM.
func NewMemory(size int) *Memory { return &Memory{bytes: make([]byte, size)} }

// Bytes exposes the backing storage for tests and the simulator to mutate.
func (m *Memory) Bytes() []byte { return m.bytes }

// checksum samples a handful of widely-spaced words, the same sparse
// pattern the original's dram_calc_checksum uses so verification catches
// gross corruption without reading the whole span on every suspend.
func (m *Memory) checksum() uint32 {
	var sum uint32
	for offset := uint32(4); int(offset) < len(m.bytes) && offset < 1<<26; offset <<= 1 {
		sum += m.read32(1 * offset)
		sum += m.read32(3 * offset)
		sum++
		sum *= ^offset
	}
	return sum
}

func (m *Memory) read32(offset uint32) uint32 {
	if int(offset)+4 > len(m.bytes) {
		return 0
	}
	b := m.bytes[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// SaveChecksum records a checksum of m's current contents, to be verified
// after resume. A board's Controller.Suspend implementation calls this
// before cutting DRAM power, mirroring dram_save_checksum.
func (m *Memory) SaveChecksum() {
	m.saved = m.checksum()
	m.hasSaved = true
}

// VerifyChecksum panics if m's contents no longer match the last saved
// checksum, mirroring dram_verify_checksum's panic("DRAM checksum
// mismatch!"). A board's Controller.Resume implementation calls this after
// DRAM self-refresh exit, before anything else touches memory.
func (m *Memory) VerifyChecksum() {
	if !m.hasSaved {
		return
	}
	if m.checksum() != m.saved {
		panic("dram: checksum mismatch on resume")
	}
}
