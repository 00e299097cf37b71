//go:build !unix

package mailbox

// sliceRegion backs sharedMemory with a plain Go allocation, for hosts
// without anonymous mmap support.
type sliceRegion struct {
	mem []byte
}

func newSharedMemory(size int) (sharedMemory, error) {
	return &sliceRegion{mem: make([]byte, size)}, nil
}

func (r *sliceRegion) Bytes() []byte { return r.mem }

func (r *sliceRegion) Close() error { return nil }
