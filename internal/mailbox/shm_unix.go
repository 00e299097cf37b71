//go:build unix

package mailbox

import "golang.org/x/sys/unix"

// mmapRegion backs sharedMemory with an anonymous mmap, so the region's
// address stability and page-aligned allocation match the real shared
// memory area's semantics more closely than a plain Go slice would.
type mmapRegion struct {
	mem []byte
}

func newSharedMemory(size int) (sharedMemory, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &mmapRegion{mem: mem}, nil
}

func (r *mmapRegion) Bytes() []byte { return r.mem }

func (r *mmapRegion) Close() error {
	return unix.Munmap(r.mem)
}
