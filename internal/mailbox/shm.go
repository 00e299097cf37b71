// Package mailbox implements the shared-memory mailbox/SCPI protocol engine
// (spec.md §3/§4.8), grounded on common/scpi.c and common/scpi_cmds.c from
// the original. Each client has a fixed-size shared memory area holding one
// inbound and one outbound message; a ChannelController abstracts the
// underlying message-box hardware (doorbell-style notify/ack primitives)
// that signals when a message has arrived or been acknowledged.
package mailbox

// sharedMemory is the backing allocation for every client's message area.
// On unix targets it is an anonymous mmap (shm_unix.go), matching how the
// real firmware's shared memory region is mapped at a fixed physical
// address; elsewhere it's a plain Go slice (shm_other.go), since the host
// simulator has no physical address space to share.
type sharedMemory interface {
	Bytes() []byte
	Close() error
}
