// Package command implements the SCPI command dispatch table (spec.md
// §4.9), grounded on common/scpi_cmds.c: a fixed table of command numbers
// mapping to a handler, an expected request payload size, and flags
// controlling whether a reply is sent and which clients may issue the
// command at all.
package command

import (
	"github.com/socfw/scp/internal/logging"
	"github.com/socfw/scp/internal/mailbox"
)

// Flag controls dispatch behavior for one command table entry.
type Flag uint8

const (
	// NoReply suppresses sending a reply after the handler runs.
	NoReply Flag = 1 << iota
	// SecureOnly rejects the command unless it arrives on the secure
	// client channel (preventing a non-secure OS from bypassing its
	// trusted firmware's coordination of power state changes).
	SecureOnly
)

// Command numbers, as fixed by the SCPI specification.
const (
	ScpReady     uint8 = 0x01
	GetScpCap    uint8 = 0x02
	SetCSSPower  uint8 = 0x03
	GetCSSPower  uint8 = 0x04
	SetSysPower  uint8 = 0x05
)

// HandlerFunc processes one command's already-size-and-access-validated
// request, filling in the reply payload and returning its size in bytes.
type HandlerFunc func(client uint8, rx *mailbox.Message, tx *mailbox.Message) (mailbox.Status, uint16)

// Entry is one command table entry.
type Entry struct {
	Handler HandlerFunc
	RxSize  uint16
	Flags   Flag
}

// SecureClient is the client id permitted to issue SecureOnly commands
// (the EL3 / trusted-firmware channel in the original's two-client model).
const SecureClient uint8 = 0

// Table is the dispatch table indexed by command number. Index 0 is
// unused (0 is not a valid SCPI command); entries with a nil Handler are
// recognized-but-unimplemented commands and report E_SUPPORT.
type Table []Entry

// Dispatch runs the appropriate handler for rx, writing the result into
// tx and returning whether a reply should be sent (mirroring
// scpi_handle_cmd's bool return). tx's Command and Sender always mirror
// rx's, and tx.Size defaults to 0, regardless of dispatch outcome.
func (t Table) Dispatch(client uint8, rx, tx *mailbox.Message) bool {
	tx.Command = rx.Command
	tx.Sender = rx.Sender
	tx.Size = 0
	tx.Status = mailbox.StatusESupport

	if int(rx.Command) >= len(t) {
		return true
	}
	entry := t[rx.Command]

	switch {
	case entry.Flags&SecureOnly != 0 && client != SecureClient:
		tx.Status = mailbox.StatusEAccess
	case rx.Size != entry.RxSize:
		tx.Status = mailbox.StatusESize
	case entry.Handler != nil:
		status, size := entry.Handler(client, rx, tx)
		tx.Status = status
		tx.Size = size
	default:
		// Table has a slot for this command, but no handler: treat as
		// unsupported rather than dispatching through a nil func.
	}

	return entry.Flags&NoReply == 0
}

// Dispatcher wraps a Table with rate-limited logging of rejected requests.
// A client retrying an unrecognized or malformed command every poll
// iteration is exactly the kind of repeated, low-value event
// logging.Logger.RateLimited exists to bound.
type Dispatcher struct {
	Table Table
	Log   *logging.Logger
}

// Dispatch runs d.Table.Dispatch and logs a rate-limited warning if the
// request was rejected before reaching its handler.
func (d Dispatcher) Dispatch(client uint8, rx, tx *mailbox.Message) bool {
	reply := d.Table.Dispatch(client, rx, tx)
	if d.Log == nil {
		return reply
	}
	fields := map[string]any{"client": client, "command": rx.Command}
	switch tx.Status {
	case mailbox.StatusESupport:
		d.Log.RateLimited("command.unrecognized", "rejected unrecognized or unimplemented command", fields)
	case mailbox.StatusESize:
		fields["size"] = rx.Size
		d.Log.RateLimited("command.bad_size", "rejected command with wrong payload size", fields)
	case mailbox.StatusEAccess:
		d.Log.RateLimited("command.access_denied", "rejected secure-only command from non-secure client", fields)
	}
	return reply
}
