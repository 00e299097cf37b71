package mailbox

import (
	"fmt"

	"github.com/socfw/scp/internal/cycle"
	"github.com/socfw/scp/internal/device"
)

// VirtualChannel is the sentinel doorbell value meaning "an SCPI message is
// ready in the shared memory area for this channel". Messages notified
// with any other value are ignored, per the SCPI specification's
// channel-reuse allowance.
const VirtualChannel uint32 = 1 << 0

// SenderSCP identifies the SCP itself as the sender of a message it
// initiated (as opposed to a reply).
const SenderSCP uint8 = 0

// txTimeoutUS bounds how long an unacknowledged outgoing message may
// occupy the TX buffer before it is considered abandoned and the buffer is
// freed for reuse, matching the original's 10ms SCPI_TX_TIMEOUT.
const txTimeoutUS = 10_000

// ChannelController is implemented by the underlying message-box hardware
// (or its simulation): a set of one-way doorbell channels, two per client
// (RX and TX), each carrying a single word of notification data.
type ChannelController interface {
	// Send notifies the channel with the given value.
	Send(channel uint8, value uint32) error
	// Receive returns the most recently notified value for the channel and
	// whether one was pending. A received notification is consumed.
	Receive(channel uint8) (uint32, bool)
	// AckRx acknowledges the channel's most recent receive, allowing the
	// remote side to reuse its buffer.
	AckRx(channel uint8)
	// LastTxDone reports whether the last Send on the channel has been
	// acknowledged by the remote side.
	LastTxDone(channel uint8) bool
}

// Handler processes one received command for a client, filling in the
// client's tx message in place, and reports whether a reply should be
// sent (the SCPI_CMD_SCP_READY command, for example, suppresses its
// reply).
type Handler func(client uint8, rx, tx *Message) bool

// clientState is the per-client transmit bookkeeping: whether the TX
// buffer is currently occupied, and the deadline by which the client must
// acknowledge it.
type clientState struct {
	txFull   bool
	deadline uint32
}

// Engine is the mailbox protocol engine for a fixed number of clients. It
// owns the underlying channel controller, the shared message memory for
// all clients, and drives scpi_poll's per-client send/receive/dispatch
// loop.
type Engine struct {
	Dev *device.Device

	ctl     ChannelController
	clock   *cycle.Clock
	handler Handler
	clients int

	mem    []byte // per-client: [rx MessageSize][tx MessageSize]
	states []clientState
}

// NewEngine creates a mailbox engine for the given number of clients,
// backed by ctl and clock, dispatching received commands to handler.
func NewEngine(dev *device.Device, ctl ChannelController, clk *cycle.Clock, clients int, handler Handler) (*Engine, error) {
	shm, err := newSharedMemory(clients * 2 * MessageSize)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Dev:     dev,
		ctl:     ctl,
		clock:   clk,
		handler: handler,
		clients: clients,
		mem:     shm.Bytes(),
		states:  make([]clientState, clients),
	}, nil
}

func rxChannel(client uint8) uint8 { return 2 * client }
func txChannel(client uint8) uint8 { return 2*client + 1 }

func (e *Engine) rxBuf(client uint8) []byte {
	base := int(client) * 2 * MessageSize
	return e.mem[base : base+MessageSize]
}

func (e *Engine) txBuf(client uint8) []byte {
	base := int(client)*2*MessageSize + MessageSize
	return e.mem[base : base+MessageSize]
}

// sendMessage notifies the client that a new message is ready in its TX
// buffer, and arms the unacknowledged-reply timeout.
func (e *Engine) sendMessage(client uint8) error {
	st := &e.states[client]
	st.deadline = e.clock.SetTimeout(txTimeoutUS)
	st.txFull = true
	if err := e.ctl.Send(txChannel(client), VirtualChannel); err != nil {
		return fmt.Errorf("mailbox: client %d: send failed: %w", client, err)
	}
	return nil
}

// CreateMessage builds and sends an SCP-initiated message (one with no
// corresponding request), such as SCP_READY. It is a no-op if the client's
// TX buffer is still occupied by a previous, unacknowledged message.
func (e *Engine) CreateMessage(client uint8, command uint8) error {
	if client >= uint8(e.clients) {
		return fmt.Errorf("mailbox: invalid client %d", client)
	}
	if e.states[client].txFull {
		return nil
	}

	msg := &Message{Command: command, Sender: SenderSCP, Size: 0, Status: StatusOK}
	msg.marshal(e.txBuf(client))

	return e.sendMessage(client)
}

// pollOneClient mirrors scpi_poll_one_client: free the TX buffer if the
// previous reply was acknowledged or timed out, then — only once the TX
// buffer is free — check for and dispatch a new incoming request.
func (e *Engine) pollOneClient(client uint8) error {
	st := &e.states[client]
	tx, rx := txChannel(client), rxChannel(client)

	if st.txFull {
		if e.ctl.LastTxDone(tx) || e.clock.Expired(st.deadline) {
			st.txFull = false
		}
	}

	if st.txFull {
		return nil
	}

	notify, ok := e.ctl.Receive(rx)
	if !ok {
		return nil
	}

	replyNeeded := false
	if notify == VirtualChannel {
		var rxMsg, txMsg Message
		rxMsg.unmarshal(e.rxBuf(client))

		replyNeeded = e.handler(client, &rxMsg, &txMsg)
		txMsg.marshal(e.txBuf(client))
	}
	// The handler must run before acknowledging, so the client cannot
	// reuse the RX buffer out from under it.
	e.ctl.AckRx(rx)

	if replyNeeded {
		return e.sendMessage(client)
	}
	return nil
}

// Poll advances every client's protocol state machine by one step.
func (e *Engine) Poll() error {
	for client := 0; client < e.clients; client++ {
		if err := e.pollOneClient(uint8(client)); err != nil {
			return err
		}
	}
	return nil
}

// Clients returns the number of clients this engine serves.
func (e *Engine) Clients() int { return e.clients }
