package mailbox

// SimChannelController is an in-process ChannelController with no real
// hardware behind it, used by the host simulator and by tests. Each
// channel holds at most one pending notification; sending to an
// already-pending channel overwrites it, matching a doorbell register that
// only records the latest value.
type SimChannelController struct {
	pending map[uint8]uint32
	acked   map[uint8]bool
}

// NewSimChannelController creates an empty simulated channel controller.
func NewSimChannelController() *SimChannelController {
	return &SimChannelController{pending: map[uint8]uint32{}, acked: map[uint8]bool{}}
}

func (c *SimChannelController) Send(channel uint8, value uint32) error {
	c.pending[channel] = value
	c.acked[channel] = false
	return nil
}

func (c *SimChannelController) Receive(channel uint8) (uint32, bool) {
	v, ok := c.pending[channel]
	if !ok {
		return 0, false
	}
	delete(c.pending, channel)
	return v, true
}

func (c *SimChannelController) AckRx(channel uint8) {
	c.acked[channel] = true
}

func (c *SimChannelController) LastTxDone(channel uint8) bool {
	return c.acked[channel]
}

// DeliverFromClient simulates a client sending a request: it writes msg
// into the client's RX buffer in eng and notifies the RX channel with the
// virtual channel sentinel.
func (c *SimChannelController) DeliverFromClient(eng *Engine, client uint8, msg *Message) {
	msg.marshal(eng.rxBuf(client))
	c.pending[rxChannel(client)] = VirtualChannel
}

// AckClientReply simulates the client acknowledging the SCP's last reply,
// freeing the TX buffer on the next poll.
func (c *SimChannelController) AckClientReply(client uint8) {
	c.acked[txChannel(client)] = true
}

// ReadReply reads back whatever is currently in the client's TX buffer in
// eng, for test assertions.
func ReadReply(eng *Engine, client uint8) Message {
	var msg Message
	msg.unmarshal(eng.txBuf(client))
	return msg
}
