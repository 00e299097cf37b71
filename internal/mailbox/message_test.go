package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	msg := &Message{Command: 0x04, Sender: 1, Size: 4, Status: StatusOK}
	msg.SetPayloadU32([]uint32{0xAABBCCDD})

	buf := make([]byte, MessageSize)
	msg.marshal(buf)

	var got Message
	got.unmarshal(buf)

	assert.Equal(t, msg.Command, got.Command)
	assert.Equal(t, msg.Sender, got.Sender)
	assert.Equal(t, msg.Size, got.Size)
	assert.Equal(t, msg.Status, got.Status)
	assert.Equal(t, msg.Payload, got.Payload)
}

func TestSetPayloadU16SwappedCompensatesForByteLaneSwap(t *testing.T) {
	msg := &Message{}
	msg.SetPayloadU16Swapped(0, 0x1234)
	msg.SetPayloadU16Swapped(1, 0x5678)

	// index 0 lands at lane-swapped slot 1, index 1 lands at slot 0.
	words := msg.PayloadU32()
	assert.Equal(t, uint32(0x12345678), words[0])
}
