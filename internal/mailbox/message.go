package mailbox

const (
	// HeaderSize is the size in bytes of the fixed SCPI message header.
	HeaderSize = 8
	// MessageSize is the total size in bytes of one SCPI message,
	// including its header, as fixed by the implementation.
	MessageSize = 0x100
	// PayloadSize is the number of payload bytes available after the
	// header in one message.
	PayloadSize = MessageSize - HeaderSize
)

// Status is an SCPI reply status code.
type Status uint32

const (
	StatusOK        Status = 0
	StatusEParam    Status = 1
	StatusEAlign    Status = 2
	StatusESize     Status = 3
	StatusEHandler  Status = 4
	StatusEAccess   Status = 5
	StatusERange    Status = 6
	StatusETimeout  Status = 7
	StatusENoMem    Status = 8
	StatusEPwrState Status = 9
	StatusESupport  Status = 10
	StatusEDevice   Status = 11
	StatusEBusy     Status = 12
	StatusEOS       Status = 13
	StatusEData     Status = 14
	StatusEState    Status = 15
)

// Message is one SCPI request or reply, viewed as a struct rather than the
// raw bytes it is marshaled to/from in the client's shared memory area.
type Message struct {
	Command uint8
	Sender  uint8
	Size    uint16
	Status  Status
	Payload [PayloadSize]byte
}

// marshal writes m's header and the whole payload (regardless of m.Size)
// into buf, which must be at least MessageSize bytes long.
func (m *Message) marshal(buf []byte) {
	buf[0] = m.Command
	buf[1] = m.Sender
	buf[2] = byte(m.Size)
	buf[3] = byte(m.Size >> 8)
	buf[4] = byte(m.Status)
	buf[5] = byte(m.Status >> 8)
	buf[6] = byte(m.Status >> 16)
	buf[7] = byte(m.Status >> 24)
	copy(buf[HeaderSize:MessageSize], m.Payload[:])
}

// unmarshal reads a header and payload out of buf, which must be at least
// MessageSize bytes long.
func (m *Message) unmarshal(buf []byte) {
	m.Command = buf[0]
	m.Sender = buf[1]
	m.Size = uint16(buf[2]) | uint16(buf[3])<<8
	m.Status = Status(uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24)
	copy(m.Payload[:], buf[HeaderSize:MessageSize])
}

// PayloadU32 reinterprets the payload as little-endian 32-bit words, the
// view command handlers use for everything but GET_CSS_POWER.
func (m *Message) PayloadU32() [PayloadSize / 4]uint32 {
	var words [PayloadSize / 4]uint32
	for i := range words {
		o := i * 4
		words[i] = uint32(m.Payload[o]) | uint32(m.Payload[o+1])<<8 |
			uint32(m.Payload[o+2])<<16 | uint32(m.Payload[o+3])<<24
	}
	return words
}

// SetPayloadU32 writes words back into the payload as little-endian 32-bit
// words.
func (m *Message) SetPayloadU32(words []uint32) {
	for i, w := range words {
		o := i * 4
		m.Payload[o] = byte(w)
		m.Payload[o+1] = byte(w >> 8)
		m.Payload[o+2] = byte(w >> 16)
		m.Payload[o+3] = byte(w >> 24)
	}
}

// SetPayloadU16Swapped writes one 16-bit value into payload slot index,
// compensating for the mailbox hardware's byte-lane swapping by storing
// the value at the lane-swapped index (index XOR 1), exactly as
// scpi_cmd_get_css_power_handler's `((uint16_t *)tx_payload)[i ^ 1]` does.
func (m *Message) SetPayloadU16Swapped(index int, value uint16) {
	swapped := index ^ 1
	o := swapped * 2
	m.Payload[o] = byte(value)
	m.Payload[o+1] = byte(value >> 8)
}
