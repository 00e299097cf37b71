package command

import (
	"github.com/socfw/scp/internal/css"
	"github.com/socfw/scp/internal/mailbox"
)

// Firmware capability constants reported by GET_SCP_CAP.
const (
	protocolMajor = 1
	protocolMinor = 2

	versionMajor = 0
	versionMinor = 1
	versionPatch = 0
)

// System power state requests carried by SET_SYS_POWER's single payload
// byte.
const (
	SystemShutdown uint8 = 0
	SystemReboot   uint8 = 1
	SystemReset    uint8 = 2
)

// SystemController is the subset of the system state machine (package
// system) the command handlers drive: Shutdown, Reboot and Reset are the
// three external transitions a client may request directly through
// SET_SYS_POWER; Suspend is not called by any handler. All four require the
// system to currently be awake.
type SystemController interface {
	Shutdown() error
	Reboot() error
	Reset() error
	Suspend() error
}

// Handlers bundles the CSS coordinator and system controller the standard
// command set is dispatched against.
type Handlers struct {
	CSS    *css.Coordinator
	System SystemController
}

// Table builds the standard SCPI command dispatch table described in
// spec.md §4.9, wired to h.
func (h *Handlers) Table() Table {
	t := make(Table, SetSysPower+1)

	t[ScpReady] = Entry{
		Handler: h.scpReady,
		Flags:   NoReply | SecureOnly,
	}
	t[GetScpCap] = Entry{
		Handler: h.getScpCap,
	}
	t[SetCSSPower] = Entry{
		Handler: h.setCSSPower,
		RxSize:  4,
		Flags:   NoReply | SecureOnly,
	}
	t[GetCSSPower] = Entry{
		Handler: h.getCSSPower,
	}
	t[SetSysPower] = Entry{
		Handler: h.setSysPower,
		RxSize:  1,
		Flags:   SecureOnly,
	}

	return t
}

func (h *Handlers) scpReady(uint8, *mailbox.Message, *mailbox.Message) (mailbox.Status, uint16) {
	return mailbox.StatusOK, 0
}

func (h *Handlers) getScpCap(_ uint8, _ *mailbox.Message, tx *mailbox.Message) (mailbox.Status, uint16) {
	words := make([]uint32, 7)
	words[0] = uint32(protocolMajor)<<16 | uint32(protocolMinor)
	words[1] = uint32(mailbox.PayloadSize&0x1ff)<<16 | uint32(mailbox.PayloadSize&0x1ff)
	words[2] = uint32(versionMajor&0xff)<<24 | uint32(versionMinor&0xff)<<16 | uint32(versionPatch&0xffff)
	words[3] = 1<<ScpReady | 1<<GetScpCap | 1<<SetCSSPower | 1<<GetCSSPower | 1<<SetSysPower
	// words[4], words[5], words[6] stay zero: no further command groups
	// enabled.
	tx.SetPayloadU32(words)
	return mailbox.StatusOK, uint16(len(words) * 4)
}

func (h *Handlers) setCSSPower(_ uint8, rx *mailbox.Message, _ *mailbox.Message) (mailbox.Status, uint16) {
	words := rx.PayloadU32()
	descriptor := words[0]

	core := descriptor & 0xf
	cluster := (descriptor >> 4) & 0xf
	coreState := css.PowerState((descriptor >> 8) & 0xf)
	clusterState := css.PowerState((descriptor >> 12) & 0xf)
	cssState := css.PowerState((descriptor >> 16) & 0xf)

	if err := h.CSS.SetPowerState(cluster, core, coreState, clusterState, cssState); err != nil {
		return mailbox.StatusEParam, 0
	}
	return mailbox.StatusOK, 0
}

func (h *Handlers) getCSSPower(_ uint8, _ *mailbox.Message, tx *mailbox.Message) (mailbox.Status, uint16) {
	clusters := h.CSS.ClusterCount()

	for i := uint32(0); i < clusters; i++ {
		state, online, err := h.CSS.GetPowerState(i)
		if err != nil {
			return mailbox.StatusEParam, 0
		}
		descriptor := (i & 0xf) | (uint32(state)&0xf)<<4 | online<<8
		tx.SetPayloadU16Swapped(int(i), uint16(descriptor))
	}

	return mailbox.StatusOK, uint16(clusters * 2)
}

func (h *Handlers) setSysPower(_ uint8, rx *mailbox.Message, _ *mailbox.Message) (mailbox.Status, uint16) {
	state := rx.Payload[0]

	var err error
	switch state {
	case SystemShutdown:
		err = h.System.Shutdown()
	case SystemReboot:
		err = h.System.Reboot()
	case SystemReset:
		err = h.System.Reset()
	default:
		return mailbox.StatusEParam, 0
	}
	if err != nil {
		return mailbox.StatusEState, 0
	}
	return mailbox.StatusOK, 0
}
