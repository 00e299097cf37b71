package main

import (
	"fmt"

	"github.com/socfw/scp/internal/clock"
	"github.com/socfw/scp/internal/command"
	"github.com/socfw/scp/internal/config"
	"github.com/socfw/scp/internal/css"
	"github.com/socfw/scp/internal/cycle"
	"github.com/socfw/scp/internal/device"
	"github.com/socfw/scp/internal/driver/dram"
	"github.com/socfw/scp/internal/driver/pmic"
	"github.com/socfw/scp/internal/driver/regulator"
	"github.com/socfw/scp/internal/driver/wake"
	"github.com/socfw/scp/internal/driver/watchdog"
	"github.com/socfw/scp/internal/firmware"
	"github.com/socfw/scp/internal/logging"
	"github.com/socfw/scp/internal/mailbox"
	"github.com/socfw/scp/internal/mmio"
	"github.com/socfw/scp/internal/system"
)

// simClockController is a two-id clock controller with no parents: id 0 is
// OSC24M (queried for ClockActive), id 1 is the main clock tree gated
// across suspend/resume — kept separate from the R-domain power controller
// SuspendSoC/ResumeSoC already model.
type simClockController struct {
	regs *mmio.RegisterSpace
}

func (c *simClockController) Parent(int) (clock.Handle, bool) { return clock.Handle{}, false }

func (c *simClockController) Descriptor(id int) clock.Descriptor {
	return clock.Descriptor{RegOffset: uintptr(id * 4), GateBit: 1, ResetBit: 2, LockBit: 4, UpdateBit: 8}
}

func (c *simClockController) ComputeRate(id int, parentRate uint32) uint32 {
	if id == 0 {
		return 24_000_000
	}
	return 0
}

func (c *simClockController) Registers() *mmio.RegisterSpace { return c.regs }

func (c *simClockController) WaitLock(int) bool { return true }

// simRegulator is a named, in-memory stand-in for a board's real regulator
// controller: it records each rail's on/off state so scenario output can
// report what the firmware actually did, without knowing anything about a
// specific PMIC's register layout.
type simRegulator struct {
	name   string
	states map[uint8]bool
}

func newSimRegulator(name string) *simRegulator {
	return &simRegulator{name: name, states: map[uint8]bool{}}
}

func (r *simRegulator) SetState(id uint8, enable bool) error {
	r.states[id] = enable
	return nil
}

func (r *simRegulator) GetState(id uint8) (bool, error) { return r.states[id], nil }

// simCSSHardware is a no-op CSS power-sequencing backend: in this host
// simulator there is no real core/cluster power switch to flip, only the
// coordinator's bookkeeping, which is what the scenario player inspects.
type simCSSHardware struct{}

func (simCSSHardware) SuspendCore(uint32, uint32, css.PowerState)    {}
func (simCSSHardware) ResumeCore(uint32, uint32, css.PowerState)     {}
func (simCSSHardware) SuspendCluster(uint32, css.PowerState)         {}
func (simCSSHardware) ResumeCluster(uint32, css.PowerState)          {}
func (simCSSHardware) SuspendCSS(css.PowerState)                     {}
func (simCSSHardware) ResumeCSS(css.PowerState)                      {}

type simSoC struct{ log *logging.Logger }

func (s simSoC) Suspend(depth system.SuspendDepth) {
	s.log.Info("soc suspend", map[string]any{"depth": depth})
}

func (s simSoC) Resume() { s.log.Info("soc resume", nil) }

type simDRAM struct {
	log *logging.Logger
	mem *dram.Memory
}

func (d simDRAM) Init() { d.log.Info("dram init", nil) }
func (d simDRAM) Suspend() {
	d.mem.SaveChecksum()
	d.log.Info("dram suspend", nil)
}

func (d simDRAM) Resume() {
	d.mem.VerifyChecksum()
	d.log.Info("dram resume", nil)
}

type simPMICOps struct{ log *logging.Logger }

func (p simPMICOps) Suspend() error  { p.log.Info("pmic suspend", nil); return nil }
func (p simPMICOps) Resume() error   { p.log.Info("pmic resume", nil); return nil }
func (p simPMICOps) Shutdown() error { p.log.Info("pmic shutdown", nil); return nil }
func (p simPMICOps) Reset() error    { p.log.Info("pmic reset", nil); return nil }

type simWatchdogOps struct{ log *logging.Logger }

func (w simWatchdogOps) ResetSystem() { w.log.Info("watchdog reset system", nil) }
func (w simWatchdogOps) Restart()     { w.log.Info("watchdog restart", nil) }

type simProbe struct{}

func (simProbe) Probe(*device.Device) error { return nil }
func (simProbe) Release(*device.Device)     {}

type board struct {
	fw      *firmware.Firmware
	log     *logging.Logger
	mailEng *mailbox.Engine
	mailCtl *mailbox.SimChannelController
}

// buildBoard assembles a Firmware over the named simulated components
// described by cfg, exactly the role original_source/common/main.c's board
// bring-up plays for the real firmware.
func buildBoard(cfg *config.Board, log *logging.Logger) (*board, error) {
	cssCoord := css.New(simCSSHardware{}, func() {}, cfg.CoreCounts())

	wakeReg := wake.NewRegistry()

	pmicCandidates := make([]pmic.Candidate, 0, len(cfg.PMICControllers))
	for _, name := range cfg.PMICControllers {
		pmicCandidates = append(pmicCandidates, pmic.Candidate{
			Dev: device.New("pmic:"+name, simProbe{}),
			Ops: simPMICOps{log: log},
		})
	}

	wdtCandidates := make([]watchdog.Candidate, 0, len(cfg.WatchdogControllers))
	for _, name := range cfg.WatchdogControllers {
		wdtCandidates = append(wdtCandidates, watchdog.Candidate{
			Dev: device.New("watchdog:"+name, simProbe{}),
			Ops: simWatchdogOps{log: log},
		})
	}

	supply := func(ref config.RegulatorRef) firmware.Supply {
		if ref.Controller == "" {
			return firmware.Supply{}
		}
		return firmware.Supply{
			Ctl: &regulator.Controller{
				Dev: device.New("regulator:"+ref.Controller, simProbe{}),
				Ops: newSimRegulator(ref.Controller),
			},
			ID: ref.ID,
		}
	}

	dramMem := dram.NewMemory(1 << 20)

	clockCtl := &simClockController{regs: mmio.NewRegisterSpace(16)}
	clockDev := device.New("ccu", simProbe{})
	clockState := clock.NewControllerState(2)
	oscClock := clock.Handle{Dev: clockDev, State: clockState, ID: 0, Ctl: clockCtl}
	mainClockTree := clock.Handle{Dev: clockDev, State: clockState, ID: 1, Ctl: clockCtl}

	clk := cycle.NewClock(cfg.ClusterClockMHz, nil)
	mailCtl := mailbox.NewSimChannelController()

	handlers := &command.Handlers{CSS: cssCoord}
	dispatcher := command.Dispatcher{Table: handlers.Table(), Log: log}

	mailDev := device.New("mailbox0", simProbe{})
	mailEng, err := mailbox.NewEngine(mailDev, mailCtl, clk, 2, func(client uint8, rx, tx *mailbox.Message) bool {
		return dispatcher.Dispatch(client, rx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("mailbox engine: %w", err)
	}

	scratch := &system.Scratch{}
	fw := firmware.New(firmware.Parts{
		CSS:             cssCoord,
		Mailbox:         mailEng,
		SoC:             simSoC{log: log},
		DRAM:            simDRAM{log: log, mem: dramMem},
		Wake:            wakeReg,
		OscClock:        &oscClock,
		ClockTree:       &mainClockTree,
		PMIC:            pmicCandidates,
		Watchdog:        wdtCandidates,
		CPUSupply:       supply(cfg.Supplies.CPU),
		DRAMSupply:      supply(cfg.Supplies.DRAM),
		PLLSupply:       supply(cfg.Supplies.VccPLL),
		VDDSysSupply:    supply(cfg.Supplies.VDDSys),
		HaveDRAMSuspend: cfg.HaveDRAMSuspend,
		OnBoot: func() {
			log.Info("board bring-up", map[string]any{"board": cfg.Name})
		},
	}, scratch, log)

	handlers.System = fw.Machine()

	return &board{fw: fw, log: log, mailEng: mailEng, mailCtl: mailCtl}, nil
}

// deliver simulates an AP client sending one command and waits for the
// reply, matching spec.md §5's description of how the harness drives the
// mailbox without a concurrent goroutine: it writes the request and flips
// the doorbell directly, then calls Step once.
func (b *board) deliver(client uint8, cmd uint8, payload []byte) (mailbox.Message, error) {
	msg := &mailbox.Message{Command: cmd, Sender: client, Size: uint16(len(payload))}
	copy(msg.Payload[:], payload)
	b.mailCtl.DeliverFromClient(b.mailEng, client, msg)
	if err := b.fw.Step(); err != nil {
		return mailbox.Message{}, err
	}
	return mailbox.ReadReply(b.mailEng, client), nil
}
