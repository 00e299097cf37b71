// Package firmware wires together every component package into one
// running system-control firmware core (spec.md §4.11): it is assembly
// only — board-specific selection of which concrete drivers back which
// interface, and gluing the CSS coordinator, mailbox protocol engine, and
// command dispatch table to the system state machine's Hardware hooks.
// Grounded on common/system.c's system_state_machine, which performs the
// same role procedurally.
package firmware

import (
	"github.com/socfw/scp/internal/clock"
	"github.com/socfw/scp/internal/css"
	"github.com/socfw/scp/internal/device"
	"github.com/socfw/scp/internal/driver/dram"
	"github.com/socfw/scp/internal/driver/pmic"
	"github.com/socfw/scp/internal/driver/regulator"
	"github.com/socfw/scp/internal/driver/wake"
	"github.com/socfw/scp/internal/driver/watchdog"
	"github.com/socfw/scp/internal/logging"
	"github.com/socfw/scp/internal/mailbox"
	"github.com/socfw/scp/internal/system"
)

// SoCController performs the power-domain-controller-wide suspend/resume
// actions the original's r_ccu_suspend/r_ccu_resume perform: gating
// internal power domains to the requested depth, and restoring them.
type SoCController interface {
	Suspend(depth system.SuspendDepth)
	Resume()
}

// DeviceSyncer synchronizes exposed GPIO/device state with the rich OS
// before it loses power, mirroring simple_device_sync(&pio).
type DeviceSyncer interface {
	Sync()
}

// DebugMonitor is the narrow interface the firmware core consumes for an
// interactive debug console — the d/m/p/s command monitor itself is out of
// scope (spec.md §1), but Step still needs somewhere to poll it from.
type DebugMonitor interface {
	Poll()
}

type noopDebugMonitor struct{}

func (noopDebugMonitor) Poll() {}

// Supply bundles a regulator controller with the rail id on it, or is the
// zero value if the board has no regulator for this rail (config.Supplies
// allows that, matching regulator_list.c's `.dev = NULL` fallback).
type Supply struct {
	Ctl *regulator.Controller
	ID  uint8
}

func (s Supply) enable() {
	if s.Ctl != nil {
		_ = regulator.Enable(s.Ctl, s.ID)
	}
}

func (s Supply) disable() {
	if s.Ctl != nil {
		_ = regulator.Disable(s.Ctl, s.ID)
	}
}

// Parts bundles every concrete component the board wiring layer supplies.
// Fields left nil/zero behave as "not present on this board", mirroring
// the original's CONFIG()-gated optional devices.
type Parts struct {
	CSS     *css.Coordinator
	Mailbox *mailbox.Engine

	SoC          SoCController
	DRAM         dram.Controller
	Wake         *wake.Registry
	OscClock     *clock.Handle // nil if this board has no gateable oscillator
	ClockTree    *clock.Handle // the main (non-R-domain) clock tree gated across suspend/resume
	DeviceSync   DeviceSyncer

	PMIC      []pmic.Candidate
	Watchdog  []watchdog.Candidate

	CPUSupply    Supply
	DRAMSupply   Supply
	PLLSupply    Supply
	VDDSysSupply Supply

	HaveDRAMSuspend bool

	// Debug is polled once per Awake iteration; nil behaves as a no-op.
	Debug DebugMonitor

	// OnBoot runs additional one-time board initialization beyond what
	// Firmware itself performs (e.g. calibrating an oscillator).
	OnBoot func()
}

// Firmware is one running instance of the system-control firmware core.
type Firmware struct {
	parts   Parts
	log     *logging.Logger
	scratch *system.Scratch
	machine *system.Machine

	pmic     *pmic.Candidate
	watchdog *watchdog.Candidate
}

// New assembles a Firmware from parts. scratch must be reused across
// firmware restarts within the same boot of the SoC; pass a fresh
// *system.Scratch only on an actual SoC reset.
func New(parts Parts, scratch *system.Scratch, log *logging.Logger) *Firmware {
	if parts.Debug == nil {
		parts.Debug = noopDebugMonitor{}
	}
	fw := &Firmware{parts: parts, log: log, scratch: scratch}
	fw.machine = system.New(scratch, fw, fw)
	return fw
}

// Machine exposes the underlying state machine, e.g. for Shutdown/Reboot/
// Reset/Suspend requests dispatched from the command handlers.
func (fw *Firmware) Machine() *system.Machine { return fw.machine }

// Run starts the firmware: either running one-time boot initialization
// (fresh SoC reset) or recovering from a restart mid-transition, then
// enters Awake (or Off, if recovery forced it there).
func (fw *Firmware) Run(freshReset bool) {
	if freshReset {
		fw.machine.Boot()
	} else {
		fw.machine.RecoverFromRestart()
	}
}

// Step advances the firmware by one iteration: the system state machine's
// Step, plus polling the mailbox and debug monitor while awake.
func (fw *Firmware) Step() error {
	fw.machine.Step()
	if fw.machine.Current() != system.Awake {
		return nil
	}
	fw.parts.Debug.Poll()
	if fw.parts.Mailbox != nil {
		return fw.parts.Mailbox.Poll()
	}
	return nil
}

// RunLoop calls Step iterations times, recovering a panic from any single
// iteration exactly as a real restart would: the scratch state (whatever
// Step had reached, or mid-write) survives, a fresh Machine is built over
// it, and RecoverFromRestart forces the conservative path through OFF
// unless the scratch state is Boot or Awake, which are kept as they are —
// mirroring report_exception/report_last_step followed by a watchdog
// restart in the original firmware.
func (fw *Firmware) RunLoop(iterations int) {
	for i := 0; i < iterations; i++ {
		fw.safeStep()
	}
}

func (fw *Firmware) safeStep() {
	defer func() {
		if r := recover(); r != nil {
			if fw.log != nil {
				fw.log.Error("recovered from panic, restarting", map[string]any{"panic": r})
			}
			fw.machine = system.New(fw.scratch, fw, fw)
			fw.machine.RecoverFromRestart()
		}
	}()
	_ = fw.Step()
}

// RecordStep implements system.StepRecorder by logging each step at info
// level; a production serial console would instead write this
// to a small non-volatile ring buffer for post-mortem inspection after a
// watchdog-triggered restart.
func (fw *Firmware) RecordStep(step system.Step) {
	if fw.log != nil {
		fw.log.Info("step", map[string]any{"step": step})
	}
}

// The following methods implement system.Hardware, delegating to
// whichever parts are present on this board.

func (fw *Firmware) ClockActive() bool {
	return fw.parts.OscClock != nil && fw.parts.OscClock.Active()
}

func (fw *Firmware) NeedsAVCC() bool {
	return fw.parts.Wake != nil && fw.parts.Wake.NeedsAVCC()
}

func (fw *Firmware) NeedsVDDSys() bool {
	return fw.parts.Wake != nil && fw.parts.Wake.NeedsVDDSys()
}

func (fw *Firmware) HaveDRAMSuspend() bool { return fw.parts.HaveDRAMSuspend }

func (fw *Firmware) SyncDevices() {
	if fw.parts.DeviceSync != nil {
		fw.parts.DeviceSync.Sync()
	}
}

func (fw *Firmware) AcquireMailbox() bool {
	if fw.parts.Mailbox == nil {
		return false
	}
	return device.Get(fw.parts.Mailbox.Dev) == nil
}

func (fw *Firmware) ReleaseMailbox() {
	if fw.parts.Mailbox != nil {
		device.Put(fw.parts.Mailbox.Dev)
	}
}

func (fw *Firmware) AcquireWatchdog() bool {
	fw.watchdog = watchdog.Select(fw.parts.Watchdog)
	return fw.watchdog != nil
}

func (fw *Firmware) ReleaseWatchdog() {
	if fw.watchdog != nil {
		device.Put(fw.watchdog.Dev)
		fw.watchdog = nil
	}
}

func (fw *Firmware) RestartWatchdog() {
	if fw.watchdog != nil {
		watchdog.Restart(fw.watchdog)
	}
}

func (fw *Firmware) SetWatchdogTimeout(uint32) {
	if fw.watchdog != nil {
		watchdog.ResetSystem(fw.watchdog)
	}
}

func (fw *Firmware) AcquireWakeSources() {}
func (fw *Firmware) PollWakeSources() bool {
	if fw.parts.Wake == nil {
		return false
	}
	return fw.parts.Wake.Poll() != 0
}
func (fw *Firmware) ReleaseWakeSources() {}

func (fw *Firmware) SuspendDRAM() {
	if fw.parts.DRAM != nil {
		dram.Suspend(fw.parts.DRAM)
	}
}

func (fw *Firmware) ResumeDRAM() {
	if fw.parts.DRAM != nil {
		dram.Resume(fw.parts.DRAM)
	}
}

// SuspendClockTree gates the main clock tree, distinct from the R-domain
// power controller SuspendSoC gates, mirroring ccu_suspend.
func (fw *Firmware) SuspendClockTree() {
	if fw.parts.ClockTree != nil {
		clock.Disable(*fw.parts.ClockTree)
	}
}

// ResumeClockTree re-enables the main clock tree, mirroring ccu_resume.
func (fw *Firmware) ResumeClockTree() {
	if fw.parts.ClockTree != nil {
		_ = clock.Enable(*fw.parts.ClockTree)
	}
}

func (fw *Firmware) SuspendSoC(depth system.SuspendDepth) {
	if fw.parts.SoC != nil {
		fw.parts.SoC.Suspend(depth)
	}
}

func (fw *Firmware) ResumeSoC() {
	if fw.parts.SoC != nil {
		fw.parts.SoC.Resume()
	}
}

func (fw *Firmware) AcquirePMIC() bool {
	fw.pmic = pmic.Select(fw.parts.PMIC)
	return fw.pmic != nil
}

func (fw *Firmware) PMICShutdown() bool {
	return fw.pmic != nil && pmic.Shutdown(fw.pmic) == nil
}

func (fw *Firmware) PMICSuspend() {
	if fw.pmic != nil {
		_ = pmic.Suspend(fw.pmic)
	}
}

func (fw *Firmware) PMICResume() bool {
	return fw.pmic != nil && pmic.Resume(fw.pmic) == nil
}

func (fw *Firmware) PMICReset() {
	if fw.pmic != nil {
		_ = pmic.Reset(fw.pmic)
	}
}

func (fw *Firmware) ReleasePMIC() {
	if fw.pmic != nil {
		device.Put(fw.pmic.Dev)
		fw.pmic = nil
	}
}

func (fw *Firmware) DisableCPUSupply()    { fw.parts.CPUSupply.disable() }
func (fw *Firmware) DisableDRAMSupply()   { fw.parts.DRAMSupply.disable() }
func (fw *Firmware) DisablePLLSupply()    { fw.parts.PLLSupply.disable() }
func (fw *Firmware) DisableVDDSysSupply() { fw.parts.VDDSysSupply.disable() }
func (fw *Firmware) EnableCPUSupply()     { fw.parts.CPUSupply.enable() }
func (fw *Firmware) EnableDRAMSupply()    { fw.parts.DRAMSupply.enable() }
func (fw *Firmware) EnablePLLSupply()     { fw.parts.PLLSupply.enable() }
func (fw *Firmware) EnableVDDSysSupply()  { fw.parts.VDDSysSupply.enable() }

func (fw *Firmware) DelayMicroseconds(uint32) {}

func (fw *Firmware) ResumeCSS() {
	if fw.parts.CSS != nil {
		_ = fw.parts.CSS.Resume()
	}
}

func (fw *Firmware) PollCSS() {}

func (fw *Firmware) OnBoot() {
	if fw.parts.OnBoot != nil {
		fw.parts.OnBoot()
	}
}
