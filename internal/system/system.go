// Package system implements the top-level system power state machine
// (spec.md §3/§4.1), grounded on common/system.c. Eleven states are split
// into two parallel paired sequences (shutdown/suspend and their resume
// counterparts); within a sequence, advancing the state by two steps moves
// to the next phase, letting the two halves of a transition (into sleep,
// then out of it) share the same driving loop.
//
// A firmware restart (e.g. after an unhandled exception) preserves
// whatever non-BOOT state was reached, so the restarted firmware knows a
// transition was interrupted instead of forgetting it happened
// (RecoverFromRestart then forces a pass through Off rather than resuming
// that transition where it stopped); a full SoC reset clears memory and always restarts at Boot. Scratch models
// that distinction: its State field persists across restarts the way a
// statically-initialized, non-zeroed variable would in the original C, and
// is only reinitialized by the caller when a real SoC reset is detected.
package system

import "github.com/socfw/scp/internal/errcode"

// State is one step of the state machine.
type State uint8

const (
	Awake  State = 0x0 // rich OS is running
	Boot   State = 0x1 // first firmware execution after a SoC reset
	Reboot State = 0x2 // attempting a board-level (PMIC) reboot

	Shutdown State = 0x3 // transitioning from awake to off
	Suspend  State = 0x4 // transitioning from awake to asleep

	Off    State = 0x5 // system is off; RAM contents are lost
	Asleep State = 0x6 // system is asleep; RAM contents are kept

	PreReset  State = 0x7 // common part of the reset/resume transition
	PreResume State = 0x8 // common part of the reset/resume transition

	Reset  State = 0x9 // transitioning from off to boot, via a SoC reset
	Resume State = 0xa // transitioning from asleep to awake
)

// nextState advances a state by one step in its paired sequence.
func nextState(s State) State { return s + 2 }

// SuspendDepth selects how deeply the SoC itself is powered down during a
// shutdown or suspend, ranging from "leave everything running" up to
// "cut every rail this code can reach".
type SuspendDepth uint8

const (
	// DepthNone leaves the SoC's internal power domains running: some
	// peripheral or the DRAM controller still needs an active clock.
	DepthNone SuspendDepth = iota
	// DepthOsc24m gates everything except the 24MHz oscillator, needed by
	// a wakeup source that requires AVCC during a suspend (not shutdown).
	DepthOsc24m
	// DepthAVCC also allows the AVCC rail to be cut.
	DepthAVCC
	// DepthVDDSys additionally allows the VDD_SYS rail to be cut — the
	// deepest depth, only reachable on a full shutdown with no wakeup
	// source requiring VDD_SYS.
	DepthVDDSys
)

// Scratch holds the state that must survive a firmware restart (caused by
// an unhandled exception) without being reinitialized, but is lost on an
// actual SoC reset. The zero value's State is Awake (0x0), not Boot; after
// a SoC reset the caller runs Machine.Boot, which ends in Awake.
type Scratch struct {
	State State
}

// Hardware is implemented by the board wiring layer: every externally
// visible effect the state machine drives, grouped by the phase that
// triggers it. Suspend-only steps assume the system was previously awake;
// resume-only steps restore it.
type Hardware interface {
	// ClockActive reports whether a clock the DRAM controller or some
	// peripheral depends on (e.g. OSC24M) is still in use, forcing
	// DepthNone regardless of wakeup source requirements.
	ClockActive() bool
	// NeedsAVCC reports whether any registered wakeup source requires the
	// AVCC rail while suspended (not shutdown).
	NeedsAVCC() bool
	// NeedsVDDSys reports whether any registered wakeup source requires
	// the VDD_SYS rail.
	NeedsVDDSys() bool
	// HaveDRAMSuspend reports whether this board supports DRAM
	// self-refresh; boards without it never suspend deeper than DepthNone.
	HaveDRAMSuspend() bool

	SyncDevices()
	AcquireMailbox() bool
	ReleaseMailbox()
	AcquireWatchdog() bool
	ReleaseWatchdog()
	RestartWatchdog()
	SetWatchdogTimeout(seconds uint32)

	AcquireWakeSources()
	PollWakeSources() bool
	ReleaseWakeSources()

	SuspendDRAM()
	ResumeDRAM()
	// SuspendClockTree gates the main clock tree (not the R-domain power
	// controller, gated separately by SuspendSoC), mirroring ccu_suspend.
	SuspendClockTree()
	// ResumeClockTree re-enables the main clock tree, mirroring ccu_resume.
	ResumeClockTree()
	SuspendSoC(depth SuspendDepth)
	ResumeSoC()

	AcquirePMIC() bool
	PMICShutdown() bool // returns true on success
	PMICSuspend()
	PMICResume() bool // returns true on success
	PMICReset()
	ReleasePMIC()

	DisableCPUSupply()
	DisableDRAMSupply()
	DisablePLLSupply()
	DisableVDDSysSupply()
	EnableCPUSupply()
	EnableDRAMSupply()
	EnablePLLSupply()
	EnableVDDSysSupply()

	DelayMicroseconds(us uint32)

	// ResumeCSS re-enters execution on the CSS's lead core, exactly as
	// css.Coordinator.Resume does.
	ResumeCSS()
	// PollCSS lets the CSS coordinator do per-iteration bookkeeping while
	// awake (the original's css_poll).
	PollCSS()

	// OnBoot runs one-time device initialization, performed only the
	// first time the firmware reaches Awake after a real SoC reset.
	OnBoot()
}

// StepRecorder records a coarse progress marker during a transition, so
// that if the firmware restarts mid-transition the last recorded step can
// be reported for diagnosis (spec.md SUPPLEMENTED FEATURES).
type StepRecorder interface {
	RecordStep(step Step)
}

// Step is one diagnostic checkpoint recorded during a suspend or resume
// sequence.
type Step uint8

const (
	StepSuspendDevices Step = iota
	StepSuspendDRAM
	StepSuspendCCU
	StepSuspendSoC
	StepSuspendPMIC
	StepSuspendRegulators
	StepSuspendComplete
	StepResumePMIC
	StepResumeRegulators
	StepResumeSoC
	StepResumeCCU
	StepResumeDRAM
	StepResumeDevices
	StepResumeComplete
)

// Machine drives the system power state machine. Unlike most of this
// module's packages, there is exactly one system state machine per
// firmware instance, so it holds its scratch state directly rather than
// through a device handle.
type Machine struct {
	scratch *Scratch
	hw      Hardware
	steps   StepRecorder

	watchdogHeld bool
	mailboxHeld  bool
}

// New creates a state machine bound to scratch (which must be the same
// instance used across firmware restarts) and hw.
func New(scratch *Scratch, hw Hardware, steps StepRecorder) *Machine {
	return &Machine{scratch: scratch, hw: hw, steps: steps}
}

func (m *Machine) record(step Step) {
	if m.steps != nil {
		m.steps.RecordStep(step)
	}
}

// Current returns the state machine's current state.
func (m *Machine) Current() State { return m.scratch.State }

// Boot must be called exactly once, when the firmware first starts
// running after a real SoC reset (not a firmware restart). It runs
// one-time initialization and enters Awake.
func (m *Machine) Boot() {
	m.watchdogHeld = m.hw.AcquireWatchdog()
	m.hw.OnBoot()
	m.mailboxHeld = m.hw.AcquireMailbox()
	m.scratch.State = Awake
}

// RecoverFromRestart must be called exactly once, when the firmware
// restarts (after an unhandled exception) in a state other than Boot. It
// assumes the worst — that the system may be transitioning or asleep in an
// unpredictable environment — and forces a transition through Off rather
// than attempting to resume exactly where it left off.
func (m *Machine) RecoverFromRestart() {
	if m.scratch.State <= Boot {
		return
	}
	m.scratch.State = Off
	m.watchdogHeld = false
	m.mailboxHeld = false
}

// Shutdown requests a transition from Awake to Off. It is only valid while
// Awake, matching the original's assert(system_state == SS_AWAKE).
func (m *Machine) Shutdown() error {
	if m.scratch.State != Awake {
		return errcode.EInval
	}
	m.scratch.State = Shutdown
	return nil
}

// Suspend requests a transition from Awake to Asleep.
func (m *Machine) Suspend() error {
	if m.scratch.State != Awake {
		return errcode.EInval
	}
	m.scratch.State = Suspend
	return nil
}

// Reboot requests an immediate board-level (PMIC) reboot attempt. This
// transition skips PreReset, so it is only valid while Awake.
func (m *Machine) Reboot() error {
	if m.scratch.State != Awake {
		return errcode.EInval
	}
	m.scratch.State = Reboot
	return nil
}

// Reset requests an immediate SoC reset attempt via the watchdog. This
// transition skips PreReset, so it is only valid while Awake.
func (m *Machine) Reset() error {
	if m.scratch.State != Awake {
		return errcode.EInval
	}
	m.scratch.State = Reset
	return nil
}

// selectSuspendDepth chooses how deeply to power down the SoC, given the
// transition currently in progress.
func (m *Machine) selectSuspendDepth(current State) SuspendDepth {
	if !m.hw.HaveDRAMSuspend() || m.hw.ClockActive() {
		return DepthNone
	}
	if current != Shutdown && m.hw.NeedsAVCC() {
		return DepthOsc24m
	}
	if current != Shutdown || m.hw.NeedsVDDSys() {
		return DepthAVCC
	}
	return DepthVDDSys
}

// Step runs one iteration of the state machine, performing whatever work
// the current state requires and, where the transition is complete,
// advancing to the next state. Most states complete in a single Step call;
// Off/Asleep/Reboot/Reset repeat until a wakeup condition or successful
// reset attempt is observed.
func (m *Machine) Step() {
	switch m.scratch.State {
	case Awake:
		m.hw.PollCSS()
		if m.watchdogHeld {
			m.hw.RestartWatchdog()
		}

	case Shutdown, Suspend:
		current := m.scratch.State

		m.record(StepSuspendDevices)
		m.hw.SyncDevices()

		if m.mailboxHeld {
			m.hw.ReleaseMailbox()
			m.mailboxHeld = false
		}
		m.hw.AcquireWakeSources()

		m.record(StepSuspendDRAM)
		m.hw.SuspendDRAM()

		m.record(StepSuspendCCU)
		m.hw.SuspendClockTree()

		m.record(StepSuspendSoC)
		depth := m.selectSuspendDepth(current)

		if m.watchdogHeld {
			m.hw.ReleaseWatchdog()
			m.watchdogHeld = false
		}

		m.hw.SuspendSoC(depth)

		m.record(StepSuspendPMIC)
		pmicHeld := m.hw.AcquirePMIC()
		if pmicHeld {
			if current == Shutdown {
				m.hw.PMICShutdown()
			} else {
				m.hw.PMICSuspend()
			}
		}

		m.record(StepSuspendRegulators)
		m.hw.DisableCPUSupply()
		if current == Shutdown {
			m.hw.DisableDRAMSupply()
			if depth >= DepthOsc24m {
				m.hw.DisablePLLSupply()
			}
			if depth >= DepthVDDSys {
				m.hw.DisableVDDSysSupply()
			}
		}

		if pmicHeld {
			m.hw.ReleasePMIC()
		}

		m.record(StepSuspendComplete)
		m.scratch.State = nextState(current)

	case Off, Asleep:
		if m.hw.PollWakeSources() {
			m.scratch.State = nextState(m.scratch.State)
		}

	case PreReset, PreResume:
		m.record(StepResumePMIC)
		pmicHeld := m.hw.AcquirePMIC()
		resumed := pmicHeld && m.hw.PMICResume()
		if !resumed {
			m.record(StepResumeRegulators)
			m.hw.EnableVDDSysSupply()
			m.hw.EnablePLLSupply()
			m.hw.EnableDRAMSupply()
			m.hw.EnableCPUSupply()
		}
		if pmicHeld {
			m.hw.ReleasePMIC()
		}

		m.hw.DelayMicroseconds(5000)

		m.record(StepResumeSoC)
		m.hw.ResumeSoC()

		m.watchdogHeld = m.hw.AcquireWatchdog()

		m.scratch.State = nextState(m.scratch.State)

	case Resume:
		m.record(StepResumeCCU)
		m.hw.ResumeClockTree()

		m.record(StepResumeDRAM)
		m.hw.ResumeDRAM()

		m.record(StepResumeDevices)
		m.hw.ReleaseWakeSources()

		m.mailboxHeld = m.hw.AcquireMailbox()

		m.hw.ResumeCSS()

		m.record(StepResumeComplete)
		m.scratch.State = Awake

	case Reboot:
		if pmicHeld := m.hw.AcquirePMIC(); pmicHeld {
			m.hw.PMICReset()
			m.hw.ReleasePMIC()
		}
		fallthroughToReset(m)

	case Reset:
		if m.watchdogHeld {
			m.hw.SetWatchdogTimeout(1)
		}
	}
}

// fallthroughToReset mirrors the original's C switch fallthrough from
// SS_REBOOT into SS_RESET: a reboot attempt always also arms the
// watchdog-triggered SoC reset, in case the PMIC reboot doesn't take.
func fallthroughToReset(m *Machine) {
	if m.watchdogHeld {
		m.hw.SetWatchdogTimeout(1)
	}
}
