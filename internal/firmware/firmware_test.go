package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socfw/scp/internal/clock"
	"github.com/socfw/scp/internal/command"
	"github.com/socfw/scp/internal/css"
	"github.com/socfw/scp/internal/cycle"
	"github.com/socfw/scp/internal/device"
	"github.com/socfw/scp/internal/driver/pmic"
	"github.com/socfw/scp/internal/driver/regulator"
	"github.com/socfw/scp/internal/driver/wake"
	"github.com/socfw/scp/internal/driver/watchdog"
	"github.com/socfw/scp/internal/mailbox"
	"github.com/socfw/scp/internal/mmio"
	"github.com/socfw/scp/internal/system"
)

// fakeClockController is a single-id, parentless clock controller used to
// exercise the main clock tree gated across suspend/resume.
type fakeClockController struct {
	regs *mmio.RegisterSpace
}

func (c *fakeClockController) Parent(int) (clock.Handle, bool) { return clock.Handle{}, false }

func (c *fakeClockController) Descriptor(int) clock.Descriptor {
	return clock.Descriptor{RegOffset: 0, GateBit: 1, ResetBit: 2, LockBit: 4, UpdateBit: 8}
}

func (c *fakeClockController) ComputeRate(int, uint32) uint32 { return 24_000_000 }

func (c *fakeClockController) Registers() *mmio.RegisterSpace { return c.regs }

func (c *fakeClockController) WaitLock(int) bool { return true }

type noopCSSHardware struct{}

func (noopCSSHardware) SuspendCore(cluster, core uint32, newState css.PowerState) {}
func (noopCSSHardware) ResumeCore(cluster, core uint32, oldState css.PowerState)  {}
func (noopCSSHardware) SuspendCluster(cluster uint32, newState css.PowerState)    {}
func (noopCSSHardware) ResumeCluster(cluster uint32, oldState css.PowerState)     {}
func (noopCSSHardware) SuspendCSS(newState css.PowerState)                        {}
func (noopCSSHardware) ResumeCSS(oldState css.PowerState)                         {}

type fakeSoC struct{ suspended, resumed int }

func (f *fakeSoC) Suspend(system.SuspendDepth) { f.suspended++ }
func (f *fakeSoC) Resume()                     { f.resumed++ }

type fakeDRAM struct{ inited, suspended, resumed int }

func (f *fakeDRAM) Init()    { f.inited++ }
func (f *fakeDRAM) Suspend() { f.suspended++ }
func (f *fakeDRAM) Resume()  { f.resumed++ }

type fakeWakeSource struct {
	needsAVCC, needsVDDSys bool
	events                 uint32
}

func (f *fakeWakeSource) NeedsAVCC() bool   { return f.needsAVCC }
func (f *fakeWakeSource) NeedsVDDSys() bool { return f.needsVDDSys }
func (f *fakeWakeSource) Poll() uint32 {
	e := f.events
	f.events = 0
	return e
}

type fakeRegulatorOps struct{ states map[uint8]bool }

func newFakeRegulatorOps() *fakeRegulatorOps { return &fakeRegulatorOps{states: map[uint8]bool{}} }

func (f *fakeRegulatorOps) SetState(id uint8, enable bool) error {
	f.states[id] = enable
	return nil
}

func (f *fakeRegulatorOps) GetState(id uint8) (bool, error) { return f.states[id], nil }

type fakePMICOps struct{ suspended, resumed, shutdown, reset int }

func (f *fakePMICOps) Suspend() error  { f.suspended++; return nil }
func (f *fakePMICOps) Resume() error   { f.resumed++; return nil }
func (f *fakePMICOps) Shutdown() error { f.shutdown++; return nil }
func (f *fakePMICOps) Reset() error    { f.reset++; return nil }

type fakeWatchdogOps struct{ resets, restarts int }

func (f *fakeWatchdogOps) ResetSystem() { f.resets++ }
func (f *fakeWatchdogOps) Restart()     { f.restarts++ }

type driverProbe struct{}

func (driverProbe) Probe(*device.Device) error { return nil }
func (driverProbe) Release(*device.Device)     {}

// testBoard assembles a fully wired Firmware over fakes standing in for
// real silicon, matching spec.md §8's end-to-end scenarios.
type testBoard struct {
	fw        *Firmware
	soc       *fakeSoC
	dramDev   *fakeDRAM
	wakeReg   *wake.Registry
	wakeSrc   *fakeWakeSource
	pmicOps   *fakePMICOps
	wdtOps    *fakeWatchdogOps
	cpuRail   *fakeRegulatorOps
	clockRegs *mmio.RegisterSpace
	mailEng   *mailbox.Engine
	mailCtl   *mailbox.SimChannelController
	cssCoord  *css.Coordinator
}

func newTestBoard(t *testing.T) *testBoard {
	t.Helper()

	cssCoord := css.New(noopCSSHardware{}, func() {}, []uint32{1})

	soc := &fakeSoC{}
	dramDev := &fakeDRAM{}
	wakeReg := wake.NewRegistry()
	wakeSrc := &fakeWakeSource{}
	wakeReg.Register(wakeSrc)

	pmicOps := &fakePMICOps{}
	pmicCandidate := pmic.Candidate{Dev: device.New("pmic0", driverProbe{}), Ops: pmicOps}

	wdtOps := &fakeWatchdogOps{}
	wdtCandidate := watchdog.Candidate{Dev: device.New("wdt0", driverProbe{}), Ops: wdtOps}

	cpuRailOps := newFakeRegulatorOps()
	cpuRail := &regulator.Controller{Dev: device.New("cpu-rail", driverProbe{}), Ops: cpuRailOps}

	clockCtl := &fakeClockController{regs: mmio.NewRegisterSpace(16)}
	clockTree := clock.Handle{Dev: device.New("ccu", driverProbe{}), State: clock.NewControllerState(1), ID: 0, Ctl: clockCtl}

	elapsed := int64(0)
	clk := cycle.NewClock(1, func() int64 { return elapsed })
	mailCtl := mailbox.NewSimChannelController()
	handlers := &command.Handlers{CSS: cssCoord}
	table := handlers.Table()

	mailDev := device.New("mailbox0", driverProbe{})
	mailEng, err := mailbox.NewEngine(mailDev, mailCtl, clk, 2, func(client uint8, rx, tx *mailbox.Message) bool {
		return table.Dispatch(client, rx, tx)
	})
	require.NoError(t, err)

	scratch := &system.Scratch{}
	fw := New(Parts{
		CSS:             cssCoord,
		Mailbox:         mailEng,
		SoC:             soc,
		DRAM:            dramDev,
		Wake:            wakeReg,
		ClockTree:       &clockTree,
		PMIC:            []pmic.Candidate{pmicCandidate},
		Watchdog:        []watchdog.Candidate{wdtCandidate},
		CPUSupply:       Supply{Ctl: cpuRail, ID: 0},
		HaveDRAMSuspend: true,
	}, scratch, nil)

	handlers.System = fw.Machine()

	return &testBoard{
		fw: fw, soc: soc, dramDev: dramDev, wakeReg: wakeReg, wakeSrc: wakeSrc,
		pmicOps: pmicOps, wdtOps: wdtOps, cpuRail: cpuRailOps, clockRegs: clockCtl.regs,
		mailEng: mailEng, mailCtl: mailCtl, cssCoord: cssCoord,
	}
}

func TestFreshBootReachesAwake(t *testing.T) {
	b := newTestBoard(t)
	b.fw.Run(true)
	assert.Equal(t, system.Awake, b.fw.Machine().Current())
}

func TestRestartMidTransitionRecoversToOff(t *testing.T) {
	scratch := &system.Scratch{State: system.Suspend}
	fw := New(Parts{}, scratch, nil)
	fw.Run(false)
	assert.Equal(t, system.Off, fw.Machine().Current())
}

func TestGetScpCapRoundTrip(t *testing.T) {
	b := newTestBoard(t)
	b.fw.Run(true)

	req := &mailbox.Message{Command: 0x02, Sender: 1}
	b.mailCtl.DeliverFromClient(b.mailEng, 0, req)

	require.NoError(t, b.fw.Step())

	reply := mailbox.ReadReply(b.mailEng, 0)
	assert.Equal(t, mailbox.StatusOK, reply.Status)
}

func TestSetSysPowerShutdownDrivesPMICAndSupplies(t *testing.T) {
	b := newTestBoard(t)
	b.fw.Run(true)

	req := &mailbox.Message{Command: 0x05, Sender: 0}
	req.Payload[0] = command.SystemShutdown
	req.Size = 1
	b.mailCtl.DeliverFromClient(b.mailEng, 0, req)
	require.NoError(t, b.fw.Step())

	for i := 0; i < 8 && b.fw.Machine().Current() != system.Off; i++ {
		b.fw.Machine().Step()
	}

	assert.Equal(t, system.Off, b.fw.Machine().Current())
	assert.Equal(t, 1, b.pmicOps.shutdown)
	assert.False(t, b.cpuRail.states[0])
}

func TestSuspendAndResumeCycleReturnsToAwake(t *testing.T) {
	b := newTestBoard(t)
	b.fw.Run(true)

	require.NoError(t, b.fw.Machine().Suspend())
	b.fw.Machine().Step() // Suspend -> Asleep: gates the main clock tree
	assert.Zero(t, b.clockRegs.Read32(0)&1, "clock tree gate bit should be cleared while asleep")

	b.wakeSrc.events = 1 // wake source fires while asleep, driving the resume path
	for i := 0; i < 3; i++ {
		b.fw.Machine().Step()
	}

	assert.Equal(t, system.Awake, b.fw.Machine().Current())
	assert.GreaterOrEqual(t, b.soc.suspended, 1)
	assert.GreaterOrEqual(t, b.soc.resumed, 1)
	assert.NotZero(t, b.clockRegs.Read32(0)&1, "clock tree gate bit should be restored once awake")
}

type panickyDebugMonitor struct{ polls int }

func (p *panickyDebugMonitor) Poll() {
	p.polls++
	if p.polls == 2 {
		panic("simulated fault")
	}
}

func TestRunLoopRecoversFromPanicAndRebuildsMachine(t *testing.T) {
	b := newTestBoard(t)
	dbg := &panickyDebugMonitor{}
	b.fw.parts.Debug = dbg
	b.fw.Run(true)

	b.fw.RunLoop(3)

	// The panic is recovered without crashing the loop, and a fresh Machine
	// is rebuilt over the same (still-Awake) scratch state.
	assert.Equal(t, system.Awake, b.fw.Machine().Current())
	assert.GreaterOrEqual(t, dbg.polls, 2)
}

func TestSecureOnlyCommandRejectedFromNonSecureClient(t *testing.T) {
	b := newTestBoard(t)
	b.fw.Run(true)

	req := &mailbox.Message{Command: 0x05, Sender: 1}
	req.Payload[0] = command.SystemShutdown
	req.Size = 1
	b.mailCtl.DeliverFromClient(b.mailEng, 1, req)
	require.NoError(t, b.fw.Step())

	reply := mailbox.ReadReply(b.mailEng, 1)
	assert.Equal(t, mailbox.StatusEAccess, reply.Status)
	assert.Equal(t, system.Awake, b.fw.Machine().Current())
}
