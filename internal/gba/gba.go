package gba

import (
	"github.com/ljsdev/goba/internal/apu"
	"github.com/ljsdev/goba/internal/cartridge"
	"github.com/ljsdev/goba/internal/cpu"
	"github.com/ljsdev/goba/internal/dma"
	"github.com/ljsdev/goba/internal/logger"
	"github.com/ljsdev/goba/internal/membus"
	"github.com/ljsdev/goba/internal/ppu"
	"github.com/ljsdev/goba/internal/prefs"
	"github.com/ljsdev/goba/internal/scheduler"
	"github.com/ljsdev/goba/internal/timer"
)

// Scheduler event IDs, one per component instance that can have a
// pending event, per internal/scheduler's "small and closed" ID space.
const (
	idPPU scheduler.ID = iota
	idAPUSeq
	idAPUSample
	idTimer0
	idTimer1
	idTimer2
	idTimer3
)

// Key is one of the ten buttons/directions read through KEYINPUT,
// per spec.md §6 setkeys.
type Key uint

const (
	KeyA Key = iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL
)

// Gba is the top-level container: it owns every component and is the
// only thing that holds pointers across component boundaries, per the
// "no back-pointers" rule -- components reach back out only through the
// narrow interfaces injected at construction (irq.Requester, dma.Memory,
// timer.FIFODrain, ppu.Memory).
type Gba struct {
	prefs  prefs.Prefs
	log    *logger.Logger
	sched  *scheduler.Scheduler
	cpu    *cpu.CPU
	bus    *Bus
	ic     *interruptController
	cart   *cartridge.Cartridge
	ppu    *ppu.PPU
	apu    *apu.APU
	dmaBnk *dma.Bank
	timBnk *timer.Bank

	cycleAccumulator int32
}

// New constructs a fresh Gba with default preferences, an empty
// cartridge slot, and no BIOS loaded.
func New() *Gba {
	return NewWithPrefs(prefs.Default())
}

// NewWithPrefs constructs a Gba with explicit preferences (spec.md §9
// open questions resolved per internal/prefs).
func NewWithPrefs(p prefs.Prefs) *Gba {
	g := &Gba{prefs: p, log: logger.NewLogger(4096)}
	g.sched = scheduler.New()
	g.cart = cartridge.New()

	g.cpu = cpu.New(nil, g, &cpu.DefaultBIOS{})
	g.ic = newInterruptController(g.cpu)

	g.apu = apu.New(g.sched, idAPUSeq, idAPUSample)
	g.dmaBnk = dma.NewBank(nil, g.ic)
	g.timBnk = timer.NewBank(g.sched, idTimer0, g.ic, p.TimerStartDelay)
	g.ppu = ppu.New(nil, g.dmaBnk, g.ic, g.sched, idPPU)

	g.bus = newBus(g.cart, g.ppu, g.apu, g.dmaBnk, g.timBnk, g.ic, g.log)

	// The bus itself needed every sibling component to exist first (to
	// dispatch I/O reads/writes to them); those components, in turn, need
	// the bus to read/write memory. Break the cycle by binding it back in
	// now that the bus exists.
	g.cpu.SetMemory(g.bus)
	g.ppu.SetMemory(g.bus)
	g.dmaBnk.SetMemory(g.bus)
	for i, t := range g.timBnk.Timers {
		if i < 2 {
			t.SetDrain(g.apu.FIFODrain)
		}
	}

	return g
}

// AddCycles implements internal/cpu.CycleSink, advancing the shared
// scheduler clock by the cost of the instruction just executed.
func (g *Gba) AddCycles(n int32) {
	g.sched.Tick(n)
	for g.sched.ShouldFire() {
		g.sched.Fire()
	}
}

// LoadROM installs rom as the active cartridge and resets the machine
// to run it, per spec.md §6 loadrom.
func (g *Gba) LoadROM(rom []byte) error {
	if err := g.cart.Load(rom); err != nil {
		return err
	}
	g.Reset()
	return nil
}

// LoadBIOS installs a 16KiB BIOS image, per spec.md §6 loadbios.
func (g *Gba) LoadBIOS(data []byte) error {
	return g.bus.LoadBIOS(data)
}

// LoadSave installs previously persisted backup data, per spec.md §6
// loadsave.
func (g *Gba) LoadSave(data []byte) error {
	return g.cart.LoadSave(data)
}

// GetSave returns the current backup device's persisted bytes, per
// spec.md §6 getsave.
func (g *Gba) GetSave() []byte {
	return g.cart.GetSave()
}

// Reset re-establishes the CPU's initial pipeline state, per spec.md §6
// reset: at the BIOS entry point when a BIOS image has been loaded,
// otherwise at the start of cartridge ROM (0x08000000).
func (g *Gba) Reset() {
	entry := uint32(0x08000000)
	if g.bus.bios != [len(g.bus.bios)]byte{} {
		entry = 0
	}
	g.cpu.Reset(entry)
}

// Run executes instructions until at least `cycles` have elapsed,
// per spec.md §6 run(cycles).
func (g *Gba) Run(cycles int32) {
	target := g.cycleAccumulator + cycles
	for g.cycleAccumulator < target {
		before := g.sched.Ticks()
		g.cpu.CheckIRQ()
		g.cpu.Step()
		g.cycleAccumulator += g.sched.Ticks() - before
	}
	g.cycleAccumulator -= target
}

// SetKeys applies the live button state, per spec.md §6 setkeys. KEYINPUT
// is active-low: a pressed key clears its bit.
func (g *Gba) SetKeys(pressed map[Key]bool) {
	v := uint16(0x3FF)
	for k, isDown := range pressed {
		if isDown {
			v &^= 1 << uint(k)
		}
	}
	g.bus.keyInput = v
}

// SetAudioFunc installs the host's audio-sample callback.
func (g *Gba) SetAudioFunc(fn apu.SampleFunc) { g.apu.SetSampleFunc(fn) }

// SetFrameFunc installs the host's colour-conversion/vblank callback,
// invoked once per completed frame with the raw 15-bit-BGR pixel buffer.
func (g *Gba) SetFrameFunc(fn ppu.FrameFunc) { g.ppu.SetFrameFunc(fn) }

var (
	_ membus.CPUBus  = (*Bus)(nil)
	_ membus.DebugBus = (*Bus)(nil)
)
