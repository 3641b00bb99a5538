// Package cpu implements the ARM7TDMI core: the ARM and THUMB instruction
// sets, the banked register file, exception entry, and the small set of
// BIOS functions high-level-emulated in place of running the real GBA BIOS.
//
// The execution loop is shaped the way a single-step interpreter core is
// usually shaped in this codebase: Step decodes and executes exactly one
// instruction and reports a LastResult describing what happened, so a
// caller (here, the top-level container) can drive the scheduler and poll
// for IRQs between every instruction rather than only between frames.
package cpu

import "github.com/ljsdev/goba/internal/logger"

// Exception vector addresses, fixed by the ARM architecture.
const (
	vectorReset     = 0x00000000
	vectorUndefined = 0x00000004
	vectorSWI       = 0x00000008
	vectorPrefetch  = 0x0000000C
	vectorDataAbort = 0x00000010
	vectorIRQ       = 0x00000018
	vectorFIQ       = 0x0000001C
)

// BIOSHook intercepts SWI instructions by their comment field, supplying a
// high-level-emulated implementation of the handful of BIOS functions the
// system needs in place of interpreting real BIOS code (none is shipped).
type BIOSHook interface {
	// Call runs the BIOS function named by comment, returning true if it
	// recognised and handled the call. The hook is free to mutate the
	// CPU's registers directly. When it returns false the CPU falls
	// through to a normal (unhandled) SWI exception entry.
	Call(c *CPU, comment uint8) bool
}

// LastResult describes the instruction most recently executed by Step, for
// tracing and for tests.
type LastResult struct {
	Address     uint32
	Opcode      uint32
	Thumb       bool
	Executed    bool // false if the condition code failed
	Branched    bool // pipeline was refilled (branch, PC write, exception)
	Mnemonic    string
}

// CPU is the ARM7TDMI core. It owns the register file and a two-slot
// prefetch pipeline; it never touches memory except through the Memory
// interface supplied at construction, so it has no notion of what kind of
// address it is reading from.
type CPU struct {
	Regs Registers

	mem   Memory
	cycle CycleSink
	bios  BIOSHook

	pipelineFetch  uint32 // instruction fetched this cycle, not yet decoded
	pipelineDecode uint32 // instruction fetched last cycle, decoded this cycle
	pipelineValid  int    // 0, 1 or 2 valid slots

	Halted  bool
	IRQLine bool // level-triggered external signal, set by the interrupt controller (register IE & IF, gated by IME, at the container level)

	Last LastResult
}

// New constructs a CPU wired to the given memory bus and cycle sink. Reset
// must be called before Step to establish the initial pipeline state.
func New(mem Memory, cycle CycleSink, bios BIOSHook) *CPU {
	return &CPU{mem: mem, cycle: cycle, bios: bios}
}

// State is the CPU's full save-state snapshot: the register file plus
// the pipeline and halt state that would otherwise be lost between one
// Step call and the next.
type State struct {
	Regs           Registers
	PipelineFetch  uint32
	PipelineDecode uint32
	PipelineValid  int32 // fixed width for binary.Write/Read, unlike int
	Halted         bool
	IRQLine        bool
}

// Snapshot captures the CPU's full state for save states.
func (c *CPU) Snapshot() State {
	return State{
		Regs:           c.Regs.Snapshot(),
		PipelineFetch:  c.pipelineFetch,
		PipelineDecode: c.pipelineDecode,
		PipelineValid:  int32(c.pipelineValid),
		Halted:         c.Halted,
		IRQLine:        c.IRQLine,
	}
}

// Restore replaces the CPU's full state from a snapshot taken earlier by
// Snapshot.
func (c *CPU) Restore(s State) {
	c.Regs.Restore(s.Regs)
	c.pipelineFetch = s.PipelineFetch
	c.pipelineDecode = s.PipelineDecode
	c.pipelineValid = int(s.PipelineValid)
	c.Halted = s.Halted
	c.IRQLine = s.IRQLine
}

// SetMemory (re)binds the CPU to its memory bus. Used by the container
// once the bus itself has been constructed, breaking the construction-
// order cycle between the two (the bus, in turn, is constructed with a
// pointer to this CPU's sibling components, not to the CPU itself).
func (c *CPU) SetMemory(mem Memory) { c.mem = mem }

// SetIRQLine is called by the container's interrupt controller whenever
// IE, IF or IME changes, keeping the external interrupt line level
// up to date between instructions.
func (c *CPU) SetIRQLine(asserted bool) { c.IRQLine = asserted }

// Reset puts the CPU into the state it has immediately after the BIOS's
// own reset handler would have run: System mode, interrupts disabled,
// stack pointers seeded per bank, PC at the start of ROM. Supplying the
// real reset vector's boot sequence is out of scope (no BIOS ROM is
// shipped), so this mirrors the values a HLE boot uses.
func (c *CPU) Reset(entryPoint uint32) {
	c.Regs = Registers{}
	c.Regs.CPSR = PSR{I: true, F: true, M: ModeSystem}
	c.Regs.bank.svc[0] = 0x03007FE0
	c.Regs.bank.irq[0] = 0x03007FA0
	c.Regs.R[SPIndex] = 0x03007F00
	c.Regs.R[PCIndex] = entryPoint
	c.Halted = false
	c.refillPipeline()
}

// SetThumb forces the CPU's instruction-set state and refills the
// pipeline from the current PC, as a BIOS boot stub or test harness
// needs to do before execution begins in THUMB state.
func (c *CPU) SetThumb(thumb bool) {
	c.Regs.CPSR.T = thumb
	c.refillPipeline()
}

func (c *CPU) thumb() bool { return c.Regs.CPSR.T }

func (c *CPU) instrSize() uint32 {
	if c.thumb() {
		return 2
	}
	return 4
}

// refillPipeline discards both pipeline slots and re-fetches starting at
// the current PC, as happens after any write to r15.
func (c *CPU) refillPipeline() {
	size := c.instrSize()
	pc := c.Regs.R[PCIndex] &^ (size - 1)
	c.Regs.R[PCIndex] = pc
	if c.thumb() {
		c.pipelineFetch = uint32(c.mem.Read16(pc))
		c.pipelineDecode = uint32(c.mem.Read16(pc + size))
	} else {
		c.pipelineFetch = c.mem.Read32(pc)
		c.pipelineDecode = c.mem.Read32(pc + size)
	}
	c.cycle.AddCycles(2)
	c.Regs.R[PCIndex] = pc + 2*size
	c.pipelineValid = 2
}

// fetchNext advances the pipeline by one stage, fetching the instruction
// at the current PC and returning the instruction to execute this step
// (which was fetched one step prior).
func (c *CPU) fetchNext() uint32 {
	exec := c.pipelineFetch
	c.pipelineFetch = c.pipelineDecode
	size := c.instrSize()
	if c.thumb() {
		c.pipelineDecode = uint32(c.mem.Read16(c.Regs.R[PCIndex]))
	} else {
		c.pipelineDecode = c.mem.Read32(c.Regs.R[PCIndex])
	}
	c.cycle.AddCycles(1)
	c.Regs.R[PCIndex] += size
	return exec
}

// pcForExecution returns the address of the instruction currently being
// executed: the reference core's get_pc() convention of "two instructions
// ahead of the currently executing one" means subtracting two instruction
// widths from r15.
func (c *CPU) pcForExecution() uint32 {
	return c.Regs.R[PCIndex] - 2*c.instrSize()
}

// Step executes exactly one instruction (ARM or THUMB, whichever the T bit
// selects) and returns a description of what happened.
func (c *CPU) Step() LastResult {
	if c.Halted {
		c.Last = LastResult{Executed: false, Mnemonic: "halt"}
		return c.Last
	}

	addr := c.pcForExecution()
	opcode := c.fetchNext()

	c.Last = LastResult{Address: addr, Opcode: opcode, Thumb: c.thumb()}

	if c.thumb() {
		c.Last.Executed = true
		c.executeThumb(uint16(opcode))
	} else {
		if checkCond(c.Regs.CPSR, opcode>>28) {
			c.executeARM(opcode)
			c.Last.Executed = true
		} else {
			c.Last.Executed = false
		}
	}

	return c.Last
}

// branchTo sets the PC to target and refills the pipeline, the common tail
// of every instruction that writes r15 directly (branches, data processing
// with rd=15, LDR into r15, exception entry).
func (c *CPU) branchTo(target uint32) {
	c.Regs.R[PCIndex] = target
	c.refillPipeline()
	c.Last.Branched = true
}

// branchExchange sets the PC and switches ARM/THUMB state according to
// bit 0 of target, as BX and any exception return via SPSR restore does.
func (c *CPU) branchExchange(target uint32) {
	c.Regs.CPSR.T = target&1 != 0
	c.branchTo(target &^ 1)
}

// CheckIRQ polls the external interrupt line and, if asserted and not
// masked, enters the IRQ exception. Wakes the core from Halted whenever
// the line is asserted, regardless of the I bit, and only jumps to the
// handler once I is clear. The container asserts the line only while IME
// is set and IE & IF is non-zero, so a halted core stays halted while IME
// is clear.
func (c *CPU) CheckIRQ() {
	if !c.IRQLine {
		return
	}
	if c.Halted {
		c.Halted = false
	}
	if c.Regs.CPSR.I {
		return
	}
	c.enterException(ModeIRQ, vectorIRQ, c.pcReturnForIRQ())
}

func (c *CPU) pcReturnForIRQ() uint32 {
	ret := c.pcForExecution() + c.instrSize()
	if c.thumb() {
		ret += c.instrSize()
	}
	return ret
}

// enterException performs the common exception-entry sequence: save
// CPSR to the target mode's SPSR, switch mode, save the return address to
// LR, disable IRQs, force ARM state, and jump to the vector.
func (c *CPU) enterException(mode Mode, vector uint32, returnAddr uint32) {
	savedCPSR := c.Regs.CPSR
	c.Regs.ChangeMode(mode)
	c.Regs.SetSPSR(savedCPSR)
	c.Regs.R[LRIndex] = returnAddr
	c.Regs.CPSR.I = true
	c.Regs.CPSR.T = false
	c.branchTo(vector)
}

// SoftwareInterrupt handles an SWI instruction. comment is bits 23-16 of
// an ARM encoding or the imm8 of a THUMB encoding. If a BIOSHook is
// installed and recognises the comment, it runs in place of a real
// exception entry (no BIOS ROM is shipped, so there is no handler to jump
// to); otherwise the normal SWI exception is entered.
func (c *CPU) SoftwareInterrupt(comment uint8) {
	if c.bios != nil && c.bios.Call(c, comment) {
		return
	}
	ret := c.pcForExecution() + c.instrSize()
	c.enterException(ModeSupervisor, vectorSWI, ret)
}

// UndefinedInstruction enters the Undefined exception.
func (c *CPU) UndefinedInstruction() {
	ret := c.pcForExecution() + c.instrSize()
	c.enterException(ModeUndefined, vectorUndefined, ret)
}

// Log is a convenience for instructions that want to report an anomaly
// (unmapped SWI number, undefined opcode pattern) through the shared
// logger rather than panicking.
func (c *CPU) Log(tag string, detail interface{}) {
	logger.Log(logger.Allow, tag, detail)
}
