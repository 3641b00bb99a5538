// Package ppu implements the picture processing unit described in
// spec.md §4.6: a line-based period state machine driving six render
// modes, windowing, an OBJ compositor, and alpha/fade blending.
package ppu

import (
	"github.com/ljsdev/goba/internal/dma"
	"github.com/ljsdev/goba/internal/irq"
	"github.com/ljsdev/goba/internal/scheduler"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	cyclesHDraw  = 960
	cyclesHBlank = 272
	totalLines   = 228
)

// Period identifies which phase of the current scanline (or virtual
// scanline, during VBlank) the PPU is in.
type Period int

const (
	PeriodHDraw Period = iota
	PeriodHBlank
	PeriodVBlank
)

// Memory is the narrow view onto palette RAM, VRAM and OAM the PPU
// needs to rasterise a line. The container's Bus satisfies this.
type Memory interface {
	ReadPalette16(addr uint32) uint16
	ReadVRAM8(addr uint32) uint8
	ReadVRAM16(addr uint32) uint16
	ReadOAM16(addr uint32) uint16
}

// FrameFunc receives one fully-rendered frame as 240x160 packed
// 15-bit BGR colour values, matching the host colour-conversion
// callback in spec.md §6.
type FrameFunc func(pixels *[ScreenWidth * ScreenHeight]uint16)

// PPU is the top-level picture processing unit.
type PPU struct {
	mem  Memory
	dma  *dma.Bank
	irqr irq.Requester

	sched *scheduler.Scheduler
	id    scheduler.ID

	period Period
	line   int

	framebuf [ScreenWidth * ScreenHeight]uint16
	onFrame  FrameFunc

	regs registers
	aff  [2]affineShadow // BG2, BG3
}

// New constructs the PPU, arming its period state machine on the
// scheduler.
func New(mem Memory, dmaBank *dma.Bank, irqr irq.Requester, sched *scheduler.Scheduler, id scheduler.ID) *PPU {
	p := &PPU{mem: mem, dma: dmaBank, irqr: irqr, sched: sched, id: id}
	p.sched.Add(id, cyclesHDraw, p.onHDrawEnd, p)
	return p
}

// SetFrameFunc installs the host frame-ready callback.
func (p *PPU) SetFrameFunc(fn FrameFunc) { p.onFrame = fn }

// SetMemory (re)binds the PPU to the palette/VRAM/OAM view it renders
// from, once the container's bus has been constructed.
func (p *PPU) SetMemory(mem Memory) { p.mem = mem }

// CurrentLine returns the live scanline counter (0..227).
func (p *PPU) CurrentLine() int { return p.line }

// CurrentPeriod returns the live period.
func (p *PPU) CurrentPeriod() Period { return p.period }

func (p *PPU) onHDrawEnd(user interface{}, id scheduler.ID, lateness int32) {
	p.period = PeriodHBlank
	if p.line < ScreenHeight {
		p.renderLine(p.line)
		if p.regs.dispstat&(1<<4) != 0 {
			p.irqr.Request(irq.HBlank)
		}
		p.dma.TriggerAll(dma.TriggerHBlank)
		p.stepAffineAtHBlank()
	}
	interval := int32(cyclesHBlank) - lateness
	if interval < 1 {
		interval = 1
	}
	p.sched.Add(p.id, interval, p.onHBlankEnd, p)
}

func (p *PPU) onHBlankEnd(user interface{}, id scheduler.ID, lateness int32) {
	p.period = PeriodHDraw
	p.line++
	if p.line >= totalLines {
		p.line = 0
		p.reloadAffine()
		if p.onFrame != nil {
			p.onFrame(&p.framebuf)
		}
	}
	if p.line == ScreenHeight {
		if p.regs.dispstat&(1<<3) != 0 {
			p.irqr.Request(irq.VBlank)
		}
		p.dma.TriggerAll(dma.TriggerVBlank)
	}
	if uint16(p.line) == p.regs.vcountCompare && p.regs.dispstat&(1<<5) != 0 {
		p.irqr.Request(irq.VCount)
	}
	interval := int32(cyclesHDraw) - lateness
	if interval < 1 {
		interval = 1
	}
	p.sched.Add(p.id, interval, p.onHDrawEnd, p)
}

// ReadDISPSTAT reconstructs the display status register, including the
// live VBlank/HBlank/V-counter-match flags.
func (p *PPU) ReadDISPSTAT() uint16 {
	v := p.regs.dispstat &^ 0x7
	if p.line >= ScreenHeight {
		v |= 1 << 0
	}
	if p.period == PeriodHBlank {
		v |= 1 << 1
	}
	if uint16(p.line) == p.regs.vcountCompare {
		v |= 1 << 2
	}
	return v
}

// ReadVCOUNT returns the current scanline.
func (p *PPU) ReadVCOUNT() uint16 { return uint16(p.line) }
