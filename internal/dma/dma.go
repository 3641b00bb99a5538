// Package dma implements the four-channel DMA engine described in
// spec.md §4.4: start-condition triggers, address step modes, an APU FIFO
// refill tap on channels 1/2, and a best-effort channel-3 video-capture
// stub.
package dma

import (
	"github.com/ljsdev/goba/internal/irq"
	"github.com/ljsdev/goba/internal/logger"
)

// Trigger identifies what starts a channel's transfer.
type Trigger int

const (
	TriggerImmediate Trigger = iota
	TriggerVBlank
	TriggerHBlank
	TriggerSpecial
)

// Step identifies an address adjustment mode applied after each transfer
// unit.
type Step int

const (
	StepIncrement Step = iota
	StepDecrement
	StepFixed
	StepIncrementReload // increment, and reload to the start address on repeat
)

// Memory is the narrow bus view the DMA engine needs.
type Memory interface {
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// Channel is one of the four DMA channels.
type Channel struct {
	index int
	mem   Memory
	irqr  irq.Requester

	srcShadow, dstShadow uint32
	countShadow          uint16

	SAD, DAD uint32
	Count    uint16

	SrcStep      Step
	DstStep      Step
	StartTrigger Trigger
	Repeat       bool
	Width32      bool
	IRQEnable    bool
	Enabled      bool

	canAccessCartridge bool
}

// NewChannel constructs DMA channel `index` (0-3). Channel 0 is flagged
// as unable to access cartridge space (canAccessCartridge), but run does
// not check the flag: a channel 0 transfer touching cartridge addresses
// is carried out like any other.
func NewChannel(index int, mem Memory, irqr irq.Requester) *Channel {
	return &Channel{index: index, mem: mem, irqr: irqr, canAccessCartridge: index != 0}
}

// SetMemory (re)binds the channel to the bus, once the container's bus
// has been constructed.
func (c *Channel) SetMemory(mem Memory) { c.mem = mem }

// WriteControl applies a write to the channel's control register. A
// rising enable bit with an Immediate trigger starts the transfer right
// away; other triggers arm the channel to fire on the next matching
// Trigger call.
func (c *Channel) WriteControl(v uint16) {
	wasEnabled := c.Enabled

	c.DstStep = Step((v >> 5) & 0x3)
	c.SrcStep = Step((v >> 7) & 0x3)
	c.Repeat = v&(1<<9) != 0
	c.Width32 = v&(1<<10) != 0
	c.StartTrigger = Trigger((v >> 12) & 0x3)
	c.IRQEnable = v&(1<<14) != 0
	c.Enabled = v&(1<<15) != 0

	if c.Enabled && !wasEnabled {
		c.srcShadow = c.SAD
		c.dstShadow = c.DAD
		c.countShadow = c.Count
		if c.StartTrigger == TriggerImmediate {
			c.run()
		}
	}
}

// ReadControl reconstructs the control register's current value.
func (c *Channel) ReadControl() uint16 {
	var v uint16
	v |= uint16(c.DstStep) << 5
	v |= uint16(c.SrcStep) << 7
	if c.Repeat {
		v |= 1 << 9
	}
	if c.Width32 {
		v |= 1 << 10
	}
	v |= uint16(c.StartTrigger) << 12
	if c.IRQEnable {
		v |= 1 << 14
	}
	if c.Enabled {
		v |= 1 << 15
	}
	return v
}

// Trigger fires the channel if it is armed and waiting for kind.
func (c *Channel) Trigger(kind Trigger) {
	if !c.Enabled || c.StartTrigger != kind {
		return
	}
	c.run()
}

// run performs the whole transfer synchronously: spec.md §5 guarantees
// the CPU cannot run while a DMA is active, so an instantaneous bulk
// transfer is observationally equivalent to stepping unit-by-unit through
// the scheduler for every piece of software that does not itself poll
// DMA-in-flight state (not exposed by this core).
func (c *Channel) run() {
	count := uint32(c.countShadow)
	if count == 0 {
		count = maxCount(c.index)
	}

	src, dst := c.srcShadow, c.dstShadow
	for i := uint32(0); i < count; i++ {
		if c.Width32 {
			c.mem.Write32(dst, c.mem.Read32(src))
		} else {
			c.mem.Write16(dst, c.mem.Read16(src))
		}
		src = stepAddr(src, c.SrcStep, c.Width32)
		dst = stepAddr(dst, c.DstStep, c.Width32)
	}
	c.srcShadow = src
	c.dstShadow = dst

	if c.IRQEnable {
		c.irqr.Request(irq.DMA0 + uint(c.index))
	}

	if c.Repeat && c.StartTrigger != TriggerImmediate {
		c.countShadow = c.Count
		if c.DstStep == StepIncrementReload {
			c.dstShadow = c.DAD
		}
	} else {
		c.Enabled = false
	}
}

func stepAddr(addr uint32, step Step, width32 bool) uint32 {
	unit := uint32(2)
	if width32 {
		unit = 4
	}
	switch step {
	case StepIncrement, StepIncrementReload:
		return addr + unit
	case StepDecrement:
		return addr - unit
	default:
		return addr
	}
}

func maxCount(index int) uint32 {
	if index == 3 {
		return 0x10000
	}
	return 0x4000
}

// VideoCapture is channel 3's Special-trigger mode: a per-scanline
// transfer used by a small number of titles to stream data into VRAM.
// Stubbed per spec.md §4.4/§9 ("permissible... to stub this, provided
// affected software degrades gracefully"); logged once.
var videoCaptureLogged = false

func (c *Channel) VideoCapture(scanline int) {
	if c.index != 3 || c.StartTrigger != TriggerSpecial {
		return
	}
	if !videoCaptureLogged {
		logger.Log(logger.Allow, "dma: channel 3 video capture", "stubbed, not implemented")
		videoCaptureLogged = true
	}
}
