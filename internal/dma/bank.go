package dma

import "github.com/ljsdev/goba/internal/irq"

// Bank is the set of four DMA channels, fired in priority order
// (0 > 1 > 2 > 3) on each trigger.
type Bank struct {
	Channels [4]*Channel
}

func NewBank(mem Memory, irqr irq.Requester) *Bank {
	b := &Bank{}
	for i := 0; i < 4; i++ {
		b.Channels[i] = NewChannel(i, mem, irqr)
	}
	return b
}

// TriggerAll fires every channel armed for kind, in priority order.
func (b *Bank) TriggerAll(kind Trigger) {
	for _, c := range b.Channels {
		c.Trigger(kind)
	}
}

// SetMemory (re)binds every channel to the bus.
func (b *Bank) SetMemory(mem Memory) {
	for _, c := range b.Channels {
		c.SetMemory(mem)
	}
}
