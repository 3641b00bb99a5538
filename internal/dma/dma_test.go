package dma_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/dma"
	"github.com/ljsdev/goba/internal/irq"
)

type fakeMemory struct {
	data map[uint32]uint32
}

func newFakeMemory() *fakeMemory { return &fakeMemory{data: map[uint32]uint32{}} }

func (m *fakeMemory) Read16(addr uint32) uint16    { return uint16(m.data[addr]) }
func (m *fakeMemory) Read32(addr uint32) uint32    { return m.data[addr] }
func (m *fakeMemory) Write16(addr uint32, v uint16) { m.data[addr] = uint32(v) }
func (m *fakeMemory) Write32(addr uint32, v uint32) { m.data[addr] = v }

type mockRequester struct {
	requested []uint
}

func (m *mockRequester) Request(bit uint) { m.requested = append(m.requested, bit) }

func TestImmediateTransferCopiesAndIncrements(t *testing.T) {
	mem := newFakeMemory()
	mem.data[0x1000] = 0xAAAA
	mem.data[0x1002] = 0xBBBB
	mem.data[0x1004] = 0xCCCC

	irqr := &mockRequester{}
	ch := dma.NewChannel(1, mem, irqr)

	ch.SAD = 0x1000
	ch.DAD = 0x2000
	ch.Count = 3
	ch.WriteControl(1 << 15) // enable, immediate trigger, increment both, IRQ off

	if mem.data[0x2000] != 0xAAAA || mem.data[0x2002] != 0xBBBB || mem.data[0x2004] != 0xCCCC {
		t.Fatalf("unexpected transfer result: %#v", mem.data)
	}
	if ch.Enabled {
		t.Fatalf("expected non-repeating channel to self-disable after the transfer")
	}
}

func TestTriggerOnlyFiresForArmedKind(t *testing.T) {
	mem := newFakeMemory()
	mem.data[0x3000] = 0x1234
	irqr := &mockRequester{}
	ch := dma.NewChannel(2, mem, irqr)

	ch.SAD = 0x3000
	ch.DAD = 0x4000
	ch.Count = 1
	ch.StartTrigger = dma.TriggerVBlank
	ch.WriteControl(1<<15 | 1<<12) // enable, VBlank trigger

	ch.Trigger(dma.TriggerHBlank) // wrong kind, must not fire
	if _, ok := mem.data[0x4000]; ok {
		t.Fatalf("expected no transfer on mismatched trigger kind")
	}

	ch.Trigger(dma.TriggerVBlank)
	if mem.data[0x4000] != 0x1234 {
		t.Fatalf("expected transfer to run on matching trigger kind")
	}
}

func TestIRQEnableRequestsChannelBit(t *testing.T) {
	mem := newFakeMemory()
	irqr := &mockRequester{}
	ch := dma.NewChannel(3, mem, irqr)

	ch.SAD = 0x100
	ch.DAD = 0x200
	ch.Count = 1
	ch.WriteControl(1<<15 | 1<<14) // enable, immediate, IRQ on

	if len(irqr.requested) != 1 || irqr.requested[0] != irq.DMA3 {
		t.Fatalf("expected DMA3 IRQ request, got %v", irqr.requested)
	}
}
