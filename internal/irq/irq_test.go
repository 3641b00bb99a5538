package irq_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/irq"
)

type recorder struct {
	bits []uint
}

func (r *recorder) Request(bit uint) { r.bits = append(r.bits, bit) }

func TestRequesterInterfaceIsSatisfied(t *testing.T) {
	var r irq.Requester = &recorder{}
	r.Request(irq.VBlank)
	r.Request(irq.Timer2)

	rec := r.(*recorder)
	if len(rec.bits) != 2 || rec.bits[0] != irq.VBlank || rec.bits[1] != irq.Timer2 {
		t.Fatalf("unexpected recorded bits: %v", rec.bits)
	}
}

func TestBitPositionsAreDistinct(t *testing.T) {
	bits := []uint{
		irq.VBlank, irq.HBlank, irq.VCount,
		irq.Timer0, irq.Timer1, irq.Timer2, irq.Timer3,
		irq.Serial,
		irq.DMA0, irq.DMA1, irq.DMA2, irq.DMA3,
		irq.Keypad, irq.GamePak,
	}
	seen := map[uint]bool{}
	for _, b := range bits {
		if seen[b] {
			t.Fatalf("duplicate interrupt bit position %d", b)
		}
		seen[b] = true
	}
}
