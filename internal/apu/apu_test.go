package apu

import (
	"testing"

	"github.com/ljsdev/goba/internal/scheduler"
)

func TestFIFOPushPopOrdersFIFO(t *testing.T) {
	var f FIFO
	f.Push(1)
	f.Push(2)
	f.Push(3)

	if f.count != 3 {
		t.Fatalf("expected 3 queued bytes, got %d", f.count)
	}
	f.pop()
	if f.current != 1 {
		t.Fatalf("expected first pop to surface the first pushed byte, got %d", f.current)
	}
	f.pop()
	if f.current != 2 {
		t.Fatalf("expected second pop to surface the second pushed byte, got %d", f.current)
	}
}

func TestFIFONeedsRefillAtHalfEmpty(t *testing.T) {
	var f FIFO
	for i := 0; i < 32; i++ {
		f.Push(int8(i))
	}
	if f.NeedsRefill() {
		t.Fatalf("expected a full FIFO to not need a refill")
	}
	for i := 0; i < 16; i++ {
		f.pop()
	}
	if !f.NeedsRefill() {
		t.Fatalf("expected a half-drained FIFO to need a refill")
	}
}

func TestWriteRegisterRoutesToSoundCntL(t *testing.T) {
	sched := scheduler.New()
	a := New(sched, 0, 1)

	a.WriteRegister16(RegSOUNDCNT_L, 0x1234)
	if a.leftVol != 3 || a.rightVol != 4 {
		t.Fatalf("expected left/right volume 3/4, got %d/%d", a.leftVol, a.rightVol)
	}
	if !a.rightEnable[1] || !a.leftEnable[0] {
		t.Fatalf("unexpected channel enable bits after SOUNDCNT_L write")
	}
}

func TestMasterEnableGatesViaSoundCntX(t *testing.T) {
	sched := scheduler.New()
	a := New(sched, 0, 1)

	if a.masterEnable {
		t.Fatalf("expected master enable to start false")
	}
	a.WriteRegister16(RegSOUNDCNT_X, 1<<7)
	if !a.masterEnable {
		t.Fatalf("expected SOUNDCNT_X bit 7 to set master enable")
	}

	got := a.ReadRegister16(RegSOUNDCNT_X)
	if got&(1<<7) == 0 {
		t.Fatalf("expected readback of SOUNDCNT_X to reflect master enable")
	}
}

func TestSq0HasSweepButSq1DoesNot(t *testing.T) {
	sched := scheduler.New()
	a := New(sched, 0, 1)

	if !a.sq0.hasSweep {
		t.Fatalf("expected channel 1 (square0) to have sweep hardware")
	}
	if a.sq1.hasSweep {
		t.Fatalf("expected channel 2 (square1) to not have sweep hardware")
	}
}
