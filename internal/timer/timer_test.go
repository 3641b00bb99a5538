package timer_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/irq"
	"github.com/ljsdev/goba/internal/scheduler"
	"github.com/ljsdev/goba/internal/timer"
)

type mockRequester struct {
	requested []uint
}

func (m *mockRequester) Request(bit uint) { m.requested = append(m.requested, bit) }

func TestOverflowFiresIRQAndReschedules(t *testing.T) {
	sched := scheduler.New()
	irqr := &mockRequester{}
	tm := timer.New(0, sched, 100, irqr, 2)

	tm.WriteReload(0xFFFE) // overflows after 2 prescaler-1 ticks
	tm.WriteControl(1 << 6) // IRQ armed, prescaler 0, not yet started
	tm.WriteControl(1<<6 | 1<<7) // now start it

	sched.Tick(2 + 2) // startDelay + period
	sched.Fire()

	if len(irqr.requested) != 1 || irqr.requested[0] != irq.Timer0 {
		t.Fatalf("expected one Timer0 IRQ request, got %v", irqr.requested)
	}

	// should have rearmed for the next overflow
	sched.Tick(2)
	sched.Fire()
	if len(irqr.requested) != 2 {
		t.Fatalf("expected timer to keep firing after reload, got %d events", len(irqr.requested))
	}
}

func TestCascadeChainBumpsNextTimer(t *testing.T) {
	sched := scheduler.New()
	irqr := &mockRequester{}
	bank := timer.NewBank(sched, 200, irqr, 0)

	bank.Timers[1].WriteReload(0xFFFF) // overflow on first cascade bump
	bank.Timers[1].WriteControl(1<<2 | 1<<6 | 1<<7) // cascade + IRQ armed + start

	bank.Timers[0].WriteReload(0xFFFE)
	bank.Timers[0].WriteControl(1 << 7) // not cascaded, runs free

	sched.Tick(2)
	sched.Fire()

	found := false
	for _, b := range irqr.requested {
		if b == irq.Timer1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected timer 0's overflow to cascade-bump timer 1 into overflow, got %v", irqr.requested)
	}
}

func TestDisableRemovesScheduledEvent(t *testing.T) {
	sched := scheduler.New()
	irqr := &mockRequester{}
	tm := timer.New(2, sched, 300, irqr, 0)

	tm.WriteReload(0xFFF0)
	tm.WriteControl(1 << 7)
	tm.WriteControl(0) // disable before it can fire

	sched.Tick(1000)
	sched.Fire()

	if len(irqr.requested) != 0 {
		t.Fatalf("expected no IRQ after disabling timer, got %v", irqr.requested)
	}
}
