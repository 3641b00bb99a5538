// Package timer implements the four-timer bank described in spec.md §4.5:
// prescaled or cascaded 16 bit counters with overflow IRQ and an APU-FIFO
// drain tap.
package timer

import (
	"github.com/ljsdev/goba/internal/irq"
	"github.com/ljsdev/goba/internal/scheduler"
)

var prescalerCycles = [4]int32{1, 64, 256, 1024}

// FIFODrain is notified when a timer bound to an APU FIFO overflows, so
// the APU can pop one sample. No DMA refill is requested on this path;
// the drain does not trigger DMA channels 1/2. Timer
// does not import the apu package; the container wires this callback in,
// keeping the "no back-pointers" ownership rule.
type FIFODrain func(timerIndex int)

// Timer is one of the four hardware timers.
type Timer struct {
	index int
	sched *scheduler.Scheduler
	id    scheduler.ID
	irqr  irq.Requester
	drain FIFODrain
	next  *Timer // timer index+1, notified on overflow when it is cascaded

	reload    uint16
	prescaler uint8 // index into prescalerCycles
	cascade   bool
	irqArmed  bool
	enabled   bool

	counter        uint16
	lastOverflowAt int32
	startDelay     int32
}

// New constructs timer `index` (0-3). startDelay is the configurable
// enable-edge delay (spec.md §4.5, default 2, see internal/prefs).
func New(index int, sched *scheduler.Scheduler, id scheduler.ID, irqr irq.Requester, startDelay int32) *Timer {
	return &Timer{index: index, sched: sched, id: id, irqr: irqr, startDelay: startDelay}
}

// SetDrain installs the APU FIFO-drain callback for timers 0/1, which the
// container binds once at construction.
func (t *Timer) SetDrain(fn FIFODrain) { t.drain = fn }

// SetNext installs the next-higher timer, which the bank notifies on
// overflow when that timer is running in cascade mode.
func (t *Timer) SetNext(next *Timer) { t.next = next }

// ReadControl returns the packed control register: prescaler (bits 0-1),
// cascade (bit 2), IRQ-enable (bit 6), start (bit 7).
func (t *Timer) ReadControl() uint16 {
	var v uint16
	v |= uint16(t.prescaler)
	if t.cascade {
		v |= 1 << 2
	}
	if t.irqArmed {
		v |= 1 << 6
	}
	if t.enabled {
		v |= 1 << 7
	}
	return v
}

// WriteControl applies a write to the control register, arming or
// disarming the scheduler event on the enable edge.
func (t *Timer) WriteControl(v uint16) {
	wasEnabled := t.enabled
	t.prescaler = uint8(v & 0x3)
	t.cascade = v&(1<<2) != 0
	t.irqArmed = v&(1<<6) != 0
	t.enabled = v&(1<<7) != 0

	if t.enabled && !wasEnabled {
		t.counter = t.reload
		t.lastOverflowAt = t.sched.Ticks()
		if !t.cascade {
			t.sched.Add(t.id, t.startDelay+t.periodCycles(), t.onOverflow, t)
		}
	} else if !t.enabled && wasEnabled {
		t.sched.Remove(t.id)
	}
}

// WriteReload writes the reload register.
func (t *Timer) WriteReload(v uint16) { t.reload = v }

// ReadReload returns the reload register (readable on real hardware only
// as the last written value, which this mirrors).
func (t *Timer) ReadReload() uint16 { return t.reload }

// periodCycles is the number of cycles between reload and the next
// overflow, per spec.md §8: (0x10000 - reload) * prescaler.
func (t *Timer) periodCycles() int32 {
	return (0x10000 - int32(t.reload)) * prescalerCycles[t.prescaler]
}

// ReadCounter returns the live counter value. For a running, non-cascade
// timer this is reconstructed from elapsed cycles since the last
// overflow; a cascade timer (never itself scheduled) is read directly,
// per SPEC_FULL.md §4 (the caller is expected to have let the scheduler
// fire any due events first).
func (t *Timer) ReadCounter() uint16 {
	if !t.enabled || t.cascade {
		return t.counter
	}
	step := prescalerCycles[t.prescaler]
	elapsed := t.sched.Ticks() - t.lastOverflowAt
	if elapsed < 0 {
		elapsed = 0
	}
	ticked := elapsed / step
	return t.reload + uint16(ticked)
}

func (t *Timer) onOverflow(user interface{}, id scheduler.ID, lateness int32) {
	t.lastOverflowAt = t.sched.Ticks() - lateness
	t.counter = t.reload
	if t.irqArmed {
		t.irqr.Request(irq.Timer0 + uint(t.index))
	}
	if t.drain != nil {
		t.drain(t.index)
	}
	if t.next != nil {
		t.next.cascadeBump()
	}
	if t.enabled && !t.cascade {
		interval := t.periodCycles() - lateness
		if interval < 1 {
			interval = 1
		}
		t.sched.Add(t.id, interval, t.onOverflow, t)
	}
}

// cascadeBump is invoked by the timer below this one when it overflows,
// advancing this timer's counter by one tick (spec.md §4.5).
func (t *Timer) cascadeBump() {
	if !t.enabled || !t.cascade {
		return
	}
	t.counter++
	if t.counter == 0 {
		t.onOverflow(t, t.id, 0)
	}
}
