package timer

import (
	"github.com/ljsdev/goba/internal/irq"
	"github.com/ljsdev/goba/internal/scheduler"
)

// Bank is the set of four timers, wired with their cascade-notify chain.
type Bank struct {
	Timers [4]*Timer
}

// NewBank constructs all four timers and links the cascade chain
// (timer N is notified by timer N-1's overflow).
func NewBank(sched *scheduler.Scheduler, baseID scheduler.ID, irqr irq.Requester, startDelay int32) *Bank {
	b := &Bank{}
	for i := 0; i < 4; i++ {
		b.Timers[i] = New(i, sched, baseID+scheduler.ID(i), irqr, startDelay)
	}
	for i := 0; i < 3; i++ {
		b.Timers[i].SetNext(b.Timers[i+1])
	}
	return b
}
