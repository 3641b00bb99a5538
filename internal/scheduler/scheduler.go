// Package scheduler implements the cooperative event queue that drives
// every timed subsystem. The CPU is the only component that advances the
// clock (by reporting the cycle cost of each instruction); everything else
// -- PPU, APU, DMA, timers -- reacts by registering callbacks here.
//
// The design (a binary min-heap keyed on deadline, with a reserved sentinel
// event that rebases the clock before a signed 32 bit overflow) is taken
// directly from the reference core this emulator's timing model is based
// on.
package scheduler

import "container/heap"

// ID identifies a scheduler entry. The set of valid IDs is small and
// closed: one per component instance that can have a pending event.
type ID int32

// Callback is invoked when an event's deadline is reached or passed.
// lateness is (clock - deadline) and is always >= 0; a callback that
// re-arms itself must subtract lateness from its next interval to keep the
// average period correct.
type Callback func(user interface{}, id ID, lateness int32)

// idReset is a reserved id for the periodic rebase event; it is always
// present in the queue so the queue is conceptually never empty.
const idReset ID = -1

// rebaseAt is the deadline, in ticks, at which the clock and every pending
// deadline are rebased by subtracting this same constant. Chosen to match
// the reference core exactly (0x70000000) so that timing-sensitive test
// ROMs which assume this constant continue to behave identically.
const rebaseAt int32 = 0x70000000

type entry struct {
	deadline int32
	id       ID
	seq      uint64
	callback Callback
	user     interface{}
}

// queue implements container/heap.Interface, ordered by deadline then by
// insertion sequence (ties broken in insertion order, per spec.md §4.1).
type queue []*entry

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(*entry)) }
func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler is a monotonic-clock priority queue of (deadline, callback)
// entries, with at most one live entry per ID.
type Scheduler struct {
	clock   int32
	q       queue
	bySeq   uint64
	byID    map[ID]*entry
}

// New creates a Scheduler starting at clock 0, with the reserved rebase
// event already armed.
func New() *Scheduler {
	s := &Scheduler{
		byID: make(map[ID]*entry),
	}
	s.addAbsolute(idReset, rebaseAt, rebaseCallback, s)
	return s
}

func rebaseCallback(user interface{}, id ID, lateness int32) {
	s := user.(*Scheduler)
	for _, e := range s.q {
		e.deadline -= rebaseAt
	}
	s.clock -= rebaseAt
	s.addAbsolute(idReset, rebaseAt, rebaseCallback, s)
}

// Ticks returns the current value of the monotonic clock.
func (s *Scheduler) Ticks() int32 { return s.clock }

// Tick advances the clock by delta ticks without firing any events; the
// caller is expected to call Fire() afterwards.
func (s *Scheduler) Tick(delta int32) { s.clock += delta }

// Add schedules (or reschedules) id to fire `relative` ticks from now.
func (s *Scheduler) Add(id ID, relative int32, cb Callback, user interface{}) {
	s.addAbsolute(id, s.clock+relative, cb, user)
}

// AddAbsolute schedules (or reschedules) id to fire at the absolute
// deadline given (measured on the same clock returned by Ticks).
func (s *Scheduler) AddAbsolute(id ID, deadline int32, cb Callback, user interface{}) {
	s.addAbsolute(id, deadline, cb, user)
}

func (s *Scheduler) addAbsolute(id ID, deadline int32, cb Callback, user interface{}) {
	if e, ok := s.byID[id]; ok {
		e.deadline = deadline
		e.callback = cb
		e.user = user
		e.seq = s.nextSeq()
		heap.Fix(&s.q, s.indexOf(e))
		return
	}

	e := &entry{
		deadline: deadline,
		id:       id,
		seq:      s.nextSeq(),
		callback: cb,
		user:     user,
	}
	s.byID[id] = e
	heap.Push(&s.q, e)
}

func (s *Scheduler) nextSeq() uint64 {
	s.bySeq++
	return s.bySeq
}

func (s *Scheduler) indexOf(target *entry) int {
	for i, e := range s.q {
		if e == target {
			return i
		}
	}
	return -1
}

// Remove cancels id's pending event, if any. Idempotent.
func (s *Scheduler) Remove(id ID) {
	e, ok := s.byID[id]
	if !ok {
		return
	}
	idx := s.indexOf(e)
	if idx < 0 {
		return
	}
	heap.Remove(&s.q, idx)
	delete(s.byID, id)
}

// HasEvent reports whether id has a pending event.
func (s *Scheduler) HasEvent(id ID) bool {
	_, ok := s.byID[id]
	return ok
}

// GetEventCycles returns the number of ticks remaining until id's deadline,
// or 0 if id has no pending event.
func (s *Scheduler) GetEventCycles(id ID) int32 {
	e, ok := s.byID[id]
	if !ok {
		return 0
	}
	return e.deadline - s.clock
}

// GetEventDeadline returns id's absolute deadline, or 0 if id has no
// pending event. Treat the returned value as opaque (it survives rebase).
func (s *Scheduler) GetEventDeadline(id ID) int32 {
	e, ok := s.byID[id]
	if !ok {
		return 0
	}
	return e.deadline
}

// NextEventCycles returns the number of ticks until the earliest pending
// event (always present, because of the reserved rebase event).
func (s *Scheduler) NextEventCycles() int32 {
	if len(s.q) == 0 {
		return 0
	}
	return s.q[0].deadline - s.clock
}

// ShouldFire reports whether Fire() has at least one event ready to run.
func (s *Scheduler) ShouldFire() bool {
	return len(s.q) > 0 && s.q[0].deadline <= s.clock
}

// Fire repeatedly pops and invokes every entry whose deadline has been
// reached or passed, in deadline order (ties in insertion order). A
// callback may add, remove, or re-arm entries, including its own.
func (s *Scheduler) Fire() {
	for len(s.q) > 0 && s.q[0].deadline <= s.clock {
		e := heap.Pop(&s.q).(*entry)
		delete(s.byID, e.id)
		lateness := s.clock - e.deadline
		e.callback(e.user, e.id, lateness)
	}
}
