package scheduler_test

import (
	"testing"

	"github.com/ljsdev/goba/internal/scheduler"
)

func TestFireOrderAndLateness(t *testing.T) {
	s := scheduler.New()

	var fired []scheduler.ID
	var lateness []int32

	cb := func(user interface{}, id scheduler.ID, late int32) {
		fired = append(fired, id)
		lateness = append(lateness, late)
	}

	s.Add(1, 10, cb, nil)
	s.Add(2, 10, cb, nil) // same deadline, added after id 1: must fire after it
	s.Add(3, 5, cb, nil)

	s.Tick(12)
	s.Fire()

	if len(fired) != 3 {
		t.Fatalf("expected 3 events fired, got %d (%v)", len(fired), fired)
	}
	if fired[0] != 3 || fired[1] != 1 || fired[2] != 2 {
		t.Fatalf("unexpected fire order: %v", fired)
	}
	if lateness[0] != 7 || lateness[1] != 2 || lateness[2] != 2 {
		t.Fatalf("unexpected lateness: %v", lateness)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := scheduler.New()
	s.Remove(99)
	s.Add(1, 5, func(interface{}, scheduler.ID, int32) {}, nil)
	s.Remove(1)
	s.Remove(1)
	if s.HasEvent(1) {
		t.Fatalf("expected event 1 to be removed")
	}
}

func TestReAddUpdatesInPlace(t *testing.T) {
	s := scheduler.New()
	calls := 0
	s.Add(1, 100, func(interface{}, scheduler.ID, int32) { calls++ }, nil)
	s.Add(1, 5, func(interface{}, scheduler.ID, int32) { calls++ }, nil)

	s.Tick(5)
	s.Fire()

	if calls != 1 {
		t.Fatalf("expected exactly one firing, got %d", calls)
	}
}

func TestSelfRearm(t *testing.T) {
	s := scheduler.New()
	count := 0

	var arm func(user interface{}, id scheduler.ID, late int32)
	arm = func(user interface{}, id scheduler.ID, late int32) {
		count++
		if count < 5 {
			s.Add(id, 10-late, arm, nil)
		}
	}

	s.Add(7, 10, arm, nil)
	for i := 0; i < 5; i++ {
		s.Tick(s.NextEventCycles())
		s.Fire()
	}

	if count != 5 {
		t.Fatalf("expected 5 firings, got %d", count)
	}
}

func TestGetEventCycles(t *testing.T) {
	s := scheduler.New()
	s.Add(1, 42, func(interface{}, scheduler.ID, int32) {}, nil)
	if got := s.GetEventCycles(1); got != 42 {
		t.Fatalf("expected 42 cycles remaining, got %d", got)
	}
	if got := s.GetEventCycles(123); got != 0 {
		t.Fatalf("expected 0 for missing event, got %d", got)
	}
}
