package sim

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualSchedulerEvery(t *testing.T) {
	s := NewManualScheduler()
	var n int
	task := s.Every(time.Second, func() { n++ })
	s.Advance(999 * time.Millisecond)
	if n != 0 {
		t.Fatalf("fired early: %d", n)
	}
	s.Advance(time.Millisecond)
	if n != 1 {
		t.Fatalf("expected 1 firing, got %d", n)
	}
	s.Advance(3 * time.Second)
	if n != 4 {
		t.Fatalf("expected 4 firings, got %d", n)
	}
	task.Cancel()
	s.Advance(5 * time.Second)
	if n != 4 {
		t.Fatalf("fired after cancel: %d", n)
	}
	if s.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", s.Pending())
	}
}

func TestManualSchedulerAfterOrdering(t *testing.T) {
	s := NewManualScheduler()
	var order []string
	s.After(1500*time.Millisecond, func() { order = append(order, "inject") })
	s.After(time.Second, func() { order = append(order, "restore") })
	s.Every(time.Second, func() { order = append(order, "tick") })
	s.Advance(2 * time.Second)
	want := []string{"restore", "tick", "inject", "tick"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if s.Now() != 2*time.Second {
		t.Fatalf("now = %v", s.Now())
	}
}

func TestManualSchedulerCancelFromCallback(t *testing.T) {
	s := NewManualScheduler()
	var n int
	var task Task
	task = s.Every(time.Second, func() {
		n++
		if n == 2 {
			task.Cancel()
		}
	})
	s.Advance(10 * time.Second)
	if n != 2 {
		t.Fatalf("expected 2 firings, got %d", n)
	}
}

func TestClockSchedulerCancel(t *testing.T) {
	var sched ClockScheduler
	var fired atomic.Int32
	task := sched.After(time.Hour, func() { fired.Add(1) })
	task.Cancel()
	tick := sched.Every(time.Millisecond, func() { fired.Add(1) })
	time.Sleep(20 * time.Millisecond)
	tick.Cancel()
	tick.Cancel()
	got := fired.Load()
	if got == 0 {
		t.Fatalf("ticker never fired")
	}
	time.Sleep(20 * time.Millisecond)
	if after := fired.Load(); after > got+1 {
		t.Fatalf("ticker kept firing after cancel: %d -> %d", got, after)
	}
}
