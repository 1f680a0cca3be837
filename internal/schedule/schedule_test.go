package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAfterRuns(t *testing.T) {
	var s Set
	var n atomic.Int32
	for i := 0; i < 3; i++ {
		s.After(time.Millisecond, func() { n.Add(1) })
	}
	s.Wait()
	if n.Load() != 3 {
		t.Errorf("ran %d tasks, want 3", n.Load())
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestCancel(t *testing.T) {
	var s Set
	var ran atomic.Bool
	id := s.After(time.Hour, func() { ran.Store(true) })
	if s.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", s.Pending())
	}
	if !s.Cancel(id) {
		t.Fatal("Cancel should report a pending task")
	}
	if s.Cancel(id) {
		t.Error("second Cancel should report false")
	}
	s.Wait()
	if ran.Load() {
		t.Error("cancelled task ran")
	}
}

func TestCancelAll(t *testing.T) {
	var s Set
	var n atomic.Int32
	s.After(time.Hour, func() { n.Add(1) })
	s.After(time.Hour, func() { n.Add(1) })
	s.After(time.Millisecond, func() { n.Add(1) })
	time.Sleep(50 * time.Millisecond)
	if got := s.CancelAll(); got != 2 {
		t.Errorf("CancelAll = %d, want 2", got)
	}
	s.Wait()
	if n.Load() != 1 {
		t.Errorf("ran %d tasks, want 1", n.Load())
	}
}

func TestOrderByDelay(t *testing.T) {
	var s Set
	got := make(chan int, 2)
	s.After(40*time.Millisecond, func() { got <- 2 })
	s.After(time.Millisecond, func() { got <- 1 })
	s.Wait()
	if a, b := <-got, <-got; a != 1 || b != 2 {
		t.Errorf("order = %d, %d", a, b)
	}
}
