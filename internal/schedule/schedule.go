// Package schedule runs delayed callbacks that can be cancelled and waited
// for.
package schedule

import (
	"sync"
	"time"
)

// TaskID identifies a scheduled task within its Set.
type TaskID uint64

// Set tracks pending delayed tasks. The zero value is ready to use.
type Set struct {
	mu    sync.Mutex
	next  TaskID
	tasks map[TaskID]*time.Timer
	wg    sync.WaitGroup
}

// After runs fn once d has elapsed unless the task is cancelled first.
func (s *Set) After(d time.Duration, fn func()) TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks == nil {
		s.tasks = make(map[TaskID]*time.Timer)
	}
	s.next++
	id := s.next
	s.wg.Add(1)
	s.tasks[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.tasks[id]
		delete(s.tasks, id)
		s.mu.Unlock()
		if !live {
			return
		}
		defer s.wg.Done()
		fn()
	})
	return id
}

// Cancel stops the task and reports whether it was still pending.
func (s *Set) Cancel(id TaskID) bool {
	s.mu.Lock()
	t, ok := s.tasks[id]
	delete(s.tasks, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	t.Stop()
	s.wg.Done()
	return true
}

// CancelAll stops every pending task and returns how many were stopped.
func (s *Set) CancelAll() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, t := range tasks {
		t.Stop()
		s.wg.Done()
	}
	return len(tasks)
}

// Pending reports the number of tasks that have neither fired nor been
// cancelled.
func (s *Set) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Wait blocks until every task scheduled so far has run or been cancelled.
func (s *Set) Wait() { s.wg.Wait() }
