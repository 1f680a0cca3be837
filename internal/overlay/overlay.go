// Package overlay holds the formula annotations shown on top of the canvas.
package overlay

import (
	"image"
	"sync"
)

// Annotation is a typeset formula anchored at a canvas position.
type Annotation struct {
	Formula  string
	Position image.Point
}

// Store is an insertion-ordered list of annotations. Annotations can be
// moved but not removed individually.
type Store struct {
	mu    sync.RWMutex
	items []Annotation
}

// Add appends an annotation and returns its index.
func (s *Store) Add(formula string, pos image.Point) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Annotation{Formula: formula, Position: pos})
	return len(s.items) - 1
}

// Reposition moves the annotation at index to pos. Out of range indexes
// are ignored and report false.
func (s *Store) Reposition(index int, pos image.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return false
	}
	s.items[index].Position = pos
	return true
}

// Clear removes every annotation.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// Len returns the number of annotations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns a copy of the annotations in insertion order.
func (s *Store) All() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, len(s.items))
	copy(out, s.items)
	return out
}

// HitTest returns the index of the topmost annotation whose bounds contain
// p. bounds maps an annotation to its on-screen rectangle.
func (s *Store) HitTest(p image.Point, bounds func(Annotation) image.Rectangle) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		if p.In(bounds(s.items[i])) {
			return i, true
		}
	}
	return -1, false
}
