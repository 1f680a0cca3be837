package shortcut

import "sync"

// Handler receives key events from a Stream and reports whether it handled
// the event. A handled event has its default action suppressed.
type Handler func(Event) bool

// Stream fans keyboard events out to subscribers in subscription order.
type Stream struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

type subscription struct {
	id int
	fn Handler
}

// Subscribe adds fn to the stream. The returned function removes it and may
// be called more than once.
func (s *Stream) Subscribe(fn Handler) (cancel func()) {
	s.mu.Lock()
	s.next++
	id := s.next
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers reports the number of active subscriptions.
func (s *Stream) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Emit delivers ev synchronously to every subscriber and reports whether any
// of them handled it.
func (s *Stream) Emit(ev Event) bool {
	s.mu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	handled := false
	for _, sub := range subs {
		if sub.fn(ev) {
			handled = true
		}
	}
	return handled
}
