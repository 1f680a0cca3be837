// Package shortcut maps normalized key identities to actions and dispatches
// keyboard events to them.
package shortcut

import (
	"sort"
	"strings"
	"sync"
)

// Modifiers is the set of modifier keys that take part in a shortcut identity.
type Modifiers struct {
	Ctrl  bool
	Alt   bool
	Shift bool
}

// Binding associates a shortcut identity with the action it triggers.
type Binding struct {
	ID        string
	Key       string
	Modifiers Modifiers
	Action    func()
}

// ID returns the normalized identity for key pressed with mods. Modifiers
// are emitted in the fixed order ctrl, alt, shift and the key is lower-cased,
// so "R" and "r" collide while "ctrl+r" and "r" do not.
func ID(key string, mods Modifiers) string {
	var sb strings.Builder
	if mods.Ctrl {
		sb.WriteString("ctrl+")
	}
	if mods.Alt {
		sb.WriteString("alt+")
	}
	if mods.Shift {
		sb.WriteString("shift+")
	}
	sb.WriteString(strings.ToLower(key))
	return sb.String()
}

// Registry stores bindings by identity. A Registry is created once per
// session and shared by reference; it is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// Register binds action to key with mods, replacing any binding that has
// the same identity. A nil action is ignored.
func (r *Registry) Register(key string, mods Modifiers, action func()) {
	if action == nil {
		return
	}
	id := ID(key, mods)
	r.mu.Lock()
	r.bindings[id] = Binding{ID: id, Key: key, Modifiers: mods, Action: action}
	r.mu.Unlock()
}

// Unregister removes the binding for key with mods if present.
func (r *Registry) Unregister(key string, mods Modifiers) {
	id := ID(key, mods)
	r.mu.Lock()
	delete(r.bindings, id)
	r.mu.Unlock()
}

// Lookup returns the action bound to key with mods.
func (r *Registry) Lookup(key string, mods Modifiers) (func(), bool) {
	return r.lookupID(ID(key, mods))
}

func (r *Registry) lookupID(id string) (func(), bool) {
	r.mu.RLock()
	b, ok := r.bindings[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return b.Action, true
}

// Len reports the number of registered bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// Bindings returns a snapshot of the registered bindings sorted by identity.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
