package shortcut

import (
	"fmt"

	"golang.org/x/mobile/event/key"
)

// Target describes the element that had focus when a key was pressed.
type Target int

const (
	// TargetWindow is the canvas window itself; shortcuts apply.
	TargetWindow Target = iota
	// TargetTextInput is a single line text field.
	TargetTextInput
	// TargetTextArea is a multi line text field.
	TargetTextArea
	// TargetEditable is any other element that accepts typed content.
	TargetEditable
)

// AcceptsText reports whether typing into t must not trigger shortcuts.
func (t Target) AcceptsText() bool {
	switch t {
	case TargetTextInput, TargetTextArea, TargetEditable:
		return true
	}
	return false
}

// Event is a normalized key-down event.
type Event struct {
	Key    string
	Ctrl   bool
	Alt    bool
	Shift  bool
	Target Target
}

// Modifiers returns the modifier set carried by e.
func (e Event) Modifiers() Modifiers {
	return Modifiers{Ctrl: e.Ctrl, Alt: e.Alt, Shift: e.Shift}
}

// ID returns the shortcut identity of e.
func (e Event) ID() string { return ID(e.Key, e.Modifiers()) }

func (e Event) String() string {
	return fmt.Sprintf("%s (target %d)", e.ID(), e.Target)
}

var codeNames = map[key.Code]string{
	key.CodeReturnEnter:     "Enter",
	key.CodeKeypadEnter:     "Enter",
	key.CodeEscape:          "Escape",
	key.CodeTab:             "Tab",
	key.CodeSpacebar:        " ",
	key.CodeDeleteBackspace: "Backspace",
	key.CodeDeleteForward:   "Delete",
	key.CodeUpArrow:         "ArrowUp",
	key.CodeDownArrow:       "ArrowDown",
	key.CodeLeftArrow:       "ArrowLeft",
	key.CodeRightArrow:      "ArrowRight",
	key.CodeHome:            "Home",
	key.CodeEnd:             "End",
	key.CodePageUp:          "PageUp",
	key.CodePageDown:        "PageDown",
	key.CodeF1:              "F1",
	key.CodeF2:              "F2",
	key.CodeF3:              "F3",
	key.CodeF4:              "F4",
	key.CodeF5:              "F5",
	key.CodeF6:              "F6",
	key.CodeF7:              "F7",
	key.CodeF8:              "F8",
	key.CodeF9:              "F9",
	key.CodeF10:             "F10",
	key.CodeF11:             "F11",
	key.CodeF12:             "F12",
}

// FromKeyEvent converts a shiny key event into an Event. Key releases are
// not key-down events and report false, as do events that carry neither a
// named code nor a printable rune.
func FromKeyEvent(e key.Event, target Target) (Event, bool) {
	if e.Direction == key.DirRelease {
		return Event{}, false
	}
	ev := Event{
		Ctrl:   e.Modifiers&key.ModControl != 0,
		Alt:    e.Modifiers&key.ModAlt != 0,
		Shift:  e.Modifiers&key.ModShift != 0,
		Target: target,
	}
	if name, ok := codeNames[e.Code]; ok {
		ev.Key = name
		return ev, true
	}
	r := e.Rune
	switch {
	case r <= 0:
		return Event{}, false
	case ev.Ctrl && r >= 1 && r <= 26:
		// Ctrl+letter may arrive as the ASCII control character.
		r = 'a' + r - 1
	case r < ' ' || r == 0x7f:
		return Event{}, false
	}
	ev.Key = string(r)
	return ev, true
}
