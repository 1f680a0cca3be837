package shortcut

import "strings"

// Info describes a shortcut for display in help screens.
type Info struct {
	Key         string
	Description string
	Modifiers   Modifiers
}

// Label formats the shortcut as it is shown to users, e.g. "Ctrl + R".
func (i Info) Label() string {
	var parts []string
	if i.Modifiers.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if i.Modifiers.Alt {
		parts = append(parts, "Alt")
	}
	if i.Modifiers.Shift {
		parts = append(parts, "Shift")
	}
	k := i.Key
	switch {
	case k == " ":
		k = "Space"
	case len([]rune(k)) == 1:
		k = strings.ToUpper(k)
	}
	parts = append(parts, k)
	return strings.Join(parts, " + ")
}
