package appstate

import (
	"image"
	"strings"

	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/shortcut"
)

const (
	panelWidth  = 340
	panelHeader = 84
	rowHeight   = 52
	helpWidth   = 380
	helpRow     = 28
)

type historyRow struct {
	rect image.Rectangle
	use  image.Rectangle
	copy image.Rectangle
}

// historyLayout is the geometry of the history side panel for a window
// size. It is computed the same way for painting and for hit testing.
type historyLayout struct {
	panel    image.Rectangle
	clearAll image.Rectangle
	filter   image.Rectangle
	rows     []historyRow
}

func layoutHistory(width, height, n int) historyLayout {
	x0 := max(width-panelWidth, 0)
	l := historyLayout{panel: image.Rect(x0, toolbarHeight, width, height)}
	l.clearAll = image.Rect(width-96, toolbarHeight+8, width-8, toolbarHeight+8+buttonHeight)
	l.filter = image.Rect(x0+8, toolbarHeight+44, width-8, toolbarHeight+44+buttonHeight)
	y := toolbarHeight + panelHeader
	for i := 0; i < n && y+rowHeight <= height; i++ {
		r := image.Rect(x0+8, y, width-8, y+rowHeight-4)
		by := r.Min.Y + (r.Dy()-24)/2
		row := historyRow{
			rect: r,
			copy: image.Rect(r.Max.X-52, by, r.Max.X-4, by+24),
			use:  image.Rect(r.Max.X-104, by, r.Max.X-56, by+24),
		}
		l.rows = append(l.rows, row)
		y += rowHeight
	}
	return l
}

// filterEntries keeps the entries whose expression or result contains q,
// ignoring case.
func filterEntries(entries []history.Entry, q string) []history.Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return entries
	}
	var out []history.Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Expression), q) || strings.Contains(strings.ToLower(e.Result), q) {
			out = append(out, e)
		}
	}
	return out
}

// layoutHelp returns the shortcut help dialog centred in the window.
func layoutHelp(width, height, n int) image.Rectangle {
	h := 56 + n*helpRow + 32
	x := (width - helpWidth) / 2
	y := max((height-h)/2, toolbarHeight)
	return image.Rect(x, y, x+helpWidth, y+h)
}

// textField is a single line input. While focused, key events are addressed
// to it and never reach the shortcut table.
type textField struct {
	text    string
	focused bool
}

func (f *textField) target() shortcut.Target {
	if f.focused {
		return shortcut.TargetTextInput
	}
	return shortcut.TargetWindow
}

// handle edits the field and reports whether ev was consumed.
func (f *textField) handle(ev shortcut.Event) bool {
	if !f.focused || !ev.Target.AcceptsText() {
		return false
	}
	switch ev.Key {
	case "Backspace":
		if r := []rune(f.text); len(r) > 0 {
			f.text = string(r[:len(r)-1])
		}
	case "Escape", "Enter", "Tab":
		f.focused = false
	default:
		if ev.Ctrl || ev.Alt || len([]rune(ev.Key)) != 1 {
			return false
		}
		f.text += ev.Key
	}
	return true
}
