// Package display reports monitor geometry so the canvas can match the
// viewport.
package display

import (
	"errors"
	"fmt"
	"image"
)

// Monitor describes an individual monitor in the desktop layout.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

func (m Monitor) String() string {
	primary := ""
	if m.Primary {
		primary = " primary"
	}
	return fmt.Sprintf("%d: %s %dx%d+%d+%d%s", m.Index, m.Name, m.Rect.Dx(), m.Rect.Dy(), m.Rect.Min.X, m.Rect.Min.Y, primary)
}

var errNoMonitors = errors.New("no monitors available")

// FallbackSize is the window size used when no monitor can be queried.
var FallbackSize = image.Pt(1280, 800)

// MinSize is the smallest window WindowSize returns.
var MinSize = image.Pt(640, 480)

// Primary returns the primary monitor, or the first one when none is
// flagged.
func Primary(ms []Monitor) (Monitor, bool) {
	for _, m := range ms {
		if m.Primary {
			return m, true
		}
	}
	if len(ms) > 0 {
		return ms[0], true
	}
	return Monitor{}, false
}

// WindowSize picks the initial window size: nine tenths of the primary
// monitor, never smaller than MinSize.
func WindowSize(ms []Monitor) image.Point {
	m, ok := Primary(ms)
	if !ok || m.Rect.Empty() {
		return FallbackSize
	}
	size := image.Pt(m.Rect.Dx()*9/10, m.Rect.Dy()*9/10)
	size.X = max(size.X, MinSize.X)
	size.Y = max(size.Y, MinSize.Y)
	return size
}

// DefaultWindowSize queries the monitors and returns WindowSize, falling
// back to FallbackSize when the display cannot be queried.
func DefaultWindowSize() image.Point {
	ms, err := ListMonitors()
	if err != nil {
		return FallbackSize
	}
	return WindowSize(ms)
}
