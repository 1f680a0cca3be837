// Package stroke turns pointer input into freehand strokes on an RGBA
// surface.
package stroke

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gg"
)

// LineWidth is the stroke width applied to every surface.
const LineWidth = 3

// DefaultColor is the initial stroke colour.
var DefaultColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Mode is the capture state of a Surface.
type Mode int

const (
	// Idle means no pointer button is held.
	Idle Mode = iota
	// Drawing means a stroke is in progress.
	Drawing
)

func (m Mode) String() string {
	if m == Drawing {
		return "drawing"
	}
	return "idle"
}

// Surface is a drawable raster. Pointer input is translated into round
// capped line segments in the current colour.
type Surface struct {
	mu    sync.Mutex
	dc    *gg.Context
	mode  Mode
	last  image.Point
	col   color.Color
	inked bool
}

// NewSurface allocates a transparent surface of the given size.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	s := &Surface{dc: gg.NewContext(width, height), col: DefaultColor}
	s.applyStyle()
	return s, nil
}

func (s *Surface) applyStyle() {
	s.dc.SetLineWidth(LineWidth)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.dc.SetColor(s.col)
}

// Size returns the surface dimensions.
func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Width(), s.dc.Height()
}

// Mode reports whether a stroke is in progress.
func (s *Surface) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Inked reports whether drawing has started since the last Clear. The UI
// switches to its dark backdrop once this is true.
func (s *Surface) Inked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inked
}

// SetColor changes the colour used for subsequent segments.
func (s *Surface) SetColor(c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.col = c
	s.dc.SetColor(c)
}

// Color returns the current stroke colour.
func (s *Surface) Color() color.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col
}

// PointerDown starts a stroke at p.
func (s *Surface) PointerDown(p image.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = Drawing
	s.last = p
	s.inked = true
}

// PointerMove extends the current stroke to p. Outside a stroke it does
// nothing.
func (s *Surface) PointerMove(p image.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != Drawing {
		return nil
	}
	s.dc.MoveTo(float64(s.last.X), float64(s.last.Y))
	s.dc.LineTo(float64(p.X), float64(p.Y))
	s.last = p
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke segment: %w", err)
	}
	return nil
}

// PointerUp ends the current stroke.
func (s *Surface) PointerUp() { s.stop() }

// PointerLeave ends the current stroke when the pointer exits the surface.
func (s *Surface) PointerLeave() { s.stop() }

func (s *Surface) stop() {
	s.mu.Lock()
	s.mode = Idle
	s.mu.Unlock()
}

// Clear erases all pixels and ends any stroke in progress.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc.ClearPath()
	s.dc.Clear()
	s.mode = Idle
	s.inked = false
}

// Resize changes the surface dimensions. When the size changes existing
// pixels are discarded, so the surface is no longer inked. The stroke style
// is reapplied.
func (s *Surface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	same := width == s.dc.Width() && height == s.dc.Height()
	if err := s.dc.Resize(width, height); err != nil {
		return err
	}
	s.applyStyle()
	s.mode = Idle
	if !same {
		s.inked = false
	}
	return nil
}

// Pixels returns a copy of the raster as 4 bytes per pixel, row-major, with
// alpha in the fourth byte.
func (s *Surface) Pixels() (pix []uint8, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.dc.FlushGPU()
	pm := s.dc.ResizeTarget()
	data := pm.Data()
	pix = make([]uint8, len(data))
	copy(pix, data)
	return pix, pm.Width(), pm.Height()
}

// Snapshot returns the raster as an image.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.dc.FlushGPU()
	return s.dc.ResizeTarget().ToImage()
}

// Export encodes the raster as PNG.
func (s *Surface) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.dc.FlushGPU()
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
