// Package bbox locates the inked region of an RGBA raster.
package bbox

import (
	"fmt"
	"image"
)

// Box is an inclusive pixel rectangle. A Box with MinX > MaxX or
// MinY > MaxY is empty.
type Box struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Empty is the box returned for rasters without any inked pixel.
func Empty(width, height int) Box {
	return Box{MinX: width, MinY: height, MaxX: 0, MaxY: 0}
}

// IsEmpty reports whether b encloses no pixels.
func (b Box) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Midpoint returns the centre of b using integer division.
func (b Box) Midpoint() image.Point {
	return image.Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Rect converts b to a half-open image.Rectangle.
func (b Box) Rect() image.Rectangle {
	if b.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(b.MinX, b.MinY, b.MaxX+1, b.MaxY+1)
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Extract scans pix, a row-major buffer of 4 bytes per pixel with alpha in
// the fourth byte, and returns the smallest box holding every pixel whose
// alpha is non-zero. Short buffers are scanned as far as they reach.
func Extract(pix []uint8, width, height int) Box {
	b := Empty(width, height)
	if width <= 0 || height <= 0 {
		return b
	}
	stride := width * 4
	for y := 0; y < height; y++ {
		row := y * stride
		if row+stride > len(pix) {
			break
		}
		for x := 0; x < width; x++ {
			if pix[row+x*4+3] == 0 {
				continue
			}
			if x < b.MinX {
				b.MinX = x
			}
			if x > b.MaxX {
				b.MaxX = x
			}
			if y < b.MinY {
				b.MinY = y
			}
			if y > b.MaxY {
				b.MaxY = y
			}
		}
	}
	return b
}

// FromImage extracts the inked box of img. Coordinates are relative to the
// image bounds origin.
func FromImage(img *image.RGBA) Box {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	if img.Stride == w*4 {
		return Extract(img.Pix, w, h)
	}
	pix := make([]uint8, 0, w*h*4)
	for y := 0; y < h; y++ {
		off := y * img.Stride
		pix = append(pix, img.Pix[off:off+w*4]...)
	}
	return Extract(pix, w, h)
}
