package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Sizes used by the UI. Other sizes are created on demand.
const (
	SizeLabel   = 13
	SizeFormula = 22
	SizeTitle   = 18
)

var (
	fontOnce sync.Once
	fontErr  error
	regular  *sfnt.Font

	faces sync.Map // map[float64]font.Face
)

func loadFont() (*sfnt.Font, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse goregular: %w", fontErr)
		}
	})
	return regular, fontErr
}

// Face returns a cached Go Regular face at size points.
func Face(size float64) (font.Face, error) {
	if size <= 0 {
		size = SizeLabel
	}
	size = math.Round(size*4) / 4
	if f, ok := faces.Load(size); ok {
		return f.(font.Face), nil
	}
	f, err := loadFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("face %.2f: %w", size, err)
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// MeasureText returns the dimensions of text at size. baseline is the offset
// from the top of the box to the text baseline.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := Face(size)
	if err != nil {
		return 0, 0, 0, err
	}
	d := &font.Drawer{Face: face}
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	return d.MeasureString(text).Ceil(), ascent + descent, ascent, nil
}

// DrawText renders text with its top-left corner at (x, y).
func DrawText(dst *image.RGBA, x, y int, text string, col color.Color, size float64) error {
	face, err := Face(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return nil
}
