package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
)

// CardStyle describes how a formula annotation card is painted.
type CardStyle struct {
	Background color.Color
	Text       color.Color
	Border     color.Color
	Size       float64
	Padding    int
	Shadow     ShadowOptions
}

// DefaultCardStyle is a white card with dark text.
func DefaultCardStyle() CardStyle {
	return CardStyle{
		Background: color.RGBA{255, 255, 255, 240},
		Text:       color.RGBA{20, 20, 20, 255},
		Border:     color.RGBA{0, 0, 0, 60},
		Size:       SizeFormula,
		Padding:    8,
		Shadow:     DefaultShadowOptions(),
	}
}

var symbols = strings.NewReplacer(
	`\cdot`, "·",
	`\times`, "×",
	`\div`, "÷",
	`\pi`, "π",
	`\sqrt`, "√",
	`\pm`, "±",
	`\leq`, "≤",
	`\geq`, "≥",
	`\neq`, "≠",
	`\infty`, "∞",
	"^2", "²",
	"^3", "³",
	"**", "^",
	"*", "×",
	"sqrt", "√",
	"pi", "π",
	`\left`, "",
	`\right`, "",
	"{", "",
	"}", "",
)

// Typeset turns a solver formula into display text. Common operator and
// LaTeX tokens are replaced with their glyphs; everything else passes through.
func Typeset(formula string) string {
	return strings.TrimSpace(symbols.Replace(formula))
}

// CardBounds returns the rectangle a card for formula occupies when its
// top-left corner is at pos. The shadow is not included.
func CardBounds(formula string, pos image.Point, style CardStyle) image.Rectangle {
	w, h, _, err := MeasureText(Typeset(formula), style.Size)
	if err != nil {
		w, h = 8*len(formula), int(style.Size)
	}
	return image.Rect(pos.X, pos.Y, pos.X+w+2*style.Padding, pos.Y+h+2*style.Padding)
}

// DrawCard paints a shadowed formula card at pos and returns its bounds.
func DrawCard(dst *image.RGBA, formula string, pos image.Point, style CardStyle) (image.Rectangle, error) {
	rect := CardBounds(formula, pos, style)
	DrawShadow(dst, rect, style.Shadow)
	draw.Draw(dst, rect, image.NewUniform(style.Background), image.Point{}, draw.Over)
	if style.Border != nil {
		outline(dst, rect, style.Border)
	}
	err := DrawText(dst, rect.Min.X+style.Padding, rect.Min.Y+style.Padding, Typeset(formula), style.Text, style.Size)
	return rect, err
}

// FillRect fills r with col using source-over compositing.
func FillRect(dst *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// Outline draws a one pixel border just inside r.
func Outline(dst *image.RGBA, r image.Rectangle, col color.Color) {
	outline(dst, r, col)
}

func outline(dst *image.RGBA, r image.Rectangle, col color.Color) {
	if r.Empty() {
		return
	}
	u := image.NewUniform(col)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y+1, r.Min.X+1, r.Max.Y-1), u, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y+1, r.Max.X, r.Max.Y-1), u, image.Point{}, draw.Over)
}
