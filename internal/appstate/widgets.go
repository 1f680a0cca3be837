package appstate

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/mathnote/internal/render"
	"github.com/example/mathnote/internal/theme"
)

const (
	toolbarHeight = 40
	buttonHeight  = 28
	swatchSize    = 18
	gap           = 6
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// skin is shared by all widgets so a theme switch reaches every button.
type skin struct {
	theme *theme.Theme
}

func (s *skin) fill(state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return s.theme.ButtonBackgroundHover
	case StatePressed:
		return s.theme.ButtonBackgroundPress
	}
	return s.theme.ButtonBackground
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Over)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.Invalidate()
	}
}

// Invalidate drops the cached renderings, e.g. after a theme change.
func (cb *CacheButton) Invalidate() { cb.cache = [3]*image.RGBA{} }

// ActionButton is a labelled toolbar or panel button.
type ActionButton struct {
	label      string
	rect       image.Rectangle
	skin       *skin
	onActivate func()
}

func (b *ActionButton) Draw(dst *image.RGBA, state ButtonState) {
	render.FillRect(dst, b.rect, b.skin.fill(state))
	render.Outline(dst, b.rect, b.skin.theme.ButtonBorder)
	_, h, _, _ := render.MeasureText(b.label, render.SizeLabel)
	y := b.rect.Min.Y + (b.rect.Dy()-h)/2
	_ = render.DrawText(dst, b.rect.Min.X+8, y, b.label, b.skin.theme.ButtonText, render.SizeLabel)
}

func (b *ActionButton) Rect() image.Rectangle     { return b.rect }
func (b *ActionButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *ActionButton) Activate() {
	if b.onActivate != nil {
		b.onActivate()
	}
}

// width returns the button width that fits its label.
func (b *ActionButton) width() int {
	w, _, _, err := render.MeasureText(b.label, render.SizeLabel)
	if err != nil {
		w = 7 * len(b.label)
	}
	return w + 16
}

// SwatchButton selects an ink colour.
type SwatchButton struct {
	index    int
	rect     image.Rectangle
	skin     *skin
	selected func(int) bool
	onSelect func(int)
}

func (b *SwatchButton) Draw(dst *image.RGBA, state ButtonState) {
	render.FillRect(dst, b.rect, palette[b.index].Color)
	border := b.skin.theme.ButtonBorder
	if b.selected != nil && b.selected(b.index) {
		border = b.skin.theme.SwatchSelected
		render.Outline(dst, b.rect.Inset(-2), border)
	} else if state == StateHover {
		render.FillRect(dst, b.rect, color.RGBA{255, 255, 255, 80})
	}
	render.Outline(dst, b.rect, border)
}

func (b *SwatchButton) Rect() image.Rectangle     { return b.rect }
func (b *SwatchButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *SwatchButton) Activate() {
	if b.onSelect != nil {
		b.onSelect(b.index)
	}
}

// toolbar lays out buttons left to right in a single row.
type toolbar struct {
	buttons []Button
	hover   int
}

func (t *toolbar) layout() {
	x := gap
	for _, b := range t.buttons {
		switch v := b.(type) {
		case *SwatchButton:
			y := (toolbarHeight - swatchSize) / 2
			v.SetRect(image.Rect(x, y, x+swatchSize, y+swatchSize))
			x += swatchSize + 3
		case *CacheButton:
			w := 60
			if ab, ok := v.Button.(*ActionButton); ok {
				w = ab.width()
			}
			y := (toolbarHeight - buttonHeight) / 2
			v.SetRect(image.Rect(x, y, x+w, y+buttonHeight))
			x += w + gap
		}
	}
}

// at returns the index of the button under p, or -1.
func (t *toolbar) at(p image.Point) int {
	for i, b := range t.buttons {
		if p.In(b.Rect()) {
			return i
		}
	}
	return -1
}

func (t *toolbar) invalidate() {
	for _, b := range t.buttons {
		if cb, ok := b.(*CacheButton); ok {
			cb.Invalidate()
		}
	}
}

func (t *toolbar) draw(dst *image.RGBA, th *theme.Theme, pressed func(Button) bool) {
	r := image.Rect(0, 0, dst.Bounds().Dx(), toolbarHeight)
	draw.Draw(dst, r, image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	for i, b := range t.buttons {
		state := StateDefault
		if pressed != nil && pressed(b) {
			state = StatePressed
		} else if i == t.hover {
			state = StateHover
		}
		b.Draw(dst, state)
	}
}
