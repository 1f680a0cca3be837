package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow painted behind annotation cards.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns the soft shadow used under annotation cards.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  6,
		Offset:  image.Pt(2, 3),
		Opacity: 0.35,
	}
}

// Extent reports the rectangle a shadow cast by rect covers.
func (o ShadowOptions) Extent(rect image.Rectangle) image.Rectangle {
	r := o.Radius
	if r < 0 {
		r = 0
	}
	return rect.Inset(-r).Add(o.Offset)
}

// DrawShadow paints a blurred shadow of rect onto dst. The rectangle itself is
// left untouched so the caller can fill the card afterwards.
func DrawShadow(dst *image.RGBA, rect image.Rectangle, opts ShadowOptions) {
	if dst == nil || rect.Empty() || opts.Opacity <= 0 {
		return
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	padded := rect.Inset(-radius)
	mask := image.NewGray(padded.Sub(padded.Min))
	inner := rect.Sub(padded.Min)
	draw.Draw(mask, inner, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)

	blurred := blurGray(mask, radius)
	alpha := uint8(opacity*255 + 0.5)
	target := padded.Add(opts.Offset)
	draw.DrawMask(dst, target, image.NewUniform(color.RGBA{A: alpha}), image.Point{}, blurred, image.Point{}, draw.Over)
}

// ShadowImage composites img over its own blurred silhouette. The result has
// a zero origin; the returned point is where img's top-left corner landed.
func ShadowImage(img *image.RGBA, opts ShadowOptions) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || opts.Opacity <= 0 {
		return img, image.Point{}
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}
	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	all := src.Union(shadow)

	mask := image.NewGray(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				mask.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: a})
			}
		}
	}
	blurred := blurGray(mask, radius)

	out := image.NewRGBA(all.Sub(all.Min))
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	alpha := uint8(opacity*255 + 0.5)
	draw.DrawMask(out, blurred.Bounds().Add(shadow.Min.Sub(all.Min)), image.NewUniform(color.RGBA{A: alpha}), image.Point{}, blurred, image.Point{}, draw.Over)
	draw.Draw(out, src.Sub(all.Min), img, src.Min, draw.Over)
	return out, src.Min.Sub(all.Min)
}

// blurGray is a separable box blur using running sums per row then column.
func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewGray(b)
	dst := image.NewGray(b)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(row[x])
		}
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(y-radius, 0), min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
