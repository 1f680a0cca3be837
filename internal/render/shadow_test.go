package render

import (
	"image"
	"image/color"
	"testing"
)

func TestShadowImageExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	subject := image.Pt(5, 5)
	img.Set(subject.X, subject.Y, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out, at := ShadowImage(img, opts)
	if out == nil {
		t.Fatal("expected output image")
	}
	expected := image.Rect(0, 0, 22, 20)
	if !out.Bounds().Eq(expected) {
		t.Fatalf("unexpected bounds %v, want %v", out.Bounds(), expected)
	}
	if at != (image.Point{}) {
		t.Fatalf("content moved to %v", at)
	}
	shadowPt := subject.Add(opts.Offset)
	if out.RGBAAt(shadowPt.X, shadowPt.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", shadowPt)
	}
}

func TestShadowImageNegativeOffsetShiftsContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{A: 255})
	_, at := ShadowImage(img, ShadowOptions{Radius: 1, Offset: image.Pt(-3, -2), Opacity: 1})
	if want := image.Pt(4, 3); at != want {
		t.Fatalf("content at %v, want %v", at, want)
	}
}

func TestShadowImageZeroOpacityIsIdentity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out, _ := ShadowImage(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10)})
	if out != img {
		t.Fatal("expected the input image back")
	}
}

func TestDrawShadowLeavesAreaOutsideExtent(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 60, 60))
	card := image.Rect(10, 10, 30, 30)
	opts := ShadowOptions{Radius: 3, Offset: image.Pt(4, 4), Opacity: 1}
	DrawShadow(dst, card, opts)

	ext := opts.Extent(card)
	if want := image.Rect(11, 11, 37, 37); ext != want {
		t.Fatalf("extent %v, want %v", ext, want)
	}
	if a := dst.RGBAAt(20, 20).A; a == 0 {
		t.Fatal("expected shadow under the card")
	}
	if a := dst.RGBAAt(36, 20).A; a == 0 {
		t.Fatal("expected blurred edge inside extent")
	}
	for _, p := range []image.Point{{5, 5}, {50, 50}, {40, 20}} {
		if a := dst.RGBAAt(p.X, p.Y).A; a != 0 {
			t.Fatalf("unexpected alpha %d at %v", a, p)
		}
	}
}

func TestBlurGraySpreads(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 5, 5))
	src.SetGray(2, 2, color.Gray{Y: 225})
	out := blurGray(src, 1)
	if got := out.GrayAt(2, 2).Y; got != 25 {
		t.Fatalf("centre = %d, want 25", got)
	}
	if out.GrayAt(1, 1).Y == 0 {
		t.Fatal("expected spread to diagonal neighbour")
	}
	if out.GrayAt(0, 0).Y != 0 {
		t.Fatal("blur reached beyond radius")
	}
}
