package render

import (
	"image"
	"image/color"
	"testing"
)

func TestTypeset(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1+1 = 2", "1+1 = 2"},
		{"2*3 = 6", "2×3 = 6"},
		{`x^2 \cdot y`, "x² · y"},
		{`\sqrt{16} = 4`, "√16 = 4"},
		{"sqrt(9) = 3", "√(9) = 3"},
		{"2**8 = 256", "2^8 = 256"},
		{"  a  ", "a"},
	}
	for _, tt := range tests {
		if got := Typeset(tt.in); got != tt.want {
			t.Errorf("Typeset(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCardBoundsGrowWithText(t *testing.T) {
	style := DefaultCardStyle()
	short := CardBounds("1", image.Pt(10, 20), style)
	long := CardBounds("12345 + 67890 = 80235", image.Pt(10, 20), style)
	if short.Min != image.Pt(10, 20) {
		t.Fatalf("card origin %v", short.Min)
	}
	if long.Dx() <= short.Dx() {
		t.Fatalf("long card %v not wider than %v", long, short)
	}
	if short.Dy() != long.Dy() {
		t.Fatalf("heights differ: %d vs %d", short.Dy(), long.Dy())
	}
	if short.Dx() < 2*style.Padding {
		t.Fatalf("card narrower than padding: %v", short)
	}
}

func TestDrawCardPaintsTextAndBackground(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 80))
	style := DefaultCardStyle()
	style.Background = color.RGBA{0, 0, 255, 255}
	style.Text = color.RGBA{255, 255, 0, 255}
	style.Border = nil
	rect, err := DrawCard(dst, "1+1 = 2", image.Pt(5, 5), style)
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if got := dst.RGBAAt(rect.Min.X+1, rect.Min.Y+1); got != style.Background {
		t.Fatalf("corner = %+v, want background", got)
	}
	var ink bool
	for y := rect.Min.Y; y < rect.Max.Y && !ink; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if c := dst.RGBAAt(x, y); c.R > 128 && c.G > 128 {
				ink = true
				break
			}
		}
	}
	if !ink {
		t.Fatal("no text pixels inside card")
	}
}

func TestFaceCached(t *testing.T) {
	a, err := Face(SizeLabel)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	b, err := Face(SizeLabel)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if a != b {
		t.Fatal("expected cached face")
	}
}

func TestMeasureText(t *testing.T) {
	w, h, base, err := MeasureText("abc", SizeTitle)
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	if w <= 0 || h <= 0 || base <= 0 || base > h {
		t.Fatalf("unexpected metrics w=%d h=%d base=%d", w, h, base)
	}
}
