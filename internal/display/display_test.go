package display

import (
	"image"
	"testing"
)

func TestPrimary(t *testing.T) {
	ms := []Monitor{
		{Index: 0, Name: "HDMI-1", Rect: image.Rect(0, 0, 1920, 1080)},
		{Index: 1, Name: "eDP-1", Rect: image.Rect(1920, 0, 3200, 800), Primary: true},
	}
	if m, ok := Primary(ms); !ok || m.Name != "eDP-1" {
		t.Errorf("Primary = %+v, %v", m, ok)
	}
	ms[1].Primary = false
	if m, _ := Primary(ms); m.Name != "HDMI-1" {
		t.Errorf("Primary without flag = %+v", m)
	}
	if _, ok := Primary(nil); ok {
		t.Error("Primary(nil) should report false")
	}
}

func TestWindowSize(t *testing.T) {
	tests := []struct {
		name string
		ms   []Monitor
		want image.Point
	}{
		{"none", nil, FallbackSize},
		{"full hd", []Monitor{{Rect: image.Rect(0, 0, 1920, 1080), Primary: true}}, image.Pt(1728, 972)},
		{"tiny", []Monitor{{Rect: image.Rect(0, 0, 640, 480)}}, MinSize},
		{"empty rect", []Monitor{{}}, FallbackSize},
	}
	for _, tt := range tests {
		if got := WindowSize(tt.ms); got != tt.want {
			t.Errorf("%s: WindowSize = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMonitorString(t *testing.T) {
	m := Monitor{Index: 1, Name: "DP-2", Rect: image.Rect(1920, 0, 4480, 1440), Primary: true}
	if got := m.String(); got != "1: DP-2 2560x1440+1920+0 primary" {
		t.Errorf("String = %q", got)
	}
}
