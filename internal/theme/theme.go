package theme

import (
	"image/color"
)

// Theme defines the color palette for the application UI.
type Theme struct {
	Name string

	// General
	Background  color.RGBA // Canvas colour before anything is drawn
	InkBackdrop color.RGBA // Canvas colour once drawing has started
	Foreground  color.RGBA // Main text color

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA
	SwatchSelected        color.RGBA

	// Result annotations
	CardBackground color.RGBA
	CardText       color.RGBA

	// History panel and shortcut help
	PanelBackground color.RGBA
	PanelText       color.RGBA
	PanelMuted      color.RGBA
	Scrim           color.RGBA
}

// Default returns the hardcoded light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "light",
		Background:            color.RGBA{255, 255, 255, 255},
		InkBackdrop:           color.RGBA{0, 0, 0, 255},
		Foreground:            color.RGBA{17, 24, 39, 255},
		ToolbarBackground:     color.RGBA{243, 244, 246, 255},
		ButtonBackground:      color.RGBA{229, 231, 235, 255},
		ButtonBackgroundHover: color.RGBA{209, 213, 219, 255},
		ButtonBackgroundPress: color.RGBA{156, 163, 175, 255},
		ButtonText:            color.RGBA{17, 24, 39, 255},
		ButtonBorder:          color.RGBA{107, 114, 128, 255},
		SwatchSelected:        color.RGBA{37, 99, 235, 255},
		CardBackground:        color.RGBA{255, 255, 255, 230},
		CardText:              color.RGBA{17, 24, 39, 255},
		PanelBackground:       color.RGBA{255, 255, 255, 255},
		PanelText:             color.RGBA{17, 24, 39, 255},
		PanelMuted:            color.RGBA{107, 114, 128, 255},
		Scrim:                 color.RGBA{0, 0, 0, 128},
	}
}

// Dark returns the built-in dark theme.
func Dark() *Theme {
	return &Theme{
		Name:                  "dark",
		Background:            color.RGBA{17, 24, 39, 255},
		InkBackdrop:           color.RGBA{0, 0, 0, 255},
		Foreground:            color.RGBA{243, 244, 246, 255},
		ToolbarBackground:     color.RGBA{31, 41, 55, 255},
		ButtonBackground:      color.RGBA{55, 65, 81, 255},
		ButtonBackgroundHover: color.RGBA{75, 85, 99, 255},
		ButtonBackgroundPress: color.RGBA{107, 114, 128, 255},
		ButtonText:            color.RGBA{243, 244, 246, 255},
		ButtonBorder:          color.RGBA{156, 163, 175, 255},
		SwatchSelected:        color.RGBA{96, 165, 250, 255},
		CardBackground:        color.RGBA{31, 41, 55, 230},
		CardText:              color.RGBA{243, 244, 246, 255},
		PanelBackground:       color.RGBA{31, 41, 55, 255},
		PanelText:             color.RGBA{243, 244, 246, 255},
		PanelMuted:            color.RGBA{156, 163, 175, 255},
		Scrim:                 color.RGBA{0, 0, 0, 160},
	}
}

// Builtin returns the compiled-in theme with the given name.
func Builtin(name string) (*Theme, bool) {
	switch name {
	case "light":
		return Default(), true
	case "dark":
		return Dark(), true
	}
	return nil, false
}

// Toggle returns the name of the opposite built-in theme.
func Toggle(name string) string {
	if name == "dark" {
		return "light"
	}
	return "dark"
}
