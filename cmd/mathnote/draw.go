package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/example/mathnote/internal/appstate"
	"github.com/example/mathnote/internal/theme"
)

const solverBackoff = 500 * time.Millisecond

// runUI is replaced in tests.
var runUI = func(a *appstate.AppState) { a.Run() }

// drawCmd opens the drawing window.
type drawCmd struct {
	*root
	fs          *flag.FlagSet
	delay       time.Duration
	keepStrokes bool
	colorSpec   string
	sizeSpec    string
	colorIdx    int
	size        image.Point
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.DurationVar(&d.delay, "delay", r.config.ResultDelay, "pause between a response and placing its result")
	fs.BoolVar(&d.keepStrokes, "keep-strokes", !r.config.ClearOnResult, "leave the handwriting on the canvas after a result is placed")
	fs.StringVar(&d.colorSpec, "color", "White", "initial ink color: a palette name or index")
	fs.StringVar(&d.sizeSpec, "size", "", "window size as WIDTHxHEIGHT (default fits the primary monitor)")
	fs.Usage = usageFunc(d)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: d}
	}
	idx, err := parsePaletteIndex(d.colorSpec)
	if err != nil {
		return nil, err
	}
	d.colorIdx = idx
	if d.sizeSpec != "" {
		if d.size, err = parseSize(d.sizeSpec); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// parsePaletteIndex accepts a swatch name (any case) or its index.
func parsePaletteIndex(spec string) (int, error) {
	spec = strings.TrimSpace(spec)
	palette := appstate.Palette()
	if n, err := strconv.Atoi(spec); err == nil {
		if n < 0 || n >= len(palette) {
			return 0, fmt.Errorf("color index %d out of range 0-%d", n, len(palette)-1)
		}
		return n, nil
	}
	for i, c := range palette {
		if strings.EqualFold(c.Name, spec) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", spec)
}

func parseSize(spec string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(spec), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", spec)
	}
	x, err := strconv.Atoi(w)
	if err != nil || x <= 0 {
		return image.Point{}, fmt.Errorf("invalid size %q: bad width", spec)
	}
	y, err := strconv.Atoi(h)
	if err != nil || y <= 0 {
		return image.Point{}, fmt.Errorf("invalid size %q: bad height", spec)
	}
	return image.Pt(x, y), nil
}

func (d *drawCmd) Run() error {
	kv, closeStore, err := d.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	// An explicit -theme outranks the preference saved from the toolbar.
	if d.themeSet && d.config.Theme != "" {
		if err := theme.SavePreference(context.Background(), kv, d.config.Theme); err != nil {
			d.logger.Warn("save theme preference", "error", err)
		}
	}

	themes := theme.NewLoader()
	themes.Custom = d.config.Themes

	a := appstate.New(
		appstate.WithSolver(d.newSolver()),
		appstate.WithKV(kv),
		appstate.WithHistory(d.newHistory(kv)),
		appstate.WithThemes(themes),
		appstate.WithTheme(d.config.Theme),
		appstate.WithNotifier(d.notifier),
		appstate.WithDelay(d.delay),
		appstate.WithClearOnResult(!d.keepStrokes),
		appstate.WithColorIndex(d.colorIdx),
		appstate.WithSize(d.size),
		appstate.WithLogger(d.logger),
		appstate.WithOnClose(func() { d.logger.Debug("window closed") }),
	)
	d.logger.Debug("starting", "solver", d.config.SolverURL, "db", d.dbFile())
	runUI(a)
	return nil
}
