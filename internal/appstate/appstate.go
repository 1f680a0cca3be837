// Package appstate is the drawing window: toolbar, canvas, result cards,
// history panel and shortcut help, driven by a shiny event loop.
package appstate

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"time"

	"golang.org/x/exp/shiny/driver"

	"github.com/example/mathnote/internal/calc"
	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/kvstore"
	"github.com/example/mathnote/internal/notify"
	"github.com/example/mathnote/internal/shortcut"
	"github.com/example/mathnote/internal/theme"
)

// PaletteColor is a named ink swatch.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{"White", color.RGBA{0xff, 0xff, 0xff, 0xff}},
	{"Red", color.RGBA{0xee, 0x33, 0x33, 0xff}},
	{"Pink", color.RGBA{0xe6, 0x49, 0x80, 0xff}},
	{"Grape", color.RGBA{0xbe, 0x4b, 0xdb, 0xff}},
	{"Brown", color.RGBA{0x89, 0x32, 0x00, 0xff}},
	{"Blue", color.RGBA{0x22, 0x8b, 0xe6, 0xff}},
	{"Indigo", color.RGBA{0x33, 0x33, 0xee, 0xff}},
	{"Green", color.RGBA{0x40, 0xc0, 0x57, 0xff}},
	{"Forest", color.RGBA{0x00, 0xaa, 0x00, 0xff}},
	{"Yellow", color.RGBA{0xfa, 0xb0, 0x05, 0xff}},
	{"Orange", color.RGBA{0xfd, 0x7e, 0x14, 0xff}},
}

// Palette returns the ink swatches in toolbar order.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

func clampColorIndex(idx int) int {
	if idx < 0 || idx >= len(palette) {
		return 0
	}
	return idx
}

// binding ties a shortcut to the session method it triggers.
type binding struct {
	info   shortcut.Info
	action func(*session)
}

var bindings = []binding{
	{shortcut.Info{Key: "r", Description: "Reset canvas", Modifiers: shortcut.Modifiers{Ctrl: true}}, (*session).reset},
	{shortcut.Info{Key: "Enter", Description: "Run calculation"}, (*session).run},
	{shortcut.Info{Key: "h", Description: "Toggle history panel", Modifiers: shortcut.Modifiers{Ctrl: true}}, (*session).toggleHistory},
	{shortcut.Info{Key: "?", Description: "Show keyboard shortcuts", Modifiers: shortcut.Modifiers{Shift: true}}, (*session).showHelp},
	{shortcut.Info{Key: "c", Description: "Clear canvas", Modifiers: shortcut.Modifiers{Ctrl: true}}, (*session).clearCanvas},
	{shortcut.Info{Key: "Escape", Description: "Close open panels"}, (*session).escape},
}

// Shortcuts lists the keyboard shortcuts the window understands.
func Shortcuts() []shortcut.Info {
	out := make([]shortcut.Info, len(bindings))
	for i, b := range bindings {
		out[i] = b.info
	}
	return out
}

// AppState holds the collaborators and settings for a drawing window.
type AppState struct {
	Solver        calc.Solver
	History       *history.Store
	KV            kvstore.Store
	Themes        *theme.Loader
	Theme         string
	Notifier      *notify.Notifier
	Delay         time.Duration
	ClearOnResult bool
	ColorIdx      int
	Size          image.Point
	Logger        *slog.Logger

	onClose func()
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSolver sets the solver used by Run.
func WithSolver(s calc.Solver) Option { return func(a *AppState) { a.Solver = s } }

// WithHistory sets the history store shown in the side panel.
func WithHistory(h *history.Store) Option { return func(a *AppState) { a.History = h } }

// WithKV sets the store used for the theme preference.
func WithKV(kv kvstore.Store) Option { return func(a *AppState) { a.KV = kv } }

// WithThemes sets the loader used to resolve theme names.
func WithThemes(l *theme.Loader) Option { return func(a *AppState) { a.Themes = l } }

// WithTheme sets the theme used when no preference is stored.
func WithTheme(name string) Option { return func(a *AppState) { a.Theme = name } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithDelay sets the pause before results appear.
func WithDelay(d time.Duration) Option { return func(a *AppState) { a.Delay = d } }

// WithClearOnResult controls whether the canvas is wiped when a result is placed.
func WithClearOnResult(v bool) Option { return func(a *AppState) { a.ClearOnResult = v } }

// WithColorIndex sets the initial palette index.
func WithColorIndex(idx int) Option { return func(a *AppState) { a.ColorIdx = idx } }

// WithSize sets the initial window size. A zero size asks the display.
func WithSize(p image.Point) Option { return func(a *AppState) { a.Size = p } }

// WithLogger sets the logger used by the session and the orchestrator.
func WithLogger(l *slog.Logger) Option { return func(a *AppState) { a.Logger = l } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Delay:         calc.DefaultDelay,
		ClearOnResult: true,
	}
	for _, o := range opts {
		o(a)
	}
	if a.Logger == nil {
		a.Logger = slog.New(slog.DiscardHandler)
	}
	if a.KV == nil {
		a.KV = kvstore.NewMemory()
	}
	if a.History == nil {
		a.History = history.New(a.KV, a.Logger)
	}
	if a.Themes == nil {
		a.Themes = theme.NewLoader()
	}
	a.ColorIdx = clampColorIndex(a.ColorIdx)
	return a
}

// resolveTheme picks the stored preference, then the configured name.
func (a *AppState) resolveTheme(ctx context.Context) *theme.Theme {
	name, err := theme.Resolve(ctx, a.KV, a.Theme)
	if err != nil {
		a.Logger.WarnContext(ctx, "theme preference", "error", err)
	}
	t, err := a.Themes.Load(name)
	if err != nil {
		a.Logger.WarnContext(ctx, "load theme", "name", name, "error", err)
		return theme.Default()
	}
	return t
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }
