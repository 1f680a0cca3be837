package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/mobile/event/key"

	"github.com/example/mathnote/internal/calc"
	"github.com/example/mathnote/internal/clipboard"
	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/kvstore"
	"github.com/example/mathnote/internal/notify"
	"github.com/example/mathnote/internal/overlay"
	"github.com/example/mathnote/internal/render"
	"github.com/example/mathnote/internal/shortcut"
	"github.com/example/mathnote/internal/stroke"
	"github.com/example/mathnote/internal/theme"
)

const messageDuration = 2 * time.Second

// Replaced in tests.
var (
	copyText  = clipboard.WriteText
	copyImage = clipboard.WriteImage
)

var errNoSolver = errors.New("appstate: no solver configured")

// session is the window's state. Every method runs on the UI goroutine;
// background work reaches it through the post function.
type session struct {
	ctx      context.Context
	logger   *slog.Logger
	surface  *stroke.Surface
	overlay  *overlay.Store
	history  *history.Store
	orch     *calc.Orchestrator
	reg      *shortcut.Registry
	disp     *shortcut.Dispatcher
	keys     shortcut.Stream
	kv       kvstore.Store
	themes   *theme.Loader
	theme    *theme.Theme
	skin     *skin
	bar      toolbar
	notifier *notify.Notifier

	width, height int
	colorIdx      int
	historyOpen   bool
	helpOpen      bool
	filter        textField
	lastRun       *image.RGBA

	dragging   bool
	dragIndex  int
	dragOffset image.Point

	message      string
	messageUntil time.Time
	now          func() time.Time
	repaintAfter func(time.Duration)
	unsubscribe  func()
}

func newSession(ctx context.Context, a *AppState, width, height int, post func(func())) (*session, error) {
	if a.Solver == nil {
		return nil, errNoSolver
	}
	surface, err := stroke.NewSurface(width, max(height-toolbarHeight, 1))
	if err != nil {
		return nil, fmt.Errorf("appstate: canvas: %w", err)
	}
	s := &session{
		ctx:      ctx,
		logger:   a.Logger,
		surface:  surface,
		overlay:  &overlay.Store{},
		history:  a.History,
		reg:      shortcut.NewRegistry(),
		kv:       a.KV,
		themes:   a.Themes,
		theme:    a.resolveTheme(ctx),
		notifier: a.Notifier,
		width:    width,
		height:   height,
		colorIdx: a.ColorIdx,
		now:      time.Now,
	}
	s.skin = &skin{theme: s.theme}
	surface.SetColor(palette[s.colorIdx].Color)

	s.orch = calc.New(surface, a.Solver, s.overlay, s.history,
		calc.WithPost(post),
		calc.WithDelay(a.Delay),
		calc.WithClearOnDeliver(a.ClearOnResult),
		calc.WithLogger(a.Logger),
		calc.WithOnPublish(s.published),
		calc.WithOnError(s.failed),
	)

	for _, b := range bindings {
		s.reg.Register(b.info.Key, b.info.Modifiers, func() { b.action(s) })
	}
	s.disp = shortcut.NewDispatcher(s.reg, a.Logger)
	s.disp.Attach(&s.keys)
	s.unsubscribe = s.keys.Subscribe(s.filter.handle)

	s.buildToolbar()
	return s, nil
}

func (s *session) buildToolbar() {
	button := func(label string, fn func()) Button {
		return &CacheButton{Button: &ActionButton{label: label, skin: s.skin, onActivate: fn}}
	}
	s.bar.hover = -1
	s.bar.buttons = []Button{button("Reset", s.reset)}
	for i := range palette {
		s.bar.buttons = append(s.bar.buttons, &SwatchButton{
			index:    i,
			skin:     s.skin,
			selected: func(idx int) bool { return idx == s.colorIdx },
			onSelect: s.selectColor,
		})
	}
	s.bar.buttons = append(s.bar.buttons,
		button("Run", s.run),
		button("History", s.toggleHistory),
		button("Shortcuts", s.showHelp),
		button("Theme", s.toggleTheme),
		button("Copy", s.copyCanvas),
	)
	s.bar.layout()
}

func (s *session) close() {
	s.orch.CancelPending()
	s.disp.Detach()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *session) flash(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.messageUntil = s.now().Add(messageDuration)
	s.logger.InfoContext(s.ctx, s.message)
	if s.repaintAfter != nil {
		s.repaintAfter(messageDuration)
	}
}

func (s *session) reset() {
	s.dragging = false
	s.orch.Reset()
	s.flash("canvas reset")
}

func (s *session) run() {
	s.lastRun = s.surface.Snapshot()
	if err := s.orch.Run(s.ctx); err != nil {
		s.flash("run failed: %v", err)
		return
	}
	s.flash("calculating")
}

func (s *session) toggleHistory() {
	s.historyOpen = !s.historyOpen
	if !s.historyOpen {
		s.filter.focused = false
	}
}

func (s *session) showHelp() { s.helpOpen = true }

func (s *session) clearCanvas() { s.surface.Clear() }

// escape closes the topmost open panel: help first, then history.
func (s *session) escape() {
	switch {
	case s.helpOpen:
		s.helpOpen = false
	case s.historyOpen:
		s.historyOpen = false
		s.filter.focused = false
	}
}

func (s *session) selectColor(i int) {
	s.colorIdx = clampColorIndex(i)
	s.surface.SetColor(palette[s.colorIdx].Color)
}

func (s *session) toggleTheme() {
	name := theme.Toggle(s.theme.Name)
	t, err := s.themes.Load(name)
	if err != nil {
		s.flash("theme %s: %v", name, err)
		return
	}
	s.theme = t
	s.skin.theme = t
	s.bar.invalidate()
	if err := theme.SavePreference(s.ctx, s.kv, t.Name); err != nil {
		s.logger.WarnContext(s.ctx, "save theme preference", "error", err)
	}
}

func (s *session) copyCanvas() {
	if err := copyImage(s.surface.Snapshot()); err != nil {
		s.flash("copy: %v", err)
		return
	}
	s.flash("canvas copied to clipboard")
}

func (s *session) published(e history.Entry) {
	formula := calc.Formula(e.Expression, e.Result)
	s.notifier.Result(formula, s.lastRun)
}

func (s *session) failed(err error) {
	s.flash("calculation failed: %v", err)
	s.notifier.Error(err)
}

// key feeds a shiny key event into the shortcut stream and reports whether
// anything handled it.
func (s *session) key(e key.Event) bool {
	ev, ok := shortcut.FromKeyEvent(e, s.filter.target())
	if !ok {
		return false
	}
	return s.keys.Emit(ev)
}

func (s *session) canvasOrigin() image.Point { return image.Pt(0, toolbarHeight) }

func (s *session) cardStyle() render.CardStyle {
	st := render.DefaultCardStyle()
	st.Background = s.theme.CardBackground
	st.Text = s.theme.CardText
	st.Border = s.theme.ButtonBorder
	return st
}

// cardBounds maps an annotation to its card rectangle in canvas space.
func (s *session) cardBounds(a overlay.Annotation) image.Rectangle {
	return render.CardBounds(a.Formula, a.Position, s.cardStyle())
}

func (s *session) visibleEntries() []history.Entry {
	return filterEntries(s.history.Entries(), s.filter.text)
}

func (s *session) pointerDown(p image.Point) {
	if s.helpOpen {
		if !p.In(layoutHelp(s.width, s.height, len(bindings))) {
			s.helpOpen = false
		}
		return
	}
	if p.Y < toolbarHeight {
		if i := s.bar.at(p); i >= 0 {
			s.bar.buttons[i].Activate()
		}
		return
	}
	if s.historyOpen {
		if l := layoutHistory(s.width, s.height, len(s.visibleEntries())); p.In(l.panel) {
			s.panelClick(p, l)
			return
		}
	}
	s.filter.focused = false

	cp := p.Sub(s.canvasOrigin())
	if i, ok := s.overlay.HitTest(cp, s.cardBounds); ok {
		s.dragging = true
		s.dragIndex = i
		s.dragOffset = cp.Sub(s.overlay.All()[i].Position)
		return
	}
	s.surface.PointerDown(cp)
}

func (s *session) pointerMove(p image.Point) {
	s.bar.hover = -1
	if p.Y < toolbarHeight {
		s.bar.hover = s.bar.at(p)
	}
	cp := p.Sub(s.canvasOrigin())
	if s.dragging {
		s.overlay.Reposition(s.dragIndex, cp.Sub(s.dragOffset))
		return
	}
	if s.surface.Mode() != stroke.Drawing {
		return
	}
	w, h := s.surface.Size()
	if !cp.In(image.Rect(0, 0, w, h)) {
		s.surface.PointerLeave()
		return
	}
	if err := s.surface.PointerMove(cp); err != nil {
		s.logger.WarnContext(s.ctx, "stroke", "error", err)
	}
}

func (s *session) pointerUp() {
	s.dragging = false
	s.surface.PointerUp()
}

func (s *session) panelClick(p image.Point, l historyLayout) {
	switch {
	case p.In(l.clearAll):
		if err := s.history.Clear(s.ctx); err != nil {
			s.flash("clear history: %v", err)
			return
		}
		s.flash("history cleared")
		return
	case p.In(l.filter):
		s.filter.focused = true
		return
	}
	s.filter.focused = false
	entries := s.visibleEntries()
	for i, row := range l.rows {
		if i >= len(entries) {
			break
		}
		e := entries[i]
		switch {
		case p.In(row.use):
			s.orch.Reuse(s.ctx, e)
			return
		case p.In(row.copy):
			if err := copyText(calc.Formula(e.Expression, e.Result)); err != nil {
				s.flash("copy: %v", err)
				return
			}
			s.flash("copied %s", calc.Formula(e.Expression, e.Result))
			return
		}
	}
}

// resize matches the canvas to a new window size. The drawing is discarded
// when the size changes.
func (s *session) resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	if err := s.surface.Resize(max(width, 1), max(height-toolbarHeight, 1)); err != nil {
		s.logger.ErrorContext(s.ctx, "resize canvas", "error", err)
	}
	s.bar.layout()
}
