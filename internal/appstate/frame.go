package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/mathnote/internal/calc"
	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/overlay"
	"github.com/example/mathnote/internal/render"
	"github.com/example/mathnote/internal/shortcut"
	"github.com/example/mathnote/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// paintState is a copy of everything a frame needs, so painting can run off
// the UI goroutine.
type paintState struct {
	width, height int
	theme         theme.Theme
	toolbar       *image.RGBA
	canvas        *image.RGBA
	inked         bool
	cards         []overlay.Annotation
	card          render.CardStyle

	historyOpen   bool
	entries       []history.Entry
	filter        string
	filterFocused bool

	helpOpen  bool
	shortcuts []shortcut.Info

	message      string
	messageUntil time.Time
	now          time.Time
}

// frame snapshots the session for painting.
func (s *session) frame() paintState {
	bar := image.NewRGBA(image.Rect(0, 0, s.width, toolbarHeight))
	s.bar.draw(bar, s.theme, func(b Button) bool {
		cb, ok := b.(*CacheButton)
		if !ok {
			return false
		}
		ab, ok := cb.Button.(*ActionButton)
		if !ok {
			return false
		}
		switch ab.label {
		case "History":
			return s.historyOpen
		case "Shortcuts":
			return s.helpOpen
		}
		return false
	})
	return paintState{
		width:         s.width,
		height:        s.height,
		theme:         *s.theme,
		toolbar:       bar,
		canvas:        s.surface.Snapshot(),
		inked:         s.surface.Inked(),
		cards:         s.overlay.All(),
		card:          s.cardStyle(),
		historyOpen:   s.historyOpen,
		entries:       s.visibleEntries(),
		filter:        s.filter.text,
		filterFocused: s.filter.focused,
		helpOpen:      s.helpOpen,
		shortcuts:     Shortcuts(),
		message:       s.message,
		messageUntil:  s.messageUntil,
		now:           s.now(),
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	if !paintFrame(ctx, b.RGBA(), st) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// paintFrame renders st into dst. It returns false if ctx was cancelled
// part way through.
func paintFrame(ctx context.Context, dst *image.RGBA, st paintState) bool {
	th := &st.theme
	origin := image.Pt(0, toolbarHeight)
	canvasRect := image.Rect(0, toolbarHeight, st.width, st.height)

	backdrop := th.Background
	if st.inked {
		backdrop = th.InkBackdrop
	}
	draw.Draw(dst, canvasRect, image.NewUniform(backdrop), image.Point{}, draw.Src)
	if st.canvas != nil {
		draw.Draw(dst, st.canvas.Bounds().Add(origin), st.canvas, st.canvas.Bounds().Min, draw.Over)
	}
	if ctx.Err() != nil {
		return false
	}

	for _, a := range st.cards {
		if _, err := render.DrawCard(dst, a.Formula, a.Position.Add(origin), st.card); err != nil {
			log.Printf("draw card: %v", err)
		}
		if ctx.Err() != nil {
			return false
		}
	}

	if st.toolbar != nil {
		draw.Draw(dst, st.toolbar.Bounds(), st.toolbar, image.Point{}, draw.Src)
	}
	if st.historyOpen {
		paintHistory(dst, st)
	}
	if ctx.Err() != nil {
		return false
	}
	if st.helpOpen {
		paintHelp(dst, st)
	}
	if st.message != "" && st.now.Before(st.messageUntil) {
		paintMessage(dst, st)
	}
	return ctx.Err() == nil
}

func paintButton(dst *image.RGBA, r image.Rectangle, label string, th *theme.Theme) {
	render.FillRect(dst, r, th.ButtonBackground)
	render.Outline(dst, r, th.ButtonBorder)
	w, h, _, _ := render.MeasureText(label, render.SizeLabel)
	_ = render.DrawText(dst, r.Min.X+(r.Dx()-w)/2, r.Min.Y+(r.Dy()-h)/2, label, th.ButtonText, render.SizeLabel)
}

func paintHistory(dst *image.RGBA, st paintState) {
	th := &st.theme
	l := layoutHistory(st.width, st.height, len(st.entries))
	render.DrawShadow(dst, l.panel, render.ShadowOptions{Radius: 8, Offset: image.Pt(-4, 0), Opacity: 0.25})
	draw.Draw(dst, l.panel, image.NewUniform(th.PanelBackground), image.Point{}, draw.Src)
	_ = render.DrawText(dst, l.panel.Min.X+12, l.panel.Min.Y+12, "History", th.PanelText, render.SizeTitle)
	paintButton(dst, l.clearAll, "Clear All", th)

	render.FillRect(dst, l.filter, th.Background)
	border := th.ButtonBorder
	if st.filterFocused {
		border = th.SwatchSelected
	}
	render.Outline(dst, l.filter, border)
	text, col := st.filter, th.PanelText
	if text == "" && !st.filterFocused {
		text, col = "Filter", th.PanelMuted
	}
	if st.filterFocused {
		text += "|"
	}
	_ = render.DrawText(dst, l.filter.Min.X+6, l.filter.Min.Y+7, text, col, render.SizeLabel)

	if len(st.entries) == 0 {
		_ = render.DrawText(dst, l.panel.Min.X+12, l.panel.Min.Y+panelHeader+8, "No calculations yet", th.PanelMuted, render.SizeLabel)
		return
	}
	for i, row := range l.rows {
		e := st.entries[i]
		render.Outline(dst, row.rect, th.ButtonBorder)
		_ = render.DrawText(dst, row.rect.Min.X+8, row.rect.Min.Y+6, render.Typeset(calc.Formula(e.Expression, e.Result)), th.PanelText, render.SizeLabel+2)
		_ = render.DrawText(dst, row.rect.Min.X+8, row.rect.Min.Y+28, e.Timestamp.Local().Format("Jan 2 15:04"), th.PanelMuted, render.SizeLabel-2)
		paintButton(dst, row.use, "Use", th)
		paintButton(dst, row.copy, "Copy", th)
	}
}

func paintHelp(dst *image.RGBA, st paintState) {
	th := &st.theme
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Scrim), image.Point{}, draw.Over)
	box := layoutHelp(st.width, st.height, len(st.shortcuts))
	render.DrawShadow(dst, box, render.DefaultShadowOptions())
	draw.Draw(dst, box, image.NewUniform(th.PanelBackground), image.Point{}, draw.Src)
	render.Outline(dst, box, th.ButtonBorder)
	_ = render.DrawText(dst, box.Min.X+16, box.Min.Y+16, "Keyboard shortcuts", th.PanelText, render.SizeTitle)
	y := box.Min.Y + 56
	for _, sc := range st.shortcuts {
		_ = render.DrawText(dst, box.Min.X+16, y, sc.Description, th.PanelText, render.SizeLabel)
		label := sc.Label()
		w, _, _, _ := render.MeasureText(label, render.SizeLabel)
		_ = render.DrawText(dst, box.Max.X-16-w, y, label, th.PanelMuted, render.SizeLabel)
		y += helpRow
	}
	_ = render.DrawText(dst, box.Min.X+16, box.Max.Y-26, "Press Esc to close", th.PanelMuted, render.SizeLabel-2)
}

func paintMessage(dst *image.RGBA, st paintState) {
	w, h, _, err := render.MeasureText(st.message, render.SizeTitle)
	if err != nil {
		return
	}
	px := (st.width - w) / 2
	py := st.height - h - 32
	rect := image.Rect(px-10, py-8, px+w+10, py+h+8)
	render.FillRect(dst, rect, color.RGBA{255, 255, 255, 230})
	render.Outline(dst, rect, color.Black)
	_ = render.DrawText(dst, px, py, st.message, color.Black, render.SizeTitle)
}
