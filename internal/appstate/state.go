package appstate

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/mathnote/internal/display"
)

// uiTask carries work from background goroutines onto the event loop.
type uiTask func()

func (a *AppState) notifyClose() {
	if a.onClose != nil {
		a.onClose()
	}
}

// Main runs the window until it is closed.
func (a *AppState) Main(s screen.Screen) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sz := a.Size
	if sz.X <= 0 || sz.Y <= 0 {
		sz = display.DefaultWindowSize()
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: sz.X, Height: sz.Y, Title: "MathNote"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	if err := a.History.Load(ctx); err != nil {
		log.Printf("load history: %v", err)
	}
	sess, err := newSession(ctx, a, sz.X, sz.Y, func(fn func()) { w.Send(uiTask(fn)) })
	if err != nil {
		log.Printf("start: %v", err)
		return
	}
	defer sess.close()
	sess.repaintAfter = func(d time.Duration) {
		time.AfterFunc(d, func() { w.Send(paint.Event{}) })
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			pctx, pcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = pcancel
			paintMu.Unlock()
			drawFrame(pctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if pctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			pcancel()
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case uiTask:
			e()
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			sess.resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := sess.frame()
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			p := image.Point{int(e.X), int(e.Y)}
			switch e.Direction {
			case mouse.DirPress:
				if e.Button == mouse.ButtonLeft {
					sess.pointerDown(p)
				}
			case mouse.DirRelease:
				if e.Button == mouse.ButtonLeft {
					sess.pointerUp()
				}
			case mouse.DirNone:
				sess.pointerMove(p)
			}
			w.Send(paint.Event{})
		case key.Event:
			if sess.key(e) {
				w.Send(paint.Event{})
			}
		}
	}
}
