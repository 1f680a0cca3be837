package calc

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/kvstore"
	"github.com/example/mathnote/internal/overlay"
	"github.com/example/mathnote/internal/solver"
)

type fakeCanvas struct {
	mu      sync.Mutex
	w, h    int
	pix     []uint8
	clears  int
	exports int
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{w: w, h: h, pix: make([]uint8, w*h*4)}
}

func (c *fakeCanvas) ink(r image.Rectangle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			c.pix[(y*c.w+x)*4+3] = 255
		}
	}
}

func (c *fakeCanvas) Export() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exports++
	return []byte("png"), nil
}

func (c *fakeCanvas) Pixels() ([]uint8, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint8(nil), c.pix...), c.w, c.h
}

func (c *fakeCanvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.pix)
	c.clears++
}

type solverFunc func(context.Context, solver.Request) (*solver.Response, error)

func (f solverFunc) Solve(ctx context.Context, r solver.Request) (*solver.Response, error) {
	return f(ctx, r)
}

func respond(results ...solver.Result) solverFunc {
	return func(context.Context, solver.Request) (*solver.Response, error) {
		return &solver.Response{Data: results}, nil
	}
}

type fixture struct {
	canvas  *fakeCanvas
	overlay *overlay.Store
	history *history.Store
	clock   time.Time
}

func newFixture() *fixture {
	c := newFakeCanvas(64, 64)
	c.ink(image.Rect(10, 10, 30, 30))
	return &fixture{
		canvas:  c,
		overlay: &overlay.Store{},
		history: history.New(kvstore.NewMemory(), nil),
		clock:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (f *fixture) orchestrator(s Solver, opts ...Option) *Orchestrator {
	opts = append([]Option{WithDelay(time.Millisecond), WithClock(func() time.Time { return f.clock })}, opts...)
	return New(f.canvas, s, f.overlay, f.history, opts...)
}

func TestRunDeliversResults(t *testing.T) {
	f := newFixture()
	o := f.orchestrator(respond(
		solver.Result{Expr: "x", Result: "5", Assign: true},
		solver.Result{Expr: "2+2", Result: "4"},
	))
	if err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	o.Wait()

	if got := o.Vars(); len(got) != 1 || got["x"] != "5" {
		t.Errorf("Vars = %v", got)
	}
	if p := o.Placement(); p != image.Pt(20, 20) {
		t.Errorf("Placement = %v, want (20,20)", p)
	}
	anns := f.overlay.All()
	want := []overlay.Annotation{
		{Formula: "x = 5", Position: image.Pt(20, 20)},
		{Formula: "2+2 = 4", Position: image.Pt(20, 20)},
	}
	if len(anns) != len(want) || anns[0] != want[0] || anns[1] != want[1] {
		t.Errorf("annotations = %+v", anns)
	}
	entries := f.history.Entries()
	if len(entries) != 2 || entries[0].Expression != "2+2" || entries[1].Expression != "x" {
		t.Errorf("history = %+v", entries)
	}
	if !entries[0].Timestamp.Equal(f.clock) {
		t.Errorf("timestamp = %v", entries[0].Timestamp)
	}
	if f.canvas.clears == 0 {
		t.Error("canvas should be cleared after delivery")
	}
}

func TestRunSendsVariables(t *testing.T) {
	f := newFixture()
	var mu sync.Mutex
	var seen []map[string]string
	o := f.orchestrator(solverFunc(func(_ context.Context, r solver.Request) (*solver.Response, error) {
		mu.Lock()
		seen = append(seen, r.Vars)
		mu.Unlock()
		if _, _, err := solver.DecodeDataURL(r.Image); err != nil {
			t.Errorf("image is not a data URL: %v", err)
		}
		return &solver.Response{Data: []solver.Result{
			{Expr: "y", Result: "1", Assign: true},
			{Expr: "y", Result: "2", Assign: true},
		}}, nil
	}))
	_ = o.Run(context.Background())
	o.Wait()
	_ = o.Run(context.Background())
	o.Wait()

	if len(seen[0]) != 0 {
		t.Errorf("first run vars = %v, want empty", seen[0])
	}
	if seen[1]["y"] != "2" {
		t.Errorf("second run vars = %v, later assignment should win", seen[1])
	}
}

func TestRunFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture()
	boom := errors.New("solver down")
	var reported error
	o := f.orchestrator(solverFunc(func(context.Context, solver.Request) (*solver.Response, error) {
		return nil, boom
	}), WithOnError(func(err error) { reported = err }))
	_ = o.Run(context.Background())
	o.Wait()

	if !errors.Is(reported, boom) {
		t.Errorf("reported = %v", reported)
	}
	if f.overlay.Len() != 0 || f.history.Len() != 0 || len(o.Vars()) != 0 {
		t.Error("failed run changed state")
	}
	if o.Placement() != DefaultPlacement {
		t.Errorf("Placement = %v", o.Placement())
	}
}

func TestBlankCanvasSkipsAnnotation(t *testing.T) {
	f := newFixture()
	f.canvas.Clear()
	f.canvas.clears = 0
	o := f.orchestrator(respond(solver.Result{Expr: "1", Result: "1"}))
	_ = o.Run(context.Background())
	o.Wait()

	if f.overlay.Len() != 0 {
		t.Errorf("annotations = %v, want none", f.overlay.All())
	}
	if f.history.Len() != 1 {
		t.Errorf("history len = %d, want 1", f.history.Len())
	}
	if f.canvas.clears != 0 {
		t.Error("canvas cleared without a placed annotation")
	}
}

func TestWaitWithQueuedPost(t *testing.T) {
	f := newFixture()
	q := make(chan func(), 4)
	o := f.orchestrator(respond(solver.Result{Expr: "1+1", Result: "2"}), WithPost(func(fn func()) { q <- fn }))
	if err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	o.Wait()
	if len(q) != 1 || f.overlay.Len() != 0 {
		t.Fatalf("after first Wait: queued=%d annotations=%d, want the response queued", len(q), f.overlay.Len())
	}

	(<-q)()
	o.Wait()
	if len(q) != 1 || f.overlay.Len() != 0 {
		t.Fatalf("after delivery: queued=%d annotations=%d, want the publish queued", len(q), f.overlay.Len())
	}

	(<-q)()
	o.Wait()
	if len(q) != 0 || f.overlay.Len() != 1 {
		t.Fatalf("after publish: queued=%d annotations=%d", len(q), f.overlay.Len())
	}
	if a := f.overlay.All()[0]; a.Position != image.Pt(20, 20) {
		t.Errorf("position = %v, want (20,20)", a.Position)
	}
}

func TestDeliveryWaitsForDelay(t *testing.T) {
	f := newFixture()
	o := f.orchestrator(respond(solver.Result{Expr: "a", Result: "1"}), WithDelay(time.Hour))
	_ = o.Run(context.Background())
	o.runs.Wait()
	if f.overlay.Len() != 0 {
		t.Fatal("result delivered before the delay")
	}
	if n := o.CancelPending(); n != 1 {
		t.Errorf("CancelPending = %d, want 1", n)
	}
	o.Wait()
	if f.overlay.Len() != 0 || f.history.Len() != 0 {
		t.Error("cancelled delivery still published")
	}
}

func TestResetKeepsHistory(t *testing.T) {
	f := newFixture()
	o := f.orchestrator(respond(solver.Result{Expr: "x", Result: "3", Assign: true}), WithClearOnDeliver(false))
	_ = o.Run(context.Background())
	o.Wait()

	o.Reset()
	if f.overlay.Len() != 0 || len(o.Vars()) != 0 {
		t.Error("Reset should clear overlay and vars")
	}
	pix, w, h := f.canvas.Pixels()
	for i := 3; i < w*h*4; i += 4 {
		if pix[i] != 0 {
			t.Fatal("Reset should clear the canvas")
		}
	}
	if f.history.Len() != 1 {
		t.Errorf("history len = %d, want 1", f.history.Len())
	}
}

func TestStaleResponseAfterReset(t *testing.T) {
	f := newFixture()
	release := make(chan struct{})
	o := f.orchestrator(solverFunc(func(context.Context, solver.Request) (*solver.Response, error) {
		<-release
		return &solver.Response{Data: []solver.Result{{Expr: "z", Result: "9", Assign: true}}}, nil
	}))
	_ = o.Run(context.Background())
	o.Reset()
	close(release)
	o.Wait()
	if o.Vars()["z"] != "9" {
		t.Errorf("in-flight run should still merge after reset, vars = %v", o.Vars())
	}
}

func TestReuse(t *testing.T) {
	f := newFixture()
	var published []history.Entry
	o := f.orchestrator(respond(), WithOnPublish(func(e history.Entry) { published = append(published, e) }))
	o.Reuse(context.Background(), history.Entry{Expression: "3*3", Result: "9", Timestamp: time.Unix(0, 0)})

	anns := f.overlay.All()
	if len(anns) != 1 || anns[0].Formula != "3*3 = 9" || anns[0].Position != DefaultPlacement {
		t.Errorf("annotations = %+v", anns)
	}
	e, ok := f.history.Latest()
	if !ok || e.Expression != "3*3" || !e.Timestamp.Equal(f.clock) {
		t.Errorf("latest = %+v", e)
	}
	if len(published) != 1 {
		t.Errorf("published = %v", published)
	}
}

func TestRunExportError(t *testing.T) {
	f := newFixture()
	o := New(exportFails{f.canvas}, respond(), f.overlay, f.history)
	if err := o.Run(context.Background()); err == nil {
		t.Fatal("expected export error")
	}
}

type exportFails struct{ *fakeCanvas }

func (exportFails) Export() ([]byte, error) { return nil, errors.New("no surface") }
