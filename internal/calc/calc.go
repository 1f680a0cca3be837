// Package calc drives a calculation: it exports the canvas, asks the solver
// for results, tracks variable bindings and delivers the answers to the
// overlay and history after a short delay.
package calc

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/mathnote/internal/bbox"
	"github.com/example/mathnote/internal/history"
	"github.com/example/mathnote/internal/overlay"
	"github.com/example/mathnote/internal/schedule"
	"github.com/example/mathnote/internal/solver"
)

// DefaultDelay is the pause between a successful response and the
// appearance of each result.
const DefaultDelay = time.Second

// DefaultPlacement is where results appear before any ink has been located.
var DefaultPlacement = image.Point{X: 10, Y: 200}

// Canvas is the drawing surface a calculation reads from.
type Canvas interface {
	Export() ([]byte, error)
	Pixels() (pix []uint8, width, height int)
	Clear()
}

// Solver evaluates a canvas snapshot.
type Solver interface {
	Solve(ctx context.Context, req solver.Request) (*solver.Response, error)
}

// Orchestrator owns the variable bindings and result placement for a
// session. Its state is mutated only through the post executor, which the
// UI wires to its event loop.
type Orchestrator struct {
	canvas  Canvas
	solver  Solver
	overlay *overlay.Store
	history *history.Store

	post           func(func())
	delay          time.Duration
	clearOnDeliver bool
	logger         *slog.Logger
	now            func() time.Time
	onPublish      func(history.Entry)
	onError        func(error)

	mu        sync.Mutex
	vars      map[string]string
	placement image.Point

	runs  sync.WaitGroup
	tasks schedule.Set
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithPost sets the executor used for every state change. The default runs
// each function immediately while holding a private lock.
func WithPost(fn func(func())) Option { return func(o *Orchestrator) { o.post = fn } }

// WithDelay sets the per-result delivery delay.
func WithDelay(d time.Duration) Option { return func(o *Orchestrator) { o.delay = d } }

// WithClearOnDeliver controls whether the canvas is wiped once a result is
// shown. Enabled by default.
func WithClearOnDeliver(v bool) Option { return func(o *Orchestrator) { o.clearOnDeliver = v } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// WithOnPublish registers a callback invoked for every delivered result.
func WithOnPublish(fn func(history.Entry)) Option { return func(o *Orchestrator) { o.onPublish = fn } }

// WithOnError registers a callback invoked when a run fails.
func WithOnError(fn func(error)) Option { return func(o *Orchestrator) { o.onError = fn } }

// New returns an Orchestrator.
func New(c Canvas, s Solver, ov *overlay.Store, h *history.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		canvas:         c,
		solver:         s,
		overlay:        ov,
		history:        h,
		delay:          DefaultDelay,
		clearOnDeliver: true,
		now:            time.Now,
		vars:           map[string]string{},
		placement:      DefaultPlacement,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.post == nil {
		var mu sync.Mutex
		o.post = func(fn func()) {
			mu.Lock()
			defer mu.Unlock()
			fn()
		}
	}
	return o
}

// Vars returns a copy of the current variable bindings.
func (o *Orchestrator) Vars() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.vars)
}

// Placement returns where the next result will be shown.
func (o *Orchestrator) Placement() image.Point {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.placement
}

// Run snapshots the canvas and variable bindings and submits them to the
// solver in the background. The returned error covers only the snapshot;
// solver failures are logged and reported through the error callback.
// Overlapping runs are not coordinated.
func (o *Orchestrator) Run(ctx context.Context) error {
	png, err := o.canvas.Export()
	if err != nil {
		return fmt.Errorf("calc: export canvas: %w", err)
	}
	req := solver.Request{Image: solver.EncodeDataURL(png), Vars: o.Vars()}
	runID := uuid.Must(uuid.NewV7()).String()
	logger := o.logger.With("run", runID)
	logger.InfoContext(ctx, "calculation started", "vars", len(req.Vars), "image_bytes", len(png))

	o.runs.Add(1)
	go func() {
		defer o.runs.Done()
		start := time.Now()
		resp, err := o.solver.Solve(ctx, req)
		if err != nil {
			logger.ErrorContext(ctx, "calculation failed", "error", err, "elapsed", time.Since(start))
			if o.onError != nil {
				o.post(func() { o.onError(err) })
			}
			return
		}
		logger.InfoContext(ctx, "calculation finished", "results", len(resp.Data), "elapsed", time.Since(start))
		o.post(func() { o.deliver(ctx, logger, resp.Data) })
	}()
	return nil
}

// deliver runs on the post executor once a response is complete.
func (o *Orchestrator) deliver(ctx context.Context, logger *slog.Logger, results []solver.Result) {
	o.mu.Lock()
	for _, r := range results {
		if r.Assign {
			o.vars[string(r.Expr)] = string(r.Result)
		}
	}
	o.mu.Unlock()

	pix, w, h := o.canvas.Pixels()
	box := bbox.Extract(pix, w, h)
	placed := !box.IsEmpty()
	if placed {
		o.mu.Lock()
		o.placement = box.Midpoint()
		o.mu.Unlock()
	} else {
		logger.WarnContext(ctx, "no ink found, results will not be placed")
	}
	pos := o.Placement()

	if len(results) == 0 {
		return
	}
	// One timer per response keeps results in the order the solver sent.
	o.tasks.After(o.delay, func() {
		o.post(func() {
			for _, r := range results {
				o.publish(ctx, string(r.Expr), string(r.Result), pos, placed)
			}
		})
	})
}

// Reuse shows a past result again at the current placement and records it
// as a new history entry.
func (o *Orchestrator) Reuse(ctx context.Context, e history.Entry) {
	o.post(func() { o.publish(ctx, e.Expression, e.Result, o.Placement(), true) })
}

func (o *Orchestrator) publish(ctx context.Context, expr, answer string, pos image.Point, place bool) {
	if place {
		o.overlay.Add(Formula(expr, answer), pos)
		if o.clearOnDeliver {
			o.canvas.Clear()
		}
	}
	entry := history.Entry{Expression: expr, Result: answer, Timestamp: o.now()}
	if err := o.history.Append(ctx, entry); err != nil {
		o.logger.ErrorContext(ctx, "record history", "error", err)
	}
	if o.onPublish != nil {
		o.onPublish(entry)
	}
}

// Reset clears the canvas, the annotations and the variable bindings.
// History is kept. Runs in flight are not cancelled and may still deliver.
func (o *Orchestrator) Reset() {
	o.canvas.Clear()
	o.overlay.Clear()
	o.mu.Lock()
	o.vars = map[string]string{}
	o.mu.Unlock()
}

// CancelPending drops deliveries that have not been shown yet and returns
// how many were dropped.
func (o *Orchestrator) CancelPending() int { return o.tasks.CancelAll() }

// Wait blocks until outstanding solver calls return and every delivery
// timer already scheduled has fired. A response handed to an asynchronous
// post executor is not tracked: until that executor runs it, no timer
// exists for its results, so callers draining a queue must call Wait again
// after each drained function.
func (o *Orchestrator) Wait() {
	o.runs.Wait()
	o.tasks.Wait()
}

// Formula renders an expression and its result as shown on the canvas.
func Formula(expr, result string) string {
	return expr + " = " + result
}
