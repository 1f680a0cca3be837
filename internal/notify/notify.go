// Package notify raises desktop notifications when calculations finish.
package notify

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/example/mathnote/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventResult fires when a result has been placed on the canvas.
	EventResult Event = "result"
	// EventError fires when the solver could not be reached or refused the
	// request.
	EventError Event = "error"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "MathNote",
		Events: map[Event]EventPreference{
			EventResult: {Template: "%s"},
			EventError:  {Template: "Calculation failed: %s"},
		},
	}
}

// LoadPreferences applies MATHNOTE_NOTIFY_* overrides read through getenv.
func LoadPreferences(getenv func(string) string) Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(getenv("MATHNOTE_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	apply("MATHNOTE_NOTIFY_RESULT_TEXT", EventResult)
	apply("MATHNOTE_NOTIFY_ERROR_TEXT", EventError)
	return prefs
}

// send is replaced in tests.
var send = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	logger  *slog.Logger
}

// New creates a new Notifier using the provided preferences. All events
// start disabled.
func New(prefs Preferences, logger *slog.Logger) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), logger: logger}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// sendTimeout bounds each delivery so a stalled notification server cannot
// hold up the caller.
const sendTimeout = 3 * time.Second

// Result announces a delivered result. img, when non-nil, is attached as a
// preview of the canvas.
func (n *Notifier) Result(formula string, img image.Image) {
	if !n.enabledFor(EventResult) {
		return
	}
	msg := platform.Notification{Urgency: platform.UrgencyNormal, Category: platform.CategoryComplete}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			n.logger.Warn("notification preview", "error", err)
		} else {
			defer cleanup()
			msg.Image = path
		}
	}
	n.dispatch(EventResult, formula, msg)
}

// Error announces a failed calculation.
func (n *Notifier) Error(err error) {
	if err == nil || !n.enabledFor(EventError) {
		return
	}
	n.dispatch(EventError, err.Error(), platform.Notification{
		Urgency:  platform.UrgencyCritical,
		Category: platform.CategoryError,
	})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, msg platform.Notification) {
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	msg.Body = strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if msg.Body == "" {
		return
	}
	msg.Title = n.prefs.Title
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := send(ctx, msg); err != nil {
		n.logger.Warn("notification failed", "event", string(event), "error", err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "mathnote-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}
