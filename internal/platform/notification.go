// Package platform delivers desktop notifications through the host's
// notification center.
package platform

import "time"

// DefaultAppName identifies the sender when Notification.AppName is empty.
const DefaultAppName = "MathNote"

const defaultTimeout = 5 * time.Second

// Urgency ranks a notification. Servers may use it to keep critical
// messages on screen.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Categories from the desktop notification hint registry.
const (
	CategoryComplete = "transfer.complete"
	CategoryError    = "transfer.error"
)

// Notification is one message for the host notification center.
type Notification struct {
	AppName string
	Title   string
	Body    string
	// Image is a PNG file shown with the message where supported.
	Image    string
	Urgency  Urgency
	Category string
	// Timeout is how long the message stays visible. Zero means five
	// seconds; a negative value leaves it to the server.
	Timeout time.Duration
}

func (n Notification) appName() string {
	if n.AppName == "" {
		return DefaultAppName
	}
	return n.AppName
}

// expireMillis is the freedesktop expire_timeout argument.
func (n Notification) expireMillis() int32 {
	switch {
	case n.Timeout < 0:
		return -1
	case n.Timeout == 0:
		return int32(defaultTimeout / time.Millisecond)
	}
	return int32(n.Timeout / time.Millisecond)
}
