//go:build linux

package platform

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest = "org.freedesktop.Notifications"
	notifyPath = "/org/freedesktop/Notifications"
)

// Notify sends n over the session bus to the freedesktop notification
// server.
func Notify(ctx context.Context, n Notification) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("platform: session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(notifyDest, notifyPath).CallWithContext(ctx, notifyDest+".Notify", 0,
		n.appName(), uint32(0), n.Image, n.Title, n.Body, []string{}, hints(n), n.expireMillis())
	if call.Err != nil {
		return fmt.Errorf("platform: notify: %w", call.Err)
	}
	return nil
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(n.Urgency))}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	if n.Image != "" {
		h["image-path"] = dbus.MakeVariant(n.Image)
	}
	return h
}
