//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"
)

// Notify shows n in Notification Center through osascript. Critical
// messages play the alert sound.
func Notify(ctx context.Context, n Notification) error {
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", n.Body, n.Title, n.appName())
	if n.Urgency == UrgencyCritical {
		script += ` sound name "Basso"`
	}
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("platform: osascript: %w", err)
	}
	return nil
}
