//go:build windows

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Notify raises a toast through PowerShell. The image, when set, uses the
// picture template; critical messages get high priority.
func Notify(ctx context.Context, n Notification) error {
	tmpl := "ToastText02"
	var extra strings.Builder
	if img := strings.TrimSpace(n.Image); img != "" {
		tmpl = "ToastImageAndText02"
		fmt.Fprintf(&extra, `$template.GetElementsByTagName("image").Item(0).SetAttribute("src", %s); `, psQuote(img))
	}
	priority := ""
	if n.Urgency == UrgencyCritical {
		priority = `$toast.Priority = [Windows.UI.Notifications.ToastNotificationPriority]::High; `
	}
	script := fmt.Sprintf(`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null; `+
		`$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::%s); `+
		`$texts = $template.GetElementsByTagName("text"); `+
		`$texts.Item(0).AppendChild($template.CreateTextNode(%s)) > $null; `+
		`$texts.Item(1).AppendChild($template.CreateTextNode(%s)) > $null; `+
		`%s`+
		`$toast = [Windows.UI.Notifications.ToastNotification]::new($template); `+
		`%s`+
		`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(%s).Show($toast);`,
		tmpl, psQuote(n.Title), psQuote(n.Body), extra.String(), priority, psQuote(n.appName()))
	if err := exec.CommandContext(ctx, "powershell.exe", "-NoProfile", "-Command", script).Run(); err != nil {
		return fmt.Errorf("platform: powershell toast: %w", err)
	}
	return nil
}
