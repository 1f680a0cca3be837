package platform

import (
	"testing"
	"time"
)

func TestNotificationDefaults(t *testing.T) {
	tests := []struct {
		n       Notification
		app     string
		timeout int32
	}{
		{Notification{}, DefaultAppName, 5000},
		{Notification{AppName: "Notes", Timeout: 1500 * time.Millisecond}, "Notes", 1500},
		{Notification{Timeout: -1}, DefaultAppName, -1},
	}
	for _, tt := range tests {
		if got := tt.n.appName(); got != tt.app {
			t.Errorf("appName() = %q, want %q", got, tt.app)
		}
		if got := tt.n.expireMillis(); got != tt.timeout {
			t.Errorf("expireMillis() = %d, want %d", got, tt.timeout)
		}
	}
}
