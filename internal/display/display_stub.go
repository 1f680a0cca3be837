//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package display

// ListMonitors is unavailable without X11 and always returns an error.
func ListMonitors() ([]Monitor, error) {
	return nil, errNoMonitors
}
