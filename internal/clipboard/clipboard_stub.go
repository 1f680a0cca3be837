//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "errors"

const (
	supported    = false
	needsDisplay = false
)

var errUnsupported = errors.New("clipboard operations are not supported on this platform")

func initBackend() error { return errUnsupported }

func write(Format, []byte) error { return errUnsupported }
