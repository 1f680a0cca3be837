//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"golang.design/x/clipboard"
)

const (
	supported    = true
	needsDisplay = true
)

var errUnsupported error

func initBackend() error { return clipboard.Init() }

func write(f Format, data []byte) error {
	kind := clipboard.FmtText
	if f == PNG {
		kind = clipboard.FmtImage
	}
	clipboard.Write(kind, data)
	return nil
}
