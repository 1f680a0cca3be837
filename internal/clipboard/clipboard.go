// Package clipboard publishes result text and canvas images to the system
// clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"sync"
)

// Format is the kind of data placed on the clipboard.
type Format int

const (
	Text Format = iota
	PNG
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

// lookupEnv is replaced in tests.
var lookupEnv = os.Getenv

func ensureInit() error {
	initOnce.Do(func() {
		if !supported {
			initErr = errUnsupported
			return
		}
		if lookupEnv("DISPLAY") == "" && lookupEnv("WAYLAND_DISPLAY") == "" && needsDisplay {
			initErr = errNoDisplay
			return
		}
		initErr = initBackend()
	})
	return initErr
}

// WriteText writes text data to the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return write(Text, []byte(text))
}

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return write(PNG, buf.Bytes())
}
