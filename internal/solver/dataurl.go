package solver

import (
	"encoding/base64"
	"errors"
	"strings"
)

const pngPrefix = "data:image/png;base64,"

// ErrNotDataURL is returned by DecodeDataURL for malformed input.
var ErrNotDataURL = errors.New("solver: not a base64 data URL")

// EncodeDataURL wraps PNG bytes in a data URL.
func EncodeDataURL(png []byte) string {
	return pngPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURL returns the media type and payload of a base64 data URL.
func DecodeDataURL(s string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mediaType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrNotDataURL, err)
	}
	return mediaType, data, nil
}
