package theme

import (
	"context"
	"errors"

	"github.com/example/mathnote/internal/kvstore"
)

// PreferenceKey is the storage key of the chosen theme name.
const PreferenceKey = "theme"

// Resolve picks the active theme name: the stored preference, then the
// configured fallback, then "light".
func Resolve(ctx context.Context, kv kvstore.Store, fallback string) (string, error) {
	v, err := kv.Get(ctx, PreferenceKey)
	switch {
	case err == nil && len(v) > 0:
		return string(v), nil
	case err != nil && !errors.Is(err, kvstore.ErrNotFound):
		return orLight(fallback), err
	}
	return orLight(fallback), nil
}

// SavePreference stores name as the chosen theme.
func SavePreference(ctx context.Context, kv kvstore.Store, name string) error {
	return kv.Set(ctx, PreferenceKey, []byte(name))
}

func orLight(name string) string {
	if name == "" {
		return "light"
	}
	return name
}
