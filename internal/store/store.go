package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a preference has never been set.
var ErrNotFound = errors.New("preference not found")

// Well-known preference keys.
const (
	KeyTheme = "theme"
)

// Preferences is the local key/value store for client-side settings that
// outlive a single run.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
	DeletePreference(ctx context.Context, key string) error
}
