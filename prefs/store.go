// Package prefs persists user preferences as string values under string keys.
package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"obsync/config"
)

const (
	KeySelectedLanguage = "selectedLanguage"
	KeySelectedRegion   = "selectedRegion"
	KeyLanguageChosen   = "langIsSelected"
	KeyVolume           = "volume"
)

// ResumeKey addresses stored playback position of 0-based story index in
// the language.
func ResumeKey(lang string, story int) string {
	return fmt.Sprintf("resume/%s/%02d", lang, story+1)
}

// Store is safe for concurrent use. Get reports missing key with ok == false.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns SQLite store at configured path or memory store when path is
// empty.
func Open(cfg *config.PreferencesConfig) (Store, error) {
	if len(cfg.Path) == 0 {
		return NewMemory(), nil
	}
	path := filepath.Clean(cfg.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create preferences directory: %w", err)
	}
	return OpenSQLite(path)
}

// GetFloat returns def when key is absent or holds no number.
func GetFloat(ctx context.Context, s Store, key string, def float64) (float64, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, nil
	}
	return f, nil
}

func SetFloat(ctx context.Context, s Store, key string, v float64) error {
	return s.Set(ctx, key, strconv.FormatFloat(v, 'f', -1, 64))
}

// GetBool returns false when key is absent or holds no boolean.
func GetBool(ctx context.Context, s Store, key string) (bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, nil
	}
	return b, nil
}

func SetBool(ctx context.Context, s Store, key string, v bool) error {
	return s.Set(ctx, key, strconv.FormatBool(v))
}
