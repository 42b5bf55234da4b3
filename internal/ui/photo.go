package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNoPhotos is returned when a photo list is empty.
var ErrNoPhotos = errors.New("at least one photo is required")

// CheckPhoto verifies that path names a readable image file.
func CheckPhoto(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("photo %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("photo %s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("reading photo %s: %w", path, err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("photo %s is %s, not an image", path, mt.String())
	}
	return nil
}

// SplitPhotos parses a comma separated list of paths, dropping blanks.
func SplitPhotos(raw string) []string {
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// CheckPhotos splits raw and checks every path. At least one is required.
func CheckPhotos(raw string) ([]string, error) {
	paths := SplitPhotos(raw)
	if len(paths) == 0 {
		return nil, ErrNoPhotos
	}
	for _, p := range paths {
		if err := CheckPhoto(p); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
