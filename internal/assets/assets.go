// Package assets resolves product image filenames against a storage backend.
package assets

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the named asset does not exist.
	ErrNotFound = errors.New("asset not found")

	// ErrInvalidName is returned for names that could escape the asset root.
	ErrInvalidName = errors.New("invalid asset name")
)

// Asset is an open image. The caller must Close Content.
type Asset struct {
	Name    string
	ModTime time.Time
	Content io.ReadSeekCloser
}

// Store opens assets by bare filename.
type Store interface {
	Open(ctx context.Context, name string) (*Asset, error)
}

// ValidateName rejects anything but a plain filename.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}
	return nil
}
