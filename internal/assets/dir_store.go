package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirStore serves assets from a local directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Open opens dir/name. Directories are reported as not found.
func (s *DirStore) Open(_ context.Context, name string) (*Asset, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open asset %q: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat asset %q: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%q is a directory: %w", name, ErrNotFound)
	}

	return &Asset{
		Name:    info.Name(),
		ModTime: info.ModTime(),
		Content: f,
	}, nil
}
