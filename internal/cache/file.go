package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/recon/internal/model"
)

// PathFunc returns the file that holds a tenant's classification map.
type PathFunc func(tenant string) string

// File keeps one JSON document per tenant.
type File struct {
	path PathFunc
}

// NewFile creates a File cache storing maps at the paths given by path.
func NewFile(path PathFunc) *File {
	return &File{path: path}
}

func (c *File) Get(_ context.Context, tenant string) (model.ClassificationMap, bool, error) {
	data, err := os.ReadFile(c.path(tenant))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading classification cache: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (c *File) Put(_ context.Context, tenant string, m model.ClassificationMap) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	path := c.path(tenant)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing classification cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing classification cache: %w", err)
	}
	return nil
}

func (c *File) Invalidate(_ context.Context, tenant string) error {
	err := os.Remove(c.path(tenant))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing classification cache: %w", err)
	}
	return nil
}
