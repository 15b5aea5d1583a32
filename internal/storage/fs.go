package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
	"github.com/checkstyle/eclipse-cs/internal/checksum"
	"github.com/checkstyle/eclipse-cs/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the content directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a template reference against the content root and
// rejects any result that escapes it (directory traversal).
func (f *FS) safePath(ref string) (string, error) {
	key, ok := Key(ref)
	if !ok {
		return "", fmt.Errorf("storage: %w: %s", apperr.ErrInvalidPath, ref)
	}
	abs := filepath.Join(f.root, filepath.FromSlash(key))
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: %w: %s", apperr.ErrInvalidPath, ref)
	}
	return abs, nil
}

// Read returns the raw bytes of a stored template.
func (f *FS) Read(ref string) ([]byte, error) {
	abs, err := f.safePath(ref)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: read %s: %w", ref, apperr.ErrNotFound)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", ref, errors.Join(apperr.ErrNotFound, err))
		}
		return nil, fmt.Errorf("storage: read %s: %w", ref, err)
	}
	return data, nil
}

// List walks dir (relative to root) and returns metadata for every file
// ending in ext.
func (f *FS) List(dir, ext string) ([]models.TemplateMeta, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.TemplateMeta
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.TemplateMeta{
			Path:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}
