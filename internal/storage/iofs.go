package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
	"github.com/checkstyle/eclipse-cs/internal/checksum"
	"github.com/checkstyle/eclipse-cs/internal/models"
)

// IOFS implements Provider over any fs.FS, such as an embed.FS or a
// fstest.MapFS.
type IOFS struct {
	fsys fs.FS
}

var _ Provider = (*IOFS)(nil)

// NewFromFS wraps fsys as a template store.
func NewFromFS(fsys fs.FS) *IOFS {
	return &IOFS{fsys: fsys}
}

// Read returns the raw bytes of a stored template.
func (s *IOFS) Read(ref string) ([]byte, error) {
	key, ok := Key(ref)
	if !ok || !fs.ValidPath(key) {
		return nil, fmt.Errorf("storage: %w: %s", apperr.ErrInvalidPath, ref)
	}
	data, err := fs.ReadFile(s.fsys, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", ref, errors.Join(apperr.ErrNotFound, err))
		}
		return nil, fmt.Errorf("storage: read %s: %w", ref, err)
	}
	return data, nil
}

// List walks dir and returns metadata for every file ending in ext.
func (s *IOFS) List(dir, ext string) ([]models.TemplateMeta, error) {
	key, ok := Key(dir)
	if !ok {
		return nil, fmt.Errorf("storage: %w: %s", apperr.ErrInvalidPath, dir)
	}
	var out []models.TemplateMeta
	err := fs.WalkDir(s.fsys, key, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		data, err := fs.ReadFile(s.fsys, p)
		if err != nil {
			return err
		}
		meta := models.TemplateMeta{Path: p, Checksum: checksum.Sum(data)}
		if info, err := d.Info(); err == nil {
			meta.UpdatedAt = info.ModTime()
		}
		out = append(out, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}
