package index

import (
	"log/slog"
	"time"

	"github.com/checkstyle/eclipse-cs/internal/checksum"
	"github.com/checkstyle/eclipse-cs/internal/parser"
	"github.com/checkstyle/eclipse-cs/internal/storage"
)

// TemplateExt is the suffix of indexed templates.
const TemplateExt = ".html"

// Sync walks dir in the store and brings the index up to date:
//   - new/changed templates are parsed and upserted
//   - templates removed from the store are deleted from the index
func Sync(db TemplateIndex, store storage.Provider, dir string, logger *slog.Logger) error {
	metas, err := store.List(dir, TemplateExt)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	present := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		present[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexTemplate(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := present[p]; !ok {
			if err := db.DeleteTemplate(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	logger.Info("sync: index ready", slog.Int("templates", len(metas)))
	return nil
}

// indexTemplate parses data and upserts it into the index.
func indexTemplate(db TemplateIndex, path string, data []byte, updated time.Time) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	row := TemplateRow{
		Path:      path,
		Title:     res.Title,
		Checksum:  checksum.Sum(data),
		UpdatedAt: updated,
	}
	return db.UpsertTemplate(row, res.Text, res.Links)
}
