package index

// TemplateIndex defines the interface for template indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type TemplateIndex interface {
	UpsertTemplate(t TemplateRow, body string, links []string) error
	DeleteTemplate(path string) error
	GetChecksum(path string) (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(fragment string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies TemplateIndex at compile time.
var _ TemplateIndex = (*DB)(nil)
