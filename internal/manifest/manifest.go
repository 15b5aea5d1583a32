// Package manifest loads the declarative site description: the route table,
// the release notes fragment and data resource, and the home page carousel.
package manifest

import (
	"errors"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/checkstyle/eclipse-cs/internal/models"
	"github.com/checkstyle/eclipse-cs/internal/routes"
	pkgconfig "github.com/checkstyle/eclipse-cs/pkg/config"
)

// Manifest is the authoritative site schema, loaded once at start.
type Manifest struct {
	Routes          []routes.Rule       `yaml:"routes"`
	Default         string              `yaml:"default"`
	ReleaseFragment string              `yaml:"release_fragment"`
	Releases        string              `yaml:"releases"`
	Screenshots     []models.Screenshot `yaml:"screenshots"`
}

// Validate validates the manifest.
func (m *Manifest) Validate() error {
	if m.Default == "" {
		m.Default = routes.Root
	}
	return validation.ValidateStruct(m,
		validation.Field(&m.Routes, validation.Required),
		validation.Field(&m.Default, validation.In(routes.Root).Error("default route must map to the site root")),
		validation.Field(&m.ReleaseFragment, validation.Required, validation.NotIn(routes.Root, "//")),
		validation.Field(&m.Releases, validation.Required),
		validation.Field(&m.Screenshots, validation.Each(validation.By(validScreenshot))),
	)
}

func validScreenshot(v any) error {
	s, ok := v.(models.Screenshot)
	if !ok || s.Image == "" {
		return errors.New("image is required")
	}
	return nil
}

// Table builds the route table described by the manifest.
func (m *Manifest) Table() (*routes.Table, error) {
	return routes.New(m.Routes, m.Default)
}

// Default returns the built-in eclipse-cs site description.
func Default() *Manifest {
	return &Manifest{
		Routes: []routes.Rule{
			{Pattern: "/", Template: "/partials/index.html"},
			{Pattern: "/install", Template: "/partials/basic/install.html"},
			{Pattern: "/project-setup", Template: "/partials/basic/project-setup.html"},
			{Pattern: "/custom-config", Template: "/partials/basic/custom-config.html"},
			{Pattern: "/filesets", Template: "/partials/advanced/filesets.html"},
			{Pattern: "/faq", Template: "/partials/faq.html"},
			{Pattern: "/releasenotes", Template: "/partials/releasenotes.html"},
		},
		Default:         routes.Root,
		ReleaseFragment: "/releasenotes",
		Releases:        "/partials/releasenotes/releases.json",
		Screenshots: []models.Screenshot{
			{Image: "/images/screenshots/eclipsecs0000.png", Text: "Checkstyle violations annotated in the Java editor"},
			{Image: "/images/screenshots/eclipsecs0013.png", Text: "Checkstyle violations chart with drilldown capability"},
			{Image: "/images/screenshots/eclipsecs0011.png", Text: "Checkstyle violations view, group violations by type"},
			{Image: "/images/screenshots/eclipsecs0012.png", Text: "Drill down into violation categories"},
			{Image: "/images/screenshots/eclipsecs0001.png", Text: "Checkstyle Project configuration (simple)"},
			{Image: "/images/screenshots/eclipsecs0006.png", Text: "Checkstyle workspace preferences and setup of global check configurations"},
			{Image: "/images/screenshots/eclipsecs0008.png", Text: "Checkstyle configuration editor, assemble your own Checkstyle setup"},
		},
	}
}

// Load reads the manifest at path. A missing file yields the built-in
// description; any other failure is returned.
func Load(path string) (*Manifest, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	m := &Manifest{}
	if err := pkgconfig.Load(path, m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return m, nil
}
