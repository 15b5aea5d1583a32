package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/checkstyle/eclipse-cs/internal/index"
	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/resolver"
	"github.com/checkstyle/eclipse-cs/internal/widgets"
)

// DefaultCrawlerParam is the query parameter crawlers use to request a
// pre-rendered fragment.
const DefaultCrawlerParam = "_escaped_fragment_"

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	Crawler  CrawlerConfig     `yaml:"crawler"`
	Releases ReleasesConfig    `yaml:"releases"`
	Search   SearchConfig      `yaml:"search"`
	Widgets  WidgetsConfig     `yaml:"widgets"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Crawler.Validate(); err != nil {
		return fmt.Errorf("crawler: %w", err)
	}
	if err := c.Releases.Validate(); err != nil {
		return fmt.Errorf("releases: %w", err)
	}
	return c.Search.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel    slog.Level `yaml:"log_level"`
	Environment string     `yaml:"environment"`
	HTTP        HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Environment == "" {
		c.Environment = widgets.EnvLocal
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.In(widgets.EnvLocal, widgets.EnvProduction)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig locates the read-only site content.
type ContentConfig struct {
	// Path is the content root directory.
	Path string `yaml:"path"`
	// Manifest is the site manifest, relative to Path. A missing file means
	// the built-in site description.
	Manifest string `yaml:"manifest"`
	// Shell is the interactive page, relative to Path.
	Shell string `yaml:"shell"`
	// Partials is the template namespace, relative to Path.
	Partials string `yaml:"partials"`
	// Watch keeps the search index and live reload in sync with edits.
	Watch bool `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Manifest, validation.Required),
		validation.Field(&c.Shell, validation.Required),
		validation.Field(&c.Partials, validation.Required, validation.By(relative)),
	)
}

// ManifestPath returns the manifest location on disk.
func (c *ContentConfig) ManifestPath() string {
	return filepath.Join(c.Path, c.Manifest)
}

func relative(v any) error {
	s, _ := v.(string)
	clean := path.Clean(s)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.New("must be inside the content root")
	}
	return nil
}

// CrawlerConfig configures the server-side fragment resolution.
type CrawlerConfig struct {
	Param string `yaml:"param"`
}

// Validate validates the crawler configuration.
func (c *CrawlerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Param, validation.Required),
	)
}

// ReleasesConfig configures release notes loading and aggregation.
type ReleasesConfig struct {
	ExpandRecent     int    `yaml:"expand_recent"`
	ExpandParam      string `yaml:"expand_param"`
	OnUnavailable    string `yaml:"on_unavailable"`
	FetchConcurrency int    `yaml:"fetch_concurrency"`
}

// Validate validates the releases configuration.
func (c *ReleasesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ExpandRecent, validation.Min(0)),
		validation.Field(&c.ExpandParam, validation.Required),
		validation.Field(&c.OnUnavailable, validation.Required,
			validation.In(resolver.UnavailableFail, resolver.UnavailableEmpty)),
		validation.Field(&c.FetchConcurrency, validation.Min(1)),
	)
}

// SearchConfig holds the template index configuration.
type SearchConfig struct {
	// DSN is the SQLite data source. The default is a private in-memory
	// database rebuilt at every start.
	DSN string `yaml:"dsn"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DSN, validation.Required),
	)
}

// WidgetsConfig configures the third-party embeds.
type WidgetsConfig struct {
	AdClient  string `yaml:"ad_client"`
	AdSlot    string `yaml:"ad_slot"`
	ShareURL  string `yaml:"share_url"`
	ShareText string `yaml:"share_text"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:    slog.LevelInfo,
			Environment: widgets.EnvLocal,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path:     "./site",
			Manifest: "site.yaml",
			Shell:    "index.html",
			Partials: resolver.DefaultPartialsDir,
			Watch:    true,
		},
		Crawler: CrawlerConfig{
			Param: DefaultCrawlerParam,
		},
		Releases: ReleasesConfig{
			ExpandRecent:     1,
			ExpandParam:      releases.DefaultExpandParam,
			OnUnavailable:    resolver.UnavailableFail,
			FetchConcurrency: resolver.DefaultFetchConcurrency,
		},
		Search: SearchConfig{
			DSN: index.MemoryDSN,
		},
		Widgets: WidgetsConfig{
			ShareText: "Checkstyle for Eclipse",
		},
	}
}
