package api

import (
	"github.com/checkstyle/eclipse-cs/internal/models"
	"github.com/checkstyle/eclipse-cs/internal/navigator"
	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/routes"
	"github.com/checkstyle/eclipse-cs/internal/siteservice"
)

// RoutesResponse is the client route table.
type RoutesResponse struct {
	Routes  []routes.Rule `json:"routes" validate:"required"`
	Default string        `json:"default" example:"/" validate:"required"`
}

// ReleasesResponse wraps the release index, newest first.
type ReleasesResponse struct {
	Releases []releases.Entry `json:"releases" validate:"required"`
}

// ViewResponse is the navigator view model (aliased from the domain layer).
type ViewResponse = navigator.View

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []siteservice.SearchHit `json:"results" validate:"required"`
}

// BacklinksResponse lists the templates linking to a fragment.
type BacklinksResponse struct {
	Fragment  string   `json:"fragment" example:"/faq" validate:"required"`
	Backlinks []string `json:"backlinks" validate:"required"`
}

// ScreenshotsResponse wraps the home page carousel slides.
type ScreenshotsResponse struct {
	Screenshots []models.Screenshot `json:"screenshots" validate:"required"`
}

// SiteResponse describes the deployment.
type SiteResponse struct {
	Environment string `json:"environment" example:"production" validate:"required"`
}
