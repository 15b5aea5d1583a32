// Package models defines the domain types shared by the site packages.
package models

import "time"

// TemplateMeta is a lightweight description of one stored template,
// returned by list operations.
type TemplateMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Screenshot is one slide of the home page carousel.
type Screenshot struct {
	Image string `json:"image" yaml:"image"`
	Text  string `json:"text" yaml:"text"`
}

// Link is a directed edge from a template to a fragment it links to.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}
