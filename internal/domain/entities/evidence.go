package entities

import (
	"strings"
	"time"
)

// EvidenceItem is one news result about a startup.
type EvidenceItem struct {
	SourceURL   string    `json:"url"`
	SourceName  string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Title       string    `json:"title"`
	Snippet     string    `json:"description"`
}

// Text returns the lower-cased title and snippet that extractors match against.
func (e EvidenceItem) Text() string {
	return strings.ToLower(e.Title + " " + e.Snippet)
}
