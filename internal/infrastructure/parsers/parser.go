// Package parsers provides parsers for importing startups from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// RawStartup is a startup parsed from an external source before validation.
type RawStartup struct {
	entities.Startup `yaml:",inline"`
	LineNum          int `json:"-" yaml:"-"` // Line or array position in source file (set by parser)
}

// Parser defines the interface for parsing startups from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawStartup, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "yaml", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}
