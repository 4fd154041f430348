// Package analyzers provides all custom static analyzers for diagnostics-tracker.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers/loopcall"
	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers/regexloop"
	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers/reviewstatus"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
		regexloop.Analyzer,
		reviewstatus.Analyzer,
	}
}
