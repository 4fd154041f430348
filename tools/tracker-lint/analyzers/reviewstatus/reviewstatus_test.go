package reviewstatus_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers/reviewstatus"
)

func TestAnalyzer(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, reviewstatus.Analyzer,
		"example.com/tracker/a",
		"example.com/tracker/internal/domain/entities",
		"example.com/tracker/internal/infrastructure/relationaldb/sqlite",
	)
}
