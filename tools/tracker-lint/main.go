// tracker-lint is a custom static analyzer for diagnostics-tracker patterns.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
