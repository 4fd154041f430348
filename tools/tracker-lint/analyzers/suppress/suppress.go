// Package suppress honors //nolint:<name> directives for standalone analyzers.
package suppress

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Suppressed reports whether pos is covered by a //nolint directive naming
// the analyzer, either on the same line or on the line directly above.
func Suppressed(pass *analysis.Pass, pos token.Pos, name string) bool {
	file := fileFor(pass, pos)
	if file == nil {
		return false
	}
	line := pass.Fset.Position(pos).Line

	for _, group := range file.Comments {
		for _, c := range group.List {
			cl := pass.Fset.Position(c.Slash).Line
			if cl != line && cl != line-1 {
				continue
			}
			if matches(c.Text, name) {
				return true
			}
		}
	}
	return false
}

func fileFor(pass *analysis.Pass, pos token.Pos) *ast.File {
	for _, f := range pass.Files {
		if f.FileStart <= pos && pos < f.FileEnd {
			return f
		}
	}
	return nil
}

func matches(text, name string) bool {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(text, "nolint")
	if !ok {
		return false
	}
	// Bare //nolint covers everything.
	if rest == "" || strings.HasPrefix(rest, " ") {
		return true
	}
	list, ok := strings.CutPrefix(rest, ":")
	if !ok {
		return false
	}
	if i := strings.IndexAny(list, " \t"); i >= 0 {
		list = list[:i]
	}
	for _, n := range strings.Split(list, ",") {
		if n == name {
			return true
		}
	}
	return false
}
