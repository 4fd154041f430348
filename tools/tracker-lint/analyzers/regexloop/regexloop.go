// Package regexloop detects regex compilation inside loops.
package regexloop

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers/suppress"
)

// Analyzer detects regexp.Compile/MustCompile calls inside loops.
var Analyzer = &analysis.Analyzer{
	Name:     "regexloop",
	Doc:      "detects regexp.Compile/MustCompile calls inside loops",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var regexpFuncs = map[string]bool{
	"Compile":          true,
	"MustCompile":      true,
	"CompilePOSIX":     true,
	"MustCompilePOSIX": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			switch n.(type) {
			case *ast.RangeStmt, *ast.ForStmt:
				return false
			}

			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			if isRegexpPackage(pass, sel.X) && regexpFuncs[sel.Sel.Name] &&
				!suppress.Suppressed(pass, call.Pos(), pass.Analyzer.Name) {
				pass.Reportf(call.Pos(),
					"regexp.%s called inside loop - compile once outside loop",
					sel.Sel.Name)
			}

			return true
		})
	})

	return nil, nil
}

// isRegexpPackage resolves x through type info so renamed imports match.
func isRegexpPackage(pass *analysis.Pass, x ast.Expr) bool {
	ident, ok := x.(*ast.Ident)
	if !ok {
		return false
	}
	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return false
	}
	return pkgName.Imported().Path() == "regexp"
}
