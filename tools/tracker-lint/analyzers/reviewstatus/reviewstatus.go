// Package reviewstatus reports direct writes to ReviewRecord.Status.
//
// A review record moves from pending to approved or rejected only through
// its Approve and Reject methods, which also stamp the reviewer and time.
// Stores that rehydrate records from rows are exempt.
package reviewstatus

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers/suppress"
)

// Analyzer reports assignments to ReviewRecord.Status outside allowed packages.
var Analyzer = &analysis.Analyzer{
	Name:     "reviewstatus",
	Doc:      "reports assignments to ReviewRecord.Status outside the entities and store packages",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

const (
	entitiesSuffix = "/domain/entities"
	recordType     = "ReviewRecord"
	statusField    = "Status"
)

// allowed lists package path fragments that may write the field.
var allowed = []string{
	entitiesSuffix + "/",
	"/infrastructure/relationaldb/",
}

func run(pass *analysis.Pass) (interface{}, error) {
	if isAllowed(pass.Pkg.Path()) {
		return nil, nil
	}

	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.AssignStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		assign := n.(*ast.AssignStmt)
		if strings.HasSuffix(pass.Fset.Position(assign.Pos()).Filename, "_test.go") {
			return
		}

		for _, lhs := range assign.Lhs {
			sel, ok := lhs.(*ast.SelectorExpr)
			if !ok || sel.Sel.Name != statusField {
				continue
			}
			if !isRecordStatus(pass, sel) {
				continue
			}
			if suppress.Suppressed(pass, sel.Pos(), pass.Analyzer.Name) {
				continue
			}
			pass.Reportf(sel.Pos(),
				"ReviewRecord.Status assigned directly - use Approve or Reject")
		}
	})

	return nil, nil
}

func isAllowed(path string) bool {
	for _, a := range allowed {
		if strings.Contains(path+"/", a) {
			return true
		}
	}
	return false
}

// isRecordStatus reports whether sel selects the Status field of
// entities.ReviewRecord, through a value or a pointer.
func isRecordStatus(pass *analysis.Pass, sel *ast.SelectorExpr) bool {
	selection, ok := pass.TypesInfo.Selections[sel]
	if !ok || selection.Kind() != types.FieldVal {
		return false
	}

	recv := selection.Recv()
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = ptr.Elem()
	}
	named, ok := recv.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	if obj.Name() != recordType || obj.Pkg() == nil {
		return false
	}
	return strings.HasSuffix(obj.Pkg().Path(), entitiesSuffix)
}
