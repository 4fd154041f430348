// Package loopcall detects collaborator and store calls inside loops.
package loopcall

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/ersonp/diagnostics-tracker/tools/tracker-lint/analyzers/suppress"
)

// Analyzer detects per-item network or database calls that should be batched.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "detects news, LLM, embedding, vector and store calls inside loops that should be batched",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// externalMethods are method names that indicate external calls.
var externalMethods = map[string]bool{
	// NewsSource
	"Search": true,
	// LLMClient and Extractor
	"ExtractChanges": true,
	"Extract":        true,
	// Embedder (non-batch)
	"Embed": true,
	// EvidenceIndex (non-batch)
	"Nearest": true,
	// RelationalDB
	"FindStartup":       true,
	"SaveStartup":       true,
	"FindReview":        true,
	"SaveReview":        true,
	"LogAudit":          true,
	"SaveMetricVersion": true,
	// ReviewQueue
	"Enqueue": true,
	"Approve": true,
	"Reject":  true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		// Tests seed stores row by row.
		if strings.HasSuffix(pass.Fset.Position(n.Pos()).Filename, "_test.go") {
			return
		}

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
			// Nested loops are visited by Preorder on their own.
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

			methodName := sel.Sel.Name
			if externalMethods[methodName] && !suppress.Suppressed(pass, call.Pos(), pass.Analyzer.Name) {
				pass.Reportf(call.Pos(),
					"potential N+1: %s called inside loop - consider batching",
					methodName)
			}

			return true
		})
	})

	return nil, nil
}
