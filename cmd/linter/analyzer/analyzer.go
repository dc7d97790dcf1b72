package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	analyzerName = "unsafecalls"
	analyzerDoc  = "reports panic, process exits outside main, and html/template trusted-content conversions"
)

const zerologLog = "github.com/rs/zerolog/log"

// trustedTypes are the html/template types that mark a string as safe and
// switch off contextual escaping for it.
var trustedTypes = map[string]bool{
	"HTML":     true,
	"HTMLAttr": true,
	"JS":       true,
	"JSStr":    true,
	"URL":      true,
	"CSS":      true,
	"Srcset":   true,
}

// Analyzer checks for calls that crash the process or bypass HTML escaping.
var Analyzer = &analysis.Analyzer{
	Name:     analyzerName,
	Doc:      analyzerDoc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	insp.Preorder(nodeFilter, func(node ast.Node) {
		callExpr := node.(*ast.CallExpr)
		checkCall(pass, callExpr)
	})

	return nil, nil
}

func checkCall(pass *analysis.Pass, callExpr *ast.CallExpr) {
	switch fn := callExpr.Fun.(type) {
	case *ast.Ident:
		if fn.Name == "panic" && isBuiltin(pass, fn) {
			pass.Reportf(callExpr.Pos(), "panic is forbidden")
		}
	case *ast.SelectorExpr:
		checkSelectorExpr(pass, fn, callExpr)
	}
}

func isBuiltin(pass *analysis.Pass, ident *ast.Ident) bool {
	if pass.TypesInfo == nil {
		return true
	}
	_, ok := pass.TypesInfo.Uses[ident].(*types.Builtin)
	return ok
}

func checkSelectorExpr(pass *analysis.Pass, selectorExpr *ast.SelectorExpr, callExpr *ast.CallExpr) {
	ident, ok := selectorExpr.X.(*ast.Ident)
	if !ok || pass.TypesInfo == nil {
		return
	}

	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return
	}

	pkgPath := pkgName.Imported().Path()
	fn := selectorExpr.Sel.Name

	switch {
	case pkgPath == "log" && fn == "Fatal":
		if !isInMainFunction(pass, callExpr) {
			pass.Reportf(callExpr.Pos(), "log.Fatal is forbidden outside main function")
		}
	case pkgPath == zerologLog && (fn == "Fatal" || fn == "Panic"):
		if !isInMainFunction(pass, callExpr) {
			pass.Reportf(callExpr.Pos(), "zerolog log.%s is forbidden outside main function", fn)
		}
	case pkgPath == "os" && fn == "Exit":
		if !isInMainFunction(pass, callExpr) {
			pass.Reportf(callExpr.Pos(), "os.Exit is forbidden outside main function")
		}
	case pkgPath == "html/template" && trustedTypes[fn]:
		if _, isType := pass.TypesInfo.Uses[selectorExpr.Sel].(*types.TypeName); isType {
			pass.Reportf(callExpr.Pos(), "conversion to template.%s disables escaping; build nodes with golang.org/x/net/html instead", fn)
		}
	}
}

func isInMainFunction(pass *analysis.Pass, node ast.Node) bool {
	if pass.Pkg.Name() != "main" {
		return false
	}
	for _, f := range pass.Files {
		for _, decl := range f.Decls {
			if funcDecl, ok := decl.(*ast.FuncDecl); ok {
				if funcDecl.Recv == nil && funcDecl.Name.Name == "main" && isNodeInsideFunc(node, funcDecl) {
					return true
				}
			}
		}
	}
	return false
}

func isNodeInsideFunc(target ast.Node, funcDecl *ast.FuncDecl) bool {
	if funcDecl.Body == nil {
		return false
	}
	return funcDecl.Body.Pos() <= target.Pos() && target.End() <= funcDecl.Body.End()
}
