package lower

import (
	"go.uber.org/multierr"

	"github.com/rubiojr/usinglower/ast"
)

// Validate reports misuse of resource declarations before lowering. Every
// problem found is returned as an *Error combined with multierr.
var Validate ast.Check = ast.CheckFunc{N: "using-declarations", F: validate}

type validator struct {
	errs error
	// heads are for-of and for-in bindings, which have no initializer
	heads map[*ast.VariableDeclaration]bool
}

func validate(prog *ast.Program) error {
	v := &validator{heads: make(map[*ast.VariableDeclaration]bool)}
	if prog.SourceType == ast.SourceScript {
		for _, s := range prog.Body {
			if d, ok := s.(*ast.VariableDeclaration); ok && d.Kind.IsUsing() {
				v.report(errorAt(KindInvalid, d, "%s declarations are not allowed at the top level of a script", d.Kind))
			}
		}
	}
	// top-level await is only available to modules
	v.visit(prog, prog.SourceType == ast.SourceModule)
	return v.errs
}

func (v *validator) report(err *Error) {
	v.errs = multierr.Append(v.errs, err)
}

// visit checks the tree under root. awaitOK tells whether await is
// allowed in the function or top level being visited.
func (v *validator) visit(root ast.Node, awaitOK bool) {
	ast.Inspect(root, func(n ast.Node) bool {
		for _, body := range statementBodies(n) {
			if d := singleStatementResource(body); d != nil {
				v.report(singleStatementError(d))
			}
		}
		switch n := n.(type) {
		case *ast.FunctionDeclaration:
			v.function(&n.Function)
			return false
		case *ast.FunctionExpression:
			v.function(&n.Function)
			return false
		case *ast.ArrowFunctionExpression:
			for _, p := range n.Params {
				v.visit(p, n.Async)
			}
			v.visit(n.Body, n.Async)
			v.visit(n.Expression, n.Async)
			return false
		case *ast.StaticBlock:
			for _, s := range n.Body {
				v.visit(s, false)
			}
			return false
		case *ast.PropertyDefinition:
			v.visit(n.Key, awaitOK)
			v.visit(n.Value, false)
			return false
		case *ast.ForOfStatement:
			if d, ok := n.Left.(*ast.VariableDeclaration); ok {
				v.heads[d] = true
			}
		case *ast.ForInStatement, *ast.ForStatement:
			if d := usingHead(n); d != nil {
				v.heads[d] = true
				v.report(headError(n))
			}
		case *ast.VariableDeclaration:
			v.declaration(n, awaitOK)
		}
		return true
	})
}

func (v *validator) function(fn *ast.Function) {
	for _, p := range fn.Params {
		v.visit(p, fn.Async)
	}
	v.visit(fn.Body, fn.Async)
}

func (v *validator) declaration(d *ast.VariableDeclaration, awaitOK bool) {
	if !d.Kind.IsUsing() {
		return
	}
	if d.Kind == ast.KindAwaitUsing && !awaitOK {
		v.report(errorAt(KindInvalid, d, "await using declarations are only allowed in async functions and at the top level of modules"))
	}
	for _, decl := range d.Declarations {
		if _, ok := decl.ID.(*ast.Identifier); !ok {
			v.report(errorAt(KindInvalid, decl, "%s declarations may not use destructuring patterns", d.Kind))
		}
		if decl.Init == nil && !v.heads[d] {
			v.report(errorAt(KindInvalid, decl, "missing initializer in %s declaration", d.Kind))
		}
	}
}
