package lower

import (
	"go.uber.org/zap"

	"github.com/rubiojr/usinglower/ast"
)

// normalizeTopLevel prepares a module whose top level declares resources.
// Statements that must stay at the top level (function declarations,
// imports and exports) are kept in order; everything else moves into a
// block appended to the module, which is then lowered like any other
// block. Relocated bindings become var so the kept exports still see them.
// Top-level resource declarations are recorded in the promotion table
// before their kind is rewritten.
func (l *lowerer) normalizeTopLevel(prog *ast.Program) {
	if topLevelResource(prog) == nil {
		return
	}
	var kept, moved []ast.Statement
	for _, s := range prog.Body {
		kept, moved = l.relocate(s, kept, moved)
	}
	block := l.f.Block(moved...)
	if len(moved) > 0 {
		block.Loc = ast.Span{Start: ast.SpanOf(moved[0]).Start, End: ast.SpanOf(moved[len(moved)-1]).End}
	}
	prog.Body = append(kept, block)

	Logger().Debug("promoted module top level",
		zap.String("file", prog.SourceFile),
		zap.Int("kept", len(kept)),
		zap.Int("moved", len(moved)),
		zap.Int("resources", l.table.Len()),
	)
}

func (l *lowerer) relocate(s ast.Statement, kept, moved []ast.Statement) ([]ast.Statement, []ast.Statement) {
	switch n := s.(type) {
	case *ast.FunctionDeclaration, *ast.ImportDeclaration, *ast.ExportAllDeclaration:
		return append(kept, s), moved

	case *ast.ExportDefaultDeclaration:
		var id *ast.Identifier
		var value ast.Expr
		switch d := n.Declaration.(type) {
		case *ast.ClassDeclaration:
			id = d.ID
			value = l.f.ClassExpr(d)
		case ast.Expr:
			value = d
		default:
			return append(kept, s), moved
		}
		if id == nil {
			id = l.uids.GenerateIdent("default")
		}
		export := ast.Inherit(l.f.ExportNames(l.f.ExportSpecifier(id.Name, "default")), n)
		v := l.f.VarDecl(ast.KindVar, id, value)
		v.Loc = n.Loc
		return append(kept, export), append(moved, v)

	case *ast.ExportNamedDeclaration:
		if n.Declaration == nil {
			return append(kept, s), moved
		}
		if _, ok := n.Declaration.(*ast.FunctionDeclaration); ok {
			return append(kept, s), moved
		}
		names := ast.BoundNames(n.Declaration)
		specs := make([]*ast.ExportSpecifier, len(names))
		for i, name := range names {
			specs[i] = l.f.ExportSpecifier(name, name)
		}
		export := ast.Inherit(l.f.ExportNames(specs...), n)
		return l.relocate(n.Declaration, append(kept, export), moved)

	case *ast.ClassDeclaration:
		v := ast.Inherit(l.f.VarDecl(ast.KindVar, n.ID, l.f.ClassExpr(n)), n)
		return kept, append(moved, v)

	case *ast.VariableDeclaration:
		if c := Classify(n, nil); c.IsResource {
			l.table.Record(n, c.Mode)
		}
		n.Kind = ast.KindVar
		return kept, append(moved, n)
	}
	return kept, append(moved, s)
}

// topLevelResource returns the first resource declaration directly in the
// program body, or nil.
func topLevelResource(prog *ast.Program) *ast.VariableDeclaration {
	for _, s := range prog.Body {
		if d, ok := s.(*ast.VariableDeclaration); ok && d.Kind.IsUsing() {
			return d
		}
	}
	return nil
}
