package lower

import "github.com/rubiojr/usinglower/ast"

// desegment moves the resource binding of a for-of head into the loop body
// so that every iteration opens and disposes a scope of its own:
//
//	for (using x of xs) body
//	for (const _x of xs) { using x = _x; body }
//
// The body is lowered afterwards like any other block.
func (l *lowerer) desegment(loop *ast.ForOfStatement, decl *ast.VariableDeclaration, mode Mode) {
	if len(decl.Declarations) == 0 {
		return
	}
	d := decl.Declarations[0]
	tmp := l.uids.GenerateFor(d.ID)

	inner := l.f.VarDecl(kindFor(mode), d.ID, ast.Clone(tmp))
	inner.Loc = decl.Loc
	d.ID = tmp
	decl.Kind = ast.KindConst

	var body *ast.BlockStatement
	switch b := loop.Body.(type) {
	case *ast.BlockStatement:
		body = b
	case *ast.EmptyStatement:
		body = l.f.Block()
		body.Loc = b.Loc
	default:
		body = l.f.Block(b)
		body.Loc = ast.SpanOf(b)
	}
	body.Body = append([]ast.Statement{inner}, body.Body...)
	loop.Body = body
}
