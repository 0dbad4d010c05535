package lower

import "github.com/rubiojr/usinglower/ast"

// placement says where the try statement of a lowered region goes.
type placement int

const (
	// placeReplace puts the try in the region's own slot.
	placeReplace placement = iota
	// placeNested makes the region a block holding only the try, so it
	// never merges with a try/catch or a function body at the same level.
	placeNested
	// placeInline makes the try the only statement of the region.
	placeInline
)

func (p placement) String() string {
	switch p {
	case placeNested:
		return "nested"
	case placeInline:
		return "inline"
	}
	return "replace"
}

// placementFor decides how a lowered region is attached to parent. An
// unknown parent is an internal error: guessing would move the point where
// resources are disposed.
func placementFor(region, parent ast.Node) (placement, error) {
	switch region.(type) {
	case *ast.StaticBlock:
		return placeInline, nil
	case *ast.SwitchStatement:
		// the whole switch is guarded so fallthrough shares one scope
		return placeReplace, nil
	}
	switch parent.(type) {
	case *ast.FunctionDeclaration, *ast.FunctionExpression, *ast.ArrowFunctionExpression,
		*ast.TryStatement, *ast.CatchClause:
		return placeNested, nil
	case *ast.Program, *ast.BlockStatement, *ast.StaticBlock, *ast.SwitchCase,
		*ast.IfStatement, *ast.ForStatement, *ast.ForInStatement, *ast.ForOfStatement,
		*ast.WhileStatement, *ast.DoWhileStatement, *ast.LabeledStatement:
		return placeReplace, nil
	}
	return placeReplace, errorAt(KindInternal, region, "cannot place the disposal scope of a %s inside a %s", nodeName(region), nodeName(parent))
}
