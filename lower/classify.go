package lower

import "github.com/rubiojr/usinglower/ast"

// Mode is the disposal mode of a resource declaration.
type Mode int

const (
	ModeSync Mode = iota
	ModeAsync
)

func (m Mode) String() string {
	if m == ModeAsync {
		return "async"
	}
	return "sync"
}

// Classification is the result of Classify.
type Classification struct {
	IsResource bool
	Mode       Mode
}

// Classify reports whether n declares resources and how they are
// disposed. A declaration counts as a resource declaration when its kind
// is using or await using, or when table records it as promoted from the
// module top level. table may be nil.
func Classify(n ast.Node, table *PromotionTable) Classification {
	decl, ok := n.(*ast.VariableDeclaration)
	if !ok || decl == nil {
		return Classification{}
	}
	switch decl.Kind {
	case ast.KindUsing:
		return Classification{IsResource: true, Mode: ModeSync}
	case ast.KindAwaitUsing:
		return Classification{IsResource: true, Mode: ModeAsync}
	}
	if mode, ok := table.Lookup(decl); ok {
		return Classification{IsResource: true, Mode: mode}
	}
	return Classification{}
}

// kindFor returns the declaration kind that declares resources in mode.
func kindFor(m Mode) ast.DeclKind {
	if m == ModeAsync {
		return ast.KindAwaitUsing
	}
	return ast.KindUsing
}
