package lower

import "github.com/rubiojr/usinglower/ast"

// PromotionTable remembers which top-level declarations were resource
// declarations before the top-level normalizer turned them into var
// declarations. It lives for the lowering of one module and is drained as
// the wrapped top-level scope consumes its entries.
type PromotionTable struct {
	modes map[*ast.VariableDeclaration]Mode
}

// NewPromotionTable returns an empty table.
func NewPromotionTable() *PromotionTable {
	return &PromotionTable{modes: make(map[*ast.VariableDeclaration]Mode)}
}

// Record marks decl as a promoted resource declaration.
func (t *PromotionTable) Record(decl *ast.VariableDeclaration, mode Mode) {
	t.modes[decl] = mode
}

// Lookup returns the recorded mode of decl.
func (t *PromotionTable) Lookup(decl *ast.VariableDeclaration) (Mode, bool) {
	if t == nil {
		return ModeSync, false
	}
	mode, ok := t.modes[decl]
	return mode, ok
}

// Consume removes decl from the table and reports whether it was present.
func (t *PromotionTable) Consume(decl *ast.VariableDeclaration) bool {
	if t == nil {
		return false
	}
	if _, ok := t.modes[decl]; !ok {
		return false
	}
	delete(t.modes, decl)
	return true
}

// Len returns the number of entries not yet consumed.
func (t *PromotionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.modes)
}
