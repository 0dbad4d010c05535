package dispose

import (
	"fmt"

	"github.com/rubiojr/usinglower/ast"
)

// Injector hands out references to runtime helpers and produces the
// declarations that define them. Each helper is declared at most once per
// program, under a name reserved from the program's identifier set the
// first time it is requested.
type Injector struct {
	uids   *ast.UIDs
	module string // when set, helpers are imported instead of inlined
	names  map[string]string
	order  []string
}

// NewInjector returns an Injector that inlines helper declarations.
func NewInjector(uids *ast.UIDs) *Injector {
	return &Injector{uids: uids, names: make(map[string]string)}
}

// NewImporter returns an Injector that imports each helper as the default
// export of module + "/" + helper name instead of inlining it.
func NewImporter(uids *ast.UIDs, module string) *Injector {
	in := NewInjector(uids)
	in.module = module
	return in
}

// Helper returns a fresh identifier referring to the named helper.
func (in *Injector) Helper(name string) ast.Expr {
	fn, ok := in.names[name]
	if !ok {
		fn = in.uids.Generate(name)
		in.names[name] = fn
		in.order = append(in.order, name)
	}
	return &ast.Identifier{Name: fn}
}

// Requested returns the canonical names of the helpers requested so far.
func (in *Injector) Requested() []string {
	return append([]string(nil), in.order...)
}

// Declarations returns the statements defining every requested helper, in
// request order.
func (in *Injector) Declarations() ([]ast.Statement, error) {
	stmts := make([]ast.Statement, 0, len(in.order))
	for _, name := range in.order {
		h, ok := Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown runtime helper %q", name)
		}
		fn := in.names[name]
		if in.module != "" {
			stmts = append(stmts, &ast.ImportDeclaration{
				Specifiers: []*ast.ImportSpecifier{{Kind: ast.ImportDefault, Local: &ast.Identifier{Name: fn}}},
				Source:     &ast.StringLiteral{Value: in.module + "/" + h.Name},
			})
			continue
		}
		stmts = append(stmts, &ast.RawStatement{Code: h.Render(fn)})
	}
	return stmts, nil
}
