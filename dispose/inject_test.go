package dispose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/usinglower/ast"
)

func newUIDs(names ...string) *ast.UIDs {
	prog := &ast.Program{}
	for _, n := range names {
		prog.Body = append(prog.Body, &ast.ExpressionStatement{Expression: &ast.Identifier{Name: n}})
	}
	return ast.NewUIDs(prog)
}

func TestInjectorNamesHelpersOnce(t *testing.T) {
	uids := newUIDs("_usingCtx")
	in := NewInjector(uids)

	first := in.Helper(HelperUsingCtx).(*ast.Identifier)
	second := in.Helper(HelperUsingCtx).(*ast.Identifier)

	assert.Equal(t, "_usingCtx2", first.Name)
	assert.Equal(t, first.Name, second.Name)
	assert.NotSame(t, first, second, "each reference is a separate node")
	assert.Equal(t, []string{HelperUsingCtx}, in.Requested())
	assert.True(t, uids.Used("_usingCtx2"))
}

func TestInjectorDeclarations(t *testing.T) {
	in := NewInjector(newUIDs())
	in.Helper(HelperUsing)
	in.Helper(HelperDispose)
	in.Helper(HelperUsing)

	stmts, err := in.Declarations()
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	using := stmts[0].(*ast.RawStatement)
	assert.True(t, strings.HasPrefix(using.Code, "function _using(stack, value, isAwait) {"))
	dispose := stmts[1].(*ast.RawStatement)
	assert.True(t, strings.HasPrefix(dispose.Code, "function _dispose(stack, error, hasError) {"))
}

func TestInjectorNothingRequested(t *testing.T) {
	stmts, err := NewInjector(newUIDs()).Declarations()
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestInjectorUnknownHelper(t *testing.T) {
	in := NewInjector(newUIDs())
	in.Helper("nope")
	_, err := in.Declarations()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown runtime helper "nope"`)
}

func TestImporter(t *testing.T) {
	in := NewImporter(newUIDs(), "usinglower/runtime")
	ref := in.Helper(HelperUsingCtx).(*ast.Identifier)

	stmts, err := in.Declarations()
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	imp := stmts[0].(*ast.ImportDeclaration)
	require.Len(t, imp.Specifiers, 1)
	assert.Equal(t, ast.ImportDefault, imp.Specifiers[0].Kind)
	assert.Equal(t, ref.Name, imp.Specifiers[0].Local.Name)
	assert.Equal(t, "usinglower/runtime/usingCtx", imp.Source.Value)
}
