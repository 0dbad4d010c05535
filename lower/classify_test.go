package lower

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"modernc.org/token"

	"github.com/rubiojr/usinglower/ast"
)

func TestClassify(t *testing.T) {
	f := ast.NewFactory()
	tests := []struct {
		name string
		node ast.Node
		want Classification
	}{
		{"using", f.VarDecl(ast.KindUsing, f.Ident("a"), f.Ident("b")), Classification{IsResource: true, Mode: ModeSync}},
		{"await using", f.VarDecl(ast.KindAwaitUsing, f.Ident("a"), f.Ident("b")), Classification{IsResource: true, Mode: ModeAsync}},
		{"const", f.VarDecl(ast.KindConst, f.Ident("a"), f.Ident("b")), Classification{}},
		{"var", f.VarDecl(ast.KindVar, f.Ident("a"), f.Ident("b")), Classification{}},
		{"not a declaration", f.ExprStmt(f.Ident("a")), Classification{}},
		{"nil", nil, Classification{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.node, nil))
			assert.Equal(t, tt.want, Classify(tt.node, NewPromotionTable()))
		})
	}
}

func TestClassifyPromoted(t *testing.T) {
	f := ast.NewFactory()
	sync := f.VarDecl(ast.KindVar, f.Ident("a"), f.Ident("b"))
	async := f.VarDecl(ast.KindVar, f.Ident("c"), f.Ident("d"))
	other := f.VarDecl(ast.KindVar, f.Ident("e"), f.Ident("f"))

	table := NewPromotionTable()
	table.Record(sync, ModeSync)
	table.Record(async, ModeAsync)

	assert.Equal(t, Classification{IsResource: true, Mode: ModeSync}, Classify(sync, table))
	assert.Equal(t, Classification{IsResource: true, Mode: ModeAsync}, Classify(async, table))
	assert.False(t, Classify(other, table).IsResource)
	assert.False(t, Classify(sync, nil).IsResource, "promotion is only known through the table")
}

func TestPromotionTable(t *testing.T) {
	f := ast.NewFactory()
	d := f.VarDecl(ast.KindVar, f.Ident("a"), f.Ident("b"))

	table := NewPromotionTable()
	assert.Equal(t, 0, table.Len())
	table.Record(d, ModeAsync)
	assert.Equal(t, 1, table.Len())

	mode, ok := table.Lookup(d)
	require.True(t, ok)
	assert.Equal(t, ModeAsync, mode)

	assert.True(t, table.Consume(d))
	assert.False(t, table.Consume(d), "entries are consumed once")
	assert.Equal(t, 0, table.Len())
	_, ok = table.Lookup(d)
	assert.False(t, ok)
}

func TestPromotionTableNil(t *testing.T) {
	var table *PromotionTable
	_, ok := table.Lookup(&ast.VariableDeclaration{})
	assert.False(t, ok)
	assert.False(t, table.Consume(&ast.VariableDeclaration{}))
	assert.Equal(t, 0, table.Len())
}

func TestModeAndKindStrings(t *testing.T) {
	assert.Equal(t, "sync", ModeSync.String())
	assert.Equal(t, "async", ModeAsync.String())
	assert.Equal(t, ast.KindUsing, kindFor(ModeSync))
	assert.Equal(t, ast.KindAwaitUsing, kindFor(ModeAsync))

	assert.Equal(t, "unsupported", KindUnsupported.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "internal", KindInternal.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindInvalid, Pos: token.Position{Filename: "a.js", Line: 3, Column: 5}, Msg: "bad"}
	assert.Equal(t, "a.js:3:5: bad", e.Error())

	e.Pos.Filename = ""
	assert.Equal(t, "3:5: bad", e.Error())

	assert.Equal(t, "bad", (&Error{Msg: "bad"}).Error())
}

func TestErrors(t *testing.T) {
	a := &Error{Kind: KindInvalid, Msg: "a"}
	b := &Error{Kind: KindUnsupported, Msg: "b"}
	err := multierr.Combine(a, errors.New("plain"), fmt.Errorf("wrapped: %w", b))

	got := Errors(err)
	require.Len(t, got, 2)
	assert.Same(t, a, got[0])
	assert.Same(t, b, got[1])
	assert.True(t, HasKind(err, KindUnsupported))
	assert.False(t, HasKind(err, KindInternal))
	assert.Empty(t, Errors(nil))
}
