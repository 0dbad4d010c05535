package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/usinglower/ast"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse("test.js", []byte(src))
	require.NoError(t, err)
	return prog
}

func parseScript(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := &Parser{SourceType: ast.SourceScript}
	prog, err := p.Parse("test.js", []byte(src))
	require.NoError(t, err)
	return prog
}

func TestParseUsingDeclaration(t *testing.T) {
	prog := parse(t, "function f() {\n  using res = open();\n  res.read();\n}\n")
	require.Len(t, prog.Body, 1)

	fn := prog.Body[0].(*ast.FunctionDeclaration)
	assert.Equal(t, "f", fn.ID.Name)
	require.Len(t, fn.Body.Body, 2)

	decl := fn.Body.Body[0].(*ast.VariableDeclaration)
	assert.Equal(t, ast.KindUsing, decl.Kind)
	assert.Equal(t, "res", decl.Declarations[0].ID.(*ast.Identifier).Name)
	assert.IsType(t, &ast.CallExpression{}, decl.Declarations[0].Init)
	assert.Equal(t, 2, decl.Loc.Start.Line)
	assert.Equal(t, 3, decl.Loc.Start.Column)
}

func TestParseAwaitUsingDeclaration(t *testing.T) {
	prog := parse(t, "async function f() { await using a = x(), b = y(); }")
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	assert.True(t, fn.Async)

	decl := fn.Body.Body[0].(*ast.VariableDeclaration)
	assert.Equal(t, ast.KindAwaitUsing, decl.Kind)
	assert.Len(t, decl.Declarations, 2)
}

func TestParseUsingAsIdentifier(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"call", "using(x);"},
		{"member", "using.x = 1;"},
		{"index", "using[0] = 1;"},
		{"newline before binding", "using\nx;"},
		{"in operator", "using in obj;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseScript(t, tt.src)
			_, isDecl := prog.Body[0].(*ast.VariableDeclaration)
			assert.False(t, isDecl)
		})
	}
}

func TestParseAwaitUsingRequiresSameLine(t *testing.T) {
	prog := parse(t, "async function f() { await using\nx; }")
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	stmt := fn.Body.Body[0].(*ast.ExpressionStatement)
	assert.IsType(t, &ast.AwaitExpression{}, stmt.Expression)
}

func TestParseForOfUsing(t *testing.T) {
	prog := parse(t, "for (using x of items) use(x);\nfor await (await using y of stream) {}")
	require.Len(t, prog.Body, 2)

	loop := prog.Body[0].(*ast.ForOfStatement)
	decl := loop.Left.(*ast.VariableDeclaration)
	assert.Equal(t, ast.KindUsing, decl.Kind)
	assert.False(t, loop.Await)

	loop2 := prog.Body[1].(*ast.ForOfStatement)
	assert.True(t, loop2.Await)
	assert.Equal(t, ast.KindAwaitUsing, loop2.Left.(*ast.VariableDeclaration).Kind)
}

func TestParseForUsingOfIsExpression(t *testing.T) {
	prog := parse(t, "for (using of items) {}")
	loop := prog.Body[0].(*ast.ForOfStatement)
	assert.Equal(t, "using", loop.Left.(*ast.Identifier).Name)
}

func TestParseForHeads(t *testing.T) {
	prog := parse(t, "for (let i = 0; i < n; i++) {}\nfor (const k in obj) {}\nfor (;;) break;")
	require.Len(t, prog.Body, 3)

	classic := prog.Body[0].(*ast.ForStatement)
	assert.Equal(t, ast.KindLet, classic.Init.(*ast.VariableDeclaration).Kind)
	assert.NotNil(t, classic.Test)
	assert.NotNil(t, classic.Update)

	assert.IsType(t, &ast.ForInStatement{}, prog.Body[1])

	empty := prog.Body[2].(*ast.ForStatement)
	assert.Nil(t, empty.Init)
	assert.Nil(t, empty.Test)
}

func TestParseSwitch(t *testing.T) {
	prog := parse(t, "switch (x) { case 1: using a = r(); f(a); break; default: g(); }")
	sw := prog.Body[0].(*ast.SwitchStatement)
	require.Len(t, sw.Cases, 2)
	assert.Len(t, sw.Cases[0].Consequent, 3)
	assert.Nil(t, sw.Cases[1].Test)
}

func TestParseClassStaticBlock(t *testing.T) {
	prog := parse(t, `class A extends B {
  static #count = 0;
  static { using r = init(); }
  constructor() { super(); }
  get size() { return 1; }
  async *items() {}
}`)
	cls := prog.Body[0].(*ast.ClassDeclaration)
	require.Len(t, cls.Body, 5)

	field := cls.Body[0].(*ast.PropertyDefinition)
	assert.True(t, field.Static)
	assert.Equal(t, "#count", field.Key.(*ast.Identifier).Name)

	block := cls.Body[1].(*ast.StaticBlock)
	assert.Equal(t, ast.KindUsing, block.Body[0].(*ast.VariableDeclaration).Kind)

	assert.Equal(t, ast.MethodConstructor, cls.Body[2].(*ast.MethodDefinition).Kind)
	assert.Equal(t, ast.MethodGet, cls.Body[3].(*ast.MethodDefinition).Kind)

	items := cls.Body[4].(*ast.MethodDefinition)
	assert.True(t, items.Value.Async)
	assert.True(t, items.Value.Generator)
}

func TestParseModuleItems(t *testing.T) {
	prog := parse(t, `import def, { a as b, c } from "mod";
import * as ns from "ns";
import "side";
export const x = 1;
export default class {}
export { x as y };
export * from "all";
export * as named from "named";`)
	require.Len(t, prog.Body, 8)

	imp := prog.Body[0].(*ast.ImportDeclaration)
	require.Len(t, imp.Specifiers, 3)
	assert.Equal(t, ast.ImportDefault, imp.Specifiers[0].Kind)
	assert.Equal(t, "a", imp.Specifiers[1].Imported)
	assert.Equal(t, "b", imp.Specifiers[1].Local.Name)
	assert.Equal(t, "mod", imp.Source.Value)

	assert.Equal(t, ast.ImportNamespace, prog.Body[1].(*ast.ImportDeclaration).Specifiers[0].Kind)
	assert.Empty(t, prog.Body[2].(*ast.ImportDeclaration).Specifiers)

	named := prog.Body[3].(*ast.ExportNamedDeclaration)
	assert.IsType(t, &ast.VariableDeclaration{}, named.Declaration)

	def := prog.Body[4].(*ast.ExportDefaultDeclaration)
	cls := def.Declaration.(*ast.ClassDeclaration)
	assert.Nil(t, cls.ID)

	spec := prog.Body[5].(*ast.ExportNamedDeclaration).Specifiers[0]
	assert.Equal(t, "x", spec.Local.Name)
	assert.Equal(t, "y", spec.Exported.Name)

	assert.Nil(t, prog.Body[6].(*ast.ExportAllDeclaration).Exported)
	assert.Equal(t, "named", prog.Body[7].(*ast.ExportAllDeclaration).Exported.Name)
}

func TestParseExpressions(t *testing.T) {
	prog := parse(t, "a = b ? c : d ?? e;\nconst f = async (x, ...rest) => await x;\nconst {p, q: [r = 1]} = obj;\n[m, n] = [n, m];\nt = tag`x${y}z`;")
	require.Len(t, prog.Body, 5)

	assign := prog.Body[0].(*ast.ExpressionStatement).Expression.(*ast.AssignmentExpression)
	cond := assign.Right.(*ast.ConditionalExpression)
	assert.Equal(t, "??", cond.Alternate.(*ast.BinaryExpression).Operator)

	arrow := prog.Body[1].(*ast.VariableDeclaration).Declarations[0].Init.(*ast.ArrowFunctionExpression)
	assert.True(t, arrow.Async)
	require.Len(t, arrow.Params, 2)
	assert.IsType(t, &ast.RestElement{}, arrow.Params[1])
	assert.IsType(t, &ast.AwaitExpression{}, arrow.Expression)

	pat := prog.Body[2].(*ast.VariableDeclaration).Declarations[0].ID.(*ast.ObjectPattern)
	assert.Equal(t, []string{"p", "r"}, ast.BoundNames(pat))

	swap := prog.Body[3].(*ast.ExpressionStatement).Expression.(*ast.AssignmentExpression)
	assert.IsType(t, &ast.ArrayPattern{}, swap.Left)

	tagged := prog.Body[4].(*ast.ExpressionStatement).Expression.(*ast.AssignmentExpression).Right.(*ast.TaggedTemplateExpression)
	assert.Equal(t, []string{"x", "z"}, tagged.Quasi.Quasis)
}

func TestParsePrecedence(t *testing.T) {
	prog := parse(t, "x = 1 + 2 * 3 ** 2 ** 1;")
	add := prog.Body[0].(*ast.ExpressionStatement).Expression.(*ast.AssignmentExpression).Right.(*ast.BinaryExpression)
	assert.Equal(t, "+", add.Operator)
	mul := add.Right.(*ast.BinaryExpression)
	assert.Equal(t, "*", mul.Operator)
	pow := mul.Right.(*ast.BinaryExpression)
	assert.Equal(t, "**", pow.Operator)
	assert.IsType(t, &ast.BinaryExpression{}, pow.Right, "exponent is right associative")
}

func TestParseASI(t *testing.T) {
	prog := parse(t, "let a = 1\nlet b = a\nreturnValue()\n")
	assert.Len(t, prog.Body, 3)
}

func TestParseComments(t *testing.T) {
	prog := parse(t, "// leading\nfoo();\n")
	require.Len(t, prog.Body[0].Base().Comments, 1)
	assert.Equal(t, "// leading", prog.Body[0].Base().Comments[0].Text)
}

func TestParseTopLevelAwait(t *testing.T) {
	prog := parse(t, "await ready;")
	assert.IsType(t, &ast.AwaitExpression{}, prog.Body[0].(*ast.ExpressionStatement).Expression)

	script := parseScript(t, "await(ready);")
	assert.IsType(t, &ast.CallExpression{}, script.Body[0].(*ast.ExpressionStatement).Expression)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"missing paren", "if (x {}", "unexpected token {"},
		{"unterminated block", "function f() {", "unexpected end of input"},
		{"export using", "export using x = y;", "using declarations cannot be exported directly"},
		{"bad assignment", "f() = 1;", "invalid assignment target"},
		{"try without handler", "try {}", "expected catch or finally"},
		{"using as if body", "if (x) using a = r();", "using declarations are not allowed in single-statement context"},
		{"await using as else body", "if (x) {} else await using a = r();", "await using declarations are not allowed in single-statement context"},
		{"using as while body", "while (x) using a = r();", "using declarations are not allowed in single-statement context"},
		{"using as label body", "lbl: using a = r();", "using declarations are not allowed in single-statement context"},
		{"using as for of body", "for (const y of ys) using a = r();", "using declarations are not allowed in single-statement context"},
		{"const as do body", "do const a = 1; while (x);", "const declarations are not allowed in single-statement context"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.js", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), "bad.js:1:")
		})
	}
}

func TestParseVarAsStatementBody(t *testing.T) {
	prog := parse(t, "if (x) var a = 1;")
	assert.IsType(t, &ast.VariableDeclaration{}, prog.Body[0].(*ast.IfStatement).Consequent)
}

func TestParseImportOutsideModule(t *testing.T) {
	p := &Parser{SourceType: ast.SourceScript}
	_, err := p.Parse("s.js", []byte(`import x from "y";`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top level of a module")
}
