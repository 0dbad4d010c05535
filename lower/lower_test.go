package lower

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/dispose"
	"github.com/rubiojr/usinglower/parser"
	"github.com/rubiojr/usinglower/printer"
)

// importHelpers keeps snapshots short: helpers become one import line each.
func importHelpers(u *ast.UIDs) Helpers { return dispose.NewImporter(u, "runtime") }

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse("test.js", []byte(src))
	require.NoError(t, err)
	return prog
}

func lowerWith(t *testing.T, src string, opts Options) string {
	t.Helper()
	if opts.NewHelpers == nil {
		opts.NewHelpers = importHelpers
	}
	out, err := Lower(parse(t, src), opts)
	require.NoError(t, err)
	return printer.Print(out)
}

func lowerSource(t *testing.T, src string) string {
	t.Helper()
	return lowerWith(t, src, Options{})
}

func lowerErr(t *testing.T, src string, opts Options) error {
	t.Helper()
	if opts.NewHelpers == nil {
		opts.NewHelpers = importHelpers
	}
	_, err := Lower(parse(t, src), opts)
	require.Error(t, err)
	return err
}

func TestLowerFunctionBody(t *testing.T) {
	got := lowerSource(t, `function f() {
  using a = open("a");
  using b = open("b");
  work(a, b);
}
`)
	want := `import _usingCtx2 from "runtime/usingCtx";
function f() {
  try {
    var _usingCtx = _usingCtx2();
    const a = _usingCtx.u(open("a"));
    const b = _usingCtx.u(open("b"));
    work(a, b);
  } catch (_) {
    _usingCtx.e = _;
  } finally {
    _usingCtx.d();
  }
}
`
	assert.Equal(t, want, got)
}

func TestLowerAsyncMode(t *testing.T) {
	t.Run("mixed", func(t *testing.T) {
		got := lowerSource(t, `async function f() {
  using a = x();
  await using b = y();
}
`)
		want := `import _usingCtx2 from "runtime/usingCtx";
async function f() {
  try {
    var _usingCtx = _usingCtx2();
    const a = _usingCtx.u(x());
    const b = _usingCtx.a(y());
  } catch (_) {
    _usingCtx.e = _;
  } finally {
    await _usingCtx.d();
  }
}
`
		assert.Equal(t, want, got)
	})

	t.Run("sync only in async function", func(t *testing.T) {
		got := lowerSource(t, "async function f() {\n  using a = x();\n  await a.flush();\n}\n")
		assert.Contains(t, got, "  } finally {\n    _usingCtx.d();\n  }")
		assert.NotContains(t, got, "await _usingCtx.d()")
	})
}

func TestLowerSharesOneContext(t *testing.T) {
	got := lowerSource(t, "function f() {\n  using a = x(), b = y();\n  await using c = z();\n}\n")
	assert.Equal(t, 1, strings.Count(got, "var _usingCtx = _usingCtx2();"))
	assert.Contains(t, got, "const a = _usingCtx.u(x()), b = _usingCtx.u(y());")
	assert.Contains(t, got, "const c = _usingCtx.a(z());")
	assert.NotContains(t, got, "_usingCtx3")
}

func TestLowerTopLevelExports(t *testing.T) {
	got := lowerSource(t, "using x = A;\nawait using y = B;\nexport { x, y };\n")
	want := `import _usingCtx2 from "runtime/usingCtx";
export { x, y };
try {
  var _usingCtx = _usingCtx2();
  var x = _usingCtx.u(A);
  var y = _usingCtx.a(B);
} catch (_) {
  _usingCtx.e = _;
} finally {
  await _usingCtx.d();
}
`
	assert.Equal(t, want, got)
}

func TestLowerTopLevelRelocation(t *testing.T) {
	got := lowerSource(t, `import fs from "fs";
using res = fs.open();
export const a = 1;
export function helper() {}
class Foo {}
function local() {}
export default compute();
`)
	want := `import _usingCtx2 from "runtime/usingCtx";
import fs from "fs";
export { a };
export function helper() {}
function local() {}
export { _default as default };
try {
  var _usingCtx = _usingCtx2();
  var res = _usingCtx.u(fs.open());
  var a = 1;
  var Foo = class {};
  var _default = compute();
} catch (_) {
  _usingCtx.e = _;
} finally {
  _usingCtx.d();
}
`
	assert.Equal(t, want, got)
}

func TestLowerDefaultExportClass(t *testing.T) {
	t.Run("named", func(t *testing.T) {
		got := lowerSource(t, "using res = open();\nexport default class Foo {\n  m() {}\n}\n")
		assert.Contains(t, got, "export { Foo as default };\ntry {")
		assert.Contains(t, got, "  var Foo = class {\n    m() {}\n  };\n")
	})

	t.Run("anonymous", func(t *testing.T) {
		got := lowerSource(t, "using res = open();\nexport default class {}\n")
		assert.Contains(t, got, "export { _default as default };\n")
		assert.Contains(t, got, "  var _default = class {};\n")
	})

	t.Run("function stays", func(t *testing.T) {
		got := lowerSource(t, "using res = open();\nexport default function main() {}\n")
		assert.Contains(t, got, "export default function main() {}\ntry {")
	})
}

func TestLowerIfBody(t *testing.T) {
	got := lowerSource(t, "if (test) {\n  using mut = start();\n}\n")
	want := `import _usingCtx2 from "runtime/usingCtx";
if (test) try {
  var _usingCtx = _usingCtx2();
  const mut = _usingCtx.u(start());
} catch (_) {
  _usingCtx.e = _;
} finally {
  _usingCtx.d();
}
`
	assert.Equal(t, want, got)
}

func TestLowerSwitch(t *testing.T) {
	got := lowerSource(t, `function f(x) {
  switch (x) {
    case 1:
      using a = open();
    case 2:
      work();
  }
}
`)
	want := `import _usingCtx2 from "runtime/usingCtx";
function f(x) {
  try {
    var _usingCtx = _usingCtx2();
    switch (x) {
      case 1:
        const a = _usingCtx.u(open());
      case 2:
        work();
    }
  } catch (_) {
    _usingCtx.e = _;
  } finally {
    _usingCtx.d();
  }
}
`
	assert.Equal(t, want, got)
}

func TestLowerStaticBlock(t *testing.T) {
	got := lowerSource(t, "class A {\n  static {\n    using x = y();\n  }\n}\n")
	want := `import _usingCtx2 from "runtime/usingCtx";
class A {
  static {
    try {
      var _usingCtx = _usingCtx2();
      const x = _usingCtx.u(y());
    } catch (_) {
      _usingCtx.e = _;
    } finally {
      _usingCtx.d();
    }
  }
}
`
	assert.Equal(t, want, got)
}

func TestLowerForOf(t *testing.T) {
	t.Run("block body", func(t *testing.T) {
		got := lowerSource(t, "for (using x of items) {\n  use(x);\n}\n")
		want := `import _usingCtx2 from "runtime/usingCtx";
for (const _x of items) try {
  var _usingCtx = _usingCtx2();
  const x = _usingCtx.u(_x);
  use(x);
} catch (_) {
  _usingCtx.e = _;
} finally {
  _usingCtx.d();
}
`
		assert.Equal(t, want, got)
	})

	t.Run("statement body", func(t *testing.T) {
		got := lowerSource(t, "for (using x of items) use(x);\n")
		assert.Contains(t, got, "for (const _x of items) try {\n  var _usingCtx = _usingCtx2();\n  const x = _usingCtx.u(_x);\n  use(x);\n}")
	})

	t.Run("for await keeps async mode", func(t *testing.T) {
		got := lowerSource(t, "async function f() {\n  for await (await using x of xs) {}\n}\n")
		want := `import _usingCtx2 from "runtime/usingCtx";
async function f() {
  for await (const _x of xs) try {
    var _usingCtx = _usingCtx2();
    const x = _usingCtx.a(_x);
  } catch (_) {
    _usingCtx.e = _;
  } finally {
    await _usingCtx.d();
  }
}
`
		assert.Equal(t, want, got)
	})

	t.Run("temporary avoids user names", func(t *testing.T) {
		got := lowerSource(t, "const _x = 1;\nfor (using x of items) {}\n")
		assert.Contains(t, got, "for (const _x2 of items) try {")
		assert.Contains(t, got, "const x = _usingCtx.u(_x2);")
	})
}

func TestLowerNestedRegions(t *testing.T) {
	got := lowerSource(t, `function f() {
  using a = x();
  {
    using b = y();
  }
}
`)
	want := `import _usingCtx2 from "runtime/usingCtx";
function f() {
  try {
    var _usingCtx = _usingCtx2();
    const a = _usingCtx.u(x());
    try {
      var _usingCtx3 = _usingCtx2();
      const b = _usingCtx3.u(y());
    } catch (_) {
      _usingCtx3.e = _;
    } finally {
      _usingCtx3.d();
    }
  } catch (_) {
    _usingCtx.e = _;
  } finally {
    _usingCtx.d();
  }
}
`
	assert.Equal(t, want, got)
}

func TestLowerNestedPlacement(t *testing.T) {
	t.Run("try block", func(t *testing.T) {
		got := lowerSource(t, "try {\n  using a = x();\n} finally {\n  done();\n}\n")
		assert.Contains(t, got, "try {\n  try {\n    var _usingCtx = _usingCtx2();\n")
		assert.Contains(t, got, "} finally {\n  done();\n}\n")
	})

	t.Run("catch clause", func(t *testing.T) {
		got := lowerSource(t, "try {} catch (err) {\n  using a = x();\n}\n")
		assert.Contains(t, got, "try {} catch (err) {\n  try {\n")
	})

	t.Run("arrow body", func(t *testing.T) {
		got := lowerSource(t, "const f = () => {\n  using a = x();\n};\n")
		assert.Contains(t, got, "const f = () => {\n  try {\n    var _usingCtx = _usingCtx2();\n    const a = _usingCtx.u(x());\n")
	})

	t.Run("method body", func(t *testing.T) {
		got := lowerSource(t, "class A {\n  m() {\n    using a = x();\n  }\n}\n")
		assert.Contains(t, got, "  m() {\n    try {\n      var _usingCtx = _usingCtx2();\n")
	})

	t.Run("labeled block", func(t *testing.T) {
		got := lowerSource(t, "outer: {\n  using a = x();\n  break outer;\n}\n")
		assert.Contains(t, got, "outer: try {\n  var _usingCtx = _usingCtx2();\n")
	})
}

func TestLowerStackProtocol(t *testing.T) {
	got := lowerWith(t, `async function f() {
  using a = x();
  await using b = y();
}
`, Options{Protocol: dispose.ProtocolStack})
	want := `import _using from "runtime/using";
import _dispose from "runtime/dispose";
async function f() {
  try {
    var _stack = [];
    var _hasError = false;
    const a = _using(_stack, x());
    const b = _using(_stack, y(), true);
  } catch (_) {
    var _error = _;
    var _hasError = true;
  } finally {
    await _dispose(_stack, _error, _hasError);
  }
}
`
	assert.Equal(t, want, got)
}

const twoSwitches = `function f(x) {
  switch (x) {
    case 1:
      using a = open();
  }
}
function g(y) {
  switch (y) {
    default:
      using b = open();
  }
}
`

func TestLowerSwitchUnsupportedByStack(t *testing.T) {
	err := lowerErr(t, twoSwitches, Options{Protocol: dispose.ProtocolStack})

	errs := Errors(err)
	require.Len(t, errs, 2, "the second function is still lowered")
	for _, e := range errs {
		assert.Equal(t, KindUnsupported, e.Kind)
		assert.Contains(t, e.Msg, "not supported by the stack disposal protocol")
	}
	assert.Equal(t, 4, errs[0].Pos.Line)
	assert.Equal(t, 7, errs[0].Pos.Column)
	assert.Equal(t, 10, errs[1].Pos.Line)
	assert.True(t, HasKind(err, KindUnsupported))
	assert.False(t, HasKind(err, KindInternal))
}

func TestLowerFailFast(t *testing.T) {
	err := lowerErr(t, twoSwitches, Options{Protocol: dispose.ProtocolStack, FailFast: true})
	assert.Len(t, Errors(err), 1)
}

func TestLowerLoopHeads(t *testing.T) {
	err := lowerErr(t, "for (using x = a(); ; ) {}\n", Options{})
	errs := Errors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, KindUnsupported, errs[0].Kind)

	err = lowerErr(t, "for (using x in obj) {}\n", Options{})
	errs = Errors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, KindInvalid, errs[0].Kind)
}

func TestLowerScriptTopLevel(t *testing.T) {
	p := &parser.Parser{SourceType: ast.SourceScript}
	prog, err := p.Parse("test.js", []byte("using x = y();\n"))
	require.NoError(t, err)

	_, err = Lower(prog, Options{NewHelpers: importHelpers})
	errs := Errors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, KindInvalid, errs[0].Kind)
}

func TestLowerScriptBlocks(t *testing.T) {
	p := &parser.Parser{SourceType: ast.SourceScript}
	prog, err := p.Parse("test.js", []byte("{\n  using x = y();\n}\n"))
	require.NoError(t, err)

	out, err := Lower(prog, Options{NewHelpers: importHelpers})
	require.NoError(t, err)
	assert.Contains(t, printer.Print(out), "try {\n  var _usingCtx = _usingCtx2();\n  const x = _usingCtx.u(y());\n")
}

func TestLowerNoResources(t *testing.T) {
	prog := parse(t, "const a = 1;\nfunction f() {\n  let b = a;\n}\n")
	out, err := Lower(prog, Options{})
	require.NoError(t, err)
	assert.Same(t, prog, out)
}

func TestLowerLeavesInputIntact(t *testing.T) {
	src := "function f() {\n  using a = x();\n}\n"
	prog := parse(t, src)
	before := printer.Print(prog)

	_, err := Lower(prog, Options{NewHelpers: importHelpers})
	require.NoError(t, err)
	assert.Equal(t, before, printer.Print(prog))
	assert.Equal(t, ast.KindUsing, prog.Body[0].(*ast.FunctionDeclaration).Body.Body[0].(*ast.VariableDeclaration).Kind)
}

func TestLowerUntouchedRegions(t *testing.T) {
	got := lowerSource(t, "function f() {\n  using a = x();\n}\nfunction g() {\n  let b = 1;\n  {\n    b++;\n  }\n}\n")
	assert.Contains(t, got, "function g() {\n  let b = 1;\n  {\n    b++;\n  }\n}\n")
	assert.Equal(t, 1, strings.Count(got, "try {"))
}

func TestLowerInlineHelper(t *testing.T) {
	out, err := Lower(parse(t, "function f() {\n  using a = x();\n}\n"), Options{})
	require.NoError(t, err)

	got := printer.Print(out)
	first, rest, ok := strings.Cut(got, "\n")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(first, "function _usingCtx2() {"), first)
	assert.True(t, strings.HasPrefix(rest, "function f() {\n  try {\n    var _usingCtx = _usingCtx2();\n"))
}

func TestLowerKeepsPositions(t *testing.T) {
	prog := parse(t, "if (ok) {\n  using a = x();\n}\n")
	block := prog.Body[0].(*ast.IfStatement).Consequent

	out, err := Lower(prog, Options{NewHelpers: importHelpers})
	require.NoError(t, err)

	try, ok := out.Body[1].(*ast.IfStatement).Consequent.(*ast.TryStatement)
	require.True(t, ok)
	assert.Equal(t, ast.SpanOf(block), try.Loc)
	assert.Equal(t, 1, try.Loc.Start.Line)
	assert.Equal(t, 9, try.Loc.Start.Column)
}

func TestLowerClassificationIsIdempotent(t *testing.T) {
	out, err := Lower(parse(t, "using x = a();\nfunction f() {\n  using y = b();\n}\n"), Options{NewHelpers: importHelpers})
	require.NoError(t, err)

	ast.Inspect(out, func(n ast.Node) bool {
		if d, ok := n.(*ast.VariableDeclaration); ok {
			assert.False(t, Classify(d, nil).IsResource)
			assert.False(t, Classify(d, NewPromotionTable()).IsResource)
		}
		return true
	})
	assert.False(t, HasResources(out))
}

func TestTransformAdapter(t *testing.T) {
	tr := Transform(Options{NewHelpers: importHelpers})
	assert.Equal(t, "lower-using", tr.Name())

	out, err := ast.Chain(tr).Transform(parse(t, "{\n  using a = x();\n}\n"))
	require.NoError(t, err)
	assert.Contains(t, printer.Print(out), "const a = _usingCtx.u(x());")
}

func TestLowerUnknownProtocol(t *testing.T) {
	_, err := Lower(parse(t, "{\n  using a = x();\n}\n"), Options{Protocol: dispose.Protocol(9)})
	assert.ErrorContains(t, err, "unknown disposal protocol")
}

func TestPlacementFor(t *testing.T) {
	block := &ast.BlockStatement{}
	tests := []struct {
		name   string
		region ast.Node
		parent ast.Node
		want   placement
	}{
		{"function", block, &ast.FunctionDeclaration{}, placeNested},
		{"arrow", block, &ast.ArrowFunctionExpression{}, placeNested},
		{"try", block, &ast.TryStatement{}, placeNested},
		{"catch", block, &ast.CatchClause{}, placeNested},
		{"program", block, &ast.Program{}, placeReplace},
		{"block", block, &ast.BlockStatement{}, placeReplace},
		{"if", block, &ast.IfStatement{}, placeReplace},
		{"for-of", block, &ast.ForOfStatement{}, placeReplace},
		{"case", block, &ast.SwitchCase{}, placeReplace},
		{"switch", &ast.SwitchStatement{}, &ast.BlockStatement{}, placeReplace},
		{"static block", &ast.StaticBlock{}, nil, placeInline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := placementFor(tt.region, tt.parent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, got.String())
		})
	}

	_, err := placementFor(block, &ast.ExpressionStatement{})
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, KindInternal, le.Kind)
	assert.Contains(t, le.Msg, "BlockStatement inside a ExpressionStatement")
}

func TestBlockUnderUnknownParentIsInternal(t *testing.T) {
	prog := parse(t, "{\n  using a = x();\n}\n")
	uids := ast.NewUIDs(prog)
	e := env{uids: uids, helpers: importHelpers(uids), f: ast.NewFactory()}
	proto, err := newProtocol(dispose.ProtocolContext, e)
	require.NoError(t, err)
	l := &lowerer{env: e, proto: proto, table: NewPromotionTable()}

	b := prog.Body[0].(*ast.BlockStatement)
	assert.Same(t, b, l.block(&ast.ExpressionStatement{}, b))
	errs := Errors(l.errs)
	require.Len(t, errs, 1)
	assert.Equal(t, KindInternal, errs[0].Kind)
}

// withUsingBody parses src and makes `using a = r();` the body of its
// first if, loop or label. The parser rejects that form, so the tree is
// built by hand.
func withUsingBody(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog := parse(t, src)
	decl := parse(t, "using a = r();").Body[0]
	done := false
	ast.Inspect(prog, func(n ast.Node) bool {
		if done {
			return false
		}
		switch n := n.(type) {
		case *ast.IfStatement:
			n.Consequent, done = decl, true
		case *ast.WhileStatement:
			n.Body, done = decl, true
		case *ast.LabeledStatement:
			n.Body, done = decl, true
		case *ast.ForOfStatement:
			n.Body, done = decl, true
		}
		return !done
	})
	require.True(t, done)
	return prog
}

var singleStatementSources = []struct {
	name string
	src  string
}{
	{"if", "function f() { if (x) g(); }"},
	{"while", "function f() { while (x) g(); }"},
	{"label", "function f() { lbl: g(); }"},
	{"for of", "function f() { for (const y of ys) g(); }"},
}

func TestLowerResourceAsStatementBody(t *testing.T) {
	for _, tt := range singleStatementSources {
		t.Run(tt.name, func(t *testing.T) {
			prog := withUsingBody(t, tt.src)
			out, err := Lower(prog, Options{NewHelpers: importHelpers})
			require.Error(t, err)
			assert.Same(t, prog, out)

			errs := Errors(err)
			require.Len(t, errs, 1)
			assert.Equal(t, KindInvalid, errs[0].Kind)
			assert.Equal(t, "using declarations are not allowed in single-statement context", errs[0].Msg)
		})
	}
}

func TestLowerReportsLeftoverResource(t *testing.T) {
	// exports never reach a disposal scope; a script cannot hold one
	p := &parser.Parser{SourceType: ast.SourceScript}
	prog, err := p.Parse("test.js", []byte("f();\n"))
	require.NoError(t, err)
	decl := parse(t, "using a = r();").Body[0]
	prog.Body = append(prog.Body, &ast.ExportNamedDeclaration{Declaration: decl})

	out, err := Lower(prog, Options{NewHelpers: importHelpers})
	require.Error(t, err)
	assert.Same(t, prog, out)
	assert.True(t, HasKind(err, KindInternal))
	assert.Contains(t, err.Error(), "using declaration was left unlowered")
}
