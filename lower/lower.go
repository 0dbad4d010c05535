// Package lower rewrites using and await using declarations into plain
// declarations guarded by try/catch/finally and calls against a disposal
// runtime.
//
// Every block, switch, static block and for-of body that directly declares
// resources becomes one disposal scope. Module top levels are first split
// into statements that must stay at the top level and a block holding the
// rest, which is then lowered like any other block.
package lower

import (
	"go.uber.org/multierr"

	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/dispose"
)

// Helpers hands out references to runtime helpers and declares them.
// dispose.Injector is the default implementation.
type Helpers interface {
	// Helper returns a fresh expression referring to the named helper.
	Helper(name string) ast.Expr
	// Declarations returns the statements defining the requested helpers.
	Declarations() ([]ast.Statement, error)
}

// Options configures Lower.
type Options struct {
	// Protocol selects the runtime shape the emitted code calls into.
	Protocol dispose.Protocol
	// NewHelpers builds the helper source for one program. Nil inlines
	// helpers with dispose.NewInjector.
	NewHelpers func(*ast.UIDs) Helpers
	// FailFast stops at the first diagnostic instead of lowering the
	// remaining regions.
	FailFast bool
}

// Lower returns prog with every resource declaration lowered. prog itself
// is never modified; when it declares no resources it is returned as is.
// Diagnostics are *Error values combined with multierr; on error the input
// program is returned.
func Lower(prog *ast.Program, opts Options) (*ast.Program, error) {
	if !HasResources(prog) {
		return prog, nil
	}
	out := ast.CloneProgram(prog)
	uids := ast.NewUIDs(out)

	var helpers Helpers
	if opts.NewHelpers != nil {
		helpers = opts.NewHelpers(uids)
	} else {
		helpers = dispose.NewInjector(uids)
	}
	e := env{uids: uids, helpers: helpers, f: ast.NewFactory()}
	proto, err := newProtocol(opts.Protocol, e)
	if err != nil {
		return prog, err
	}
	l := &lowerer{env: e, opts: opts, proto: proto, table: NewPromotionTable()}

	if out.SourceType == ast.SourceModule {
		l.normalizeTopLevel(out)
	} else if d := topLevelResource(out); d != nil {
		l.report(errorAt(KindInvalid, d, "%s declarations are not allowed at the top level of a script", d.Kind))
	}
	l.stmts(out, out.Body)

	if l.errs != nil {
		return prog, l.errs
	}
	if l.table.Len() > 0 {
		return prog, &Error{Kind: KindInternal, Msg: "promoted top-level declarations were not lowered"}
	}
	if d := firstResource(out); d != nil {
		return prog, errorAt(KindInternal, d, "%s declaration was left unlowered", d.Kind)
	}
	decls, err := helpers.Declarations()
	if err != nil {
		return prog, err
	}
	out.Body = append(decls, out.Body...)
	return out, nil
}

// Transform adapts Lower to the ast.Transform interface.
func Transform(opts Options) ast.Transform {
	return ast.TransformFunc{
		N: "lower-using",
		F: func(prog *ast.Program) (*ast.Program, error) { return Lower(prog, opts) },
	}
}

// HasResources reports whether prog declares any resource.
func HasResources(prog *ast.Program) bool {
	return firstResource(prog) != nil
}

func firstResource(root ast.Node) *ast.VariableDeclaration {
	var found *ast.VariableDeclaration
	ast.Contains(root, func(n ast.Node) bool {
		if d, ok := n.(*ast.VariableDeclaration); ok && d.Kind.IsUsing() {
			found = d
		}
		return found != nil
	})
	return found
}

// lowerer holds the state of lowering one program.
type lowerer struct {
	env
	opts  Options
	proto protocol
	table *PromotionTable
	errs  error
	stop  bool
}

func (l *lowerer) report(err error) {
	l.errs = multierr.Append(l.errs, err)
	if l.opts.FailFast {
		l.stop = true
	}
}

// stmts lowers each statement of list in place. parent owns list.
func (l *lowerer) stmts(parent ast.Node, list []ast.Statement) {
	for i, s := range list {
		if l.stop {
			return
		}
		list[i] = l.stmt(parent, s)
	}
}

// stmt lowers s and returns the statement that takes its place.
func (l *lowerer) stmt(parent ast.Node, s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case *ast.BlockStatement:
		return l.block(parent, n)
	case *ast.SwitchStatement:
		return l.switchStmt(n)
	case *ast.VariableDeclaration:
		l.nested(n)
	case *ast.FunctionDeclaration:
		l.function(n, &n.Function)
	case *ast.ClassDeclaration:
		l.class(&n.Class)
	case *ast.ExpressionStatement:
		l.nested(n.Expression)
	case *ast.ReturnStatement:
		l.nested(n.Argument)
	case *ast.ThrowStatement:
		l.nested(n.Argument)
	case *ast.IfStatement:
		l.nested(n.Test)
		n.Consequent = l.sub(n, n.Consequent)
		if n.Alternate != nil {
			n.Alternate = l.sub(n, n.Alternate)
		}
	case *ast.ForStatement:
		if err := headError(n); err != nil {
			l.report(err)
			return s
		}
		l.nested(n.Init)
		l.nested(n.Test)
		l.nested(n.Update)
		n.Body = l.sub(n, n.Body)
	case *ast.ForInStatement:
		if err := headError(n); err != nil {
			l.report(err)
			return s
		}
		l.nested(n.Left)
		l.nested(n.Right)
		n.Body = l.sub(n, n.Body)
	case *ast.ForOfStatement:
		l.forOf(n)
	case *ast.WhileStatement:
		l.nested(n.Test)
		n.Body = l.sub(n, n.Body)
	case *ast.DoWhileStatement:
		n.Body = l.sub(n, n.Body)
		l.nested(n.Test)
	case *ast.LabeledStatement:
		n.Body = l.sub(n, n.Body)
	case *ast.TryStatement:
		n.Block = l.body(n, n.Block)
		if h := n.Handler; h != nil {
			l.nested(h.Param)
			h.Body = l.body(h, h.Body)
		}
		if n.Finalizer != nil {
			n.Finalizer = l.body(n, n.Finalizer)
		}
	case *ast.ExportNamedDeclaration:
		if n.Declaration != nil {
			n.Declaration = l.stmt(n, n.Declaration)
		}
	case *ast.ExportDefaultDeclaration:
		switch d := n.Declaration.(type) {
		case *ast.FunctionDeclaration:
			l.function(d, &d.Function)
		case *ast.ClassDeclaration:
			l.class(&d.Class)
		default:
			l.nested(d)
		}
	}
	return s
}

// sub lowers the single statement body of owner. No disposal scope can be
// opened there, so a resource declaration in that position is reported.
func (l *lowerer) sub(owner ast.Node, s ast.Statement) ast.Statement {
	if d := singleStatementResource(s); d != nil {
		l.report(singleStatementError(d))
		return s
	}
	return l.stmt(owner, s)
}

func singleStatementResource(s ast.Statement) *ast.VariableDeclaration {
	if d, ok := s.(*ast.VariableDeclaration); ok && d.Kind.IsUsing() {
		return d
	}
	return nil
}

// statementBodies returns the single statement bodies governed by n.
func statementBodies(n ast.Node) []ast.Statement {
	switch n := n.(type) {
	case *ast.IfStatement:
		if n.Alternate != nil {
			return []ast.Statement{n.Consequent, n.Alternate}
		}
		return []ast.Statement{n.Consequent}
	case *ast.ForStatement:
		return []ast.Statement{n.Body}
	case *ast.ForInStatement:
		return []ast.Statement{n.Body}
	case *ast.ForOfStatement:
		return []ast.Statement{n.Body}
	case *ast.WhileStatement:
		return []ast.Statement{n.Body}
	case *ast.DoWhileStatement:
		return []ast.Statement{n.Body}
	case *ast.LabeledStatement:
		return []ast.Statement{n.Body}
	}
	return nil
}

func singleStatementError(d *ast.VariableDeclaration) *Error {
	return errorAt(KindInvalid, d, "%s declarations are not allowed in single-statement context", d.Kind)
}

// block lowers a block region and returns what replaces it in parent.
func (l *lowerer) block(parent ast.Node, b *ast.BlockStatement) ast.Statement {
	sc := l.rewrite(b, b.Body)
	l.stmts(b, b.Body)
	if sc == nil {
		return b
	}
	pl, err := placementFor(b, parent)
	if err != nil {
		l.report(err)
		return b
	}
	try := l.wrap(sc, b, b.Body)
	if pl == placeNested {
		return l.f.Block(try)
	}
	return try
}

// body lowers a block that must stay a block, such as a function body or
// the parts of a try statement.
func (l *lowerer) body(parent ast.Node, b *ast.BlockStatement) *ast.BlockStatement {
	if b == nil {
		return nil
	}
	out := l.block(parent, b)
	nb, ok := out.(*ast.BlockStatement)
	if !ok {
		l.report(errorAt(KindInternal, b, "body of a %s lowered to a %s", nodeName(parent), nodeName(out)))
		return b
	}
	return nb
}

// switchStmt lowers the cases of sw as a single region: one scope spans
// every case so fallthrough keeps declaration order.
func (l *lowerer) switchStmt(sw *ast.SwitchStatement) ast.Statement {
	l.nested(sw.Discriminant)
	if !l.proto.supportsSwitch() {
		if d := firstCaseResource(sw, l.table); d != nil {
			l.report(errorAt(KindUnsupported, d, "%s declarations in switch cases are not supported by the %s disposal protocol", d.Kind, l.opts.Protocol))
			return sw
		}
	}
	lists := make([][]ast.Statement, len(sw.Cases))
	for i, c := range sw.Cases {
		lists[i] = c.Consequent
	}
	sc := l.rewrite(sw, lists...)
	for _, c := range sw.Cases {
		l.nested(c.Test)
		l.stmts(c, c.Consequent)
	}
	if sc == nil {
		return sw
	}
	return l.wrap(sc, sw, []ast.Statement{sw})
}

func firstCaseResource(sw *ast.SwitchStatement, table *PromotionTable) *ast.VariableDeclaration {
	for _, c := range sw.Cases {
		for _, s := range c.Consequent {
			if d, ok := s.(*ast.VariableDeclaration); ok && Classify(d, table).IsResource {
				return d
			}
		}
	}
	return nil
}

func (l *lowerer) staticBlock(sb *ast.StaticBlock) {
	sc := l.rewrite(sb, sb.Body)
	l.stmts(sb, sb.Body)
	if sc == nil {
		return
	}
	sb.Body = []ast.Statement{l.wrap(sc, sb, sb.Body)}
}

func (l *lowerer) forOf(n *ast.ForOfStatement) {
	l.nested(n.Right)
	if decl, ok := n.Left.(*ast.VariableDeclaration); ok {
		if c := Classify(decl, l.table); c.IsResource {
			l.desegment(n, decl, c.Mode)
		} else {
			l.nested(decl)
		}
	} else {
		l.nested(n.Left)
	}
	n.Body = l.sub(n, n.Body)
}

// function lowers the body of fn, which belongs to owner.
func (l *lowerer) function(owner ast.Node, fn *ast.Function) {
	for _, p := range fn.Params {
		l.nested(p)
	}
	fn.Body = l.body(owner, fn.Body)
}

func (l *lowerer) arrow(fn *ast.ArrowFunctionExpression) {
	for _, p := range fn.Params {
		l.nested(p)
	}
	if fn.Body != nil {
		fn.Body = l.body(fn, fn.Body)
		return
	}
	l.nested(fn.Expression)
}

func (l *lowerer) class(c *ast.Class) {
	l.nested(c.SuperClass)
	for _, m := range c.Body {
		switch m := m.(type) {
		case *ast.MethodDefinition:
			l.nested(m.Key)
			l.function(m.Value, &m.Value.Function)
		case *ast.PropertyDefinition:
			l.nested(m.Key)
			l.nested(m.Value)
		case *ast.StaticBlock:
			l.staticBlock(m)
		}
	}
}

// nested lowers the functions and classes found inside an expression,
// pattern or declaration.
func (l *lowerer) nested(n ast.Node) {
	ast.Inspect(n, func(node ast.Node) bool {
		switch fn := node.(type) {
		case *ast.FunctionExpression:
			l.function(fn, &fn.Function)
			return false
		case *ast.ArrowFunctionExpression:
			l.arrow(fn)
			return false
		case *ast.ClassExpression:
			l.class(&fn.Class)
			return false
		}
		return true
	})
}

// usingHead returns the resource declaration in the head of a for or
// for-in loop, or nil.
func usingHead(n ast.Node) *ast.VariableDeclaration {
	var head ast.Node
	switch n := n.(type) {
	case *ast.ForStatement:
		head = n.Init
	case *ast.ForInStatement:
		head = n.Left
	}
	d, ok := head.(*ast.VariableDeclaration)
	if !ok || d == nil || !d.Kind.IsUsing() {
		return nil
	}
	return d
}

// headError reports a resource declaration in the head of a loop that
// cannot dispose it.
func headError(n ast.Node) *Error {
	d := usingHead(n)
	if d == nil {
		return nil
	}
	if _, ok := n.(*ast.ForInStatement); ok {
		return errorAt(KindInvalid, d, "%s declarations are not allowed in for-in heads", d.Kind)
	}
	return errorAt(KindUnsupported, d, "%s declarations in for loop heads are not supported", d.Kind)
}
