package lower

import (
	"fmt"

	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/dispose"
)

// catchParam is the binding of the generated catch clause. It is only read
// by the handler the lowering emits, so it never needs to be unique.
const catchParam = "_"

// protocol emits the calls of one disposal runtime shape. It is selected
// once per module from Options.Protocol.
type protocol interface {
	// open allocates the identifiers a scope needs when its first
	// resource declaration is found.
	open(sc *scope)
	// register routes a resource initializer through the runtime.
	register(sc *scope, init ast.Expr, mode Mode) ast.Expr
	// close runs after the last resource declaration of the region.
	close(sc *scope)
	// wrap builds the try statement guarding body.
	wrap(sc *scope, body []ast.Statement) *ast.TryStatement
	supportsSwitch() bool
}

type env struct {
	uids    *ast.UIDs
	helpers Helpers
	f       *ast.Factory
}

func newProtocol(p dispose.Protocol, e env) (protocol, error) {
	switch p {
	case dispose.ProtocolContext:
		return contextProtocol{e}, nil
	case dispose.ProtocolStack:
		return stackProtocol{e}, nil
	}
	return nil, fmt.Errorf("unknown disposal protocol %s", p)
}

// contextProtocol targets the single context object:
//
//	try {
//	  var _usingCtx = _usingCtx2();
//	  const x = _usingCtx.u(init);
//	} catch (_) {
//	  _usingCtx.e = _;
//	} finally {
//	  _usingCtx.d();
//	}
type contextProtocol struct{ env }

func (p contextProtocol) open(sc *scope) {
	sc.ctx = p.uids.GenerateIdent(dispose.HelperUsingCtx)
	sc.factory = p.helpers.Helper(dispose.HelperUsingCtx)
}

func (p contextProtocol) register(sc *scope, init ast.Expr, mode Mode) ast.Expr {
	method := dispose.MethodUse
	if mode == ModeAsync {
		method = dispose.MethodUseAsync
	}
	return p.f.MethodCall(ast.Clone(sc.ctx), method, init)
}

func (contextProtocol) close(*scope) {}

func (p contextProtocol) wrap(sc *scope, body []ast.Statement) *ast.TryStatement {
	f := p.f
	var teardown ast.Expr = f.MethodCall(ast.Clone(sc.ctx), dispose.MethodDispose)
	if sc.async {
		teardown = f.Await(teardown)
	}
	block := append([]ast.Statement{f.VarDecl(ast.KindVar, sc.ctx, f.Call(sc.factory))}, body...)
	return f.TryCatchFinally(
		block,
		f.Ident(catchParam),
		[]ast.Statement{f.ExprStmt(f.Assign(f.Member(ast.Clone(sc.ctx), dispose.FieldError), f.Ident(catchParam)))},
		[]ast.Statement{f.ExprStmt(teardown)},
	)
}

func (contextProtocol) supportsSwitch() bool { return dispose.ProtocolContext.SupportsSwitch() }

// stackProtocol targets the explicit stack runtime:
//
//	try {
//	  var _stack = [];
//	  var _hasError = false;
//	  const x = _using(_stack, init);
//	} catch (_) {
//	  var _error = _;
//	  var _hasError = true;
//	} finally {
//	  _dispose(_stack, _error, _hasError);
//	}
//
// The flag is cleared on entry because the var bindings outlive one pass
// through a loop body.
type stackProtocol struct{ env }

func (p stackProtocol) open(sc *scope) {
	sc.ctx = p.uids.GenerateIdent("stack")
}

func (p stackProtocol) register(sc *scope, init ast.Expr, mode Mode) ast.Expr {
	if sc.use == nil {
		sc.use = p.helpers.Helper(dispose.HelperUsing)
	}
	args := []ast.Expr{ast.Clone(sc.ctx), init}
	if mode == ModeAsync {
		args = append(args, p.f.Bool(true))
	}
	return p.f.Call(ast.Clone(sc.use), args...)
}

func (p stackProtocol) close(sc *scope) {
	sc.errID = p.uids.GenerateIdent("error")
	sc.hasErrID = p.uids.GenerateIdent("hasError")
	sc.factory = p.helpers.Helper(dispose.HelperDispose)
}

func (p stackProtocol) wrap(sc *scope, body []ast.Statement) *ast.TryStatement {
	f := p.f
	var teardown ast.Expr = f.Call(sc.factory, ast.Clone(sc.ctx), sc.errID, sc.hasErrID)
	if sc.async {
		teardown = f.Await(teardown)
	}
	block := append([]ast.Statement{
		f.VarDecl(ast.KindVar, sc.ctx, &ast.ArrayExpression{Elements: []ast.Expr{}}),
		f.VarDecl(ast.KindVar, ast.Clone(sc.hasErrID), f.Bool(false)),
	}, body...)
	return f.TryCatchFinally(
		block,
		f.Ident(catchParam),
		[]ast.Statement{
			f.VarDecl(ast.KindVar, ast.Clone(sc.errID), f.Ident(catchParam)),
			f.VarDecl(ast.KindVar, ast.Clone(sc.hasErrID), f.Bool(true)),
		},
		[]ast.Statement{f.ExprStmt(teardown)},
	)
}

func (stackProtocol) supportsSwitch() bool { return dispose.ProtocolStack.SupportsSwitch() }
