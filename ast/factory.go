package ast

// Factory centralizes AST node creation for transform passes.
// Nodes it builds carry no source position; callers that replace an
// existing node copy its position with Inherit.
type Factory struct{}

// NewFactory returns a new Factory.
func NewFactory() *Factory { return &Factory{} }

// Ident creates an Identifier.
func (f *Factory) Ident(name string) *Identifier { return &Identifier{Name: name} }

// String creates a StringLiteral without source quoting.
func (f *Factory) String(value string) *StringLiteral { return &StringLiteral{Value: value} }

// Bool creates a BooleanLiteral.
func (f *Factory) Bool(v bool) *BooleanLiteral { return &BooleanLiteral{Value: v} }

// Call creates callee(args...).
func (f *Factory) Call(callee Expr, args ...Expr) *CallExpression {
	if args == nil {
		args = []Expr{}
	}
	return &CallExpression{Callee: callee, Arguments: args}
}

// Member creates object.name.
func (f *Factory) Member(object Expr, name string) *MemberExpression {
	return &MemberExpression{Object: object, Property: f.Ident(name)}
}

// MethodCall creates object.name(args...).
func (f *Factory) MethodCall(object Expr, name string, args ...Expr) *CallExpression {
	return f.Call(f.Member(object, name), args...)
}

// Await creates await argument.
func (f *Factory) Await(argument Expr) *AwaitExpression {
	return &AwaitExpression{Argument: argument}
}

// Assign creates left = right.
func (f *Factory) Assign(left, right Expr) *AssignmentExpression {
	return &AssignmentExpression{Operator: "=", Left: left, Right: right}
}

// ExprStmt wraps an expression in a statement.
func (f *Factory) ExprStmt(e Expr) *ExpressionStatement {
	return &ExpressionStatement{Expression: e}
}

// VarDecl creates <kind> id = init.
func (f *Factory) VarDecl(kind DeclKind, id Pattern, init Expr) *VariableDeclaration {
	return &VariableDeclaration{
		Kind:         kind,
		Declarations: []*VariableDeclarator{{ID: id, Init: init}},
	}
}

// Block creates { body }.
func (f *Factory) Block(body ...Statement) *BlockStatement {
	if body == nil {
		body = []Statement{}
	}
	return &BlockStatement{Body: body}
}

// TryCatchFinally creates try { block } catch (param) { handler } finally { finalizer }.
func (f *Factory) TryCatchFinally(block []Statement, param *Identifier, handler, finalizer []Statement) *TryStatement {
	return &TryStatement{
		Block:     f.Block(block...),
		Handler:   &CatchClause{Param: param, Body: f.Block(handler...)},
		Finalizer: f.Block(finalizer...),
	}
}

// ClassExpr turns a class declaration into an anonymous class expression,
// dropping its name.
func (f *Factory) ClassExpr(decl *ClassDeclaration) *ClassExpression {
	c := decl.Class
	c.ID = nil
	return Inherit(&ClassExpression{Class: c}, decl)
}

// ExportSpecifier creates local as exported.
func (f *Factory) ExportSpecifier(local, exported string) *ExportSpecifier {
	return &ExportSpecifier{Local: f.Ident(local), Exported: f.Ident(exported)}
}

// ExportNames creates export { a, b as c, ... } from local/exported pairs.
func (f *Factory) ExportNames(specs ...*ExportSpecifier) *ExportNamedDeclaration {
	if specs == nil {
		specs = []*ExportSpecifier{}
	}
	return &ExportNamedDeclaration{Specifiers: specs}
}

// Raw creates a verbatim statement.
func (f *Factory) Raw(code string) *RawStatement { return &RawStatement{Code: code} }

// --- Copy helpers ---

// ProgramFrom creates a new Program copying metadata from src with a new body.
func (f *Factory) ProgramFrom(src *Program, body []Statement) *Program {
	return &Program{
		NodeBase:   src.NodeBase,
		SourceType: src.SourceType,
		Body:       body,
		SourceFile: src.SourceFile,
	}
}
