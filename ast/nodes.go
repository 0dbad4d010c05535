package ast

// Node is the interface for all AST nodes.
type Node interface {
	Base() *NodeBase
}

// Statement is the interface for statement and declaration nodes.
type Statement interface {
	Node
	stmt()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// Pattern is the interface for binding targets (declarations, parameters,
// catch parameters). Identifier is both an Expr and a Pattern.
type Pattern interface {
	Node
	pattern()
}

// ClassMember is the interface for class body elements.
type ClassMember interface {
	Node
	member()
}

// SourceType distinguishes ES modules from classic scripts.
type SourceType int

const (
	SourceModule SourceType = iota
	SourceScript
)

func (s SourceType) String() string {
	if s == SourceScript {
		return "script"
	}
	return "module"
}

// Program is the root node.
type Program struct {
	NodeBase
	SourceType SourceType
	Body       []Statement
	SourceFile string // display path of the source file
}

// --- Declarations ---

// DeclKind is the binding keyword of a VariableDeclaration.
type DeclKind int

const (
	KindVar DeclKind = iota
	KindLet
	KindConst
	KindUsing
	KindAwaitUsing
)

func (k DeclKind) String() string {
	switch k {
	case KindLet:
		return "let"
	case KindConst:
		return "const"
	case KindUsing:
		return "using"
	case KindAwaitUsing:
		return "await using"
	default:
		return "var"
	}
}

// IsUsing reports whether k is one of the resource-binding kinds.
func (k DeclKind) IsUsing() bool { return k == KindUsing || k == KindAwaitUsing }

// VariableDeclaration represents var/let/const/using/await using.
type VariableDeclaration struct {
	NodeBase
	Kind         DeclKind
	Declarations []*VariableDeclarator
}

// VariableDeclarator is one binding of a VariableDeclaration.
type VariableDeclarator struct {
	NodeBase
	ID   Pattern
	Init Expr // nil when absent
}

// Function holds the parts shared by function declarations and expressions.
type Function struct {
	ID        *Identifier // nil for anonymous functions
	Params    []Pattern
	Body      *BlockStatement
	Async     bool
	Generator bool
}

// FunctionDeclaration represents function name(params) { body }.
type FunctionDeclaration struct {
	NodeBase
	Function
}

// Class holds the parts shared by class declarations and expressions.
type Class struct {
	ID         *Identifier // nil for anonymous classes
	SuperClass Expr
	Body       []ClassMember
}

// ClassDeclaration represents class Name [extends X] { ... }.
type ClassDeclaration struct {
	NodeBase
	Class
}

// MethodKind distinguishes plain methods from accessors and constructors.
type MethodKind int

const (
	MethodPlain MethodKind = iota
	MethodGet
	MethodSet
	MethodConstructor
)

// MethodDefinition is a class method.
type MethodDefinition struct {
	NodeBase
	Key      Expr
	Computed bool
	Static   bool
	Kind     MethodKind
	Value    *FunctionExpression
}

// PropertyDefinition is a class field.
type PropertyDefinition struct {
	NodeBase
	Key      Expr
	Computed bool
	Static   bool
	Value    Expr // nil when uninitialized
}

// StaticBlock is a class static initialization block.
type StaticBlock struct {
	NodeBase
	Body []Statement
}

// --- Statements ---

// BlockStatement represents { body }.
type BlockStatement struct {
	NodeBase
	Body []Statement
}

// EmptyStatement represents a lone semicolon.
type EmptyStatement struct{ NodeBase }

// DebuggerStatement represents debugger.
type DebuggerStatement struct{ NodeBase }

// ExpressionStatement is a statement that is just an expression.
type ExpressionStatement struct {
	NodeBase
	Expression Expr
}

// IfStatement represents if (test) consequent [else alternate].
type IfStatement struct {
	NodeBase
	Test       Expr
	Consequent Statement
	Alternate  Statement // nil when there is no else
}

// ForStatement represents for (init; test; update) body.
type ForStatement struct {
	NodeBase
	Init   Node // *VariableDeclaration, Expr or nil
	Test   Expr
	Update Expr
	Body   Statement
}

// ForInStatement represents for (left in right) body.
type ForInStatement struct {
	NodeBase
	Left  Node // *VariableDeclaration or Expr
	Right Expr
	Body  Statement
}

// ForOfStatement represents for [await] (left of right) body.
type ForOfStatement struct {
	NodeBase
	Left  Node // *VariableDeclaration or Expr
	Right Expr
	Body  Statement
	Await bool
}

// WhileStatement represents while (test) body.
type WhileStatement struct {
	NodeBase
	Test Expr
	Body Statement
}

// DoWhileStatement represents do body while (test).
type DoWhileStatement struct {
	NodeBase
	Body Statement
	Test Expr
}

// ReturnStatement represents return [argument].
type ReturnStatement struct {
	NodeBase
	Argument Expr // nil for bare return
}

// ThrowStatement represents throw argument.
type ThrowStatement struct {
	NodeBase
	Argument Expr
}

// BreakStatement represents break [label].
type BreakStatement struct {
	NodeBase
	Label *Identifier
}

// ContinueStatement represents continue [label].
type ContinueStatement struct {
	NodeBase
	Label *Identifier
}

// LabeledStatement represents label: body.
type LabeledStatement struct {
	NodeBase
	Label *Identifier
	Body  Statement
}

// TryStatement represents try/catch/finally.
type TryStatement struct {
	NodeBase
	Block     *BlockStatement
	Handler   *CatchClause    // nil when there is no catch
	Finalizer *BlockStatement // nil when there is no finally
}

// CatchClause is the catch part of a TryStatement.
type CatchClause struct {
	NodeBase
	Param Pattern // nil for optional catch binding
	Body  *BlockStatement
}

// SwitchStatement represents switch (discriminant) { cases }.
type SwitchStatement struct {
	NodeBase
	Discriminant Expr
	Cases        []*SwitchCase
}

// SwitchCase is one case (or default when Test is nil).
type SwitchCase struct {
	NodeBase
	Test       Expr
	Consequent []Statement
}

// RawStatement is an escape hatch for verbatim code (runtime helpers).
type RawStatement struct {
	NodeBase
	Code string
}

// --- Module items ---

// ImportKind distinguishes the three import specifier forms.
type ImportKind int

const (
	ImportNamed ImportKind = iota
	ImportDefault
	ImportNamespace
)

// ImportSpecifier is one binding of an ImportDeclaration.
type ImportSpecifier struct {
	NodeBase
	Kind     ImportKind
	Imported string // exported name in the source module (ImportNamed only)
	Local    *Identifier
}

// ImportDeclaration represents import ... from "source".
type ImportDeclaration struct {
	NodeBase
	Specifiers []*ImportSpecifier
	Source     *StringLiteral
}

// ExportSpecifier is local [as exported] inside export { ... }.
type ExportSpecifier struct {
	NodeBase
	Local    *Identifier
	Exported *Identifier
}

// ExportNamedDeclaration represents export <declaration> or
// export { specifiers } [from "source"].
type ExportNamedDeclaration struct {
	NodeBase
	Declaration Statement // nil for the specifier form
	Specifiers  []*ExportSpecifier
	Source      *StringLiteral
}

// ExportDefaultDeclaration represents export default <declaration|expr>.
// Declaration is a *FunctionDeclaration, *ClassDeclaration or an Expr.
type ExportDefaultDeclaration struct {
	NodeBase
	Declaration Node
}

// ExportAllDeclaration represents export * [as name] from "source".
type ExportAllDeclaration struct {
	NodeBase
	Exported *Identifier // nil for plain export *
	Source   *StringLiteral
}

// --- Expressions ---

// Identifier is a variable reference or binding name. Private class names
// keep their leading '#'.
type Identifier struct {
	NodeBase
	Name string
}

// NumberLiteral is a numeric literal (raw source text).
type NumberLiteral struct {
	NodeBase
	Raw string
}

// StringLiteral is a string literal. Raw keeps the original quoting when
// the node came from source; synthesized literals leave it empty.
type StringLiteral struct {
	NodeBase
	Value string
	Raw   string
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	NodeBase
	Value bool
}

// NullLiteral represents null.
type NullLiteral struct{ NodeBase }

// RegExpLiteral is a regular expression literal (raw source text).
type RegExpLiteral struct {
	NodeBase
	Raw string
}

// TemplateLiteral is `quasi ${expr} quasi ...`.
type TemplateLiteral struct {
	NodeBase
	Quasis      []string // raw text chunks, len(Quasis) == len(Expressions)+1
	Expressions []Expr
}

// TaggedTemplateExpression is tag`...`.
type TaggedTemplateExpression struct {
	NodeBase
	Tag   Expr
	Quasi *TemplateLiteral
}

// ThisExpression represents this.
type ThisExpression struct{ NodeBase }

// SuperExpression represents super.
type SuperExpression struct{ NodeBase }

// ArrayExpression is [elem, ...]. Holes are nil.
type ArrayExpression struct {
	NodeBase
	Elements []Expr
}

// PropertyKind distinguishes init properties from accessors.
type PropertyKind int

const (
	PropertyInit PropertyKind = iota
	PropertyGet
	PropertySet
)

// Property is key: value inside an object literal.
type Property struct {
	NodeBase
	Key       Expr
	Value     Expr
	Kind      PropertyKind
	Computed  bool
	Shorthand bool
	Method    bool
}

// ObjectExpression is { properties }. Elements are *Property or *SpreadElement.
type ObjectExpression struct {
	NodeBase
	Properties []Node
}

// SpreadElement is ...argument in arrays, objects and calls.
type SpreadElement struct {
	NodeBase
	Argument Expr
}

// FunctionExpression represents function [name](params) { body }.
type FunctionExpression struct {
	NodeBase
	Function
}

// ArrowFunctionExpression represents (params) => body. Exactly one of Body
// and Expression is set.
type ArrowFunctionExpression struct {
	NodeBase
	Params     []Pattern
	Body       *BlockStatement
	Expression Expr
	Async      bool
}

// ClassExpression represents class [Name] { ... } in expression position.
type ClassExpression struct {
	NodeBase
	Class
}

// UnaryExpression represents op argument (!, -, typeof, void, delete...).
type UnaryExpression struct {
	NodeBase
	Operator string
	Argument Expr
}

// UpdateExpression represents ++x, x++, --x, x--.
type UpdateExpression struct {
	NodeBase
	Operator string
	Prefix   bool
	Argument Expr
}

// BinaryExpression represents left op right, including logical operators.
type BinaryExpression struct {
	NodeBase
	Operator string
	Left     Expr
	Right    Expr
}

// AssignmentExpression represents left op= right.
type AssignmentExpression struct {
	NodeBase
	Operator string
	Left     Expr
	Right    Expr
}

// ConditionalExpression represents test ? consequent : alternate.
type ConditionalExpression struct {
	NodeBase
	Test       Expr
	Consequent Expr
	Alternate  Expr
}

// CallExpression represents callee(args...).
type CallExpression struct {
	NodeBase
	Callee    Expr
	Arguments []Expr
	Optional  bool // callee?.(args)
}

// NewExpression represents new callee(args...).
type NewExpression struct {
	NodeBase
	Callee    Expr
	Arguments []Expr
}

// MemberExpression represents object.property or object[property].
type MemberExpression struct {
	NodeBase
	Object   Expr
	Property Expr
	Computed bool
	Optional bool // object?.property
}

// SequenceExpression represents a, b, c.
type SequenceExpression struct {
	NodeBase
	Expressions []Expr
}

// AwaitExpression represents await argument.
type AwaitExpression struct {
	NodeBase
	Argument Expr
}

// YieldExpression represents yield [*] [argument].
type YieldExpression struct {
	NodeBase
	Argument Expr
	Delegate bool
}

// --- Patterns ---

// ObjectPattern is { a, b: c, ...rest } in binding position.
// Elements are *PatternProperty or *RestElement.
type ObjectPattern struct {
	NodeBase
	Properties []Node
}

// PatternProperty is key: value inside an ObjectPattern.
type PatternProperty struct {
	NodeBase
	Key       Expr
	Value     Pattern
	Computed  bool
	Shorthand bool
}

// ArrayPattern is [a, , b, ...rest] in binding position. Holes are nil.
type ArrayPattern struct {
	NodeBase
	Elements []Pattern
}

// AssignmentPattern is target = default.
type AssignmentPattern struct {
	NodeBase
	Left  Pattern
	Right Expr
}

// RestElement is ...argument in binding position.
type RestElement struct {
	NodeBase
	Argument Pattern
}

// --- Marker methods ---

func (*VariableDeclaration) stmt()      {}
func (*FunctionDeclaration) stmt()      {}
func (*ClassDeclaration) stmt()         {}
func (*BlockStatement) stmt()           {}
func (*EmptyStatement) stmt()           {}
func (*DebuggerStatement) stmt()        {}
func (*ExpressionStatement) stmt()      {}
func (*IfStatement) stmt()              {}
func (*ForStatement) stmt()             {}
func (*ForInStatement) stmt()           {}
func (*ForOfStatement) stmt()           {}
func (*WhileStatement) stmt()           {}
func (*DoWhileStatement) stmt()         {}
func (*ReturnStatement) stmt()          {}
func (*ThrowStatement) stmt()           {}
func (*BreakStatement) stmt()           {}
func (*ContinueStatement) stmt()        {}
func (*LabeledStatement) stmt()         {}
func (*TryStatement) stmt()             {}
func (*SwitchStatement) stmt()          {}
func (*RawStatement) stmt()             {}
func (*ImportDeclaration) stmt()        {}
func (*ExportNamedDeclaration) stmt()   {}
func (*ExportDefaultDeclaration) stmt() {}
func (*ExportAllDeclaration) stmt()     {}

func (*MethodDefinition) member()   {}
func (*PropertyDefinition) member() {}
func (*StaticBlock) member()        {}

func (*Identifier) expr()               {}
func (*NumberLiteral) expr()            {}
func (*StringLiteral) expr()            {}
func (*BooleanLiteral) expr()           {}
func (*NullLiteral) expr()              {}
func (*RegExpLiteral) expr()            {}
func (*TemplateLiteral) expr()          {}
func (*TaggedTemplateExpression) expr() {}
func (*ThisExpression) expr()           {}
func (*SuperExpression) expr()          {}
func (*ArrayExpression) expr()          {}
func (*ObjectExpression) expr()         {}
func (*SpreadElement) expr()            {}
func (*FunctionExpression) expr()       {}
func (*ArrowFunctionExpression) expr()  {}
func (*ClassExpression) expr()          {}
func (*UnaryExpression) expr()          {}
func (*UpdateExpression) expr()         {}
func (*BinaryExpression) expr()         {}
func (*AssignmentExpression) expr()     {}
func (*ConditionalExpression) expr()    {}
func (*CallExpression) expr()           {}
func (*NewExpression) expr()            {}
func (*MemberExpression) expr()         {}
func (*SequenceExpression) expr()       {}
func (*AwaitExpression) expr()          {}
func (*YieldExpression) expr()          {}

// Destructuring assignment targets appear in expression position.
func (*ObjectPattern) expr() {}
func (*ArrayPattern) expr()  {}

func (*Identifier) pattern()        {}
func (*ObjectPattern) pattern()     {}
func (*ArrayPattern) pattern()      {}
func (*AssignmentPattern) pattern() {}
func (*RestElement) pattern()       {}
func (*MemberExpression) pattern()  {}
