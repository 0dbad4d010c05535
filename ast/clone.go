package ast

// Clone returns a deep copy of n. Every node in a tree has exactly one
// parent slot; a node that must appear in two places is cloned first.
func Clone[T Node](n T) T {
	if isNil(n) {
		return n
	}
	return cloneNode(n).(T)
}

// CloneProgram returns a deep copy of prog.
func CloneProgram(prog *Program) *Program {
	cp := *prog
	cp.NodeBase = cloneBase(prog.NodeBase)
	cp.Body = cloneStmts(prog.Body)
	return &cp
}

func cloneBase(b NodeBase) NodeBase {
	if len(b.Comments) > 0 {
		b.Comments = append([]Comment(nil), b.Comments...)
	}
	return b
}

func cloneStmts(stmts []Statement) []Statement {
	if stmts == nil {
		return nil
	}
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = cloneStmt(s)
	}
	return out
}

func cloneExprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = cloneExpr(e)
	}
	return out
}

func clonePatterns(pats []Pattern) []Pattern {
	if pats == nil {
		return nil
	}
	out := make([]Pattern, len(pats))
	for i, p := range pats {
		out[i] = clonePattern(p)
	}
	return out
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneStmt(s Statement) Statement {
	if isNil(s) {
		return nil
	}
	return cloneNode(s).(Statement)
}

func cloneExpr(e Expr) Expr {
	if isNil(e) {
		return nil
	}
	return cloneNode(e).(Expr)
}

func clonePattern(p Pattern) Pattern {
	if isNil(p) {
		return nil
	}
	return cloneNode(p).(Pattern)
}

func cloneIdent(id *Identifier) *Identifier {
	if id == nil {
		return nil
	}
	cp := *id
	cp.NodeBase = cloneBase(id.NodeBase)
	return &cp
}

func cloneBlock(b *BlockStatement) *BlockStatement {
	if b == nil {
		return nil
	}
	return &BlockStatement{NodeBase: cloneBase(b.NodeBase), Body: cloneStmts(b.Body)}
}

func cloneString(s *StringLiteral) *StringLiteral {
	if s == nil {
		return nil
	}
	cp := *s
	cp.NodeBase = cloneBase(s.NodeBase)
	return &cp
}

func cloneFunction(f Function) Function {
	f.ID = cloneIdent(f.ID)
	f.Params = clonePatterns(f.Params)
	f.Body = cloneBlock(f.Body)
	return f
}

func cloneClass(c Class) Class {
	c.ID = cloneIdent(c.ID)
	c.SuperClass = cloneExpr(c.SuperClass)
	if c.Body != nil {
		body := make([]ClassMember, len(c.Body))
		for i, m := range c.Body {
			body[i] = cloneNode(m).(ClassMember)
		}
		c.Body = body
	}
	return c
}

func cloneFuncExpr(f *FunctionExpression) *FunctionExpression {
	if f == nil {
		return nil
	}
	return &FunctionExpression{NodeBase: cloneBase(f.NodeBase), Function: cloneFunction(f.Function)}
}

func cloneTemplate(t *TemplateLiteral) *TemplateLiteral {
	if t == nil {
		return nil
	}
	return &TemplateLiteral{
		NodeBase:    cloneBase(t.NodeBase),
		Quasis:      append([]string(nil), t.Quasis...),
		Expressions: cloneExprs(t.Expressions),
	}
}

func cloneDeclaration(d *VariableDeclaration) *VariableDeclaration {
	if d == nil {
		return nil
	}
	decls := make([]*VariableDeclarator, len(d.Declarations))
	for i, v := range d.Declarations {
		decls[i] = &VariableDeclarator{NodeBase: cloneBase(v.NodeBase), ID: clonePattern(v.ID), Init: cloneExpr(v.Init)}
	}
	return &VariableDeclaration{NodeBase: cloneBase(d.NodeBase), Kind: d.Kind, Declarations: decls}
}

func cloneNode(n Node) Node {
	if isNil(n) {
		return nil
	}
	switch nd := n.(type) {
	case *Program:
		return CloneProgram(nd)

	case *VariableDeclaration:
		return cloneDeclaration(nd)
	case *VariableDeclarator:
		return &VariableDeclarator{NodeBase: cloneBase(nd.NodeBase), ID: clonePattern(nd.ID), Init: cloneExpr(nd.Init)}
	case *FunctionDeclaration:
		return &FunctionDeclaration{NodeBase: cloneBase(nd.NodeBase), Function: cloneFunction(nd.Function)}
	case *ClassDeclaration:
		return &ClassDeclaration{NodeBase: cloneBase(nd.NodeBase), Class: cloneClass(nd.Class)}
	case *MethodDefinition:
		cp := *nd
		cp.NodeBase = cloneBase(nd.NodeBase)
		cp.Key = cloneExpr(nd.Key)
		cp.Value = cloneFuncExpr(nd.Value)
		return &cp
	case *PropertyDefinition:
		cp := *nd
		cp.NodeBase = cloneBase(nd.NodeBase)
		cp.Key = cloneExpr(nd.Key)
		cp.Value = cloneExpr(nd.Value)
		return &cp
	case *StaticBlock:
		return &StaticBlock{NodeBase: cloneBase(nd.NodeBase), Body: cloneStmts(nd.Body)}

	case *BlockStatement:
		return cloneBlock(nd)
	case *EmptyStatement:
		return &EmptyStatement{NodeBase: cloneBase(nd.NodeBase)}
	case *DebuggerStatement:
		return &DebuggerStatement{NodeBase: cloneBase(nd.NodeBase)}
	case *ExpressionStatement:
		return &ExpressionStatement{NodeBase: cloneBase(nd.NodeBase), Expression: cloneExpr(nd.Expression)}
	case *IfStatement:
		return &IfStatement{
			NodeBase:   cloneBase(nd.NodeBase),
			Test:       cloneExpr(nd.Test),
			Consequent: cloneStmt(nd.Consequent),
			Alternate:  cloneStmt(nd.Alternate),
		}
	case *ForStatement:
		return &ForStatement{
			NodeBase: cloneBase(nd.NodeBase),
			Init:     cloneNode(nd.Init),
			Test:     cloneExpr(nd.Test),
			Update:   cloneExpr(nd.Update),
			Body:     cloneStmt(nd.Body),
		}
	case *ForInStatement:
		return &ForInStatement{
			NodeBase: cloneBase(nd.NodeBase),
			Left:     cloneNode(nd.Left),
			Right:    cloneExpr(nd.Right),
			Body:     cloneStmt(nd.Body),
		}
	case *ForOfStatement:
		return &ForOfStatement{
			NodeBase: cloneBase(nd.NodeBase),
			Left:     cloneNode(nd.Left),
			Right:    cloneExpr(nd.Right),
			Body:     cloneStmt(nd.Body),
			Await:    nd.Await,
		}
	case *WhileStatement:
		return &WhileStatement{NodeBase: cloneBase(nd.NodeBase), Test: cloneExpr(nd.Test), Body: cloneStmt(nd.Body)}
	case *DoWhileStatement:
		return &DoWhileStatement{NodeBase: cloneBase(nd.NodeBase), Body: cloneStmt(nd.Body), Test: cloneExpr(nd.Test)}
	case *ReturnStatement:
		return &ReturnStatement{NodeBase: cloneBase(nd.NodeBase), Argument: cloneExpr(nd.Argument)}
	case *ThrowStatement:
		return &ThrowStatement{NodeBase: cloneBase(nd.NodeBase), Argument: cloneExpr(nd.Argument)}
	case *BreakStatement:
		return &BreakStatement{NodeBase: cloneBase(nd.NodeBase), Label: cloneIdent(nd.Label)}
	case *ContinueStatement:
		return &ContinueStatement{NodeBase: cloneBase(nd.NodeBase), Label: cloneIdent(nd.Label)}
	case *LabeledStatement:
		return &LabeledStatement{NodeBase: cloneBase(nd.NodeBase), Label: cloneIdent(nd.Label), Body: cloneStmt(nd.Body)}
	case *TryStatement:
		cp := &TryStatement{NodeBase: cloneBase(nd.NodeBase), Block: cloneBlock(nd.Block), Finalizer: cloneBlock(nd.Finalizer)}
		if nd.Handler != nil {
			cp.Handler = cloneNode(nd.Handler).(*CatchClause)
		}
		return cp
	case *CatchClause:
		return &CatchClause{NodeBase: cloneBase(nd.NodeBase), Param: clonePattern(nd.Param), Body: cloneBlock(nd.Body)}
	case *SwitchStatement:
		cases := make([]*SwitchCase, len(nd.Cases))
		for i, c := range nd.Cases {
			cases[i] = cloneNode(c).(*SwitchCase)
		}
		return &SwitchStatement{NodeBase: cloneBase(nd.NodeBase), Discriminant: cloneExpr(nd.Discriminant), Cases: cases}
	case *SwitchCase:
		return &SwitchCase{NodeBase: cloneBase(nd.NodeBase), Test: cloneExpr(nd.Test), Consequent: cloneStmts(nd.Consequent)}
	case *RawStatement:
		return &RawStatement{NodeBase: cloneBase(nd.NodeBase), Code: nd.Code}

	case *ImportDeclaration:
		specs := make([]*ImportSpecifier, len(nd.Specifiers))
		for i, s := range nd.Specifiers {
			specs[i] = &ImportSpecifier{NodeBase: cloneBase(s.NodeBase), Kind: s.Kind, Imported: s.Imported, Local: cloneIdent(s.Local)}
		}
		return &ImportDeclaration{NodeBase: cloneBase(nd.NodeBase), Specifiers: specs, Source: cloneString(nd.Source)}
	case *ImportSpecifier:
		return &ImportSpecifier{NodeBase: cloneBase(nd.NodeBase), Kind: nd.Kind, Imported: nd.Imported, Local: cloneIdent(nd.Local)}
	case *ExportSpecifier:
		return &ExportSpecifier{NodeBase: cloneBase(nd.NodeBase), Local: cloneIdent(nd.Local), Exported: cloneIdent(nd.Exported)}
	case *ExportNamedDeclaration:
		var specs []*ExportSpecifier
		if nd.Specifiers != nil {
			specs = make([]*ExportSpecifier, len(nd.Specifiers))
			for i, s := range nd.Specifiers {
				specs[i] = cloneNode(s).(*ExportSpecifier)
			}
		}
		return &ExportNamedDeclaration{
			NodeBase:    cloneBase(nd.NodeBase),
			Declaration: cloneStmt(nd.Declaration),
			Specifiers:  specs,
			Source:      cloneString(nd.Source),
		}
	case *ExportDefaultDeclaration:
		return &ExportDefaultDeclaration{NodeBase: cloneBase(nd.NodeBase), Declaration: cloneNode(nd.Declaration)}
	case *ExportAllDeclaration:
		return &ExportAllDeclaration{NodeBase: cloneBase(nd.NodeBase), Exported: cloneIdent(nd.Exported), Source: cloneString(nd.Source)}

	case *Identifier:
		return cloneIdent(nd)
	case *NumberLiteral:
		return &NumberLiteral{NodeBase: cloneBase(nd.NodeBase), Raw: nd.Raw}
	case *StringLiteral:
		return cloneString(nd)
	case *BooleanLiteral:
		return &BooleanLiteral{NodeBase: cloneBase(nd.NodeBase), Value: nd.Value}
	case *NullLiteral:
		return &NullLiteral{NodeBase: cloneBase(nd.NodeBase)}
	case *RegExpLiteral:
		return &RegExpLiteral{NodeBase: cloneBase(nd.NodeBase), Raw: nd.Raw}
	case *TemplateLiteral:
		return cloneTemplate(nd)
	case *TaggedTemplateExpression:
		return &TaggedTemplateExpression{NodeBase: cloneBase(nd.NodeBase), Tag: cloneExpr(nd.Tag), Quasi: cloneTemplate(nd.Quasi)}
	case *ThisExpression:
		return &ThisExpression{NodeBase: cloneBase(nd.NodeBase)}
	case *SuperExpression:
		return &SuperExpression{NodeBase: cloneBase(nd.NodeBase)}
	case *ArrayExpression:
		return &ArrayExpression{NodeBase: cloneBase(nd.NodeBase), Elements: cloneExprs(nd.Elements)}
	case *ObjectExpression:
		return &ObjectExpression{NodeBase: cloneBase(nd.NodeBase), Properties: cloneNodes(nd.Properties)}
	case *Property:
		cp := *nd
		cp.NodeBase = cloneBase(nd.NodeBase)
		cp.Key = cloneExpr(nd.Key)
		cp.Value = cloneExpr(nd.Value)
		return &cp
	case *SpreadElement:
		return &SpreadElement{NodeBase: cloneBase(nd.NodeBase), Argument: cloneExpr(nd.Argument)}
	case *FunctionExpression:
		return cloneFuncExpr(nd)
	case *ArrowFunctionExpression:
		return &ArrowFunctionExpression{
			NodeBase:   cloneBase(nd.NodeBase),
			Params:     clonePatterns(nd.Params),
			Body:       cloneBlock(nd.Body),
			Expression: cloneExpr(nd.Expression),
			Async:      nd.Async,
		}
	case *ClassExpression:
		return &ClassExpression{NodeBase: cloneBase(nd.NodeBase), Class: cloneClass(nd.Class)}
	case *UnaryExpression:
		return &UnaryExpression{NodeBase: cloneBase(nd.NodeBase), Operator: nd.Operator, Argument: cloneExpr(nd.Argument)}
	case *UpdateExpression:
		return &UpdateExpression{NodeBase: cloneBase(nd.NodeBase), Operator: nd.Operator, Prefix: nd.Prefix, Argument: cloneExpr(nd.Argument)}
	case *BinaryExpression:
		return &BinaryExpression{NodeBase: cloneBase(nd.NodeBase), Operator: nd.Operator, Left: cloneExpr(nd.Left), Right: cloneExpr(nd.Right)}
	case *AssignmentExpression:
		return &AssignmentExpression{NodeBase: cloneBase(nd.NodeBase), Operator: nd.Operator, Left: cloneExpr(nd.Left), Right: cloneExpr(nd.Right)}
	case *ConditionalExpression:
		return &ConditionalExpression{
			NodeBase:   cloneBase(nd.NodeBase),
			Test:       cloneExpr(nd.Test),
			Consequent: cloneExpr(nd.Consequent),
			Alternate:  cloneExpr(nd.Alternate),
		}
	case *CallExpression:
		return &CallExpression{NodeBase: cloneBase(nd.NodeBase), Callee: cloneExpr(nd.Callee), Arguments: cloneExprs(nd.Arguments), Optional: nd.Optional}
	case *NewExpression:
		return &NewExpression{NodeBase: cloneBase(nd.NodeBase), Callee: cloneExpr(nd.Callee), Arguments: cloneExprs(nd.Arguments)}
	case *MemberExpression:
		return &MemberExpression{
			NodeBase: cloneBase(nd.NodeBase),
			Object:   cloneExpr(nd.Object),
			Property: cloneExpr(nd.Property),
			Computed: nd.Computed,
			Optional: nd.Optional,
		}
	case *SequenceExpression:
		return &SequenceExpression{NodeBase: cloneBase(nd.NodeBase), Expressions: cloneExprs(nd.Expressions)}
	case *AwaitExpression:
		return &AwaitExpression{NodeBase: cloneBase(nd.NodeBase), Argument: cloneExpr(nd.Argument)}
	case *YieldExpression:
		return &YieldExpression{NodeBase: cloneBase(nd.NodeBase), Argument: cloneExpr(nd.Argument), Delegate: nd.Delegate}

	case *ObjectPattern:
		return &ObjectPattern{NodeBase: cloneBase(nd.NodeBase), Properties: cloneNodes(nd.Properties)}
	case *PatternProperty:
		return &PatternProperty{
			NodeBase:  cloneBase(nd.NodeBase),
			Key:       cloneExpr(nd.Key),
			Value:     clonePattern(nd.Value),
			Computed:  nd.Computed,
			Shorthand: nd.Shorthand,
		}
	case *ArrayPattern:
		return &ArrayPattern{NodeBase: cloneBase(nd.NodeBase), Elements: clonePatterns(nd.Elements)}
	case *AssignmentPattern:
		return &AssignmentPattern{NodeBase: cloneBase(nd.NodeBase), Left: clonePattern(nd.Left), Right: cloneExpr(nd.Right)}
	case *RestElement:
		return &RestElement{NodeBase: cloneBase(nd.NodeBase), Argument: clonePattern(nd.Argument)}
	}
	panic("ast: Clone of unknown node type")
}
