package ast

// Inspect traverses the tree rooted at n in source order, calling fn on
// every node. If fn returns false the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	switch nd := n.(type) {
	case *Program:
		inspectStmts(nd.Body, fn)

	case *VariableDeclaration:
		for _, d := range nd.Declarations {
			Inspect(d, fn)
		}
	case *VariableDeclarator:
		Inspect(nd.ID, fn)
		Inspect(nd.Init, fn)
	case *FunctionDeclaration:
		inspectFunction(&nd.Function, fn)
	case *FunctionExpression:
		inspectFunction(&nd.Function, fn)
	case *ArrowFunctionExpression:
		for _, p := range nd.Params {
			Inspect(p, fn)
		}
		Inspect(nd.Body, fn)
		Inspect(nd.Expression, fn)
	case *ClassDeclaration:
		inspectClass(&nd.Class, fn)
	case *ClassExpression:
		inspectClass(&nd.Class, fn)
	case *MethodDefinition:
		Inspect(nd.Key, fn)
		Inspect(nd.Value, fn)
	case *PropertyDefinition:
		Inspect(nd.Key, fn)
		Inspect(nd.Value, fn)
	case *StaticBlock:
		inspectStmts(nd.Body, fn)

	case *BlockStatement:
		inspectStmts(nd.Body, fn)
	case *ExpressionStatement:
		Inspect(nd.Expression, fn)
	case *IfStatement:
		Inspect(nd.Test, fn)
		Inspect(nd.Consequent, fn)
		Inspect(nd.Alternate, fn)
	case *ForStatement:
		Inspect(nd.Init, fn)
		Inspect(nd.Test, fn)
		Inspect(nd.Update, fn)
		Inspect(nd.Body, fn)
	case *ForInStatement:
		Inspect(nd.Left, fn)
		Inspect(nd.Right, fn)
		Inspect(nd.Body, fn)
	case *ForOfStatement:
		Inspect(nd.Left, fn)
		Inspect(nd.Right, fn)
		Inspect(nd.Body, fn)
	case *WhileStatement:
		Inspect(nd.Test, fn)
		Inspect(nd.Body, fn)
	case *DoWhileStatement:
		Inspect(nd.Body, fn)
		Inspect(nd.Test, fn)
	case *ReturnStatement:
		Inspect(nd.Argument, fn)
	case *ThrowStatement:
		Inspect(nd.Argument, fn)
	case *BreakStatement:
		Inspect(nd.Label, fn)
	case *ContinueStatement:
		Inspect(nd.Label, fn)
	case *LabeledStatement:
		Inspect(nd.Label, fn)
		Inspect(nd.Body, fn)
	case *TryStatement:
		Inspect(nd.Block, fn)
		Inspect(nd.Handler, fn)
		Inspect(nd.Finalizer, fn)
	case *CatchClause:
		Inspect(nd.Param, fn)
		Inspect(nd.Body, fn)
	case *SwitchStatement:
		Inspect(nd.Discriminant, fn)
		for _, c := range nd.Cases {
			Inspect(c, fn)
		}
	case *SwitchCase:
		Inspect(nd.Test, fn)
		inspectStmts(nd.Consequent, fn)

	case *ImportDeclaration:
		for _, s := range nd.Specifiers {
			Inspect(s, fn)
		}
		Inspect(nd.Source, fn)
	case *ImportSpecifier:
		Inspect(nd.Local, fn)
	case *ExportNamedDeclaration:
		Inspect(nd.Declaration, fn)
		for _, s := range nd.Specifiers {
			Inspect(s, fn)
		}
		Inspect(nd.Source, fn)
	case *ExportSpecifier:
		Inspect(nd.Local, fn)
		Inspect(nd.Exported, fn)
	case *ExportDefaultDeclaration:
		Inspect(nd.Declaration, fn)
	case *ExportAllDeclaration:
		Inspect(nd.Exported, fn)
		Inspect(nd.Source, fn)

	case *TemplateLiteral:
		inspectExprs(nd.Expressions, fn)
	case *TaggedTemplateExpression:
		Inspect(nd.Tag, fn)
		Inspect(nd.Quasi, fn)
	case *ArrayExpression:
		inspectExprs(nd.Elements, fn)
	case *ObjectExpression:
		for _, p := range nd.Properties {
			Inspect(p, fn)
		}
	case *Property:
		Inspect(nd.Key, fn)
		Inspect(nd.Value, fn)
	case *SpreadElement:
		Inspect(nd.Argument, fn)
	case *UnaryExpression:
		Inspect(nd.Argument, fn)
	case *UpdateExpression:
		Inspect(nd.Argument, fn)
	case *BinaryExpression:
		Inspect(nd.Left, fn)
		Inspect(nd.Right, fn)
	case *AssignmentExpression:
		Inspect(nd.Left, fn)
		Inspect(nd.Right, fn)
	case *ConditionalExpression:
		Inspect(nd.Test, fn)
		Inspect(nd.Consequent, fn)
		Inspect(nd.Alternate, fn)
	case *CallExpression:
		Inspect(nd.Callee, fn)
		inspectExprs(nd.Arguments, fn)
	case *NewExpression:
		Inspect(nd.Callee, fn)
		inspectExprs(nd.Arguments, fn)
	case *MemberExpression:
		Inspect(nd.Object, fn)
		Inspect(nd.Property, fn)
	case *SequenceExpression:
		inspectExprs(nd.Expressions, fn)
	case *AwaitExpression:
		Inspect(nd.Argument, fn)
	case *YieldExpression:
		Inspect(nd.Argument, fn)

	case *ObjectPattern:
		for _, p := range nd.Properties {
			Inspect(p, fn)
		}
	case *PatternProperty:
		Inspect(nd.Key, fn)
		Inspect(nd.Value, fn)
	case *ArrayPattern:
		for _, el := range nd.Elements {
			Inspect(el, fn)
		}
	case *AssignmentPattern:
		Inspect(nd.Left, fn)
		Inspect(nd.Right, fn)
	case *RestElement:
		Inspect(nd.Argument, fn)
	}
}

func inspectStmts(stmts []Statement, fn func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, fn)
	}
}

func inspectExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, fn)
	}
}

func inspectFunction(f *Function, fn func(Node) bool) {
	Inspect(f.ID, fn)
	for _, p := range f.Params {
		Inspect(p, fn)
	}
	Inspect(f.Body, fn)
}

func inspectClass(c *Class, fn func(Node) bool) {
	Inspect(c.ID, fn)
	Inspect(c.SuperClass, fn)
	for _, m := range c.Body {
		Inspect(m, fn)
	}
}

// isNil reports whether n is nil or a typed nil pointer stored in the
// interface (fields such as Handler *CatchClause are passed as Node).
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Identifier:
		return v == nil
	case *BlockStatement:
		return v == nil
	case *CatchClause:
		return v == nil
	case *StringLiteral:
		return v == nil
	case *FunctionExpression:
		return v == nil
	case *TemplateLiteral:
		return v == nil
	case *VariableDeclaration:
		return v == nil
	}
	return false
}

// BoundNames returns the names a pattern or declaration introduces into
// its enclosing scope, in source order. Function and class declarations
// contribute their own name.
func BoundNames(n Node) []string {
	var names []string
	var collect func(Node)
	collect = func(n Node) {
		if isNil(n) {
			return
		}
		switch nd := n.(type) {
		case *Identifier:
			names = append(names, nd.Name)
		case *VariableDeclaration:
			for _, d := range nd.Declarations {
				collect(d.ID)
			}
		case *FunctionDeclaration:
			collect(nd.ID)
		case *ClassDeclaration:
			collect(nd.ID)
		case *ObjectPattern:
			for _, p := range nd.Properties {
				collect(p)
			}
		case *PatternProperty:
			collect(nd.Value)
		case *ArrayPattern:
			for _, el := range nd.Elements {
				collect(el)
			}
		case *AssignmentPattern:
			collect(nd.Left)
		case *RestElement:
			collect(nd.Argument)
		}
	}
	collect(n)
	return names
}
