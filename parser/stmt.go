package parser

import (
	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/scanner"
)

// parseStatement parses a statement or declaration. top is set for
// program-level statements, where import/export are permitted.
func (p *parser) parseStatement(top bool) ast.Statement {
	start := p.pos
	s := p.parseStatementInner(top)
	p.attachComments(s, start)
	if !s.Base().Loc.IsValid() {
		finish(p, s, start)
	}
	return s
}

// parseBody parses the single statement governed by if, a loop or a
// label. Only var declarations are allowed there.
func (p *parser) parseBody() ast.Statement {
	if kind, ok := p.declarationStart(false); ok && kind != ast.KindVar {
		p.errorAt(p.tok(), "%s declarations are not allowed in single-statement context", kind)
	}
	return p.parseStatement(false)
}

func (p *parser) parseStatementInner(top bool) ast.Statement {
	start := p.pos
	t := p.tok()

	if kind, ok := p.declarationStart(false); ok {
		d := p.parseVarDecl(kind)
		p.semicolon()
		return finish(p, d, start)
	}

	if t.Kind == scanner.Punct {
		switch t.Value {
		case "{":
			return p.parseBlock()
		case ";":
			p.next()
			return finish(p, &ast.EmptyStatement{}, start)
		}
	}

	if t.Kind == scanner.Ident {
		switch t.Value {
		case "function":
			return p.parseFunctionDecl(false, start)
		case "async":
			if n := p.peek(1); n.Is("function") && !n.NewlineBefore {
				p.next()
				return p.parseFunctionDecl(true, start)
			}
		case "class":
			return p.parseClassDecl(start)
		case "if":
			return p.parseIf()
		case "for":
			return p.parseFor()
		case "while":
			p.next()
			test := p.parseParenExpr()
			body := p.parseBody()
			return finish(p, &ast.WhileStatement{Test: test, Body: body}, start)
		case "do":
			p.next()
			body := p.parseBody()
			p.expect("while")
			test := p.parseParenExpr()
			p.eat(";")
			return finish(p, &ast.DoWhileStatement{Body: body, Test: test}, start)
		case "return":
			p.next()
			ret := &ast.ReturnStatement{}
			if !p.is(";") && !p.is("}") && !p.at(scanner.EOF) && !p.tok().NewlineBefore {
				ret.Argument = p.parseExpression()
			}
			p.semicolon()
			return finish(p, ret, start)
		case "throw":
			p.next()
			if p.tok().NewlineBefore {
				p.errorAt(p.tok(), "illegal newline after throw")
			}
			arg := p.parseExpression()
			p.semicolon()
			return finish(p, &ast.ThrowStatement{Argument: arg}, start)
		case "break", "continue":
			p.next()
			var label *ast.Identifier
			if p.at(scanner.Ident) && !p.tok().NewlineBefore {
				label = p.expectIdent()
			}
			p.semicolon()
			if t.Value == "break" {
				return finish(p, &ast.BreakStatement{Label: label}, start)
			}
			return finish(p, &ast.ContinueStatement{Label: label}, start)
		case "try":
			return p.parseTry()
		case "switch":
			return p.parseSwitch()
		case "debugger":
			p.next()
			p.semicolon()
			return finish(p, &ast.DebuggerStatement{}, start)
		case "import":
			if n := p.peek(1); !n.Is("(") && !n.Is(".") {
				if !top || !p.module {
					p.errorAt(t, "import declarations may only appear at the top level of a module")
				}
				return p.parseImport()
			}
		case "export":
			if !top || !p.module {
				p.errorAt(t, "export declarations may only appear at the top level of a module")
			}
			return p.parseExport()
		}
		if p.peek(1).Is(":") {
			label := p.expectIdent()
			p.next()
			body := p.parseBody()
			return finish(p, &ast.LabeledStatement{Label: label, Body: body}, start)
		}
	}

	expr := p.parseExpression()
	p.semicolon()
	return finish(p, &ast.ExpressionStatement{Expression: expr}, start)
}

// declarationStart reports whether a variable declaration starts at the
// current token and returns its kind. In a for head (forHead) `using of`
// is left to the expression parser.
func (p *parser) declarationStart(forHead bool) (ast.DeclKind, bool) {
	t := p.tok()
	if t.Kind != scanner.Ident {
		return 0, false
	}
	switch t.Value {
	case "var":
		return ast.KindVar, true
	case "const":
		return ast.KindConst, true
	case "let":
		n := p.peek(1)
		if n.Kind == scanner.Ident || n.Is("[") || n.Is("{") {
			return ast.KindLet, true
		}
	case "using":
		if p.usingBinding(1, forHead) {
			return ast.KindUsing, true
		}
	case "await":
		n := p.peek(1)
		if n.Is("using") && !n.NewlineBefore && p.usingBinding(2, forHead) {
			return ast.KindAwaitUsing, true
		}
	}
	return 0, false
}

// usingBinding reports whether the token at offset i can start the binding
// of a using declaration: an identifier (or a pattern, which is rejected
// later with a better message) on the same line.
func (p *parser) usingBinding(i int, forHead bool) bool {
	n := p.peek(i)
	if n.NewlineBefore {
		return false
	}
	if n.Is("{") {
		return true
	}
	if n.Kind != scanner.Ident {
		return false
	}
	switch n.Value {
	case "in", "instanceof":
		return false
	case "of":
		return !forHead
	}
	return true
}

// parseVarDecl parses the declarators of a declaration whose keyword is at
// the current token. It does not consume the terminator.
func (p *parser) parseVarDecl(kind ast.DeclKind) *ast.VariableDeclaration {
	if kind == ast.KindAwaitUsing {
		p.next()
	}
	p.next()
	d := &ast.VariableDeclaration{Kind: kind}
	for {
		start := p.pos
		decl := &ast.VariableDeclarator{ID: p.parseBindingTarget()}
		if p.eat("=") {
			decl.Init = p.parseAssignment()
		}
		d.Declarations = append(d.Declarations, finish(p, decl, start))
		if !p.eat(",") {
			break
		}
	}
	return d
}

func (p *parser) parseBlock() *ast.BlockStatement {
	start := p.pos
	p.expect("{")
	b := &ast.BlockStatement{Body: []ast.Statement{}}
	for !p.is("}") {
		if p.at(scanner.EOF) {
			p.unexpected("expected \"}\"")
		}
		b.Body = append(b.Body, p.parseStatement(false))
	}
	p.next()
	return finish(p, b, start)
}

func (p *parser) parseParenExpr() ast.Expr {
	p.expect("(")
	saved := p.noIn
	p.noIn = false
	e := p.parseExpression()
	p.noIn = saved
	p.expect(")")
	return e
}

func (p *parser) parseIf() ast.Statement {
	start := p.pos
	p.next()
	s := &ast.IfStatement{Test: p.parseParenExpr()}
	s.Consequent = p.parseBody()
	if p.eat("else") {
		s.Alternate = p.parseBody()
	}
	return finish(p, s, start)
}

func (p *parser) parseFor() ast.Statement {
	start := p.pos
	p.next()
	isAwait := false
	if p.is("await") {
		if !p.awaitAllowed() {
			p.errorAt(p.tok(), "for await is only valid in async functions and at the top level of modules")
		}
		p.next()
		isAwait = true
	}
	p.expect("(")

	var init ast.Node
	if !p.is(";") {
		p.noIn = true
		initStart := p.pos
		if kind, ok := p.declarationStart(true); ok {
			init = finish(p, p.parseVarDecl(kind), initStart)
		} else {
			init = p.parseExpression()
		}
		p.noIn = false

		if p.is("of") || p.is("in") {
			word := p.next().Value
			of := word == "of"
			left := init
			if e, ok := init.(ast.Expr); ok {
				left = p.toPattern(e, p.toks[initStart])
			} else if d := init.(*ast.VariableDeclaration); len(d.Declarations) != 1 {
				p.errorAt(p.toks[initStart], "only a single binding is allowed in a for-%s head", word)
			}
			var right ast.Expr
			if of {
				right = p.parseAssignment()
			} else {
				right = p.parseExpression()
			}
			p.expect(")")
			body := p.parseBody()
			if of {
				return finish(p, &ast.ForOfStatement{Left: left, Right: right, Body: body, Await: isAwait}, start)
			}
			return finish(p, &ast.ForInStatement{Left: left, Right: right, Body: body}, start)
		}
	}
	if isAwait {
		p.unexpected("for await requires an of clause")
	}

	s := &ast.ForStatement{Init: init}
	p.expect(";")
	if !p.is(";") {
		s.Test = p.parseExpression()
	}
	p.expect(";")
	if !p.is(")") {
		s.Update = p.parseExpression()
	}
	p.expect(")")
	s.Body = p.parseBody()
	return finish(p, s, start)
}

func (p *parser) parseTry() ast.Statement {
	start := p.pos
	p.next()
	s := &ast.TryStatement{Block: p.parseBlock()}
	if p.is("catch") {
		cstart := p.pos
		p.next()
		c := &ast.CatchClause{}
		if p.eat("(") {
			c.Param = p.parseBindingTarget()
			p.expect(")")
		}
		c.Body = p.parseBlock()
		s.Handler = finish(p, c, cstart)
	}
	if p.eat("finally") {
		s.Finalizer = p.parseBlock()
	}
	if s.Handler == nil && s.Finalizer == nil {
		p.unexpected("expected catch or finally")
	}
	return finish(p, s, start)
}

func (p *parser) parseSwitch() ast.Statement {
	start := p.pos
	p.next()
	s := &ast.SwitchStatement{Discriminant: p.parseParenExpr(), Cases: []*ast.SwitchCase{}}
	p.expect("{")
	for !p.eat("}") {
		cstart := p.pos
		c := &ast.SwitchCase{Consequent: []ast.Statement{}}
		switch {
		case p.eat("case"):
			c.Test = p.parseExpression()
		case p.eat("default"):
		default:
			p.unexpected("expected case or default")
		}
		p.expect(":")
		for !p.is("case") && !p.is("default") && !p.is("}") {
			if p.at(scanner.EOF) {
				p.unexpected("expected \"}\"")
			}
			c.Consequent = append(c.Consequent, p.parseStatement(false))
		}
		s.Cases = append(s.Cases, finish(p, c, cstart))
	}
	return finish(p, s, start)
}

func (p *parser) parseFunctionDecl(async bool, start int) ast.Statement {
	fn := p.parseFunction(async, true)
	return finish(p, &ast.FunctionDeclaration{Function: fn}, start)
}

func (p *parser) parseClassDecl(start int) ast.Statement {
	c := p.parseClass(true)
	return finish(p, &ast.ClassDeclaration{Class: c}, start)
}

// --- Modules ---

func (p *parser) parseModuleSource() *ast.StringLiteral {
	start := p.pos
	t := p.tok()
	if t.Kind != scanner.String {
		p.unexpected("expected module specifier")
	}
	p.next()
	return finish(p, &ast.StringLiteral{Value: t.Value, Raw: t.Raw}, start)
}

// moduleExportName parses an identifier or string used as an import or
// export name. String names keep their quotes.
func (p *parser) moduleExportName() *ast.Identifier {
	start := p.pos
	t := p.next()
	switch t.Kind {
	case scanner.Ident:
		return finish(p, &ast.Identifier{Name: t.Value}, start)
	case scanner.String:
		return finish(p, &ast.Identifier{Name: t.Raw}, start)
	}
	p.pos--
	p.unexpected("expected name")
	return nil
}

func (p *parser) parseImport() ast.Statement {
	start := p.pos
	p.next()
	d := &ast.ImportDeclaration{Specifiers: []*ast.ImportSpecifier{}}
	if p.at(scanner.String) {
		d.Source = p.parseModuleSource()
		p.semicolon()
		return finish(p, d, start)
	}

	if p.at(scanner.Ident) {
		sstart := p.pos
		local := p.expectIdent()
		d.Specifiers = append(d.Specifiers, finish(p, &ast.ImportSpecifier{Kind: ast.ImportDefault, Local: local}, sstart))
		if p.eat(",") {
			p.parseImportBindings(d)
		}
	} else {
		p.parseImportBindings(d)
	}
	p.expect("from")
	d.Source = p.parseModuleSource()
	p.semicolon()
	return finish(p, d, start)
}

// parseImportBindings parses `* as ns` or `{ a, b as c }`.
func (p *parser) parseImportBindings(d *ast.ImportDeclaration) {
	if p.is("*") {
		sstart := p.pos
		p.next()
		p.expect("as")
		local := p.expectIdent()
		d.Specifiers = append(d.Specifiers, finish(p, &ast.ImportSpecifier{Kind: ast.ImportNamespace, Local: local}, sstart))
		return
	}
	p.expect("{")
	for !p.eat("}") {
		sstart := p.pos
		imported := p.moduleExportName()
		var local *ast.Identifier
		if p.eat("as") {
			local = p.expectIdent()
		} else {
			local = &ast.Identifier{NodeBase: imported.NodeBase, Name: imported.Name}
		}
		d.Specifiers = append(d.Specifiers, finish(p, &ast.ImportSpecifier{
			Kind: ast.ImportNamed, Imported: imported.Name, Local: local,
		}, sstart))
		if !p.is("}") {
			p.expect(",")
		}
	}
}

func (p *parser) parseExport() ast.Statement {
	start := p.pos
	p.next()

	switch {
	case p.eat("default"):
		dstart := p.pos
		var decl ast.Node
		switch {
		case p.is("function"):
			decl = finish(p, &ast.FunctionDeclaration{Function: p.parseFunction(false, false)}, dstart)
		case p.is("async") && p.peek(1).Is("function") && !p.peek(1).NewlineBefore:
			p.next()
			decl = finish(p, &ast.FunctionDeclaration{Function: p.parseFunction(true, false)}, dstart)
		case p.is("class"):
			decl = finish(p, &ast.ClassDeclaration{Class: p.parseClass(false)}, dstart)
		default:
			decl = p.parseAssignment()
			p.semicolon()
		}
		return finish(p, &ast.ExportDefaultDeclaration{Declaration: decl}, start)

	case p.is("*"):
		p.next()
		d := &ast.ExportAllDeclaration{}
		if p.eat("as") {
			d.Exported = p.moduleExportName()
		}
		p.expect("from")
		d.Source = p.parseModuleSource()
		p.semicolon()
		return finish(p, d, start)

	case p.is("{"):
		p.next()
		d := &ast.ExportNamedDeclaration{Specifiers: []*ast.ExportSpecifier{}}
		for !p.eat("}") {
			sstart := p.pos
			local := p.moduleExportName()
			exported := &ast.Identifier{NodeBase: local.NodeBase, Name: local.Name}
			if p.eat("as") {
				exported = p.moduleExportName()
			}
			d.Specifiers = append(d.Specifiers, finish(p, &ast.ExportSpecifier{Local: local, Exported: exported}, sstart))
			if !p.is("}") {
				p.expect(",")
			}
		}
		if p.eat("from") {
			d.Source = p.parseModuleSource()
		}
		p.semicolon()
		return finish(p, d, start)
	}

	dstart := p.pos
	if kind, ok := p.declarationStart(false); ok {
		if kind.IsUsing() {
			p.errorAt(p.tok(), "%s declarations cannot be exported directly", kind)
		}
		d := p.parseVarDecl(kind)
		p.semicolon()
		return finish(p, &ast.ExportNamedDeclaration{Declaration: finish(p, d, dstart)}, start)
	}
	var decl ast.Statement
	switch {
	case p.is("function"):
		decl = p.parseFunctionDecl(false, dstart)
	case p.is("async") && p.peek(1).Is("function"):
		p.next()
		decl = p.parseFunctionDecl(true, dstart)
	case p.is("class"):
		decl = p.parseClassDecl(dstart)
	default:
		p.unexpected("expected declaration after export")
	}
	return finish(p, &ast.ExportNamedDeclaration{Declaration: decl}, start)
}
