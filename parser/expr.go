package parser

import (
	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/scanner"
)

// binaryPrec maps binary operators to their precedence. Higher binds
// tighter.
var binaryPrec = map[string]int{
	"??": 1,
	"||": 2,
	"&&": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"==": 7, "!=": 7, "===": 7, "!==": 7,
	"<": 8, ">": 8, "<=": 8, ">=": 8, "instanceof": 8, "in": 8,
	"<<": 9, ">>": 9, ">>>": 9,
	"+": 10, "-": 10,
	"*": 11, "/": 11, "%": 11,
	"**": 12,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true,
	"^=": true, "&&=": true, "||=": true, "??=": true,
}

func (p *parser) parseExpression() ast.Expr {
	start := p.pos
	e := p.parseAssignment()
	if !p.is(",") {
		return e
	}
	seq := &ast.SequenceExpression{Expressions: []ast.Expr{e}}
	for p.eat(",") {
		seq.Expressions = append(seq.Expressions, p.parseAssignment())
	}
	return finish(p, seq, start)
}

// withIn parses fn with the `in` operator re-enabled.
func withIn[T any](p *parser, fn func() T) T {
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()
	return fn()
}

func (p *parser) parseAssignment() ast.Expr {
	start := p.pos
	t := p.tok()

	if arrow := p.tryArrow(); arrow != nil {
		return arrow
	}
	if t.Is("yield") && p.ctx.generator {
		return p.parseYield()
	}

	left := p.parseConditional()
	op := p.tok()
	if op.Kind != scanner.Punct || !assignOps[op.Value] {
		return left
	}
	p.next()
	target := left
	if op.Value == "=" {
		switch left.(type) {
		case *ast.ObjectExpression, *ast.ArrayExpression:
			target = p.toPattern(left, t).(ast.Expr)
		}
	}
	if _, ok := target.(ast.Pattern); !ok {
		p.errorAt(t, "invalid assignment target")
	}
	right := p.parseAssignment()
	return finish(p, &ast.AssignmentExpression{Operator: op.Value, Left: target, Right: right}, start)
}

func (p *parser) parseYield() ast.Expr {
	start := p.pos
	p.next()
	y := &ast.YieldExpression{}
	if p.eat("*") {
		y.Delegate = true
		y.Argument = p.parseAssignment()
		return finish(p, y, start)
	}
	t := p.tok()
	if t.NewlineBefore || t.Kind == scanner.EOF {
		return finish(p, y, start)
	}
	if t.Kind == scanner.Punct {
		switch t.Value {
		case ")", "]", "}", ",", ";", ":":
			return finish(p, y, start)
		}
	}
	if t.Is("in") || t.Is("of") {
		return finish(p, y, start)
	}
	y.Argument = p.parseAssignment()
	return finish(p, y, start)
}

// tryArrow parses an arrow function if one starts at the current token.
func (p *parser) tryArrow() ast.Expr {
	start := p.pos
	async := false
	i := p.pos
	if p.tok().Is("async") {
		n := p.peek(1)
		if !n.NewlineBefore && (n.Kind == scanner.Ident && p.peek(2).Is("=>") || n.Is("(")) {
			async = true
			i++
		}
	}

	t := p.toks[i]
	switch {
	case t.Kind == scanner.Ident && p.toks[i+1].Is("=>") && !p.toks[i+1].NewlineBefore:
		p.pos = i
		param := p.expectIdent()
		return p.parseArrowBody(start, []ast.Pattern{param}, async)
	case t.Is("("):
		closing := p.matchingParen(i)
		if closing < 0 || closing+1 >= len(p.toks) {
			return nil
		}
		if n := p.toks[closing+1]; !n.Is("=>") || n.NewlineBefore {
			return nil
		}
		p.pos = i
		params := p.parseParams(async, false)
		return p.parseArrowBody(start, params, async)
	}
	return nil
}

func (p *parser) parseArrowBody(start int, params []ast.Pattern, async bool) ast.Expr {
	p.expect("=>")
	arrow := &ast.ArrowFunctionExpression{Params: params, Async: async}
	saved := p.ctx
	p.ctx = funcContext{inFunction: true, async: async}
	if p.is("{") {
		arrow.Body = withIn(p, p.parseBlock)
	} else {
		arrow.Expression = p.parseAssignment()
	}
	p.ctx = saved
	return finish(p, arrow, start)
}

func (p *parser) parseConditional() ast.Expr {
	start := p.pos
	test := p.parseBinary(0)
	if !p.eat("?") {
		return test
	}
	cons := withIn(p, p.parseAssignment)
	p.expect(":")
	alt := p.parseAssignment()
	return finish(p, &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}, start)
}

func (p *parser) parseBinary(minPrec int) ast.Expr {
	start := p.pos
	left := p.parseUnary()
	for {
		t := p.tok()
		if t.Kind != scanner.Punct && t.Kind != scanner.Ident {
			return left
		}
		prec, ok := binaryPrec[t.Value]
		if !ok || prec <= minPrec || t.Value == "in" && p.noIn {
			return left
		}
		p.next()
		var right ast.Expr
		if t.Value == "**" {
			right = p.parseBinary(prec - 1) // right associative
		} else {
			right = p.parseBinary(prec)
		}
		left = finish(p, &ast.BinaryExpression{Operator: t.Value, Left: left, Right: right}, start)
	}
}

func (p *parser) parseUnary() ast.Expr {
	start := p.pos
	t := p.tok()
	switch {
	case t.Kind == scanner.Punct && (t.Value == "!" || t.Value == "~" || t.Value == "+" || t.Value == "-"),
		t.Kind == scanner.Ident && (t.Value == "typeof" || t.Value == "void" || t.Value == "delete"):
		p.next()
		arg := p.parseUnary()
		return finish(p, &ast.UnaryExpression{Operator: t.Value, Argument: arg}, start)
	case t.Is("++") || t.Is("--"):
		p.next()
		arg := p.parseUnary()
		return finish(p, &ast.UpdateExpression{Operator: t.Value, Prefix: true, Argument: arg}, start)
	case t.Is("await") && p.awaitAllowed():
		p.next()
		arg := p.parseUnary()
		return finish(p, &ast.AwaitExpression{Argument: arg}, start)
	}

	e := p.parseLeftHandSide()
	if n := p.tok(); (n.Is("++") || n.Is("--")) && !n.NewlineBefore {
		p.next()
		return finish(p, &ast.UpdateExpression{Operator: n.Value, Argument: e}, start)
	}
	return e
}

func (p *parser) parseLeftHandSide() ast.Expr {
	start := p.pos
	var e ast.Expr
	if p.is("new") {
		e = p.parseNew()
	} else {
		e = p.parsePrimary()
	}
	for {
		t := p.tok()
		switch {
		case t.Is("."):
			p.next()
			prop := p.parsePropertyName()
			e = finish(p, &ast.MemberExpression{Object: e, Property: prop}, start)
		case t.Is("?."):
			p.next()
			switch {
			case p.is("("):
				args := p.parseArguments()
				e = finish(p, &ast.CallExpression{Callee: e, Arguments: args, Optional: true}, start)
			case p.is("["):
				p.next()
				prop := withIn(p, p.parseExpression)
				p.expect("]")
				e = finish(p, &ast.MemberExpression{Object: e, Property: prop, Computed: true, Optional: true}, start)
			default:
				prop := p.parsePropertyName()
				e = finish(p, &ast.MemberExpression{Object: e, Property: prop, Optional: true}, start)
			}
		case t.Is("["):
			p.next()
			prop := withIn(p, p.parseExpression)
			p.expect("]")
			e = finish(p, &ast.MemberExpression{Object: e, Property: prop, Computed: true}, start)
		case t.Is("("):
			args := p.parseArguments()
			e = finish(p, &ast.CallExpression{Callee: e, Arguments: args}, start)
		case t.Kind == scanner.Template && t.Head:
			quasi := p.parseTemplate()
			e = finish(p, &ast.TaggedTemplateExpression{Tag: e, Quasi: quasi}, start)
		default:
			return e
		}
	}
}

// parsePropertyName parses the name after '.', where keywords and
// private names are allowed.
func (p *parser) parsePropertyName() *ast.Identifier {
	start := p.pos
	t := p.tok()
	if t.Kind != scanner.Ident && t.Kind != scanner.PrivateName {
		p.unexpected("expected property name")
	}
	p.next()
	return finish(p, &ast.Identifier{Name: t.Value}, start)
}

func (p *parser) parseNew() ast.Expr {
	start := p.pos
	p.next()
	if p.eat(".") {
		prop := p.parsePropertyName()
		meta := finish(p, &ast.Identifier{Name: "new"}, start)
		return finish(p, &ast.MemberExpression{Object: meta, Property: prop}, start)
	}

	var callee ast.Expr
	if p.is("new") {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	for {
		if p.eat(".") {
			prop := p.parsePropertyName()
			callee = finish(p, &ast.MemberExpression{Object: callee, Property: prop}, start)
		} else if p.eat("[") {
			prop := withIn(p, p.parseExpression)
			p.expect("]")
			callee = finish(p, &ast.MemberExpression{Object: callee, Property: prop, Computed: true}, start)
		} else {
			break
		}
	}
	n := &ast.NewExpression{Callee: callee, Arguments: []ast.Expr{}}
	if p.is("(") {
		n.Arguments = p.parseArguments()
	}
	return finish(p, n, start)
}

func (p *parser) parseArguments() []ast.Expr {
	p.expect("(")
	args := []ast.Expr{}
	for !p.eat(")") {
		args = append(args, withIn(p, p.parseSpreadOrAssignment))
		if !p.is(")") {
			p.expect(",")
		}
	}
	return args
}

func (p *parser) parseSpreadOrAssignment() ast.Expr {
	start := p.pos
	if p.eat("...") {
		arg := p.parseAssignment()
		return finish(p, &ast.SpreadElement{Argument: arg}, start)
	}
	return p.parseAssignment()
}

func (p *parser) parsePrimary() ast.Expr {
	start := p.pos
	t := p.tok()
	switch t.Kind {
	case scanner.Number:
		p.next()
		return finish(p, &ast.NumberLiteral{Raw: t.Raw}, start)
	case scanner.String:
		p.next()
		return finish(p, &ast.StringLiteral{Value: t.Value, Raw: t.Raw}, start)
	case scanner.RegExp:
		p.next()
		return finish(p, &ast.RegExpLiteral{Raw: t.Raw}, start)
	case scanner.Template:
		if !t.Head {
			p.unexpected("unexpected template continuation")
		}
		return p.parseTemplate()
	case scanner.PrivateName:
		// #x in obj
		p.next()
		return finish(p, &ast.Identifier{Name: t.Value}, start)
	case scanner.Ident:
		switch t.Value {
		case "this":
			p.next()
			return finish(p, &ast.ThisExpression{}, start)
		case "super":
			p.next()
			return finish(p, &ast.SuperExpression{}, start)
		case "null":
			p.next()
			return finish(p, &ast.NullLiteral{}, start)
		case "true", "false":
			p.next()
			return finish(p, &ast.BooleanLiteral{Value: t.Value == "true"}, start)
		case "function":
			fn := p.parseFunction(false, false)
			return finish(p, &ast.FunctionExpression{Function: fn}, start)
		case "async":
			if n := p.peek(1); n.Is("function") && !n.NewlineBefore {
				p.next()
				fn := p.parseFunction(true, false)
				return finish(p, &ast.FunctionExpression{Function: fn}, start)
			}
		case "class":
			c := p.parseClass(false)
			return finish(p, &ast.ClassExpression{Class: c}, start)
		}
		p.next()
		return finish(p, &ast.Identifier{Name: t.Value}, start)
	case scanner.Punct:
		switch t.Value {
		case "(":
			p.next()
			e := withIn(p, p.parseExpression)
			p.expect(")")
			return e
		case "[":
			return p.parseArrayLiteral()
		case "{":
			return p.parseObjectLiteral()
		}
	}
	p.unexpected("expected expression")
	return nil
}

func (p *parser) parseTemplate() *ast.TemplateLiteral {
	start := p.pos
	t := p.next()
	tl := &ast.TemplateLiteral{Quasis: []string{t.Raw}, Expressions: []ast.Expr{}}
	for !t.Tail {
		tl.Expressions = append(tl.Expressions, withIn(p, p.parseExpression))
		t = p.tok()
		if t.Kind != scanner.Template || t.Head {
			p.unexpected("expected end of template substitution")
		}
		p.next()
		tl.Quasis = append(tl.Quasis, t.Raw)
	}
	return finish(p, tl, start)
}

func (p *parser) parseArrayLiteral() ast.Expr {
	start := p.pos
	p.expect("[")
	arr := &ast.ArrayExpression{Elements: []ast.Expr{}}
	for !p.eat("]") {
		if p.is(",") {
			p.next()
			arr.Elements = append(arr.Elements, nil)
			continue
		}
		arr.Elements = append(arr.Elements, withIn(p, p.parseSpreadOrAssignment))
		if !p.is("]") {
			p.expect(",")
		}
	}
	return finish(p, arr, start)
}

func (p *parser) parseObjectLiteral() ast.Expr {
	start := p.pos
	p.expect("{")
	obj := &ast.ObjectExpression{Properties: []ast.Node{}}
	for !p.eat("}") {
		obj.Properties = append(obj.Properties, withIn(p, p.parseObjectMember))
		if !p.is("}") {
			p.expect(",")
		}
	}
	return finish(p, obj, start)
}

func (p *parser) parseObjectMember() ast.Node {
	start := p.pos
	if p.eat("...") {
		arg := p.parseAssignment()
		return finish(p, &ast.SpreadElement{Argument: arg}, start)
	}

	async, generator := false, false
	kind := ast.PropertyInit
	if p.is("async") && p.keyFollows(1) && !p.peek(1).NewlineBefore {
		p.next()
		async = true
	}
	if p.eat("*") {
		generator = true
	}
	if !async && !generator && (p.is("get") || p.is("set")) && p.keyFollows(1) {
		if p.next().Value == "get" {
			kind = ast.PropertyGet
		} else {
			kind = ast.PropertySet
		}
	}

	keyTok := p.tok()
	key, computed := p.parsePropertyKey()
	prop := &ast.Property{Key: key, Computed: computed, Kind: kind}

	switch {
	case p.is("("):
		fstart := p.pos
		fn := p.parseFunctionRest(nil, async, generator)
		prop.Value = finish(p, &ast.FunctionExpression{Function: fn}, fstart)
		prop.Method = kind == ast.PropertyInit
	case kind != ast.PropertyInit || async || generator:
		p.unexpected("expected \"(\"")
	case p.eat(":"):
		prop.Value = p.parseAssignment()
	case keyTok.Kind == scanner.Ident && !computed:
		prop.Shorthand = true
		prop.Value = &ast.Identifier{NodeBase: ast.NodeBase{Loc: key.Base().Loc}, Name: keyTok.Value}
		if p.is("=") {
			// cover grammar for { a = 1 } = obj
			p.next()
			def := p.parseAssignment()
			prop.Value = finish(p, &ast.AssignmentExpression{Operator: "=", Left: prop.Value, Right: def}, start)
		}
	default:
		p.unexpected("expected \":\"")
	}
	return finish(p, prop, start)
}

// keyFollows reports whether the token at offset i starts a property key,
// which makes a preceding get/set/async/static a modifier.
func (p *parser) keyFollows(i int) bool {
	n := p.peek(i)
	switch n.Kind {
	case scanner.Ident, scanner.String, scanner.Number, scanner.PrivateName:
		return true
	}
	return n.Is("[") || n.Is("*")
}

// parsePropertyKey parses an object or class member key.
func (p *parser) parsePropertyKey() (ast.Expr, bool) {
	start := p.pos
	t := p.tok()
	switch t.Kind {
	case scanner.Ident, scanner.PrivateName:
		p.next()
		return finish(p, &ast.Identifier{Name: t.Value}, start), false
	case scanner.String:
		p.next()
		return finish(p, &ast.StringLiteral{Value: t.Value, Raw: t.Raw}, start), false
	case scanner.Number:
		p.next()
		return finish(p, &ast.NumberLiteral{Raw: t.Raw}, start), false
	}
	if p.eat("[") {
		key := withIn(p, p.parseAssignment)
		p.expect("]")
		return key, true
	}
	p.unexpected("expected property key")
	return nil, false
}

// parseFunction parses `function [*] [name] (params) { body }`. The current
// token is `function`; a leading `async` has been consumed.
func (p *parser) parseFunction(async, requireName bool) ast.Function {
	p.expect("function")
	generator := p.eat("*")
	var id *ast.Identifier
	if p.at(scanner.Ident) {
		id = p.expectIdent()
	} else if requireName {
		p.unexpected("expected function name")
	}
	return p.parseFunctionRest(id, async, generator)
}

// parseFunctionRest parses `(params) { body }`.
func (p *parser) parseFunctionRest(id *ast.Identifier, async, generator bool) ast.Function {
	saved, savedIn := p.ctx, p.noIn
	p.ctx = funcContext{inFunction: true, async: async, generator: generator}
	p.noIn = false
	params := p.parseParams(async, generator)
	body := p.parseBlock()
	p.ctx, p.noIn = saved, savedIn
	return ast.Function{ID: id, Params: params, Body: body, Async: async, Generator: generator}
}

func (p *parser) parseParams(async, generator bool) []ast.Pattern {
	saved := p.ctx
	p.ctx.async, p.ctx.generator = async, generator
	defer func() { p.ctx = saved }()

	p.expect("(")
	params := []ast.Pattern{}
	for !p.eat(")") {
		params = append(params, withIn(p, p.parseBindingElement))
		if !p.is(")") {
			p.expect(",")
		}
	}
	return params
}

// parseClass parses `class [name] [extends expr] { members }`.
func (p *parser) parseClass(requireName bool) ast.Class {
	p.expect("class")
	var c ast.Class
	if p.at(scanner.Ident) && !p.is("extends") && !p.is("{") {
		c.ID = p.expectIdent()
	} else if requireName {
		p.unexpected("expected class name")
	}
	if p.eat("extends") {
		c.SuperClass = p.parseLeftHandSide()
	}
	p.expect("{")
	c.Body = []ast.ClassMember{}
	for !p.eat("}") {
		if p.eat(";") {
			continue
		}
		c.Body = append(c.Body, p.parseClassMember())
	}
	return c
}

func (p *parser) parseClassMember() ast.ClassMember {
	start := p.pos
	static := false
	if p.is("static") {
		n := p.peek(1)
		if n.Is("{") {
			p.next()
			saved := p.ctx
			p.ctx = funcContext{inFunction: true}
			block := p.parseBlock()
			p.ctx = saved
			return finish(p, &ast.StaticBlock{Body: block.Body}, start)
		}
		if p.keyFollows(1) {
			p.next()
			static = true
		}
	}

	async, generator := false, false
	kind := ast.MethodPlain
	if p.is("async") && p.keyFollows(1) && !p.peek(1).NewlineBefore {
		p.next()
		async = true
	}
	if p.eat("*") {
		generator = true
	}
	if !async && !generator && (p.is("get") || p.is("set")) && p.keyFollows(1) {
		if p.next().Value == "get" {
			kind = ast.MethodGet
		} else {
			kind = ast.MethodSet
		}
	}

	keyTok := p.tok()
	key, computed := p.parsePropertyKey()

	if p.is("(") {
		if !static && !computed && keyTok.Kind == scanner.Ident && keyTok.Value == "constructor" && kind == ast.MethodPlain {
			kind = ast.MethodConstructor
		}
		fstart := p.pos
		fn := p.parseFunctionRest(nil, async, generator)
		value := finish(p, &ast.FunctionExpression{Function: fn}, fstart)
		return finish(p, &ast.MethodDefinition{Key: key, Computed: computed, Static: static, Kind: kind, Value: value}, start)
	}
	if async || generator || kind != ast.MethodPlain {
		p.unexpected("expected \"(\"")
	}

	field := &ast.PropertyDefinition{Key: key, Computed: computed, Static: static}
	if p.eat("=") {
		saved := p.ctx
		p.ctx = funcContext{inFunction: true}
		field.Value = withIn(p, p.parseAssignment)
		p.ctx = saved
	}
	p.semicolon()
	return finish(p, field, start)
}
