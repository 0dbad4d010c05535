package parser

import (
	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/scanner"
)

// parseBindingTarget parses an identifier, object pattern or array pattern.
func (p *parser) parseBindingTarget() ast.Pattern {
	start := p.pos
	switch {
	case p.is("["):
		p.next()
		arr := &ast.ArrayPattern{Elements: []ast.Pattern{}}
		for !p.eat("]") {
			if p.eat(",") {
				arr.Elements = append(arr.Elements, nil)
				continue
			}
			arr.Elements = append(arr.Elements, p.parseBindingElement())
			if !p.is("]") {
				p.expect(",")
			}
		}
		return finish(p, arr, start)

	case p.is("{"):
		p.next()
		obj := &ast.ObjectPattern{Properties: []ast.Node{}}
		for !p.eat("}") {
			obj.Properties = append(obj.Properties, p.parseBindingProperty())
			if !p.is("}") {
				p.expect(",")
			}
		}
		return finish(p, obj, start)
	}
	return p.expectIdent()
}

// parseBindingElement parses a binding target with an optional default,
// or a rest element.
func (p *parser) parseBindingElement() ast.Pattern {
	start := p.pos
	if p.eat("...") {
		arg := p.parseBindingTarget()
		return finish(p, &ast.RestElement{Argument: arg}, start)
	}
	target := p.parseBindingTarget()
	if p.eat("=") {
		def := p.parseAssignment()
		return finish(p, &ast.AssignmentPattern{Left: target, Right: def}, start)
	}
	return target
}

func (p *parser) parseBindingProperty() ast.Node {
	start := p.pos
	if p.eat("...") {
		arg := p.expectIdent()
		return finish(p, &ast.RestElement{Argument: arg}, start)
	}
	keyTok := p.tok()
	key, computed := p.parsePropertyKey()
	prop := &ast.PatternProperty{Key: key, Computed: computed}
	if p.eat(":") {
		prop.Value = p.parseBindingElement()
		return finish(p, prop, start)
	}
	if keyTok.Kind != scanner.Ident || computed {
		p.unexpected("expected \":\"")
	}
	prop.Shorthand = true
	var value ast.Pattern = &ast.Identifier{NodeBase: ast.NodeBase{Loc: key.Base().Loc}, Name: keyTok.Value}
	if p.eat("=") {
		def := p.parseAssignment()
		value = finish(p, &ast.AssignmentPattern{Left: value, Right: def}, start)
	}
	prop.Value = value
	return finish(p, prop, start)
}

// toPattern reinterprets an expression parsed with the cover grammar as
// an assignment target. at is used for error positions.
func (p *parser) toPattern(e ast.Expr, at scanner.Token) ast.Pattern {
	switch n := e.(type) {
	case *ast.Identifier:
		return n
	case *ast.MemberExpression:
		if n.Optional {
			break
		}
		return n
	case *ast.ObjectPattern:
		return n
	case *ast.ArrayPattern:
		return n
	case *ast.ArrayExpression:
		arr := &ast.ArrayPattern{NodeBase: n.NodeBase, Elements: make([]ast.Pattern, len(n.Elements))}
		for i, el := range n.Elements {
			if el != nil {
				arr.Elements[i] = p.toPatternElement(el, at)
			}
		}
		return arr
	case *ast.ObjectExpression:
		obj := &ast.ObjectPattern{NodeBase: n.NodeBase, Properties: make([]ast.Node, len(n.Properties))}
		for i, prop := range n.Properties {
			switch pr := prop.(type) {
			case *ast.SpreadElement:
				obj.Properties[i] = &ast.RestElement{NodeBase: pr.NodeBase, Argument: p.toPattern(pr.Argument, at)}
			case *ast.Property:
				if pr.Kind != ast.PropertyInit || pr.Method {
					p.errorAt(at, "invalid destructuring target")
				}
				obj.Properties[i] = &ast.PatternProperty{
					NodeBase:  pr.NodeBase,
					Key:       pr.Key,
					Value:     p.toPatternElement(pr.Value, at),
					Computed:  pr.Computed,
					Shorthand: pr.Shorthand,
				}
			}
		}
		return obj
	case *ast.AssignmentExpression:
		if n.Operator == "=" {
			return &ast.AssignmentPattern{NodeBase: n.NodeBase, Left: p.toPattern(n.Left, at), Right: n.Right}
		}
	}
	p.errorAt(at, "invalid assignment target")
	return nil
}

func (p *parser) toPatternElement(e ast.Expr, at scanner.Token) ast.Pattern {
	if s, ok := e.(*ast.SpreadElement); ok {
		return &ast.RestElement{NodeBase: s.NodeBase, Argument: p.toPattern(s.Argument, at)}
	}
	return p.toPattern(e, at)
}
