// Package parser builds an ast.Program from ECMAScript source, including
// explicit resource management declarations (using / await using).
//
// The parser is a hand-written recursive descent parser over the token
// stream produced by package scanner. It accepts the language subset the
// rest of the toolchain understands: modern statements and expressions,
// classes with static blocks, modules, templates and destructuring.
package parser

import (
	"fmt"

	"github.com/rubiojr/usinglower/ast"
	"github.com/rubiojr/usinglower/scanner"
)

// Parser parses source files. The zero value parses ES modules.
type Parser struct {
	SourceType ast.SourceType
}

// Parse parses src. name is used for positions and error messages.
func (p *Parser) Parse(name string, src []byte) (prog *ast.Program, err error) {
	toks, sc, err := scanner.Tokenize(name, src)
	if err != nil {
		return nil, err
	}
	ps := &parser{toks: toks, sc: sc, module: p.SourceType == ast.SourceModule}

	defer func() {
		if r := recover(); r != nil {
			if b, ok := r.(bailout); ok {
				prog, err = nil, b.err
				return
			}
			panic(r)
		}
	}()

	prog = &ast.Program{SourceType: p.SourceType, SourceFile: name}
	for !ps.at(scanner.EOF) {
		prog.Body = append(prog.Body, ps.parseStatement(true))
	}
	if len(toks) > 0 {
		prog.Loc = ast.Span{Start: sc.Position(0), End: sc.Position(len(src))}
	}
	return prog, nil
}

// Parse parses src as an ES module.
func Parse(name string, src []byte) (*ast.Program, error) {
	return (&Parser{}).Parse(name, src)
}

// bailout carries a syntax error out of the recursive descent.
type bailout struct{ err error }

// funcContext tracks what the innermost function allows.
type funcContext struct {
	inFunction bool
	async      bool
	generator  bool
}

type parser struct {
	toks   []scanner.Token
	pos    int
	sc     *scanner.Scanner
	module bool
	ctx    funcContext
	noIn   bool // inside a for-statement head, `in` ends the expression
}

func (p *parser) tok() scanner.Token { return p.toks[p.pos] }

func (p *parser) peek(n int) scanner.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() scanner.Token {
	t := p.toks[p.pos]
	if t.Kind != scanner.EOF {
		p.pos++
	}
	return t
}

func (p *parser) at(k scanner.Kind) bool { return p.tok().Kind == k }

// is reports whether the current token is the punctuator or word v.
func (p *parser) is(v string) bool { return p.tok().Is(v) }

func (p *parser) eat(v string) bool {
	if p.is(v) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(v string) scanner.Token {
	if !p.is(v) {
		p.unexpected(fmt.Sprintf("expected %q", v))
	}
	return p.next()
}

func (p *parser) expectIdent() *ast.Identifier {
	t := p.tok()
	if t.Kind != scanner.Ident {
		p.unexpected("expected identifier")
	}
	p.next()
	return finish(p, &ast.Identifier{Name: t.Value}, p.pos-1)
}

// semicolon consumes a statement terminator, applying automatic
// semicolon insertion.
func (p *parser) semicolon() {
	if p.eat(";") {
		return
	}
	t := p.tok()
	if t.Is("}") || t.Kind == scanner.EOF || t.NewlineBefore {
		return
	}
	p.unexpected("expected \";\"")
}

func (p *parser) errorAt(t scanner.Token, format string, args ...any) {
	p.sc.AddErr(t.Offset, format, args...)
	panic(bailout{p.sc.Err()})
}

func (p *parser) unexpected(hint string) {
	t := p.tok()
	if t.Kind == scanner.EOF {
		p.errorAt(t, "unexpected end of input, %s", hint)
	}
	p.errorAt(t, "unexpected token %s, %s", t.Raw, hint)
}

// finish sets n's span from the token at start to the last consumed token.
func finish[T ast.Node](p *parser, n T, start int) T {
	end := p.pos - 1
	if end < start {
		end = start
	}
	n.Base().Loc = ast.Span{
		Start: p.sc.Position(p.toks[start].Offset),
		End:   p.sc.Position(p.toks[end].End),
	}
	return n
}

// attachComments moves the comments preceding the token at start onto n.
func (p *parser) attachComments(n ast.Node, start int) {
	for _, c := range p.toks[start].Comments {
		n.Base().Comments = append(n.Base().Comments, ast.Comment{
			Text:  c.Text,
			Block: c.Block,
			Loc:   ast.Span{Start: p.sc.Position(c.Offset), End: p.sc.Position(c.End)},
		})
	}
}

// matchingParen returns the index of the token closing the bracket at i,
// or -1.
func (p *parser) matchingParen(i int) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		t := p.toks[j]
		if t.Kind != scanner.Punct {
			if t.Kind == scanner.EOF {
				return -1
			}
			continue
		}
		switch {
		case scanner.IsOpenBracket(t.Value):
			depth++
		case scanner.IsCloseBracket(t.Value):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// awaitAllowed reports whether `await` is an operator here.
func (p *parser) awaitAllowed() bool {
	return p.ctx.async || p.module && !p.ctx.inFunction
}
