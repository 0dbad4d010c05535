// Package printer serializes an ast.Program back to JavaScript source.
//
// Output uses two-space indentation and one statement per line. Parentheses
// are derived from operator precedence, since the tree does not record
// them. Leading comments attached to statements are preserved.
package printer

import (
	"fmt"
	"strings"

	"github.com/rubiojr/usinglower/ast"
)

// Print renders prog as JavaScript source. The result ends with a newline
// unless the program is empty.
func Print(prog *ast.Program) string {
	p := &printer{}
	for _, s := range prog.Body {
		p.stmt(s)
	}
	return p.sb.String()
}

// PrintStatement renders a single statement at indentation level zero.
func PrintStatement(s ast.Statement) string {
	p := &printer{}
	p.stmt(s)
	return strings.TrimSuffix(p.sb.String(), "\n")
}

// PrintExpr renders a single expression.
func PrintExpr(e ast.Expr) string {
	p := &printer{}
	return p.expr(e, precSequence)
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) line(format string, args ...any) {
	p.writeIndent()
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) writeIndent() {
	for range p.indent {
		p.sb.WriteString("  ")
	}
}

func (p *printer) indentStr() string { return strings.Repeat("  ", p.indent) }

// sub returns a printer that renders at the given depth.
func (p *printer) sub(indent int) *printer { return &printer{indent: indent} }

// bodyStr renders { stmts } with the closing brace at the current depth.
// The opening brace is not indented, so callers can append it to a line.
func (p *printer) bodyStr(stmts []ast.Statement) string {
	if len(stmts) == 0 {
		return "{}"
	}
	sp := p.sub(p.indent + 1)
	for _, s := range stmts {
		sp.stmt(s)
	}
	return "{\n" + sp.sb.String() + p.indentStr() + "}"
}

func (p *printer) blockStr(b *ast.BlockStatement) string {
	if b == nil {
		return "{}"
	}
	return p.bodyStr(b.Body)
}

// inline renders s for placement after a header such as `if (x) `: the
// first line carries no indentation and there is no trailing newline.
func (p *printer) inline(s ast.Statement) string {
	if b, ok := s.(*ast.BlockStatement); ok && len(b.Comments) == 0 {
		return p.blockStr(b)
	}
	sp := p.sub(p.indent)
	sp.stmt(s)
	out := strings.TrimPrefix(sp.sb.String(), p.indentStr())
	return strings.TrimSuffix(out, "\n")
}

func (p *printer) comments(n ast.Node) {
	for _, c := range n.Base().Comments {
		p.line("%s", c.Text)
	}
}

func (p *printer) stmt(s ast.Statement) {
	p.comments(s)

	switch st := s.(type) {
	case *ast.VariableDeclaration:
		p.line("%s;", p.varDecl(st))
	case *ast.FunctionDeclaration:
		p.line("%s", p.function(&st.Function))
	case *ast.ClassDeclaration:
		p.line("%s", p.class(&st.Class))
	case *ast.BlockStatement:
		p.line("%s", p.blockStr(st))
	case *ast.EmptyStatement:
		p.line(";")
	case *ast.DebuggerStatement:
		p.line("debugger;")
	case *ast.ExpressionStatement:
		p.line("%s;", p.exprStatement(st.Expression))
	case *ast.IfStatement:
		p.printIf(st)
	case *ast.ForStatement:
		init := ""
		switch in := st.Init.(type) {
		case *ast.VariableDeclaration:
			init = p.varDecl(in)
		case ast.Expr:
			init = p.expr(in, precSequence)
		}
		head := "for (" + init + ";"
		if st.Test != nil {
			head += " " + p.expr(st.Test, precSequence)
		}
		head += ";"
		if st.Update != nil {
			head += " " + p.expr(st.Update, precSequence)
		}
		p.line("%s) %s", head, p.inline(st.Body))
	case *ast.ForInStatement:
		p.line("for (%s in %s) %s", p.forLeft(st.Left), p.expr(st.Right, precSequence), p.inline(st.Body))
	case *ast.ForOfStatement:
		kw := "for"
		if st.Await {
			kw = "for await"
		}
		p.line("%s (%s of %s) %s", kw, p.forLeft(st.Left), p.expr(st.Right, precAssign), p.inline(st.Body))
	case *ast.WhileStatement:
		p.line("while (%s) %s", p.expr(st.Test, precSequence), p.inline(st.Body))
	case *ast.DoWhileStatement:
		p.line("do %s while (%s);", p.inline(st.Body), p.expr(st.Test, precSequence))
	case *ast.ReturnStatement:
		if st.Argument == nil {
			p.line("return;")
		} else {
			p.line("return %s;", p.expr(st.Argument, precSequence))
		}
	case *ast.ThrowStatement:
		p.line("throw %s;", p.expr(st.Argument, precSequence))
	case *ast.BreakStatement:
		p.line("%s;", jump("break", st.Label))
	case *ast.ContinueStatement:
		p.line("%s;", jump("continue", st.Label))
	case *ast.LabeledStatement:
		p.line("%s: %s", st.Label.Name, p.inline(st.Body))
	case *ast.TryStatement:
		p.printTry(st)
	case *ast.SwitchStatement:
		p.printSwitch(st)
	case *ast.RawStatement:
		for _, l := range strings.Split(strings.TrimRight(st.Code, "\n"), "\n") {
			p.line("%s", l)
		}
	case *ast.ImportDeclaration:
		p.printImport(st)
	case *ast.ExportNamedDeclaration:
		p.printExportNamed(st)
	case *ast.ExportDefaultDeclaration:
		switch d := st.Declaration.(type) {
		case *ast.FunctionDeclaration:
			p.line("export default %s", p.function(&d.Function))
		case *ast.ClassDeclaration:
			p.line("export default %s", p.class(&d.Class))
		case ast.Expr:
			p.line("export default %s;", p.expr(d, precAssign))
		}
	case *ast.ExportAllDeclaration:
		if st.Exported != nil {
			p.line("export * as %s from %s;", st.Exported.Name, p.expr(st.Source, precPrimary))
		} else {
			p.line("export * from %s;", p.expr(st.Source, precPrimary))
		}
	default:
		panic(fmt.Sprintf("printer: unexpected statement %T", s))
	}
}

func jump(kw string, label *ast.Identifier) string {
	if label == nil {
		return kw
	}
	return kw + " " + label.Name
}

// exprStatement renders an expression in statement position, adding
// parentheses where the expression would otherwise parse as a declaration
// or a block.
func (p *printer) exprStatement(e ast.Expr) string {
	s := p.expr(e, precSequence)
	for _, prefix := range []string{"{", "function", "async function", "class ", "class{", "let ["} {
		if strings.HasPrefix(s, prefix) {
			return "(" + s + ")"
		}
	}
	return s
}

func (p *printer) varDecl(d *ast.VariableDeclaration) string {
	parts := make([]string, len(d.Declarations))
	for i, decl := range d.Declarations {
		parts[i] = p.pattern(decl.ID)
		if decl.Init != nil {
			parts[i] += " = " + p.expr(decl.Init, precAssign)
		}
	}
	return d.Kind.String() + " " + strings.Join(parts, ", ")
}

func (p *printer) forLeft(n ast.Node) string {
	if d, ok := n.(*ast.VariableDeclaration); ok {
		return p.varDecl(d)
	}
	return p.pattern(n.(ast.Pattern))
}

func (p *printer) printIf(st *ast.IfStatement) {
	head := fmt.Sprintf("if (%s) %s", p.expr(st.Test, precSequence), p.inline(st.Consequent))
	if st.Alternate == nil {
		p.line("%s", head)
		return
	}
	if _, ok := st.Consequent.(*ast.BlockStatement); ok {
		p.line("%s else %s", head, p.inline(st.Alternate))
		return
	}
	p.line("%s", head)
	p.line("else %s", p.inline(st.Alternate))
}

func (p *printer) printTry(st *ast.TryStatement) {
	out := "try " + p.blockStr(st.Block)
	if h := st.Handler; h != nil {
		if h.Param != nil {
			out += fmt.Sprintf(" catch (%s) %s", p.pattern(h.Param), p.blockStr(h.Body))
		} else {
			out += " catch " + p.blockStr(h.Body)
		}
	}
	if st.Finalizer != nil {
		out += " finally " + p.blockStr(st.Finalizer)
	}
	p.line("%s", out)
}

func (p *printer) printSwitch(st *ast.SwitchStatement) {
	if len(st.Cases) == 0 {
		p.line("switch (%s) {}", p.expr(st.Discriminant, precSequence))
		return
	}
	p.line("switch (%s) {", p.expr(st.Discriminant, precSequence))
	p.indent++
	for _, c := range st.Cases {
		p.comments(c)
		if c.Test != nil {
			p.line("case %s:", p.expr(c.Test, precSequence))
		} else {
			p.line("default:")
		}
		p.indent++
		for _, s := range c.Consequent {
			p.stmt(s)
		}
		p.indent--
	}
	p.indent--
	p.line("}")
}

func (p *printer) printImport(st *ast.ImportDeclaration) {
	src := p.expr(st.Source, precPrimary)
	if len(st.Specifiers) == 0 {
		p.line("import %s;", src)
		return
	}
	var parts, named []string
	for _, s := range st.Specifiers {
		switch s.Kind {
		case ast.ImportDefault:
			parts = append(parts, s.Local.Name)
		case ast.ImportNamespace:
			parts = append(parts, "* as "+s.Local.Name)
		default:
			if s.Imported == s.Local.Name {
				named = append(named, s.Local.Name)
			} else {
				named = append(named, s.Imported+" as "+s.Local.Name)
			}
		}
	}
	if len(named) > 0 {
		parts = append(parts, "{ "+strings.Join(named, ", ")+" }")
	}
	p.line("import %s from %s;", strings.Join(parts, ", "), src)
}

func (p *printer) printExportNamed(st *ast.ExportNamedDeclaration) {
	if st.Declaration != nil {
		decl := p.inline(st.Declaration)
		p.line("export %s", decl)
		return
	}
	specs := make([]string, len(st.Specifiers))
	for i, s := range st.Specifiers {
		if s.Local.Name == s.Exported.Name {
			specs[i] = s.Local.Name
		} else {
			specs[i] = s.Local.Name + " as " + s.Exported.Name
		}
	}
	list := "{}"
	if len(specs) > 0 {
		list = "{ " + strings.Join(specs, ", ") + " }"
	}
	if st.Source != nil {
		p.line("export %s from %s;", list, p.expr(st.Source, precPrimary))
		return
	}
	p.line("export %s;", list)
}

func (p *printer) function(f *ast.Function) string {
	var sb strings.Builder
	if f.Async {
		sb.WriteString("async ")
	}
	sb.WriteString("function")
	if f.Generator {
		sb.WriteByte('*')
	}
	if f.ID != nil {
		sb.WriteByte(' ')
		sb.WriteString(f.ID.Name)
	} else {
		sb.WriteByte(' ')
	}
	sb.WriteString(p.params(f.Params))
	sb.WriteByte(' ')
	sb.WriteString(p.blockStr(f.Body))
	return sb.String()
}

func (p *printer) params(params []ast.Pattern) string {
	parts := make([]string, len(params))
	for i, prm := range params {
		parts[i] = p.pattern(prm)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (p *printer) class(c *ast.Class) string {
	var sb strings.Builder
	sb.WriteString("class")
	if c.ID != nil {
		sb.WriteString(" " + c.ID.Name)
	}
	if c.SuperClass != nil {
		sb.WriteString(" extends " + p.expr(c.SuperClass, precLHS))
	}
	if len(c.Body) == 0 {
		sb.WriteString(" {}")
		return sb.String()
	}
	sb.WriteString(" {\n")
	sp := p.sub(p.indent + 1)
	for _, m := range c.Body {
		sp.member(m)
	}
	sb.WriteString(sp.sb.String())
	sb.WriteString(p.indentStr() + "}")
	return sb.String()
}

func (p *printer) member(m ast.ClassMember) {
	p.comments(m)
	switch mb := m.(type) {
	case *ast.MethodDefinition:
		prefix := ""
		if mb.Static {
			prefix = "static "
		}
		p.line("%s%s", prefix, p.method(mb.Key, mb.Computed, mb.Kind == ast.MethodGet, mb.Kind == ast.MethodSet, &mb.Value.Function))
	case *ast.PropertyDefinition:
		out := p.propertyKey(mb.Key, mb.Computed)
		if mb.Static {
			out = "static " + out
		}
		if mb.Value != nil {
			out += " = " + p.expr(mb.Value, precAssign)
		}
		p.line("%s;", out)
	case *ast.StaticBlock:
		p.line("static %s", p.bodyStr(mb.Body))
	}
}

// method renders an object or class method without the function keyword.
func (p *printer) method(key ast.Expr, computed, get, set bool, f *ast.Function) string {
	var sb strings.Builder
	switch {
	case get:
		sb.WriteString("get ")
	case set:
		sb.WriteString("set ")
	}
	if f.Async {
		sb.WriteString("async ")
	}
	if f.Generator {
		sb.WriteByte('*')
	}
	sb.WriteString(p.propertyKey(key, computed))
	sb.WriteString(p.params(f.Params))
	sb.WriteByte(' ')
	sb.WriteString(p.blockStr(f.Body))
	return sb.String()
}

func (p *printer) propertyKey(key ast.Expr, computed bool) string {
	if computed {
		return "[" + p.expr(key, precAssign) + "]"
	}
	return p.expr(key, precPrimary)
}
