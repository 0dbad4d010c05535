package printer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rubiojr/usinglower/ast"
)

// Precedence levels, loosest first.
const (
	precSequence = iota
	precAssign   // assignment, arrow, yield, spread
	precConditional
	precNullish
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary // unary operators, await
	precUpdate
	precLHS // call, new, member
	precPrimary
)

var binaryPrec = map[string]int{
	"??": precNullish,
	"||": precOr,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"instanceof": precRelational, "in": precRelational,
	"<<": precShift, ">>": precShift, ">>>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
	"**": precExponent,
}

func precOf(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.SequenceExpression:
		return precSequence
	case *ast.AssignmentExpression, *ast.ArrowFunctionExpression, *ast.YieldExpression, *ast.SpreadElement:
		return precAssign
	case *ast.ConditionalExpression:
		return precConditional
	case *ast.BinaryExpression:
		return binaryPrec[n.Operator]
	case *ast.UnaryExpression, *ast.AwaitExpression:
		return precUnary
	case *ast.UpdateExpression:
		return precUpdate
	case *ast.CallExpression, *ast.NewExpression, *ast.MemberExpression, *ast.TaggedTemplateExpression:
		return precLHS
	}
	return precPrimary
}

// expr renders e, parenthesized when it binds looser than minPrec.
func (p *printer) expr(e ast.Expr, minPrec int) string {
	s := p.exprInner(e)
	if precOf(e) < minPrec {
		return "(" + s + ")"
	}
	return s
}

func (p *printer) exprInner(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.NumberLiteral:
		return n.Raw
	case *ast.StringLiteral:
		if n.Raw != "" {
			return n.Raw
		}
		return quote(n.Value)
	case *ast.BooleanLiteral:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.NullLiteral:
		return "null"
	case *ast.RegExpLiteral:
		return n.Raw
	case *ast.TemplateLiteral:
		return p.template(n)
	case *ast.TaggedTemplateExpression:
		return p.expr(n.Tag, precLHS) + p.template(n.Quasi)
	case *ast.ThisExpression:
		return "this"
	case *ast.SuperExpression:
		return "super"

	case *ast.ArrayExpression:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			if el != nil {
				parts[i] = p.expr(el, precAssign)
			}
		}
		out := strings.Join(parts, ", ")
		if len(n.Elements) > 0 && n.Elements[len(n.Elements)-1] == nil {
			out += ","
		}
		return "[" + out + "]"
	case *ast.ObjectExpression:
		return p.object(n)
	case *ast.SpreadElement:
		return "..." + p.expr(n.Argument, precAssign)

	case *ast.FunctionExpression:
		return p.function(&n.Function)
	case *ast.ArrowFunctionExpression:
		return p.arrow(n)
	case *ast.ClassExpression:
		return p.class(&n.Class)

	case *ast.UnaryExpression:
		arg := p.expr(n.Argument, precUnary)
		if len(n.Operator) > 1 {
			return n.Operator + " " + arg
		}
		// avoid gluing - -x into --x
		if (n.Operator == "-" || n.Operator == "+") && strings.HasPrefix(arg, n.Operator) {
			return n.Operator + " " + arg
		}
		return n.Operator + arg
	case *ast.UpdateExpression:
		if n.Prefix {
			return n.Operator + p.expr(n.Argument, precUnary)
		}
		return p.expr(n.Argument, precLHS) + n.Operator
	case *ast.BinaryExpression:
		return p.binary(n)
	case *ast.AssignmentExpression:
		return p.assignTarget(n.Left) + " " + n.Operator + " " + p.expr(n.Right, precAssign)
	case *ast.ConditionalExpression:
		return p.expr(n.Test, precNullish) + " ? " + p.expr(n.Consequent, precAssign) + " : " + p.expr(n.Alternate, precAssign)

	case *ast.CallExpression:
		callee := p.expr(n.Callee, precLHS)
		if n.Optional {
			callee += "?."
		}
		return callee + p.args(n.Arguments)
	case *ast.NewExpression:
		callee := p.expr(n.Callee, precLHS)
		if containsCall(n.Callee) {
			callee = "(" + p.exprInner(n.Callee) + ")"
		}
		return "new " + callee + p.args(n.Arguments)
	case *ast.MemberExpression:
		obj := p.expr(n.Object, precLHS)
		if num, ok := n.Object.(*ast.NumberLiteral); ok && !n.Computed && !strings.ContainsAny(num.Raw, ".eExXoObBn") {
			obj = "(" + obj + ")"
		}
		if n.Computed {
			if n.Optional {
				return obj + "?.[" + p.expr(n.Property, precSequence) + "]"
			}
			return obj + "[" + p.expr(n.Property, precSequence) + "]"
		}
		if n.Optional {
			return obj + "?." + p.exprInner(n.Property)
		}
		return obj + "." + p.exprInner(n.Property)
	case *ast.SequenceExpression:
		parts := make([]string, len(n.Expressions))
		for i, x := range n.Expressions {
			parts[i] = p.expr(x, precAssign)
		}
		return strings.Join(parts, ", ")
	case *ast.AwaitExpression:
		return "await " + p.expr(n.Argument, precUnary)
	case *ast.YieldExpression:
		out := "yield"
		if n.Delegate {
			out += "*"
		}
		if n.Argument != nil {
			out += " " + p.expr(n.Argument, precAssign)
		}
		return out

	case *ast.ObjectPattern, *ast.ArrayPattern:
		return p.pattern(e.(ast.Pattern))
	}
	panic(fmt.Sprintf("printer: unexpected expression %T", e))
}

func (p *printer) binary(n *ast.BinaryExpression) string {
	prec := binaryPrec[n.Operator]
	leftMin, rightMin := prec, prec+1
	if n.Operator == "**" {
		leftMin, rightMin = prec+1, prec
	}
	left := p.expr(n.Left, leftMin)
	right := p.expr(n.Right, rightMin)
	// ?? cannot be mixed with || or && without parentheses
	if mixesNullish(n.Operator, n.Left) && !strings.HasPrefix(left, "(") {
		left = "(" + left + ")"
	}
	if mixesNullish(n.Operator, n.Right) && !strings.HasPrefix(right, "(") {
		right = "(" + right + ")"
	}
	if n.Operator == "**" {
		if _, ok := n.Left.(*ast.UnaryExpression); ok && !strings.HasPrefix(left, "(") {
			left = "(" + left + ")"
		}
	}
	return left + " " + n.Operator + " " + right
}

func mixesNullish(op string, operand ast.Expr) bool {
	b, ok := operand.(*ast.BinaryExpression)
	if !ok {
		return false
	}
	logical := func(o string) bool { return o == "||" || o == "&&" }
	return op == "??" && logical(b.Operator) || logical(op) && b.Operator == "??"
}

// containsCall reports whether a new-expression callee has a call in its
// member chain, which would otherwise bind the argument list.
func containsCall(e ast.Expr) bool {
	for {
		switch n := e.(type) {
		case *ast.CallExpression:
			return true
		case *ast.MemberExpression:
			e = n.Object
		default:
			return false
		}
	}
}

func (p *printer) args(args []ast.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = p.expr(a, precAssign)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (p *printer) template(t *ast.TemplateLiteral) string {
	var sb strings.Builder
	sb.WriteByte('`')
	for i, q := range t.Quasis {
		sb.WriteString(q)
		if i < len(t.Expressions) {
			sb.WriteString("${" + p.expr(t.Expressions[i], precSequence) + "}")
		}
	}
	sb.WriteByte('`')
	return sb.String()
}

func (p *printer) arrow(n *ast.ArrowFunctionExpression) string {
	out := ""
	if n.Async {
		out = "async "
	}
	out += p.params(n.Params) + " => "
	if n.Body != nil {
		return out + p.blockStr(n.Body)
	}
	body := p.expr(n.Expression, precAssign)
	if strings.HasPrefix(body, "{") {
		body = "(" + body + ")"
	}
	return out + body
}

// object prints short literals on one line. Once a member spans lines,
// such as a method with a body, every member gets its own line.
func (p *printer) object(n *ast.ObjectExpression) string {
	if len(n.Properties) == 0 {
		return "{}"
	}
	sp := p.sub(p.indent + 1)
	parts := make([]string, len(n.Properties))
	multiline := false
	for i, prop := range n.Properties {
		switch pr := prop.(type) {
		case *ast.SpreadElement:
			parts[i] = sp.exprInner(pr)
		case *ast.Property:
			parts[i] = sp.property(pr)
		}
		multiline = multiline || strings.Contains(parts[i], "\n")
	}
	if !multiline {
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, part := range parts {
		sb.WriteString(sp.indentStr() + part)
		if i < len(parts)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(p.indentStr() + "}")
	return sb.String()
}

func (p *printer) property(pr *ast.Property) string {
	if fn, ok := pr.Value.(*ast.FunctionExpression); ok && (pr.Method || pr.Kind != ast.PropertyInit) {
		return p.method(pr.Key, pr.Computed, pr.Kind == ast.PropertyGet, pr.Kind == ast.PropertySet, &fn.Function)
	}
	if pr.Shorthand {
		// { a } or the cover form { a = 1 }
		if a, ok := pr.Value.(*ast.AssignmentExpression); ok {
			return p.exprInner(a)
		}
		return p.exprInner(pr.Value)
	}
	return p.propertyKey(pr.Key, pr.Computed) + ": " + p.expr(pr.Value, precAssign)
}

// assignTarget renders the left side of an assignment.
func (p *printer) assignTarget(e ast.Expr) string {
	if pat, ok := e.(ast.Pattern); ok {
		if _, isMember := e.(*ast.MemberExpression); !isMember {
			return p.pattern(pat)
		}
	}
	return p.expr(e, precLHS)
}

func (p *printer) pattern(pat ast.Pattern) string {
	switch n := pat.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberExpression:
		return p.expr(n, precLHS)
	case *ast.AssignmentPattern:
		return p.pattern(n.Left) + " = " + p.expr(n.Right, precAssign)
	case *ast.RestElement:
		return "..." + p.pattern(n.Argument)
	case *ast.ArrayPattern:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			if el != nil {
				parts[i] = p.pattern(el)
			}
		}
		out := strings.Join(parts, ", ")
		if len(n.Elements) > 0 && n.Elements[len(n.Elements)-1] == nil {
			out += ","
		}
		return "[" + out + "]"
	case *ast.ObjectPattern:
		if len(n.Properties) == 0 {
			return "{}"
		}
		parts := make([]string, len(n.Properties))
		for i, prop := range n.Properties {
			switch pr := prop.(type) {
			case *ast.RestElement:
				parts[i] = p.pattern(pr)
			case *ast.PatternProperty:
				if pr.Shorthand {
					parts[i] = p.pattern(pr.Value)
				} else {
					parts[i] = p.propertyKey(pr.Key, pr.Computed) + ": " + p.pattern(pr.Value)
				}
			}
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	panic(fmt.Sprintf("printer: unexpected pattern %T", pat))
}

// quote renders s as a double-quoted JavaScript string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			if r < 0x20 || r == utf8.RuneError && size == 1 {
				fmt.Fprintf(&sb, `\x%02x`, s[i-size])
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
