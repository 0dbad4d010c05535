// Package scanner tokenizes ECMAScript source for the parser. It tracks
// string, template and comment boundaries plus the regular-expression vs
// division ambiguity, so the parser only ever sees whole tokens.
//
// Keywords are not distinguished from identifiers: `using` and `await` are
// contextual and the parser decides what they mean.
package scanner

import (
	gotoken "go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	mscanner "modernc.org/scanner"
	"modernc.org/token"
)

// Kind is the token category.
type Kind byte

const (
	EOF Kind = iota
	Ident
	PrivateName // #name
	Number
	String
	Template // one chunk of a template literal
	RegExp
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Ident:
		return "identifier"
	case PrivateName:
		return "private name"
	case Number:
		return "number"
	case String:
		return "string"
	case Template:
		return "template"
	case RegExp:
		return "regular expression"
	default:
		return "punctuator"
	}
}

// Comment is a comment seen before a token.
type Comment struct {
	Text   string
	Block  bool
	Offset int
	End    int
}

// Token is a single lexical token.
type Token struct {
	Kind  Kind
	Value string // identifier name, punctuator, decoded string value
	Raw   string // source text (template chunks exclude the delimiters)

	Offset int // byte offset of the first byte
	End    int // byte offset just past the last byte

	// NewlineBefore is set when a line terminator separates this token
	// from the previous one (automatic semicolon insertion, `using` rules).
	NewlineBefore bool

	// Head and Tail mark the first and last chunk of a template literal.
	Head bool
	Tail bool

	Comments []Comment
}

// Is reports whether the token is the punctuator or identifier v.
func (t Token) Is(v string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && t.Value == v
}

// Scanner produces tokens from a source buffer.
type Scanner struct {
	src []byte
	// ms keeps the line table and the error list; tokens are scanned here.
	ms  *mscanner.Scanner
	pos int

	// braces records, for every open '{' and '${', whether it was a
	// template substitution.
	braces []bool

	prev     Token
	havePrev bool
}

// New creates a Scanner for src. name is used in positions.
func New(name string, src []byte) *Scanner {
	ms := mscanner.NewScanner(name, src, nil, nil)
	for i, b := range src {
		// AddLine takes the offset of the newline itself.
		if b == '\n' {
			ms.AddLine(i)
		}
	}
	return &Scanner{src: src, ms: ms}
}

// Position converts a byte offset to a line/column position.
func (s *Scanner) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.src) {
		offset = len(s.src)
	}
	return token.Position(s.ms.Position(offset))
}

// Source returns the bytes in [start, end).
func (s *Scanner) Source(start, end int) string { return string(s.src[start:end]) }

// AddErr records a syntax error at offset. Errors are reported as a
// modernc.org/scanner ErrList.
func (s *Scanner) AddErr(offset int, format string, args ...any) {
	s.ms.AddErr(gotoken.Position(s.Position(offset)), format, args...)
}

// Err returns the errors recorded so far, or nil.
func (s *Scanner) Err() error { return s.ms.Err() }

func (s *Scanner) errorf(offset int, format string, args ...any) error {
	s.AddErr(offset, format, args...)
	return s.Err()
}

// Tokenize scans all of src. The returned slice always ends with an EOF token.
func Tokenize(name string, src []byte) ([]Token, *Scanner, error) {
	s := New(name, src)
	var toks []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, s, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, s, nil
		}
	}
}

// Next scans the next token.
func (s *Scanner) Next() (Token, error) {
	var tok Token
	if err := s.skipTrivia(&tok); err != nil {
		return tok, err
	}
	tok.Offset = s.pos
	if s.pos >= len(s.src) {
		tok.Kind = EOF
		tok.End = s.pos
		return tok, nil
	}

	ch := s.src[s.pos]
	var err error
	switch {
	case ch == '"' || ch == '\'':
		err = s.scanString(&tok, ch)
	case ch == '`':
		s.pos++
		tok.Head = true
		err = s.scanTemplateChunk(&tok)
	case isDigit(ch) || ch == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]):
		err = s.scanNumber(&tok)
	case ch == '#':
		s.pos++
		start := s.pos
		s.scanIdentRest()
		if s.pos == start {
			return tok, s.errorf(tok.Offset, "unexpected character '#'")
		}
		tok.Kind = PrivateName
		tok.Value = string(s.src[tok.Offset:s.pos])
	case isIdentStart(s.src[s.pos:]):
		s.scanIdentRest()
		tok.Kind = Ident
		tok.Value = string(s.src[tok.Offset:s.pos])
	case ch == '/' && s.regexAllowed():
		err = s.scanRegExp(&tok)
	case ch == '}' && len(s.braces) > 0 && s.braces[len(s.braces)-1]:
		s.braces = s.braces[:len(s.braces)-1]
		s.pos++
		err = s.scanTemplateChunk(&tok)
	default:
		err = s.scanPunct(&tok)
	}
	if err != nil {
		return tok, err
	}
	tok.End = s.pos
	if tok.Raw == "" && tok.Kind != Template {
		tok.Raw = string(s.src[tok.Offset:tok.End])
	}
	s.prev = tok
	s.havePrev = true
	return tok, nil
}

// skipTrivia skips whitespace and comments, recording newlines and
// comments on tok.
func (s *Scanner) skipTrivia(tok *Token) error {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\n' || ch == '\r':
			tok.NewlineBefore = true
			s.pos++
		case ch == ' ' || ch == '\t' || ch == '\v' || ch == '\f':
			s.pos++
		case ch == '/' && s.peekAt(1) == '/':
			start := s.pos
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
			tok.Comments = append(tok.Comments, Comment{Text: string(s.src[start:s.pos]), Offset: start, End: s.pos})
		case ch == '/' && s.peekAt(1) == '*':
			start := s.pos
			end := strings.Index(string(s.src[s.pos+2:]), "*/")
			if end < 0 {
				return s.errorf(start, "unterminated comment")
			}
			s.pos += 2 + end + 2
			text := string(s.src[start:s.pos])
			if strings.ContainsAny(text, "\n\r") {
				tok.NewlineBefore = true
			}
			tok.Comments = append(tok.Comments, Comment{Text: text, Block: true, Offset: start, End: s.pos})
		case ch >= utf8.RuneSelf:
			r, size := utf8.DecodeRune(s.src[s.pos:])
			if r == '\u2028' || r == '\u2029' {
				tok.NewlineBefore = true
			} else if !unicode.IsSpace(r) && r != '\ufeff' {
				return nil
			}
			s.pos += size
		default:
			return nil
		}
	}
	return nil
}

func (s *Scanner) peekAt(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

// regexKeywords are the identifiers after which '/' starts a regular
// expression rather than a division.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "await": true, "yield": true,
}

func (s *Scanner) regexAllowed() bool {
	if !s.havePrev {
		return true
	}
	switch s.prev.Kind {
	case Punct:
		switch s.prev.Value {
		case ")", "]", "}":
			return false
		}
		return true
	case Ident:
		return regexKeywords[s.prev.Value]
	case Template:
		return !s.prev.Tail
	}
	return false
}

func (s *Scanner) scanIdentRest() {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch < utf8.RuneSelf {
			if isDigit(ch) || isASCIIIdentStart(ch) {
				s.pos++
				continue
			}
			return
		}
		r, size := utf8.DecodeRune(s.src[s.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) && r != '\u200c' && r != '\u200d' {
			return
		}
		s.pos += size
	}
}

func (s *Scanner) scanString(tok *Token, quote byte) error {
	start := s.pos
	s.pos++
	var sb strings.Builder
	for {
		if s.pos >= len(s.src) || s.src[s.pos] == '\n' {
			return s.errorf(start, "unterminated string literal")
		}
		ch := s.src[s.pos]
		if ch == quote {
			s.pos++
			break
		}
		if ch == '\\' {
			n, err := s.scanEscape(&sb)
			if err != nil {
				return err
			}
			s.pos += n
			continue
		}
		sb.WriteByte(ch)
		s.pos++
	}
	tok.Kind = String
	tok.Value = sb.String()
	return nil
}

// scanEscape decodes the escape sequence at s.pos into sb and returns its
// length in bytes.
func (s *Scanner) scanEscape(sb *strings.Builder) (int, error) {
	if s.pos+1 >= len(s.src) {
		return 0, s.errorf(s.pos, "unterminated escape sequence")
	}
	c := s.src[s.pos+1]
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case '\r':
		if s.peekAt(2) == '\n' {
			return 3, nil
		}
	case '\n':
	case 'x':
		if s.pos+4 > len(s.src) {
			return 0, s.errorf(s.pos, "invalid hexadecimal escape")
		}
		v, ok := parseHex(s.src[s.pos+2 : s.pos+4])
		if !ok {
			return 0, s.errorf(s.pos, "invalid hexadecimal escape")
		}
		sb.WriteRune(rune(v))
		return 4, nil
	case 'u':
		if s.peekAt(2) == '{' {
			end := strings.IndexByte(string(s.src[s.pos:]), '}')
			if end < 0 {
				return 0, s.errorf(s.pos, "invalid unicode escape")
			}
			v, ok := parseHex(s.src[s.pos+3 : s.pos+end])
			if !ok {
				return 0, s.errorf(s.pos, "invalid unicode escape")
			}
			sb.WriteRune(rune(v))
			return end + 1, nil
		}
		if s.pos+6 > len(s.src) {
			return 0, s.errorf(s.pos, "invalid unicode escape")
		}
		v, ok := parseHex(s.src[s.pos+2 : s.pos+6])
		if !ok {
			return 0, s.errorf(s.pos, "invalid unicode escape")
		}
		sb.WriteRune(rune(v))
		return 6, nil
	default:
		r, size := utf8.DecodeRune(s.src[s.pos+1:])
		sb.WriteRune(r)
		return 1 + size, nil
	}
	return 2, nil
}

// scanTemplateChunk scans template text up to the closing backtick or the
// next substitution. s.pos is just past the opening '`' or '}'.
func (s *Scanner) scanTemplateChunk(tok *Token) error {
	start := s.pos
	for {
		if s.pos >= len(s.src) {
			return s.errorf(tok.Offset, "unterminated template literal")
		}
		ch := s.src[s.pos]
		switch {
		case ch == '\\':
			s.pos += 2
			continue
		case ch == '`':
			tok.Raw = string(s.src[start:s.pos])
			tok.Tail = true
			s.pos++
		case ch == '$' && s.peekAt(1) == '{':
			tok.Raw = string(s.src[start:s.pos])
			s.pos += 2
			s.braces = append(s.braces, true)
		default:
			s.pos++
			continue
		}
		break
	}
	tok.Kind = Template
	tok.Value = tok.Raw
	return nil
}

func (s *Scanner) scanNumber(tok *Token) error {
	start := s.pos
	if s.src[s.pos] == '0' && s.pos+1 < len(s.src) {
		switch s.src[s.pos+1] | 0x20 {
		case 'x', 'o', 'b':
			s.pos += 2
			for s.pos < len(s.src) && (isHexDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
				s.pos++
			}
			if s.pos < len(s.src) && s.src[s.pos] == 'n' {
				s.pos++
			}
			tok.Kind = Number
			tok.Value = string(s.src[start:s.pos])
			return nil
		}
	}
	digits := func() {
		for s.pos < len(s.src) && (isDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
			s.pos++
		}
	}
	digits()
	if s.pos < len(s.src) && s.src[s.pos] == 'n' {
		s.pos++
	} else {
		if s.pos < len(s.src) && s.src[s.pos] == '.' {
			s.pos++
			digits()
		}
		if s.pos < len(s.src) && s.src[s.pos]|0x20 == 'e' {
			s.pos++
			if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
				s.pos++
			}
			digits()
		}
	}
	if s.pos < len(s.src) && isIdentStart(s.src[s.pos:]) {
		return s.errorf(s.pos, "identifier directly after number")
	}
	tok.Kind = Number
	tok.Value = string(s.src[start:s.pos])
	return nil
}

func (s *Scanner) scanRegExp(tok *Token) error {
	start := s.pos
	s.pos++
	inClass := false
	for {
		if s.pos >= len(s.src) || s.src[s.pos] == '\n' {
			return s.errorf(start, "unterminated regular expression")
		}
		ch := s.src[s.pos]
		s.pos++
		if ch == '\\' {
			s.pos++
			continue
		}
		if ch == '[' {
			inClass = true
		} else if ch == ']' {
			inClass = false
		} else if ch == '/' && !inClass {
			break
		}
	}
	s.scanIdentRest() // flags
	tok.Kind = RegExp
	tok.Value = string(s.src[start:s.pos])
	return nil
}

// punctuators ordered longest first for maximal munch.
var punctuators = []string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "/",
	"%", "&", "|", "^", "!", "~", "?", ":", "=", ".", "@",
}

func (s *Scanner) scanPunct(tok *Token) error {
	rest := s.src[s.pos:]
	for _, p := range punctuators {
		if len(rest) < len(p) || string(rest[:len(p)]) != p {
			continue
		}
		// a?.5:1 is a conditional, not optional chaining
		if p == "?." && len(rest) > 2 && isDigit(rest[2]) {
			continue
		}
		s.pos += len(p)
		tok.Kind = Punct
		tok.Value = p
		switch p {
		case "{":
			s.braces = append(s.braces, false)
		case "}":
			if len(s.braces) > 0 {
				s.braces = s.braces[:len(s.braces)-1]
			}
		}
		return nil
	}
	r, _ := utf8.DecodeRune(rest)
	return s.errorf(s.pos, "unexpected character %q", r)
}

// IsOpenBracket reports whether v is an opening bracket/paren/brace.
func IsOpenBracket(v string) bool {
	return v == "(" || v == "[" || v == "{"
}

// IsCloseBracket reports whether v is a closing bracket/paren/brace.
func IsCloseBracket(v string) bool {
	return v == ")" || v == "]" || v == "}"
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ch|0x20 >= 'a' && ch|0x20 <= 'f'
}

func isASCIIIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isIdentStart(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	if b[0] < utf8.RuneSelf {
		return isASCIIIdentStart(b[0])
	}
	r, _ := utf8.DecodeRune(b)
	return unicode.IsLetter(r)
}

func parseHex(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	v := 0
	for _, c := range b {
		switch {
		case isDigit(c):
			v = v*16 + int(c-'0')
		case c|0x20 >= 'a' && c|0x20 <= 'f':
			v = v*16 + int(c|0x20-'a'+10)
		default:
			return 0, false
		}
	}
	return v, true
}
