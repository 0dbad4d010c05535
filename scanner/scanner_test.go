package scanner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mscanner "modernc.org/scanner"
)

func values(t *testing.T, src string) []string {
	t.Helper()
	toks, _, err := Tokenize("test.js", []byte(src))
	require.NoError(t, err)
	var out []string
	for _, tok := range toks {
		if tok.Kind == EOF {
			break
		}
		out = append(out, tok.Raw)
	}
	return out
}

func TestTokenize_UsingDeclaration(t *testing.T) {
	toks, _, err := Tokenize("test.js", []byte("await using x = f();"))
	require.NoError(t, err)
	require.Len(t, toks, 9)
	assert.Equal(t, Ident, toks[0].Kind)
	assert.Equal(t, "await", toks[0].Value)
	assert.Equal(t, "using", toks[1].Value)
	assert.Equal(t, "x", toks[2].Value)
	assert.True(t, toks[3].Is("="))
	assert.Equal(t, EOF, toks[8].Kind)
}

func TestTokenize_Punctuators(t *testing.T) {
	assert.Equal(t, []string{"a", ">>>=", "b", "?.", "c", "??=", "d", "...", "e"},
		values(t, "a >>>= b ?. c ??= d ... e"))
	assert.Equal(t, []string{"a", "?", ".5", ":", "1"}, values(t, "a?.5:1"))
}

func TestTokenize_Strings(t *testing.T) {
	toks, _, err := Tokenize("test.js", []byte(`"a\nb" 'it\'s' "A\x42\u{43}"`))
	require.NoError(t, err)
	assert.Equal(t, "a\nb", toks[0].Value)
	assert.Equal(t, `"a\nb"`, toks[0].Raw)
	assert.Equal(t, "it's", toks[1].Value)
	assert.Equal(t, "ABC", toks[2].Value)
}

func TestTokenize_Numbers(t *testing.T) {
	assert.Equal(t, []string{"0x1F", "1_000", "1.5e-3", "10n", ".25"},
		values(t, "0x1F 1_000 1.5e-3 10n .25"))
}

func TestTokenize_RegExpVersusDivision(t *testing.T) {
	toks, _, err := Tokenize("test.js", []byte("a = b / c / d; r = /[/]x/gi; return /y/"))
	require.NoError(t, err)
	var kinds []Kind
	for _, tok := range toks {
		if tok.Raw == "/" || tok.Kind == RegExp {
			kinds = append(kinds, tok.Kind)
		}
	}
	assert.Equal(t, []Kind{Punct, Punct, RegExp, RegExp}, kinds)
}

func TestTokenize_TemplateSubstitutions(t *testing.T) {
	toks, _, err := Tokenize("test.js", []byte("`a${ {x: 1}.x }b${c}d`"))
	require.NoError(t, err)

	var chunks []Token
	for _, tok := range toks {
		if tok.Kind == Template {
			chunks = append(chunks, tok)
		}
	}
	require.Len(t, chunks, 3)
	assert.Equal(t, "a", chunks[0].Raw)
	assert.True(t, chunks[0].Head)
	assert.False(t, chunks[0].Tail)
	assert.False(t, chunks[1].Head)
	assert.Equal(t, "b", chunks[1].Raw)
	assert.Equal(t, "d", chunks[2].Raw)
	assert.True(t, chunks[2].Tail)
}

func TestTokenize_NewlineAndComments(t *testing.T) {
	toks, _, err := Tokenize("test.js", []byte("a // one\n/* two */ b /* x\n */ c"))
	require.NoError(t, err)
	require.Len(t, toks, 4)

	assert.False(t, toks[0].NewlineBefore)
	assert.True(t, toks[1].NewlineBefore)
	require.Len(t, toks[1].Comments, 2)
	assert.Equal(t, "// one", toks[1].Comments[0].Text)
	assert.True(t, toks[1].Comments[1].Block)
	assert.True(t, toks[2].NewlineBefore, "multi-line block comment counts as a line break")
}

func TestTokenize_PrivateName(t *testing.T) {
	toks, _, err := Tokenize("test.js", []byte("this.#count"))
	require.NoError(t, err)
	assert.Equal(t, PrivateName, toks[2].Kind)
	assert.Equal(t, "#count", toks[2].Value)
}

func TestScanner_Position(t *testing.T) {
	toks, s, err := Tokenize("pos.js", []byte("a\n  b"))
	require.NoError(t, err)
	pos := s.Position(toks[1].Offset)
	assert.Equal(t, "pos.js", pos.Filename)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 3, pos.Column)

	toks, s, err = Tokenize("pos.js", []byte("a\n\nb"))
	require.NoError(t, err)
	pos = s.Position(toks[1].Offset)
	assert.Equal(t, 3, pos.Line)
	assert.Equal(t, 1, pos.Column)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unterminated string", `"abc`, "unterminated string literal"},
		{"unterminated template", "`abc", "unterminated template literal"},
		{"unterminated comment", "/* abc", "unterminated comment"},
		{"bad character", "x = \u00a4", "unexpected character"},
		{"stray hash", "# x", "unexpected character '#'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Tokenize("bad.js", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), "bad.js:1:")
		})
	}
}

func TestTokenize_ErrorList(t *testing.T) {
	_, _, err := Tokenize("bad.js", []byte("a\n  \"abc"))
	require.Error(t, err)

	var list mscanner.ErrList
	require.True(t, errors.As(err, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "bad.js", list[0].Pos.Filename)
	assert.Equal(t, 2, list[0].Pos.Line)
	assert.Equal(t, 3, list[0].Pos.Column)
	assert.EqualError(t, err, "bad.js:2:3: unterminated string literal")
}

func TestBrackets(t *testing.T) {
	assert.True(t, IsOpenBracket("("))
	assert.True(t, IsCloseBracket("}"))
	assert.False(t, IsOpenBracket(")"))
}
