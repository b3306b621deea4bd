package lexer

import (
	"testing"

	"github.com/skx/ycc/token"
	"github.com/stretchr/testify/require"
)

func kinds(toks []*token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSimpleFunction(t *testing.T) {
	toks, err := Tokenize("int main(){ return 0; }")
	require.NoError(t, err)

	require.Equal(t, []token.Kind{
		token.KEYWORD, token.IDENT, token.PUNCT, token.PUNCT,
		token.PUNCT, token.KEYWORD, token.NUM, token.PUNCT,
		token.PUNCT, token.EOF,
	}, kinds(toks))

	require.Equal(t, int64(0), toks[6].Value)
}

func TestTwoByteOperatorsAreGreedy(t *testing.T) {
	toks, err := Tokenize("a==b!=c<=d>=e")
	require.NoError(t, err)

	var lexemes []string
	src := "a==b!=c<=d>=e"
	for _, tok := range toks {
		if tok.Kind == token.PUNCT {
			lexemes = append(lexemes, tok.Lexeme(src))
		}
	}
	require.Equal(t, []string{"==", "!=", "<=", ">="}, lexemes)
}

func TestMinusIsNeverMergedWithADigit(t *testing.T) {
	// Unary minus is left to the parser: the lexer always emits a
	// separate "-" punctuator, never merging it with a following digit.
	toks, err := Tokenize("3-4")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.NUM, token.PUNCT, token.NUM, token.EOF}, kinds(toks))
}

func TestKeywordConversion(t *testing.T) {
	toks, err := Tokenize("return if else for while int sizeof char notakeyword")
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		require.Equalf(t, token.KEYWORD, toks[i].Kind, "token %d", i)
	}
	require.Equal(t, token.IDENT, toks[8].Kind)
}

func TestStringLiteralDecoding(t *testing.T) {
	src := `"hi\n"`
	toks, err := Tokenize(src)
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, []byte{'h', 'i', '\n', 0}, toks[0].Str)
}

func TestStringLiteralEscapes(t *testing.T) {
	cases := []struct {
		src  string
		want []byte
	}{
		{`"\a\b\t\n\v\f\r"`, []byte{7, 8, '\t', '\n', 11, 12, '\r', 0}},
		{`"\e"`, []byte{27, 0}},
		{`"\x41\x42"`, []byte{'A', 'B', 0}},
		{`"\101\102"`, []byte{'A', 'B', 0}},
		{`"\q"`, []byte{'q', 0}},
	}
	for _, c := range cases {
		toks, err := Tokenize(c.src)
		require.NoError(t, err, c.src)
		require.Equal(t, c.want, toks[0].Str, c.src)
	}
}

func TestUnclosedStringIsFatal(t *testing.T) {
	_, err := Tokenize(`"abc`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unclosed string literal")
}

func TestInvalidHexEscapeIsFatal(t *testing.T) {
	_, err := Tokenize(`"\x"`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid hex escape")
}

func TestInvalidTokenIsFatal(t *testing.T) {
	_, err := Tokenize("3 $ 4")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid token")
}

func TestIdentifiersAndNumbers(t *testing.T) {
	toks, err := Tokenize("x1 _foo 12345")
	require.NoError(t, err)
	require.Equal(t, token.IDENT, toks[0].Kind)
	require.Equal(t, token.IDENT, toks[1].Kind)
	require.Equal(t, token.NUM, toks[2].Kind)
	require.Equal(t, int64(12345), toks[2].Value)
}
