// Package token contains the tokens produced by the lexer when
// scanning a C source string.
package token

// Kind identifies the category of a token.
type Kind int

// The token kinds our lexer produces.
const (
	// PUNCT is a punctuator, e.g. "+", "==", "(".
	PUNCT Kind = iota

	// NUM is an integer literal.
	NUM

	// IDENT is an identifier which is not one of our keywords.
	IDENT

	// KEYWORD is an identifier retagged by the keyword pass.
	KEYWORD

	// STRING is a string literal.
	STRING

	// EOF terminates every token stream.
	EOF
)

// String renders a Kind for diagnostics and tests.
func (k Kind) String() string {
	switch k {
	case PUNCT:
		return "PUNCT"
	case NUM:
		return "NUM"
	case IDENT:
		return "IDENT"
	case KEYWORD:
		return "KEYWORD"
	case STRING:
		return "STRING"
	case EOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical token.
//
// Offset and Len locate the token's lexeme in the original source,
// used both for diagnostics and for literal-lexeme equality tests
// (Is). Value is populated for NUM; Str for STRING.
type Token struct {
	// Kind is the category of this token.
	Kind Kind

	// Offset is the byte offset of the first character of the
	// lexeme within the source string.
	Offset int

	// Len is the length, in bytes, of the lexeme.
	Len int

	// Value holds the parsed value of a NUM token.
	Value int64

	// Str holds the decoded bytes of a STRING token, including the
	// trailing NUL produced by zero-initialized allocation.
	Str []byte
}

// Lexeme returns the token's raw source text.
func (t *Token) Lexeme(src string) string {
	return src[t.Offset : t.Offset+t.Len]
}

// Is reports whether the token's lexeme equals op exactly.
func (t *Token) Is(src string, op string) bool {
	return t.Lexeme(src) == op
}

// keywords is the set of reserved words for our C subset.
var keywords = map[string]bool{
	"return": true,
	"if":     true,
	"else":   true,
	"for":    true,
	"while":  true,
	"int":    true,
	"sizeof": true,
	"char":   true,
}

// IsKeyword reports whether lexeme names one of our reserved words.
func IsKeyword(lexeme string) bool {
	return keywords[lexeme]
}
