// Package lexer implements the single left-to-right scan that turns a
// C source string into a linear sequence of tokens, terminated by an
// EOF token.
package lexer

import (
	"strconv"
	"strings"

	"github.com/skx/ycc/diag"
	"github.com/skx/ycc/token"
)

// Lexer holds the scanner state for a single source string.
//
// position/readPosition/ch follow a simple read-ahead idiom, scanning
// bytes rather than runes since our grammar is ASCII-only.
type Lexer struct {
	src          string
	position     int
	readPosition int
	ch           byte
}

// New builds a Lexer over src.
func New(src string) *Lexer {
	l := &Lexer{src: src}
	l.readChar()
	return l
}

// Tokenize scans the whole source and returns the resulting token
// sequence, always terminated by a single EOF token, with the keyword
// pass already applied.
func Tokenize(src string) ([]*token.Token, error) {
	l := New(src)
	var toks []*token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	convertKeywords(src, toks)
	return toks, nil
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.src) {
		l.ch = 0
	} else {
		l.ch = l.src[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.src) {
		return 0
	}
	return l.src[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// next scans and returns the single next token.
func (l *Lexer) next() (*token.Token, error) {
	l.skipWhitespace()

	start := l.position

	switch {
	case l.ch == 0:
		return &token.Token{Kind: token.EOF, Offset: start, Len: 0}, nil

	case isDigit(l.ch):
		return l.readNumber(), nil

	case l.ch == '"':
		return l.readString()

	case isIdentStart(l.ch):
		for isIdentPart(l.ch) {
			l.readChar()
		}
		return &token.Token{Kind: token.IDENT, Offset: start, Len: l.position - start}, nil

	default:
		n := l.readPunct()
		if n == 0 {
			return nil, diag.NewSourceError(l.src, start, "invalid token")
		}
		for i := 0; i < n; i++ {
			l.readChar()
		}
		return &token.Token{Kind: token.PUNCT, Offset: start, Len: n}, nil
	}
}

// readPunct returns the length, in bytes, of the punctuator starting
// at the current character: 2 for the greedily-recognised two-byte
// operators, 1 for any other ASCII punctuation, 0 if none applies.
func (l *Lexer) readPunct() int {
	if l.position+2 <= len(l.src) {
		switch l.src[l.position : l.position+2] {
		case "==", "!=", "<=", ">=":
			return 2
		}
	}
	if isPunct(l.ch) {
		return 1
	}
	return 0
}

func (l *Lexer) readNumber() *token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.src[start:l.position]
	val, _ := strconv.ParseUint(lexeme, 10, 64)
	return &token.Token{Kind: token.NUM, Offset: start, Len: l.position - start, Value: int64(val)}
}

// readString scans a string literal, starting at the opening quote,
// decoding escapes into a fresh byte buffer. The buffer is allocated
// with one extra trailing byte which, left at its Go zero value,
// gives the decoded string its trailing NUL terminator.
func (l *Lexer) readString() (*token.Token, error) {
	start := l.position
	l.readChar() // consume opening quote

	var decoded []byte
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return nil, diag.NewSourceError(l.src, start, "unclosed string literal")
		}
		if l.ch == '\\' {
			b, err := l.readEscape()
			if err != nil {
				return nil, err
			}
			decoded = append(decoded, b)
			continue
		}
		decoded = append(decoded, l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote

	buf := make([]byte, len(decoded)+1)
	copy(buf, decoded)

	return &token.Token{
		Kind:   token.STRING,
		Offset: start,
		Len:    l.position - start,
		Str:    buf,
	}, nil
}

// readEscape decodes a single backslash escape: \a\b\t\n\v\f\r decode
// to their C values, \e to 27, \xHH... consumes a maximal hex run,
// \0-\7 up to three octal digits, anything else decodes to the
// literal following byte.
func (l *Lexer) readEscape() (byte, error) {
	backslashPos := l.position
	l.readChar() // consume '\'

	switch l.ch {
	case 'a':
		l.readChar()
		return 7, nil
	case 'b':
		l.readChar()
		return 8, nil
	case 't':
		l.readChar()
		return '\t', nil
	case 'n':
		l.readChar()
		return '\n', nil
	case 'v':
		l.readChar()
		return 11, nil
	case 'f':
		l.readChar()
		return 12, nil
	case 'r':
		l.readChar()
		return '\r', nil
	case 'e':
		l.readChar()
		return 27, nil
	case 'x':
		l.readChar()
		if !isHexDigit(l.ch) {
			return 0, diag.NewSourceError(l.src, backslashPos, "invalid hex escape sequence")
		}
		start := l.position
		for isHexDigit(l.ch) {
			l.readChar()
		}
		v, _ := strconv.ParseUint(l.src[start:l.position], 16, 8)
		return byte(v), nil
	default:
		if l.ch >= '0' && l.ch <= '7' {
			start := l.position
			for i := 0; i < 3 && l.ch >= '0' && l.ch <= '7'; i++ {
				l.readChar()
			}
			v, _ := strconv.ParseUint(l.src[start:l.position], 8, 8)
			return byte(v), nil
		}
		b := l.ch
		l.readChar()
		return b, nil
	}
}

// convertKeywords retags any IDENT token whose lexeme names a
// reserved word, after the full stream has been produced.
func convertKeywords(src string, toks []*token.Token) {
	for _, t := range toks {
		if t.Kind != token.IDENT {
			continue
		}
		if token.IsKeyword(t.Lexeme(src)) {
			t.Kind = token.KEYWORD
		}
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// isPunct reports whether ch is one of the ASCII punctuation
// characters our grammar ever asks for; unlike C's ispunct() we don't
// need to recognise the full C locale's punctuation set, only the
// characters our grammar's tokens actually use.
func isPunct(ch byte) bool {
	return strings.IndexByte("+-*/%^!<>=(){}[];,&.", ch) >= 0
}
