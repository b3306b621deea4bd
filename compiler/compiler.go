// Package compiler orchestrates the three pipeline stages - lexer,
// parser, code generator - behind a small public API
// (`New`/`SetDebug`/`Compile`).
package compiler

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/skx/ycc/codegen"
	"github.com/skx/ycc/lexer"
	"github.com/skx/ycc/parser"
)

// Compiler holds the state for a single compilation: the source text
// and a debug flag controlling whether a comment banner is prepended
// to the emitted assembly. The per-stage state (locals/globals,
// push/pop depth, label and anonymous-global counters) lives inside
// parser.Context and codegen.Generator, each constructed fresh by
// Compile - this struct is just the stable entry point.
type Compiler struct {
	// source is the C source text to compile.
	source string

	// debug controls whether a banner comment naming the source is
	// prepended to the generated assembly.
	debug bool
}

// New creates a new Compiler over the given source text.
func New(source string) *Compiler {
	return &Compiler{source: source}
}

// SetDebug toggles the debug banner in the generated output.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Compile runs source through the lexer, parser and code generator in
// turn, returning the resulting AT&T assembly text. Any stage failing
// returns a non-nil error (always either a *diag.SourceError or a
// *diag.InternalError, wrapped with the stage name via
// github.com/pkg/errors.WithMessage, whose Unwrap lets the standard
// library's errors.As reach the original diagnostic).
func (c *Compiler) Compile() (string, error) {
	toks, err := lexer.Tokenize(c.source)
	if err != nil {
		return "", errors.WithMessage(err, "lexing")
	}

	objs, err := parser.Parse(c.source, toks)
	if err != nil {
		return "", errors.WithMessage(err, "parsing")
	}

	var buf bytes.Buffer
	if c.debug {
		buf.WriteString("# generated by ycc\n")
	}
	if err := codegen.Generate(&buf, c.source, objs); err != nil {
		return "", errors.WithMessage(err, "generating code")
	}

	return buf.String(), nil
}
