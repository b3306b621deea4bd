// Package parser implements a recursive-descent parser for our
// subset of C: it consumes a token sequence and produces a list of
// top-level objects (functions and global variables), performing
// type-directed rewrites and decorating every expression with a type
// as it goes.
//
// Each grammar rule is a method on Context that reads from the
// current cursor position and advances it, rather than threading a
// "remaining tokens" value through every call.
package parser

import (
	"fmt"

	"github.com/skx/ycc/ast"
	"github.com/skx/ycc/diag"
	"github.com/skx/ycc/token"
	"github.com/skx/ycc/types"
)

// Context holds all of the parser's state for a single compilation:
// the token stream, the cursor, the function currently being parsed
// and the process-wide list of globals. A fresh Context is
// constructed per call to Parse, so nothing here is shared across
// compilations.
type Context struct {
	src  string
	toks []*token.Token
	pos  int

	// locals holds the current function's locals in declaration
	// order (parameters first, left-to-right, then subsequent local
	// declarations in the order they're written). Name resolution
	// scans it back-to-front so a later declaration shadows an
	// earlier one with the same name.
	locals []*ast.Object

	globals []*ast.Object

	anonCounter int
}

// Parse runs the parser over toks (as produced by lexer.Tokenize) and
// returns the program's top-level objects.
func Parse(src string, toks []*token.Token) (objs []*ast.Object, err error) {
	p := &Context{src: src, toks: toks}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	return p.program()
}

// --- cursor helpers ---

func (p *Context) cur() *token.Token {
	return p.toks[p.pos]
}

func (p *Context) at(offset int) *token.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		idx = len(p.toks) - 1
	}
	return p.toks[idx]
}

func (p *Context) is(op string) bool {
	return p.cur().Is(p.src, op)
}

func (p *Context) advance() *token.Token {
	t := p.cur()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

// skip consumes the current token after asserting its lexeme is op.
func (p *Context) skip(op string) error {
	if !p.is(op) {
		return p.errorf("expected '%s'", op)
	}
	p.advance()
	return nil
}

// consume advances past the current token and reports true if its
// lexeme is op; otherwise it leaves the cursor untouched.
func (p *Context) consume(op string) bool {
	if p.is(op) {
		p.advance()
		return true
	}
	return false
}

func (p *Context) errorf(format string, args ...interface{}) error {
	return diag.NewSourceError(p.src, p.cur().Offset, format, args...)
}

// isTypeNameAt reports whether the token offset positions ahead of the
// cursor starts a type name ("int" or "char").
func (p *Context) isTypeNameAt(offset int) bool {
	t := p.at(offset)
	if t.Kind != token.KEYWORD {
		return false
	}
	lex := t.Lexeme(p.src)
	return lex == "int" || lex == "char"
}

// --- name resolution ---

func (p *Context) findVar(tok *token.Token) *ast.Object {
	name := tok.Lexeme(p.src)
	for i := len(p.locals) - 1; i >= 0; i-- {
		if p.locals[i].Name == name {
			return p.locals[i]
		}
	}
	for i := len(p.globals) - 1; i >= 0; i-- {
		if p.globals[i].Name == name {
			return p.globals[i]
		}
	}
	return nil
}

func (p *Context) newLocal(name string, ty *types.Type) *ast.Object {
	o := ast.NewLocal(name, ty)
	p.locals = append(p.locals, o)
	return o
}

func (p *Context) newGlobal(name string, ty *types.Type) *ast.Object {
	o := ast.NewGlobal(name, ty)
	p.globals = append(p.globals, o)
	return o
}

// newStringLiteral registers a string token as an anonymous global
// named ".L..<counter>", with InitData set to the decoded bytes
// (including the trailing NUL).
func (p *Context) newStringLiteral(tok *token.Token) *ast.Object {
	name := fmt.Sprintf(".L..%d", p.anonCounter)
	p.anonCounter++
	ty := types.ArrayOf(types.Char, len(tok.Str))
	o := p.newGlobal(name, ty)
	o.InitData = tok.Str
	return o
}

// --- program / top-level declarations ---

// program = (function-def | global-var)*
func (p *Context) program() ([]*ast.Object, error) {
	for p.cur().Kind != token.EOF {
		basety, err := p.declspec()
		if err != nil {
			return nil, err
		}
		if err := p.topLevelDecl(basety); err != nil {
			return nil, err
		}
	}
	return p.globals, nil
}

// topLevelDecl disambiguates a function definition from a (possibly
// multi-declarator) global-variable declaration by tentatively
// applying declarator and inspecting the resulting type's kind.
func (p *Context) topLevelDecl(basety *types.Type) error {
	save := p.pos
	ty, err := p.declarator(basety)
	if err != nil {
		return err
	}
	if ty.Kind == types.KindFunc {
		return p.function(ty)
	}
	p.pos = save
	return p.globalVar(basety)
}

func (p *Context) function(ty *types.Type) error {
	fn := ast.NewFunction(identName(ty.NameTok, p.src), ty)
	p.globals = append(p.globals, fn)

	p.locals = nil
	for _, param := range ty.Params {
		pobj := p.newLocal(identName(param.NameTok, p.src), param)
		fn.Params = append(fn.Params, pobj)
	}

	if err := p.skip("{"); err != nil {
		return err
	}
	body, err := p.compoundStmt()
	if err != nil {
		return err
	}
	fn.Body = body
	fn.Locals = p.locals
	return nil
}

// global-var = declspec (declarator ("," declarator)*)? ";"
func (p *Context) globalVar(basety *types.Type) error {
	first := true
	for !p.is(";") {
		if !first {
			if err := p.skip(","); err != nil {
				return err
			}
		}
		first = false
		ty, err := p.declarator(basety)
		if err != nil {
			return err
		}
		p.newGlobal(identName(ty.NameTok, p.src), ty)
	}
	return p.skip(";")
}

// --- declarators ---

// declspec = "int" | "char"
func (p *Context) declspec() (*types.Type, error) {
	switch {
	case p.is("int"):
		p.advance()
		return types.CopyOf(types.Int), nil
	case p.is("char"):
		p.advance()
		return types.CopyOf(types.Char), nil
	}
	return nil, p.errorf("expected a type")
}

// declarator = "*"* IDENT type-suffix
func (p *Context) declarator(base *types.Type) (*types.Type, error) {
	ty := base
	for p.consume("*") {
		ty = types.PointerTo(ty)
	}
	if p.cur().Kind != token.IDENT {
		return nil, p.errorf("expected an identifier")
	}
	nameTok := p.advance()
	ty, err := p.typeSuffix(ty)
	if err != nil {
		return nil, err
	}
	ty.NameTok = nameTok
	return ty, nil
}

// type-suffix = "(" func-params | "[" NUM "]" type-suffix | ε
func (p *Context) typeSuffix(ty *types.Type) (*types.Type, error) {
	if p.consume("(") {
		return p.funcParams(ty)
	}
	if p.consume("[") {
		if p.cur().Kind != token.NUM {
			return nil, p.errorf("expected a number")
		}
		length := int(p.advance().Value)
		if err := p.skip("]"); err != nil {
			return nil, err
		}
		inner, err := p.typeSuffix(ty)
		if err != nil {
			return nil, err
		}
		return types.ArrayOf(inner, length), nil
	}
	return ty, nil
}

// func-params = (param ("," param)*)? ")"
// param       = declspec declarator
func (p *Context) funcParams(returnType *types.Type) (*types.Type, error) {
	var params []*types.Type
	first := true
	for !p.is(")") {
		if !first {
			if err := p.skip(","); err != nil {
				return nil, err
			}
		}
		first = false
		basety, err := p.declspec()
		if err != nil {
			return nil, err
		}
		pty, err := p.declarator(basety)
		if err != nil {
			return nil, err
		}
		params = append(params, pty)
	}
	if err := p.skip(")"); err != nil {
		return nil, err
	}
	ft := types.FuncType(returnType)
	ft.Params = params
	return ft, nil
}

func identName(tok *token.Token, src string) string {
	return tok.Lexeme(src)
}

// --- statements ---

// compound-stmt = (declaration | stmt)* "}"
func (p *Context) compoundStmt() (*ast.Node, error) {
	var body []*ast.Node
	for !p.is("}") {
		var n *ast.Node
		var err error
		if p.is("int") || p.is("char") {
			n, err = p.declaration()
		} else {
			n, err = p.stmt()
		}
		if err != nil {
			return nil, err
		}
		p.addType(n)
		body = append(body, n)
	}
	tok := p.advance() // consume "}"
	return &ast.Node{Kind: ast.Block, Body: body, Tok: tok}, nil
}

// declaration = declspec (declarator ("=" assign)?
//                         ("," declarator ("=" assign)?)*)? ";"
func (p *Context) declaration() (*ast.Node, error) {
	tok := p.cur()
	basety, err := p.declspec()
	if err != nil {
		return nil, err
	}

	var body []*ast.Node
	first := true
	for !p.is(";") {
		if !first {
			if err := p.skip(","); err != nil {
				return nil, err
			}
		}
		first = false

		ty, err := p.declarator(basety)
		if err != nil {
			return nil, err
		}
		v := p.newLocal(identName(ty.NameTok, p.src), ty)
		if !p.is("=") {
			continue
		}
		eqTok := p.advance()
		lhs := ast.NewVar(v, ty.NameTok)
		rhs, err := p.assign()
		if err != nil {
			return nil, err
		}
		assignNode := ast.NewBinary(ast.Assign, lhs, rhs, eqTok)
		body = append(body, ast.NewUnary(ast.ExprStmt, assignNode, eqTok))
	}
	if err := p.skip(";"); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.Block, Body: body, Tok: tok}, nil
}

// stmt = "return" expr ";"
//      | "if" "(" expr ")" stmt ("else" stmt)?
//      | "for" "(" expr-stmt expr? ";" expr? ")" stmt
//      | "while" "(" expr ")" stmt
//      | "{" compound-stmt
//      | expr-stmt
func (p *Context) stmt() (*ast.Node, error) {
	switch {
	case p.is("return"):
		tok := p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(";"); err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.Return, e, tok), nil

	case p.is("{"):
		p.advance()
		return p.compoundStmt()

	case p.is("if"):
		tok := p.advance()
		if err := p.skip("("); err != nil {
			return nil, err
		}
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}
		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		node := &ast.Node{Kind: ast.If, Tok: tok, Cond: cond, Then: then}
		if p.is("else") {
			p.advance()
			els, err := p.stmt()
			if err != nil {
				return nil, err
			}
			node.Els = els
		}
		return node, nil

	case p.is("for"):
		tok := p.advance()
		if err := p.skip("("); err != nil {
			return nil, err
		}
		init, err := p.exprStmt()
		if err != nil {
			return nil, err
		}
		node := &ast.Node{Kind: ast.For, Tok: tok, Init: init}
		if !p.is(";") {
			cond, err := p.expr()
			if err != nil {
				return nil, err
			}
			node.Cond = cond
		}
		if err := p.skip(";"); err != nil {
			return nil, err
		}
		if !p.is(")") {
			inc, err := p.expr()
			if err != nil {
				return nil, err
			}
			node.Inc = inc
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}
		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		node.Then = then
		return node, nil

	case p.is("while"):
		tok := p.advance()
		if err := p.skip("("); err != nil {
			return nil, err
		}
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}
		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.For, Tok: tok, Cond: cond, Then: then}, nil
	}

	return p.exprStmt()
}

// expr-stmt = expr? ";"
func (p *Context) exprStmt() (*ast.Node, error) {
	if p.is(";") {
		tok := p.advance()
		return &ast.Node{Kind: ast.Block, Tok: tok}, nil
	}
	tok := p.cur()
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.skip(";"); err != nil {
		return nil, err
	}
	return ast.NewUnary(ast.ExprStmt, e, tok), nil
}

// --- expressions ---

// expr = assign
func (p *Context) expr() (*ast.Node, error) {
	return p.assign()
}

// assign = equality ("=" assign)?
func (p *Context) assign() (*ast.Node, error) {
	node, err := p.equality()
	if err != nil {
		return nil, err
	}
	if p.is("=") {
		tok := p.advance()
		rhs, err := p.assign()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(ast.Assign, node, rhs, tok), nil
	}
	return node, nil
}

// equality = relational (("==" | "!=") relational)*
func (p *Context) equality() (*ast.Node, error) {
	node, err := p.relational()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("=="):
			tok := p.advance()
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Eq, node, rhs, tok)
		case p.is("!="):
			tok := p.advance()
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Ne, node, rhs, tok)
		default:
			return node, nil
		}
	}
}

// relational = add (("<"|"<="|">"|">=") add)*
//
// ">" and ">=" are not distinct node kinds: the operands are swapped
// so they become "<" and "<=".
func (p *Context) relational() (*ast.Node, error) {
	node, err := p.add()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("<"):
			tok := p.advance()
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Lt, node, rhs, tok)
		case p.is("<="):
			tok := p.advance()
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Le, node, rhs, tok)
		case p.is(">"):
			tok := p.advance()
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Lt, rhs, node, tok)
		case p.is(">="):
			tok := p.advance()
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Le, rhs, node, tok)
		default:
			return node, nil
		}
	}
}

// add = mul (("+"|"-") mul)*
func (p *Context) add() (*ast.Node, error) {
	node, err := p.mul()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("+"):
			tok := p.advance()
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			node, err = p.newAdd(node, rhs, tok)
			if err != nil {
				return nil, err
			}
		case p.is("-"):
			tok := p.advance()
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			node, err = p.newSub(node, rhs, tok)
			if err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

// newAdd implements the type-directed "+" rewrite: int+int is a
// plain add; ptr+int (normalized from int+ptr) scales the integer
// operand by the pointee size; ptr+ptr is rejected.
func (p *Context) newAdd(lhs, rhs *ast.Node, tok *token.Token) (*ast.Node, error) {
	p.addType(lhs)
	p.addType(rhs)

	if types.IsInteger(lhs.Type) && types.IsInteger(rhs.Type) {
		return ast.NewBinary(ast.Add, lhs, rhs, tok), nil
	}
	if types.IsPointerLike(lhs.Type) && types.IsPointerLike(rhs.Type) {
		return nil, diag.NewSourceError(p.src, tok.Offset, "invalid operands")
	}
	if types.IsInteger(lhs.Type) && types.IsPointerLike(rhs.Type) {
		lhs, rhs = rhs, lhs
	}
	scale := ast.NewBinary(ast.Mul, rhs, ast.NewNum(int64(lhs.Type.Base.Size), tok), tok)
	p.addType(scale)
	return ast.NewBinary(ast.Add, lhs, scale, tok), nil
}

// newSub implements the "-" rewrite: int-int is plain; ptr-int scales
// like newAdd; ptr-ptr divides the byte difference by the element
// size, yielding an int element count.
func (p *Context) newSub(lhs, rhs *ast.Node, tok *token.Token) (*ast.Node, error) {
	p.addType(lhs)
	p.addType(rhs)

	if types.IsInteger(lhs.Type) && types.IsInteger(rhs.Type) {
		return ast.NewBinary(ast.Sub, lhs, rhs, tok), nil
	}
	if types.IsPointerLike(lhs.Type) && types.IsInteger(rhs.Type) {
		scale := ast.NewBinary(ast.Mul, rhs, ast.NewNum(int64(lhs.Type.Base.Size), tok), tok)
		p.addType(scale)
		node := ast.NewBinary(ast.Sub, lhs, scale, tok)
		node.Type = lhs.Type
		return node, nil
	}
	if types.IsPointerLike(lhs.Type) && types.IsPointerLike(rhs.Type) {
		node := ast.NewBinary(ast.Sub, lhs, rhs, tok)
		node.Type = types.Int
		return ast.NewBinary(ast.Div, node, ast.NewNum(int64(lhs.Type.Base.Size), tok), tok), nil
	}
	return nil, diag.NewSourceError(p.src, tok.Offset, "invalid operands")
}

// mul = unary (("*"|"/") unary)*
func (p *Context) mul() (*ast.Node, error) {
	node, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("*"):
			tok := p.advance()
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Mul, node, rhs, tok)
		case p.is("/"):
			tok := p.advance()
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node = ast.NewBinary(ast.Div, node, rhs, tok)
		default:
			return node, nil
		}
	}
}

// unary = ("+"|"-"|"&"|"*") unary | postfix
func (p *Context) unary() (*ast.Node, error) {
	switch {
	case p.is("+"):
		p.advance()
		return p.unary()
	case p.is("-"):
		tok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.Neg, operand, tok), nil
	case p.is("&"):
		tok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.Addr, operand, tok), nil
	case p.is("*"):
		tok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.Deref, operand, tok), nil
	}
	return p.postfix()
}

// postfix = primary ("[" expr "]")*
//
// a[i] lowers to *(a + i), using the same type-directed add rewrite
// as an explicit "+".
func (p *Context) postfix() (*ast.Node, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.is("[") {
		tok := p.advance()
		idx, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip("]"); err != nil {
			return nil, err
		}
		sum, err := p.newAdd(node, idx, tok)
		if err != nil {
			return nil, err
		}
		node = ast.NewUnary(ast.Deref, sum, tok)
	}
	return node, nil
}

// funcall = IDENT "(" (assign ("," assign)*)? ")"
func (p *Context) funcall() (*ast.Node, error) {
	tok := p.cur()
	p.advance() // identifier
	p.advance() // "("

	var args []*ast.Node
	first := true
	for !p.is(")") {
		if !first {
			if err := p.skip(","); err != nil {
				return nil, err
			}
		}
		first = false
		a, err := p.assign()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if err := p.skip(")"); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.Funcall, Tok: tok, Funcname: tok.Lexeme(p.src), Args: args}, nil
}

// primary = "(" "{" compound-stmt ")"   // statement-expression
//         | "(" expr ")"
//         | "sizeof" unary
//         | IDENT "(" (assign ("," assign)*)? ")"
//         | IDENT
//         | STR
//         | NUM
func (p *Context) primary() (*ast.Node, error) {
	switch {
	case p.is("("):
		if p.at(1).Is(p.src, "{") {
			tok := p.advance() // "("
			p.advance()        // "{"
			body, err := p.compoundStmt()
			if err != nil {
				return nil, err
			}
			if err := p.skip(")"); err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.StmtExpr, Tok: tok, Body: body.Body}, nil
		}
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.skip(")"); err != nil {
			return nil, err
		}
		return e, nil

	case p.is("sizeof"):
		tok := p.advance()
		// sizeof also accepts a bare type name in parens ("sizeof(int*)"),
		// not just an expression; a lookahead for a type keyword right
		// after "(" disambiguates that form from a parenthesized
		// expression operand.
		if p.is("(") && p.isTypeNameAt(1) {
			p.advance() // "("
			ty, err := p.declspec()
			if err != nil {
				return nil, err
			}
			for p.consume("*") {
				ty = types.PointerTo(ty)
			}
			if err := p.skip(")"); err != nil {
				return nil, err
			}
			return ast.NewNum(int64(ty.Size), tok), nil
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		p.addType(operand)
		return ast.NewNum(int64(operand.Type.Size), tok), nil

	case p.cur().Kind == token.NUM:
		tok := p.advance()
		return ast.NewNum(tok.Value, tok), nil

	case p.cur().Kind == token.STRING:
		tok := p.advance()
		o := p.newStringLiteral(tok)
		return ast.NewVar(o, tok), nil

	case p.cur().Kind == token.IDENT:
		if p.at(1).Is(p.src, "(") {
			return p.funcall()
		}
		tok := p.cur()
		v := p.findVar(tok)
		if v == nil {
			return nil, p.errorf("undefined variable")
		}
		p.advance()
		return ast.NewVar(v, tok), nil
	}

	return nil, p.errorf("expected an expression")
}
