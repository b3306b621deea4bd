// Package ast defines the abstract syntax tree produced by the
// parser, and the Object model (functions, globals, locals) it
// refers to.
//
// Node and Object live in one package because they are mutually
// recursive: a Var node points at the Object it names, and a
// function Object holds a Block Node as its body. Go has no forward
// declarations to let two packages import each other, so splitting
// them would require a third package just to break the cycle.
package ast

import (
	"github.com/skx/ycc/token"
	"github.com/skx/ycc/types"
)

// Kind identifies the shape of a Node.
type Kind int

// The node kinds produced by the parser.
const (
	// Num carries an integer constant in Val.
	Num Kind = iota

	// Neg, Addr, Deref are unary nodes; operand is Lhs.
	Neg
	Addr
	Deref

	// Add, Sub, Mul, Div, Eq, Ne, Lt, Le, Assign are binary nodes;
	// operands are Lhs/Rhs.
	Add
	Sub
	Mul
	Div
	Eq
	Ne
	Lt
	Le
	Assign

	// Var references Obj, a local or global object.
	Var

	// Funcall carries Funcname and an ordered Args list.
	Funcall

	// ExprStmt wraps Lhs, an expression evaluated and discarded.
	ExprStmt

	// Block and StmtExpr carry an ordered Body of statements.
	Block
	StmtExpr

	// Return carries the returned expression in Lhs.
	Return

	// If carries Cond, Then, and an optional Els.
	If

	// For carries optional Init, Cond, Inc and a required Then.
	// While loops reuse For with Init and Inc left nil.
	For
)

// String renders a Kind for diagnostics and tests.
func (k Kind) String() string {
	names := [...]string{
		"Num", "Neg", "Addr", "Deref", "Add", "Sub", "Mul", "Div",
		"Eq", "Ne", "Lt", "Le", "Assign", "Var", "Funcall", "ExprStmt",
		"Block", "StmtExpr", "Return", "If", "For",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Node is a single AST node.
//
// Only the fields relevant to Kind are populated; see the Kind
// constants above for which. Type is nil until the parser's type
// decoration pass (parser's addType) assigns it. Tok is kept solely for
// diagnostics.
type Node struct {
	Kind Kind
	Tok  *token.Token
	Type *types.Type

	// Num
	Val int64

	// Unary / binary operands.
	Lhs *Node
	Rhs *Node

	// Var
	Obj *Object

	// Funcall
	Funcname string
	Args     []*Node

	// Block / StmtExpr
	Body []*Node

	// If / For
	Cond *Node
	Then *Node
	Els  *Node
	Init *Node
	Inc  *Node
}

// NewNum builds a Num node.
func NewNum(val int64, tok *token.Token) *Node {
	return &Node{Kind: Num, Val: val, Tok: tok}
}

// NewUnary builds a unary node of the given kind.
func NewUnary(kind Kind, lhs *Node, tok *token.Token) *Node {
	return &Node{Kind: kind, Lhs: lhs, Tok: tok}
}

// NewBinary builds a binary node of the given kind.
func NewBinary(kind Kind, lhs, rhs *Node, tok *token.Token) *Node {
	return &Node{Kind: kind, Lhs: lhs, Rhs: rhs, Tok: tok}
}

// NewVar builds a Var node referencing o.
func NewVar(o *Object, tok *token.Token) *Node {
	return &Node{Kind: Var, Obj: o, Tok: tok}
}

// Object is a named storage location: a local variable, a function
// parameter (which is also registered as a local), a global
// variable, or a function.
type Object struct {
	Name       string
	Type       *types.Type
	IsLocal    bool
	IsFunction bool

	// Locals only: this object's stack-frame offset from %rbp,
	// assigned by codegen.assignLocalOffsets.
	Offset int

	// Functions only.
	Params    []*Object
	Locals    []*Object
	StackSize int
	Body      *Node

	// Globals with an initializer only; length equals Type.Size.
	InitData []byte
}

// NewLocal builds a local object (which may also be a parameter).
func NewLocal(name string, ty *types.Type) *Object {
	return &Object{Name: name, Type: ty, IsLocal: true}
}

// NewGlobal builds a global variable object.
func NewGlobal(name string, ty *types.Type) *Object {
	return &Object{Name: name, Type: ty}
}

// NewFunction builds a function object.
func NewFunction(name string, ty *types.Type) *Object {
	return &Object{Name: name, Type: ty, IsFunction: true}
}
