// Package codegen walks a parsed, type-decorated program and emits
// AT&T-syntax x86-64 assembly implementing the System V calling
// convention. Each instruction is written with its own `fmt.Fprintf`
// call rather than assembled from templates, so the generated opcode
// sequence for a given AST shape is easy to read straight off the
// method that emits it.
package codegen

import (
	"fmt"
	"io"

	"github.com/skx/ycc/ast"
	"github.com/skx/ycc/diag"
	"github.com/skx/ycc/types"
)

var argreg64 = [...]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var argreg8 = [...]string{"dil", "sil", "dl", "cl", "r8b", "r9b"}

// Generator holds the emission state for a single compilation: the
// output stream, the compile-time push/pop depth counter (see
// push/pop below) and a monotonic label counter for control-flow
// labels.
type Generator struct {
	w            io.Writer
	src          string
	depth        int
	labelCounter int
	curFn        *ast.Object
}

// Generate assigns stack offsets to every function's locals and emits
// the whole program: a .data section for every global in source
// order, then a .text section for every function in source order.
// src is the original source text, kept only so the "not an lvalue"
// failure can render a caret diagnostic instead of a bare message.
func Generate(w io.Writer, src string, objs []*ast.Object) (err error) {
	g := &Generator{w: w, src: src}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	for _, o := range objs {
		if o.IsFunction {
			assignLocalOffsets(o)
		}
	}

	g.emitData(objs)
	g.emitText(objs)
	return nil
}

func (g *Generator) emit(format string, args ...interface{}) {
	fmt.Fprintf(g.w, format+"\n", args...)
}

// assignLocalOffsets lays out fn's stack frame. Locals are stored in
// declaration order (parameters first, left-to-right); offsets are
// handed out by walking the slice back-to-front so the most recently
// declared local gets the smallest (closest to %rbp) offset.
func assignLocalOffsets(fn *ast.Object) {
	offset := 0
	for i := len(fn.Locals) - 1; i >= 0; i-- {
		v := fn.Locals[i]
		offset += v.Type.Size
		v.Offset = -offset
	}
	fn.StackSize = alignTo(offset, 16)
}

func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}

// --- data section ---

func (g *Generator) emitData(objs []*ast.Object) {
	for _, o := range objs {
		if o.IsFunction {
			continue
		}
		g.emit(".data")
		g.emit(".globl %s", o.Name)
		g.emit("%s:", o.Name)
		if o.InitData != nil {
			for _, b := range o.InitData {
				g.emit("  .byte %d", b)
			}
		} else {
			g.emit("  .zero %d", o.Type.Size)
		}
	}
}

// --- text section ---

func (g *Generator) emitText(objs []*ast.Object) {
	for _, o := range objs {
		if !o.IsFunction || o.Body == nil {
			continue
		}
		g.curFn = o

		g.emit(".globl %s", o.Name)
		g.emit(".text")
		g.emit("%s:", o.Name)

		g.emit("  push %%rbp")
		g.emit("  mov %%rsp, %%rbp")
		g.emit("  sub $%d, %%rsp", o.StackSize)

		for i, p := range o.Params {
			if p.Type.Size == 1 {
				g.emit("  mov %%%s, %d(%%rbp)", argreg8[i], p.Offset)
			} else {
				g.emit("  mov %%%s, %d(%%rbp)", argreg64[i], p.Offset)
			}
		}

		g.genStmt(o.Body)
		assertZero(g.depth)

		g.emit(".L.return.%s:", o.Name)
		g.emit("  mov %%rbp, %%rsp")
		g.emit("  pop %%rbp")
		g.emit("  ret")
	}
}

func assertZero(depth int) {
	if depth != 0 {
		panic(diag.NewInternalError("push/pop depth mismatch: %d", depth))
	}
}

// --- stack-machine push/pop discipline ---

func (g *Generator) push() {
	g.emit("  push %%rax")
	g.depth++
}

func (g *Generator) pop(reg string) {
	g.emit("  pop %%%s", reg)
	g.depth--
}

// --- lvalue addressing ---

func (g *Generator) genAddr(n *ast.Node) {
	switch n.Kind {
	case ast.Var:
		if n.Obj.IsLocal {
			g.emit("  lea %d(%%rbp), %%rax", n.Obj.Offset)
		} else {
			g.emit("  lea %s(%%rip), %%rax", n.Obj.Name)
		}
		return
	case ast.Deref:
		g.genExpr(n.Lhs)
		return
	}
	offset := 0
	if n.Tok != nil {
		offset = n.Tok.Offset
	}
	panic(diag.NewSourceError(g.src, offset, "not an lvalue: %s", n.Kind))
}

// load dereferences %rax (an address) according to ty, leaving the
// value in %rax. Arrays are never loaded - their "value" is their
// address, so a reference to one decays to a pointer for free.
func (g *Generator) load(ty *types.Type) {
	if ty.Kind == types.KindArray {
		return
	}
	if ty.Size == 1 {
		g.emit("  movsbq (%%rax), %%rax")
		return
	}
	g.emit("  mov (%%rax), %%rax")
}

// store pops an address pushed by a prior genAddr/push pair off the
// stack into %rdi and writes %rax (or %al) through it.
func (g *Generator) store(ty *types.Type) {
	g.pop("rdi")
	if ty.Size == 1 {
		g.emit("  mov %%al, (%%rdi)")
		return
	}
	g.emit("  mov %%rax, (%%rdi)")
}

// --- expressions ---

func (g *Generator) genExpr(n *ast.Node) {
	switch n.Kind {
	case ast.Num:
		g.emit("  mov $%d, %%rax", n.Val)
		return

	case ast.Neg:
		g.genExpr(n.Lhs)
		g.emit("  neg %%rax")
		return

	case ast.Var:
		g.genAddr(n)
		g.load(n.Type)
		return

	case ast.Deref:
		g.genExpr(n.Lhs)
		g.load(n.Type)
		return

	case ast.Addr:
		g.genAddr(n.Lhs)
		return

	case ast.Assign:
		g.genAddr(n.Lhs)
		g.push()
		g.genExpr(n.Rhs)
		g.store(n.Type)
		return

	case ast.StmtExpr:
		for _, stmt := range n.Body {
			g.genStmt(stmt)
		}
		return

	case ast.Funcall:
		// No 16-byte stack alignment is emitted before the call; the
		// alignment at the call is whatever the frame layout gives.
		for _, arg := range n.Args {
			g.genExpr(arg)
			g.push()
		}
		for i := len(n.Args) - 1; i >= 0; i-- {
			g.pop(argreg64[i])
		}
		g.emit("  mov $0, %%rax")
		g.emit("  call %s", n.Funcname)
		return
	}

	// Binary arithmetic/comparison: evaluate rhs, push, evaluate lhs,
	// pop rhs into %rdi, combine into %rax.
	g.genExpr(n.Rhs)
	g.push()
	g.genExpr(n.Lhs)
	g.pop("rdi")

	switch n.Kind {
	case ast.Add:
		g.emit("  add %%rdi, %%rax")
	case ast.Sub:
		g.emit("  sub %%rdi, %%rax")
	case ast.Mul:
		g.emit("  imul %%rdi, %%rax")
	case ast.Div:
		g.emit("  cqo")
		g.emit("  idiv %%rdi")
	case ast.Eq:
		g.emit("  cmp %%rdi, %%rax")
		g.emit("  sete %%al")
		g.emit("  movzb %%al, %%rax")
	case ast.Ne:
		g.emit("  cmp %%rdi, %%rax")
		g.emit("  setne %%al")
		g.emit("  movzb %%al, %%rax")
	case ast.Lt:
		g.emit("  cmp %%rdi, %%rax")
		g.emit("  setl %%al")
		g.emit("  movzb %%al, %%rax")
	case ast.Le:
		g.emit("  cmp %%rdi, %%rax")
		g.emit("  setle %%al")
		g.emit("  movzb %%al, %%rax")
	default:
		panic(diag.NewInternalError("unhandled expression kind %s", n.Kind))
	}
}

// --- statements ---

func (g *Generator) genStmt(n *ast.Node) {
	switch n.Kind {
	case ast.ExprStmt:
		g.genExpr(n.Lhs)
		return

	case ast.Return:
		g.genExpr(n.Lhs)
		g.emit("  jmp .L.return.%s", g.curFn.Name)
		return

	case ast.Block:
		for _, stmt := range n.Body {
			g.genStmt(stmt)
		}
		return

	case ast.If:
		c := g.labelCounter
		g.labelCounter++
		g.genExpr(n.Cond)
		g.emit("  cmp $0, %%rax")
		g.emit("  je .L.else.%d", c)
		g.genStmt(n.Then)
		g.emit("  jmp .L.end.%d", c)
		g.emit(".L.else.%d:", c)
		if n.Els != nil {
			g.genStmt(n.Els)
		}
		g.emit(".L.end.%d:", c)
		return

	case ast.For:
		c := g.labelCounter
		g.labelCounter++
		if n.Init != nil {
			g.genStmt(n.Init)
		}
		g.emit(".L.begin.%d:", c)
		if n.Cond != nil {
			g.genExpr(n.Cond)
			g.emit("  cmp $0, %%rax")
			g.emit("  je .L.end.%d", c)
		}
		g.genStmt(n.Then)
		if n.Inc != nil {
			g.genExpr(n.Inc)
		}
		g.emit("  jmp .L.begin.%d", c)
		g.emit(".L.end.%d:", c)
		return
	}

	panic(diag.NewInternalError("unhandled statement kind %s", n.Kind))
}
