package parser

import (
	"github.com/skx/ycc/ast"
	"github.com/skx/ycc/diag"
	"github.com/skx/ycc/types"
)

// addType decorates node and everything reachable from it with a
// *types.Type. It is idempotent and safe to call on a node more than
// once: a node whose Type is already set, and everything below it, is
// assumed already decorated and is left untouched.
//
// It is a method on Context (rather than a free function) solely so
// that the one case that can fail on otherwise-valid-looking source -
// dereferencing a non-pointer - can report a properly positioned
// *diag.SourceError. It reports that failure by panicking; callers at
// the edge of a single Parse call recover it.
func (p *Context) addType(node *ast.Node) {
	if node == nil || node.Type != nil {
		return
	}

	p.addType(node.Lhs)
	p.addType(node.Rhs)
	p.addType(node.Cond)
	p.addType(node.Then)
	p.addType(node.Els)
	p.addType(node.Init)
	p.addType(node.Inc)
	for _, n := range node.Body {
		p.addType(n)
	}
	for _, n := range node.Args {
		p.addType(n)
	}

	switch node.Kind {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Neg, ast.Assign:
		node.Type = node.Lhs.Type

	case ast.Eq, ast.Ne, ast.Lt, ast.Le:
		node.Type = types.Int

	case ast.Num:
		node.Type = types.Int

	case ast.Var:
		node.Type = node.Obj.Type

	case ast.Addr:
		if node.Lhs.Type.Kind == types.KindArray {
			node.Type = types.PointerTo(node.Lhs.Type.Base)
		} else {
			node.Type = types.PointerTo(node.Lhs.Type)
		}

	case ast.Deref:
		if node.Lhs.Type.Base == nil {
			offset := 0
			if node.Tok != nil {
				offset = node.Tok.Offset
			}
			panic(diag.NewSourceError(p.src, offset, "invalid pointer dereference"))
		}
		node.Type = node.Lhs.Type.Base

	case ast.Funcall:
		node.Type = types.Int

	case ast.StmtExpr:
		if n := len(node.Body); n > 0 {
			last := node.Body[n-1]
			if last.Kind == ast.ExprStmt {
				node.Type = last.Lhs.Type
			}
		}
		if node.Type == nil {
			node.Type = types.Int
		}
	}
}
