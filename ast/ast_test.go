package ast

import (
	"testing"

	"github.com/skx/ycc/token"
	"github.com/skx/ycc/types"
	"github.com/stretchr/testify/require"
)

func TestNewNum(t *testing.T) {
	n := NewNum(42, &token.Token{Offset: 3})
	require.Equal(t, Num, n.Kind)
	require.Equal(t, int64(42), n.Val)
	require.Equal(t, 3, n.Tok.Offset)
}

func TestNewUnaryAndBinary(t *testing.T) {
	lhs := NewNum(1, nil)
	rhs := NewNum(2, nil)

	u := NewUnary(Neg, lhs, nil)
	require.Equal(t, Neg, u.Kind)
	require.Same(t, lhs, u.Lhs)

	b := NewBinary(Add, lhs, rhs, nil)
	require.Equal(t, Add, b.Kind)
	require.Same(t, lhs, b.Lhs)
	require.Same(t, rhs, b.Rhs)
}

func TestNewVarReferencesObject(t *testing.T) {
	o := NewLocal("x", types.Int)
	v := NewVar(o, nil)

	require.Equal(t, Var, v.Kind)
	require.Same(t, o, v.Obj)
}

func TestObjectConstructors(t *testing.T) {
	l := NewLocal("x", types.Int)
	require.True(t, l.IsLocal)
	require.False(t, l.IsFunction)

	g := NewGlobal("counter", types.Int)
	require.False(t, g.IsLocal)
	require.False(t, g.IsFunction)

	f := NewFunction("main", types.FuncType(types.Int))
	require.True(t, f.IsFunction)
	require.False(t, f.IsLocal)
}

func TestKindStringIsTotal(t *testing.T) {
	for k := Num; k <= For; k++ {
		require.NotEqual(t, "Unknown", k.String())
	}
	require.Equal(t, "Unknown", Kind(999).String())
}

// A function's Body can hold a Block whose Body in turn holds the
// object's own Var reference - exercising the mutual recursion this
// package exists to model.
func TestMutualRecursion(t *testing.T) {
	fn := NewFunction("main", types.FuncType(types.Int))
	local := NewLocal("x", types.Int)
	fn.Locals = []*Object{local}

	ref := NewVar(local, nil)
	fn.Body = &Node{Kind: Block, Body: []*Node{
		{Kind: ExprStmt, Lhs: ref},
	}}

	require.Same(t, local, fn.Body.Body[0].Lhs.Obj)
}
