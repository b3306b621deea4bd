package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingletonSizes(t *testing.T) {
	require.Equal(t, 8, Int.Size)
	require.Equal(t, 1, Char.Size)
}

func TestIsInteger(t *testing.T) {
	require.True(t, IsInteger(Int))
	require.True(t, IsInteger(Char))
	require.False(t, IsInteger(PointerTo(Int)))
}

func TestIsPointerLike(t *testing.T) {
	require.True(t, IsPointerLike(PointerTo(Int)))
	require.True(t, IsPointerLike(ArrayOf(Int, 4)))
	require.False(t, IsPointerLike(Int))
}

func TestPointerAndArraySizes(t *testing.T) {
	p := PointerTo(Char)
	require.Equal(t, 8, p.Size)
	require.Same(t, Char, p.Base)

	a := ArrayOf(Int, 3)
	require.Equal(t, 24, a.Size)

	nested := ArrayOf(ArrayOf(Char, 4), 2)
	require.Equal(t, 8, nested.Size)
}

func TestCopyOfIsIndependent(t *testing.T) {
	cp := CopyOf(Int)
	cp.Size = 1234

	require.Equal(t, 8, Int.Size, "mutating a copy must not affect the Int singleton")
	require.Equal(t, 1234, cp.Size)
}

func TestFuncType(t *testing.T) {
	ft := FuncType(Int)
	require.Equal(t, KindFunc, ft.Kind)
	require.Same(t, Int, ft.Base)
}
