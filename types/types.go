// Package types implements the small type system used to decorate
// every expression and object in the compiler: int, char, pointer,
// array and function types.
package types

import "github.com/skx/ycc/token"

// Kind identifies the shape of a Type.
type Kind int

// The kinds of type our subset of C supports.
const (
	// KindInt is the 8-byte signed integer type.
	KindInt Kind = iota

	// KindChar is the 1-byte integer type.
	KindChar

	// KindPtr is a pointer to some Base type.
	KindPtr

	// KindArray is a fixed-length run of some Base type.
	KindArray

	// KindFunc is a function type: a Base return type plus Params.
	KindFunc
)

// Type describes the type of an object or expression.
//
// Base is the pointee/element type for KindPtr and KindArray, and the
// return type for KindFunc. Params holds the ordered parameter types
// of a KindFunc. NameTok is the declarator's identifier token, kept
// purely so that diagnostics can point at the declaration that
// introduced the type.
type Type struct {
	Kind    Kind
	Size    int
	Base    *Type
	Params  []*Type
	NameTok *token.Token
}

// Int and Char are the two singleton scalar types created at startup.
// Never mutate these directly; use CopyOf when a type is going to be
// attached to a declarator and might later need a NameTok of its own.
var (
	Int  = &Type{Kind: KindInt, Size: 8}
	Char = &Type{Kind: KindChar, Size: 1}
)

// IsInteger reports whether t is int or char.
func IsInteger(t *Type) bool {
	return t.Kind == KindInt || t.Kind == KindChar
}

// IsPointerLike reports whether t has a Base type, i.e. is a pointer
// or an array.
func IsPointerLike(t *Type) bool {
	return t.Base != nil
}

// CopyOf returns a shallow copy of t, so that attaching a type to a
// new object (and later tagging it with a NameTok) never mutates a
// shared singleton such as Int or Char.
func CopyOf(t *Type) *Type {
	cp := *t
	return &cp
}

// PointerTo returns a pointer type whose element type is base.
func PointerTo(base *Type) *Type {
	return &Type{Kind: KindPtr, Size: 8, Base: base}
}

// ArrayOf returns an array type of length elements of type base.
func ArrayOf(base *Type, length int) *Type {
	return &Type{Kind: KindArray, Size: base.Size * length, Base: base}
}

// FuncType returns a function type returning returnType. Its Size is
// left at zero: a function type's size is never queried.
func FuncType(returnType *Type) *Type {
	return &Type{Kind: KindFunc, Base: returnType}
}
