package types

import "strings"

// Kind classifies a host type.
type Kind uint8

const (
	// KindClass is an instantiable or abstract class.
	KindClass Kind = iota + 1

	// KindInterface is an interface type.
	KindInterface

	// KindPrimitive is one of the eight primitive types or void.
	KindPrimitive

	// KindArray is an array type with an element type.
	KindArray

	// KindNull is the type of the null reference. Only Null has this kind.
	KindNull
)

// String returns the lowercase kind name used in declarations.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Primitive identifies a primitive type for switch-based tables.
type Primitive uint8

const (
	NotPrimitive Primitive = iota
	PrimBoolean
	PrimByte
	PrimChar
	PrimShort
	PrimInt
	PrimLong
	PrimFloat
	PrimDouble
	PrimVoid
)

// Type is an interned host type.
//
// Type values are compared by pointer identity. A Type is immutable after it
// is defined; the only lazily populated state lives in the owning Universe.
type Type struct {
	id         uint32
	name       string
	kind       Kind
	prim       Primitive
	abstract   bool
	super      *Type
	interfaces []*Type
	elem       *Type
}

// ID returns the identifier of t, unique within its universe.
func (t *Type) ID() uint32 { return t.id }

// Name returns the declared name of t. Array types are named "Elem[]".
func (t *Type) Name() string { return t.name }

// String implements fmt.Stringer.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Kind returns the kind of t.
func (t *Type) Kind() Kind { return t.kind }

// Primitive returns the primitive identifier of t, or NotPrimitive.
func (t *Type) Primitive() Primitive { return t.prim }

// IsPrimitive reports whether t is a primitive type (including void).
func (t *Type) IsPrimitive() bool { return t.kind == KindPrimitive }

// IsInterface reports whether t is an interface.
func (t *Type) IsInterface() bool { return t.kind == KindInterface }

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t.kind == KindArray }

// IsNull reports whether t is the null sentinel.
func (t *Type) IsNull() bool { return t.kind == KindNull }

// IsAbstract reports whether t cannot be instantiated directly:
// interfaces and classes declared abstract.
func (t *Type) IsAbstract() bool {
	return t.kind == KindInterface || t.abstract
}

// Super returns the superclass of t, or nil for Object, interfaces,
// primitives and Null. Array types report Object.
func (t *Type) Super() *Type { return t.super }

// Interfaces returns the directly implemented (or extended) interfaces.
func (t *Type) Interfaces() []*Type {
	out := make([]*Type, len(t.interfaces))
	copy(out, t.interfaces)
	return out
}

// Elem returns the element type of an array type, or nil.
func (t *Type) Elem() *Type { return t.elem }

// Dims returns the number of array dimensions of t.
func (t *Type) Dims() int {
	n := 0
	for c := t; c != nil && c.kind == KindArray; c = c.elem {
		n++
	}
	return n
}

// arrayName returns the name of the array type with the given element.
func arrayName(elem *Type) string {
	return elem.name + "[]"
}

// splitArrayName strips trailing "[]" pairs from name.
func splitArrayName(name string) (base string, dims int) {
	base = name
	for strings.HasSuffix(base, "[]") {
		base = strings.TrimSuffix(base, "[]")
		dims++
	}
	return base, dims
}
