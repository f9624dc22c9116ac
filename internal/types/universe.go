package types

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrDuplicateType is returned when a name is defined twice.
	ErrDuplicateType = errors.New("duplicate type")

	// ErrInvalidDecl is returned for a malformed type declaration.
	ErrInvalidDecl = errors.New("invalid type declaration")
)

// Wrapper is implemented by script values that wrap a host value. The
// classifier unwraps them before deciding a type.
type Wrapper interface {
	Unwrap() any
}

// Typed is implemented by host values that know their declared type.
type Typed interface {
	HostType() *Type
}

// Decl describes a type to define in a Universe.
type Decl struct {
	Name       string
	Kind       Kind
	Abstract   bool
	Super      *Type
	Interfaces []*Type
}

// Universe interns declared and array types and classifies runtime values.
//
// Thread-safety: all methods are safe for concurrent use. Definitions are
// append-only, so a *Type handed out once stays valid for the Universe's
// lifetime.
type Universe struct {
	mu       sync.RWMutex
	byName   map[string]*Type
	arrays   map[*Type]*Type
	declared []*Type
	bindings map[reflect.Type]*Type
	nextID   uint32
}

// NewUniverse creates a universe holding the builtin types and the default
// classification of Go values:
//
//	bool -> Boolean, int8 -> Byte, uint16 -> Character, int16 -> Short,
//	int32 -> Integer, int/int64 -> Long, float32 -> Float,
//	float64 -> Double, string -> String, []any -> Object[], map[string]any -> Map
func NewUniverse() *Universe {
	u := &Universe{
		byName:   make(map[string]*Type, len(builtins)),
		arrays:   make(map[*Type]*Type),
		bindings: make(map[reflect.Type]*Type),
		nextID:   firstDeclaredID,
	}
	for _, t := range builtins {
		if t == Null {
			continue
		}
		u.byName[t.name] = t
	}

	u.Bind(false, BoxedBoolean)
	u.Bind(int8(0), BoxedByte)
	u.Bind(uint16(0), BoxedChar)
	u.Bind(int16(0), BoxedShort)
	u.Bind(int32(0), BoxedInt)
	u.Bind(int64(0), BoxedLong)
	u.Bind(int(0), BoxedLong)
	u.Bind(float32(0), BoxedFloat)
	u.Bind(float64(0), BoxedDouble)
	u.Bind("", String)
	u.Bind([]any(nil), u.ArrayOf(Object))
	u.Bind(map[string]any(nil), Map)
	return u
}

// Define interns a new class or interface.
//
// A class without a superclass extends Object. Interfaces may only extend
// interfaces, and the name must not already be in use.
func (u *Universe) Define(d Decl) (*Type, error) {
	name := norm.NFC.String(d.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidDecl)
	}
	if _, dims := splitArrayName(name); dims > 0 {
		return nil, fmt.Errorf("%w: %q: array types cannot be declared", ErrInvalidDecl, name)
	}
	if name == Null.name {
		return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidDecl, name)
	}

	t := &Type{name: name, kind: d.Kind, abstract: d.Abstract}
	switch d.Kind {
	case KindClass:
		super := d.Super
		if super == nil {
			super = Object
		}
		if super.kind != KindClass {
			return nil, fmt.Errorf("%w: class %q cannot extend %s %q", ErrInvalidDecl, name, super.kind, super.name)
		}
		t.super = super
	case KindInterface:
		if d.Super != nil {
			return nil, fmt.Errorf("%w: interface %q cannot extend class %q", ErrInvalidDecl, name, d.Super.name)
		}
		t.abstract = false
	default:
		return nil, fmt.Errorf("%w: %q has kind %s", ErrInvalidDecl, name, d.Kind)
	}
	for _, i := range d.Interfaces {
		if i == nil || i.kind != KindInterface {
			return nil, fmt.Errorf("%w: %q can only implement interfaces, got %v", ErrInvalidDecl, name, i)
		}
	}
	t.interfaces = append([]*Type(nil), d.Interfaces...)

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateType, name)
	}
	t.id = u.nextID
	u.nextID++
	u.byName[name] = t
	u.declared = append(u.declared, t)
	return t, nil
}

// Lookup resolves a type name, including any number of "[]" suffixes.
func (u *Universe) Lookup(name string) (*Type, bool) {
	base, dims := splitArrayName(norm.NFC.String(name))
	if base == Null.name && dims == 0 {
		return Null, true
	}

	u.mu.RLock()
	t, ok := u.byName[base]
	u.mu.RUnlock()
	if !ok {
		return nil, false
	}
	for i := 0; i < dims; i++ {
		if t == Void {
			return nil, false
		}
		t = u.ArrayOf(t)
	}
	return t, true
}

// MustLookup is like Lookup but panics on an unknown name.
// Intended for builtin wiring and tests.
func (u *Universe) MustLookup(name string) *Type {
	t, ok := u.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("types: unknown type %q", name))
	}
	return t
}

// ArrayOf returns the interned array type with element type elem.
// Panics if elem is void or Null.
func (u *Universe) ArrayOf(elem *Type) *Type {
	if elem == Void || elem == Null || elem == nil {
		panic(fmt.Sprintf("types: invalid array element type %v", elem))
	}

	u.mu.RLock()
	t, ok := u.arrays[elem]
	u.mu.RUnlock()
	if ok {
		return t
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if t, ok := u.arrays[elem]; ok {
		return t
	}
	t = &Type{
		id:    u.nextID,
		name:  arrayName(elem),
		kind:  KindArray,
		super: Object,
		elem:  elem,
	}
	u.nextID++
	u.arrays[elem] = t
	return t
}

// Declared returns the types added with Define, in definition order.
func (u *Universe) Declared() []*Type {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*Type, len(u.declared))
	copy(out, u.declared)
	return out
}

// Names returns every resolvable non-array type name, sorted.
func (u *Universe) Names() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	names := make([]string, 0, len(u.byName))
	for n := range u.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bind classifies every Go value with the dynamic type of sample as t.
func (u *Universe) Bind(sample any, t *Type) {
	rt := reflect.TypeOf(sample)
	if rt == nil {
		panic("types: cannot bind untyped nil")
	}
	u.mu.Lock()
	u.bindings[rt] = t
	u.mu.Unlock()
}

// TypeOf classifies a runtime value.
//
// Wrapper values are unwrapped first. nil is Null, Typed values report their
// own type, bound Go types use their binding, and anything else is Object.
func (u *Universe) TypeOf(v any) *Type {
	if w, ok := v.(Wrapper); ok {
		v = w.Unwrap()
	}
	if v == nil {
		return Null
	}
	if tv, ok := v.(Typed); ok {
		if t := tv.HostType(); t != nil {
			return t
		}
	}

	u.mu.RLock()
	t, ok := u.bindings[reflect.TypeOf(v)]
	u.mu.RUnlock()
	if ok {
		return t
	}
	return Object
}

// ArgTypesOf classifies each argument.
func (u *Universe) ArgTypesOf(args ...any) ArgTypes {
	out := make(ArgTypes, len(args))
	for i, a := range args {
		out[i] = u.TypeOf(a)
	}
	return out
}

// IsInstance reports whether v is an instance of t. nil is an instance of
// nothing.
func (u *Universe) IsInstance(t *Type, v any) bool {
	vt := u.TypeOf(v)
	if vt == Null {
		return false
	}
	return IsAssignable(t, vt)
}
