package script

import (
	"strconv"

	"github.com/anatawa12/sai/internal/types"
)

// UndefinedValue is the type of Undefined.
type UndefinedValue struct{}

// String implements fmt.Stringer.
func (UndefinedValue) String() string { return "undefined" }

// Undefined is the script undefined value.
var Undefined = UndefinedValue{}

// Scriptable is implemented by every script object.
type Scriptable interface {
	// ClassName returns the script class name, e.g. "Object" or "Array".
	ClassName() string

	// Get returns the named property.
	Get(key string) (any, bool)

	// Put sets the named property.
	Put(key string, v any)

	// Keys returns the enumerable property names in insertion order.
	Keys() []string
}

// Object is a plain script object with ordered properties.
type Object struct {
	keys  []string
	props map[string]any
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]any)}
}

// ClassName implements Scriptable.
func (o *Object) ClassName() string { return "Object" }

// Get implements Scriptable.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Put implements Scriptable.
func (o *Object) Put(key string, v any) {
	if o.props == nil {
		o.props = make(map[string]any)
	}
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
}

// Keys implements Scriptable.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Array is a script array. Holes read as Undefined.
type Array struct {
	elems []any
}

// NewArray creates an array holding elems.
func NewArray(elems ...any) *Array {
	return &Array{elems: append([]any(nil), elems...)}
}

// ClassName implements Scriptable.
func (a *Array) ClassName() string { return "Array" }

// Len returns the array length.
func (a *Array) Len() int { return len(a.elems) }

// Index returns element i, or Undefined when out of range.
func (a *Array) Index(i int) any {
	if i < 0 || i >= len(a.elems) {
		return Undefined
	}
	return a.elems[i]
}

// SetIndex stores v at i, growing the array with Undefined holes.
func (a *Array) SetIndex(i int, v any) {
	for len(a.elems) <= i {
		a.elems = append(a.elems, Undefined)
	}
	a.elems[i] = v
}

// Append adds v at the end.
func (a *Array) Append(v any) { a.elems = append(a.elems, v) }

// RemoveAt deletes element i, shifting the tail down.
func (a *Array) RemoveAt(i int) any {
	v := a.elems[i]
	a.elems = append(a.elems[:i], a.elems[i+1:]...)
	return v
}

// InsertAt inserts v before element i.
func (a *Array) InsertAt(i int, v any) {
	a.elems = append(a.elems, nil)
	copy(a.elems[i+1:], a.elems[i:])
	a.elems[i] = v
}

// Elems returns a copy of the elements.
func (a *Array) Elems() []any {
	return append([]any(nil), a.elems...)
}

// Get implements Scriptable. "length" and numeric indices are supported.
func (a *Array) Get(key string) (any, bool) {
	if key == "length" {
		return float64(len(a.elems)), true
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(a.elems) {
		return nil, false
	}
	return a.elems[i], true
}

// Put implements Scriptable. Non-index keys are ignored.
func (a *Array) Put(key string, v any) {
	if i, err := strconv.Atoi(key); err == nil && i >= 0 {
		a.SetIndex(i, v)
	}
}

// Keys implements Scriptable.
func (a *Array) Keys() []string {
	keys := make([]string, len(a.elems))
	for i := range a.elems {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

// Function is a script function backed by a Go closure.
type Function struct {
	Object
	name string
	fn   func(args ...any) (any, error)
}

// NewFunction creates a named function.
func NewFunction(name string, fn func(args ...any) (any, error)) *Function {
	return &Function{Object: Object{props: make(map[string]any)}, name: name, fn: fn}
}

// ClassName implements Scriptable.
func (f *Function) ClassName() string { return "Function" }

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Call invokes the function.
func (f *Function) Call(args ...any) (any, error) {
	return f.fn(args...)
}

// HostObject wraps a host value that crossed into the script side.
type HostObject struct {
	v any
}

// Wrap returns v wrapped for the script side.
func Wrap(v any) *HostObject { return &HostObject{v: v} }

// Unwrap implements types.Wrapper.
func (h *HostObject) Unwrap() any { return h.v }

// Install binds the script value types in u so that the classifier reports
// NativeObject, NativeArray, NativeFunction and Undefined for them.
func Install(u *types.Universe) {
	u.Bind(&Object{}, types.ScriptObject)
	u.Bind(&Array{}, types.NativeArray)
	u.Bind(&Function{}, types.ScriptFunction)
	u.Bind(Undefined, types.Undefined)
}
