package convert

import (
	"errors"

	"github.com/anatawa12/sai/internal/script"
	"github.com/anatawa12/sai/internal/types"
)

// ErrEmptyList is returned by removals from an empty ListAdapter.
var ErrEmptyList = errors.New("list is empty")

// ListAdapter exposes a script array as a host List, Deque, Queue or
// Collection. It is a live view: changes on either side are visible on
// the other.
type ListAdapter struct {
	arr *script.Array
}

// NewListAdapter wraps arr.
func NewListAdapter(arr *script.Array) *ListAdapter {
	return &ListAdapter{arr: arr}
}

// HostType implements types.Typed.
func (l *ListAdapter) HostType() *types.Type { return types.List }

// Array returns the underlying script array.
func (l *ListAdapter) Array() *script.Array { return l.arr }

// Size returns the number of elements.
func (l *ListAdapter) Size() int { return l.arr.Len() }

// Get returns element i.
func (l *ListAdapter) Get(i int) any { return l.arr.Index(i) }

// Set replaces element i and returns the previous value.
func (l *ListAdapter) Set(i int, v any) any {
	old := l.arr.Index(i)
	l.arr.SetIndex(i, v)
	return old
}

// Add appends v.
func (l *ListAdapter) Add(v any) { l.arr.Append(v) }

// AddFirst inserts v at the head.
func (l *ListAdapter) AddFirst(v any) { l.arr.InsertAt(0, v) }

// Offer appends v. It always succeeds.
func (l *ListAdapter) Offer(v any) bool {
	l.arr.Append(v)
	return true
}

// RemoveFirst removes and returns the head.
func (l *ListAdapter) RemoveFirst() (any, error) {
	if l.arr.Len() == 0 {
		return nil, ErrEmptyList
	}
	return l.arr.RemoveAt(0), nil
}

// RemoveLast removes and returns the tail.
func (l *ListAdapter) RemoveLast() (any, error) {
	if l.arr.Len() == 0 {
		return nil, ErrEmptyList
	}
	return l.arr.RemoveAt(l.arr.Len() - 1), nil
}

// Poll removes and returns the head, or nil when empty.
func (l *ListAdapter) Poll() any {
	v, err := l.RemoveFirst()
	if err != nil {
		return nil
	}
	return v
}

// PeekFirst returns the head without removing it, or nil when empty.
func (l *ListAdapter) PeekFirst() any {
	if l.arr.Len() == 0 {
		return nil
	}
	return l.arr.Index(0)
}

// Elems returns a snapshot of the elements.
func (l *ListAdapter) Elems() []any { return l.arr.Elems() }

// Mirror exposes a script object as a host Map keyed by property name.
type Mirror struct {
	obj script.Scriptable
}

// NewMirror wraps obj.
func NewMirror(obj script.Scriptable) *Mirror {
	return &Mirror{obj: obj}
}

// HostType implements types.Typed.
func (m *Mirror) HostType() *types.Type { return types.Map }

// Scriptable returns the mirrored object.
func (m *Mirror) Scriptable() script.Scriptable { return m.obj }

// Get returns the property value. Missing and undefined properties are nil.
func (m *Mirror) Get(key string) any {
	v, ok := m.obj.Get(key)
	if !ok || v == script.Undefined {
		return nil
	}
	return v
}

// Put sets the property value.
func (m *Mirror) Put(key string, v any) { m.obj.Put(key, v) }

// ContainsKey reports whether the property exists.
func (m *Mirror) ContainsKey(key string) bool {
	_, ok := m.obj.Get(key)
	return ok
}

// Keys returns the property names.
func (m *Mirror) Keys() []string { return m.obj.Keys() }

// Size returns the number of properties.
func (m *Mirror) Size() int { return len(m.obj.Keys()) }

// Callback is a script function adapted to a single-method host type.
type Callback struct {
	target *types.Type
	fn     *script.Function
}

// HostType implements types.Typed.
func (c *Callback) HostType() *types.Type { return c.target }

// Function returns the adapted script function.
func (c *Callback) Function() *script.Function { return c.fn }

// Call invokes the script function.
func (c *Callback) Call(args ...any) (any, error) { return c.fn.Call(args...) }

// SingleMethodAdapter adapts script functions to a fixed set of abstract
// host types that declare exactly one abstract method.
type SingleMethodAdapter struct {
	targets map[*types.Type]bool
}

// NewSingleMethodAdapter returns an adapter for targets. Non-abstract
// targets are ignored.
func NewSingleMethodAdapter(targets ...*types.Type) *SingleMethodAdapter {
	a := &SingleMethodAdapter{targets: make(map[*types.Type]bool, len(targets))}
	for _, t := range targets {
		if t.IsAbstract() {
			a.targets[t] = true
		}
	}
	return a
}

// CanAdapt implements Adapter.
func (a *SingleMethodAdapter) CanAdapt(target *types.Type) bool {
	return a.targets[target]
}

// Adapt implements Adapter.
func (a *SingleMethodAdapter) Adapt(target *types.Type) Func {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		fn, ok := v.(*script.Function)
		if !ok {
			return nil, &ConversionError{Value: v, Target: target, Message: "not a script function"}
		}
		return &Callback{target: target, fn: fn}, nil
	}
}
