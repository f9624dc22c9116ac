package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatawa12/sai/internal/script"
	"github.com/anatawa12/sai/internal/types"
)

func TestListAdapterIsLiveView(t *testing.T) {
	arr := script.NewArray("a", "b")
	l := NewListAdapter(arr)

	assert.Same(t, types.List, l.HostType())
	assert.Equal(t, 2, l.Size())
	assert.Equal(t, "b", l.Get(1))

	assert.Equal(t, "a", l.Set(0, "z"))
	assert.Equal(t, "z", arr.Index(0))

	l.Add("c")
	l.AddFirst("y")
	assert.True(t, l.Offer("d"))
	assert.Equal(t, []any{"y", "z", "b", "c", "d"}, arr.Elems())

	arr.Append("e")
	assert.Equal(t, 6, l.Size())
	assert.Equal(t, "y", l.PeekFirst())

	v, err := l.RemoveFirst()
	require.NoError(t, err)
	assert.Equal(t, "y", v)
	v, err = l.RemoveLast()
	require.NoError(t, err)
	assert.Equal(t, "e", v)
	assert.Equal(t, "z", l.Poll())
	assert.Equal(t, []any{"b", "c", "d"}, l.Elems())
}

func TestListAdapterEmpty(t *testing.T) {
	l := NewListAdapter(script.NewArray())

	_, err := l.RemoveFirst()
	assert.ErrorIs(t, err, ErrEmptyList)
	_, err = l.RemoveLast()
	assert.ErrorIs(t, err, ErrEmptyList)
	assert.Nil(t, l.Poll())
	assert.Nil(t, l.PeekFirst())
}

func TestMirror(t *testing.T) {
	obj := script.NewObject()
	obj.Put("x", 1.0)
	obj.Put("u", script.Undefined)
	m := NewMirror(obj)

	assert.Same(t, types.Map, m.HostType())
	assert.Equal(t, 1.0, m.Get("x"))
	assert.Nil(t, m.Get("u"))
	assert.Nil(t, m.Get("missing"))
	assert.True(t, m.ContainsKey("u"))
	assert.False(t, m.ContainsKey("missing"))

	m.Put("y", "v")
	got, ok := obj.Get("y")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, []string{"x", "u", "y"}, m.Keys())
	assert.Equal(t, 3, m.Size())
}

func TestSingleMethodAdapter(t *testing.T) {
	u := types.NewUniverse()
	runnable := define(t, u, types.Decl{Name: "Runnable", Kind: types.KindInterface})
	task := define(t, u, types.Decl{Name: "Task", Kind: types.KindClass, Abstract: true})
	concrete := define(t, u, types.Decl{Name: "Concrete", Kind: types.KindClass})

	a := NewSingleMethodAdapter(runnable, task, concrete)
	assert.True(t, a.CanAdapt(runnable))
	assert.True(t, a.CanAdapt(task))
	assert.False(t, a.CanAdapt(concrete), "concrete classes are never adapted")
	assert.False(t, a.CanAdapt(types.Map))

	fn := a.Adapt(task)
	out, err := fn(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = fn(script.NewObject())
	assert.True(t, IsConversionFailed(err))
}
