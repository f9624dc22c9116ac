package convert

import (
	"github.com/anatawa12/sai/internal/types"
)

// Comparison is the outcome of ranking two conversion targets for a source.
type Comparison int8

const (
	// Indeterminate means neither target is preferred.
	Indeterminate Comparison = iota

	// First means the first target is the better conversion.
	First

	// Second means the second target is the better conversion.
	Second
)

// String implements fmt.Stringer.
func (c Comparison) String() string {
	switch c {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return "indeterminate"
	}
}

// Flip swaps First and Second.
func (c Comparison) Flip() Comparison {
	switch c {
	case First:
		return Second
	case Second:
		return First
	default:
		return c
	}
}

// Comparator ranks two conversion targets for a source type.
type Comparator interface {
	CompareConversion(source, t1, t2 *types.Type) Comparison
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(source, t1, t2 *types.Type) Comparison

// CompareConversion implements Comparator.
func (f ComparatorFunc) CompareConversion(source, t1, t2 *types.Type) Comparison {
	return f(source, t1, t2)
}

// Comparators is an ordered comparator chain. The first non-indeterminate
// answer wins; if all are indeterminate, a target reachable by method
// invocation conversion beats one that is not.
type Comparators []Comparator

// DefaultComparators returns the builtin chain: primitive and string
// preferences first, then script object preferences.
func DefaultComparators() Comparators {
	return Comparators{
		ComparatorFunc(ComparePrimitive),
		ComparatorFunc(CompareScript),
	}
}

// CompareConversion implements Comparator.
func (cs Comparators) CompareConversion(source, t1, t2 *types.Type) Comparison {
	for _, c := range cs {
		if r := c.CompareConversion(source, t1, t2); r != Indeterminate {
			return r
		}
	}
	return prefer(
		types.IsMethodInvocationConvertible(source, t1),
		types.IsMethodInvocationConvertible(source, t2),
	)
}

// prefer returns First when only a holds, Second when only b holds.
func prefer(a, b bool) Comparison {
	switch {
	case a && !b:
		return First
	case b && !a:
		return Second
	default:
		return Indeterminate
	}
}

// ComparePrimitive ranks targets for primitive, boxed and string sources:
//  1. a target whose wrapper is exactly the source wins
//  2. for numeric sources, a numeric target beats a non-numeric one, then
//     a char target wins
//  3. for String, Boolean and numeric sources, the wider primitive wins,
//     then a String target wins
func ComparePrimitive(source, t1, t2 *types.Type) Comparison {
	w1 := types.WrapperOrSelf(t1)
	if source == w1 {
		return First
	}
	w2 := types.WrapperOrSelf(t2)
	if source == w2 {
		return Second
	}

	numeric := instanceOf(types.Number, source)
	if numeric {
		if r := prefer(types.IsAssignable(types.Number, w1), types.IsAssignable(types.Number, w2)); r != Indeterminate {
			return r
		}
		if w1 == types.BoxedChar {
			return First
		}
		if w2 == types.BoxedChar {
			return Second
		}
	}

	if source == types.String || source == types.BoxedBoolean || numeric {
		p1 := types.PrimitiveOrSelf(t1)
		p2 := types.PrimitiveOrSelf(t2)
		if types.IsMethodInvocationConvertible(p1, p2) {
			return Second
		}
		if types.IsMethodInvocationConvertible(p2, p1) {
			return First
		}
		if t1 == types.String {
			return First
		}
		if t2 == types.String {
			return Second
		}
	}
	return Indeterminate
}

// CompareScript ranks targets for script object sources. A script array
// prefers collection interfaces it can be wrapped as, then host arrays. Any
// other script object prefers interface targets.
func CompareScript(source, t1, t2 *types.Type) Comparison {
	if source == types.NativeArray {
		if r := prefer(isListFamily(t1), isListFamily(t2)); r != Indeterminate {
			return r
		}
		if r := prefer(t1.IsArray(), t2.IsArray()); r != Indeterminate {
			return r
		}
	}
	if instanceOf(types.Scriptable, source) {
		return prefer(t1.IsInterface(), t2.IsInterface())
	}
	return Indeterminate
}

func isListFamily(t *types.Type) bool {
	return t == types.List || t == types.Collection || t == types.Queue || t == types.Deque
}

// instanceOf reports whether values of source are instances of t. Unlike
// IsAssignable it is false for Null.
func instanceOf(t, source *types.Type) bool {
	return source != types.Null && types.IsAssignable(t, source)
}
