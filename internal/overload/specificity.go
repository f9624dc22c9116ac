package overload

import (
	"fmt"

	"github.com/anatawa12/sai/internal/convert"
	"github.com/anatawa12/sai/internal/types"
)

// Ranker prefers one conversion target over another for a source type.
// convert.Comparators implements it.
type Ranker interface {
	CompareConversion(source, t1, t2 *types.Type) convert.Comparison
}

// Compare ranks two signatures applicable to args in mode.
//
// Each argument position contributes at most one signal. The first signal
// sets the verdict; a later signal for the other signature makes the two
// incomparable (convert.Indeterminate) no matter how many positions agree
// with the first.
func Compare(sig1, sig2 *types.Signature, args types.ArgTypes, mode Mode, r Ranker) convert.Comparison {
	spread := mode == VarArity
	verdict := convert.Indeterminate
	for i, arg := range args {
		c := compareParam(sig1.ParamAt(i, spread), sig2.ParamAt(i, spread), arg, r)
		switch {
		case c == convert.Indeterminate:
			continue
		case verdict == convert.Indeterminate:
			verdict = c
		case c != verdict:
			return convert.Indeterminate
		}
	}
	return verdict
}

// compareParam ranks two parameter types for one argument type.
func compareParam(t1, t2, arg *types.Type, r Ranker) convert.Comparison {
	if t1 == t2 {
		return convert.Indeterminate
	}
	if arg == types.Null {
		switch {
		case !t1.IsPrimitive() && t2.IsPrimitive():
			return convert.First
		case t1.IsPrimitive() && !t2.IsPrimitive():
			return convert.Second
		}
		return convert.Indeterminate
	}
	if c := r.CompareConversion(arg, t1, t2); c != convert.Indeterminate {
		return c
	}
	switch {
	case types.IsSubtype(t1, t2):
		return convert.First
	case types.IsSubtype(t2, t1):
		return convert.Second
	}
	return convert.Indeterminate
}

// ReduceToMaximal returns the candidates not beaten by any other candidate,
// in candidate order. Each candidate is compared against the working set:
// members it beats are dropped, and it is discarded if a member beats it.
//
// It panics if a non-empty input reduces to nothing.
func ReduceToMaximal(cands []*types.Signature, args types.ArgTypes, mode Mode, r Ranker) []*types.Signature {
	if len(cands) <= 1 {
		return cands
	}
	maximal := make([]*types.Signature, 0, len(cands))
	for _, c := range cands {
		beaten := false
		kept := maximal[:0]
		for _, m := range maximal {
			switch Compare(c, m, args, mode, r) {
			case convert.First:
				continue
			case convert.Second:
				beaten = true
			}
			kept = append(kept, m)
		}
		maximal = kept
		if !beaten {
			maximal = append(maximal, c)
		}
	}
	if len(maximal) == 0 {
		panic(fmt.Sprintf("overload: %d applicable candidates reduced to none for %s", len(cands), args))
	}
	return maximal
}
