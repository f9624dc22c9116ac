package overload

import (
	"github.com/anatawa12/sai/internal/types"
)

// Mode selects how arguments bind to parameters.
type Mode int8

const (
	// FixedArity binds argument i to parameter i; the counts must match.
	FixedArity Mode = iota

	// VarArity binds arguments past the fixed prefix of a variadic
	// signature to the element type of its last parameter.
	VarArity
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == VarArity {
		return "variable"
	}
	return "fixed"
}

// Oracle decides whether a value of one type can be passed where another is
// declared. *convert.Registry implements it.
type Oracle interface {
	CanConvert(source, target *types.Type) bool
}

// IsApplicable reports whether sig accepts args in mode.
//
// In FixedArity mode the argument count must equal the parameter count. In
// VarArity mode sig must be variadic and there must be at least as many
// arguments as fixed parameters. A Null argument fits any non-primitive
// parameter and no primitive one.
func IsApplicable(sig *types.Signature, args types.ArgTypes, mode Mode, o Oracle) bool {
	n := sig.ParamCount()
	switch mode {
	case FixedArity:
		if len(args) != n {
			return false
		}
	case VarArity:
		if !sig.IsVariadic() || len(args) < n-1 {
			return false
		}
	default:
		return false
	}

	spread := mode == VarArity
	for i, arg := range args {
		if !fits(arg, sig.ParamAt(i, spread), o) {
			return false
		}
	}
	return true
}

func fits(arg, param *types.Type, o Oracle) bool {
	if arg == types.Null {
		return !param.IsPrimitive()
	}
	return o.CanConvert(arg, param)
}
