package convert

import (
	"github.com/anatawa12/sai/internal/types"
)

// coerce applies the conversions implied by method invocation
// convertibility: primitive widening, boxing and unboxing change the host
// representation; reference widening is checked against the value's
// runtime type.
func coerce(u *types.Universe, v any, target *types.Type) (any, error) {
	if p := types.PrimitiveOrSelf(target); p.IsPrimitive() && p != types.Void {
		if v == nil {
			if target.IsPrimitive() {
				return nil, &ConversionError{Value: v, Target: target, Message: "null cannot be a primitive"}
			}
			return nil, nil
		}
		out, ok := widen(v, p.Primitive())
		if !ok {
			return nil, &ConversionError{Value: v, Target: target, Message: "value of type " + u.TypeOf(v).Name() + " does not widen"}
		}
		return out, nil
	}

	if v == nil {
		return nil, nil
	}
	if vt := u.TypeOf(v); !types.IsAssignable(target, vt) {
		if !types.IsAssignable(target, types.WrapperOrSelf(vt)) {
			return nil, &ConversionError{Value: v, Target: target, Message: "value of type " + vt.Name() + " is not assignable"}
		}
	}
	return v, nil
}

// widen converts a host primitive representation to the representation of
// p when the primitive widening relation allows it.
func widen(v any, p types.Primitive) (any, bool) {
	switch p {
	case types.PrimBoolean:
		b, ok := v.(bool)
		return b, ok
	case types.PrimByte:
		b, ok := v.(int8)
		return b, ok
	case types.PrimChar:
		c, ok := v.(uint16)
		return c, ok
	case types.PrimShort:
		switch x := v.(type) {
		case int8:
			return int16(x), true
		case int16:
			return x, true
		}
	case types.PrimInt:
		switch x := v.(type) {
		case int8:
			return int32(x), true
		case int16:
			return int32(x), true
		case uint16:
			return int32(x), true
		case int32:
			return x, true
		}
	case types.PrimLong:
		switch x := v.(type) {
		case int8:
			return int64(x), true
		case int16:
			return int64(x), true
		case uint16:
			return int64(x), true
		case int32:
			return int64(x), true
		case int64:
			return x, true
		case int:
			return int64(x), true
		}
	case types.PrimFloat:
		switch x := v.(type) {
		case float32:
			return x, true
		case float64:
			return nil, false
		}
		if f, ok := asFloat(v); ok {
			return float32(f), true
		}
	case types.PrimDouble:
		if f, ok := asFloat(v); ok {
			return f, true
		}
	}
	return nil, false
}
