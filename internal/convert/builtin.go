package convert

import (
	"fmt"
	"math"

	"github.com/anatawa12/sai/internal/script"
	"github.com/anatawa12/sai/internal/types"
)

// Builtin pass names.
const (
	PassNumberToObject = "number-to-object"
	PassScript         = "script"
	PassHost           = "host"
)

// NewDefaultRegistry returns a registry over u holding the builtin rules.
// Script value types are bound in u as a side effect.
func NewDefaultRegistry(u *types.Universe, opts ...RegistryOption) *Registry {
	script.Install(u)
	r := NewRegistry(u, opts...)
	if err := RegisterBuiltins(r); err != nil {
		panic(fmt.Sprintf("convert: builtin rules: %v", err))
	}
	return r
}

// RegisterBuiltins adds the builtin rules to r in three passes:
//  1. numbers widened to Object become long when integral, double otherwise
//  2. script objects to every primitive, boxed, String and Number target;
//     script arrays to List, Deque, Queue and Collection; script objects
//     to Map
//  3. host numbers, strings and booleans to the same targets, plus the
//     narrowing table for primitive sources
func RegisterBuiltins(r *Registry) error {
	if err := r.StartPass(PassNumberToObject); err != nil {
		return err
	}
	numberToObject := Converter{
		In:  types.Number,
		Out: types.Object,
		Fn:  func(v any) (any, error) { return NumberToLongOrDouble(v), nil },
	}
	if err := r.Add(MustRule(types.Object, numberToObject, types.Number)); err != nil {
		return err
	}

	if err := r.StartPass(PassScript); err != nil {
		return err
	}
	for _, ac := range argumentConverters() {
		if err := r.Add(MustRule(ac.Out, ac, types.Scriptable)); err != nil {
			return err
		}
	}
	for _, target := range []*types.Type{types.List, types.Deque, types.Queue, types.Collection} {
		if err := r.Add(MustRule(target, listAdapterConverter(target), types.NativeArray)); err != nil {
			return err
		}
	}
	if err := r.Add(MustRule(types.Map, mirrorConverter(), types.Scriptable)); err != nil {
		return err
	}

	if err := r.StartPass(PassHost); err != nil {
		return err
	}
	for _, ac := range argumentConverters() {
		if err := r.Add(MustRule(ac.Out, ac, types.Number, types.CharSequence, types.BoxedBoolean)); err != nil {
			return err
		}
	}
	for _, row := range primitiveTable {
		for _, target := range row.targets {
			if err := r.AddDirect(MustRule(target, primitiveConverter(row.source, target), row.source)); err != nil {
				return err
			}
		}
	}
	return nil
}

// argumentConverters returns one converter per primitive, boxed, String
// and Number target, each accepting any value.
func argumentConverters() []Converter {
	conv := func(out *types.Type, fn func(v any) (any, error)) Converter {
		return Converter{In: types.Object, Out: out, Fn: failAs(out, fn)}
	}
	boxed := func(out *types.Type, fn func(v any) (any, error)) Converter {
		return conv(out, func(v any) (any, error) {
			if v == nil {
				return nil, nil
			}
			return fn(v)
		})
	}
	fromLong := func(narrow func(int64) any) func(v any) (any, error) {
		return func(v any) (any, error) {
			l, isNull, err := toLong(v)
			if err != nil {
				return nil, err
			}
			if isNull {
				return nil, nil
			}
			return narrow(l), nil
		}
	}
	primLong := func(narrow func(int64) any) func(v any) (any, error) {
		return func(v any) (any, error) {
			l, _, err := toLong(v)
			if err != nil {
				return nil, err
			}
			return narrow(l), nil
		}
	}
	asByte := func(l int64) any { return int8(l) }
	asShort := func(l int64) any { return int16(l) }
	asInt := func(l int64) any { return int32(l) }
	asLong := func(l int64) any { return l }

	return []Converter{
		boxed(types.Number, toNumberValue),
		boxed(types.String, func(v any) (any, error) { return ToString(v), nil }),
		conv(types.Boolean, func(v any) (any, error) { return ToBoolean(v), nil }),
		boxed(types.BoxedBoolean, func(v any) (any, error) { return ToBoolean(v), nil }),
		conv(types.Char, func(v any) (any, error) {
			c, _, err := toChar(v)
			return c, err
		}),
		conv(types.BoxedChar, func(v any) (any, error) {
			c, isNull, err := toChar(v)
			if err != nil || isNull {
				return nil, err
			}
			return c, nil
		}),
		conv(types.Double, func(v any) (any, error) { return ToNumber(v), nil }),
		boxed(types.BoxedDouble, toDoubleValue),
		conv(types.Long, primLong(asLong)),
		conv(types.BoxedLong, fromLong(asLong)),
		conv(types.Byte, primLong(asByte)),
		conv(types.BoxedByte, fromLong(asByte)),
		conv(types.Short, primLong(asShort)),
		conv(types.BoxedShort, fromLong(asShort)),
		conv(types.Int, primLong(asInt)),
		conv(types.BoxedInt, fromLong(asInt)),
		conv(types.Float, func(v any) (any, error) { return float32(ToNumber(v)), nil }),
		boxed(types.BoxedFloat, func(v any) (any, error) {
			d, err := toDoubleValue(v)
			if err != nil || d == nil {
				return nil, err
			}
			return float32(d.(float64)), nil
		}),
	}
}

// toNumberValue keeps numbers as they are and converts everything else to
// a double.
func toNumberValue(v any) (any, error) {
	for {
		switch x := v.(type) {
		case nil:
			return nil, nil
		case script.UndefinedValue:
			return math.NaN(), nil
		case string:
			return StringToNumber(x), nil
		case bool:
			return ToNumber(x), nil
		case script.Scriptable:
			v = ToPrimitive(x)
			continue
		}
		if isNumberValue(v) {
			return v, nil
		}
		return nil, fmt.Errorf("unexpected value of type %T", v)
	}
}

// toDoubleValue converts v to a boxed double. nil stays nil.
func toDoubleValue(v any) (any, error) {
	n, err := toNumberValue(v)
	if err != nil || n == nil {
		return nil, err
	}
	f, _ := asFloat(n)
	return f, nil
}

// failAs wraps converter errors as ConversionErrors for target.
func failAs(target *types.Type, fn func(v any) (any, error)) Func {
	return func(v any) (any, error) {
		out, err := fn(v)
		if err != nil {
			if IsConversionFailed(err) {
				return nil, err
			}
			return nil, &ConversionError{Value: v, Target: target, Message: err.Error()}
		}
		return out, nil
	}
}

func listAdapterConverter(target *types.Type) Converter {
	return Converter{
		In:  types.NativeArray,
		Out: target,
		Fn: func(v any) (any, error) {
			if v == nil {
				return nil, nil
			}
			arr, ok := v.(*script.Array)
			if !ok {
				return nil, &ConversionError{Value: v, Target: target, Message: "not a script array"}
			}
			return NewListAdapter(arr), nil
		},
	}
}

func mirrorConverter() Converter {
	return Converter{
		In:  types.Scriptable,
		Out: types.Map,
		Fn: func(v any) (any, error) {
			if v == nil {
				return nil, nil
			}
			obj, ok := v.(script.Scriptable)
			if !ok {
				return nil, &ConversionError{Value: v, Target: types.Map, Message: "not a script object"}
			}
			return NewMirror(obj), nil
		},
	}
}

// primitiveTable lists the narrowing, to-char and to-String conversions
// available for primitive sources beyond method invocation conversion.
var primitiveTable = []struct {
	source  *types.Type
	targets []*types.Type
}{
	{types.Byte, []*types.Type{types.String, types.Char, types.BoxedChar}},
	{types.Short, []*types.Type{types.String, types.Char, types.BoxedChar, types.Byte, types.BoxedByte}},
	{types.Int, []*types.Type{types.String, types.Char, types.BoxedChar, types.Byte, types.Short,
		types.BoxedByte, types.BoxedShort}},
	{types.Long, []*types.Type{types.String, types.Char, types.BoxedChar, types.Byte, types.Short, types.Int,
		types.BoxedByte, types.BoxedShort, types.BoxedInt}},
	{types.Float, []*types.Type{types.String, types.Char, types.BoxedChar, types.Byte, types.Short, types.Int, types.Long,
		types.BoxedByte, types.BoxedShort, types.BoxedInt, types.BoxedLong}},
	{types.Double, []*types.Type{types.String, types.Char, types.BoxedChar, types.Byte, types.Short, types.Int, types.Long, types.Float,
		types.BoxedByte, types.BoxedShort, types.BoxedInt, types.BoxedLong, types.BoxedFloat}},
}

// primitiveConverter narrows a primitive source value to target with host
// cast semantics: integers wrap, floating values saturate, and char
// conversions reject values outside [0, 65535].
func primitiveConverter(source, target *types.Type) Converter {
	to := types.PrimitiveOrSelf(target).Primitive()
	return Converter{
		In:  source,
		Out: target,
		Fn: failAs(target, func(v any) (any, error) {
			if v == nil {
				return nil, fmt.Errorf("null %s", source)
			}
			if target == types.String {
				f, _ := asFloat(v)
				return NumberToString(f), nil
			}
			return narrow(v, to)
		}),
	}
}

func narrow(v any, to types.Primitive) (any, error) {
	switch x := v.(type) {
	case float32, float64:
		f, _ := asFloat(x)
		switch to {
		case types.PrimByte:
			return int8(saturateInt(f)), nil
		case types.PrimShort:
			return int16(saturateInt(f)), nil
		case types.PrimInt:
			return saturateInt(f), nil
		case types.PrimLong:
			return saturateLong(f), nil
		case types.PrimFloat:
			return float32(f), nil
		case types.PrimChar:
			return IntToChar(saturateInt(f))
		}
	default:
		l, _, err := toLong(v)
		if err != nil {
			return nil, err
		}
		switch to {
		case types.PrimByte:
			return int8(l), nil
		case types.PrimShort:
			return int16(l), nil
		case types.PrimInt:
			return int32(l), nil
		case types.PrimLong:
			return l, nil
		case types.PrimChar:
			return IntToChar(int32(l))
		}
	}
	return nil, fmt.Errorf("no narrowing of %T to %d", v, to)
}
