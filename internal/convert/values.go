package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/anatawa12/sai/internal/script"
)

// Host value representation: boolean as bool, byte as int8, char as uint16,
// short as int16, int as int32, long as int64, float as float32, double as
// float64 and String as string. Boxed types use the same representation with
// nil for null.

// ToBoolean converts v with script truthiness.
func ToBoolean(v any) bool {
	switch x := v.(type) {
	case nil, script.UndefinedValue:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int8, int16, int32, int64, int, uint16:
		f, _ := asFloat(x)
		return f != 0
	default:
		return true
	}
}

// ToNumber converts v to a script number.
func ToNumber(v any) float64 {
	for {
		switch x := v.(type) {
		case nil:
			return 0
		case script.UndefinedValue:
			return math.NaN()
		case bool:
			if x {
				return 1
			}
			return 0
		case string:
			return StringToNumber(x)
		case script.Scriptable:
			v = ToPrimitive(x)
			continue
		}
		if f, ok := asFloat(v); ok {
			return f
		}
		return math.NaN()
	}
}

// StringToNumber parses s with script numeric literal rules: surrounding
// whitespace is ignored, the empty string is 0, "0x" prefixes are hex and
// anything unparsable is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.ContainsAny(s, "_xX") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString converts v to a script string.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case script.UndefinedValue:
		return "undefined"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case float64:
		return NumberToString(x)
	case float32:
		return NumberToString(float64(x))
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case uint16:
		return string(utf16.Decode([]uint16{x}))
	case script.Scriptable:
		return ToString(ToPrimitive(x))
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// NumberToString formats d the way script number-to-string does: integral
// values without a fraction, and exponent notation outside [1e-6, 1e21).
func NumberToString(d float64) string {
	switch {
	case math.IsNaN(d):
		return "NaN"
	case math.IsInf(d, 1):
		return "Infinity"
	case math.IsInf(d, -1):
		return "-Infinity"
	case d == 0:
		return "0"
	}
	abs := math.Abs(d)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(d, 'f', -1, 64)
	}
	s := strconv.FormatFloat(d, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// ToPrimitive returns the default value of a script object.
func ToPrimitive(s script.Scriptable) any {
	switch x := s.(type) {
	case *script.Array:
		parts := make([]string, x.Len())
		for i := range parts {
			e := x.Index(i)
			if e == nil || e == script.Undefined {
				continue
			}
			parts[i] = ToString(e)
		}
		return strings.Join(parts, ",")
	case *script.Function:
		return "function " + x.Name() + "() { [native code] }"
	default:
		return "[object " + s.ClassName() + "]"
	}
}

// ToInt32 converts v with script ToInt32 semantics (modulo 2^32).
func ToInt32(v any) int32 {
	d := ToNumber(v)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return int32(uint32(int64(math.Mod(math.Trunc(d), 4294967296))))
}

// ToLong converts v to a host long. null and undefined convert to 0.
func ToLong(v any) (int64, error) {
	l, _, err := toLong(v)
	return l, err
}

// toLong reports isNull for values that convert to a null boxed Long.
func toLong(v any) (l int64, isNull bool, err error) {
	for {
		switch x := v.(type) {
		case nil, script.UndefinedValue:
			return 0, true, nil
		case int64:
			return x, false, nil
		case int:
			return int64(x), false, nil
		case int32:
			return int64(x), false, nil
		case int16:
			return int64(x), false, nil
		case int8:
			return int64(x), false, nil
		case uint16:
			return int64(x), false, nil
		case float64:
			if math.IsInf(x, 0) {
				return 0, false, nil
			}
			return saturateLong(x), false, nil
		case float32:
			if math.IsInf(float64(x), 0) {
				return 0, false, nil
			}
			return saturateLong(float64(x)), false, nil
		case string:
			return saturateLong(StringToNumber(x)), false, nil
		case bool:
			if x {
				return 1, false, nil
			}
			return 0, false, nil
		case script.Scriptable:
			v = ToPrimitive(x)
			continue
		default:
			return 0, false, fmt.Errorf("unexpected value of type %T", v)
		}
	}
}

// ToChar converts v to a host char. Numbers must be in [0, 65535] and
// strings must have length one.
func ToChar(v any) (uint16, error) {
	c, _, err := toChar(v)
	return c, err
}

func toChar(v any) (c uint16, isNull bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, true, nil
	case uint16:
		return x, false, nil
	case int8, int16, int32, int64, int:
		l, _, _ := toLong(x)
		c, err := IntToChar(int32(l))
		return c, false, err
	case float32, float64:
		f, _ := asFloat(x)
		c, err := IntToChar(saturateInt(f))
		return c, false, err
	}
	units := utf16.Encode([]rune(ToString(v)))
	if len(units) != 1 {
		return 0, false, fmt.Errorf("string %q cannot be converted to char", ToString(v))
	}
	return units[0], false, nil
}

// IntToChar narrows i to a char, rejecting values outside [0, 65535].
func IntToChar(i int32) (uint16, error) {
	if i < 0 || i > 65535 {
		return 0, fmt.Errorf("number %d cannot be converted to char", i)
	}
	return uint16(i), nil
}

// NumberToLongOrDouble returns integral numbers as int64 and everything else
// as float64. nil stays nil.
func NumberToLongOrDouble(v any) any {
	if v == nil {
		return nil
	}
	d, ok := asFloat(v)
	if !ok {
		return v
	}
	if r := roundHalfUp(d); float64(r) == d {
		return r
	}
	return d
}

// asFloat widens any host numeric representation to float64.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case uint16:
		return float64(x), true
	}
	return 0, false
}

// isNumberValue reports whether v is an instance of Number (char excluded).
func isNumberValue(v any) bool {
	switch v.(type) {
	case float64, float32, int8, int16, int32, int64, int:
		return true
	}
	return false
}

// saturateLong narrows d to int64 saturating at the bounds, NaN to 0.
func saturateLong(d float64) int64 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt64:
		return math.MaxInt64
	case d <= math.MinInt64:
		return math.MinInt64
	}
	return int64(d)
}

// saturateInt narrows d to int32 saturating at the bounds, NaN to 0.
func saturateInt(d float64) int32 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt32:
		return math.MaxInt32
	case d <= math.MinInt32:
		return math.MinInt32
	}
	return int32(d)
}

// roundHalfUp rounds half up to int64, saturating.
func roundHalfUp(d float64) int64 {
	return saturateLong(math.Floor(d + 0.5))
}
