package types

// Primitive types.
var (
	Boolean = primitive("boolean", PrimBoolean)
	Byte    = primitive("byte", PrimByte)
	Char    = primitive("char", PrimChar)
	Short   = primitive("short", PrimShort)
	Int     = primitive("int", PrimInt)
	Long    = primitive("long", PrimLong)
	Float   = primitive("float", PrimFloat)
	Double  = primitive("double", PrimDouble)
	Void    = primitive("void", PrimVoid)
)

// Null is the type of the null reference. It is convertible to every
// non-primitive type and to no primitive type.
var Null = &Type{name: "null", kind: KindNull}

// Library types.
var (
	Object       = &Type{name: "Object", kind: KindClass}
	Comparable   = iface("Comparable")
	CharSequence = iface("CharSequence")
	String       = class("String", Object, CharSequence, Comparable)
	Number       = abstractClass("Number", Object)

	BoxedBoolean = class("Boolean", Object, Comparable)
	BoxedByte    = class("Byte", Number, Comparable)
	BoxedChar    = class("Character", Object, Comparable)
	BoxedShort   = class("Short", Number, Comparable)
	BoxedInt     = class("Integer", Number, Comparable)
	BoxedLong    = class("Long", Number, Comparable)
	BoxedFloat   = class("Float", Number, Comparable)
	BoxedDouble  = class("Double", Number, Comparable)
	BoxedVoid    = class("Void", Object)

	Collection = iface("Collection")
	List       = iface("List", Collection)
	Queue      = iface("Queue", Collection)
	Deque      = iface("Deque", Queue)
	Map        = iface("Map")
)

// Script-side types. Values produced by the script runtime are classified
// as one of these.
var (
	Scriptable     = iface("Scriptable")
	Callable       = iface("Callable")
	ScriptObject   = class("NativeObject", Object, Scriptable)
	NativeArray    = class("NativeArray", ScriptObject)
	ScriptFunction = class("NativeFunction", ScriptObject, Callable)
	Undefined      = class("Undefined", Object)
)

// builtins lists every package-level type in ID order.
var builtins = []*Type{
	Boolean, Byte, Char, Short, Int, Long, Float, Double, Void, Null,
	Object, Comparable, CharSequence, String, Number,
	BoxedBoolean, BoxedByte, BoxedChar, BoxedShort, BoxedInt, BoxedLong, BoxedFloat, BoxedDouble, BoxedVoid,
	Collection, List, Queue, Deque, Map,
	Scriptable, Callable, ScriptObject, NativeArray, ScriptFunction, Undefined,
}

// firstDeclaredID is the lowest ID handed out to declared and array types.
const firstDeclaredID = 1000

func init() {
	for i, t := range builtins {
		t.id = uint32(i + 1)
	}
}

// Builtins returns every predefined type in a stable order.
func Builtins() []*Type {
	out := make([]*Type, len(builtins))
	copy(out, builtins)
	return out
}

func primitive(name string, p Primitive) *Type {
	return &Type{name: name, kind: KindPrimitive, prim: p}
}

func iface(name string, extends ...*Type) *Type {
	return &Type{name: name, kind: KindInterface, interfaces: extends}
}

func class(name string, super *Type, ifaces ...*Type) *Type {
	return &Type{name: name, kind: KindClass, super: super, interfaces: ifaces}
}

func abstractClass(name string, super *Type, ifaces ...*Type) *Type {
	t := class(name, super, ifaces...)
	t.abstract = true
	return t
}

// wrappers maps each primitive to its boxed class. void has no wrapper.
var wrappers = map[*Type]*Type{
	Boolean: BoxedBoolean,
	Byte:    BoxedByte,
	Char:    BoxedChar,
	Short:   BoxedShort,
	Int:     BoxedInt,
	Long:    BoxedLong,
	Float:   BoxedFloat,
	Double:  BoxedDouble,
}

// unboxed maps each boxed class (and Void) back to its primitive.
var unboxed = map[*Type]*Type{
	BoxedBoolean: Boolean,
	BoxedByte:    Byte,
	BoxedChar:    Char,
	BoxedShort:   Short,
	BoxedInt:     Int,
	BoxedLong:    Long,
	BoxedFloat:   Float,
	BoxedDouble:  Double,
	BoxedVoid:    Void,
}

// WrapperOf returns the boxed class for a primitive, or nil when t is not
// a primitive with a wrapper.
func WrapperOf(t *Type) *Type {
	return wrappers[t]
}

// PrimitiveOf returns the primitive for a boxed class, or nil.
func PrimitiveOf(t *Type) *Type {
	return unboxed[t]
}

// IsWrapper reports whether t is one of the boxed classes.
func IsWrapper(t *Type) bool {
	_, ok := unboxed[t]
	return ok && t != BoxedVoid
}

// WrapperOrSelf returns the boxed class for a primitive, or t itself.
func WrapperOrSelf(t *Type) *Type {
	if w := wrappers[t]; w != nil {
		return w
	}
	return t
}

// PrimitiveOrSelf returns the primitive for a boxed class, or t itself.
func PrimitiveOrSelf(t *Type) *Type {
	if p := unboxed[t]; p != nil {
		return p
	}
	return t
}
