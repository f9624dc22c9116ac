package types

// IsAssignable reports whether a value of type source can be stored in a
// variable of type target without any conversion (reference widening).
//
// Primitives are only assignable to themselves. Null is assignable to every
// non-primitive type. Array types are assignable to Object and, when both
// element types are references, covariantly to other array types.
func IsAssignable(target, source *Type) bool {
	if target == source {
		return true
	}
	if target == nil || source == nil {
		return false
	}
	if target.kind == KindPrimitive || source.kind == KindPrimitive {
		return false
	}
	if target.kind == KindNull {
		return false
	}
	if source.kind == KindNull {
		return true
	}
	if target == Object {
		return true
	}
	if source.kind == KindArray {
		if target.kind != KindArray {
			return false
		}
		se, te := source.elem, target.elem
		if se.kind == KindPrimitive || te.kind == KindPrimitive {
			return se == te
		}
		return IsAssignable(te, se)
	}
	if target.kind == KindArray {
		return false
	}
	return inherits(source, target)
}

// inherits walks the superclass chain and interfaces of t looking for want.
func inherits(t, want *Type) bool {
	for c := t; c != nil; c = c.super {
		if c == want {
			return true
		}
		for _, i := range c.interfaces {
			if inherits(i, want) {
				return true
			}
		}
	}
	return false
}

// IsSubtype reports whether sub is a subtype of super: either reference
// assignable, or a primitive reachable by primitive widening.
func IsSubtype(sub, super *Type) bool {
	if IsAssignable(super, sub) {
		return true
	}
	if sub.kind == KindPrimitive && super.kind == KindPrimitive {
		return isProperPrimitiveSubtype(sub, super)
	}
	return false
}

// IsMethodInvocationConvertible reports whether a value of type source can
// be passed to a parameter of type target using identity, primitive
// widening, reference widening, boxing or unboxing conversions.
func IsMethodInvocationConvertible(source, target *Type) bool {
	if IsAssignable(target, source) {
		return true
	}
	if source.kind == KindNull {
		return false
	}
	if source.kind == KindPrimitive {
		if target.kind == KindPrimitive {
			return isProperPrimitiveSubtype(source, target)
		}
		// Boxing, then reference widening.
		w := WrapperOf(source)
		return w != nil && IsAssignable(target, w)
	}
	if target.kind == KindPrimitive {
		// Unboxing, then primitive widening.
		p := PrimitiveOf(source)
		return p != nil && p != Void && (p == target || isProperPrimitiveSubtype(p, target))
	}
	return false
}

// IsConvertibleWithoutLoss reports whether every value of source is
// representable in target. Used to check that a converter's declared types
// are consistent with the rule that registers it.
func IsConvertibleWithoutLoss(source, target *Type) bool {
	if IsAssignable(target, source) {
		return true
	}
	if source.kind != KindPrimitive {
		return false
	}
	if source == Void {
		return target == Void
	}
	if target.kind == KindPrimitive {
		return isLosslessPrimitive(source, target)
	}
	// Boxing into the wrapper of a lossless primitive widening.
	if tp := PrimitiveOf(target); tp != nil && tp != Void {
		return tp == source || isLosslessPrimitive(source, tp)
	}
	w := WrapperOf(source)
	return w != nil && IsAssignable(target, w)
}

// isProperPrimitiveSubtype implements the primitive widening relation,
// excluding identity.
func isProperPrimitiveSubtype(sub, super *Type) bool {
	switch sub.prim {
	case PrimByte:
		switch super.prim {
		case PrimShort, PrimInt, PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimShort, PrimChar:
		switch super.prim {
		case PrimInt, PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimInt:
		switch super.prim {
		case PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimLong:
		switch super.prim {
		case PrimFloat, PrimDouble:
			return true
		}
	case PrimFloat:
		return super.prim == PrimDouble
	}
	return false
}

// isLosslessPrimitive is primitive widening restricted to conversions that
// never round: int to float and long to float/double may lose precision.
func isLosslessPrimitive(source, target *Type) bool {
	if source == target {
		return true
	}
	switch source.prim {
	case PrimByte:
		return target.prim != PrimChar && target.prim != PrimBoolean && target.prim != PrimVoid
	case PrimShort:
		switch target.prim {
		case PrimInt, PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimChar:
		switch target.prim {
		case PrimInt, PrimLong, PrimFloat, PrimDouble:
			return true
		}
	case PrimInt:
		return target.prim == PrimLong || target.prim == PrimDouble
	case PrimFloat:
		return target.prim == PrimDouble
	}
	return false
}

// IsNumeric reports whether t is a numeric primitive or a Number subtype.
// char and Character are not numeric.
func IsNumeric(t *Type) bool {
	return IsAssignable(Number, WrapperOrSelf(t))
}
