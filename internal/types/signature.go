package types

import (
	"errors"
	"fmt"
	"strings"
)

// SignatureSpec describes a callable to construct with NewSignature.
type SignatureSpec struct {
	Name     string
	Params   []*Type
	Variadic bool
	Static   bool
	Return   *Type

	// Handle is an opaque reference to the invocable target. It is carried
	// through resolution untouched.
	Handle any
}

// Signature is an immutable callable signature.
//
// When Variadic is set the last parameter is an array type whose element
// type matches any number of trailing arguments.
type Signature struct {
	name     string
	params   []*Type
	variadic bool
	static   bool
	ret      *Type
	handle   any
}

// NewSignature validates spec and returns the signature.
//
// Errors:
//   - a nil or Null parameter type
//   - a void parameter type
//   - a variadic signature whose last parameter is not an array
func NewSignature(spec SignatureSpec) (*Signature, error) {
	for i, p := range spec.Params {
		switch {
		case p == nil:
			return nil, fmt.Errorf("signature %s: parameter %d has no type", spec.Name, i)
		case p == Null:
			return nil, fmt.Errorf("signature %s: parameter %d cannot be the null type", spec.Name, i)
		case p == Void:
			return nil, fmt.Errorf("signature %s: parameter %d cannot be void", spec.Name, i)
		}
	}
	if spec.Variadic {
		if len(spec.Params) == 0 {
			return nil, errors.New("signature " + spec.Name + ": variadic signature needs at least one parameter")
		}
		if !spec.Params[len(spec.Params)-1].IsArray() {
			return nil, fmt.Errorf("signature %s: variadic parameter must be an array type, got %s",
				spec.Name, spec.Params[len(spec.Params)-1])
		}
	}
	ret := spec.Return
	if ret == nil {
		ret = Void
	}
	return &Signature{
		name:     spec.Name,
		params:   append([]*Type(nil), spec.Params...),
		variadic: spec.Variadic,
		static:   spec.Static,
		ret:      ret,
		handle:   spec.Handle,
	}, nil
}

// MustSignature is like NewSignature but panics on error.
func MustSignature(spec SignatureSpec) *Signature {
	s, err := NewSignature(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the callable name.
func (s *Signature) Name() string { return s.name }

// ParamCount returns the number of declared parameters, counting the
// variadic array as one.
func (s *Signature) ParamCount() int { return len(s.params) }

// Param returns the declared type of parameter i.
func (s *Signature) Param(i int) *Type { return s.params[i] }

// Params returns a copy of the declared parameter types.
func (s *Signature) Params() []*Type {
	return append([]*Type(nil), s.params...)
}

// IsVariadic reports whether the last parameter accepts trailing arguments.
func (s *Signature) IsVariadic() bool { return s.variadic }

// IsStatic reports whether the callable has no receiver.
func (s *Signature) IsStatic() bool { return s.static }

// Return returns the declared return type. void when none was given.
func (s *Signature) Return() *Type { return s.ret }

// Handle returns the opaque invocable target.
func (s *Signature) Handle() any { return s.handle }

// VarargElem returns the element type of the variadic parameter, or nil.
func (s *Signature) VarargElem() *Type {
	if !s.variadic {
		return nil
	}
	return s.params[len(s.params)-1].elem
}

// ParamAt returns the parameter type that argument position i binds to.
// With spread set and a variadic signature, positions at or after the last
// parameter bind to the vararg element type.
func (s *Signature) ParamAt(i int, spread bool) *Type {
	if spread && s.variadic && i >= len(s.params)-1 {
		return s.VarargElem()
	}
	return s.params[i]
}

// String renders the parameter list, e.g. "(int, String...)".
func (s *Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range s.params {
		if i > 0 {
			b.WriteString(", ")
		}
		if s.variadic && i == len(s.params)-1 {
			b.WriteString(p.elem.name)
			b.WriteString("...")
			continue
		}
		b.WriteString(p.name)
	}
	b.WriteByte(')')
	return b.String()
}

// Display renders the full signature, e.g. "static double area(int, int...)".
func (s *Signature) Display() string {
	var b strings.Builder
	if s.static {
		b.WriteString("static ")
	}
	b.WriteString(s.ret.name)
	b.WriteByte(' ')
	b.WriteString(s.name)
	b.WriteString(s.String())
	return b.String()
}
