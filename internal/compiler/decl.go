package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// Type kinds accepted in a declaration.
const (
	KindClass     = "class"
	KindAbstract  = "abstract"
	KindInterface = "interface"
)

// VariadicSuffix marks the last parameter of a variable arity signature.
const VariadicSuffix = "..."

// TypeDecl is one entry of the types: struct.
type TypeDecl struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Extends    string    `json:"extends,omitempty"`
	Implements []string  `json:"implements,omitempty"`
	SAM        bool      `json:"sam,omitempty"`
	Pos        token.Pos `json:"-"`
}

// SignatureDecl is one entry of a groups: list.
type SignatureDecl struct {
	Params  []string  `json:"params"`
	Returns string    `json:"returns,omitempty"`
	Static  bool      `json:"static,omitempty"`
	Pos     token.Pos `json:"-"`
}

// IsVariadic reports whether the last parameter carries the "..." suffix.
func (d SignatureDecl) IsVariadic() bool {
	return len(d.Params) > 0 && strings.HasSuffix(d.Params[len(d.Params)-1], VariadicSuffix)
}

// GroupDecl is a named overload group.
type GroupDecl struct {
	Name       string          `json:"name"`
	Signatures []SignatureDecl `json:"signatures"`
	Pos        token.Pos       `json:"-"`
}

// Decls is everything declared in one CUE value.
type Decls struct {
	Types  []TypeDecl  `json:"types"`
	Groups []GroupDecl `json:"groups"`
}

// ParseDecls extracts the types: and groups: declarations of v. Both are
// optional. Entries keep CUE field order.
func ParseDecls(v cue.Value) (*Decls, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	d := &Decls{}
	typesVal := v.LookupPath(cue.ParsePath("types"))
	if typesVal.Exists() {
		iter, err := typesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			td, err := ParseType(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			d.Types = append(d.Types, td)
		}
	}

	groupsVal := v.LookupPath(cue.ParsePath("groups"))
	if groupsVal.Exists() {
		iter, err := groupsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			gd, err := ParseGroup(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			d.Groups = append(d.Groups, gd)
		}
	}
	return d, nil
}

// ParseType parses one type declaration. kind defaults to "class".
func ParseType(name string, v cue.Value) (TypeDecl, error) {
	td := TypeDecl{Name: name, Kind: KindClass, Pos: v.Pos()}
	if err := v.Err(); err != nil {
		return td, formatCUEError(err)
	}

	var err error
	if td.Kind, err = optionalString(v, "kind", KindClass); err != nil {
		return td, err
	}
	if td.Extends, err = optionalString(v, "extends", ""); err != nil {
		return td, err
	}

	implVal := v.LookupPath(cue.ParsePath("implements"))
	if implVal.Exists() {
		td.Implements, err = stringList(implVal, fmt.Sprintf("types.%s.implements", name))
		if err != nil {
			return td, err
		}
	}

	samVal := v.LookupPath(cue.ParsePath("sam"))
	if samVal.Exists() {
		sam, err := samVal.Bool()
		if err != nil {
			return td, formatCUEError(err)
		}
		td.SAM = sam
	}
	return td, nil
}

// ParseGroup parses the signature list of one overload group.
func ParseGroup(name string, v cue.Value) (GroupDecl, error) {
	gd := GroupDecl{Name: name, Pos: v.Pos()}
	if err := v.Err(); err != nil {
		return gd, formatCUEError(err)
	}

	iter, err := v.List()
	if err != nil {
		return gd, &CompileError{
			Field:   "groups." + name,
			Message: "a group must be a list of signatures",
			Pos:     v.Pos(),
		}
	}
	for i := 0; iter.Next(); i++ {
		sv := iter.Value()
		field := fmt.Sprintf("groups.%s[%d]", name, i)
		sd := SignatureDecl{Pos: sv.Pos()}

		paramsVal := sv.LookupPath(cue.ParsePath("params"))
		if paramsVal.Exists() {
			sd.Params, err = stringList(paramsVal, field+".params")
			if err != nil {
				return gd, err
			}
		}
		if sd.Returns, err = optionalString(sv, "returns", ""); err != nil {
			return gd, err
		}
		staticVal := sv.LookupPath(cue.ParsePath("static"))
		if staticVal.Exists() {
			if sd.Static, err = staticVal.Bool(); err != nil {
				return gd, formatCUEError(err)
			}
		}
		gd.Signatures = append(gd.Signatures, sd)
	}
	return gd, nil
}

func optionalString(v cue.Value, field, def string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of type names", Pos: v.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}
