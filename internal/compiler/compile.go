package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/anatawa12/sai/internal/types"
)

// CompileTypes parses the types: struct of v and defines every entry in u.
//
// Supertypes are defined before their subtypes regardless of declaration
// order. Unknown supertypes, inheritance cycles, duplicate names and bad
// kinds are reported as *CompileError.
func CompileTypes(u *types.Universe, v cue.Value) ([]*types.Type, error) {
	d, err := ParseDecls(v)
	if err != nil {
		return nil, err
	}
	return CompileTypeDecls(u, d.Types)
}

// CompileTypeDecls defines decls in u. On error, types defined before the
// failing one stay in u.
func CompileTypeDecls(u *types.Universe, decls []TypeDecl) ([]*types.Type, error) {
	seen := make(map[string]TypeDecl, len(decls))
	for _, d := range decls {
		if prev, dup := seen[d.Name]; dup {
			return nil, &CompileError{
				Field:   "types." + d.Name,
				Message: fmt.Sprintf("duplicate type name (first declared at %s)", prev.Pos),
				Pos:     d.Pos,
			}
		}
		seen[d.Name] = d
	}
	if cycles := AnalyzeHierarchy(decls); len(cycles) > 0 {
		first := seen[cycles[0].Path[0]]
		return nil, &CompileError{
			Field:   "types." + first.Name,
			Message: cycles[0].Message,
			Pos:     first.Pos,
		}
	}

	out := make([]*types.Type, 0, len(decls))
	for _, d := range definitionOrder(decls) {
		t, err := compileType(u, d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func compileType(u *types.Universe, d TypeDecl) (*types.Type, error) {
	field := "types." + d.Name
	fail := func(format string, args ...any) error {
		return &CompileError{Field: field, Message: fmt.Sprintf(format, args...), Pos: d.Pos}
	}

	decl := types.Decl{Name: d.Name}
	switch d.Kind {
	case KindClass:
		decl.Kind = types.KindClass
	case KindAbstract:
		decl.Kind = types.KindClass
		decl.Abstract = true
	case KindInterface:
		decl.Kind = types.KindInterface
	default:
		return nil, fail("invalid kind %q, must be %q, %q or %q", d.Kind, KindClass, KindAbstract, KindInterface)
	}
	if d.SAM && d.Kind == KindClass {
		return nil, fail("only abstract classes and interfaces can be single-method types")
	}

	if d.Extends != "" {
		super, ok := u.Lookup(d.Extends)
		if !ok {
			return nil, fail("unknown supertype %q", d.Extends)
		}
		if decl.Kind == types.KindInterface {
			decl.Interfaces = append(decl.Interfaces, super)
		} else {
			decl.Super = super
		}
	}
	for _, name := range d.Implements {
		iface, ok := u.Lookup(name)
		if !ok {
			return nil, fail("unknown interface %q", name)
		}
		decl.Interfaces = append(decl.Interfaces, iface)
	}

	t, err := u.Define(decl)
	if err != nil {
		return nil, fail("%v", err)
	}
	return t, nil
}

// CompileGroup parses the signature list v of group name against u.
//
// A "T..." parameter marks the signature variable arity with a T[] last
// parameter; it is an error anywhere but the last position. A missing
// returns field means void.
func CompileGroup(u *types.Universe, name string, v cue.Value) ([]*types.Signature, error) {
	gd, err := ParseGroup(name, v)
	if err != nil {
		return nil, err
	}
	return CompileGroupDecl(u, gd)
}

// CompileGroupDecl builds the signatures of gd.
func CompileGroupDecl(u *types.Universe, gd GroupDecl) ([]*types.Signature, error) {
	if len(gd.Signatures) == 0 {
		return nil, &CompileError{Field: "groups." + gd.Name, Message: "a group needs at least one signature", Pos: gd.Pos}
	}
	sigs := make([]*types.Signature, 0, len(gd.Signatures))
	for i, sd := range gd.Signatures {
		s, err := compileSignature(u, gd.Name, sd)
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("groups.%s[%d]", gd.Name, i),
				Message: err.Error(),
				Pos:     sd.Pos,
			}
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}

func compileSignature(u *types.Universe, name string, sd SignatureDecl) (*types.Signature, error) {
	spec := types.SignatureSpec{Name: name, Static: sd.Static, Params: make([]*types.Type, 0, len(sd.Params))}
	for i, p := range sd.Params {
		base := p
		if strings.HasSuffix(p, VariadicSuffix) {
			if i != len(sd.Params)-1 {
				return nil, fmt.Errorf("variadic parameter %q must be last", p)
			}
			base = strings.TrimSuffix(p, VariadicSuffix)
			spec.Variadic = true
		}
		t, ok := u.Lookup(base)
		if !ok {
			return nil, fmt.Errorf("unknown parameter type %q", base)
		}
		if spec.Variadic {
			if t == types.Void {
				return nil, fmt.Errorf("parameter %d cannot be void", i)
			}
			t = u.ArrayOf(t)
		}
		spec.Params = append(spec.Params, t)
	}
	if sd.Returns != "" {
		ret, ok := u.Lookup(sd.Returns)
		if !ok {
			return nil, fmt.Errorf("unknown return type %q", sd.Returns)
		}
		spec.Return = ret
	}
	return types.NewSignature(spec)
}
