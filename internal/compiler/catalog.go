package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"

	"github.com/anatawa12/sai/internal/convert"
	"github.com/anatawa12/sai/internal/linker"
	"github.com/anatawa12/sai/internal/types"
)

// Catalog holds the types and overload groups compiled from one CUE value.
// It implements linker.Harvester.
//
// Thread-safety: a Catalog is immutable after Compile and safe for
// concurrent use.
type Catalog struct {
	u      *types.Universe
	types  []*types.Type
	sams   []*types.Type
	groups map[string][]*types.Signature
	names  []string
}

var _ linker.Harvester = (*Catalog)(nil)

// Compile parses and compiles every declaration of v into u.
func Compile(u *types.Universe, v cue.Value) (*Catalog, error) {
	d, err := ParseDecls(v)
	if err != nil {
		return nil, err
	}
	return CompileDecls(u, d)
}

// CompileDecls compiles parsed declarations into u. Types are defined
// before any group is compiled, so groups may reference every declared type.
func CompileDecls(u *types.Universe, d *Decls) (*Catalog, error) {
	ts, err := CompileTypeDecls(u, d.Types)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		u:      u,
		types:  ts,
		groups: make(map[string][]*types.Signature, len(d.Groups)),
	}
	sam := make(map[string]bool)
	for _, td := range d.Types {
		if td.SAM {
			sam[td.Name] = true
		}
	}
	for _, t := range ts {
		if sam[t.Name()] {
			c.sams = append(c.sams, t)
		}
	}

	for _, gd := range d.Groups {
		if _, dup := c.groups[gd.Name]; dup {
			return nil, &CompileError{Field: "groups." + gd.Name, Message: "duplicate group name", Pos: gd.Pos}
		}
		sigs, err := CompileGroupDecl(u, gd)
		if err != nil {
			return nil, err
		}
		c.groups[gd.Name] = sigs
		c.names = append(c.names, gd.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Universe returns the universe the catalog was compiled into.
func (c *Catalog) Universe() *types.Universe { return c.u }

// Types returns the declared types in definition order.
func (c *Catalog) Types() []*types.Type {
	return append([]*types.Type(nil), c.types...)
}

// SingleMethodTypes returns the types declared with sam: true.
func (c *Catalog) SingleMethodTypes() []*types.Type {
	return append([]*types.Type(nil), c.sams...)
}

// Names returns the group names, sorted.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Signatures implements linker.Harvester.
func (c *Catalog) Signatures(name string) ([]*types.Signature, error) {
	sigs, ok := c.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", linker.ErrUnknownGroup, name)
	}
	return append([]*types.Signature(nil), sigs...), nil
}

// Adapter returns a single-method adapter for the catalog's sam types.
func (c *Catalog) Adapter() *convert.SingleMethodAdapter {
	return convert.NewSingleMethodAdapter(c.sams...)
}

// Registry returns the default conversion registry over the catalog's
// universe with the catalog's adapter installed.
func (c *Catalog) Registry(opts ...convert.RegistryOption) *convert.Registry {
	opts = append([]convert.RegistryOption{convert.WithAdapter(c.Adapter())}, opts...)
	return convert.NewDefaultRegistry(c.u, opts...)
}
