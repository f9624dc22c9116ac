package types

import (
	"encoding/binary"
	"strings"
)

// ArgTypes is the vector of runtime argument types at a call site.
// Elements may be Null.
type ArgTypes []*Type

// Key returns a structural key for cache lookups. Two vectors have equal
// keys iff they have the same length and identical elements.
func (a ArgTypes) Key() string {
	buf := make([]byte, 4*len(a))
	for i, t := range a {
		binary.BigEndian.PutUint32(buf[4*i:], t.id)
	}
	return string(buf)
}

// Equal reports element-wise identity.
func (a ArgTypes) Equal(b ArgTypes) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Names returns the type names in order.
func (a ArgTypes) Names() []string {
	out := make([]string, len(a))
	for i, t := range a {
		out[i] = t.name
	}
	return out
}

// String renders the vector as "[A, B]".
func (a ArgTypes) String() string {
	return "[" + strings.Join(a.Names(), ", ") + "]"
}

// Of is a convenience constructor.
func Of(ts ...*Type) ArgTypes { return ArgTypes(ts) }
