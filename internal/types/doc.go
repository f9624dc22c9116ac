// Package types provides the host type model shared by every other sai package.
//
// This package contains the type universe, the type compatibility oracle,
// callable signatures and argument type vectors. All other internal packages
// import types; types imports nothing internal.
//
// Key design constraints:
//   - Types are interned: two *Type values denote the same type iff they are
//     the same pointer, so types can be used directly as map keys
//   - Primitive, boxed and library types are package-level singletons shared
//     by every Universe; declared types belong to exactly one Universe
//   - Null is a sentinel that is never a declared parameter type
//   - Signatures and argument vectors are immutable once constructed
package types
