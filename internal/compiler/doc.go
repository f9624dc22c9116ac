// Package compiler turns CUE declarations of host types and overload groups
// into types.Type and types.Signature values.
//
// Declarations look like:
//
//	types: Point: { kind: "class", implements: ["Comparable"] }
//	types: Listener: { kind: "interface", sam: true }
//	groups: area: [
//		{ params: ["Point"], returns: "double" },
//		{ params: ["int", "int..."], returns: "double", static: true },
//	]
//
// Parsing (ParseDecls) and validation (Validate) need no universe; Compile
// defines the types in a types.Universe and builds a Catalog that serves
// the groups to a linker.
package compiler
