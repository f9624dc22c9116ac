// Package harness runs conformance scenarios against the linker.
//
// A scenario is a YAML file naming CUE declaration files and a list of
// steps:
//
//	name: area_overloads
//	description: "area picks the variadic overload for extra ints"
//	specs:
//	  - specs/shapes.cue
//	resolve:
//	  - group: area
//	    args: [int, int, Integer]
//	    expect:
//	      outcome: unique
//	      mode: variable
//	      signature: "static double area(int, int...)"
//	convert:
//	  - source: String
//	    target: int
//	    value: "42"
//	    expect: { convertible: true, result: 42 }
//	compare:
//	  - source: Integer
//	    first: int
//	    second: long
//	    expect: first
//	assertions:
//	  - type: journal_count
//	    table: resolutions
//	    count: 1
//
// Each scenario runs in its own type universe with a deterministic clock
// and session and an in-memory journal, so traces can be compared against
// golden files byte for byte. Resolve steps run first, then convert steps,
// then compare steps.
package harness
