// Package overload selects one callable from a group of same-named
// signatures for a vector of runtime argument types.
//
// Resolution runs in two phases. The fixed arity phase considers every
// signature with its declared parameter list. Only when no signature is
// applicable there does the variable arity phase run, matching trailing
// arguments against the element type of each variadic signature's last
// parameter. In each phase the applicable signatures are reduced to the
// maximally specific ones under a partial order; one survivor is a Unique
// outcome, several are Ambiguous, none is NoMatch.
//
// Outcomes are cached per Group by the exact argument type vector,
// including Ambiguous and NoMatch, so an unresolvable call shape is only
// analyzed once. Groups are safe for concurrent use.
package overload
