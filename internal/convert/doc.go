// Package convert builds and runs value conversion chains between script
// values and host types.
//
// A Registry holds conversion rules. Each rule names a target type, one or
// more source types and a converter. For a (source, target) pair the
// registry composes a Chain: the applicable rules in most-recent-first
// order, each guarded by a runtime instance check, ending in a fallback
// that always applies. When the source type alone proves a rule applies,
// everything registered before it is dropped and the chain collapses.
//
// # Registration
//
// Rules are registered in named passes. Within a pass a target type may be
// registered once via Add; AddDirect skips that check. The first lookup
// seals the registry and later registrations fail with MalformedRuleError.
//
// # Special cases
//
// Before rules are consulted, the registry handles:
//   - Null, convertible to every non-primitive target unchanged
//   - script callables adapted to single-method abstract types (Adapter)
//   - script arrays converted element-wise to host arrays
//
// # Concurrency
//
// Chain construction happens at most once per pair from the caller's point
// of view: every caller observes the same *Chain. Chains are immutable and
// Convert may be called from any goroutine.
package convert
