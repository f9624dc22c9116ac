// Package linker exposes overload resolution and value conversion as one
// service for a script runtime calling into host code.
//
// A Linker combines a type universe, a conversion registry, a comparator
// chain and three collaborators:
//   - Harvester supplies the candidate signatures of a name
//   - Invoker performs the selected call
//   - Recorder (optional) journals every resolution and conversion lookup
//
// Journal entries are stamped with a session ID and a logical seq from a
// Sequencer, never with wall-clock time.
package linker
