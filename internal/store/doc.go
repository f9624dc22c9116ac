// Package store provides the SQLite-backed resolution journal.
//
// The journal is append-only and content-addressed:
//   - Resolutions: one row per call shape (group name + argument types)
//   - Conversions: one row per (source, target) lookup
//
// # Critical Patterns
//
// Shape-Level Idempotency
//   - Row IDs are types.ShapeID / types.ConversionID
//   - INSERT ... ON CONFLICT(id) DO NOTHING keeps the first observation
//
// Logical Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Queries order by seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// *Store implements linker.Recorder.
package store
