// Package store provides SQLite-backed durable storage for entity graphs.
//
// Store implements graph.Backend over a single objects table. Each row holds
// the canonical wire text of one entity, zstd compressed, plus the columns
// needed to list and look up entities without decoding bodies:
//   - id, owner_id, user_id
//   - name, kind, entity_type
//   - ts (creation time, unix nanoseconds)
//
// # Ordering
//
// Listing queries use ORDER BY ts ASC, id COLLATE BINARY ASC so results are
// identical across runs for the same data.
//
// # Atomicity
//
// Apply runs every put and delete of a batch in one transaction. A failed
// batch leaves the table as it was.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
