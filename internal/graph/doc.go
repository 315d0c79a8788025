// Package graph is the object and graph model every runtime entity is built on.
//
// Every entity (generic element, node, edge, action) is an addressable object
// with a UUID, an optional owner, a display name, a free-form kind and a
// context record. Entities hold a reference to exactly one Hook for their
// lifetime and load, save and delete themselves through it.
//
// # Structure
//
//   - Element: identity, ownership, timestamps, serialization, duplication
//   - IDList: ordered, duplicate-free identifier collections with name lookup
//   - Node / Edge: directed attachment plus a separate membership relation
//   - Action: named values attached to nodes (entry and exit actions)
//   - Hook: storage contract, implemented by MemHook and PersistedHook
//
// # Invariants
//
//   - Relationships are stored as identifiers only, never live references.
//     Cyclic graphs are safe because expansion is bounded by a caller depth.
//   - An attach touches both endpoints or neither; detach removes both sides
//     and destroys the connecting edge.
//   - Duplicate adds and redundant detaches are no-ops, not errors.
//   - Dimension mismatches reject attach/membership silently; callers check
//     the post-condition with IsAttachedOut / IsMemberOf.
//
// The package is single-writer: nothing here takes locks. Callers serialize
// mutation of one object graph.
package graph
