// Package wire is the storage-neutral value model for serialized entities.
//
// A serialized entity is a Record: a flat map from field name to Value, where
// values are scalars, identifier lists (as List of String), or nested Records
// when a caller asks for depth-expanded output.
//
// Key design constraints:
//   - NO float values - numbers are int64 so encoding is deterministic
//   - Marshal produces canonical JSON (RFC 8785 key order, no HTML escaping)
//     so equal records always encode to equal bytes; it never rewrites text
//   - Normalize brings strings and keys to NFC before they enter a record
//   - Value is sealed; only the types in this package implement it
package wire
