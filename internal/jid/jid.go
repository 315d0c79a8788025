// Package jid provides the identifiers every graph entity is addressed by.
//
// An ID is a 128-bit UUID. The zero value is the nil ID and means "absent"
// (an entity without an owner, an edge without an endpoint). IDs are always
// stored and transmitted in their canonical 36-character string form.
package jid

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// ID is a universally unique entity identifier.
type ID struct {
	u uuid.UUID
}

// Nil is the absent identifier.
var Nil = ID{}

// New returns a fresh random (version 4) identifier.
//
// Panics if the system random source fails, which uuid.New also does.
func New() ID {
	return ID{u: uuid.New()}
}

// FromUUID wraps an existing UUID.
func FromUUID(u uuid.UUID) ID {
	return ID{u: u}
}

// Parse decodes the canonical form or the "urn:uuid:" form.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("parse id %q: %w", s, err)
	}
	return ID{u: u}, nil
}

// namespace scopes identifiers made by Derive.
var namespace = uuid.MustParse("8a3c2f4e-5b1d-4e7a-9c60-2d4f1b7e9a35")

// Derive returns the name-based (version 5) identifier for name. The same
// name always yields the same identifier.
func Derive(name string) ID {
	return ID{u: uuid.NewSHA1(namespace, []byte(name))}
}

// MustParse is Parse for constants in tests; it panics on malformed input.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical lowercase hyphenated form.
func (id ID) String() string {
	return id.u.String()
}

// URN returns the RFC 4122 URN form ("urn:uuid:...").
func (id ID) URN() string {
	return id.u.URN()
}

// IsNil reports whether id is the absent identifier.
func (id ID) IsNil() bool {
	return id.u == uuid.Nil
}

// UUID exposes the underlying value.
func (id ID) UUID() uuid.UUID {
	return id.u
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare orders IDs by their bytes, which matches the order of their
// canonical strings.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id.u[:], other.u[:])
}
