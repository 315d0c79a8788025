package graph

import (
	"fmt"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// EntityType is the closed set of entity variants. It is written into every
// serialized record and selects the concrete type when a record is loaded.
type EntityType string

const (
	TypeElement EntityType = "element"
	TypeNode    EntityType = "node"
	TypeEdge    EntityType = "edge"
	TypeAction  EntityType = "action"
)

// EntityTypes lists every variant in a fixed order.
var EntityTypes = []EntityType{TypeElement, TypeNode, TypeEdge, TypeAction}

// Valid reports whether t is a known variant.
func (t EntityType) Valid() bool {
	switch t {
	case TypeElement, TypeNode, TypeEdge, TypeAction:
		return true
	}
	return false
}

// ParseEntityType validates a variant tag.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", &Error{Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("unknown entity type %q", s)}
	}
	return t, nil
}

// Blank constructs an unsaved entity of variant t with a fresh identifier
// and timestamp.
func Blank(h Hook, t EntityType, opts ...Option) (Entity, error) {
	opts = append(opts, WithoutSave())
	s, err := newSettings(h, opts)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeElement:
		e := &Element{}
		e.init(h, TypeElement, e, s)
		return e, nil
	case TypeNode:
		return newNode(h, s), nil
	case TypeEdge:
		return newEdge(h, s), nil
	case TypeAction:
		return newAction(h, s), nil
	default:
		return nil, &Error{Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("unknown entity type %q", t)}
	}
}

// Materialize builds the concrete variant a detailed record describes. The
// record's "entity_type" selects the variant; the entity is not saved.
func Materialize(h Hook, rec wire.Record) (Entity, error) {
	raw, ok := rec.Str(KeyEntityType)
	if !ok {
		return nil, &Error{Code: ErrCodeTypeMismatch, Message: "record has no entity_type"}
	}
	t, err := ParseEntityType(raw)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if raw, ok := rec.Str(KeyID); ok {
		id, err := jid.Parse(raw)
		if err != nil {
			return nil, newCorruptState(jid.Nil, "record has malformed id", err)
		}
		opts = append(opts, WithID(id))
	}
	e, err := Blank(h, t, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.Base().LoadRecord(rec); err != nil {
		return nil, err
	}
	return e, nil
}
