package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// Record keys of the base element fields.
const (
	KeyID         = "id"
	KeyOwnerID    = "owner_id"
	KeyName       = "name"
	KeyKind       = "kind"
	KeyEntityType = "entity_type"
	KeyTimestamp  = "timestamp"
	KeyContext    = "context"

	// PrivateContextKey holds a list of context keys hidden from shallow output.
	PrivateContextKey = "_private"
)

// Serialize returns the entity as a wire record.
//
// With detailed=false the record holds only id, name, kind, entity_type,
// context and timestamp, and private context keys are stripped. With
// detailed=true every field is present. depth>0 expands identifier
// collections into serialized sub-records (depth-1, same detail level, since
// a shallow sub-record has no collections left to expand); at depth 0 they
// are lists of identifier strings. depth bounds expansion
// on cyclic graphs and must be finite.
func (e *Element) Serialize(ctx context.Context, depth int, detailed bool) (wire.Record, error) {
	rec := wire.Record{
		KeyID:         wire.String(e.id.String()),
		KeyName:       wire.String(e.Name),
		KeyKind:       wire.String(e.Kind),
		KeyEntityType: wire.String(e.entityType),
		KeyTimestamp:  wire.String(e.timestamp.Format(time.RFC3339Nano)),
	}
	if !detailed {
		rec[KeyContext] = publicContext(e.Context)
		return rec, nil
	}

	rec[KeyContext] = e.Context.Clone()
	if !e.ownerID.IsNil() {
		rec[KeyOwnerID] = wire.String(e.ownerID.String())
	}
	for _, f := range e.self.Fields() {
		if f.IDs != nil {
			v, err := f.IDs.serialize(ctx, depth, detailed)
			if err != nil {
				return nil, fmt.Errorf("serialize %s: %w", f.Name, err)
			}
			rec[f.Name] = v
			continue
		}
		rec[f.Name] = wire.Clone(f.Get())
	}
	return rec, nil
}

// publicContext copies ctx without the keys named under "_private". The
// marker itself is kept.
func publicContext(ctx wire.Record) wire.Record {
	out := ctx.Clone()
	private, ok := out[PrivateContextKey].(wire.List)
	if !ok {
		return out
	}
	for _, v := range private {
		if key, ok := v.(wire.String); ok {
			delete(out, string(key))
		}
	}
	return out
}

// ToWire returns the canonical text encoding of Serialize.
func (e *Element) ToWire(ctx context.Context, depth int, detailed bool) (string, error) {
	rec, err := e.Serialize(ctx, depth, detailed)
	if err != nil {
		return "", err
	}
	data, err := wire.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", e.id, err)
	}
	return string(data), nil
}

// LoadFromWire overwrites fields in place from canonical text. Fields absent
// from the text are left untouched.
func (e *Element) LoadFromWire(text string) error {
	rec, err := wire.UnmarshalRecord([]byte(text))
	if err != nil {
		return fmt.Errorf("load %s: %w", e.id, err)
	}
	return e.LoadRecord(rec)
}

// LoadRecord overwrites fields in place from a decoded record. A declared
// entity_type that differs from this variant fails with TYPE_MISMATCH and
// nothing is changed.
func (e *Element) LoadRecord(rec wire.Record) error {
	if v, ok := rec[KeyEntityType]; ok {
		s, isStr := v.(wire.String)
		if !isStr || EntityType(s) != e.entityType {
			return newTypeMismatch(e.id, e.entityType, EntityType(fmt.Sprint(wire.ToGo(v))))
		}
	}

	if v, ok := rec[KeyID]; ok {
		id, err := idValue(v)
		if err != nil {
			return fmt.Errorf("load %s: %w", KeyID, err)
		}
		e.id = id
	}
	if v, ok := rec[KeyOwnerID]; ok {
		id, err := idValue(v)
		if err != nil {
			return fmt.Errorf("load %s: %w", KeyOwnerID, err)
		}
		e.ownerID = id
	}
	if err := loadString(rec, KeyName, &e.Name); err != nil {
		return err
	}
	if err := loadString(rec, KeyKind, &e.Kind); err != nil {
		return err
	}
	if v, ok := rec[KeyTimestamp]; ok {
		s, isStr := v.(wire.String)
		if !isStr {
			return fmt.Errorf("load %s: expected string, got %T", KeyTimestamp, v)
		}
		ts, err := time.Parse(time.RFC3339Nano, string(s))
		if err != nil {
			return fmt.Errorf("load %s: %w", KeyTimestamp, err)
		}
		e.timestamp = normalizeTime(ts)
	}
	if v, ok := rec[KeyContext]; ok {
		c, isRec := v.(wire.Record)
		if !isRec {
			return fmt.Errorf("load %s: expected record, got %T", KeyContext, v)
		}
		e.Context = c.Clone()
	}

	for _, f := range e.self.Fields() {
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		if f.IDs != nil {
			if err := f.IDs.load(v); err != nil {
				return fmt.Errorf("load %s: %w", f.Name, err)
			}
			continue
		}
		if err := f.Set(wire.Clone(v)); err != nil {
			return fmt.Errorf("load %s: %w", f.Name, err)
		}
	}
	return nil
}

func loadString(rec wire.Record, key string, dst *string) error {
	v, ok := rec[key]
	if !ok {
		return nil
	}
	s, isStr := v.(wire.String)
	if !isStr {
		return fmt.Errorf("load %s: expected string, got %T", key, v)
	}
	*dst = string(s)
	return nil
}

// idValue decodes an identifier field. Null decodes to jid.Nil.
func idValue(v wire.Value) (jid.ID, error) {
	switch val := v.(type) {
	case wire.Null:
		return jid.Nil, nil
	case wire.String:
		if val == "" {
			return jid.Nil, nil
		}
		return jid.Parse(string(val))
	default:
		return jid.Nil, fmt.Errorf("expected id string, got %T", v)
	}
}

// idWire encodes an identifier field. jid.Nil encodes as null.
func idWire(id jid.ID) wire.Value {
	if id.IsNil() {
		return wire.Null{}
	}
	return wire.String(id.String())
}

// Duplicate creates a new entity of the same variant with a fresh identifier
// and timestamp, copying every other field through the detailed record.
// Identifier collections are copied as references: the entities they point
// at are not duplicated. The copy is saved only when persist is true.
func (e *Element) Duplicate(ctx context.Context, persist bool) (Entity, error) {
	rec, err := e.Serialize(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("duplicate %s: %w", e.id, err)
	}
	delete(rec, KeyID)
	delete(rec, KeyTimestamp)

	dup, err := Blank(e.h, e.entityType)
	if err != nil {
		return nil, err
	}
	if err := dup.Base().LoadRecord(rec); err != nil {
		return nil, fmt.Errorf("duplicate %s: %w", e.id, err)
	}
	if persist {
		if err := dup.Base().Save(ctx); err != nil {
			return nil, fmt.Errorf("duplicate %s: %w", e.id, err)
		}
	}
	return dup, nil
}
