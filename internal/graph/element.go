package graph

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// Entity is implemented by every persistable variant.
type Entity interface {
	// ID returns the entity's identifier.
	ID() jid.ID

	// Type returns the concrete variant tag.
	Type() EntityType

	// Base returns the shared element state.
	Base() *Element

	// Fields lists the variant's serialized fields beyond the base set.
	// The list is explicit per variant; nothing is discovered by reflection.
	Fields() []Field

	// Destroy unlinks the entity from the graph and deletes it through the hook.
	Destroy(ctx context.Context) error
}

// Field describes one variant-specific serialized field. Exactly one of
// IDs or Get/Set is set.
type Field struct {
	Name string

	// IDs is set for identifier collections.
	IDs *IDList

	// Get and Set handle scalar or record fields.
	Get func() wire.Value
	Set func(wire.Value) error
}

// Defaults applied to every new entity.
const (
	DefaultName = "basic"
	DefaultKind = "generic"
)

type settings struct {
	id        jid.ID
	owner     jid.ID
	name      string
	kind      string
	context   wire.Record
	timestamp time.Time
	noSave    bool

	dimension int
	value     wire.Value

	err error
}

// Option configures a new entity.
type Option func(*settings)

// WithName sets the display name, in NFC.
func WithName(name string) Option {
	return func(s *settings) { s.name = wire.NFC(name) }
}

// WithKind sets the free-form subtype tag, in NFC.
func WithKind(kind string) Option {
	return func(s *settings) { s.kind = wire.NFC(kind) }
}

// WithOwner sets the enclosing entity's identifier.
func WithOwner(owner jid.ID) Option {
	return func(s *settings) { s.owner = owner }
}

// WithContext sets the initial context record. The record is copied with
// its strings and keys in NFC; keys that collide after normalization fail
// the constructor.
func WithContext(ctx wire.Record) Option {
	return func(s *settings) {
		rec, err := wire.NormalizeRecord(ctx)
		if err != nil {
			s.err = fmt.Errorf("context: %w", err)
			return
		}
		s.context = rec
	}
}

// WithID overrides the generated identifier.
func WithID(id jid.ID) Option {
	return func(s *settings) { s.id = id }
}

// WithTimestamp overrides the creation time.
func WithTimestamp(ts time.Time) Option {
	return func(s *settings) { s.timestamp = ts }
}

// WithoutSave suppresses the save-on-construction. Used when the caller is
// about to overwrite identity fields (duplication, loading from storage).
func WithoutSave() Option {
	return func(s *settings) { s.noSave = true }
}

// WithDimension sets a node's dimension. Ignored by other variants.
func WithDimension(d int) Option {
	return func(s *settings) { s.dimension = d }
}

// WithValue sets an action's value, normalized like WithContext. Ignored by
// other variants.
func WithValue(v wire.Value) Option {
	return func(s *settings) {
		if v == nil {
			s.value = nil
			return
		}
		n, err := wire.Normalize(v)
		if err != nil {
			s.err = fmt.Errorf("value: %w", err)
			return
		}
		s.value = n
	}
}

func newSettings(h Hook, opts []Option) (*settings, error) {
	s := &settings{
		name: DefaultName,
		kind: DefaultKind,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.err != nil {
		return nil, s.err
	}
	env := envOf(h)
	if s.id.IsNil() {
		s.id = env.IDs.Next()
	}
	if s.timestamp.IsZero() {
		s.timestamp = env.Now()
	}
	if s.context == nil {
		s.context = wire.Record{}
	}
	return s, nil
}

// Element is the shared state of every entity, and the generic entity variant.
type Element struct {
	// Name is the display label; not required to be unique.
	Name string

	// Kind is a free-form subtype tag.
	Kind string

	// Context holds arbitrary entity data. Keys listed under the "_private"
	// context entry are stripped from shallow serialization.
	Context wire.Record

	id         jid.ID
	ownerID    jid.ID
	entityType EntityType
	timestamp  time.Time

	h    Hook
	self Entity
}

func (e *Element) init(h Hook, t EntityType, self Entity, s *settings) {
	e.Name = s.name
	e.Kind = s.kind
	e.Context = s.context
	e.id = s.id
	e.ownerID = s.owner
	e.entityType = t
	e.timestamp = normalizeTime(s.timestamp)
	e.h = h
	e.self = self
}

// NewElement creates a generic entity and saves it unless WithoutSave is given.
func NewElement(ctx context.Context, h Hook, opts ...Option) (*Element, error) {
	s, err := newSettings(h, opts)
	if err != nil {
		return nil, err
	}
	e := &Element{}
	e.init(h, TypeElement, e, s)
	if err := saveUnlessSuppressed(ctx, e, s); err != nil {
		return nil, err
	}
	return e, nil
}

func saveUnlessSuppressed(ctx context.Context, e Entity, s *settings) error {
	if s.noSave {
		return nil
	}
	return e.Base().Save(ctx)
}

// ID returns the identifier.
func (e *Element) ID() jid.ID { return e.id }

// Type returns the concrete variant tag.
func (e *Element) Type() EntityType { return e.entityType }

// Base returns e itself.
func (e *Element) Base() *Element { return e }

// Fields returns nil; the generic variant has only the base fields.
func (e *Element) Fields() []Field { return nil }

// OwnerID returns the enclosing entity's identifier (jid.Nil if none).
func (e *Element) OwnerID() jid.ID { return e.ownerID }

// SetOwner sets the enclosing entity's identifier.
func (e *Element) SetOwner(id jid.ID) { e.ownerID = id }

// Timestamp returns the creation or last duplication time.
func (e *Element) Timestamp() time.Time { return e.timestamp }

// Touch sets the timestamp to the hook clock's current time.
func (e *Element) Touch() { e.timestamp = normalizeTime(envOf(e.h).Now()) }

// Hook returns the hook the entity is bound to.
func (e *Element) Hook() Hook { return e.h }

// Save writes the entity through its hook.
func (e *Element) Save(ctx context.Context) error {
	return e.h.SaveObj(ctx, e.self)
}

// Destroy removes the entity from every collection of its owner and deletes
// it through the hook. An owner that no longer exists is skipped.
func (e *Element) Destroy(ctx context.Context) error {
	if !e.ownerID.IsNil() {
		owner, err := e.h.GetObj(ctx, e.ownerID)
		switch {
		case err == nil:
			for _, f := range owner.Fields() {
				if f.IDs == nil {
					continue
				}
				if err := f.IDs.RemoveID(ctx, e.id); err != nil {
					return err
				}
			}
		case IsNotFound(err):
		default:
			return err
		}
	}
	return e.h.DestroyObj(ctx, e.self)
}

// IsEquivalent reports whether other is the same variant with equal fields,
// ignoring identifier and timestamp.
func (e *Element) IsEquivalent(other Entity) bool {
	o := other.Base()
	if e.entityType != o.entityType {
		return false
	}
	if e.Name != o.Name || e.Kind != o.Kind || e.ownerID != o.ownerID {
		return false
	}
	if !wire.Equal(e.Context, o.Context) {
		return false
	}

	mine, theirs := e.self.Fields(), o.self.Fields()
	if len(mine) != len(theirs) {
		return false
	}
	for i := range mine {
		a, b := mine[i], theirs[i]
		if a.Name != b.Name {
			return false
		}
		if a.IDs != nil {
			if b.IDs == nil || !slices.Equal(a.IDs.ids, b.IDs.ids) {
				return false
			}
			continue
		}
		if !wire.Equal(a.Get(), b.Get()) {
			return false
		}
	}
	return true
}

// String returns "type:kind:name:id".
func (e *Element) String() string {
	return string(e.entityType) + ":" + e.Kind + ":" + e.Name + ":" + e.id.String()
}

// normalizeTime drops the monotonic reading and location so timestamps
// round-trip through text unchanged.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Round(0)
}
