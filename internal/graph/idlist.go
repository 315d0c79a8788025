package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// IDList is an ordered, duplicate-free collection of entity identifiers,
// owned by one entity and resolved through the owner's hook.
//
// Insertion order is meaningful: it is the default traversal and listing
// order. Every member must resolve to a live entity; a member that does not
// is reported as CORRUPT_STATE, never skipped.
//
// Mutations go through AddObj / RemoveObj so the owner is saved with each
// change. The backing slice is never exposed.
type IDList struct {
	owner Entity
	ids   []jid.ID

	// adopt makes the list's owner the owner of any unowned member added
	// through AddObj, so destroying the member unlinks it from here.
	adopt bool
}

func newIDList(owner Entity) *IDList {
	return &IDList{owner: owner}
}

// newOwningIDList returns a list that adopts unowned members.
func newOwningIDList(owner Entity) *IDList {
	return &IDList{owner: owner, adopt: true}
}

func (l *IDList) hook() Hook {
	return l.owner.Base().h
}

// Len returns the number of members.
func (l *IDList) Len() int {
	return len(l.ids)
}

// IDs returns a copy of the members in order.
func (l *IDList) IDs() []jid.ID {
	return slices.Clone(l.ids)
}

// Contains reports whether id is a member.
func (l *IDList) Contains(id jid.ID) bool {
	return slices.Contains(l.ids, id)
}

// Index returns the position of id, or -1.
func (l *IDList) Index(id jid.ID) int {
	return slices.Index(l.ids, id)
}

// AddObj appends e's identifier and saves the owner. Adding a member that is
// already present is a no-op. On an owning list, a member with no owner is
// given the list's owner and saved.
func (l *IDList) AddObj(ctx context.Context, e Entity) error {
	if l.adopt && e.Base().OwnerID().IsNil() {
		e.Base().SetOwner(l.owner.ID())
		if err := e.Base().Save(ctx); err != nil {
			return fmt.Errorf("adopt %s: %w", e.ID(), err)
		}
	}
	return l.AddID(ctx, e.ID())
}

// AddID appends id and saves the owner. Adding an existing id is a no-op.
func (l *IDList) AddID(ctx context.Context, id jid.ID) error {
	if l.Contains(id) {
		return nil
	}
	l.ids = append(l.ids, id)
	return l.owner.Base().Save(ctx)
}

// RemoveObj removes e's identifier and saves the owner. Removing a missing
// member is a no-op.
func (l *IDList) RemoveObj(ctx context.Context, e Entity) error {
	return l.RemoveID(ctx, e.ID())
}

// RemoveID removes id and saves the owner. Removing a missing id is a no-op.
func (l *IDList) RemoveID(ctx context.Context, id jid.ID) error {
	i := l.Index(id)
	if i < 0 {
		return nil
	}
	l.ids = slices.Delete(l.ids, i, i+1)
	return l.owner.Base().Save(ctx)
}

// resolve fetches a member, reporting a storage miss as CORRUPT_STATE.
func (l *IDList) resolve(ctx context.Context, id jid.ID) (Entity, error) {
	e, err := l.hook().GetObj(ctx, id)
	if err == nil {
		return e, nil
	}
	if IsNotFound(err) {
		return nil, newCorruptState(id, fmt.Sprintf("member of %s does not resolve", l.owner.ID()), err)
	}
	return nil, err
}

// ObjList resolves every member in insertion order.
func (l *IDList) ObjList(ctx context.Context) ([]Entity, error) {
	out := make([]Entity, 0, len(l.ids))
	for _, id := range l.ids {
		e, err := l.resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// GetObjByName returns the first member whose name matches exactly.
// Fails with NOT_FOUND if none match.
func (l *IDList) GetObjByName(ctx context.Context, name string) (Entity, error) {
	for _, id := range l.ids {
		e, err := l.resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if e.Base().Name == name {
			return e, nil
		}
	}
	return nil, newNotFoundByName(name)
}

// HasObjByName reports whether a member has the given name. A miss is
// (false, nil); only corrupt state or storage failure produce an error.
func (l *IDList) HasObjByName(ctx context.Context, name string) (bool, error) {
	_, err := l.GetObjByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// DestroyObj removes e from the list and destroys it through the hook.
func (l *IDList) DestroyObj(ctx context.Context, e Entity) error {
	if err := l.RemoveObj(ctx, e); err != nil {
		return err
	}
	return e.Destroy(ctx)
}

// DestroyObjByName removes the named member and destroys the underlying
// object. Fails with NOT_FOUND if no member has that name.
func (l *IDList) DestroyObjByName(ctx context.Context, name string) error {
	e, err := l.GetObjByName(ctx, name)
	if err != nil {
		return err
	}
	return l.DestroyObj(ctx, e)
}

func (l *IDList) serialize(ctx context.Context, depth int, detailed bool) (wire.List, error) {
	out := make(wire.List, 0, len(l.ids))
	for _, id := range l.ids {
		if depth <= 0 {
			out = append(out, wire.String(id.String()))
			continue
		}
		e, err := l.resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		rec, err := e.Base().Serialize(ctx, depth-1, detailed)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// load replaces the members from a serialized list of identifier strings or
// expanded sub-records. Duplicates are dropped, keeping first position.
func (l *IDList) load(v wire.Value) error {
	list, ok := v.(wire.List)
	if !ok {
		return fmt.Errorf("expected list, got %T", v)
	}
	ids := make([]jid.ID, 0, len(list))
	for i, elem := range list {
		if rec, isRec := elem.(wire.Record); isRec {
			elem = rec[KeyID]
		}
		s, isStr := elem.(wire.String)
		if !isStr {
			return fmt.Errorf("[%d]: expected id string, got %T", i, elem)
		}
		id, err := jid.Parse(string(s))
		if err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	l.ids = ids
	return nil
}
