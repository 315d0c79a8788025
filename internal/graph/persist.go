package graph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// Row is the stored form of one entity. Every variant shares one layout;
// Body holds the canonical wire text of the detailed, depth-0 record.
type Row struct {
	ID        jid.ID
	OwnerID   jid.ID
	User      string
	Name      string
	Kind      string
	Type      EntityType
	Timestamp time.Time
	Body      []byte
}

// Batch is the unit of atomic durable change.
type Batch struct {
	Puts    []Row
	Deletes []jid.ID
}

// Empty reports whether the batch carries no changes.
func (b Batch) Empty() bool {
	return len(b.Puts) == 0 && len(b.Deletes) == 0
}

// Backend is durable row storage for PersistedHook.
type Backend interface {
	// Load returns the row for id. A missing row fails with NOT_FOUND.
	Load(ctx context.Context, id jid.ID) (Row, error)

	// Apply writes every put and delete of the batch atomically: either all
	// of it lands or none of it does.
	Apply(ctx context.Context, b Batch) error

	// ListByUser returns the user's rows ordered by timestamp then id.
	ListByUser(ctx context.Context, user string) ([]Row, error)

	// ListByType returns the user's rows of one variant, same order.
	ListByType(ctx context.Context, user string, t EntityType) ([]Row, error)

	// DeleteUser removes every row of the user and returns the count.
	DeleteUser(ctx context.Context, user string) (int, error)

	// Close releases the backend's resources.
	Close() error
}

// PersistedHook caches live entities in process and stages writes until
// Commit, which flushes them to a Backend in one atomic batch.
//
// Reads see staged writes: GetObj returns the cached entity for anything
// saved, and NOT_FOUND for anything destroyed but not yet committed.
//
// Thread-safety: PersistedHook is NOT safe for concurrent use.
type PersistedHook struct {
	backend  Backend
	user     string
	env      Env
	validate func(wire.Record) error

	cache   map[jid.ID]Entity
	staged  map[jid.ID]Entity
	order   []jid.ID
	deleted map[jid.ID]struct{}
}

// NewPersistedHook creates a hook writing rows owned by user.
func NewPersistedHook(b Backend, user string, opts ...HookOption) *PersistedHook {
	cfg := newHookConfig(opts)
	return &PersistedHook{
		backend:  b,
		user:     user,
		env:      cfg.env,
		validate: cfg.validate,
		cache:    make(map[jid.ID]Entity),
		staged:   make(map[jid.ID]Entity),
		deleted:  make(map[jid.ID]struct{}),
	}
}

// Env returns the hook's identifier and time sources.
func (h *PersistedHook) Env() Env {
	return h.env
}

// User returns the owning user.
func (h *PersistedHook) User() string {
	return h.user
}

// Pending returns the number of staged saves and deletes.
func (h *PersistedHook) Pending() int {
	return len(h.staged) + len(h.deleted)
}

// GetObj returns the cached entity for id, loading it from the backend on a
// miss. A stored body that fails to decode or validate is CORRUPT_STATE.
func (h *PersistedHook) GetObj(ctx context.Context, id jid.ID) (Entity, error) {
	if _, gone := h.deleted[id]; gone {
		return nil, NewNotFound(id)
	}
	if e, ok := h.cache[id]; ok {
		return e, nil
	}

	row, err := h.backend.Load(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, err
		}
		return nil, NewStorageFailure(fmt.Sprintf("load %s", id), err)
	}
	e, err := h.materialize(row)
	if err != nil {
		return nil, err
	}
	h.cache[id] = e
	return e, nil
}

func (h *PersistedHook) materialize(row Row) (Entity, error) {
	rec, err := wire.UnmarshalRecord(row.Body)
	if err != nil {
		return nil, newCorruptState(row.ID, "stored body does not decode", err)
	}
	if h.validate != nil {
		if err := h.validate(rec); err != nil {
			return nil, newCorruptState(row.ID, "stored body fails validation", err)
		}
	}
	e, err := Materialize(h, rec)
	if err != nil {
		if IsTypeMismatch(err) {
			return nil, err
		}
		return nil, newCorruptState(row.ID, "stored body does not load", err)
	}
	if e.ID() != row.ID {
		return nil, newCorruptState(row.ID, fmt.Sprintf("stored body carries id %s", e.ID()), nil)
	}
	if row.Type != "" && e.Type() != row.Type {
		return nil, newTypeMismatch(row.ID, row.Type, e.Type())
	}
	return e, nil
}

// SaveObj caches the entity and stages it for the next Commit.
func (h *PersistedHook) SaveObj(_ context.Context, e Entity) error {
	id := e.ID()
	delete(h.deleted, id)
	h.cache[id] = e
	if _, ok := h.staged[id]; !ok {
		h.order = append(h.order, id)
	}
	h.staged[id] = e
	return nil
}

// DestroyObj evicts the entity, drops any staged save and stages a delete.
func (h *PersistedHook) DestroyObj(_ context.Context, e Entity) error {
	id := e.ID()
	delete(h.cache, id)
	if _, ok := h.staged[id]; ok {
		delete(h.staged, id)
		h.order = slices.DeleteFunc(h.order, func(x jid.ID) bool { return x == id })
	}
	h.deleted[id] = struct{}{}
	slog.Debug("object destroyed", "id", id, "type", e.Type(), "user", h.user)
	return nil
}

// Commit writes every staged save and delete in one backend batch. On
// failure nothing is cleared, so a later Commit retries the same batch.
func (h *PersistedHook) Commit(ctx context.Context) error {
	batch, err := h.batch(ctx)
	if err != nil {
		return err
	}
	if batch.Empty() {
		return nil
	}
	if err := h.backend.Apply(ctx, batch); err != nil {
		return NewStorageFailure("commit", err)
	}

	slog.Debug("committed", "user", h.user, "puts", len(batch.Puts), "deletes", len(batch.Deletes))
	h.staged = make(map[jid.ID]Entity)
	h.order = nil
	h.deleted = make(map[jid.ID]struct{})
	return nil
}

func (h *PersistedHook) batch(ctx context.Context) (Batch, error) {
	var b Batch
	for _, id := range h.order {
		e, ok := h.staged[id]
		if !ok {
			continue
		}
		row, err := h.row(ctx, e)
		if err != nil {
			return Batch{}, err
		}
		b.Puts = append(b.Puts, row)
	}
	for id := range h.deleted {
		b.Deletes = append(b.Deletes, id)
	}
	slices.SortFunc(b.Deletes, jid.ID.Compare)
	return b, nil
}

func (h *PersistedHook) row(ctx context.Context, e Entity) (Row, error) {
	base := e.Base()
	rec, err := base.Serialize(ctx, 0, true)
	if err != nil {
		return Row{}, fmt.Errorf("commit %s: %w", e.ID(), err)
	}
	body, err := wire.Marshal(rec)
	if err != nil {
		return Row{}, fmt.Errorf("commit %s: %w", e.ID(), err)
	}
	return Row{
		ID:        base.id,
		OwnerID:   base.ownerID,
		User:      h.user,
		Name:      base.Name,
		Kind:      base.Kind,
		Type:      base.entityType,
		Timestamp: base.timestamp,
		Body:      body,
	}, nil
}

// ListByUser returns every entity of the hook's user: committed rows in
// storage order, then entities staged but not yet committed. Entities with
// a pending delete are skipped.
func (h *PersistedHook) ListByUser(ctx context.Context) ([]Entity, error) {
	rows, err := h.backend.ListByUser(ctx, h.user)
	if err != nil {
		return nil, NewStorageFailure("list by user", err)
	}
	return h.merge(ctx, rows, "")
}

// ListByType is ListByUser restricted to one variant.
func (h *PersistedHook) ListByType(ctx context.Context, t EntityType) ([]Entity, error) {
	rows, err := h.backend.ListByType(ctx, h.user, t)
	if err != nil {
		return nil, NewStorageFailure("list by type", err)
	}
	return h.merge(ctx, rows, t)
}

func (h *PersistedHook) merge(ctx context.Context, rows []Row, t EntityType) ([]Entity, error) {
	seen := make(map[jid.ID]struct{}, len(rows))
	out := make([]Entity, 0, len(rows))
	for _, row := range rows {
		if _, gone := h.deleted[row.ID]; gone {
			continue
		}
		e, err := h.GetObj(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		seen[row.ID] = struct{}{}
		out = append(out, e)
	}
	for _, id := range h.order {
		e, ok := h.staged[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if t != "" && e.Type() != t {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// FindByName returns the user's entities with the given name, in listing
// order.
func (h *PersistedHook) FindByName(ctx context.Context, name string) ([]Entity, error) {
	all, err := h.ListByUser(ctx)
	if err != nil {
		return nil, err
	}
	var out []Entity
	for _, e := range all {
		if e.Base().Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

// DeleteUser removes every committed row of the user and drops all cached
// and staged state. It returns the number of rows removed.
func (h *PersistedHook) DeleteUser(ctx context.Context) (int, error) {
	n, err := h.backend.DeleteUser(ctx, h.user)
	if err != nil {
		return 0, NewStorageFailure("delete user", err)
	}
	h.cache = make(map[jid.ID]Entity)
	h.staged = make(map[jid.ID]Entity)
	h.order = nil
	h.deleted = make(map[jid.ID]struct{})
	slog.Info("user deleted", "user", h.user, "rows", n)
	return n, nil
}

// Close closes the backend. Staged changes not committed are lost.
func (h *PersistedHook) Close() error {
	if n := h.Pending(); n > 0 {
		slog.Warn("closing with uncommitted changes", "user", h.user, "pending", n)
	}
	return h.backend.Close()
}
