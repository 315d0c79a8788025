package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// Hook is the storage contract every entity loads, saves and deletes itself
// through. Implementations must give read-your-writes within a process: a
// GetObj after SaveObj or DestroyObj observes that change.
type Hook interface {
	// GetObj returns the live entity for id, consulting the process-local
	// cache before durable storage. Fails with NOT_FOUND if absent in both.
	GetObj(ctx context.Context, id jid.ID) (Entity, error)

	// SaveObj upserts the entity. Persisted hooks stage the write until Commit.
	SaveObj(ctx context.Context, e Entity) error

	// DestroyObj removes the entity from cache and durable storage.
	DestroyObj(ctx context.Context, e Entity) error

	// Commit flushes staged writes atomically.
	Commit(ctx context.Context) error
}

// Env supplies identifiers and time to entities constructed on a hook.
type Env struct {
	IDs jid.Generator
	Now func() time.Time
}

// DefaultEnv returns random identifiers and wall-clock time.
func DefaultEnv() Env {
	return Env{IDs: jid.Random, Now: time.Now}
}

// envOf returns the hook's environment when it provides one.
func envOf(h Hook) Env {
	env := DefaultEnv()
	p, ok := h.(interface{ Env() Env })
	if !ok {
		return env
	}
	custom := p.Env()
	if custom.IDs != nil {
		env.IDs = custom.IDs
	}
	if custom.Now != nil {
		env.Now = custom.Now
	}
	return env
}

type hookConfig struct {
	env      Env
	validate func(wire.Record) error
}

// HookOption configures MemHook and PersistedHook.
type HookOption func(*hookConfig)

// WithIDGenerator sets the identifier source for entities built on the hook.
func WithIDGenerator(g jid.Generator) HookOption {
	return func(c *hookConfig) { c.env.IDs = g }
}

// WithClock sets the time source for entity timestamps.
func WithClock(now func() time.Time) HookOption {
	return func(c *hookConfig) { c.env.Now = now }
}

// WithValidator sets a check run on every stored record before it is
// materialized. Only PersistedHook uses it.
func WithValidator(fn func(wire.Record) error) HookOption {
	return func(c *hookConfig) { c.validate = fn }
}

func newHookConfig(opts []HookOption) hookConfig {
	cfg := hookConfig{env: DefaultEnv()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// MemHook keeps live entities in a map. SaveObj is a cache write and Commit
// is a no-op.
//
// Thread-safety: MemHook is NOT safe for concurrent use. Callers serialize
// mutation (one graph mutation at a time per object graph).
type MemHook struct {
	objs map[jid.ID]Entity
	env  Env
}

// NewMemHook creates an empty in-memory hook.
func NewMemHook(opts ...HookOption) *MemHook {
	cfg := newHookConfig(opts)
	return &MemHook{
		objs: make(map[jid.ID]Entity),
		env:  cfg.env,
	}
}

// Env returns the hook's identifier and time sources.
func (h *MemHook) Env() Env {
	return h.env
}

// GetObj returns the live entity for id.
func (h *MemHook) GetObj(_ context.Context, id jid.ID) (Entity, error) {
	e, ok := h.objs[id]
	if !ok {
		return nil, NewNotFound(id)
	}
	return e, nil
}

// SaveObj stores the live entity.
func (h *MemHook) SaveObj(_ context.Context, e Entity) error {
	h.objs[e.ID()] = e
	return nil
}

// DestroyObj forgets the entity.
func (h *MemHook) DestroyObj(_ context.Context, e Entity) error {
	delete(h.objs, e.ID())
	slog.Debug("object destroyed", "id", e.ID(), "type", e.Type())
	return nil
}

// Commit is a no-op for the in-memory hook.
func (h *MemHook) Commit(context.Context) error {
	return nil
}

// Len returns the number of stored entities.
func (h *MemHook) Len() int {
	return len(h.objs)
}

// Has reports whether id is stored.
func (h *MemHook) Has(id jid.ID) bool {
	_, ok := h.objs[id]
	return ok
}
