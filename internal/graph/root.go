package graph

import (
	"context"
	"log/slog"

	"github.com/roach88/jsgraph/internal/jid"
)

// RootKind names and tags every user's root node.
const RootKind = "root"

// RootID returns the identifier of user's root node. It is derived from the
// user name, so every hook for the same user agrees on it without a lookup.
func RootID(user string) jid.ID {
	return jid.Derive("root:" + user)
}

// Root returns the user's root node, creating it on first use. A created
// root is staged like any other save; the caller commits.
func (h *PersistedHook) Root(ctx context.Context) (*Node, error) {
	id := RootID(h.user)
	obj, err := h.GetObj(ctx, id)
	switch {
	case err == nil:
		n, ok := obj.(*Node)
		if !ok {
			return nil, newTypeMismatch(id, TypeNode, obj.Type())
		}
		return n, nil
	case !IsNotFound(err):
		return nil, err
	}

	n, err := NewNode(ctx, h, WithID(id), WithName(RootKind), WithKind(RootKind))
	if err != nil {
		return nil, err
	}
	slog.Info("root node created", "user", h.user, "id", id)
	return n, nil
}
