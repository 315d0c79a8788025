package graph

import (
	"context"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// Record keys of edge fields.
const (
	KeyFromNodeID = "from_node_id"
	KeyToNodeID   = "to_node_id"
)

// Edge is a directed relation between two nodes. It is a full entity and
// may carry its own name and context.
type Edge struct {
	Element

	FromNodeID jid.ID
	ToNodeID   jid.ID
}

func newEdge(h Hook, s *settings) *Edge {
	e := &Edge{}
	e.init(h, TypeEdge, e, s)
	return e
}

// NewEdge creates an edge from -> to and saves it unless WithoutSave is
// given. Either endpoint may be nil. The edge is not attached; use
// Node.AttachOutboundEdge or Node.AttachInboundEdge for that.
func NewEdge(ctx context.Context, h Hook, from, to *Node, opts ...Option) (*Edge, error) {
	s, err := newSettings(h, opts)
	if err != nil {
		return nil, err
	}
	e := newEdge(h, s)
	if from != nil {
		e.FromNodeID = from.id
	}
	if to != nil {
		e.ToNodeID = to.id
	}
	if err := saveUnlessSuppressed(ctx, e, s); err != nil {
		return nil, err
	}
	return e, nil
}

// Fields lists the edge's serialized fields.
func (e *Edge) Fields() []Field {
	return []Field{
		idField(KeyFromNodeID, &e.FromNodeID),
		idField(KeyToNodeID, &e.ToNodeID),
	}
}

func idField(name string, dst *jid.ID) Field {
	return Field{
		Name: name,
		Get:  func() wire.Value { return idWire(*dst) },
		Set: func(v wire.Value) error {
			id, err := idValue(v)
			if err != nil {
				return err
			}
			*dst = id
			return nil
		},
	}
}

// FromNode resolves the source node.
func (e *Edge) FromNode(ctx context.Context) (*Node, error) {
	return e.endpoint(ctx, e.FromNodeID)
}

// ToNode resolves the target node.
func (e *Edge) ToNode(ctx context.Context) (*Node, error) {
	return e.endpoint(ctx, e.ToNodeID)
}

func (e *Edge) endpoint(ctx context.Context, id jid.ID) (*Node, error) {
	n, err := nodeByID(ctx, e.h, id)
	if IsNotFound(err) {
		return nil, newCorruptState(id, "edge endpoint "+e.id.String()+" does not resolve", err)
	}
	return n, err
}

// Connects reports whether e runs from -> to.
func (e *Edge) Connects(from, to *Node) bool {
	return e.FromNodeID == from.id && e.ToNodeID == to.id
}

// Destroy removes e from both endpoints' edge lists and deletes it.
// Endpoints that no longer exist are skipped.
func (e *Edge) Destroy(ctx context.Context) error {
	if err := e.unlink(ctx, e.FromNodeID, func(n *Node) *IDList { return n.OutboundEdgeIDs }); err != nil {
		return err
	}
	if err := e.unlink(ctx, e.ToNodeID, func(n *Node) *IDList { return n.InboundEdgeIDs }); err != nil {
		return err
	}
	return e.Element.Destroy(ctx)
}

func (e *Edge) unlink(ctx context.Context, id jid.ID, side func(*Node) *IDList) error {
	if id.IsNil() {
		return nil
	}
	n, err := nodeByID(ctx, e.h, id)
	if IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return side(n).RemoveID(ctx, e.id)
}
