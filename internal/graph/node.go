package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/wire"
)

// Record keys of node fields.
const (
	KeyDimension       = "dimension"
	KeyOutboundEdgeIDs = "outbound_edge_ids"
	KeyInboundEdgeIDs  = "inbound_edge_ids"
	KeyOwnerNodeIDs    = "owner_node_ids"
	KeyMemberNodeIDs   = "member_node_ids"
	KeyEntryActionIDs  = "entry_action_ids"
	KeyExitActionIDs   = "exit_action_ids"
)

// Node is a graph vertex.
//
// Directed attachment is kept in OutboundEdgeIDs / InboundEdgeIDs; each
// directed relation is one Edge whose id appears on both endpoints.
// Membership (OwnerNodeIDs / MemberNodeIDs) is a separate, non-directed
// grouping relation between nodes of adjacent dimensions.
type Node struct {
	Element

	// Dimension gates which nodes may be connected or grouped.
	// 0 is the default (base) dimension.
	Dimension int

	OutboundEdgeIDs *IDList
	InboundEdgeIDs  *IDList
	OwnerNodeIDs    *IDList
	MemberNodeIDs   *IDList
	EntryActionIDs  *IDList
	ExitActionIDs   *IDList
}

func newNode(h Hook, s *settings) *Node {
	n := &Node{Dimension: s.dimension}
	n.init(h, TypeNode, n, s)
	n.OutboundEdgeIDs = newIDList(n)
	n.InboundEdgeIDs = newIDList(n)
	n.OwnerNodeIDs = newIDList(n)
	n.MemberNodeIDs = newIDList(n)
	n.EntryActionIDs = newOwningIDList(n)
	n.ExitActionIDs = newOwningIDList(n)
	return n
}

// NewNode creates a node and saves it unless WithoutSave is given.
func NewNode(ctx context.Context, h Hook, opts ...Option) (*Node, error) {
	s, err := newSettings(h, opts)
	if err != nil {
		return nil, err
	}
	n := newNode(h, s)
	if err := saveUnlessSuppressed(ctx, n, s); err != nil {
		return nil, err
	}
	return n, nil
}

// Fields lists the node's serialized fields.
func (n *Node) Fields() []Field {
	return []Field{
		{
			Name: KeyDimension,
			Get:  func() wire.Value { return wire.Int(n.Dimension) },
			Set: func(v wire.Value) error {
				d, ok := v.(wire.Int)
				if !ok {
					return fmt.Errorf("expected int, got %T", v)
				}
				n.Dimension = int(d)
				return nil
			},
		},
		{Name: KeyOutboundEdgeIDs, IDs: n.OutboundEdgeIDs},
		{Name: KeyInboundEdgeIDs, IDs: n.InboundEdgeIDs},
		{Name: KeyOwnerNodeIDs, IDs: n.OwnerNodeIDs},
		{Name: KeyMemberNodeIDs, IDs: n.MemberNodeIDs},
		{Name: KeyEntryActionIDs, IDs: n.EntryActionIDs},
		{Name: KeyExitActionIDs, IDs: n.ExitActionIDs},
	}
}

// CanAttach reports whether n and other may be joined by a directed edge.
// Their dimensions must be equal.
func (n *Node) CanAttach(other *Node) bool {
	return n.Dimension == other.Dimension
}

// CanContain reports whether member may join n's membership. n must sit
// exactly one dimension above member.
func (n *Node) CanContain(member *Node) bool {
	return n.Dimension == member.Dimension+1
}

// AttachOutbound connects n -> to with a new edge and returns it. If n is
// already attached to to, the existing edge is returned. A dimension
// mismatch rejects the attach: nothing changes and the edge is nil.
func (n *Node) AttachOutbound(ctx context.Context, to *Node) (*Edge, error) {
	return connect(ctx, n, to)
}

// AttachInbound connects from -> n with a new edge and returns it. Same
// idempotency and dimension rules as AttachOutbound.
func (n *Node) AttachInbound(ctx context.Context, from *Node) (*Edge, error) {
	return connect(ctx, from, n)
}

// AttachOutboundEdge attaches an existing edge leaving n. An edge without a
// source is given n as its source.
func (n *Node) AttachOutboundEdge(ctx context.Context, e *Edge) error {
	if e.FromNodeID.IsNil() {
		e.FromNodeID = n.id
	}
	if e.FromNodeID != n.id {
		return fmt.Errorf("attach outbound: edge %s starts at %s, not %s", e.id, e.FromNodeID, n.id)
	}
	to, err := nodeByID(ctx, n.h, e.ToNodeID)
	if err != nil {
		return fmt.Errorf("attach outbound: %w", err)
	}
	return attachEdge(ctx, n, to, e)
}

// AttachInboundEdge attaches an existing edge arriving at n. An edge without
// a target is given n as its target.
func (n *Node) AttachInboundEdge(ctx context.Context, e *Edge) error {
	if e.ToNodeID.IsNil() {
		e.ToNodeID = n.id
	}
	if e.ToNodeID != n.id {
		return fmt.Errorf("attach inbound: edge %s ends at %s, not %s", e.id, e.ToNodeID, n.id)
	}
	from, err := nodeByID(ctx, n.h, e.FromNodeID)
	if err != nil {
		return fmt.Errorf("attach inbound: %w", err)
	}
	return attachEdge(ctx, from, n, e)
}

func connect(ctx context.Context, from, to *Node) (*Edge, error) {
	if !from.CanAttach(to) {
		slog.Debug("attach rejected: dimension mismatch",
			"from", from.id, "from_dimension", from.Dimension,
			"to", to.id, "to_dimension", to.Dimension)
		return nil, nil
	}
	existing, err := edgesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	e, err := NewEdge(ctx, from.h, from, to)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	if err := link(ctx, from, to, e); err != nil {
		return nil, err
	}
	return e, nil
}

func attachEdge(ctx context.Context, from, to *Node, e *Edge) error {
	if !from.CanAttach(to) {
		slog.Debug("attach rejected: dimension mismatch",
			"edge", e.id, "from_dimension", from.Dimension, "to_dimension", to.Dimension)
		return nil
	}
	if err := e.Save(ctx); err != nil {
		return err
	}
	return link(ctx, from, to, e)
}

// link records both sides of a directed relation.
func link(ctx context.Context, from, to *Node, e *Edge) error {
	if err := from.OutboundEdgeIDs.AddObj(ctx, e); err != nil {
		return err
	}
	return to.InboundEdgeIDs.AddObj(ctx, e)
}

// DetachOutbound removes every edge n -> to from both endpoints and destroys
// it. Detaching an absent relation is a no-op.
func (n *Node) DetachOutbound(ctx context.Context, to *Node) error {
	return disconnect(ctx, n, to)
}

// DetachInbound removes every edge from -> n. Same rules as DetachOutbound.
func (n *Node) DetachInbound(ctx context.Context, from *Node) error {
	return disconnect(ctx, from, n)
}

func disconnect(ctx context.Context, from, to *Node) error {
	edges, err := edgesBetween(ctx, from, to)
	if err != nil {
		return err
	}
	for _, e := range edges {
		if err := e.Destroy(ctx); err != nil {
			return fmt.Errorf("detach %s: %w", e.id, err)
		}
	}
	return nil
}

// edgesBetween returns the edges from -> to listed on from's outbound side.
func edgesBetween(ctx context.Context, from, to *Node) ([]*Edge, error) {
	edges, err := edgesOf(ctx, from.OutboundEdgeIDs)
	if err != nil {
		return nil, err
	}
	var out []*Edge
	for _, e := range edges {
		if e.ToNodeID == to.id {
			out = append(out, e)
		}
	}
	return out, nil
}

func edgesOf(ctx context.Context, l *IDList) ([]*Edge, error) {
	objs, err := l.ObjList(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Edge, 0, len(objs))
	for _, obj := range objs {
		e, ok := obj.(*Edge)
		if !ok {
			return nil, newCorruptState(obj.ID(), fmt.Sprintf("edge list holds a %s", obj.Type()), nil)
		}
		out = append(out, e)
	}
	return out, nil
}

func nodesOf(ctx context.Context, l *IDList) ([]*Node, error) {
	objs, err := l.ObjList(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(objs))
	for _, obj := range objs {
		n, ok := obj.(*Node)
		if !ok {
			return nil, newCorruptState(obj.ID(), fmt.Sprintf("node list holds a %s", obj.Type()), nil)
		}
		out = append(out, n)
	}
	return out, nil
}

// nodeByID resolves an edge endpoint.
func nodeByID(ctx context.Context, h Hook, id jid.ID) (*Node, error) {
	obj, err := h.GetObj(ctx, id)
	if err != nil {
		return nil, err
	}
	n, ok := obj.(*Node)
	if !ok {
		return nil, newTypeMismatch(id, TypeNode, obj.Type())
	}
	return n, nil
}

// OutboundEdges resolves the edges leaving n, in attach order.
func (n *Node) OutboundEdges(ctx context.Context) ([]*Edge, error) {
	return edgesOf(ctx, n.OutboundEdgeIDs)
}

// InboundEdges resolves the edges arriving at n, in attach order.
func (n *Node) InboundEdges(ctx context.Context) ([]*Edge, error) {
	return edgesOf(ctx, n.InboundEdgeIDs)
}

// OutboundNodes resolves the target of each outbound edge, in attach order.
func (n *Node) OutboundNodes(ctx context.Context) ([]*Node, error) {
	edges, err := n.OutboundEdges(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(edges))
	for _, e := range edges {
		to, err := e.ToNode(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, to)
	}
	return out, nil
}

// InboundNodes resolves the source of each inbound edge, in attach order.
func (n *Node) InboundNodes(ctx context.Context) ([]*Node, error) {
	edges, err := n.InboundEdges(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(edges))
	for _, e := range edges {
		from, err := e.FromNode(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, from)
	}
	return out, nil
}

// IsAttachedOut reports whether an edge n -> other exists.
func (n *Node) IsAttachedOut(ctx context.Context, other *Node) (bool, error) {
	edges, err := n.OutboundEdges(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range edges {
		if e.ToNodeID == other.id {
			return true, nil
		}
	}
	return false, nil
}

// IsAttachedIn reports whether an edge other -> n exists.
func (n *Node) IsAttachedIn(ctx context.Context, other *Node) (bool, error) {
	edges, err := n.InboundEdges(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range edges {
		if e.FromNodeID == other.id {
			return true, nil
		}
	}
	return false, nil
}

// MakeMemberOf adds n to owner's members and owner to n's owners. If owner
// is not exactly one dimension above n the request is dropped; check
// IsMemberOf afterwards.
func (n *Node) MakeMemberOf(ctx context.Context, owner *Node) error {
	if !owner.CanContain(n) {
		slog.Debug("membership rejected: dimension mismatch",
			"member", n.id, "member_dimension", n.Dimension,
			"owner", owner.id, "owner_dimension", owner.Dimension)
		return nil
	}
	if err := n.OwnerNodeIDs.AddObj(ctx, owner); err != nil {
		return err
	}
	return owner.MemberNodeIDs.AddObj(ctx, n)
}

// LeaveMembershipOf removes both sides of the membership. Leaving a group n
// is not in is a no-op.
func (n *Node) LeaveMembershipOf(ctx context.Context, owner *Node) error {
	if err := n.OwnerNodeIDs.RemoveObj(ctx, owner); err != nil {
		return err
	}
	return owner.MemberNodeIDs.RemoveObj(ctx, n)
}

// IsMemberOf reports whether n and owner both record the membership.
func (n *Node) IsMemberOf(owner *Node) bool {
	return n.OwnerNodeIDs.Contains(owner.id) && owner.MemberNodeIDs.Contains(n.id)
}

// OwnerNodes resolves the nodes n is a member of.
func (n *Node) OwnerNodes(ctx context.Context) ([]*Node, error) {
	return nodesOf(ctx, n.OwnerNodeIDs)
}

// MemberNodes resolves n's members.
func (n *Node) MemberNodes(ctx context.Context) ([]*Node, error) {
	return nodesOf(ctx, n.MemberNodeIDs)
}

// Destroy detaches and destroys every edge that has n as an endpoint,
// dissolves its memberships in both directions, destroys the entry and exit
// actions n owns, and deletes n. Edges and actions n only references, such
// as those a duplicate shares with its source, are dropped from n's lists
// and left alive.
func (n *Node) Destroy(ctx context.Context) error {
	for _, l := range []*IDList{n.OutboundEdgeIDs, n.InboundEdgeIDs} {
		edges, err := edgesOf(ctx, l)
		if err != nil {
			return fmt.Errorf("destroy %s: %w", n.id, err)
		}
		for _, e := range edges {
			if e.FromNodeID != n.id && e.ToNodeID != n.id {
				if err := l.RemoveObj(ctx, e); err != nil {
					return fmt.Errorf("destroy %s: %w", n.id, err)
				}
				continue
			}
			if err := e.Destroy(ctx); err != nil {
				return fmt.Errorf("destroy %s: %w", n.id, err)
			}
		}
	}

	owners, err := n.OwnerNodes(ctx)
	if err != nil {
		return fmt.Errorf("destroy %s: %w", n.id, err)
	}
	for _, o := range owners {
		if err := n.LeaveMembershipOf(ctx, o); err != nil {
			return err
		}
	}
	members, err := n.MemberNodes(ctx)
	if err != nil {
		return fmt.Errorf("destroy %s: %w", n.id, err)
	}
	for _, m := range members {
		if err := m.LeaveMembershipOf(ctx, n); err != nil {
			return err
		}
	}

	for _, l := range []*IDList{n.EntryActionIDs, n.ExitActionIDs} {
		actions, err := l.ObjList(ctx)
		if err != nil {
			return fmt.Errorf("destroy %s: %w", n.id, err)
		}
		for _, a := range actions {
			if a.Base().OwnerID() != n.id {
				if err := l.RemoveObj(ctx, a); err != nil {
					return err
				}
				continue
			}
			if err := l.DestroyObj(ctx, a); err != nil {
				return err
			}
		}
	}

	return n.Element.Destroy(ctx)
}
