package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/jsgraph/internal/graph"
)

// pairFunc applies a relation change between two nodes.
type pairFunc func(ctx context.Context, s *session, a, b *graph.Node) (linkResult, error)

// newPairCommand builds a command taking two node identifiers.
func newPairCommand(rootOpts *RootOptions, use, short, long string, fn pairFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				a, err := s.node(ctx, args[0])
				if err != nil {
					return err
				}
				b, err := s.node(ctx, args[1])
				if err != nil {
					return err
				}
				res, err := fn(ctx, s, a, b)
				if err != nil {
					return err
				}
				if err := s.commit(ctx); err != nil {
					return err
				}
				return s.out.Success(res)
			})
		},
	}
}

// NewAttachCommand creates the attach command.
func NewAttachCommand(rootOpts *RootOptions) *cobra.Command {
	return newPairCommand(rootOpts, "attach <from-id> <to-id>",
		"Connect two nodes with an edge",
		`Connect two nodes with a directed edge. Attaching nodes that are already
connected reuses the existing edge. Nodes of different dimensions cannot be
connected.`,
		attach)
}

func attach(ctx context.Context, _ *session, from, to *graph.Node) (linkResult, error) {
	e, err := from.AttachOutbound(ctx, to)
	if err != nil {
		return linkResult{}, graphError("attach failed", err)
	}
	if e == nil {
		return linkResult{}, NewExitError(ExitFailure, fmt.Sprintf(
			"attach rejected: dimension mismatch (%d != %d)", from.Dimension, to.Dimension))
	}
	return linkResult{Op: "attached", From: from.ID().String(), To: to.ID().String(), EdgeID: e.ID().String()}, nil
}

// NewDetachCommand creates the detach command.
func NewDetachCommand(rootOpts *RootOptions) *cobra.Command {
	return newPairCommand(rootOpts, "detach <from-id> <to-id>",
		"Remove and destroy the edges between two nodes",
		`Remove every edge from one node to another from both endpoints and destroy
it. Detaching nodes that are not connected is a no-op.`,
		detach)
}

func detach(ctx context.Context, _ *session, from, to *graph.Node) (linkResult, error) {
	if err := from.DetachOutbound(ctx, to); err != nil {
		return linkResult{}, graphError("detach failed", err)
	}
	return linkResult{Op: "detached", From: from.ID().String(), To: to.ID().String()}, nil
}

// NewMemberCommand creates the member command.
func NewMemberCommand(rootOpts *RootOptions) *cobra.Command {
	return newPairCommand(rootOpts, "member <member-id> <owner-id>",
		"Make a node a member of another",
		`Make a node a member of an owner exactly one dimension above it.`,
		member)
}

func member(ctx context.Context, _ *session, m, owner *graph.Node) (linkResult, error) {
	if err := m.MakeMemberOf(ctx, owner); err != nil {
		return linkResult{}, graphError("member failed", err)
	}
	if !m.IsMemberOf(owner) {
		return linkResult{}, NewExitError(ExitFailure, fmt.Sprintf(
			"membership rejected: owner dimension %d is not %d", owner.Dimension, m.Dimension+1))
	}
	return linkResult{Op: "joined", From: m.ID().String(), To: owner.ID().String()}, nil
}

// NewLeaveCommand creates the leave command.
func NewLeaveCommand(rootOpts *RootOptions) *cobra.Command {
	return newPairCommand(rootOpts, "leave <member-id> <owner-id>",
		"End a membership",
		`End a membership on both sides. Leaving a group the node is not in is a
no-op.`,
		leave)
}

func leave(ctx context.Context, _ *session, m, owner *graph.Node) (linkResult, error) {
	if err := m.LeaveMembershipOf(ctx, owner); err != nil {
		return linkResult{}, graphError("leave failed", err)
	}
	return linkResult{Op: "left", From: m.ID().String(), To: owner.ID().String()}, nil
}
