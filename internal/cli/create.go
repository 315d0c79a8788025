package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/wire"
)

// CreateOptions holds flags shared by the create subcommands.
type CreateOptions struct {
	*RootOptions
	Name      string
	Kind      string
	Context   string
	Dimension int
	Value     string
	List      string
}

// NewCreateCommand creates the create command and its node, edge and action
// subcommands.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a node, edge or action",
	}
	cmd.AddCommand(newCreateNodeCommand(rootOpts))
	cmd.AddCommand(newCreateEdgeCommand(rootOpts))
	cmd.AddCommand(newCreateActionCommand(rootOpts))
	return cmd
}

func addElementFlags(cmd *cobra.Command, opts *CreateOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", graph.DefaultName, "display name")
	cmd.Flags().StringVar(&opts.Kind, "kind", graph.DefaultKind, "free-form subtype tag")
	cmd.Flags().StringVar(&opts.Context, "context", "", "context record as JSON")
}

// elementOptions converts the shared flags into graph options.
func (o *CreateOptions) elementOptions() ([]graph.Option, error) {
	opts := []graph.Option{graph.WithName(o.Name), graph.WithKind(o.Kind)}
	if o.Context != "" {
		rec, err := wire.UnmarshalRecord([]byte(o.Context))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --context", err)
		}
		opts = append(opts, graph.WithContext(rec))
	}
	return opts, nil
}

func newCreateNodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create a node",
		Long: `Create a node and print its summary.

Example:
  jsctl create node --name Lisbon --kind city --dimension 1 --context '{"population":545000}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return createNode(ctx, s, opts)
			})
		},
	}
	addElementFlags(cmd, opts)
	cmd.Flags().IntVar(&opts.Dimension, "dimension", 0, "node dimension (>= 0)")
	return cmd
}

func createNode(ctx context.Context, s *session, opts *CreateOptions) error {
	if opts.Dimension < 0 {
		return NewExitError(ExitCommandError, "--dimension must be >= 0")
	}
	gopts, err := opts.elementOptions()
	if err != nil {
		return err
	}
	n, err := graph.NewNode(ctx, s.hook, append(gopts, graph.WithDimension(opts.Dimension))...)
	if err != nil {
		return graphError("create node failed", err)
	}
	if err := s.commit(ctx); err != nil {
		return err
	}
	return s.out.Success(viewOf(n))
}

func newCreateEdgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edge <from-id> <to-id>",
		Short: "Create a named edge between two nodes",
		Long: `Create an edge from one node to another and attach it to both.

Unlike attach, create edge always adds a new edge, even when the nodes are
already connected. Nodes of different dimensions cannot be connected.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return createEdge(ctx, s, opts, args[0], args[1])
			})
		},
	}
	addElementFlags(cmd, opts)
	return cmd
}

func createEdge(ctx context.Context, s *session, opts *CreateOptions, fromArg, toArg string) error {
	from, err := s.node(ctx, fromArg)
	if err != nil {
		return err
	}
	to, err := s.node(ctx, toArg)
	if err != nil {
		return err
	}
	if !from.CanAttach(to) {
		return NewExitError(ExitFailure, fmt.Sprintf(
			"attach rejected: dimension mismatch (%d != %d)", from.Dimension, to.Dimension))
	}

	gopts, err := opts.elementOptions()
	if err != nil {
		return err
	}
	e, err := graph.NewEdge(ctx, s.hook, from, to, append(gopts, graph.WithoutSave())...)
	if err != nil {
		return graphError("create edge failed", err)
	}
	if err := from.AttachOutboundEdge(ctx, e); err != nil {
		return graphError("create edge failed", err)
	}
	if err := s.commit(ctx); err != nil {
		return err
	}
	return s.out.Success(viewOf(e))
}

func newCreateActionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "action <node-id>",
		Short: "Create an entry or exit action on a node",
		Long: `Create an action owned by a node and add it to the node's entry or exit
action list.

Example:
  jsctl create action <node-id> --list entry --name greet --value '"hello"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return createAction(ctx, s, opts, args[0])
			})
		},
	}
	addElementFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.Value, "value", "null", "action value as JSON")
	cmd.Flags().StringVar(&opts.List, "list", "entry", "action list (entry|exit)")
	return cmd
}

func createAction(ctx context.Context, s *session, opts *CreateOptions, nodeArg string) error {
	value, err := wire.Unmarshal([]byte(opts.Value))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --value", err)
	}
	n, err := s.node(ctx, nodeArg)
	if err != nil {
		return err
	}

	var list *graph.IDList
	switch opts.List {
	case "entry":
		list = n.EntryActionIDs
	case "exit":
		list = n.ExitActionIDs
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --list %q: must be entry or exit", opts.List))
	}

	gopts, err := opts.elementOptions()
	if err != nil {
		return err
	}
	gopts = append(gopts, graph.WithValue(value), graph.WithOwner(n.ID()))
	a, err := graph.NewAction(ctx, s.hook, gopts...)
	if err != nil {
		return graphError("create action failed", err)
	}
	if err := list.AddObj(ctx, a); err != nil {
		return graphError("create action failed", err)
	}
	if err := s.commit(ctx); err != nil {
		return err
	}
	return s.out.Success(viewOf(a))
}
