package cli

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/wire"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Depth    int
	Detailed bool
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print an entity's serialized record",
		Long: `Print an entity's serialized record.

Depth 0 prints identifier lists as identifiers; each extra level expands
them into the records they name. Without --detailed, private context keys
are stripped.

Example:
  jsctl get <id> --depth 1 --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return getEntity(ctx, s, opts, args[0])
			})
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "expansion depth for identifier lists")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include private context keys")

	return cmd
}

func getEntity(ctx context.Context, s *session, opts *GetOptions, arg string) error {
	if opts.Depth < 0 {
		return NewExitError(ExitCommandError, "--depth must be >= 0")
	}
	e, err := s.entity(ctx, arg)
	if err != nil {
		return err
	}
	rec, err := e.Base().Serialize(ctx, opts.Depth, opts.Detailed)
	if err != nil {
		return graphError("serialize failed", err)
	}

	if s.out.Format == "json" {
		return s.out.Success(wire.ToGo(rec))
	}
	data, err := wire.Marshal(rec)
	if err != nil {
		return graphError("serialize failed", err)
	}
	return s.out.Success(string(data))
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Type string
	Name string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the user's entities",
		Long: `List the user's entities, oldest first.

Example:
  jsctl list --type node
  jsctl list --name Lisbon`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return listEntities(ctx, s, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "only list one entity type (element|node|edge|action)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "only list entities with this name")

	return cmd
}

func listEntities(ctx context.Context, s *session, opts *ListOptions) error {
	var want graph.EntityType
	if opts.Type != "" {
		t, err := graph.ParseEntityType(opts.Type)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --type", err)
		}
		want = t
	}

	var (
		es  []graph.Entity
		err error
	)
	switch {
	case opts.Name != "":
		es, err = s.hook.FindByName(ctx, opts.Name)
		if want != "" {
			es = slices.DeleteFunc(es, func(e graph.Entity) bool { return e.Type() != want })
		}
	case want != "":
		es, err = s.hook.ListByType(ctx, want)
	default:
		es, err = s.hook.ListByUser(ctx)
	}
	if err != nil {
		return graphError("list failed", err)
	}

	s.out.VerboseLog("%d entities for user %s", len(es), s.cfg.User)
	return s.out.Success(viewsOf(es))
}
