package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewDupCommand creates the dup command.
func NewDupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dup <id>",
		Short: "Duplicate an entity under a fresh identifier",
		Long: `Duplicate an entity under a fresh identifier and timestamp. Identifier
lists are copied as references; the entities they name are not duplicated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				e, err := s.entity(ctx, args[0])
				if err != nil {
					return err
				}
				dup, err := e.Base().Duplicate(ctx, true)
				if err != nil {
					return graphError("dup failed", err)
				}
				if err := s.commit(ctx); err != nil {
					return err
				}
				return s.out.Success(viewOf(dup))
			})
		},
	}
}

// NewDestroyCommand creates the destroy command.
func NewDestroyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <id>",
		Short: "Destroy an entity",
		Long: `Destroy an entity. Destroying a node also destroys its edges and actions
and dissolves its memberships.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				e, err := s.entity(ctx, args[0])
				if err != nil {
					return err
				}
				v := viewOf(e)
				if err := e.Destroy(ctx); err != nil {
					return graphError("destroy failed", err)
				}
				if err := s.commit(ctx); err != nil {
					return err
				}
				return s.out.Success(v)
			})
		},
	}
}
