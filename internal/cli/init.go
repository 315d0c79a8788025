package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the user's root node",
		Long: `Create the user's root node if it does not exist yet and print it.
Running init again prints the existing root. Other commands accept "root"
wherever they take an id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				root, err := s.hook.Root(ctx)
				if err != nil {
					return graphError("init failed", err)
				}
				if err := s.commit(ctx); err != nil {
					return err
				}
				return s.out.Success(viewOf(root))
			})
		},
	}
}
