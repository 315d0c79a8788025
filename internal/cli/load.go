package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jsgraph/internal/fixture"
)

// loadResult maps fixture keys to the identifiers they were created under.
type loadResult map[string]string

func (r loadResult) String() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s  %s", r[k], k)
	}
	return strings.Join(lines, "\n")
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <fixture.yaml>",
		Short: "Build a graph from a YAML fixture",
		Long: `Build nodes, edges, actions and memberships from a YAML fixture and
commit them in one batch. Prints the identifier created for each node key.

Example:
  jsctl load testdata/town.yaml --db town.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := fixture.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load fixture", err)
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				nodes, err := fixture.Build(ctx, s.hook, doc)
				if err != nil {
					return graphError("failed to build fixture", err)
				}
				if err := s.commit(ctx); err != nil {
					return err
				}
				res := make(loadResult, len(nodes))
				for key, n := range nodes {
					res[key] = n.ID().String()
				}
				return s.out.Success(res)
			})
		},
	}
}
