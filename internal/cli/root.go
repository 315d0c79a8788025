package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is the YAML config path. Empty means defaults plus environment.
	Config string

	// Database overrides sqlite.path and selects the sqlite backend.
	Database string

	// User overrides the configured user.
	User string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// commands is the static command table. Every subcommand is registered here;
// nothing is discovered at runtime.
var commands = []func(*RootOptions) *cobra.Command{
	NewInitCommand,
	NewCreateCommand,
	NewGetCommand,
	NewListCommand,
	NewAttachCommand,
	NewDetachCommand,
	NewMemberCommand,
	NewLeaveCommand,
	NewDupCommand,
	NewDestroyCommand,
	NewLoadCommand,
}

// NewRootCommand creates the root command for jsctl.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "jsctl",
		Short: "jsctl - inspect and edit persisted object graphs",
		Long: `jsctl creates, links and inspects the nodes, edges and actions of a
persisted object graph. Every mutating command commits once on success.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (selects the sqlite backend)")
	cmd.PersistentFlags().StringVar(&opts.User, "user", "", "user whose graph to operate on")

	for _, newCmd := range commands {
		cmd.AddCommand(newCmd(opts))
	}

	return cmd, opts
}

// Execute runs jsctl with args and returns the process exit code. Errors are
// reported on stdout as a JSON response under --format json, otherwise on
// stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == "json" {
		f.Writer = stdout
	}
	_ = f.Error(ErrorCode(err), err.Error(), nil)
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
