package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/operation"
)

// NewCheckCmd creates the dry run command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show what run would change without writing",
		Long: `Check resolves every patch in the definition given by --config and prints
a diff of each pending change. Nothing is written. Exit codes match run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefinition(cmd, o, o.ConfigFile, operation.Options{
				DryRun: true,
				Diff:   true,
			})
		},
	}

	return cmd
}
