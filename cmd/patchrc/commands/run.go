package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/operation"
)

// NewRunCmd creates the batch run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply every patch in a definition file",
		Long: `Run applies the definition given by --config. Each patch's file is a
path or doublestar glob relative to the definition. It will:
1. Load and validate the definition
2. Expand file globs
3. Apply patches in order, one file at a time
4. Exit with 2 if a block was not found or 3 if one was ambiguous`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefinition(cmd, o, o.ConfigFile, operation.Options{})
		},
	}

	return cmd
}
