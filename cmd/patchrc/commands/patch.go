package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/operation"
)

// NewPatchCmd creates the single file patch command
func NewPatchCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <file> <definition>",
		Short: "Apply a patch definition to one file",
		Long: `Patch applies every patch in the definition to <file>, ignoring the
file each patch names. Exit codes:
0  applied or already applied
1  invalid definition, I/O or encoding error
2  block not found
3  block ambiguous`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefinition(cmd, o, args[1], operation.Options{
				Target: args[0],
			})
		},
	}

	return cmd
}
