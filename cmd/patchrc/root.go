package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
)

// newRootCmd builds the command tree around shared options
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Apply idempotent source block patches",
		Long: `patchrc finds an existing block of text in a file and replaces it,
trying an ordered list of locators until one decides. A block that is already
patched is left alone, and a block that cannot be found or matches more than
once is reported without touching the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), o.Debug, cmd.ErrOrStderr())
			cmd.SetContext(ctx)

			consoleLevel := zerolog.WarnLevel
			if o.Debug {
				consoleLevel = zerolog.DebugLevel
			}
			o.Console = log.New(cmd.OutOrStdout(), consoleLevel)
			o.UserLogger = log.NewUserLogger(ctx)
			return nil
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewPatchCmd(o),
		commands.NewRunCmd(o),
		commands.NewCheckCmd(o),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", ".patchrc", "patch definition file path")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringArrayVar(&o.Vars, "var", nil, "definition variable as key=value, repeatable")
	cmd.PersistentFlags().BoolVar(&o.DryRun, "dry-run", false, "resolve patches and print diffs without writing")
	cmd.PersistentFlags().BoolVar(&o.KeepGoing, "keep-going", false, "continue with a file's remaining patches after a failure")
	cmd.PersistentFlags().BoolVar(&o.Async, "async", false, "patch different files concurrently")
	cmd.PersistentFlags().IntVar(&o.DiffContext, "diff-context", 3, "unchanged lines shown around each change in diffs")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, debug bool, w io.Writer) context.Context {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}
