package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// runDefinition loads a definition, runs it and reports the summary.
// A not-found or ambiguous outcome comes back as *ExitError.
func runDefinition(cmd *cobra.Command, o *opts.RootOpts, definition string, runOpts operation.Options) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	vars, err := o.ParseVars()
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, definition, vars)
	if err != nil {
		return errors.Errorf("loading definition: %w", err)
	}

	runOpts.KeepGoing = o.KeepGoing
	runOpts.Async = o.Async
	runOpts.DiffContext = o.DiffContext
	if o.DryRun {
		runOpts.DryRun = true
		runOpts.Diff = true
	}

	o.Console.StartDefinition(ctx, log.DefinitionOperation{
		Path:    definition,
		Patches: len(cfg.Patches),
		DryRun:  runOpts.DryRun,
	})
	defer o.Console.EndDefinition(ctx)

	runner := operation.NewRunner(o.Console, runOpts)
	results, err := runner.Run(ctx, cfg, cfg.Dir())
	if err != nil {
		return errors.Errorf("running %s: %w", definition, err)
	}

	summary := operation.Summarize(results)
	logger.Debug().Int("applied", summary.Applied).Int("already_applied", summary.AlreadyApplied).Int("not_found", summary.NotFound).Int("ambiguous", summary.Ambiguous).Int("discarded", summary.Discarded).Msg("definition finished")

	o.Console.LogNewline()
	code := summary.ExitCode()
	switch code {
	case operation.ExitOK:
		o.Console.Success(summary.String())
		return nil
	case operation.ExitAmbiguous:
		o.Console.Warning(summary.String())
	default:
		o.Console.Error(summary.String())
	}

	for _, r := range results {
		if r.Err() != nil || r.Discarded {
			o.UserLogger.LogResult(r)
		}
	}

	return &ExitError{Code: code, Summary: summary}
}
