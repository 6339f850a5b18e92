/*
Package operation runs patch definitions against the files they name.

	+-------------+
	|   Config    |
	|  (Patches)  |
	+------+------+
	       |
	+------+------+
	|    Plan     |
	|   (Globs)   |
	+------+------+
	       |
	+------+------+
	|  Document   |
	| (per path)  |
	+-------------+

🎯 Purpose:
- Expands file globs with doublestar
- Groups jobs by path so one file is read once and written at most once
- Runs different paths concurrently when async is set
- Maps results to process exit codes

🔄 Flow:
 1. Plan converts each config.Patch and expands its file pattern
 2. Jobs sharing a path form one group, in definition order
 3. Each group applies its patches in memory, in order, and stops at the first
    failed outcome unless KeepGoing is set
 4. A group with no failures is written once; a failed group is discarded
    unless KeepGoing is set, and a dry run never writes
 5. Summarize counts the results

🔍 Example:

	runner := operation.NewRunner(console, operation.Options{Diff: true})
	results, err := runner.Run(ctx, cfg, cfg.Dir())
	if err != nil {
		return err
	}
	os.Exit(operation.Summarize(results).ExitCode())
*/
package operation
