// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/transaction"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options control how a definition is run
type Options struct {
	// Target replaces every patch's file when set
	Target string
	// DryRun resolves every patch without writing
	DryRun bool
	// Diff records and prints a preview of each change
	Diff bool
	// DiffContext is the number of unchanged lines shown around a change
	DiffContext int
	// KeepGoing continues a path's remaining patches after a failure
	KeepGoing bool
	// Async runs different paths concurrently
	Async bool
}

// 📋 Job is one patch bound to one concrete path
type Job struct {
	Path  string
	Patch transaction.Patch
}

// 🏃 Runner executes patch definitions
type Runner struct {
	console *log.Logger
	opts    Options
}

// 🏗️ NewRunner creates a new runner. console may be nil.
func NewRunner(console *log.Logger, opts Options) *Runner {
	return &Runner{
		console: console,
		opts:    opts,
	}
}

// 🗺️ Plan expands every patch of cfg into jobs, in definition order.
// Relative file patterns are resolved against baseDir.
func (r *Runner) Plan(ctx context.Context, cfg *config.Config, baseDir string) ([]Job, error) {
	logger := zerolog.Ctx(ctx)

	var jobs []Job
	for _, p := range cfg.Patches {
		tp, err := p.Transaction()
		if err != nil {
			return nil, err
		}

		if r.opts.Target != "" {
			jobs = append(jobs, Job{Path: r.opts.Target, Patch: tp})
			continue
		}

		if p.File == "" {
			return nil, errors.Errorf("patch %q: file is required", p.Name)
		}

		paths, err := expand(baseDir, p.File)
		if err != nil {
			return nil, errors.Errorf("patch %q: %w", p.Name, err)
		}

		logger.Debug().Str("patch", p.Name).Str("pattern", p.File).Int("files", len(paths)).Msg("expanded file pattern")

		for _, path := range paths {
			jobs = append(jobs, Job{Path: path, Patch: tp})
		}
	}

	return jobs, nil
}

func expand(baseDir, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}

	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("expanding %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("no files match %s: %w", pattern, os.ErrNotExist)
	}
	sort.Strings(matches)
	return matches, nil
}

// group splits jobs by path, keeping first-seen path order and job order inside a path
func group(jobs []Job) [][]Job {
	index := make(map[string]int)
	var groups [][]Job
	for _, j := range jobs {
		i, ok := index[j.Path]
		if !ok {
			i = len(groups)
			index[j.Path] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], j)
	}
	return groups
}

// 🏃 Run plans cfg and executes every job. Results come back in plan order.
// The returned error is set only for failures other than not-found and
// ambiguous outcomes, which are reported in the results.
func (r *Runner) Run(ctx context.Context, cfg *config.Config, baseDir string) ([]*transaction.Result, error) {
	jobs, err := r.Plan(ctx, cfg, baseDir)
	if err != nil {
		return nil, err
	}

	if r.opts.Async || cfg.Async {
		return r.runAsync(ctx, jobs)
	}
	return r.runSync(ctx, jobs)
}

// 🔄 runSync runs every group one after another
func (r *Runner) runSync(ctx context.Context, jobs []Job) ([]*transaction.Result, error) {
	var results []*transaction.Result
	for _, g := range group(jobs) {
		res, err := r.runGroup(ctx, g)
		results = append(results, res...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// ⚡ runAsync runs groups concurrently. Jobs on the same path stay sequential.
func (r *Runner) runAsync(ctx context.Context, jobs []Job) ([]*transaction.Result, error) {
	groups := group(jobs)
	perGroup := make([][]*transaction.Result, len(groups))

	eg, egctx := errgroup.WithContext(ctx)
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			res, err := r.runGroup(egctx, g)
			perGroup[i] = res
			return err
		})
	}
	err := eg.Wait()

	var results []*transaction.Result
	for _, res := range perGroup {
		results = append(results, res...)
	}
	if err != nil {
		return results, errors.Errorf("executing operation: %w", err)
	}
	return results, nil
}

// runGroup applies every job of one path to a single in-memory document and
// writes it once. A failed patch discards the whole path unless KeepGoing.
func (r *Runner) runGroup(ctx context.Context, jobs []Job) ([]*transaction.Result, error) {
	logger := zerolog.Ctx(ctx)
	path := jobs[0].Path

	doc, err := transaction.Open(ctx, path, jobs[0].Patch.Encoding)
	if err != nil {
		return nil, err
	}

	opts := transaction.Options{
		DryRun:      r.opts.DryRun,
		Diff:        r.opts.Diff,
		DiffContext: r.opts.DiffContext,
	}

	results := make([]*transaction.Result, 0, len(jobs))
	failed := false
	for _, j := range jobs {
		res, err := doc.Apply(ctx, j.Patch, opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)

		if !res.OK() {
			failed = true
			if !r.opts.KeepGoing {
				logger.Debug().Str("path", path).Str("patch", j.Patch.Name).Msg("stopping path after failed patch")
				break
			}
		}
	}

	switch {
	case r.opts.DryRun:
		// check runs never write
	case failed && !r.opts.KeepGoing:
		if doc.Changed() {
			logger.Debug().Str("path", path).Msg("discarding applied patches")
		}
		for _, res := range results {
			if res.Kind == transaction.KindApplied {
				res.Discarded = true
			}
		}
	default:
		written, err := doc.Commit(ctx)
		if err != nil {
			return results, err
		}
		for _, res := range results {
			if res.Kind == transaction.KindApplied {
				res.Written = written
			}
		}
	}

	for _, res := range results {
		r.report(ctx, res)
	}
	return results, nil
}

func (r *Runner) report(ctx context.Context, res *transaction.Result) {
	if r.console == nil {
		return
	}
	r.console.LogPatchOperation(ctx, log.PatchOperation{
		Path:      res.Path,
		Patch:     res.Patch,
		Kind:      res.Kind,
		Strategy:  res.Decided,
		Matches:   res.Matches,
		DryRun:    res.Kind == transaction.KindApplied && !res.Written && !res.Discarded,
		Discarded: res.Discarded,
	})
	if r.opts.Diff && len(res.Diff) > 0 {
		r.console.LogDiff(res.Diff)
	}
}
