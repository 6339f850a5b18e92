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

package transaction

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/charset"
	"github.com/walteh/patchrc/pkg/locate"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind is the machine readable result of one transaction
type Kind string

const (
	KindApplied        Kind = "applied"
	KindAlreadyApplied Kind = "already-applied"
	KindNotFound       Kind = "not-found"
	KindAmbiguous      Kind = "ambiguous"
)

// 📦 Patch is everything a transaction needs to know about one change
type Patch struct {
	Name       string
	Strategies []locate.Spec
	Template   patch.Template
	Encoding   string
}

// 🔧 Options tune a transaction without changing its outcome
type Options struct {
	// DryRun resolves and applies in memory but never writes
	DryRun bool
	// Diff records a preview diff in the result
	Diff bool
	// DiffContext is the number of unchanged lines kept around each change
	DiffContext int
}

// 📋 Result reports what a transaction did
type Result struct {
	ID       string
	Path     string
	Patch    string
	Kind     Kind
	Strategy int
	Decided  string
	Attempts []patch.Attempt
	Matches  int
	Span     locate.Span
	Written  bool
	// Discarded is set on applied results whose content was dropped because
	// another patch on the same file failed
	Discarded bool
	Diff      []text.DiffLine
}

// OK reports whether the file is now patched
func (r *Result) OK() bool {
	return r.Kind == KindApplied || r.Kind == KindAlreadyApplied
}

// Err returns patch.ErrNotFound or *patch.AmbiguousError for failed kinds
func (r *Result) Err() error {
	switch r.Kind {
	case KindNotFound:
		return &patch.NotFoundError{Attempts: r.Attempts}
	case KindAmbiguous:
		return &patch.AmbiguousError{Count: r.Matches, Strategy: r.Decided}
	}
	return nil
}

// 🏃 Run reads path, resolves p against it and writes the patched content back
// only when exactly one applicable span was found. Not-found and ambiguous
// outcomes are reported in the result with a nil error; the returned error is
// reserved for malformed specs, encoding problems and I/O failures.
//
// Run performs no locking. Callers must not run two transactions against the
// same path at the same time.
func Run(ctx context.Context, path string, p Patch, opts Options) (*Result, error) {
	doc, err := Open(ctx, path, p.Encoding)
	if err != nil {
		return nil, err
	}

	res, err := doc.Apply(ctx, p, opts)
	if err != nil {
		return nil, err
	}

	if res.Kind == KindApplied && !opts.DryRun {
		if res.Written, err = doc.Commit(ctx); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// 📄 Document is one decoded file that patches are applied to in memory.
// Nothing reaches disk until Commit.
type Document struct {
	path     string
	codec    *charset.Codec
	original string
	content  string
}

// 📂 Open reads and decodes path with the named encoding
func Open(ctx context.Context, path string, encoding string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("starting transaction: %w", err)
	}

	codec, err := charset.Lookup(encoding)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	source, err := codec.Decode(raw)
	if err != nil {
		return nil, errors.Errorf("decoding %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("encoding", codec.Name()).Int("bytes", len(raw)).Msg("opened document")

	return &Document{
		path:     path,
		codec:    codec,
		original: source,
		content:  source,
	}, nil
}

// Path returns the file the document was read from
func (d *Document) Path() string {
	return d.path
}

// Content returns the document text with every applied patch
func (d *Document) Content() string {
	return d.content
}

// Changed reports whether applied patches differ from the file on disk
func (d *Document) Changed() bool {
	return d.content != d.original
}

// 🔧 Apply resolves p against the current content and splices it in memory.
// Later patches see the result of earlier ones.
func (d *Document) Apply(ctx context.Context, p Patch, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("starting transaction: %w", err)
	}

	if p.Encoding != "" {
		codec, err := charset.Lookup(p.Encoding)
		if err != nil {
			return nil, errors.Errorf("patch %s: %w", p.Name, err)
		}
		if codec.Name() != d.codec.Name() {
			return nil, errors.Errorf("patch %s: encoding %s conflicts with %s opened as %s", p.Name, codec.Name(), d.path, d.codec.Name())
		}
	}

	res := &Result{
		ID:       uuid.New().String(),
		Path:     d.path,
		Patch:    p.Name,
		Strategy: -1,
	}

	logger := zerolog.Ctx(ctx).With().
		Str("txn", res.ID).
		Str("path", d.path).
		Str("patch", p.Name).
		Logger()

	logger.Debug().Int("strategies", len(p.Strategies)).Msg("resolving patch")

	resolution, err := patch.Resolve(d.content, p.Strategies, p.Template)
	if err != nil {
		return nil, errors.Errorf("patch %s: %w", p.Name, err)
	}

	res.Strategy = resolution.Strategy
	res.Decided = resolution.Decided()
	res.Attempts = resolution.Attempts

	for _, a := range resolution.Attempts {
		logger.Debug().Int("strategy", a.Index).Str("locator", a.Strategy).Int("matches", a.Matches).Str("outcome", a.Outcome.String()).Msg("strategy attempted")
	}

	switch resolution.Outcome.Kind {
	case patch.NotFound:
		res.Kind = KindNotFound
		logger.Debug().Msg("block not found, content untouched")
		return res, nil
	case patch.Ambiguous:
		res.Kind = KindAmbiguous
		res.Matches = resolution.Outcome.Count
		logger.Debug().Int("matches", res.Matches).Msg("ambiguous match, content untouched")
		return res, nil
	case patch.AlreadyApplied:
		res.Kind = KindAlreadyApplied
		logger.Debug().Msg("already applied, content untouched")
		return res, nil
	}

	applied, err := text.Apply(d.content, resolution.Outcome, p.Template)
	if err != nil {
		return nil, errors.Errorf("applying patch %s: %w", p.Name, err)
	}

	// surface unrepresentable content now rather than at commit
	if _, err := d.codec.Encode(applied.ModifiedContent); err != nil {
		return nil, errors.Errorf("encoding %s: %w", d.path, err)
	}

	res.Kind = KindApplied
	res.Matches = 1
	res.Span = applied.Span

	if opts.Diff || opts.DryRun {
		res.Diff = text.Diff(applied.OriginalContent, applied.ModifiedContent, opts.DiffContext)
	}

	d.content = applied.ModifiedContent

	logger.Debug().Int("strategy", res.Strategy).Str("span", res.Span.String()).Msg("patch applied in memory")

	return res, nil
}

// 💾 Commit writes the content atomically when it changed and reports whether
// a write happened. After a successful write the document is clean again.
func (d *Document) Commit(ctx context.Context) (bool, error) {
	if !d.Changed() {
		return false, nil
	}

	out, err := d.codec.Encode(d.content)
	if err != nil {
		return false, errors.Errorf("encoding %s: %w", d.path, err)
	}

	if err := writeFileAtomic(d.path, out); err != nil {
		return false, errors.Errorf("writing %s: %w", d.path, err)
	}
	d.original = d.content

	zerolog.Ctx(ctx).Debug().Str("path", d.path).Int("bytes", len(out)).Msg("document written")

	return true, nil
}
