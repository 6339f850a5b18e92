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

package text

import (
	"fmt"
	"strings"

	"github.com/walteh/patchrc/pkg/locate"
	"github.com/walteh/patchrc/pkg/patch"
)

// ReplacementResult contains the results of applying one outcome
type ReplacementResult struct {
	// WasModified is false when the outcome was already applied
	WasModified bool

	// Span is the region of OriginalContent that was replaced
	Span locate.Span

	// OriginalContent is the text before the patch
	OriginalContent string

	// ModifiedContent is the text after the patch
	ModifiedContent string
}

// PreconditionError reports an Applier call the caller should never have made
type PreconditionError struct {
	Outcome patch.Outcome
	Reason  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated: cannot apply %s: %s", e.Outcome, e.Reason)
}

// 🔧 Apply splices tmpl into text according to outcome. It never mutates its
// input and returns a fresh ModifiedContent only for Applicable outcomes.
func Apply(text string, outcome patch.Outcome, tmpl patch.Template) (*ReplacementResult, error) {
	result := &ReplacementResult{
		OriginalContent: text,
		ModifiedContent: text,
	}

	switch outcome.Kind {
	case patch.AlreadyApplied:
		return result, nil
	case patch.Applicable:
	default:
		return nil, &PreconditionError{Outcome: outcome, Reason: "outcome is not applicable"}
	}

	span := outcome.Span
	if !span.Valid(len(text)) {
		return nil, &PreconditionError{Outcome: outcome, Reason: fmt.Sprintf("span outside text of length %d", len(text))}
	}

	var b strings.Builder
	b.Grow(len(text) - span.Len() + len(tmpl.Content))
	b.WriteString(text[:span.Start])
	b.WriteString(tmpl.Content)
	b.WriteString(text[span.End:])

	result.ModifiedContent = b.String()
	result.WasModified = result.ModifiedContent != text
	result.Span = span
	return result, nil
}
