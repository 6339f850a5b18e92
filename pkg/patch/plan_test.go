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

package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/patchrc/pkg/locate"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		spans []locate.Span
		tmpl  Template
		want  Outcome
	}{
		{
			name:  "no_spans_not_found",
			text:  "abc-XYZ-xyz",
			spans: nil,
			tmpl:  Replace("-NEW-"),
			want:  Outcome{Kind: NotFound},
		},
		{
			name:  "no_spans_replacement_present",
			text:  "abc-NEW-xyz",
			spans: nil,
			tmpl:  Replace("-NEW-"),
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "no_spans_deleted_block_is_applied",
			text:  "abc",
			spans: nil,
			tmpl:  Replace(""),
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "deletion_pending",
			text:  "abc remove me xyz",
			spans: []locate.Span{{Start: 4, End: 14}},
			tmpl:  Replace(""),
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 4, End: 14}},
		},
		{
			name:  "replacement_keeping_block_pending",
			text:  "const a = 1;\nrest\n",
			spans: []locate.Span{{Start: 0, End: 13}},
			tmpl:  Replace("const a = 1;\nconst b = 2;\n"),
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 0, End: 13}},
		},
		{
			name:  "replacement_keeping_block_done",
			text:  "const a = 1;\nconst b = 2;\nrest\n",
			spans: []locate.Span{{Start: 0, End: 13}},
			tmpl:  Replace("const a = 1;\nconst b = 2;\n"),
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "replacement_elsewhere_does_not_cover_span",
			text:  "const a = 1;\nrest\nconst a = 1;\nconst b = 2;\n",
			spans: []locate.Span{{Start: 0, End: 13}},
			tmpl:  Replace("const a = 1;\nconst b = 2;\n"),
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 0, End: 13}},
		},
		{
			name:  "replacement_repeating_block_done",
			text:  "x x;",
			spans: []locate.Span{{Start: 0, End: 1}, {Start: 2, End: 3}},
			tmpl:  Replace("x x"),
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "whitespace_compare_reindented_keeping_block_done",
			text:  "if x {\n\treturn y\n\t\tlog(y)\n}\n",
			spans: []locate.Span{{Start: 0, End: 18}},
			tmpl:  Template{Content: "if x {\n    return y\n    log(y)\n}", Compare: CompareWhitespace},
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "one_span_differs",
			text:  "abc-OLD-xyz",
			spans: []locate.Span{{Start: 3, End: 8}},
			tmpl:  Replace("-NEW-"),
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 3, End: 8}},
		},
		{
			name:  "one_span_identical",
			text:  "abc-NEW-xyz",
			spans: []locate.Span{{Start: 3, End: 8}},
			tmpl:  Replace("-NEW-"),
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "many_spans_ambiguous",
			text:  "abc-OLD-xyz-OLD-qrs",
			spans: []locate.Span{{Start: 3, End: 8}, {Start: 11, End: 16}},
			tmpl:  Replace("-NEW-"),
			want:  Outcome{Kind: Ambiguous, Count: 2},
		},
		{
			name:  "whitespace_compare_treats_reindent_as_applied",
			text:  "if x {\n\t\treturn y\n}",
			spans: []locate.Span{{Start: 0, End: 19}},
			tmpl:  Template{Content: "if x {\n    return y\n}", Compare: CompareWhitespace},
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "exact_compare_treats_reindent_as_different",
			text:  "if x {\n\t\treturn y\n}",
			spans: []locate.Span{{Start: 0, End: 19}},
			tmpl:  Template{Content: "if x {\n    return y\n}", Compare: CompareExact},
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 0, End: 19}},
		},
		{
			name:  "whitespace_compare_replacement_present_without_spans",
			text:  "a\n  b   c\n",
			spans: nil,
			tmpl:  Template{Content: "b c", Compare: CompareWhitespace},
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "insert_after_pending",
			text:  "marker;rest",
			spans: []locate.Span{{Start: 0, End: 7}},
			tmpl:  Template{Content: "added;", Mode: ModeInsertAfter},
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 7, End: 7}},
		},
		{
			name:  "insert_after_done",
			text:  "marker;added;rest",
			spans: []locate.Span{{Start: 0, End: 7}},
			tmpl:  Template{Content: "added;", Mode: ModeInsertAfter},
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "insert_before_pending",
			text:  "head;marker",
			spans: []locate.Span{{Start: 5, End: 11}},
			tmpl:  Template{Content: "added;", Mode: ModeInsertBefore},
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 5, End: 5}},
		},
		{
			name:  "insert_before_done",
			text:  "head;added;marker",
			spans: []locate.Span{{Start: 11, End: 17}},
			tmpl:  Template{Content: "added;", Mode: ModeInsertBefore},
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "whitespace_insert_after_needs_boundary",
			text:  "marker\nfoobar\n",
			spans: []locate.Span{{Start: 0, End: 7}},
			tmpl:  Template{Content: "foo\n", Mode: ModeInsertAfter, Compare: CompareWhitespace},
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 7, End: 7}},
		},
		{
			name:  "whitespace_insert_after_done_with_boundary",
			text:  "marker\n  foo\nbar\n",
			spans: []locate.Span{{Start: 0, End: 7}},
			tmpl:  Template{Content: "foo\n", Mode: ModeInsertAfter, Compare: CompareWhitespace},
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "whitespace_insert_after_done_at_end",
			text:  "marker\nfoo",
			spans: []locate.Span{{Start: 0, End: 7}},
			tmpl:  Template{Content: "foo\n", Mode: ModeInsertAfter, Compare: CompareWhitespace},
			want:  Outcome{Kind: AlreadyApplied},
		},
		{
			name:  "whitespace_insert_before_needs_boundary",
			text:  "barfoo\nmarker",
			spans: []locate.Span{{Start: 7, End: 13}},
			tmpl:  Template{Content: "\nfoo\n", Mode: ModeInsertBefore, Compare: CompareWhitespace},
			want:  Outcome{Kind: Applicable, Span: locate.Span{Start: 7, End: 7}},
		},
		{
			name:  "whitespace_insert_before_done_with_boundary",
			text:  "bar\n  foo\nmarker",
			spans: []locate.Span{{Start: 10, End: 16}},
			tmpl:  Template{Content: "\nfoo\n", Mode: ModeInsertBefore, Compare: CompareWhitespace},
			want:  Outcome{Kind: AlreadyApplied},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.spans, tt.text, tt.tmpl)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "not-found", Outcome{Kind: NotFound}.String())
	assert.Equal(t, "already-applied", Outcome{Kind: AlreadyApplied}.String())
	assert.Equal(t, "ambiguous(3)", Outcome{Kind: Ambiguous, Count: 3}.String())
	assert.Equal(t, "applicable[1,4)", Outcome{Kind: Applicable, Span: locate.Span{Start: 1, End: 4}}.String())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", normalize("  a\n\tb   c \n"))
	assert.Equal(t, "", normalize(" \n\t "))
}
