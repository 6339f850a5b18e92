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
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/patchrc/pkg/locate"
)

// 🏷️ OutcomeKind classifies a located patch
type OutcomeKind int

const (
	NotFound OutcomeKind = iota
	AlreadyApplied
	Applicable
	Ambiguous
)

func (k OutcomeKind) String() string {
	switch k {
	case AlreadyApplied:
		return "already-applied"
	case Applicable:
		return "applicable"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not-found"
	}
}

// 📋 Outcome is the classification of one locator result against one text.
// Span is only set for Applicable, Count only for Ambiguous.
type Outcome struct {
	Kind  OutcomeKind
	Span  locate.Span
	Count int
}

func (o Outcome) String() string {
	switch o.Kind {
	case Applicable:
		return fmt.Sprintf("applicable%s", o.Span)
	case Ambiguous:
		return fmt.Sprintf("ambiguous(%d)", o.Count)
	default:
		return o.Kind.String()
	}
}

// Mode decides where template content goes relative to the located span
type Mode string

const (
	ModeReplace      Mode = "replace"
	ModeInsertAfter  Mode = "insert_after"
	ModeInsertBefore Mode = "insert_before"
)

// Compare decides when two blocks are considered the same
type Compare string

const (
	CompareExact      Compare = "exact"
	CompareWhitespace Compare = "whitespace"
)

// 📝 Template is the literal content substituted into a located span
type Template struct {
	Content string
	Mode    Mode
	Compare Compare
}

// Replace builds a byte-exact replace template
func Replace(content string) Template {
	return Template{Content: content, Mode: ModeReplace, Compare: CompareExact}
}

func (t Template) mode() Mode {
	if t.Mode == "" {
		return ModeReplace
	}
	return t.Mode
}

func (t Template) equal(a, b string) bool {
	if t.Compare == CompareWhitespace {
		return normalize(a) == normalize(b)
	}
	return a == b
}

func (t Template) contains(text, sub string) bool {
	if t.Compare == CompareWhitespace {
		return strings.Contains(normalize(text), normalize(sub))
	}
	return strings.Contains(text, sub)
}

// hasPrefix reports whether text starts with prefix. Under whitespace compare
// a prefix ending in whitespace must be followed by whitespace or the end of
// text.
func (t Template) hasPrefix(text, prefix string) bool {
	if t.Compare != CompareWhitespace {
		return strings.HasPrefix(text, prefix)
	}
	n, p := normalize(text), normalize(prefix)
	if !strings.HasPrefix(n, p) {
		return false
	}
	if p == "" || len(n) == len(p) || !endsWithSpace(prefix) {
		return true
	}
	return n[len(p)] == ' '
}

// hasSuffix mirrors hasPrefix at the start of suffix
func (t Template) hasSuffix(text, suffix string) bool {
	if t.Compare != CompareWhitespace {
		return strings.HasSuffix(text, suffix)
	}
	n, p := normalize(text), normalize(suffix)
	if !strings.HasSuffix(n, p) {
		return false
	}
	if p == "" || len(n) == len(p) || !startsWithSpace(suffix) {
		return true
	}
	return n[len(n)-len(p)-1] == ' '
}

// occurrences returns every span of text holding the template content.
// Exact occurrences may overlap. Under whitespace compare a span also takes
// the whitespace around it.
func (t Template) occurrences(text string) []locate.Span {
	if t.Content == "" {
		return nil
	}

	var spans []locate.Span
	if t.Compare != CompareWhitespace {
		for i := 0; i <= len(text)-len(t.Content); {
			j := strings.Index(text[i:], t.Content)
			if j < 0 {
				break
			}
			spans = append(spans, locate.Span{Start: i + j, End: i + j + len(t.Content)})
			i += j + 1
		}
		return spans
	}

	fields := strings.FieldsFunc(t.Content, unicode.IsSpace)
	if len(fields) == 0 {
		return nil
	}
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	re := regexp.MustCompile(`\s*` + strings.Join(fields, `\s+`) + `\s*`)
	for _, m := range re.FindAllStringIndex(text, -1) {
		spans = append(spans, locate.Span{Start: m[0], End: m[1]})
	}
	return spans
}

// covered reports whether a single occurrence of the template content holds
// every span, which is the state a replacement that keeps its block leaves.
func (t Template) covered(text string, spans []locate.Span) bool {
	if len(spans) == 0 {
		return false
	}
	lo, hi := spans[0].Start, spans[0].End
	for _, s := range spans[1:] {
		lo = min(lo, s.Start)
		hi = max(hi, s.End)
	}
	for _, o := range t.occurrences(text) {
		if o.Start <= lo && hi <= o.End {
			return true
		}
	}
	return false
}

// 🧮 Classify decides what applying tmpl at spans would mean for text
func Classify(spans []locate.Span, text string, tmpl Template) Outcome {
	if len(spans) == 0 {
		// the empty replacement of a finished deletion is always present
		if tmpl.contains(text, tmpl.Content) {
			return Outcome{Kind: AlreadyApplied}
		}
		return Outcome{Kind: NotFound}
	}

	if tmpl.mode() == ModeReplace && tmpl.covered(text, spans) {
		return Outcome{Kind: AlreadyApplied}
	}

	if len(spans) > 1 {
		return Outcome{Kind: Ambiguous, Count: len(spans)}
	}
	return classifyOne(spans[0], text, tmpl)
}

func classifyOne(span locate.Span, text string, tmpl Template) Outcome {
	switch tmpl.mode() {
	case ModeInsertAfter:
		if tmpl.hasPrefix(text[span.End:], tmpl.Content) {
			return Outcome{Kind: AlreadyApplied}
		}
		return Outcome{Kind: Applicable, Span: locate.Span{Start: span.End, End: span.End}}
	case ModeInsertBefore:
		if tmpl.hasSuffix(text[:span.Start], tmpl.Content) {
			return Outcome{Kind: AlreadyApplied}
		}
		return Outcome{Kind: Applicable, Span: locate.Span{Start: span.Start, End: span.Start}}
	default:
		if tmpl.equal(span.Slice(text), tmpl.Content) {
			return Outcome{Kind: AlreadyApplied}
		}
		return Outcome{Kind: Applicable, Span: span}
	}
}

// normalize collapses every run of whitespace to one space and trims the ends
func normalize(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return s != "" && unicode.IsSpace(r)
}
