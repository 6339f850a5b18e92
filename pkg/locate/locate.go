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

package locate

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind identifies which locator variant a Spec holds
type Kind string

const (
	KindLiteral Kind = "literal"
	KindRegex   Kind = "regex"
	KindAnchor  Kind = "anchor"
)

// 📏 Span is a half-open [Start, End) byte range into one snapshot of a text.
// A span is only meaningful against the exact text it was computed from.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Slice returns the part of text covered by the span
func (s Span) Slice(text string) string {
	return text[s.Start:s.End]
}

// Valid reports whether the span fits inside a text of length n
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= n
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// ⚓ Anchor brackets a block between two stable markers.
// Exactly one of End or Length must be set.
type Anchor struct {
	Start  string // marker opening the block
	End    string // marker closing the block, included in the span
	Length int    // fixed span length measured from Start, used when End is empty
	Within string // optional stable text inside the block used as the anchor point
}

// 🔍 Spec describes how to find an existing block of text
type Spec struct {
	Kind    Kind
	Literal string
	Pattern string
	Flags   string
	Anchor  Anchor

	re *regexp.Regexp
}

// Literal builds a case-sensitive exact substring locator
func Literal(text string) Spec {
	return Spec{Kind: KindLiteral, Literal: text}
}

// Regex builds a regular expression locator. Flags use Go's inline flag
// letters (i, m, s, U).
func Regex(pattern, flags string) Spec {
	return Spec{Kind: KindRegex, Pattern: pattern, Flags: flags}
}

// AnchorPair builds a locator bracketed by a start and an end marker
func AnchorPair(start, end string) Spec {
	return Spec{Kind: KindAnchor, Anchor: Anchor{Start: start, End: end}}
}

// AnchorLength builds a locator that starts at a marker and covers a fixed number of bytes
func AnchorLength(start string, length int) Spec {
	return Spec{Kind: KindAnchor, Anchor: Anchor{Start: start, Length: length}}
}

// WithWithin returns a copy of an anchor spec that uses within as its anchor point
func (s Spec) WithWithin(within string) Spec {
	s.Anchor.Within = within
	return s
}

// String returns a short human readable description used in diagnostics
func (s Spec) String() string {
	switch s.Kind {
	case KindLiteral:
		return fmt.Sprintf("literal(%s)", abbreviate(s.Literal))
	case KindRegex:
		if s.Flags != "" {
			return fmt.Sprintf("regex(/%s/%s)", abbreviate(s.Pattern), s.Flags)
		}
		return fmt.Sprintf("regex(/%s/)", abbreviate(s.Pattern))
	case KindAnchor:
		end := abbreviate(s.Anchor.End)
		if s.Anchor.End == "" {
			end = fmt.Sprintf("+%d", s.Anchor.Length)
		}
		if s.Anchor.Within != "" {
			return fmt.Sprintf("anchor(%s .. %s ~ %s)", abbreviate(s.Anchor.Start), end, abbreviate(s.Anchor.Within))
		}
		return fmt.Sprintf("anchor(%s .. %s)", abbreviate(s.Anchor.Start), end)
	}
	return fmt.Sprintf("unknown(%s)", s.Kind)
}

// Compile validates the locator and prepares it for repeated use. Locate
// compiles lazily, so calling Compile is only needed to surface errors early.
func (s Spec) Compile() (Spec, error) {
	switch s.Kind {
	case KindLiteral:
		if s.Literal == "" {
			return s, specErrorf(s, "literal text is empty")
		}
	case KindRegex:
		if s.Pattern == "" {
			return s, specErrorf(s, "regex pattern is empty")
		}
		if s.re != nil {
			return s, nil
		}
		re, err := compileRegex(s.Pattern, s.Flags)
		if err != nil {
			return s, &SpecError{Spec: s.String(), Reason: "invalid regex", Err: err}
		}
		s.re = re
	case KindAnchor:
		if s.Anchor.Start == "" {
			return s, specErrorf(s, "anchor start marker is empty")
		}
		if s.Anchor.End != "" && s.Anchor.Length != 0 {
			return s, specErrorf(s, "anchor needs either an end marker or a length, not both")
		}
		if s.Anchor.End == "" && s.Anchor.Length <= 0 {
			return s, specErrorf(s, "anchor needs an end marker or a positive length")
		}
	default:
		return s, specErrorf(s, "unknown locator kind %q", s.Kind)
	}
	return s, nil
}

// 🎯 Locate finds every candidate span for spec in text, in left-to-right order.
// It has no side effects. The only error it returns is a *SpecError.
func Locate(text string, spec Spec) ([]Span, error) {
	spec, err := spec.Compile()
	if err != nil {
		return nil, err
	}

	switch spec.Kind {
	case KindLiteral:
		return locateLiteral(text, spec.Literal), nil
	case KindRegex:
		return locateRegex(text, spec.re), nil
	default:
		return locateAnchor(text, spec.Anchor), nil
	}
}

func locateLiteral(text, needle string) []Span {
	var spans []Span
	offset := 0
	for {
		idx := strings.Index(text[offset:], needle)
		if idx < 0 {
			return spans
		}
		start := offset + idx
		spans = append(spans, Span{Start: start, End: start + len(needle)})
		offset = start + len(needle)
	}
}

func locateRegex(text string, re *regexp.Regexp) []Span {
	var spans []Span
	for _, loc := range re.FindAllStringIndex(text, -1) {
		// zero width matches cannot identify a block
		if loc[0] == loc[1] {
			continue
		}
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans
}

func locateAnchor(text string, a Anchor) []Span {
	var spans []Span
	seen := map[Span]bool{}

	for _, anchor := range anchorPoints(text, a) {
		start := strings.LastIndex(text[:anchor], a.Start)
		if start < 0 {
			continue
		}

		var end int
		if a.End != "" {
			// the end marker must begin at or after both the anchor and the end of the start marker
			from := max(anchor, start+len(a.Start))
			idx := strings.Index(text[from:], a.End)
			if idx < 0 {
				continue
			}
			end = from + idx + len(a.End)
		} else {
			end = min(start+a.Length, len(text))
		}

		span := Span{Start: start, End: end}
		if seen[span] {
			continue
		}
		seen[span] = true
		spans = append(spans, span)
	}

	return spans
}

// anchorPoints returns the indices the anchor pair is derived from. With a
// Within marker each of its occurrences is a point; otherwise the point sits
// right after each occurrence of the start marker.
func anchorPoints(text string, a Anchor) []int {
	var points []int
	if a.Within != "" {
		for _, s := range locateLiteral(text, a.Within) {
			points = append(points, s.Start)
		}
		return points
	}
	for _, s := range locateLiteral(text, a.Start) {
		points = append(points, s.End)
	}
	return points
}

func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	for _, f := range flags {
		if !strings.ContainsRune("imsU", f) {
			return nil, errors.Errorf("unsupported regex flag %q", f)
		}
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	return regexp.Compile(pattern)
}

func abbreviate(s string) string {
	const limit = 40
	s = strings.ReplaceAll(s, "\n", `\n`)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
