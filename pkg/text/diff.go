package text

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineKind marks a line in a preview diff
type LineKind string

const (
	LineContext LineKind = " "
	LineAdded   LineKind = "+"
	LineRemoved LineKind = "-"
)

// DiffLine is one line of a preview diff
type DiffLine struct {
	Kind LineKind
	Text string
}

// Diff returns the line-level changes between two snapshots. Unchanged lines
// further than context lines away from a change are dropped.
func Diff(before, after string, context int) []DiffLine {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []DiffLine
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		kind := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = LineAdded
		case diffmatchpatch.DiffDelete:
			kind = LineRemoved
		}
		for _, l := range chunk {
			lines = append(lines, DiffLine{Kind: kind, Text: l})
		}
	}

	if context < 0 {
		return lines
	}
	return trimContext(lines, context)
}

func trimContext(lines []DiffLine, context int) []DiffLine {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Kind == LineContext {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}

	var out []DiffLine
	for i, l := range lines {
		if keep[i] {
			out = append(out, l)
		}
	}
	return out
}

// FormatDiff renders diff lines the way unified diffs print them
func FormatDiff(lines []DiffLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(string(l.Kind))
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
