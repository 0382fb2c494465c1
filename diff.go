package textops

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffContextLines is the number of unchanged lines kept around each change.
const DiffContextLines = 3

const (
	diffOldLabel = "original"
	diffNewLabel = "converted"
)

// noNewlineMarker follows a line that ends its text without a newline.
const noNewlineMarker = "\\ No newline at end of file\n"

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
	eol  bool // line ended with a newline
	old  int  // old lines before this one
	new  int  // new lines before this one
}

// UnifiedDiff returns a line-based unified diff of before and after with
// DiffContextLines lines of context. Identical inputs produce an empty string.
// When only one side ends with a newline, the last line of the other side carries
// the "\ No newline at end of file" marker.
func UnifiedDiff(before, after string) string {
	if before == after {
		return ""
	}
	markEOF := strings.HasSuffix(before, "\n") != strings.HasSuffix(after, "\n")
	lines := diffLines(before, after, markEOF)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", diffOldLabel, diffNewLabel)
	for _, h := range hunks(lines, DiffContextLines) {
		writeHunk(&b, lines[h[0]:h[1]], markEOF)
	}
	return b.String()
}

// diffLines diffs whole lines: every distinct line becomes one rune and the runes
// are diffed with DiffMainRunes. go-diff's own line helpers encode indexes as
// decimal text and garble diffs once an index reaches two digits.
// With keepEOF a final line lacking its newline differs from the same line with one.
func diffLines(before, after string, keepEOF bool) []diffLine {
	enc := lineEncoder{index: make(map[string]rune), lines: make(map[rune]string)}
	beforeRunes, afterRunes := enc.encode(before, keepEOF), enc.encode(after, keepEOF)
	diffs := diffmatchpatch.New().DiffMainRunes(beforeRunes, afterRunes, false)

	var out []diffLine
	oldN, newN := 0, 0
	for _, d := range diffs {
		for _, r := range d.Text {
			text, eol := strings.CutSuffix(enc.lines[r], "\n")
			out = append(out, diffLine{op: d.Type, text: text, eol: eol, old: oldN, new: newN})
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldN++
				newN++
			case diffmatchpatch.DiffDelete:
				oldN++
			case diffmatchpatch.DiffInsert:
				newN++
			}
		}
	}
	return out
}

// lineEncoder maps each distinct line to a rune; the stored line ends with "\n"
// unless it is a final line whose missing newline matters. Runes skip the
// surrogate range so they survive the string round trip inside DiffMainRunes.
type lineEncoder struct {
	index map[string]rune
	lines map[rune]string
	next  rune
}

func (e *lineEncoder) encode(text string, keepEOF bool) []rune {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	last := len(parts) - 1
	if parts[last] == "" {
		parts = parts[:last]
	}
	out := make([]rune, len(parts))
	for i, line := range parts {
		if i < last || !keepEOF {
			line += "\n"
		}
		r, ok := e.index[line]
		if !ok {
			e.next++
			if e.next == 0xD800 {
				e.next = 0xE000
			}
			r = e.next
			e.index[line] = r
			e.lines[r] = line
		}
		out[i] = r
	}
	return out
}

// hunks returns [start, end) index ranges over lines, merging changes separated by
// at most 2*ctx unchanged lines.
func hunks(lines []diffLine, ctx int) [][2]int {
	var out [][2]int
	for i := 0; i < len(lines); i++ {
		if lines[i].op == diffmatchpatch.DiffEqual {
			continue
		}
		start := max(0, i-ctx)
		end := i + 1
		for j := i + 1; j < len(lines); j++ {
			if lines[j].op != diffmatchpatch.DiffEqual {
				end = j + 1
				continue
			}
			if j-end >= 2*ctx {
				break
			}
		}
		end = min(len(lines), end+ctx)
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = end
		} else {
			out = append(out, [2]int{start, end})
		}
		i = end - 1
	}
	return out
}

func writeHunk(b *strings.Builder, lines []diffLine, markEOF bool) {
	oldCount, newCount := 0, 0
	for _, l := range lines {
		if l.op != diffmatchpatch.DiffInsert {
			oldCount++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newCount++
		}
	}
	oldStart, newStart := lines[0].old+1, lines[0].new+1
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}
	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, l := range lines {
		prefix := " "
		switch l.op {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		b.WriteString(prefix)
		b.WriteString(l.text)
		b.WriteByte('\n')
		if markEOF && !l.eol {
			b.WriteString(noNewlineMarker)
		}
	}
}
