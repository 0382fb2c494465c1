package catalog

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/skosovsky/textops"
)

var (
	blankRun     = regexp.MustCompile(`[ \t]+`)
	sentenceEnd  = regexp.MustCompile(`([.!?]+)(\s+)`)
	paragraphGap = regexp.MustCompile(`\n[ \t]*\n\s*`)
)

func lineTools() []textops.Tool {
	return []textops.Tool{
		textops.MustTool("reverseLines", "Reverse the order of lines.", textops.RenderDiff, nil, reverseLines, textops.WithTags("lines", "order")),
		textops.MustTool("sortLines", "Sort lines alphabetically. order is asc (default) or desc.", textops.RenderDiff, []string{"order"}, sortLines, textops.WithTags("lines", "order")),
		textops.MustTool("removeDuplicateLines", "Remove repeated lines, keeping the first occurrence.", textops.RenderDiff, nil, removeDuplicateLines, textops.WithTags("lines", "cleanup")),
		textops.MustTool("removeDuplicateWords", "Remove repeated words (case-insensitive), keeping the first occurrence.", textops.RenderDiff, nil, removeDuplicateWords, textops.WithTags("words", "cleanup")),
		textops.MustTool("removeEmptyLines", "Remove blank lines.", textops.RenderDiff, nil, removeEmptyLines, textops.WithTags("lines", "cleanup")),
		textops.MustTool("trimWhitespace", "Trim leading and trailing whitespace from every line.", textops.RenderDiff, nil, trimWhitespace, textops.WithTags("lines", "cleanup")),
		textops.MustTool("removeExtraSpaces", "Collapse runs of spaces and tabs into a single space.", textops.RenderDiff, nil, removeExtraSpaces, textops.WithTags("cleanup")),
		textops.MustTool("addLineNumbers", "Prefix every line with its number.", textops.RenderDiff, nil, addLineNumbers, textops.WithTags("lines")),
		textops.MustTool("replaceText", "Replace every occurrence of search with replacement.", textops.RenderDiff, []string{"search", "replacement"}, replaceText, textops.WithTags("edit")),
		textops.MustTool("repeatText", "Repeat the text count times (1-100), joined by separator (default newline).", textops.RenderOutput, []string{"count", "separator"}, repeatText, textops.WithTags("generate")),
		textops.MustTool("splitSentences", "Put every sentence on its own line.", textops.RenderOutput, nil, splitSentences, textops.WithTags("segment")),
		textops.MustTool("splitParagraphs", "Split the text into numbered paragraphs.", textops.RenderOutput, nil, splitParagraphs, textops.WithTags("segment")),
	}
}

func reverseLines(text string, _ ...string) string {
	lines := splitLines(text)
	slices.Reverse(lines)
	return strings.Join(lines, "\n")
}

func sortLines(text string, args ...string) string {
	order := strings.ToLower(strings.TrimSpace(args[0]))
	desc := false
	switch order {
	case "", "asc", "ascending":
	case "desc", "descending":
		desc = true
	default:
		return textops.ToolArgumentError("Sort order must be \"asc\" or \"desc\".")
	}
	lines := splitLines(text)
	collate.New(language.Und, collate.IgnoreCase).SortStrings(lines)
	if desc {
		slices.Reverse(lines)
	}
	return strings.Join(lines, "\n")
}

func removeDuplicateLines(text string, _ ...string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, line := range splitLines(text) {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func removeDuplicateWords(text string, _ ...string) string {
	seen := make(map[string]struct{})
	lines := splitLines(text)
	for i, line := range lines {
		var kept []string
		for _, w := range strings.Fields(line) {
			key := caseFold(w)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, w)
		}
		lines[i] = strings.Join(kept, " ")
	}
	return strings.Join(lines, "\n")
}

func removeEmptyLines(text string, _ ...string) string {
	var out []string
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func trimWhitespace(text string, _ ...string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func removeExtraSpaces(text string, _ ...string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = blankRun.ReplaceAllString(line, " ")
	}
	return strings.Join(lines, "\n")
}

func addLineNumbers(text string, _ ...string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%d. %s", i+1, line)
	}
	return strings.Join(lines, "\n")
}

func replaceText(text string, args ...string) string {
	search, replacement := args[0], args[1]
	if search == "" {
		return textops.ToolArgumentError("Search text cannot be empty.")
	}
	return strings.ReplaceAll(text, unescape(search), unescape(replacement))
}

func repeatText(text string, args ...string) string {
	count, ok := intArg(args[0], 0, 1, 100)
	if !ok {
		return textops.ToolArgumentError("Repeat count must be a number between 1 and 100.")
	}
	sep := "\n"
	if args[1] != "" {
		sep = unescape(args[1])
	}
	parts := make([]string, count)
	for i := range parts {
		parts[i] = text
	}
	return strings.Join(parts, sep)
}

// sentences splits text after runs of terminal punctuation followed by whitespace.
func sentences(text string) []string {
	marked := sentenceEnd.ReplaceAllString(strings.TrimSpace(text), "$1\x00")
	var out []string
	for _, s := range strings.Split(marked, "\x00") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphGap.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitSentences(text string, _ ...string) string {
	s := sentences(text)
	if len(s) == 0 {
		return "No sentences found."
	}
	return strings.Join(s, "\n")
}

func splitParagraphs(text string, _ ...string) string {
	ps := paragraphs(text)
	if len(ps) == 0 {
		return "No paragraphs found."
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = fmt.Sprintf("Paragraph %d:\n%s", i+1, p)
	}
	return strings.Join(out, "\n\n")
}
