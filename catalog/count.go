package catalog

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/skosovsky/textops"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

func countTools() []textops.Tool {
	return []textops.Tool{
		textops.MustTool("countWords", "Count the words in the text.", textops.RenderOutput, nil, countWords, textops.WithTags("count")),
		textops.MustTool("countCharacters", "Count characters, with and without spaces.", textops.RenderOutput, nil, countCharacters, textops.WithTags("count")),
		textops.MustTool("countLines", "Count the lines in the text.", textops.RenderOutput, nil, countLines, textops.WithTags("count")),
		textops.MustTool("wordFrequency", "List the most frequent words. limit is the number of words to show (default 10).", textops.RenderOutput, []string{"limit"}, wordFrequency, textops.WithTags("count", "words")),
		textops.MustTool("textStatistics", "Summarize characters, words, lines, sentences and paragraphs.", textops.RenderOutput, nil, textStatistics, textops.WithTags("count")),
	}
}

func countWords(text string, _ ...string) string {
	return fmt.Sprintf("Word count: %d", len(strings.Fields(text)))
}

func nonSpaceRunes(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func countCharacters(text string, _ ...string) string {
	return fmt.Sprintf("Characters: %d (without spaces: %d)", utf8.RuneCountInString(text), nonSpaceRunes(text))
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return len(splitLines(strings.TrimSuffix(text, "\n")))
}

func countLines(text string, _ ...string) string {
	return fmt.Sprintf("Lines: %d", lineCount(text))
}

type wordCount struct {
	word  string
	count int
}

func frequencies(text string) []wordCount {
	counts := make(map[string]int)
	for _, w := range wordPattern.FindAllString(text, -1) {
		counts[caseFold(w)]++
	}
	out := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, wordCount{word: w, count: c})
	}
	slices.SortFunc(out, func(a, b wordCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.word, b.word)
	})
	return out
}

func wordFrequency(text string, args ...string) string {
	limit, ok := intArg(args[0], 10, 1, 1000)
	if !ok {
		return textops.ToolArgumentError("Limit must be a number between 1 and 1000.")
	}
	freq := frequencies(text)
	if len(freq) == 0 {
		return "No words found."
	}
	freq = freq[:min(limit, len(freq))]
	lines := make([]string, len(freq))
	for i, f := range freq {
		lines[i] = fmt.Sprintf("%s: %d", f.word, f.count)
	}
	return strings.Join(lines, "\n")
}

func textStatistics(text string, _ ...string) string {
	words := strings.Fields(text)
	tokens := wordPattern.FindAllString(text, -1)
	letters := 0
	for _, w := range tokens {
		letters += utf8.RuneCountInString(w)
	}
	avg := 0.0
	if len(tokens) > 0 {
		avg = float64(letters) / float64(len(tokens))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Characters: %d\n", utf8.RuneCountInString(text))
	fmt.Fprintf(&b, "Characters (without spaces): %d\n", nonSpaceRunes(text))
	fmt.Fprintf(&b, "Words: %d\n", len(words))
	fmt.Fprintf(&b, "Unique words: %d\n", len(frequencies(text)))
	fmt.Fprintf(&b, "Lines: %d\n", lineCount(text))
	fmt.Fprintf(&b, "Sentences: %d\n", len(sentences(text)))
	fmt.Fprintf(&b, "Paragraphs: %d\n", len(paragraphs(text)))
	fmt.Fprintf(&b, "Average word length: %.2f", avg)
	return b.String()
}
