package catalog

import (
	"strings"
	"unicode"

	"github.com/skosovsky/textops"
)

// randSource is the subset of *rand.Rand the random tools use.
type randSource interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis
nostrud exercitation ullamco laboris nisi aliquip ex ea commodo consequat duis aute irure
in reprehenderit voluptate velit esse cillum fugiat nulla pariatur excepteur sint occaecat
cupidatat non proident sunt culpa qui officia deserunt mollit anim id est laborum`)

const loremOpening = "Lorem ipsum dolor sit amet, consectetur adipiscing elit."

func randomTools(rnd randSource) []textops.Tool {
	return []textops.Tool{
		textops.MustTool("shuffleLines", "Shuffle the order of lines.", textops.RenderDiff, nil, shuffleLines(rnd), textops.WithTags("random", "lines")),
		textops.MustTool("shuffleWords", "Shuffle the words within each line.", textops.RenderDiff, nil, shuffleWords(rnd), textops.WithTags("random", "words")),
		textops.MustTool("shuffleCharacters", "Shuffle the characters within each word.", textops.RenderDiff, nil, shuffleCharacters(rnd), textops.WithTags("random")),
		textops.MustTool("randomizeCase", "Randomly upper- or lower-case every letter.", textops.RenderDiff, nil, randomizeCase(rnd), textops.WithTags("random", "case")),
		textops.MustTool("generateLoremIpsum", "Generate lorem ipsum placeholder text. paragraphs is 1-20 (default 3).", textops.RenderOutput, []string{"paragraphs"}, generateLoremIpsum(rnd), textops.WithTags("random", "generate")),
		textops.MustTool("generateRandomWords", "Generate random words. count is 1-1000 (default 10).", textops.RenderOutput, []string{"count"}, generateRandomWords(rnd), textops.WithTags("random", "generate")),
		textops.MustTool("generateRandomLetters", "Generate random letters. count is 1-10000 (default 10).", textops.RenderOutput, []string{"count"}, generateRandomLetters(rnd), textops.WithTags("random", "generate")),
	}
}

func shuffleLines(rnd randSource) textops.ToolFunc {
	return func(text string, _ ...string) string {
		lines := splitLines(text)
		rnd.Shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })
		return strings.Join(lines, "\n")
	}
}

func shuffleWords(rnd randSource) textops.ToolFunc {
	return func(text string, _ ...string) string {
		lines := splitLines(text)
		for i, line := range lines {
			words := strings.Fields(line)
			rnd.Shuffle(len(words), func(a, b int) { words[a], words[b] = words[b], words[a] })
			lines[i] = strings.Join(words, " ")
		}
		return strings.Join(lines, "\n")
	}
}

func shuffleCharacters(rnd randSource) textops.ToolFunc {
	return func(text string, _ ...string) string {
		runes := []rune(text)
		start := -1
		flush := func(end int) {
			if start >= 0 {
				word := runes[start:end]
				rnd.Shuffle(len(word), func(a, b int) { word[a], word[b] = word[b], word[a] })
				start = -1
			}
		}
		for i, r := range runes {
			if unicode.IsSpace(r) {
				flush(i)
			} else if start < 0 {
				start = i
			}
		}
		flush(len(runes))
		return string(runes)
	}
}

func randomizeCase(rnd randSource) textops.ToolFunc {
	return func(text string, _ ...string) string {
		runes := []rune(text)
		for i, r := range runes {
			if !unicode.IsLetter(r) {
				continue
			}
			if rnd.IntN(2) == 0 {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
		}
		return string(runes)
	}
}

func randomWords(rnd randSource, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = loremWords[rnd.IntN(len(loremWords))]
	}
	return out
}

func loremSentence(rnd randSource) string {
	words := randomWords(rnd, 6+rnd.IntN(9))
	words[0] = capitalize(words[0])
	return strings.Join(words, " ") + "."
}

func generateLoremIpsum(rnd randSource) textops.ToolFunc {
	return func(_ string, args ...string) string {
		n, ok := intArg(args[0], 3, 1, 20)
		if !ok {
			return textops.ToolArgumentError("Paragraph count must be a number between 1 and 20.")
		}
		paras := make([]string, n)
		for i := range paras {
			count := 4 + rnd.IntN(4)
			sents := make([]string, 0, count+1)
			if i == 0 {
				sents = append(sents, loremOpening)
			}
			for range count {
				sents = append(sents, loremSentence(rnd))
			}
			paras[i] = strings.Join(sents, " ")
		}
		return strings.Join(paras, "\n\n")
	}
}

func generateRandomWords(rnd randSource) textops.ToolFunc {
	return func(_ string, args ...string) string {
		n, ok := intArg(args[0], 10, 1, 1000)
		if !ok {
			return textops.ToolArgumentError("Word count must be a number between 1 and 1000.")
		}
		return strings.Join(randomWords(rnd, n), " ")
	}
}

func generateRandomLetters(rnd randSource) textops.ToolFunc {
	return func(_ string, args ...string) string {
		n, ok := intArg(args[0], 10, 1, 10000)
		if !ok {
			return textops.ToolArgumentError("Letter count must be a number between 1 and 10000.")
		}
		b := make([]byte, n)
		for i := range b {
			b[i] = byte('a' + rnd.IntN(26))
		}
		return string(b)
	}
}
