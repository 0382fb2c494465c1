package catalog

import (
	"slices"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/skosovsky/textops"
)

func caseTools() []textops.Tool {
	return []textops.Tool{
		textops.MustTool("toUppercase", "Convert all letters to upper case.", textops.RenderDiff, nil, toUppercase, textops.WithTags("case")),
		textops.MustTool("toLowercase", "Convert all letters to lower case.", textops.RenderDiff, nil, toLowercase, textops.WithTags("case")),
		textops.MustTool("capitalize", "Capitalize the first letter of every word.", textops.RenderDiff, nil, capitalize, textops.WithTags("case")),
		textops.MustTool("toTitleCase", "Convert text to title case.", textops.RenderDiff, nil, toTitleCase, textops.WithTags("case")),
		textops.MustTool("capitalizeSentences", "Capitalize the first letter of every sentence.", textops.RenderDiff, nil, capitalizeSentences, textops.WithTags("case")),
		textops.MustTool("reverseText", "Reverse the characters of the text.", textops.RenderDiff, nil, reverseText, textops.WithTags("order")),
	}
}

// Casers keep state, so each call builds its own.

func toUppercase(text string, _ ...string) string {
	return cases.Upper(language.Und).String(text)
}

func toLowercase(text string, _ ...string) string {
	return cases.Lower(language.Und).String(text)
}

func toTitleCase(text string, _ ...string) string {
	return cases.Title(language.Und).String(text)
}

// capitalize upper-cases the first letter of every whitespace-separated word and
// leaves the rest of the word as is.
func capitalize(text string, _ ...string) string {
	runes := []rune(text)
	atStart := true
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			atStart = true
		case atStart && unicode.IsLetter(r):
			runes[i] = unicode.ToUpper(r)
			atStart = false
		case atStart && unicode.IsDigit(r):
			atStart = false
		}
	}
	return string(runes)
}

func capitalizeSentences(text string, _ ...string) string {
	runes := []rune(text)
	atStart := true
	for i, r := range runes {
		switch {
		case r == '.' || r == '!' || r == '?':
			atStart = true
		case atStart && unicode.IsLetter(r):
			// Only after whitespace or at the beginning: "e.g" and "3.5" stay as they are.
			if i == 0 || unicode.IsSpace(runes[i-1]) || runes[i-1] == '"' || runes[i-1] == '(' {
				runes[i] = unicode.ToUpper(r)
			}
			atStart = false
		case atStart && unicode.IsDigit(r):
			atStart = false
		}
	}
	return string(runes)
}

func reverseText(text string, _ ...string) string {
	runes := []rune(text)
	slices.Reverse(runes)
	return string(runes)
}

// caseFold folds s for case-insensitive comparison.
func caseFold(s string) string {
	return cases.Fold().String(s)
}
