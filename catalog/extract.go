package catalog

import (
	"regexp"
	"strings"

	"github.com/skosovsky/textops"
)

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	urlPattern     = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)
	numberPattern  = regexp.MustCompile(`-?\d+(?:[.,]\d+)*`)
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
)

func extractTools() []textops.Tool {
	return []textops.Tool{
		textops.MustTool("extractEmails", "List the email addresses found in the text.", textops.RenderOutput, nil, extractEmails, textops.WithTags("extract")),
		textops.MustTool("extractUrls", "List the URLs found in the text.", textops.RenderOutput, nil, extractURLs, textops.WithTags("extract")),
		textops.MustTool("extractNumbers", "List the numbers found in the text.", textops.RenderOutput, nil, extractNumbers, textops.WithTags("extract")),
		textops.MustTool("extractHashtags", "List the hashtags found in the text.", textops.RenderOutput, nil, extractHashtags, textops.WithTags("extract")),
		textops.MustTool("extractPattern", "List the matches of a regular expression. pattern uses RE2 syntax.", textops.RenderOutput, []string{"pattern"}, extractPattern, textops.WithTags("extract")),
	}
}

// listMatches returns one match per line, dropping repeats when unique is set.
func listMatches(matches []string, unique bool, none string) string {
	if unique {
		seen := make(map[string]struct{}, len(matches))
		out := matches[:0]
		for _, m := range matches {
			key := caseFold(m)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, m)
		}
		matches = out
	}
	if len(matches) == 0 {
		return none
	}
	return strings.Join(matches, "\n")
}

func extractEmails(text string, _ ...string) string {
	return listMatches(emailPattern.FindAllString(text, -1), true, "No email addresses found.")
}

func extractURLs(text string, _ ...string) string {
	found := urlPattern.FindAllString(text, -1)
	for i, u := range found {
		found[i] = strings.TrimRight(u, ".,;:!?)]}")
	}
	return listMatches(found, true, "No URLs found.")
}

func extractNumbers(text string, _ ...string) string {
	return listMatches(numberPattern.FindAllString(text, -1), false, "No numbers found.")
}

func extractHashtags(text string, _ ...string) string {
	return listMatches(hashtagPattern.FindAllString(text, -1), true, "No hashtags found.")
}

func extractPattern(text string, args ...string) string {
	pattern := args[0]
	if pattern == "" {
		return textops.ToolArgumentError("Pattern cannot be empty.")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return textops.ToolArgumentError("Invalid regular expression: %v", err)
	}
	return listMatches(re.FindAllString(text, -1), false, "No matches found.")
}
