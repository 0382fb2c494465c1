package textops

import (
	"context"
	"fmt"
	"strings"
)

// DefaultHeuristicTool is chosen when no rule matches.
const DefaultHeuristicTool = "countWords"

// HeuristicRule maps keywords in a task description to a tool. A rule matches when
// the lower-cased description contains every entry of All and, if Any is not empty,
// at least one entry of Any.
type HeuristicRule struct {
	Tool string
	All  []string
	Any  []string
}

func (r HeuristicRule) match(task string) (string, bool) {
	for _, kw := range r.All {
		if !strings.Contains(task, kw) {
			return "", false
		}
	}
	if len(r.Any) == 0 {
		return strings.Join(r.All, "+"), true
	}
	for _, kw := range r.Any {
		if strings.Contains(task, kw) {
			return kw, true
		}
	}
	return "", false
}

// heuristicRules are evaluated in order; the first match wins, so more specific
// phrases precede the general keywords they contain.
var heuristicRules = []HeuristicRule{
	{Tool: "jsonToCsv", Any: []string{"json to csv", "json into csv"}},
	{Tool: "csvToJson", All: []string{"csv", "json"}},
	{Tool: "removeCsvColumns", Any: []string{"remove column", "delete column", "drop column", "remove the column"}},
	{Tool: "removeDuplicateWords", Any: []string{"duplicate word", "repeated word"}},
	{Tool: "removeDuplicateLines", Any: []string{"duplicate", "dedup", "unique line"}},
	{Tool: "removeEmptyLines", Any: []string{"empty line", "blank line"}},
	{Tool: "randomizeCase", Any: []string{"randomize case", "random case", "randomise case"}},
	{Tool: "toUppercase", Any: []string{"uppercase", "upper case", "all caps"}},
	{Tool: "toLowercase", Any: []string{"lowercase", "lower case"}},
	{Tool: "toTitleCase", Any: []string{"title case", "titlecase"}},
	{Tool: "capitalizeSentences", Any: []string{"capitalize sentence", "capitalize each sentence", "capitalize the first letter of each sentence"}},
	{Tool: "capitalize", Any: []string{"capitalize", "capitalise"}},
	{Tool: "reverseLines", Any: []string{"reverse line", "reverse the line", "reverse order of lines"}},
	{Tool: "reverseText", Any: []string{"reverse"}},
	{Tool: "sortLines", Any: []string{"sort", "alphabetize", "alphabetical"}},
	{Tool: "shuffleWords", Any: []string{"shuffle word", "shuffle the word"}},
	{Tool: "shuffleCharacters", Any: []string{"shuffle char", "shuffle letter", "scramble"}},
	{Tool: "shuffleLines", Any: []string{"shuffle", "randomize line", "random order"}},
	{Tool: "addLineNumbers", Any: []string{"line number", "number the lines", "number each line"}},
	{Tool: "extractEmails", Any: []string{"email"}},
	{Tool: "extractUrls", Any: []string{"url", "link"}},
	{Tool: "extractHashtags", Any: []string{"hashtag"}},
	{Tool: "formatPhoneNumbers", Any: []string{"phone"}},
	{Tool: "formatNumbers", Any: []string{"format number", "thousand", "decimal"}},
	{Tool: "extractNumbers", Any: []string{"extract number", "find number", "get number", "numbers"}},
	{Tool: "extractPattern", Any: []string{"regex", "pattern", "match"}},
	{Tool: "replaceText", Any: []string{"replace", "substitute"}},
	{Tool: "repeatText", Any: []string{"repeat"}},
	{Tool: "removeExtraSpaces", Any: []string{"extra space", "multiple spaces", "double space"}},
	{Tool: "trimWhitespace", Any: []string{"trim", "whitespace"}},
	{Tool: "generateLoremIpsum", Any: []string{"lorem", "placeholder text", "dummy text"}},
	{Tool: "generateRandomWords", Any: []string{"random word"}},
	{Tool: "generateRandomLetters", Any: []string{"random letter", "random character"}},
	{Tool: "wordFrequency", Any: []string{"frequen", "most common"}},
	{Tool: "textStatistics", Any: []string{"statistic", "stats", "analyze", "analyse"}},
	{Tool: "splitSentences", Any: []string{"sentence"}},
	{Tool: "splitParagraphs", Any: []string{"paragraph"}},
	{Tool: "countCharacters", Any: []string{"character", "count char", "letters"}},
	{Tool: "countLines", Any: []string{"count line", "how many lines", "number of lines"}},
	{Tool: "countWords", Any: []string{"word count", "count word", "how many words", "number of words"}},
}

// HeuristicRules returns a copy of the ordered rule table.
func HeuristicRules() []HeuristicRule {
	return append([]HeuristicRule(nil), heuristicRules...)
}

// HeuristicEvaluator picks a tool with ordered first-match keyword rules. It is
// deterministic, works offline, and returns no arguments: callers supply them at
// execution time.
type HeuristicEvaluator struct {
	rules    []HeuristicRule
	fallback string
}

// NewHeuristicEvaluator returns an evaluator using the built-in rule table.
func NewHeuristicEvaluator() *HeuristicEvaluator {
	return &HeuristicEvaluator{rules: heuristicRules, fallback: DefaultHeuristicTool}
}

// Evaluate implements Evaluator. It never returns an error.
func (h *HeuristicEvaluator) Evaluate(_ context.Context, req EvaluateRequest) (ToolEvaluation, error) {
	task := strings.ToLower(req.TaskDescription)
	for _, rule := range h.rules {
		if kw, ok := rule.match(task); ok {
			return ToolEvaluation{
				Tool:      rule.Tool,
				Reasoning: fmt.Sprintf("Task description mentions %q.", kw),
				Args:      []Arg{},
			}, nil
		}
	}
	return ToolEvaluation{
		Tool:      h.fallback,
		Reasoning: fmt.Sprintf("No keyword matched; defaulting to %s.", h.fallback),
		Args:      []Arg{},
	}, nil
}

var _ Evaluator = (*HeuristicEvaluator)(nil)
