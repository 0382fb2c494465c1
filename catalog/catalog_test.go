package catalog

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/textops"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func seeded() Option {
	return WithRand(rand.New(rand.NewPCG(1, 2)))
}

func run(t *testing.T, reg *textops.Registry, name, text string, args ...string) string {
	t.Helper()
	out, err := reg.Execute(context.Background(), name, append([]string{text}, args...))
	require.NoError(t, err)
	return out
}

func TestCatalog_Signatures(t *testing.T) {
	reg := NewRegistry(seeded())
	sigs := reg.List()
	require.Len(t, sigs, 40)
	seen := make(map[string]bool)
	for _, sig := range sigs {
		assert.False(t, seen[sig.Name], "duplicate tool %s", sig.Name)
		seen[sig.Name] = true
		require.NotEmpty(t, sig.Params)
		assert.Equal(t, textops.TextParam, sig.Params[0], sig.Name)
		assert.Contains(t, []textops.RenderMode{textops.RenderDiff, textops.RenderOutput}, sig.RenderMode, sig.Name)
		assert.NotEmpty(t, sig.Description, sig.Name)
	}
}

func TestCatalog_MinimalArgs(t *testing.T) {
	reg := NewRegistry(seeded())
	for _, sig := range reg.List() {
		t.Run(sig.Name, func(t *testing.T) {
			args := make([]string, len(sig.Params)-1)
			assert.NotPanics(t, func() {
				out := run(t, reg, sig.Name, "Sample text, with 2 words.\nSecond line.", args...)
				assert.NotEmpty(t, out)
			})
		})
	}
}

func TestCatalog_HeuristicToolsExist(t *testing.T) {
	reg := NewRegistry(seeded())
	for _, rule := range textops.HeuristicRules() {
		_, ok := reg.Signature(rule.Tool)
		assert.True(t, ok, "heuristic rule targets unknown tool %s", rule.Tool)
	}
	_, ok := reg.Signature(textops.DefaultHeuristicTool)
	assert.True(t, ok)
}

func TestCaseTools(t *testing.T) {
	reg := NewRegistry(seeded())
	tests := []struct {
		tool, in, want string
	}{
		{"capitalize", "the quick brown fox", "The Quick Brown Fox"},
		{"capitalize", "hello wORLD", "Hello WORLD"},
		{"toUppercase", "grüne äpfel", "GRÜNE ÄPFEL"},
		{"toLowercase", "Hello World", "hello world"},
		{"toTitleCase", "hello wORLD", "Hello World"},
		{"capitalizeSentences", "first one. second one! third?", "First one. Second one! Third?"},
		{"reverseText", "abc déf", "féd cba"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, reg, tt.tool, tt.in))
		})
	}
}

func TestToUppercase_Idempotent(t *testing.T) {
	reg := NewRegistry(seeded())
	for _, in := range []string{"", "abc", "Mixed Case 123", "ünïcödé text"} {
		once := run(t, reg, "toUppercase", in)
		assert.Equal(t, once, run(t, reg, "toUppercase", once))
	}
}

func TestRepeatText(t *testing.T) {
	reg := NewRegistry(seeded())
	const msg = "Error: Repeat count must be a number between 1 and 100."
	for _, count := range []string{"0", "101", "", "abc", "-1"} {
		out := run(t, reg, "repeatText", "x", count, "")
		assert.Equal(t, msg, out, "count %q", count)
		assert.True(t, textops.IsToolArgumentError(out))
	}
	assert.Equal(t, "x\nx\nx", run(t, reg, "repeatText", "x", "3"))
	assert.Equal(t, "x, x", run(t, reg, "repeatText", "x", "2", ", "))
	assert.Equal(t, "x", run(t, reg, "repeatText", "x", " 1 "))
}

func TestLineTools(t *testing.T) {
	reg := NewRegistry(seeded())
	tests := []struct {
		name string
		tool string
		in   string
		args []string
		want string
	}{
		{"reverse lines", "reverseLines", "a\nb\nc", nil, "c\nb\na"},
		{"sort asc", "sortLines", "banana\napple\nCherry", []string{""}, "apple\nbanana\nCherry"},
		{"sort desc", "sortLines", "banana\napple\nCherry", []string{"desc"}, "Cherry\nbanana\napple"},
		{"sort bad order", "sortLines", "b\na", []string{"sideways"}, `Error: Sort order must be "asc" or "desc".`},
		{"dedup lines", "removeDuplicateLines", "a\nb\na\nc\nb", nil, "a\nb\nc"},
		{"dedup words", "removeDuplicateWords", "the cat The dog\ncat bird", nil, "the cat dog\nbird"},
		{"empty lines", "removeEmptyLines", "a\n\n  \nb", nil, "a\nb"},
		{"trim", "trimWhitespace", "  a  \n\tb\t", nil, "a\nb"},
		{"extra spaces", "removeExtraSpaces", "a    b\t\tc", nil, "a b c"},
		{"line numbers", "addLineNumbers", "x\ny", nil, "1. x\n2. y"},
		{"replace", "replaceText", "cat and cat", []string{"cat", "dog"}, "dog and dog"},
		{"replace empty search", "replaceText", "cat", []string{"", "dog"}, "Error: Search text cannot be empty."},
		{"sentences", "splitSentences", "One. Two!  Three?", nil, "One.\nTwo!\nThree?"},
		{"paragraphs", "splitParagraphs", "first\n\nsecond", nil, "Paragraph 1:\nfirst\n\nParagraph 2:\nsecond"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, reg, tt.tool, tt.in, tt.args...))
		})
	}
}

func TestCountTools(t *testing.T) {
	reg := NewRegistry(seeded())
	assert.Equal(t, "Word count: 4", run(t, reg, "countWords", "the quick brown fox"))
	assert.Equal(t, "Word count: 0", run(t, reg, "countWords", "   "))
	assert.Equal(t, "Characters: 9 (without spaces: 7)", run(t, reg, "countCharacters", "ab cd efg"))
	assert.Equal(t, "Lines: 3", run(t, reg, "countLines", "a\nb\nc\n"))
	assert.Equal(t, "Lines: 0", run(t, reg, "countLines", ""))
	assert.Equal(t, "the: 3\ncat: 2", run(t, reg, "wordFrequency", "The cat, the CAT and the dog.", "2"))
	assert.Equal(t, "Error: Limit must be a number between 1 and 1000.", run(t, reg, "wordFrequency", "a", "0"))

	stats := run(t, reg, "textStatistics", "One two. Three!\n\nFour")
	assert.Contains(t, stats, "Words: 4")
	assert.Contains(t, stats, "Sentences: 3")
	assert.Contains(t, stats, "Paragraphs: 2")
}

func TestCSVToJSON(t *testing.T) {
	reg := NewRegistry(seeded())
	out := run(t, reg, "csvToJson", "name,age\nAlice,28\nBob,35", "")
	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]string{"name": "Alice", "age": "28"}, rows[0])
	assert.Equal(t, map[string]string{"name": "Bob", "age": "35"}, rows[1])
	assert.Less(t, strings.Index(out, `"name"`), strings.Index(out, `"age"`), "column order is kept")

	out = run(t, reg, "csvToJson", "a;b\n1;2", ";")
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, "2", rows[0]["b"])

	assert.Equal(t, "Error: Delimiter must be a single character.", run(t, reg, "csvToJson", "a,b", ",,"))
	assert.Equal(t, "Error: CSV input is empty.", run(t, reg, "csvToJson", "  ", ""))
}

func TestJSONToCSV(t *testing.T) {
	reg := NewRegistry(seeded())
	out := run(t, reg, "jsonToCsv", `[{"name":"Alice","age":28},{"name":"Bob","city":"Paris","ok":true}]`)
	assert.Equal(t, "name,age,city,ok\nAlice,28,,\nBob,,Paris,true", out)
	assert.Equal(t, "Error: JSON must be an array of objects.", run(t, reg, "jsonToCsv", `[1,2]`))
	assert.True(t, textops.IsToolArgumentError(run(t, reg, "jsonToCsv", `{nope`)))
}

func TestRemoveCSVColumns_RoundTrip(t *testing.T) {
	reg := NewRegistry(seeded())
	trimmed := run(t, reg, "removeCsvColumns", "name,age,city\nAlice,28,Paris\nBob,35,Rome", "city")
	assert.Equal(t, "name,age\nAlice,28\nBob,35", trimmed)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(run(t, reg, "csvToJson", trimmed, "")), &rows))
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.NotContains(t, r, "city")
		assert.Len(t, r, 2)
	}

	assert.Equal(t, "Error: Specify at least one column to remove.", run(t, reg, "removeCsvColumns", "a,b", " , "))
	assert.Equal(t, "Error: None of the columns were found: zip.", run(t, reg, "removeCsvColumns", "a,b\n1,2", "zip"))
}

func TestExtractTools(t *testing.T) {
	reg := NewRegistry(seeded())
	text := "Mail bob@example.com or BOB@example.com, see https://go.dev/doc. and www.example.org #go #Go_lang 42 -3.5"
	assert.Equal(t, "bob@example.com", run(t, reg, "extractEmails", text))
	assert.Equal(t, "https://go.dev/doc\nwww.example.org", run(t, reg, "extractUrls", text))
	assert.Equal(t, "#go\n#Go_lang", run(t, reg, "extractHashtags", text))
	assert.Equal(t, "42\n-3.5", run(t, reg, "extractNumbers", "a 42 b -3.5"))
	assert.Equal(t, "No email addresses found.", run(t, reg, "extractEmails", "nothing"))
	assert.Equal(t, "No URLs found.", run(t, reg, "extractUrls", "nothing"))
	assert.Equal(t, "No numbers found.", run(t, reg, "extractNumbers", "nothing"))
	assert.Equal(t, "No hashtags found.", run(t, reg, "extractHashtags", "nothing"))

	assert.Equal(t, "ab1\nab22", run(t, reg, "extractPattern", "ab1 cd ab22", `ab\d+`))
	assert.Equal(t, "No matches found.", run(t, reg, "extractPattern", "xyz", `\d`))
	assert.Equal(t, "Error: Pattern cannot be empty.", run(t, reg, "extractPattern", "xyz", ""))
	out := run(t, reg, "extractPattern", "xyz", "(")
	assert.True(t, strings.HasPrefix(out, "Error: Invalid regular expression: "), out)
}

func TestFormatTools(t *testing.T) {
	reg := NewRegistry(seeded())
	in := "call 1234567890 or +1 (555) 123-4567"
	assert.Equal(t, "call (123) 456-7890 or (555) 123-4567", run(t, reg, "formatPhoneNumbers", in, ""))
	assert.Equal(t, "call 123-456-7890 or 555-123-4567", run(t, reg, "formatPhoneNumbers", in, "dashed"))
	assert.Equal(t, "call 123.456.7890 or 555.123.4567", run(t, reg, "formatPhoneNumbers", in, "DOTTED"))
	assert.Equal(t, "Error: Format must be one of: us, dashed, dotted.", run(t, reg, "formatPhoneNumbers", in, "eu"))

	assert.Equal(t, "total 1,234,567 and 1,234.5", run(t, reg, "formatNumbers", "total 1234567 and 1234.5", ""))
	assert.Equal(t, "1,234,567.89", run(t, reg, "formatNumbers", "1234567.891", "2"))
	assert.Equal(t, "Error: Decimals must be a number between 0 and 10.", run(t, reg, "formatNumbers", "1", "11"))
}

func TestFormatNumbers_ExactDigits(t *testing.T) {
	reg := NewRegistry(seeded())
	tests := []struct {
		name     string
		in       string
		decimals string
		want     string
	}{
		{"twenty digit integer", "12345678901234567890", "", "12,345,678,901,234,567,890"},
		{"long fraction kept", "0.1234567890123456789", "", "0.1234567890123456789"},
		{"already grouped", "id 1,234,567", "", "id 1,234,567"},
		{"negative", "-9876543.5", "", "-9,876,543.5"},
		{"pad fraction", "12.5", "3", "12.500"},
		{"round half up", "2.345", "2", "2.35"},
		{"round carries into integer", "999999.996", "2", "1,000,000.00"},
		{"round to integer", "1234.5", "0", "1,235"},
		{"negative zero after rounding", "-0.001", "2", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, reg, "formatNumbers", tt.in, tt.decimals))
		})
	}
}

func TestRandomTools_Seeded(t *testing.T) {
	a := NewRegistry(seeded())
	b := NewRegistry(seeded())
	text := "one\ntwo\nthree\nfour\nfive"
	for _, name := range []string{"shuffleLines", "shuffleWords", "shuffleCharacters", "randomizeCase"} {
		assert.Equal(t, run(t, a, name, text), run(t, b, name, text), name)
	}

	shuffled := strings.Split(run(t, a, "shuffleLines", text), "\n")
	want := strings.Split(text, "\n")
	slices.Sort(shuffled)
	slices.Sort(want)
	assert.Equal(t, want, shuffled)

	mixed := run(t, a, "randomizeCase", "Hello World")
	assert.True(t, strings.EqualFold("Hello World", mixed))

	chars := run(t, a, "shuffleCharacters", "abc de")
	assert.Len(t, chars, 6)
	assert.Equal(t, " ", chars[3:4])
}

func TestGenerators(t *testing.T) {
	reg := NewRegistry(seeded())
	lorem := run(t, reg, "generateLoremIpsum", "", "2")
	paras := strings.Split(lorem, "\n\n")
	require.Len(t, paras, 2)
	assert.True(t, strings.HasPrefix(paras[0], "Lorem ipsum dolor sit amet"))
	assert.Len(t, strings.Fields(run(t, reg, "generateRandomWords", "", "7")), 7)
	letters := run(t, reg, "generateRandomLetters", "", "25")
	assert.Len(t, letters, 25)
	assert.Equal(t, strings.ToLower(letters), letters)

	assert.Equal(t, "Error: Paragraph count must be a number between 1 and 20.", run(t, reg, "generateLoremIpsum", "", "21"))
	assert.Equal(t, "Error: Word count must be a number between 1 and 1000.", run(t, reg, "generateRandomWords", "", "0"))
	assert.Equal(t, "Error: Letter count must be a number between 1 and 10000.", run(t, reg, "generateRandomLetters", "", "x"))
}
