package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/skosovsky/textops"
)

func csvTools() []textops.Tool {
	return []textops.Tool{
		textops.MustTool("csvToJson", "Convert CSV with a header row into a JSON array of objects. delimiter defaults to a comma.", textops.RenderOutput, []string{"delimiter"}, csvToJSON, textops.WithTags("csv", "json")),
		textops.MustTool("jsonToCsv", "Convert a JSON array of flat objects into CSV.", textops.RenderOutput, nil, jsonToCSV, textops.WithTags("csv", "json")),
		textops.MustTool("removeCsvColumns", "Remove the named CSV columns. columns is a comma-separated list of header names.", textops.RenderDiff, []string{"columns"}, removeCSVColumns, textops.WithTags("csv")),
	}
}

// field is one key of a JSON object; rows keep the CSV column order.
type field struct {
	key   string
	value string
}

type row []field

func (r row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func parseDelimiter(s string) (rune, bool) {
	switch s {
	case "":
		return ',', true
	case `\t`, "tab":
		return '\t', true
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, r != '"' && r != '\n' && r != '\r'
}

func readCSV(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	return r.ReadAll()
}

func writeCSV(records [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func csvToJSON(text string, args ...string) string {
	delim, ok := parseDelimiter(args[0])
	if !ok {
		return textops.ToolArgumentError("Delimiter must be a single character.")
	}
	records, err := readCSV(text, delim)
	if err != nil {
		return textops.ToolArgumentError("Invalid CSV: %v", err)
	}
	if len(records) == 0 {
		return textops.ToolArgumentError("CSV input is empty.")
	}
	header := records[0]
	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		r := make(row, len(header))
		for i, name := range header {
			r[i] = field{key: strings.TrimSpace(name)}
			if i < len(rec) {
				r[i].value = rec[i]
			}
		}
		rows = append(rows, r)
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return textops.ToolArgumentError("Could not encode JSON: %v", err)
	}
	return string(out)
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObjects
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

const notObjectsMessage = "JSON must be an array of objects."

var errNotObjects = errors.New("json value is not an object")

func cellValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprint(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

func jsonToCSV(text string, _ ...string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return textops.ToolArgumentError("JSON input is empty.")
	}
	var items []json.RawMessage
	if strings.HasPrefix(text, "{") {
		items = []json.RawMessage{json.RawMessage(text)}
	} else if err := json.Unmarshal([]byte(text), &items); err != nil {
		return textops.ToolArgumentError("Invalid JSON: %v", err)
	}

	var header []string
	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		keys, err := objectKeys(item)
		if err != nil {
			if errors.Is(err, errNotObjects) {
				return textops.ToolArgumentError(notObjectsMessage)
			}
			return textops.ToolArgumentError("Invalid JSON: %v", err)
		}
		for _, k := range keys {
			if !slices.Contains(header, k) {
				header = append(header, k)
			}
		}
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return textops.ToolArgumentError("Invalid JSON: %v", err)
		}
		objects = append(objects, obj)
	}
	if len(header) == 0 {
		return textops.ToolArgumentError(notObjectsMessage)
	}

	records := make([][]string, 0, len(objects)+1)
	records = append(records, header)
	for _, obj := range objects {
		rec := make([]string, len(header))
		for i, k := range header {
			rec[i] = cellValue(obj[k])
		}
		records = append(records, rec)
	}
	out, err := writeCSV(records)
	if err != nil {
		return textops.ToolArgumentError("Could not write CSV: %v", err)
	}
	return out
}

func removeCSVColumns(text string, args ...string) string {
	var drop []string
	for _, c := range strings.Split(args[0], ",") {
		if c = strings.TrimSpace(c); c != "" {
			drop = append(drop, caseFold(c))
		}
	}
	if len(drop) == 0 {
		return textops.ToolArgumentError("Specify at least one column to remove.")
	}
	records, err := readCSV(text, ',')
	if err != nil {
		return textops.ToolArgumentError("Invalid CSV: %v", err)
	}
	if len(records) == 0 {
		return textops.ToolArgumentError("CSV input is empty.")
	}
	var keep []int
	for i, name := range records[0] {
		if !slices.Contains(drop, caseFold(strings.TrimSpace(name))) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return textops.ToolArgumentError("Cannot remove every column.")
	}
	if len(keep) == len(records[0]) {
		return textops.ToolArgumentError("None of the columns were found: %s.", strings.TrimSpace(args[0]))
	}
	out := make([][]string, len(records))
	for r, rec := range records {
		out[r] = make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(rec) {
				out[r] = append(out[r], rec[i])
			} else {
				out[r] = append(out[r], "")
			}
		}
	}
	res, err := writeCSV(out)
	if err != nil {
		return textops.ToolArgumentError("Could not write CSV: %v", err)
	}
	return res
}
