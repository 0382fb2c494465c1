package textops

import (
	"strings"
)

// Reply grammar tokens.
const (
	toolMarker      = "TOOL:"
	reasoningMarker = "REASONING:"
	argSeparator    = "::"
	reasoningKey    = "REASONING"
)

// ParsedReply is the structured content of a delegated reasoning reply.
type ParsedReply struct {
	Tool      string
	Args      []Arg // in reply order, names as written by the backend
	Reasoning string
}

// Values returns the parsed argument values in reply order.
func (p ParsedReply) Values() []string {
	out := make([]string, len(p.Args))
	for i, a := range p.Args {
		out[i] = a.Value
	}
	return out
}

// ParseReply extracts the tool, arguments and reasoning from a reply of the form
//
//	TOOL: <name>
//	<arg_name>::<value>
//	REASONING: <free text>
//
// The tool comes from the first TOOL: line (ToolCustom when absent or empty).
// Every line holding "::" with a non-empty key is an argument, in order; binding is
// positional, so keys are kept only for display. Lines keyed REASONING, and the
// REASONING: line itself, are not arguments.
// Reasoning is everything after the first REASONING: marker, or the whole reply when
// the marker is missing.
func ParseReply(reply string) ParsedReply {
	out := ParsedReply{Tool: ToolCustom}
	toolFound := false
	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !toolFound && strings.HasPrefix(trimmed, toolMarker) {
			toolFound = true
			if name := strings.TrimSpace(strings.TrimPrefix(trimmed, toolMarker)); name != "" {
				out.Tool = name
			}
			continue
		}
		name, value, ok := strings.Cut(trimmed, argSeparator)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, reasoningKey) || strings.HasPrefix(trimmed, reasoningMarker) {
			continue
		}
		out.Args = append(out.Args, Arg{Name: name, Value: strings.TrimSpace(value)})
	}
	if _, after, ok := strings.Cut(reply, reasoningMarker); ok {
		out.Reasoning = strings.TrimSpace(after)
	} else {
		out.Reasoning = strings.TrimSpace(reply)
	}
	return out
}
