package textops

// BindArgs pairs declared parameter names with values strictly by position: the i-th
// value is bound to the i-th declared parameter after the leading text parameter.
// Names carried by the values' source are ignored, so a reply that lists arguments
// out of declared order binds them to the wrong parameters. The result has
// min(len(params without text), len(values)) entries.
func BindArgs(params []string, values []string) []Arg {
	if len(params) > 0 && params[0] == TextParam {
		params = params[1:]
	}
	n := min(len(params), len(values))
	out := make([]Arg, n)
	for i := range n {
		out[i] = Arg{Name: params[i], Value: values[i]}
	}
	return out
}
