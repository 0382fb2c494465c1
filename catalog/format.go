package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skosovsky/textops"
)

var (
	phonePattern     = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
	formatNumPattern = regexp.MustCompile(`-?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`)
)

// Phone layouts accepted by formatPhoneNumbers.
var phoneLayouts = map[string]string{
	"us":     "(%s) %s-%s",
	"dashed": "%s-%s-%s",
	"dotted": "%s.%s.%s",
}

func formatTools() []textops.Tool {
	return []textops.Tool{
		textops.MustTool("formatPhoneNumbers", "Reformat 10-digit phone numbers. format is us (default), dashed or dotted.", textops.RenderDiff, []string{"format"}, formatPhoneNumbers, textops.WithTags("format")),
		textops.MustTool("formatNumbers", "Add thousands separators to numbers. decimals is the number of decimal places (0-10).", textops.RenderDiff, []string{"decimals"}, formatNumbers, textops.WithTags("format")),
	}
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatPhoneNumbers(text string, args ...string) string {
	name := strings.ToLower(strings.TrimSpace(args[0]))
	if name == "" {
		name = "us"
	}
	layout, ok := phoneLayouts[name]
	if !ok {
		return textops.ToolArgumentError("Format must be one of: us, dashed, dotted.")
	}
	return phonePattern.ReplaceAllStringFunc(text, func(m string) string {
		d := digitsOf(m)
		if len(d) == 11 && d[0] == '1' {
			d = d[1:]
		}
		if len(d) != 10 {
			return m
		}
		return fmt.Sprintf(layout, d[:3], d[3:6], d[6:])
	})
}

func formatNumbers(text string, args ...string) string {
	fixed := strings.TrimSpace(args[0]) != ""
	decimals, ok := intArg(args[0], 0, 0, 10)
	if !ok {
		return textops.ToolArgumentError("Decimals must be a number between 0 and 10.")
	}
	return formatNumPattern.ReplaceAllStringFunc(text, func(m string) string {
		return formatDecimal(strings.ReplaceAll(m, ",", ""), decimals, fixed)
	})
}

// formatDecimal groups the integer digits of plain in threes. With fixed the fraction
// is rounded half away from zero or zero-padded to decimals places; otherwise it is
// kept as written. Digits are never routed through a float.
func formatDecimal(plain string, decimals int, fixed bool) string {
	digits, neg := strings.CutPrefix(plain, "-")
	intPart, frac, _ := strings.Cut(digits, ".")
	if fixed {
		intPart, frac = roundDigits(intPart, frac, decimals)
	}
	var b strings.Builder
	if neg && strings.Trim(intPart+frac, "0") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func roundDigits(intPart, frac string, decimals int) (string, string) {
	if len(frac) <= decimals {
		return intPart, frac + strings.Repeat("0", decimals-len(frac))
	}
	all := []byte(intPart + frac[:decimals])
	if frac[decimals] >= '5' {
		i := len(all) - 1
		for ; i >= 0 && all[i] == '9'; i-- {
			all[i] = '0'
		}
		if i < 0 {
			all = append([]byte{'1'}, all...)
		} else {
			all[i]++
		}
	}
	cut := len(all) - decimals
	return string(all[:cut]), string(all[cut:])
}
