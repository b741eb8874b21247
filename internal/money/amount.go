// Package money parses and formats locale-ambiguous amount strings. Bank
// messages mix the Colombian convention (thousands ".", decimal ",") with
// the US one (thousands ",", decimal "."), so the separator roles are
// detected per input instead of configured globally.
package money

import (
	"strconv"
	"strings"
	"unicode"
)

// currencyTokens are stripped before parsing, longest first so "US$" wins
// over "$".
var currencyTokens = []string{"US$", "COP$", "USD", "COP", "$"}

// Parse converts an amount string into a number, auto-detecting which
// separator is decimal and which is thousands grouping. The boolean is
// false for blank input or anything that is not a plain amount.
func Parse(s string) (float64, bool) {
	cleaned := stripCurrency(s)
	if cleaned == "" {
		return 0, false
	}

	for _, r := range cleaned {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return 0, false
		}
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	var normalized string
	switch {
	case lastDot < 0 && lastComma < 0:
		normalized = cleaned
	case lastDot >= 0 && lastComma >= 0:
		// Both separators present: whichever occurs later is the decimal
		// separator, the other is grouping.
		if lastDot > lastComma {
			normalized = strings.ReplaceAll(cleaned, ",", "")
		} else {
			normalized = strings.ReplaceAll(cleaned, ".", "")
			normalized = strings.ReplaceAll(normalized, ",", ".")
		}
	case lastDot >= 0:
		normalized = resolveSingleSeparator(cleaned, '.')
	default:
		normalized = resolveSingleSeparator(cleaned, ',')
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// resolveSingleSeparator handles a string using only one separator
// character: it is decimal only when it occurs once and exactly two digits
// follow it; otherwise every occurrence is thousands grouping.
func resolveSingleSeparator(s string, sep rune) string {
	sepStr := string(sep)
	idx := strings.LastIndex(s, sepStr)
	isDecimal := strings.Count(s, sepStr) == 1 && len(s)-idx-1 == 2
	if isDecimal {
		return strings.ReplaceAll(s, sepStr, ".")
	}
	return strings.ReplaceAll(s, sepStr, "")
}

func stripCurrency(s string) string {
	for _, tok := range currencyTokens {
		for {
			idx := indexFold(s, tok)
			if idx < 0 {
				break
			}
			s = s[:idx] + s[idx+len(tok):]
		}
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// indexFold is a case-insensitive strings.Index for ASCII tokens.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToUpper(s), strings.ToUpper(substr))
}
