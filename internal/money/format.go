package money

import (
	"math"
	"strings"
)

// SymbolPosition says where a currency symbol sits relative to the digits.
type SymbolPosition string

// Symbol position constants.
const (
	SymbolBefore SymbolPosition = "BEFORE"
	SymbolAfter  SymbolPosition = "AFTER"
	SymbolNone   SymbolPosition = "NONE"
)

// AmountFormat describes how amounts are rendered for display. It is
// derived from observed samples, never persisted.
type AmountFormat struct {
	ThousandsSep   string
	DecimalSep     string
	CurrencySymbol string
	SymbolPosition SymbolPosition
}

// DefaultFormat is the Colombian convention used when detection has no
// samples to work with.
func DefaultFormat() AmountFormat {
	return AmountFormat{
		ThousandsSep:   ".",
		DecimalSep:     ",",
		CurrencySymbol: "$",
		SymbolPosition: SymbolBefore,
	}
}

// DetectFormat infers separator roles and a currency symbol from a sample
// of amount strings. Samples that vote for neither convention are ignored.
func DetectFormat(samples []string) AmountFormat {
	format := DefaultFormat()

	colombian, us := 0, 0
	symbolBefore, symbolAfter := 0, 0
	examined := 0
	for _, sample := range samples {
		trimmed := strings.TrimSpace(sample)
		if trimmed == "" {
			continue
		}
		examined++
		if strings.HasPrefix(trimmed, "$") || hasPrefixFold(trimmed, "US$") || hasPrefixFold(trimmed, "COP") {
			symbolBefore++
		} else if strings.HasSuffix(trimmed, "$") || hasSuffixFold(trimmed, "COP") || hasSuffixFold(trimmed, "USD") {
			symbolAfter++
		}

		switch detectDecimalSep(stripCurrency(sample)) {
		case ",":
			colombian++
		case ".":
			us++
		}
	}

	if us > colombian {
		format.ThousandsSep = ","
		format.DecimalSep = "."
	}
	// Without examined samples there is no symbol evidence either way;
	// keep the default symbol instead of reading absence into nothing.
	switch {
	case examined > 0 && symbolBefore == 0 && symbolAfter == 0:
		format.CurrencySymbol = ""
		format.SymbolPosition = SymbolNone
	case symbolAfter > symbolBefore:
		format.SymbolPosition = SymbolAfter
	}
	return format
}

// detectDecimalSep returns the separator acting as decimal in one cleaned
// sample, or "" when the sample carries no decimal evidence.
func detectDecimalSep(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			return "."
		}
		return ","
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 && len(s)-lastDot-1 == 2 {
			return "."
		}
		return "," // dots are grouping, so the convention is Colombian
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 == 2 {
			return ","
		}
		return "."
	}
	return ""
}

// Format renders an amount under the given format. For integer and
// two-digit-fraction values the result parses back to the same number.
func Format(amount float64, format AmountFormat) string {
	negative := amount < 0
	amount = math.Abs(amount)

	cents := int64(math.Round(amount * 100))
	intPart := cents / 100
	fracPart := cents % 100

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	if format.CurrencySymbol != "" && format.SymbolPosition == SymbolBefore {
		b.WriteString(format.CurrencySymbol)
	}
	b.WriteString(groupDigits(intPart, format.ThousandsSep))
	if fracPart != 0 {
		b.WriteString(format.DecimalSep)
		b.WriteByte(byte('0' + fracPart/10))
		b.WriteByte(byte('0' + fracPart%10))
	}
	if format.CurrencySymbol != "" && format.SymbolPosition == SymbolAfter {
		b.WriteString(format.CurrencySymbol)
	}
	return b.String()
}

func groupDigits(n int64, sep string) string {
	digits := []byte(nil)
	if n == 0 {
		return "0"
	}
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	var b strings.Builder
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteString(sep)
		}
	}
	return b.String()
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
