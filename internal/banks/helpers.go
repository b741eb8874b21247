package banks

import (
	"regexp"
	"strings"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/money"
)

var (
	// firstAmountRe finds the first currency-amount occurrence in a body.
	// The capture must end on a digit so a sentence-ending period is not
	// swallowed into the amount.
	firstAmountRe = regexp.MustCompile(`\$\s*([0-9](?:[0-9.,]*[0-9])?)`)

	// balanceRe captures the amount of an embedded balance clause.
	balanceRe = regexp.MustCompile(`(?i)saldo\s*(?:disponible)?\s*:?\s*(?:es\s+)?\$?\s*([0-9](?:[0-9.,]*[0-9])?)`)

	// cardRe captures a 4-digit card suffix in its usual notations.
	cardRe = regexp.MustCompile(`(?i)(?:\*\s*|terminada\s+en\s+|t\.?\s*c(?:red)?\.?\s*)([0-9]{4})\b`)

	// referenceRe captures a reference or approval code.
	referenceRe = regexp.MustCompile(`(?i)(?:ref(?:erencia)?|aprobaci[oó]n|comprobante)\s*:?\s*#?\s*([A-Za-z0-9-]{4,})`)

	// balanceClauseRe matches a trailing balance sentence appended to an
	// extracted field, so it can be stripped off.
	balanceClauseRe = regexp.MustCompile(`(?i)[.,;]?\s*(?:consulte\s+)?saldo\b.*$`)
)

// foldBody lowercases and de-accents a body for keyword checks.
func foldBody(body string) string {
	return common.FoldAccents(body)
}

// findAmount returns the first parseable currency amount in the body.
func findAmount(body string) (float64, bool) {
	m := firstAmountRe.FindStringSubmatch(body)
	if m == nil {
		return 0, false
	}
	return money.Parse(m[1])
}

// findBalance returns the amount of a balance clause, if one is present
// and parseable.
func findBalance(body string) *float64 {
	m := balanceRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	value, ok := money.Parse(m[1])
	if !ok {
		return nil
	}
	return &value
}

// findCardLast4 returns the 4-digit card suffix, or "".
func findCardLast4(body string) string {
	m := cardRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}

// findReference returns a reference code, or "".
func findReference(body string) string {
	m := referenceRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}

// cleanField trims surrounding punctuation and whitespace from an extracted
// field and strips a trailing balance clause.
func cleanField(s string) string {
	s = balanceClauseRe.ReplaceAllString(s, "")
	return strings.TrimFunc(s, func(r rune) bool {
		switch r {
		case '.', ',', ';', ':', '-', '*', '(', ')', '"', '\'':
			return true
		}
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// extractAfter returns the text following the first occurrence of one of
// the markers (word-bounded, case-insensitive), cut at the next sentence
// boundary. Used for context extractions such as "recipient after 'a'" or
// "merchant after 'en'".
func extractAfter(body string, markers ...string) string {
	for _, marker := range markers {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(marker) + `\s+`)
		if err != nil {
			continue
		}
		loc := re.FindStringIndex(body)
		if loc == nil {
			continue
		}
		rest := body[loc[1]:]
		if cut := strings.IndexAny(rest, ".;\n"); cut >= 0 {
			rest = rest[:cut]
		}
		if field := cleanField(rest); field != "" {
			return field
		}
	}
	return ""
}
