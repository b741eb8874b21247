package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldAccents lowercases s and strips diacritics, so "Recepción" and
// "recepcion" compare equal during keyword matching.
func FoldAccents(s string) string {
	folded, _, err := transform.String(accentStripper, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}
