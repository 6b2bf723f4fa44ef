package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dotless and dotted i have no canonical decomposition
var turkishI = strings.NewReplacer("ı", "i", "İ", "I")

// Fold lowercases s and strips diacritics, so "Geçmiş" and "gecmis" compare equal
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, turkishI.Replace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
