package sentiment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases raw review text. Whitespace-only input yields "".
// Punctuation is kept; tokenization splits on whitespace later.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	// A Caser keeps state, so build one per call.
	return cases.Lower(language.Indonesian).String(norm.NFC.String(raw))
}
