package quality

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

const (
	// DefaultLangMinRunes is the fewest letters a text needs before identification is attempted.
	DefaultLangMinRunes = 10
	// DefaultLangConfidence is the lowest detector confidence accepted as an answer.
	DefaultLangConfidence = 0.5
)

// DetectLanguage returns the ISO 639-3 code of text, or "" when the text is
// too short or the detector is not confident enough.
func DetectLanguage(text string, minRunes int, minConfidence float64) string {
	if countLetters(text) < minRunes {
		return ""
	}
	info := whatlanggo.Detect(text)
	if info.Confidence < minConfidence {
		return ""
	}
	return info.Lang.Iso6393()
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
