package quality

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalization controls how texts are canonicalised before the copy and
// echo comparisons. NFC composition and trimming always apply.
type Normalization struct {
	CaseFold      bool // Unicode case folding
	CollapseSpace bool // collapse whitespace runs into a single space
}

// DefaultNormalization folds case and collapses whitespace.
func DefaultNormalization() Normalization {
	return Normalization{CaseFold: true, CollapseSpace: true}
}

// Apply returns the canonical form of s.
func (n Normalization) Apply(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if n.CollapseSpace {
		s = strings.Join(strings.Fields(s), " ")
	}
	if n.CaseFold {
		s = cases.Fold().String(s)
	}
	return s
}

// Words splits s into case-folded NFC tokens. Anything that is not a letter,
// mark or digit separates tokens, so punctuation never forms a token.
func Words(s string) []string {
	s = cases.Fold().String(norm.NFC.String(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r)
	})
}

// TokenSet returns the distinct Words of s.
func TokenSet(s string) map[string]struct{} {
	words := Words(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Overlap is the Jaccard index |a∩b| / |a∪b| of two token sets; 0 when both are empty.
func Overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
