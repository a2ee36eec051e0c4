// Package quality computes per-row translation quality flags and corpus rates.
//
// All checks are lexical heuristics. A hallucination flag means the
// translation shares almost no vocabulary with the reference; it does not
// prove the content is fabricated, and a free but correct translation can
// trip it.
package quality

import (
	"strings"
	"unicode/utf8"

	"github.com/peekknuf/teatool/internal/dataset"
)

// DefaultHallucinationOverlap is the token overlap below which a translation
// is flagged as a possible hallucination.
const DefaultHallucinationOverlap = 0.1

// Options tunes the row checks.
type Options struct {
	Normalization        Normalization
	HallucinationOverlap float64

	// StripPrompt removes an echoed source and "<label>:" markers before the
	// empty, hallucination, repetition and language checks.
	StripPrompt  bool
	PromptLabels []string

	DetectLanguage bool
	LangMinRunes   int
	LangConfidence float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Normalization:        DefaultNormalization(),
		HallucinationOverlap: DefaultHallucinationOverlap,
		DetectLanguage:       true,
		LangMinRunes:         DefaultLangMinRunes,
		LangConfidence:       DefaultLangConfidence,
	}
}

// RowFlags holds everything derived from a single row.
type RowFlags struct {
	Empty         bool
	Copy          bool
	SourceEcho    bool
	Overlap       float64
	Hallucination bool
	Repetition    bool

	TranslationLang     string
	SourceLang          string
	ReferenceLang       string
	SameLangAsSource    bool
	SameLangAsReference bool

	// Checked is the translation text the checks ran on.
	Checked string
}

// ComputeRowFlags derives the flags of one row.
//
//   - Empty: the checked translation is empty or whitespace-only.
//   - Copy: the normalised translation equals the non-empty normalised source.
//   - SourceEcho: the normalised source occurs inside a longer normalised translation.
//   - Hallucination: non-empty translation, reference with at least one token,
//     and token overlap below HallucinationOverlap.
//   - Repetition: the translation is a shorter unit repeated end to end.
func ComputeRowFlags(row dataset.Row, opts Options) RowFlags {
	checked := row.Translation
	if opts.StripPrompt {
		checked = StripPrompt(row.Source, row.Translation, opts.PromptLabels)
	}

	f := RowFlags{Checked: checked}
	f.Empty = strings.TrimSpace(checked) == ""

	src := opts.Normalization.Apply(row.Source)
	mt := opts.Normalization.Apply(row.Translation)
	if src != "" && mt != "" {
		f.Copy = mt == src
		f.SourceEcho = !f.Copy && strings.Contains(mt, src)
	}

	refTokens := TokenSet(row.Reference)
	f.Overlap = Overlap(TokenSet(checked), refTokens)
	f.Hallucination = !f.Empty && len(refTokens) > 0 && f.Overlap < opts.HallucinationOverlap

	f.Repetition = !f.Empty && IsRepetition(checked)

	if opts.DetectLanguage {
		f.TranslationLang = DetectLanguage(checked, opts.LangMinRunes, opts.LangConfidence)
		f.SourceLang = DetectLanguage(row.Source, opts.LangMinRunes, opts.LangConfidence)
		f.ReferenceLang = DetectLanguage(row.Reference, opts.LangMinRunes, opts.LangConfidence)
		f.SameLangAsSource = f.TranslationLang != "" && f.TranslationLang == f.SourceLang
		f.SameLangAsReference = f.TranslationLang != "" && f.TranslationLang == f.ReferenceLang
	}

	return f
}

// ComputeAll runs ComputeRowFlags over every row, preserving order.
func ComputeAll(rows []dataset.Row, opts Options) []RowFlags {
	flags := make([]RowFlags, len(rows))
	for i, row := range rows {
		flags[i] = ComputeRowFlags(row, opts)
	}
	return flags
}

// IsRepetition reports whether s consists of one shorter unit repeated. Word
// sequences are checked first ("la la la"); a single unspaced word falls back
// to a rune-level check ("hahaha", "你好你好").
func IsRepetition(s string) bool {
	words := Words(s)
	switch {
	case len(words) == 0:
		return false
	case len(words) == 1:
		return isRepeatedSubstring(words[0])
	default:
		return isPeriodic(words)
	}
}

// isRepeatedSubstring reports whether s occurs in (s+s) with the first and last
// byte removed, which holds exactly when s is a repetition of a shorter string.
func isRepeatedSubstring(s string) bool {
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	doubled := s + s
	return strings.Contains(doubled[1:len(doubled)-1], s)
}

func isPeriodic(words []string) bool {
	n := len(words)
	for period := 1; period <= n/2; period++ {
		if n%period != 0 {
			continue
		}
		match := true
		for i := period; i < n; i++ {
			if words[i] != words[i-period] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
