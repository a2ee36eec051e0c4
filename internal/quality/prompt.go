package quality

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// StripPrompt removes an echoed prompt from translation. It only acts when the
// translation contains the source verbatim: every occurrence of the source and
// any "<label>:" markers are deleted and the rest is trimmed.
func StripPrompt(source, translation string, labels []string) string {
	t := strings.TrimSpace(translation)
	if source == "" || !strings.Contains(t, source) {
		return t
	}

	res := deleteAnchored(t, source, "")
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		res = deleteAnchored(res, label, `\s*:`)
	}
	return strings.TrimSpace(res)
}

// deleteAnchored removes every match of literal followed by the suffix pattern.
// Literals starting with an ASCII word character must start at a word boundary.
func deleteAnchored(s, literal, suffix string) string {
	pattern := regexp.QuoteMeta(literal) + suffix
	if isWordByte(literal[0]) {
		// \b is ASCII-only in RE2
		pattern = `\b` + pattern
	}
	return regexp.MustCompile(pattern).ReplaceAllLiteralString(s, "")
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// pairLanguages maps the language codes that prefix dataset file names to the
// labels models put in front of their prompts.
var pairLanguages = map[string]string{
	"hien": "English", "hi": "Hindi",
	"csen": "English", "cs": "Czech",
	"fren": "English", "fr": "French",
	"deen": "English", "de": "German",
	"en": "English",
}

// PromptLabelsFromName infers prompt labels from the first two "_"-separated
// parts of a file name, so "csen_cs_wmt22.tsv" gives English and Czech.
// Unknown parts are skipped; nil means nothing was recognised.
func PromptLabelsFromName(path string) []string {
	base := filepath.Base(path)
	parts := strings.SplitN(strings.TrimSuffix(base, filepath.Ext(base)), "_", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}

	var labels []string
	for _, part := range parts {
		label, ok := pairLanguages[strings.ToLower(part)]
		if ok && !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
	}
	return labels
}
