package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	en := "The committee will publish its final report on the proposed changes next week."
	fr := "Le comité publiera la semaine prochaine son rapport final sur les modifications proposées."

	assert.Equal(t, "eng", DetectLanguage(en, DefaultLangMinRunes, DefaultLangConfidence))
	assert.Equal(t, "fra", DetectLanguage(fr, DefaultLangMinRunes, DefaultLangConfidence))

	// too short to say anything
	assert.Equal(t, "", DetectLanguage("ok", DefaultLangMinRunes, DefaultLangConfidence))
	assert.Equal(t, "", DetectLanguage("12345678901234", DefaultLangMinRunes, DefaultLangConfidence))
}

func TestLanguageFlags(t *testing.T) {
	en := "The committee will publish its final report on the proposed changes next week."
	fr := "Le comité publiera la semaine prochaine son rapport final sur les modifications proposées."

	// an untranslated row: output is still in the source language
	f := ComputeRowFlags(row(en, en, fr), DefaultOptions())
	assert.Equal(t, "eng", f.TranslationLang)
	assert.True(t, f.SameLangAsSource)
	assert.False(t, f.SameLangAsReference)

	off := ComputeRowFlags(row(en, en, fr), noLang())
	assert.Empty(t, off.TranslationLang)
	assert.False(t, off.SameLangAsSource)
}
