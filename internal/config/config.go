// Package config resolves command settings from flags and an optional config file.
//
// Precedence is: explicitly set flag, then config file, then flag default.
// Environment variables are not consulted.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/peekknuf/teatool/internal/dataset"
	"github.com/peekknuf/teatool/internal/quality"
)

// Keys shared by flags and config files.
const (
	KeyDelimiter      = "delimiter"
	KeyHeader         = "header"
	KeyQuote          = "quote"
	KeyTrimSpace      = "trim-space"
	KeyOutput         = "output"
	KeyLedger         = "ledger"
	KeyStripPrompt    = "strip-prompt"
	KeyPromptLabels   = "prompt-label"
	KeyHallucination  = "hallucination-threshold"
	KeyCaseFold       = "case-fold"
	KeyCollapseSpace  = "collapse-space"
	KeyLang           = "lang"
	KeyLangMinRunes   = "lang-min-runes"
	KeyLangConfidence = "lang-confidence"
)

// DefaultConfigName is looked up in $HOME when no --config is given.
const DefaultConfigName = ".teatool"

// Settings is everything a run needs.
type Settings struct {
	Dataset dataset.Options
	Quality quality.Options
	Output  string
	Ledger  string
}

// RegisterFlags adds the analysis flags shared by every command to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	q := quality.DefaultOptions()

	fs.String(KeyDelimiter, "auto",
		`Field delimiter: a single character, \t, tab, comma, semicolon, pipe or auto`)
	fs.Bool(KeyHeader, true, "First row is a header (source, translation, reference)")
	fs.String(KeyQuote, `"`, "Quote character; empty disables quoting")
	fs.Bool(KeyTrimSpace, false, "Trim spaces around unquoted fields")
	fs.String(KeyLedger, "", "Also upsert corpus rates into this CSV ledger")
	fs.Bool(KeyStripPrompt, false, "Remove an echoed source and language labels before checking")
	fs.StringSlice(KeyPromptLabels, nil, `Language labels to strip with --strip-prompt (e.g. "English,Czech")`)
	fs.Float64(KeyHallucination, q.HallucinationOverlap,
		"Token overlap with the reference below which a row is a possible hallucination")
	fs.Bool(KeyCaseFold, q.Normalization.CaseFold, "Ignore case when checking for source copies")
	fs.Bool(KeyCollapseSpace, q.Normalization.CollapseSpace, "Ignore whitespace differences when checking for source copies")
	fs.Bool(KeyLang, q.DetectLanguage, "Identify languages of translation, source and reference")
	fs.Int(KeyLangMinRunes, q.LangMinRunes, "Fewest letters needed before identifying a language")
	fs.Float64(KeyLangConfidence, q.LangConfidence, "Lowest accepted language identification confidence")
}

// Load builds a viper instance from cfgFile (or $HOME/.teatool.yaml when it
// exists) with fs bound on top.
func Load(cfgFile string, fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

// Resolve turns v into Settings, validating delimiter, quote and thresholds.
func Resolve(v *viper.Viper) (Settings, error) {
	delim, err := ParseDelimiter(v.GetString(KeyDelimiter))
	if err != nil {
		return Settings{}, err
	}
	quote, err := parseQuote(v.GetString(KeyQuote))
	if err != nil {
		return Settings{}, err
	}
	if delim != 0 && delim == quote {
		return Settings{}, fmt.Errorf("delimiter and quote cannot both be %q", delim)
	}

	threshold := v.GetFloat64(KeyHallucination)
	if threshold < 0 || threshold > 1 {
		return Settings{}, fmt.Errorf("%s must be between 0 and 1, got %v", KeyHallucination, threshold)
	}
	confidence := v.GetFloat64(KeyLangConfidence)
	if confidence < 0 || confidence > 1 {
		return Settings{}, fmt.Errorf("%s must be between 0 and 1, got %v", KeyLangConfidence, confidence)
	}

	return Settings{
		Dataset: dataset.Options{
			Delimiter: delim,
			Quote:     quote,
			Header:    v.GetBool(KeyHeader),
			TrimSpace: v.GetBool(KeyTrimSpace),
		},
		Quality: quality.Options{
			Normalization: quality.Normalization{
				CaseFold:      v.GetBool(KeyCaseFold),
				CollapseSpace: v.GetBool(KeyCollapseSpace),
			},
			HallucinationOverlap: threshold,
			StripPrompt:          v.GetBool(KeyStripPrompt),
			PromptLabels:         v.GetStringSlice(KeyPromptLabels),
			DetectLanguage:       v.GetBool(KeyLang),
			LangMinRunes:         v.GetInt(KeyLangMinRunes),
			LangConfidence:       confidence,
		},
		Output: v.GetString(KeyOutput),
		Ledger: v.GetString(KeyLedger),
	}, nil
}

var delimiterNames = map[string]rune{
	"auto":      0,
	`\t`:        '\t',
	"tab":       '\t',
	"comma":     ',',
	"semicolon": ';',
	"pipe":      '|',
}

// ParseDelimiter maps a --delimiter token to a rune; "auto" and "" give 0.
func ParseDelimiter(token string) (rune, error) {
	if token == "" {
		return 0, nil
	}
	if r, ok := delimiterNames[strings.ToLower(token)]; ok {
		return r, nil
	}
	r, size := utf8.DecodeRuneInString(token)
	if size != len(token) || r >= utf8.RuneSelf || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("unsupported delimiter %q: use a single ASCII character or a name like tab", token)
	}
	return r, nil
}

func parseQuote(token string) (rune, error) {
	if token == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(token)
	if size != len(token) || r >= utf8.RuneSelf {
		return 0, fmt.Errorf("unsupported quote %q: use a single ASCII character or an empty string", token)
	}
	return r, nil
}
