package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, p *CSVParser) []*Record {
	t.Helper()
	var records []*Record
	for {
		rec, err := p.NextRecord()
		require.NoError(t, err)
		if rec == nil {
			return records
		}
		records = append(records, rec)
	}
}

func TestParseTabSeparatedWithHeader(t *testing.T) {
	p := NewCSVParser(DefaultParserConfig())
	require.NoError(t, p.Parse([]byte("source\ttranslation\treference\nhello\tbonjour\tsalut\r\nbye\tau revoir\tciao")))

	require.NotNil(t, p.Header())
	assert.Equal(t, []string{"source", "translation", "reference"}, p.Header().Fields)
	assert.Equal(t, 1, p.Header().Line)

	records := collect(t, p)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"hello", "bonjour", "salut"}, records[0].Fields)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "hello\tbonjour\tsalut", records[0].Raw)
	assert.Equal(t, []string{"bye", "au revoir", "ciao"}, records[1].Fields)
	assert.Equal(t, 3, records[1].Line)
	assert.Equal(t, "bye\tau revoir\tciao", records[1].Raw)
}

func TestParseQuotedFields(t *testing.T) {
	cfg := DefaultParserConfig()
	cfg.Delimiter = ','
	cfg.Headers = false
	p := NewCSVParser(cfg)
	require.NoError(t, p.Parse([]byte("\"a, b\",\"say \"\"hi\"\"\",\"two\nlines\"\nnext,row,here\n")))

	records := collect(t, p)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"a, b", `say "hi"`, "two\nlines"}, records[0].Fields)
	assert.Equal(t, 1, records[0].Line)
	assert.Equal(t, 3, records[1].Line)
}

func TestParseQuotingDisabled(t *testing.T) {
	cfg := DefaultParserConfig()
	cfg.Quote = 0
	cfg.Headers = false
	p := NewCSVParser(cfg)
	require.NoError(t, p.Parse([]byte("\"quoted\tstart\t\"\n")))

	records := collect(t, p)
	require.Len(t, records, 1)
	assert.Equal(t, []string{`"quoted`, "start", `"`}, records[0].Fields)
}

func TestParseSkipsBlankLinesAndKeepsEmptyFields(t *testing.T) {
	cfg := DefaultParserConfig()
	cfg.Headers = false
	p := NewCSVParser(cfg)
	require.NoError(t, p.Parse([]byte("\n\na\t\tc\n\n\nd\te\t\n")))

	records := collect(t, p)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"a", "", "c"}, records[0].Fields)
	assert.Equal(t, 3, records[0].Line)
	assert.Equal(t, []string{"d", "e", ""}, records[1].Fields)
	assert.Equal(t, 6, records[1].Line)
}

func TestParseTrimSpace(t *testing.T) {
	cfg := DefaultParserConfig()
	cfg.Delimiter = ','
	cfg.Headers = false
	cfg.TrimSpace = true
	p := NewCSVParser(cfg)
	require.NoError(t, p.Parse([]byte(" a , \" b \" ,c\n")))

	records := collect(t, p)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"a", " b ", "c"}, records[0].Fields)
}

func TestParseErrors(t *testing.T) {
	cfg := DefaultParserConfig()
	cfg.Delimiter = ','
	cfg.Headers = false

	t.Run("unterminated quote", func(t *testing.T) {
		p := NewCSVParser(cfg)
		require.NoError(t, p.Parse([]byte("a,b,c\nd,\"e,f\n")))
		_, err := p.NextRecord()
		require.NoError(t, err)
		_, err = p.NextRecord()
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 2, perr.Line)
	})

	t.Run("text after closing quote", func(t *testing.T) {
		p := NewCSVParser(cfg)
		require.NoError(t, p.Parse([]byte("\"a\"x,b,c\n")))
		_, err := p.NextRecord()
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 1, perr.Line)
	})

	t.Run("oversize field", func(t *testing.T) {
		small := cfg
		small.MaxFieldSize = 4
		p := NewCSVParser(small)
		require.NoError(t, p.Parse([]byte("abcdefgh,b,c\n")))
		_, err := p.NextRecord()
		assert.Error(t, err)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		p := NewCSVParser(cfg)
		assert.ErrorIs(t, p.Parse([]byte{'a', 0xff, '\n'}), ErrInvalidUTF8)
	})

	t.Run("delimiter equals quote", func(t *testing.T) {
		bad := cfg
		bad.Delimiter = '"'
		p := NewCSVParser(bad)
		assert.ErrorIs(t, p.Parse([]byte("a\n")), ErrInvalidDelimiter)
	})
}

func TestParseEmptyAndBOM(t *testing.T) {
	p := NewCSVParser(DefaultParserConfig())
	require.NoError(t, p.Parse(nil))
	assert.Nil(t, p.Header())
	assert.Empty(t, collect(t, p))

	require.NoError(t, p.Parse([]byte("\xEF\xBB\xBFsrc\tmt\tref\n")))
	assert.Equal(t, []string{"src", "mt", "ref"}, p.Header().Fields)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"tab", "a\tb\tc\nd\te\tf\n", '\t'},
		{"comma", "a,b,c\nd,e,f\n", ','},
		{"semicolon", "a;b;c\n", ';'},
		{"pipe", "a|b|c\n", '|'},
		{"none falls back to tab", "abc\n", '\t'},
		{"commas inside tab fields", "Yes, well, you know\tJa, gut, weisst du\tJa, nun\n", '\t'},
		{"quoted commas", "\"a, b\",c,d\n\"x \"\"y\"\", z\",e,f\n", ','},
		{"inconsistent counts fall back to tab", "a,b,c\nd,e\n", '\t'},
		{"mid-field quote is text", "say \"hi, you\",b,c\n", '\t'},
		{"blank lines and crlf", "\r\na;b;c\r\n\r\nd;e;f\r\n", ';'},
		{"empty", "", '\t'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter([]byte(tt.data), 0, '"', 3))
		})
	}
}

func TestDetectDelimiterSampleBoundary(t *testing.T) {
	data := []byte("a,b,c\nd,e,f\ng,h")
	// the cut record "g,h" is not sampled
	assert.Equal(t, ',', DetectDelimiter(data, 13, '"', 3))
	assert.Equal(t, '\t', DetectDelimiter(data, 0, '"', 3))
}

func TestDetectDelimiterQuotingDisabled(t *testing.T) {
	assert.Equal(t, ',', DetectDelimiter([]byte("\"a,b,c\n"), 0, 0, 3))
	assert.Equal(t, '\t', DetectDelimiter([]byte("\"a,b\",c,d\n"), 0, 0, 3))
}
