package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseState represents the current state of the CSV parser
type ParseState int

const (
	StateField ParseState = iota
	StateQuote
	StateQuoteEscape
	StateDelimiter
	StateNewline
	StateEOF
)

var (
	ErrInvalidUTF8      = errors.New("input is not valid UTF-8")
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParserConfig contains configuration options for the CSV parser
type ParserConfig struct {
	Delimiter    rune // Field delimiter (comma, semicolon, tab, pipe)
	Quote        rune // Quote character, 0 disables quoting entirely
	TrimSpace    bool // Whether to trim spaces and tabs around unquoted fields
	Headers      bool // Whether first row contains headers
	MaxFieldSize int  // Maximum field size to prevent memory exhaustion
}

// DefaultParserConfig returns a default configuration for the CSV parser
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Delimiter:    '\t',
		Quote:        '"',
		TrimSpace:    false,
		Headers:      true,
		MaxFieldSize: 10 * 1024 * 1024, // 10MB max field size
	}
}

// Record is one parsed record together with where it came from.
type Record struct {
	Fields []string
	Line   int    // line the record starts on, 1-based
	Raw    string // record text without its line terminator
}

// ParseError reports a record the parser could not split into fields.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// CSVParser is a delimited-text parser working over an in-memory buffer
type CSVParser struct {
	config    ParserConfig
	data      []byte // Current data being parsed
	pos       int    // Current position in data
	recordEnd int    // End of the last record, excluding its terminator
	field     []byte // Reusable field buffer
	header    *Record
	lineNum   int
}

// NewCSVParser creates a new parser
func NewCSVParser(config ParserConfig) *CSVParser {
	if config.MaxFieldSize == 0 {
		config.MaxFieldSize = DefaultParserConfig().MaxFieldSize
	}

	return &CSVParser{
		config: config,
		field:  make([]byte, 0, 256),
	}
}

// Parse initializes parsing with new data. Empty data is valid and yields no records.
func (p *CSVParser) Parse(data []byte) error {
	if err := p.validateConfig(); err != nil {
		return err
	}
	if !ValidateUTF8(data) {
		return ErrInvalidUTF8
	}

	p.data = bytes.TrimPrefix(data, utf8BOM)
	p.pos = 0
	p.recordEnd = 0
	p.lineNum = 1
	p.header = nil

	// Parse headers if configured
	if p.config.Headers {
		rec, err := p.NextRecord()
		if err != nil {
			return fmt.Errorf("failed to parse headers: %w", err)
		}
		p.header = rec
	}

	return nil
}

func (p *CSVParser) validateConfig() error {
	d := p.config.Delimiter
	if d == 0 || d >= utf8.RuneSelf || d == '\n' || d == '\r' {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, d)
	}
	if p.config.Quote >= utf8.RuneSelf {
		return fmt.Errorf("invalid quote character: %q", p.config.Quote)
	}
	if p.config.Quote != 0 && p.config.Quote == d {
		return fmt.Errorf("%w: delimiter and quote are both %q", ErrInvalidDelimiter, d)
	}
	return nil
}

// NextRecord advances to the next record. It returns nil, nil at end of data.
// Empty lines between records are skipped.
func (p *CSVParser) NextRecord() (*Record, error) {
	p.skipBlankLines()
	if p.pos >= len(p.data) {
		return nil, nil // EOF
	}

	start := p.pos
	rec := &Record{Line: p.lineNum, Fields: make([]string, 0, 4)}

	for {
		field, state, err := p.parseField(len(rec.Fields))
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, field)

		// Check for end of record
		if state != StateDelimiter {
			break
		}
	}

	rec.Raw = string(p.data[start:p.recordEnd])
	return rec, nil
}

func (p *CSVParser) skipBlankLines() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case '\n':
			p.lineNum++
			p.pos++
		case '\r':
			p.pos++
			if p.pos < len(p.data) && p.data[p.pos] == '\n' {
				p.pos++
			}
			p.lineNum++
		default:
			return
		}
	}
}

// parseField parses a single field from the current position and reports the
// state that terminated it (delimiter, newline or end of data).
func (p *CSVParser) parseField(fieldNum int) (string, ParseState, error) {
	p.field = p.field[:0]
	startLine := p.lineNum
	quote := byte(p.config.Quote)
	delim := byte(p.config.Delimiter)

	if p.config.TrimSpace {
		for p.pos < len(p.data) && p.data[p.pos] != delim && (p.data[p.pos] == ' ' || p.data[p.pos] == '\t') {
			p.pos++
		}
	}

	state := StateField
	quoted := false
	if p.config.Quote != 0 && p.pos < len(p.data) && p.data[p.pos] == quote {
		quoted = true
		state = StateQuote
		p.pos++
	}

	for p.pos < len(p.data) {
		char := p.data[p.pos]

		switch state {
		case StateField:
			switch {
			case char == delim:
				p.pos++
				return p.finishField(quoted), StateDelimiter, nil
			case char == '\n' || char == '\r':
				p.endLine(char)
				return p.finishField(quoted), StateNewline, nil
			case quoted && p.config.TrimSpace && (char == ' ' || char == '\t'):
				// whitespace after a closing quote
			case quoted:
				return "", state, &ParseError{
					Line: p.lineNum,
					Msg:  fmt.Sprintf("unexpected %q after closing quote in field %d", char, fieldNum+1),
				}
			default:
				p.field = append(p.field, char)
			}

		case StateQuote:
			if char == quote {
				state = StateQuoteEscape
			} else {
				if char == '\n' {
					p.lineNum++
				}
				p.field = append(p.field, char)
			}

		case StateQuoteEscape:
			if char != quote {
				// closing quote; reprocess char as field text
				state = StateField
				continue
			}
			p.field = append(p.field, char)
			state = StateQuote
		}

		// Check field size limit
		if len(p.field) > p.config.MaxFieldSize {
			return "", state, &ParseError{
				Line: startLine,
				Msg:  fmt.Sprintf("field %d exceeds maximum size of %d bytes", fieldNum+1, p.config.MaxFieldSize),
			}
		}

		p.pos++
	}

	// End of data
	if state == StateQuote {
		return "", StateEOF, &ParseError{
			Line: startLine,
			Msg:  fmt.Sprintf("unterminated quoted field %d", fieldNum+1),
		}
	}

	p.recordEnd = p.pos
	return p.finishField(quoted), StateEOF, nil
}

// endLine consumes a \n, \r or \r\n terminator.
func (p *CSVParser) endLine(char byte) {
	p.recordEnd = p.pos
	p.pos++
	if char == '\r' && p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
	}
	p.lineNum++
}

func (p *CSVParser) finishField(quoted bool) string {
	s := string(p.field)
	if !quoted && p.config.TrimSpace {
		s = strings.Trim(s, " \t")
	}
	return s
}

// Header returns the header record, or nil when headers are off or the data is empty.
func (p *CSVParser) Header() *Record {
	return p.header
}

// Delimiters lists the delimiters DetectDelimiter chooses from, in order of preference.
var Delimiters = []rune{'\t', ',', ';', '|'}

// detectRecords is how many non-blank records DetectDelimiter samples.
const detectRecords = 5

// DetectDelimiter picks the first entry of Delimiters that splits every sampled
// record into exactly fields fields. Delimiters inside quoted fields are not
// counted. Tab is returned when no candidate fits, so a malformed file fails on
// its field count instead of being split on whatever character is most common.
func DetectDelimiter(data []byte, sampleSize int, quote rune, fields int) rune {
	if sampleSize <= 0 || sampleSize > len(data) {
		sampleSize = len(data)
	}
	sample := data[:sampleSize]
	if sampleSize < len(data) {
		// drop the record cut by the sample boundary
		if i := bytes.LastIndexByte(sample, '\n'); i >= 0 {
			sample = sample[:i+1]
		}
	}
	sample = bytes.TrimPrefix(sample, utf8BOM)

	for _, delim := range Delimiters {
		if delim == quote {
			continue
		}
		if splitsEvenly(sample, byte(delim), quote, fields-1) {
			return delim
		}
	}
	return '\t'
}

// splitsEvenly reports whether each of the first detectRecords non-blank
// records in sample holds exactly want unquoted delimiters.
func splitsEvenly(sample []byte, delim byte, quote rune, want int) bool {
	q := byte(quote)
	count, records := 0, 0
	inQuote, closed, fieldStart, blank := false, false, true, true

	for _, c := range sample {
		if inQuote {
			if c == q {
				inQuote, closed = false, true
			}
			continue
		}
		if closed && c == q {
			// doubled quote inside a quoted field
			inQuote, closed = true, false
			continue
		}
		closed = false

		switch {
		case c == '\n' || c == '\r':
			if !blank {
				if count != want {
					return false
				}
				records++
				if records == detectRecords {
					return true
				}
			}
			count, fieldStart, blank = 0, true, true
			continue
		case c == delim:
			count++
			fieldStart, blank = true, false
			continue
		case quote != 0 && c == q && fieldStart:
			inQuote = true
		}
		fieldStart, blank = false, false
	}

	return blank || count == want
}

// ValidateUTF8 checks if data is valid UTF-8
func ValidateUTF8(data []byte) bool {
	return utf8.Valid(data)
}
