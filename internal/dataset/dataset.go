// Package dataset loads aligned source/translation/reference files.
package dataset

import (
	"errors"
	"os"

	"github.com/peekknuf/teatool/internal/parser"
)

// FieldCount is the number of fields every record must carry.
const FieldCount = 3

// DefaultColumns names the columns when the input has no header row.
var DefaultColumns = []string{"source", "translation", "reference"}

// Row is one aligned triple.
type Row struct {
	Index       int // 1-based data row number, header excluded
	Line        int // line the record starts on
	Source      string
	Translation string
	Reference   string
}

// Dataset is the whole input, rows in file order.
type Dataset struct {
	Path      string
	Delimiter rune
	Header    []string
	Rows      []Row
}

// Columns returns the header names, or DefaultColumns for headerless input.
func (d *Dataset) Columns() []string {
	if len(d.Header) == FieldCount {
		return d.Header
	}
	return DefaultColumns
}

// Options controls how input files are split into rows.
type Options struct {
	// Delimiter separates fields. 0 auto-detects among parser.Delimiters.
	Delimiter rune
	// Quote wraps fields containing delimiters or newlines. 0 disables quoting.
	Quote rune
	// Header means the first record holds column names rather than data.
	Header bool
	// TrimSpace strips spaces and tabs around unquoted fields.
	TrimSpace bool
}

// DefaultOptions returns tab-or-auto detection with a header row and double-quote quoting.
func DefaultOptions() Options {
	return Options{
		Delimiter: 0,
		Quote:     '"',
		Header:    true,
	}
}

// detectSampleSize is how many leading bytes delimiter detection looks at.
const detectSampleSize = 64 * 1024

// Load reads and validates the dataset at path. The first record with a field
// count other than three aborts the load with a *FormatError.
func Load(path string, opts Options) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputNotFoundError{Path: path, Err: err}
	}
	return Parse(path, data, opts)
}

// Parse splits data into rows; path is only used for error messages.
func Parse(path string, data []byte, opts Options) (*Dataset, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = parser.DetectDelimiter(data, detectSampleSize, opts.Quote, FieldCount)
	}

	p := parser.NewCSVParser(parser.ParserConfig{
		Delimiter: delim,
		Quote:     opts.Quote,
		TrimSpace: opts.TrimSpace,
		Headers:   opts.Header,
	})
	if err := p.Parse(data); err != nil {
		var perr *parser.ParseError
		if errors.Is(err, parser.ErrInvalidUTF8) || errors.As(err, &perr) {
			return nil, formatErrorFromParse(path, 0, err)
		}
		return nil, err
	}

	ds := &Dataset{Path: path, Delimiter: delim}
	if h := p.Header(); h != nil {
		if len(h.Fields) != FieldCount {
			return nil, &FormatError{Path: path, Row: 0, Line: h.Line, Fields: len(h.Fields), Raw: h.Raw}
		}
		ds.Header = h.Fields
	}

	for {
		rec, err := p.NextRecord()
		if err != nil {
			return nil, formatErrorFromParse(path, len(ds.Rows)+1, err)
		}
		if rec == nil {
			break
		}

		index := len(ds.Rows) + 1
		if len(rec.Fields) != FieldCount {
			return nil, &FormatError{Path: path, Row: index, Line: rec.Line, Fields: len(rec.Fields), Raw: rec.Raw}
		}
		ds.Rows = append(ds.Rows, Row{
			Index:       index,
			Line:        rec.Line,
			Source:      rec.Fields[0],
			Translation: rec.Fields[1],
			Reference:   rec.Fields[2],
		})
	}

	return ds, nil
}

// formatErrorFromParse wraps a parser failure; row 0 is the header, or the
// whole file when no line is known.
func formatErrorFromParse(path string, row int, err error) error {
	fe := &FormatError{Path: path, Row: row, Err: err}
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		fe.Line = perr.Line
	}
	return fe
}
