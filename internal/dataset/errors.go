package dataset

import (
	"fmt"
	"unicode/utf8"
)

// maxRawLen bounds how much of an offending record is quoted in error messages.
const maxRawLen = 160

// InputNotFoundError is returned when the input path is missing or unreadable.
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s: %v", e.Path, e.Err)
}

func (e *InputNotFoundError) Unwrap() error { return e.Err }

// FormatError reports a record that is not a source/translation/reference triple.
// Row is the 1-based data row index; 0 refers to the header or the file as a whole.
type FormatError struct {
	Path   string
	Row    int
	Line   int
	Fields int
	Raw    string
	Err    error
}

func (e *FormatError) Error() string {
	where := fmt.Sprintf("row %d (line %d)", e.Row, e.Line)
	if e.Row == 0 {
		where = fmt.Sprintf("header (line %d)", e.Line)
		if e.Line == 0 {
			where = "file"
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("format error in %s at %s: %v", e.Path, where, e.Err)
	}
	return fmt.Sprintf("format error in %s at %s: expected %d fields, got %d: %q",
		e.Path, where, FieldCount, e.Fields, truncate(e.Raw))
}

func (e *FormatError) Unwrap() error { return e.Err }

func truncate(s string) string {
	if len(s) <= maxRawLen {
		return s
	}
	cut := maxRawLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
