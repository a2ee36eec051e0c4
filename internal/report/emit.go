// Package report writes quality results as delimited text.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peekknuf/teatool/internal/dataset"
	"github.com/peekknuf/teatool/internal/quality"
)

// FlagColumns are appended after the row number and the three input columns.
var FlagColumns = []string{
	"empty",
	"copy",
	"source_echo",
	"hallucination",
	"overlap",
	"repetition",
	"translation_lang",
	"same_lang_source",
	"same_lang_reference",
}

// SummaryColumns head the summary block that follows the rows.
var SummaryColumns = []string{"metric", "count", "total", "rate"}

// CheckedColumn holds the translation after prompt stripping.
const CheckedColumn = "checked_translation"

// EmitOptions controls the output table layout.
type EmitOptions struct {
	// Delimiter for the output; 0 reuses the dataset's delimiter.
	Delimiter rune
	// IncludeChecked appends CheckedColumn to every row.
	IncludeChecked bool
}

// DefaultOutputPath places the report next to the input: data.tsv -> data.quality.tsv.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".quality" + ext
}

// Emit writes one record per dataset row, in input order, followed by a blank
// line and the corpus summary. The file is replaced atomically; on error no
// output is left at path.
func Emit(path string, ds *dataset.Dataset, flags []quality.RowFlags, stats quality.CorpusStats, opts EmitOptions) error {
	if len(flags) != len(ds.Rows) {
		return fmt.Errorf("have %d flag sets for %d rows", len(flags), len(ds.Rows))
	}
	return writeAtomic(path, func(w io.Writer) error {
		return WriteTable(w, ds, flags, stats, opts)
	})
}

// WriteTable renders the report to w.
func WriteTable(w io.Writer, ds *dataset.Dataset, flags []quality.RowFlags, stats quality.CorpusStats, opts EmitOptions) error {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ds.Delimiter
	}
	if delim == 0 {
		delim = '\t'
	}

	cw := csv.NewWriter(w)
	cw.Comma = delim

	header := append([]string{"row"}, ds.Columns()...)
	header = append(header, FlagColumns...)
	if opts.IncludeChecked {
		header = append(header, CheckedColumn)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, row := range ds.Rows {
		if err := cw.Write(rowRecord(row, flags[i], opts.IncludeChecked)); err != nil {
			return err
		}
	}

	// csv.Writer refuses empty records, so the separator goes straight to w
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	if err := cw.Write(SummaryColumns); err != nil {
		return err
	}
	for _, rec := range summaryRecords(stats) {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rowRecord(row dataset.Row, f quality.RowFlags, includeChecked bool) []string {
	rec := []string{
		strconv.Itoa(row.Index),
		row.Source,
		row.Translation,
		row.Reference,
		strconv.FormatBool(f.Empty),
		strconv.FormatBool(f.Copy),
		strconv.FormatBool(f.SourceEcho),
		strconv.FormatBool(f.Hallucination),
		strconv.FormatFloat(f.Overlap, 'f', 4, 64),
		strconv.FormatBool(f.Repetition),
		f.TranslationLang,
		strconv.FormatBool(f.SameLangAsSource),
		strconv.FormatBool(f.SameLangAsReference),
	}
	if includeChecked {
		rec = append(rec, f.Checked)
	}
	return rec
}

func summaryRecords(stats quality.CorpusStats) [][]string {
	var recs [][]string
	for _, m := range stats.Metrics() {
		recs = append(recs, []string{m.Name, strconv.Itoa(m.Rate.Count), strconv.Itoa(m.Rate.Total), m.Rate.String()})
	}
	mean := "NA"
	if v, ok := stats.MeanOverlap(); ok {
		mean = strconv.FormatFloat(v, 'f', 4, 64)
	}
	recs = append(recs, []string{"mean_overlap", "", strconv.Itoa(stats.Total), mean})
	return recs
}
