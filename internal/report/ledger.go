package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/peekknuf/teatool/internal/quality"
)

// DefaultLedgerPath is where scan keeps its per-file statistics.
const DefaultLedgerPath = "translation_stats.csv"

// LedgerEntry is one input file's corpus statistics.
type LedgerEntry struct {
	Input string
	Stats quality.CorpusStats
}

// LedgerColumns returns the ledger header: input, rows, one column per metric, mean_overlap.
func LedgerColumns() []string {
	cols := []string{"input", "rows"}
	for _, m := range (quality.CorpusStats{}).Metrics() {
		cols = append(cols, m.Name)
	}
	return append(cols, "mean_overlap")
}

func (e LedgerEntry) record() []string {
	rec := []string{e.Input, strconv.Itoa(e.Stats.Total)}
	for _, m := range e.Stats.Metrics() {
		rec = append(rec, m.Rate.String())
	}
	mean := "NA"
	if v, ok := e.Stats.MeanOverlap(); ok {
		mean = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return append(rec, mean)
}

// UpsertLedger records entry in the comma-separated ledger at path. An existing
// line for the same input is replaced in place, otherwise the entry is appended.
// Columns an older ledger has that LedgerColumns lacks are carried along.
func UpsertLedger(path string, entry LedgerEntry) error {
	cols, records, err := loadLedger(path)
	if err != nil {
		return err
	}

	rec := entry.record()
	written := len(rec)
	rec = append(rec, make([]string, len(cols)-written)...)
	replaced := false
	for i, existing := range records {
		if existing[0] == entry.Input {
			// keep values of columns this version does not write
			for j := written; j < len(existing) && j < len(rec); j++ {
				rec[j] = existing[j]
			}
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(cols); err != nil {
			return err
		}
		if err := cw.WriteAll(records); err != nil {
			return err
		}
		return cw.Error()
	})
}

// ReadLedger returns the ledger's data records without the header, laid out
// as LedgerColumns followed by any extra columns of an older ledger. A missing
// ledger reads as empty.
func ReadLedger(path string) ([][]string, error) {
	_, records, err := loadLedger(path)
	return records, err
}

// loadLedger reads the ledger at path and maps its records onto the current
// columns by name. Cells for columns the file lacks are left empty.
func loadLedger(path string) ([]string, [][]string, error) {
	cols := LedgerColumns()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cols, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse ledger %s: %w", path, err)
	}
	if len(records) == 0 {
		return cols, nil, nil
	}

	header := records[0]
	if !slices.Contains(header, cols[0]) {
		return nil, nil, fmt.Errorf("ledger %s has no %q column (header %v): move it aside or pass another --ledger path",
			path, cols[0], header)
	}
	if slices.Equal(header, cols) {
		return cols, records[1:], nil
	}

	for _, name := range header {
		if !slices.Contains(cols, name) {
			cols = append(cols, name)
		}
	}
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}

	merged := make([][]string, 0, len(records)-1)
	for _, old := range records[1:] {
		rec := make([]string, len(cols))
		for j, name := range cols {
			if i, ok := pos[name]; ok && i < len(old) {
				rec[j] = old[i]
			}
		}
		merged = append(merged, rec)
	}
	return cols, merged, nil
}
