package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/peekknuf/teatool/internal/quality"
)

// PrintSummary writes a human-readable corpus summary for the terminal.
func PrintSummary(w io.Writer, input, output string, stats quality.CorpusStats) {
	var out strings.Builder

	out.WriteString("=== TRANSLATION QUALITY SUMMARY ===\n")
	out.WriteString(fmt.Sprintf("Input:  %s\n", input))
	if output != "" {
		out.WriteString(fmt.Sprintf("Report: %s\n", output))
	}
	out.WriteString(fmt.Sprintf("Rows:   %s\n\n", humanize.Comma(int64(stats.Total))))

	out.WriteString(fmt.Sprintf("%-22s %10s %10s\n", "Metric", "Rows", "Rate"))
	out.WriteString(strings.Repeat("-", 44) + "\n")
	for _, m := range stats.Metrics() {
		out.WriteString(fmt.Sprintf("%-22s %10s %10s\n", m.Name, humanize.Comma(int64(m.Rate.Count)), percent(m.Rate)))
	}
	if v, ok := stats.MeanOverlap(); ok {
		out.WriteString(fmt.Sprintf("%-22s %10s %10.4f\n", "mean_overlap", "", v))
	}

	fmt.Fprint(w, out.String())
}

func percent(r quality.Rate) string {
	v, ok := r.Value()
	if !ok {
		return "NA"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
