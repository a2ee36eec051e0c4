package cmd

import (
	"time"

	"go.uber.org/zap"

	"github.com/peekknuf/teatool/internal/config"
	"github.com/peekknuf/teatool/internal/dataset"
	"github.com/peekknuf/teatool/internal/quality"
	"github.com/peekknuf/teatool/internal/report"
)

// analyzeFile loads input, computes flags and corpus rates, writes the report
// to output (skipped when output is empty) and upserts the ledger when one is
// configured. A malformed input fails before anything is written. With prompt
// stripping on and no labels given, labels come from the file name prefix.
func analyzeFile(log *zap.Logger, input, output string, s config.Settings) (quality.CorpusStats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("input", input))
	start := time.Now()

	ds, err := dataset.Load(input, s.Dataset)
	if err != nil {
		log.Debug("Load failed", zap.Error(err))
		return quality.CorpusStats{}, err
	}
	log.Debug("Dataset loaded",
		zap.Int("rows", len(ds.Rows)),
		zap.String("delimiter", string(ds.Delimiter)),
		zap.Bool("header", ds.Header != nil))

	qopts := s.Quality
	if qopts.StripPrompt && len(qopts.PromptLabels) == 0 {
		qopts.PromptLabels = quality.PromptLabelsFromName(input)
		log.Debug("Prompt labels from file name", zap.Strings("labels", qopts.PromptLabels))
	}

	flags := quality.ComputeAll(ds.Rows, qopts)
	stats := quality.Aggregate(flags)

	if output != "" {
		opts := report.EmitOptions{IncludeChecked: s.Quality.StripPrompt}
		if err := report.Emit(output, ds, flags, stats, opts); err != nil {
			return stats, err
		}
		log.Debug("Report written", zap.String("output", output))
	}

	if s.Ledger != "" {
		if err := report.UpsertLedger(s.Ledger, report.LedgerEntry{Input: input, Stats: stats}); err != nil {
			return stats, err
		}
		log.Debug("Ledger updated", zap.String("ledger", s.Ledger))
	}

	log.Info("Analysis finished",
		zap.Int("rows", stats.Total),
		zap.Int("empty", stats.Empty.Count),
		zap.Int("copy", stats.Copy.Count),
		zap.Int("hallucination", stats.Hallucination.Count),
		zap.Duration("elapsed", time.Since(start)))
	return stats, nil
}
