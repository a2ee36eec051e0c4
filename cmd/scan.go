package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/peekknuf/teatool/internal/config"
	"github.com/peekknuf/teatool/internal/connectors"
	"github.com/peekknuf/teatool/internal/report"
)

var (
	dirPath    string
	extensions []string
	recursive  bool
	emit       bool
	minSize    int64
	maxSize    int64

	modifiedAfter  string
	modifiedBefore string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Analyze every translation file in a directory",
	Long: `Scan a directory for translation files and record the corpus rates
of each one in a ledger (default translation_stats.csv). Re-running a file
replaces its ledger line. Files that fail are reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

// runScan analyzes every matching file under --dir, recording each in the ledger.
func runScan(cmd *cobra.Command, args []string) error {
	v, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	settings, err := config.Resolve(v)
	if err != nil {
		return err
	}
	if settings.Ledger == "" {
		settings.Ledger = report.DefaultLedgerPath
	}

	after, err := parseTimeFlag("modified-after", modifiedAfter)
	if err != nil {
		return err
	}
	before, err := parseTimeFlag("modified-before", modifiedBefore)
	if err != nil {
		return err
	}

	options := connectors.DiscoveryOptions{
		Recursive:      recursive,
		MinSize:        minSize,
		MaxSize:        maxSize,
		ModifiedAfter:  after,
		ModifiedBefore: before,
		SkipReports:    true,
	}
	files, err := connectors.DiscoverFiles(dirPath, extensions, options)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	// the ledger may live inside the scanned tree
	files = excludePath(files, settings.Ledger)
	fileCount := len(files)
	if fileCount == 0 {
		return fmt.Errorf("scan failed: no matching files found in %s", dirPath)
	}

	var totalSize int64
	for _, f := range files {
		totalSize += f.Size
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Found %d files (%s)\n", fileCount, humanize.Bytes(uint64(totalSize)))

	bar := progressbar.NewOptions(fileCount,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan][reset] Analyzing files..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	failed := 0
	for _, file := range files {
		output := ""
		if emit {
			output = report.DefaultOutputPath(file.Path)
		}

		stats, err := analyzeFile(logger, file.Path, output, settings)
		_ = bar.Add(1)
		if err != nil {
			failed++
			logger.Warn("Skipping file", zap.String("path", file.Path), zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "\nFailed: %v\n", err)
			continue
		}

		if verbose {
			fmt.Fprintln(cmd.OutOrStdout())
			report.PrintSummary(cmd.OutOrStdout(), file.Path, output, stats)
		}
	}
	_ = bar.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "Ledger: %s (%d of %d files recorded)\n",
		settings.Ledger, fileCount-failed, fileCount)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fileCount)
	}
	return nil
}

// parseTimeFlag accepts a date (2006-01-02) or a full timestamp; empty means unset.
func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := cast.ToTimeE(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return t, nil
}

func excludePath(files []connectors.FileMeta, path string) []connectors.FileMeta {
	target, err := filepath.Abs(path)
	if err != nil {
		return files
	}
	kept := files[:0]
	for _, f := range files {
		if abs, err := filepath.Abs(f.Path); err == nil && abs == target {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&dirPath, "dir", "d", "",
		"Directory to scan (required)")
	scanCmd.Flags().StringSliceVarP(&extensions, "ext", "e", connectors.DefaultExtensions,
		"File extensions to analyze")
	scanCmd.Flags().BoolVarP(&recursive, "recursive", "r", false,
		"Search directories recursively")
	scanCmd.Flags().BoolVar(&emit, "emit", false,
		"Also write a <file>.quality report next to each input")
	scanCmd.Flags().Int64Var(&minSize, "min-size", 0,
		"Minimum file size in bytes")
	scanCmd.Flags().Int64Var(&maxSize, "max-size", 0,
		"Maximum file size in bytes")
	scanCmd.Flags().StringVar(&modifiedAfter, "modified-after", "",
		"Only files modified at or after this date (2006-01-02 or RFC 3339)")
	scanCmd.Flags().StringVar(&modifiedBefore, "modified-before", "",
		"Only files modified at or before this date (2006-01-02 or RFC 3339)")
	config.RegisterFlags(scanCmd.Flags())

	scanCmd.MarkFlagRequired("dir")
}
