package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/peekknuf/teatool/internal/config"
	"github.com/peekknuf/teatool/internal/dataset"
	"github.com/peekknuf/teatool/internal/report"
)

var (
	cfgFile string
	verbose bool

	logger *zap.Logger
)

// Exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitFormat      = 2
	exitInput       = 3
	exitOutputWrite = 4
)

var rootCmd = &cobra.Command{
	Use:   "teatool <input_path>",
	Short: "Translation quality metrics",
	Long: `Analyze a three-column translation file (source, translation, reference)
for empty outputs, copied sources, likely hallucinations and repetitions.

Writes one row per input row with the derived flags, followed by a summary
block with corpus-level rates.

Examples:
  teatool csen_wmt.tsv                              # tab-separated with header
  teatool out.csv --delimiter=comma --header=false  # headerless CSV
  teatool out.tsv --output=report.tsv --ledger=translation_stats.csv
  teatool scan --dir outputs/ --recursive           # every file in a directory`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.With(zap.String("run_id", uuid.NewString()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runAnalyze,
}

// runAnalyze checks a single input file and prints its summary.
func runAnalyze(cmd *cobra.Command, args []string) error {
	v, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	settings, err := config.Resolve(v)
	if err != nil {
		return err
	}

	input := args[0]
	output := settings.Output
	if output == "" {
		output = report.DefaultOutputPath(input)
	}

	stats, err := analyzeFile(logger, input, output, settings)
	if err != nil {
		return err
	}
	report.PrintSummary(cmd.OutOrStdout(), input, output, stats)
	return nil
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to the documented process exit codes.
func exitCode(err error) int {
	var (
		formatErr *dataset.FormatError
		inputErr  *dataset.InputNotFoundError
		writeErr  *report.OutputWriteError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &formatErr):
		return exitFormat
	case errors.As(err, &inputErr):
		return exitInput
	case errors.As(err, &writeErr):
		return exitOutputWrite
	default:
		return exitFailure
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.teatool.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log debug details to stderr")

	rootCmd.Flags().StringP(config.KeyOutput, "o", "",
		"Output file (default: <input>.quality.<ext> next to the input)")
	config.RegisterFlags(rootCmd.Flags())
}
