// Command tldiff compares two whitespace-delimited numeric tables —
// transmission-loss curves and similar tabular acoustic-propagation
// output — at a caller-chosen precision, classifying every element
// difference from raw floating-point noise up through critical.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jonlighthall/tldiff/internal/tlconfig"
	"github.com/jonlighthall/tldiff/internal/tldiff"
	"github.com/jonlighthall/tldiff/internal/tlerrors"
	"github.com/jonlighthall/tldiff/internal/tllog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	_ = godotenv.Load() // optional .env overrides for TLDIFF_* variables; silent if absent

	var (
		verbosity int
		debug     bool
		noColor   bool
	)

	rootCmd := &cobra.Command{
		Use:   "tldiff file_a file_b [significant] [critical] [print_threshold]",
		Short: "Compare two numeric tables at a chosen precision",
		Args:  cobra.RangeArgs(2, 5),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			return runCompare(cmd, positional, verbosity, debug, noColor)
		},
	}

	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v", "increase logging verbosity (repeatable)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "write a per-run debug log tagged with a session id")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI color even on a TTY")

	if err := rootCmd.Execute(); err != nil {
		if appErr, ok := asAppError(err); ok {
			fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint(appErr.Error()))
			return exitCodeForError(appErr)
		}
		fmt.Fprintln(os.Stderr, err)
		return tldiff.ExitComparisonFailed
	}
	return lastExitCode
}

// lastExitCode carries the verdict's exit code out of the cobra RunE
// closure, which itself can only return an error.
var lastExitCode int

func runCompare(cmd *cobra.Command, positional []string, verbosity int, debug bool, noColor bool) error {
	cfg, err := tlconfig.Load()
	if err != nil {
		return err
	}

	significant, critical, printThreshold := 0.01, 1.0, 0.001
	if len(positional) > 2 {
		if significant, err = strconv.ParseFloat(positional[2], 64); err != nil {
			return tlerrors.ConfigInvalid("significant must be numeric: " + err.Error())
		}
	}
	if len(positional) > 3 {
		if critical, err = strconv.ParseFloat(positional[3], 64); err != nil {
			return tlerrors.ConfigInvalid("critical must be numeric: " + err.Error())
		}
	}
	if len(positional) > 4 {
		if printThreshold, err = strconv.ParseFloat(positional[4], 64); err != nil {
			return tlerrors.ConfigInvalid("print_threshold must be numeric: " + err.Error())
		}
	}

	thresholds := tldiff.NewThresholds(significant, critical, printThreshold, tldiff.DefaultZero, cfg.MarginalDB, cfg.IgnoreDB)

	logger := tllog.NewFromVerbosity(os.Stderr, verbosity, debug)

	var diag io.Writer = os.Stderr
	if debug {
		sessionID := uuid.NewString()
		path := cfg.DebugDir + "/tldiff-" + sessionID + ".log"
		f, err := os.Create(path)
		if err != nil {
			return tlerrors.FileAccess("failed to create debug log", err)
		}
		defer f.Close()
		diag = io.MultiWriter(os.Stderr, f)
		logger.Info("debug session %s writing to %s", sessionID, path)
	}

	orch := tldiff.New(thresholds, cfg.MinAccumPoints, cfg.SlopeThreshold, cfg.R2Threshold, cfg.AutocorrThresh, cfg.BiasThresholdMul*tldiff.DefaultZero, diag, logger)

	fileA, err := os.Open(positional[0])
	if err != nil {
		return tlerrors.FileAccess("failed to open "+positional[0], err)
	}
	defer fileA.Close()

	fileB, err := os.Open(positional[1])
	if err != nil {
		return tlerrors.FileAccess("failed to open "+positional[1], err)
	}
	defer fileB.Close()

	acc, verdict, err := orch.Compare(fileA, fileB)
	if err != nil {
		return err
	}

	useColor := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	writeVerdictLine(os.Stdout, verdict, useColor)
	if err := orch.WriteReport(os.Stdout, acc, verdict); err != nil {
		return tlerrors.Wrap(err, "failed to write report")
	}

	lastExitCode = verdict.ExitCode
	return nil
}

func writeVerdictLine(w io.Writer, verdict tldiff.Verdict, useColor bool) {
	if !useColor {
		fmt.Fprintf(w, "%s: %s\n", verdict.Label, verdict.Detail)
		return
	}
	c := color.New(color.FgGreen)
	if verdict.ExitCode != tldiff.ExitOK {
		c = color.New(color.FgRed)
	}
	c.Fprintf(w, "%s: %s\n", verdict.Label, verdict.Detail)
}

func asAppError(err error) (*tlerrors.AppError, bool) {
	appErr, ok := err.(*tlerrors.AppError)
	return appErr, ok
}

func exitCodeForError(err *tlerrors.AppError) int {
	switch err.Code {
	case tlerrors.CodeFileAccess, tlerrors.CodeConfigInvalid, tlerrors.CodeInternalError:
		return tldiff.ExitComparisonFailed
	default:
		return tldiff.ExitDiffers
	}
}
