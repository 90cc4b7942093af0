package tldiff

import (
	"fmt"
	"io"
)

// Exit codes: 0 means the files are acceptably close, 1 means
// they differ beyond the configured thresholds or are structurally
// incompatible, 2 means the comparison itself could not be completed
// (file access failure).
const (
	ExitOK               = 0
	ExitDiffers          = 1
	ExitComparisonFailed = 2
)

// Verdict is the final pass/fail decision and its human-readable summary,
// produced by the Reporter (C8) from the accumulated Flags/Counts.
type Verdict struct {
	ExitCode int
	Label    string
	Detail   string
}

// Reporter is the Reporter (C8): it derives the overall verdict from the
// accumulated state and writes the nested count/diff/flag summary. It
// never colors its own output — TTY-aware coloring is confined to the CLI
// layer.
type Reporter struct{}

// NewReporter returns a ready-to-use Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// DetermineVerdict implements the verdict rules: hard
// comparison failures take priority over any content verdict, then
// critical and uncategorized-error differences fail the comparison, and
// otherwise the narrowest true "files are ..." flag wins.
func (rp *Reporter) DetermineVerdict(acc *Accumulators) Verdict {
	switch {
	case acc.Flags.FileAccessError:
		return Verdict{ExitCode: ExitComparisonFailed, Label: "COMPARISON_FAILED", Detail: "one or both files could not be read"}
	case !acc.Flags.StructuresCompatible:
		return Verdict{ExitCode: ExitDiffers, Label: "FAIL", Detail: "files are not structurally compatible"}
	case acc.Flags.ErrorFound:
		return Verdict{ExitCode: ExitDiffers, Label: "FAIL", Detail: "malformed numeric tokens found"}
	case acc.Flags.HasCriticalDiff:
		return Verdict{ExitCode: ExitDiffers, Label: "FAIL", Detail: "critical differences found"}
	case acc.Flags.HasErrorDiff:
		return Verdict{ExitCode: ExitDiffers, Label: "FAIL", Detail: "significant differences found"}
	case acc.Flags.FilesAreSame:
		return Verdict{ExitCode: ExitOK, Label: "IDENTICAL", Detail: "no differences above the floating-point noise floor"}
	case acc.Flags.FilesHaveSameValues:
		return Verdict{ExitCode: ExitOK, Label: "EQUIVALENT", Detail: "differences are within printed precision"}
	case acc.Flags.FilesAreCloseEnough:
		return Verdict{ExitCode: ExitOK, Label: "CLOSE_ENOUGH", Detail: "no differences exceed the significant threshold"}
	default:
		return Verdict{ExitCode: ExitDiffers, Label: "FAIL", Detail: "significant differences found"}
	}
}

// WriteSummary writes the discrimination counts, the recorded maxima, the
// RMSE line and the flags/verdict, followed by the curve-similarity and
// accumulation lines when column 0 is range data.
func (rp *Reporter) WriteSummary(w io.Writer, acc *Accumulators, verdict Verdict) error {
	if err := rp.writeCounts(w, acc.Counts); err != nil {
		return err
	}
	if err := rp.writeMaxima(w, acc.Diffs); err != nil {
		return err
	}
	if err := rp.writeRMSE(w, acc.RMSE); err != nil {
		return err
	}
	if err := rp.writeVerdict(w, acc.Flags, verdict); err != nil {
		return err
	}
	if acc.Flags.Column1IsRangeData {
		if err := rp.writeCurveMetrics(w, acc.Curve); err != nil {
			return err
		}
		if err := rp.writeAccumulation(w, acc.AccumResult); err != nil {
			return err
		}
	}
	return nil
}

func (rp *Reporter) writeCurveMetrics(w io.Writer, c CurveMetrics) error {
	_, err := fmt.Fprintf(w, "curve similarity: M1=%.4f M2=%.4f M3=%.4f M_curve=%.2f\n", c.M1, c.M2, c.M3, c.MCurve)
	return err
}

func (rp *Reporter) writeCounts(w io.Writer, c CountStats) error {
	_, err := fmt.Fprintf(w,
		"elements: %d  non-zero: %d  non-trivial: %d  significant: %d  marginal: %d  critical: %d  error: %d  non-error: %d  printed: %d  high-ignore: %d\n",
		c.ElemNumber, c.DiffNonZero, c.DiffNonTrivial, c.DiffSignificant, c.DiffMarginal, c.DiffCritical, c.DiffError, c.DiffNonError, c.DiffPrint, c.DiffHighIgnore)
	return err
}

func (rp *Reporter) writeMaxima(w io.Writer, d DiffStats) error {
	_, err := fmt.Fprintf(w,
		"max non-zero: %.*f  max non-trivial: %.*f  max significant: %.*f  max percent error: %.*f%%\n",
		d.MaxNonZeroDecimals, d.MaxNonZero,
		d.MaxNonTrivialDecimals, d.MaxNonTrivial,
		d.MaxSignificantDecimals, d.MaxSignificant,
		d.MaxPercentErrorDecimals, d.MaxPercentError)
	return err
}

func (rp *Reporter) writeRMSE(w io.Writer, r RMSEStats) error {
	_, err := fmt.Fprintf(w, "rmse: all=%.6g data=%.6g weighted=%.6g\n", r.RMSE(), r.RMSEData(), r.WeightedRMSE())
	return err
}

func (rp *Reporter) writeVerdict(w io.Writer, f Flags, verdict Verdict) error {
	_, err := fmt.Fprintf(w, "verdict: %s (%s)\n", verdict.Label, verdict.Detail)
	if err != nil {
		return err
	}
	if f.UnitMismatch {
		_, err = fmt.Fprintf(w, "warning: possible range unit mismatch at line %d (ratio %.2f)\n", f.UnitMismatchLine, f.UnitMismatchRatio)
	}
	return err
}

func (rp *Reporter) writeAccumulation(w io.Writer, m AccumulationMetrics) error {
	if m.Pattern == PatternInsufficientData {
		_, err := fmt.Fprintf(w, "accumulation: insufficient data\n")
		return err
	}
	_, err := fmt.Fprintf(w,
		"accumulation: pattern=%s slope=%.6g r2=%.4f p=%.4g autocorr=%.4f runs=%d/%.1f(z=%.2f,p=%.4g) cusum_max=%.6g mean_err=%.6g max_err=%.6g rmse=%.6g\n",
		m.Pattern, m.Slope, m.R2, m.PValue, m.AutocorrLag1, m.NRuns, m.ExpectedRuns, m.RunTestZ, m.RunTestP, m.CusumMax, m.MeanError, m.MaxError, m.RMSE)
	return err
}
