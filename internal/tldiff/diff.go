package tldiff

import (
	"fmt"
	"io"
)

// DifferenceAnalyzer is the Difference Analyzer (C5): the six-level
// discrimination pipeline that classifies one aligned element pair from
// raw (non-zero) down through trivial/non-trivial, insignificant/
// significant, marginal/non-marginal, critical/non-critical, and finally
// error/non-error.
type DifferenceAnalyzer struct {
	// Diag receives the one-shot first-critical-event diagnostic. Nil
	// disables it.
	Diag io.Writer
}

// NewDifferenceAnalyzer returns a ready-to-use DifferenceAnalyzer writing
// its first-critical diagnostic to diag (may be nil).
func NewDifferenceAnalyzer(diag io.Writer) *DifferenceAnalyzer {
	return &DifferenceAnalyzer{Diag: diag}
}

// Process classifies one element pair, folding the result into acc, and
// returns whether the pair was classified significant (the Accumulation
// Analyzer, C7, only observes significant range-indexed points).
func (d *DifferenceAnalyzer) Process(col int, cv ColumnValues, th Thresholds, colThreshold float64, skipTL bool, acc *Accumulators) (isSignificant bool) {
	acc.Counts.ElemNumber++
	rawDiff := absFloat(cv.V1 - cv.V2)

	// LEVEL 1: raw (non-zero).
	if rawDiff <= th.Zero {
		return false
	}
	acc.Counts.DiffNonZero++
	acc.Flags.HasNonZeroDiff = true
	acc.Flags.FilesAreSame = false
	if rawDiff > acc.Diffs.MaxNonZero {
		acc.Diffs.MaxNonZero = rawDiff
		acc.Diffs.MaxNonZeroDecimals = cv.MaxDP
	}

	roundedDiff := RoundHalfAwayFromZero(rawDiff, cv.MinDP)

	// LEVEL 2: trivial / non-trivial.
	if IsTrivial(rawDiff, roundedDiff, cv.MinDP) {
		acc.Counts.DiffTrivial++
		return false
	}
	acc.Counts.DiffNonTrivial++
	acc.Flags.HasNonTrivialDiff = true
	acc.Flags.FilesHaveSameValues = false
	if rawDiff > acc.Diffs.MaxNonTrivial {
		acc.Diffs.MaxNonTrivial = rawDiff
		acc.Diffs.MaxNonTrivialDecimals = cv.MinDP
	}

	// Both operands above the ignore floor: the pair is too far into the
	// TL noise floor for the significance test to mean anything, so it is
	// routed straight to insignificant/high-ignore without ever being
	// tested for significance.
	bothAboveIgnore := !skipTL && cv.V1 > th.Ignore && cv.V2 > th.Ignore
	if bothAboveIgnore {
		acc.Counts.DiffInsignificant++
		acc.Counts.DiffHighIgnore++
		return false
	}

	// LEVEL 3: insignificant / significant.
	exceeds, percentErr := exceedsSignificant(roundedDiff, cv.V2, th, colThreshold)
	if !exceeds {
		acc.Counts.DiffInsignificant++
		return false
	}
	acc.Counts.DiffSignificant++
	acc.Flags.HasSignificantDiff = true
	acc.Flags.FilesAreCloseEnough = false
	isSignificant = true
	if roundedDiff > acc.Diffs.MaxSignificant {
		acc.Diffs.MaxSignificant = roundedDiff
		acc.Diffs.MaxSignificantDecimals = cv.MinDP
	}
	if th.PercentMode && percentErr > acc.Diffs.MaxPercentError {
		acc.Diffs.MaxPercentError = percentErr
		acc.Diffs.MaxPercentErrorDecimals = cv.MinDP
	}

	if roundedDiff > th.Print {
		acc.Counts.DiffPrint++
		acc.Flags.HasPrintedDiff = true
	}

	// LEVEL 4: marginal / non-marginal.
	if !skipTL && cv.V1 > th.Marginal && cv.V1 < th.Ignore && cv.V2 > th.Marginal && cv.V2 < th.Ignore {
		acc.Counts.DiffMarginal++
		acc.Flags.HasMarginalDiff = true
		return isSignificant
	}

	// LEVEL 5: critical / non-critical.
	if !skipTL && roundedDiff > th.Critical && cv.V1 <= th.Ignore && cv.V2 <= th.Ignore {
		acc.Counts.DiffCritical++
		acc.Flags.HasCriticalDiff = true
		d.emitFirstCriticalDiagnostic(col, cv, roundedDiff, acc)
		return isSignificant
	}

	// LEVEL 6: error / non-error, the remainder of the significant set
	// (skip-TL columns, pairs with one value above the ignore floor, and
	// values outside the marginal band that did not pass the critical
	// test; both-above-ignore pairs never reach here, having already been
	// routed to insignificant). Same threshold test as LEVEL 5, without
	// the v<=ignore guard, so every significant element lands in exactly
	// one of the four significant buckets (marginal, critical, error,
	// non-error).
	if isErr, _ := exceedsCriticalRule(roundedDiff, cv.V2, th); isErr {
		acc.Counts.DiffError++
		acc.Flags.HasErrorDiff = true
	} else {
		acc.Counts.DiffNonError++
		acc.Flags.HasNonErrorDiff = true
	}
	return isSignificant
}

func (d *DifferenceAnalyzer) emitFirstCriticalDiagnostic(col int, cv ColumnValues, roundedDiff float64, acc *Accumulators) {
	if d.Diag == nil || acc.Flags.criticalDiagnosticEmitted {
		return
	}
	acc.Flags.criticalDiagnosticEmitted = true
	fmt.Fprintf(d.Diag, "first critical difference: column %d, range %.3f, %.6f vs %.6f (diff %.6f)\n",
		col, cv.Range, cv.V1, cv.V2, roundedDiff)
}

// exceedsSignificant implements the LEVEL 3 threshold test, dispatching on
// Sensitive / PercentMode / normal mode.
func exceedsSignificant(roundedDiff, v2 float64, th Thresholds, colThreshold float64) (exceeds bool, percentErr float64) {
	if th.Sensitive {
		return true, 0
	}
	if th.PercentMode {
		if absFloat(v2) > th.Zero {
			pct := roundedDiff / absFloat(v2)
			return pct > th.SignificantPercent, pct * 100
		}
		return roundedDiff > th.Zero, 0
	}
	floor := th.Significant
	if colThreshold > floor {
		floor = colThreshold
	}
	return roundedDiff > floor, 0
}

// exceedsCriticalRule implements the LEVEL 6 error test: outside percent
// mode it compares against the critical threshold; in percent mode it
// applies the same percentage rule as LEVEL 3 (SignificantPercent).
func exceedsCriticalRule(roundedDiff, v2 float64, th Thresholds) (exceeds bool, percentErr float64) {
	if th.PercentMode {
		if absFloat(v2) > th.Zero {
			pct := roundedDiff / absFloat(v2)
			return pct > th.SignificantPercent, pct * 100
		}
		return roundedDiff > th.Zero, 0
	}
	return roundedDiff > th.Critical, 0
}
