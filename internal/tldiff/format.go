package tldiff

import "math"

// FormatTracker is the Format Tracker (C4): it keeps a per-column running
// minimum of observed decimal precision and derives the rounding threshold
// that precision implies.
type FormatTracker struct {
	minDP map[int]int
}

// NewFormatTracker returns a ready-to-use FormatTracker.
func NewFormatTracker() *FormatTracker {
	return &FormatTracker{minDP: make(map[int]int)}
}

// Update folds one observed decimal count into column col's running
// minimum, returning true each time that column's minimum decreases
// (the new_fmt signal: the column's printed
// precision just got coarser than anything seen so far).
func (f *FormatTracker) Update(col, observedDP int) (newFmt bool) {
	prev, ok := f.minDP[col]
	if !ok {
		f.minDP[col] = observedDP
		return false
	}
	if observedDP < prev {
		f.minDP[col] = observedDP
		return true
	}
	return false
}

// ColumnThreshold returns the rounding threshold that the column's
// current running-minimum precision implies: one unit in the last place
// at that many decimals, i.e. 10^-minDP.
func (f *FormatTracker) ColumnThreshold(col int) float64 {
	dp, ok := f.minDP[col]
	if !ok {
		return 0
	}
	return math.Pow(10, -float64(dp))
}

// MinDP returns the current running-minimum decimal count for col.
func (f *FormatTracker) MinDP(col int) int {
	return f.minDP[col]
}

// Reset clears all tracked column precisions. Called by the Orchestrator
// when the Structure Analyzer determines the files are not structurally
// compatible from this point on, since a stale per-column precision no
// longer means anything once the column layout itself has changed
// unexpectedly.
func (f *FormatTracker) Reset() {
	f.minDP = make(map[int]int)
}
