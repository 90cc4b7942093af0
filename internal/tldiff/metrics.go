package tldiff

import (
	"github.com/montanaflynn/stats"
	gonumstat "gonum.org/v1/gonum/stat"
)

// ComputeM1 is the TL-weighted RMSE curve-similarity metric.
func ComputeM1(r *RMSEStats) float64 {
	return r.WeightedRMSE()
}

// topRangeFraction is the fraction of the maximum range at which M2's
// window starts: M2 uses only ranges at or above it (the last 4%).
const topRangeFraction = 0.96

// ComputeM2 is the mean absolute difference restricted to the top 4% of
// the range axis, where curves are most sensitive to accumulated error.
func ComputeM2(points []TLPoint, maxRange float64) (float64, error) {
	cutoff := topRangeFraction * maxRange
	var diffs stats.Float64Data
	for _, p := range points {
		if p.Range >= cutoff {
			diffs = append(diffs, p.AbsDiff)
		}
	}
	if len(diffs) == 0 {
		return 0, nil
	}
	return diffs.Mean()
}

// ComputeM3 is the Pearson correlation coefficient between the two TL
// curves.
func ComputeM3(points []TLPoint) float64 {
	if len(points) < 2 {
		return 1
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.TL1
		ys[i] = p.TL2
	}
	if !hasVariance(xs) || !hasVariance(ys) {
		return 1
	}
	return gonumstat.Correlation(xs, ys, nil)
}

func hasVariance(vs []float64) bool {
	if len(vs) < 2 {
		return false
	}
	first := vs[0]
	for _, v := range vs[1:] {
		if v != first {
			return true
		}
	}
	return false
}

// scoreBreak is the difference (in dB) at which the linear score function
// changes slope.
const scoreBreak = 3.0

// scoreFloor is the difference at which the score reaches zero.
const scoreFloor = 20.0

// scoreDiff maps a dB-scale difference metric onto a 0-100 score: full
// credit tapering from 100 at d=0 to 90 at d=3, then linearly to 0 at
// d=20.
func scoreDiff(d float64) float64 {
	switch {
	case d <= scoreBreak:
		return 100 - (d/scoreBreak)*10
	case d <= scoreFloor:
		return 90 * (scoreFloor - d) / (scoreFloor - scoreBreak)
	default:
		return 0
	}
}

// ComputeMCurve combines M1/M2/M3 into the single composite curve score:
// the average of the scored M1/M2 magnitudes and the
// (floored, percentage-scaled) M3 correlation.
func ComputeMCurve(m1, m2, m3 float64) float64 {
	m3Term := m3 * 100
	if m3Term < 0 {
		m3Term = 0
	}
	return (scoreDiff(m1) + scoreDiff(m2) + m3Term) / 3
}
