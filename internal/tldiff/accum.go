package tldiff

import (
	"math"

	"github.com/montanaflynn/stats"
	gonumstat "gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// meanOf wraps stats.Mean, ignoring its sentinel error on degenerate
// (empty) input.
func meanOf(ys []float64) float64 {
	m, err := stats.Mean(ys)
	if err != nil {
		return 0
	}
	return m
}

// AccumulationAnalyzer is the Accumulation Analyzer (C7): a post-hoc pass
// over the range-indexed series of significant signed errors that fits a
// linear trend, measures lag-1 autocorrelation, runs the Wald-Wolfowitz
// run test, tracks a CUSUM, and classifies the result into one of the
// named error-growth patterns. It only ever runs once, after
// the element walk completes, over column-1-is-range-data files.
type AccumulationAnalyzer struct {
	MinPoints      int
	SlopeThreshold float64
	R2Threshold    float64
	AutocorrThresh float64
	BiasThreshold  float64 // absolute error threshold, e.g. 3*zero
}

// NewAccumulationAnalyzer builds an analyzer from the configured
// thresholds (overridable via tlconfig).
func NewAccumulationAnalyzer(minPoints int, slopeThreshold, r2Threshold, autocorrThresh, biasThreshold float64) *AccumulationAnalyzer {
	return &AccumulationAnalyzer{
		MinPoints:      minPoints,
		SlopeThreshold: slopeThreshold,
		R2Threshold:    r2Threshold,
		AutocorrThresh: autocorrThresh,
		BiasThreshold:  biasThreshold,
	}
}

// Analyze runs the full battery over data, or returns INSUFFICIENT_DATA
// if there are too few points to trust any of the statistics.
func (a *AccumulationAnalyzer) Analyze(data *ErrorAccumulationData) AccumulationMetrics {
	n := data.N()
	if n < a.MinPoints {
		return AccumulationMetrics{Pattern: PatternInsufficientData}
	}

	xs, ys := data.Ranges, data.Errors

	alpha, beta := gonumstat.LinearRegression(xs, ys, nil, false)
	r2 := gonumstat.RSquared(xs, ys, nil, alpha, beta)
	slopeStdErr, pValue := regressionSlopeTest(xs, ys, alpha, beta)
	autocorr := autocorrelationLag1(ys)
	nRuns, expectedRuns, runZ := runTest(ys)
	runP := runTestPValue(runZ)
	cusumMax, cusumFinal := cusum(ys)
	meanErr := meanOf(ys)
	rmse := rmseOfSeries(ys)
	maxErr := maxAbs(ys)

	m := AccumulationMetrics{
		Slope:        beta,
		Intercept:    alpha,
		R2:           r2,
		SlopeStdErr:  slopeStdErr,
		PValue:       pValue,
		AutocorrLag1: autocorr,
		NRuns:        nRuns,
		ExpectedRuns: expectedRuns,
		RunTestZ:     runZ,
		RunTestP:     runP,
		CusumMax:     cusumMax,
		CusumFinal:   cusumFinal,
		RMSE:         rmse,
		MeanError:    meanErr,
		MaxError:     maxErr,
	}
	m.Pattern = a.classify(m, rmse)
	return m
}

// classify applies the pattern-decision order: a
// statistically significant growing trend wins first, then a persistent
// correlated bias, then a uniformly tiny noise floor, then isolated
// spikes against an otherwise quiet baseline, with uncorrelated noise as
// the default.
func (a *AccumulationAnalyzer) classify(m AccumulationMetrics, rmse float64) Pattern {
	switch {
	case absFloat(m.Slope) > a.SlopeThreshold && m.R2 > a.R2Threshold && m.PValue < 0.05:
		return PatternSystematicGrowth
	case absFloat(m.MeanError) > a.BiasThreshold && m.AutocorrLag1 > a.AutocorrThresh:
		return PatternSystematicBias
	case rmse <= a.BiasThreshold/3 && m.MaxError <= a.BiasThreshold:
		return PatternNullPointNoise
	case m.MaxError > 3*rmse && rmse > 0:
		return PatternTransientSpikes
	default:
		return PatternRandomNoise
	}
}

// regressionSlopeTest returns the slope's standard error and the
// two-sided p-value of the t-test against slope==0, using a Student's t
// distribution with n-2 degrees of freedom.
func regressionSlopeTest(xs, ys []float64, alpha, beta float64) (stdErr, pValue float64) {
	n := len(xs)
	if n <= 2 {
		return 0, 1
	}
	xMean := gonumstat.Mean(xs, nil)
	var ssResid, ssX float64
	for i := range xs {
		pred := alpha + beta*xs[i]
		resid := ys[i] - pred
		ssResid += resid * resid
		dx := xs[i] - xMean
		ssX += dx * dx
	}
	if ssX == 0 {
		return 0, 1
	}
	df := float64(n - 2)
	residualVar := ssResid / df
	stdErr = math.Sqrt(residualVar / ssX)
	if stdErr == 0 {
		return 0, 0
	}
	t := beta / stdErr
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * (1 - dist.CDF(absFloat(t)))
	return stdErr, pValue
}

// autocorrelationLag1 is the sample lag-1 autocorrelation of a series.
func autocorrelationLag1(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	mean := meanOf(ys)
	var num, den float64
	for i := 0; i < n-1; i++ {
		num += (ys[i] - mean) * (ys[i+1] - mean)
	}
	for i := 0; i < n; i++ {
		d := ys[i] - mean
		den += d * d
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// runTest applies the Wald-Wolfowitz run test for randomness to the signs
// of a series centered on its mean, returning the observed run count, the
// expected run count under the null hypothesis, and the z-score.
func runTest(ys []float64) (runs int, expected, z float64) {
	mean := meanOf(ys)
	var nPos, nNeg int
	var signs []int
	for _, y := range ys {
		if y-mean >= 0 {
			signs = append(signs, 1)
			nPos++
		} else {
			signs = append(signs, -1)
			nNeg++
		}
	}
	if len(signs) == 0 {
		return 0, 0, 0
	}
	runs = 1
	for i := 1; i < len(signs); i++ {
		if signs[i] != signs[i-1] {
			runs++
		}
	}
	n := float64(nPos + nNeg)
	if nPos == 0 || nNeg == 0 || n < 2 {
		return runs, float64(runs), 0
	}
	p, q := float64(nPos), float64(nNeg)
	expected = 1 + (2*p*q)/n
	variance := (2 * p * q * (2*p*q - n)) / (n * n * (n - 1))
	if variance <= 0 {
		return runs, expected, 0
	}
	z = (float64(runs) - expected) / math.Sqrt(variance)
	return runs, expected, z
}

// runTestPValue is the two-sided significance of a run-test z-score
// against the standard normal distribution.
func runTestPValue(z float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return 2 * dist.CDF(-absFloat(z))
}

// cusum returns the maximum absolute cumulative sum of a mean-centered
// series and its final value, the standard CUSUM change-detection
// statistic.
func cusum(ys []float64) (maxAbsCusum, final float64) {
	mean := meanOf(ys)
	var running float64
	for _, y := range ys {
		running += y - mean
		if absFloat(running) > maxAbsCusum {
			maxAbsCusum = absFloat(running)
		}
	}
	return maxAbsCusum, running
}

func rmseOfSeries(ys []float64) float64 {
	if len(ys) == 0 {
		return 0
	}
	var sumSq float64
	for _, y := range ys {
		sumSq += y * y
	}
	return sqrtOf(sumSq / float64(len(ys)))
}

func maxAbs(ys []float64) float64 {
	var m float64
	for _, y := range ys {
		if absFloat(y) > m {
			m = absFloat(y)
		}
	}
	return m
}
