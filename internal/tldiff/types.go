// Package tldiff implements the precision-aware numerical comparator core:
// the column-aligned tabular reader (C1/C2), the structure and format
// analyzers (C3/C4), the six-level difference pipeline (C5), the RMSE/TL
// metrics collector (C6), the post-hoc accumulation analyzer (C7), and the
// reporter/orchestrator (C8/C9) that ties them together.
package tldiff

// NumericCell is one parsed numeric token together with its effective
// printed decimal precision.
type NumericCell struct {
	Value    float64
	Decimals int // -1 is the sentinel for a token that failed to parse
}

// LineRecord is one parsed row: an ordered sequence of cells. A complex
// token "(a,b)" expands to two cells. Constructed per line, consumed during
// the element walk, then discarded.
type LineRecord struct {
	LineNo int
	Cells  []NumericCell
}

// ColumnValues is one aligned element pair.
type ColumnValues struct {
	V1, V2     float64
	Range      float64 // first numeric cell of the current line
	DP1, DP2   int
	MinDP      int // governs rounding
	MaxDP      int // governs unrounded display
}

// Thresholds is the configuration bundle governing the difference pipeline.
type Thresholds struct {
	Significant        float64 // user-supplied lower bound; 0 activates Sensitive
	Critical            float64
	Print                float64
	Zero                 float64 // 2^-23
	Marginal             float64 // 110.0 dB
	Ignore               float64 // -20*log10(2^-23) ~= 138.47 dB
	Sensitive            bool    // user.significant == 0
	PercentMode          bool    // user.significant < 0
	SignificantPercent   float64 // |significant|/100, only set in PercentMode
}

// NewThresholds builds a Thresholds bundle from the raw user-supplied
// significant/critical/print values and the fixed zero/marginal/ignore
// constants, computing the derived Sensitive/PercentMode/SignificantPercent
// fields exactly once rather than recomputing them on every element.
func NewThresholds(userSignificant, critical, print, zero, marginal, ignore float64) Thresholds {
	t := Thresholds{
		Critical: critical,
		Print:    print,
		Zero:     zero,
		Marginal: marginal,
		Ignore:   ignore,
	}
	switch {
	case userSignificant == 0:
		t.Sensitive = true
		t.Significant = 0
	case userSignificant < 0:
		t.PercentMode = true
		t.SignificantPercent = absFloat(userSignificant) / 100
		t.Significant = 0
	default:
		t.Significant = userSignificant
	}
	return t
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// DefaultZero is 2^-23, the default floating-point "raw zero" floor.
const DefaultZero = 1.0 / (1 << 23)

// CountStats are the per-level discrimination counters.
type CountStats struct {
	LineNumber         int64
	ElemNumber         int64
	DiffNonZero        int64
	DiffTrivial        int64
	DiffNonTrivial     int64
	DiffInsignificant  int64
	DiffSignificant    int64
	DiffMarginal       int64
	DiffCritical       int64
	DiffError          int64
	DiffNonError       int64
	DiffPrint          int64
	DiffHighIgnore     int64
}

// DiffStats are the maxima and their precisions.
type DiffStats struct {
	MaxNonZero            float64
	MaxNonZeroDecimals     int
	MaxNonTrivial          float64
	MaxNonTrivialDecimals  int
	MaxSignificant         float64
	MaxSignificantDecimals int
	MaxPercentError        float64
	MaxPercentErrorDecimals int
}

// Flags is the boolean state accumulated across one comparison run.
type Flags struct {
	NewFmt               bool
	FileEndReached       bool
	ErrorFound           bool
	FileAccessError      bool
	StructuresCompatible bool

	HasNonZeroDiff    bool
	HasNonTrivialDiff bool
	HasSignificantDiff bool
	HasMarginalDiff    bool
	HasCriticalDiff    bool
	HasErrorDiff       bool
	HasNonErrorDiff    bool
	HasPrintedDiff     bool

	Column1IsRangeData bool

	UnitMismatch      bool
	UnitMismatchLine  int
	UnitMismatchRatio float64

	// Overall verdict flags, narrowed by the Difference Analyzer (C5) and
	// read by the Reporter (C8).
	FilesAreSame         bool
	FilesHaveSameValues  bool
	FilesAreCloseEnough  bool

	// criticalDiagnosticEmitted tracks the Difference Analyzer's one-shot
	// first-critical-event diagnostic.
	criticalDiagnosticEmitted bool
}

// RMSEStats accumulates unweighted and TL-weighted squared-error sums,
// during the element walk.
type RMSEStats struct {
	SumSqAll   float64
	CountAll   int64
	SumSqData  float64 // excludes column 0 when Column1IsRangeData
	CountData  int64
	PerColumn  map[int]*ColumnRMSE

	WeightedSumSq float64
	WeightedSum   float64 // sum of weights, for the weighted RMSE denominator
}

// ColumnRMSE is the per-column running sum-of-squares.
type ColumnRMSE struct {
	SumSq float64
	Count int64
}

// Observe adds one element's squared raw difference to the running sums.
func (r *RMSEStats) Observe(col int, rawDiff float64, isDataColumn bool) {
	if r.PerColumn == nil {
		r.PerColumn = make(map[int]*ColumnRMSE)
	}
	sq := rawDiff * rawDiff
	r.SumSqAll += sq
	r.CountAll++
	if isDataColumn {
		r.SumSqData += sq
		r.CountData++
	}
	cr, ok := r.PerColumn[col]
	if !ok {
		cr = &ColumnRMSE{}
		r.PerColumn[col] = cr
	}
	cr.SumSq += sq
	cr.Count++
}

// ObserveWeighted adds one TL-weighted squared difference.
func (r *RMSEStats) ObserveWeighted(weight, rawDiff float64) {
	r.WeightedSumSq += weight * rawDiff * rawDiff
	r.WeightedSum += weight
}

// RMSE returns sqrt(sumSq/n), or 0 when n is 0.
func (r *RMSEStats) RMSE() float64 {
	return rmseOf(r.SumSqAll, r.CountAll)
}

// RMSEData returns the data-only (column-0-excluded) RMSE.
func (r *RMSEStats) RMSEData() float64 {
	return rmseOf(r.SumSqData, r.CountData)
}

// WeightedRMSE returns the TL-weighted RMSE (M1).
func (r *RMSEStats) WeightedRMSE() float64 {
	if r.WeightedSum <= 0 {
		return 0
	}
	return sqrtOf(r.WeightedSumSq / r.WeightedSum)
}

// TLWeight computes w(tl) = clamp((110-tl)/50, 0, 1).
func TLWeight(tl float64) float64 {
	w := (110 - tl) / 50
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// TLPoint is one (range, tl1, tl2, abs_diff) tuple collected for curve
// similarity metrics.
type TLPoint struct {
	Range   float64
	TL1     float64
	TL2     float64
	AbsDiff float64
}

// TLMetrics stores the TL curve-similarity point series.
type TLMetrics struct {
	Points   []TLPoint
	MaxRange float64
}

// Observe appends one TL point and updates MaxRange.
func (m *TLMetrics) Observe(rng, tl1, tl2 float64) {
	m.Points = append(m.Points, TLPoint{Range: rng, TL1: tl1, TL2: tl2, AbsDiff: absFloat(tl1 - tl2)})
	if rng > m.MaxRange {
		m.MaxRange = rng
	}
}

// ErrorAccumulationData is the parallel time-series collected for the
// Accumulation Analyzer (C7).
type ErrorAccumulationData struct {
	Ranges       []float64
	Errors       []float64 // raw signed error (v1-v2), used for regression/run-test/CUSUM
	TLRef        []float64
	TLTest       []float64
	Significant  []bool
	MinRange     float64
	MaxRange     float64
	hasPoints    bool
}

// Append records one (range, error, tl1, tl2, significant) observation.
func (e *ErrorAccumulationData) Append(rng, errVal, tl1, tl2 float64, significant bool) {
	e.Ranges = append(e.Ranges, rng)
	e.Errors = append(e.Errors, errVal)
	e.TLRef = append(e.TLRef, tl1)
	e.TLTest = append(e.TLTest, tl2)
	e.Significant = append(e.Significant, significant)
	if !e.hasPoints || rng < e.MinRange {
		e.MinRange = rng
	}
	if !e.hasPoints || rng > e.MaxRange {
		e.MaxRange = rng
	}
	e.hasPoints = true
}

// N returns the number of points collected.
func (e *ErrorAccumulationData) N() int {
	return len(e.Ranges)
}

// Pattern labels the qualitative classification of the range-indexed error
// series.
type Pattern string

const (
	PatternSystematicGrowth Pattern = "SYSTEMATIC_GROWTH"
	PatternSystematicBias   Pattern = "SYSTEMATIC_BIAS"
	PatternRandomNoise      Pattern = "RANDOM_NOISE"
	PatternNullPointNoise   Pattern = "NULL_POINT_NOISE"
	PatternTransientSpikes  Pattern = "TRANSIENT_SPIKES"
	PatternInsufficientData Pattern = "INSUFFICIENT_DATA"
)

// AccumulationMetrics is the result of the post-hoc error-accumulation
// analysis.
type AccumulationMetrics struct {
	Slope        float64
	Intercept    float64
	R2           float64
	SlopeStdErr  float64
	PValue       float64
	AutocorrLag1 float64
	NRuns        int
	ExpectedRuns float64
	RunTestZ     float64
	RunTestP     float64
	CusumMax     float64
	CusumFinal   float64
	RMSE         float64
	MeanError    float64
	MaxError     float64
	Pattern      Pattern
}

// Accumulators bundles all state owned exclusively by the Orchestrator
// (C9); every analyzer method takes a (possibly narrowed) reference to it
// for the duration of one process-element call.
type Accumulators struct {
	Counts CountStats
	Diffs  DiffStats
	Flags  Flags
	RMSE   RMSEStats
	TL     TLMetrics
	Accum  ErrorAccumulationData

	AccumResult AccumulationMetrics
	Curve       CurveMetrics
}

// CurveMetrics bundles the M1/M2/M3/M_curve transmission-loss curve
// similarity scores computed once, after the element walk, from the
// collected TLMetrics point series.
type CurveMetrics struct {
	M1     float64
	M2     float64
	M3     float64
	MCurve float64
}

// NewAccumulators returns a freshly initialized Accumulators with the
// verdict flags in their optimistic starting state: each "files are ..."
// flag starts true and only ever narrows as differences are observed.
func NewAccumulators() *Accumulators {
	a := &Accumulators{}
	a.Flags.StructuresCompatible = true
	a.Flags.FilesAreSame = true
	a.Flags.FilesHaveSameValues = true
	a.Flags.FilesAreCloseEnough = true
	return a
}

func rmseOf(sumSq float64, n int64) float64 {
	if n <= 0 {
		return 0
	}
	return sqrtOf(sumSq / float64(n))
}
