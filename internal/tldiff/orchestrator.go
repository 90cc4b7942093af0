package tldiff

import (
	"io"
	"strconv"
	"strings"

	"github.com/jonlighthall/tldiff/internal/tllog"
)

// Orchestrator is the Orchestrator (C9): it owns the Accumulators for one
// comparison run and drives the other eight components in sequence —
// read both files, analyze structure, walk paired lines through the
// parser and the six-level difference pipeline, then run the post-hoc
// accumulation analysis and render the verdict.
type Orchestrator struct {
	Thresholds     Thresholds
	MinAccumPoints int
	SlopeThreshold float64
	R2Threshold    float64
	AutocorrThresh float64
	BiasThreshold  float64

	Log *tllog.Logger

	parser    *Parser
	lineRdr   *LineReader
	structure *StructureAnalyzer
	format    *FormatTracker
	diff      *DifferenceAnalyzer
	accum     *AccumulationAnalyzer
	report    *Reporter
}

// New builds an Orchestrator. diag receives the Difference Analyzer's
// one-shot first-critical diagnostic (may be nil); log receives
// per-component progress (may be tllog.Discard()).
func New(th Thresholds, minAccumPoints int, slopeThreshold, r2Threshold, autocorrThresh, biasThreshold float64, diag io.Writer, log *tllog.Logger) *Orchestrator {
	if log == nil {
		log = tllog.Discard()
	}
	return &Orchestrator{
		Thresholds:     th,
		MinAccumPoints: minAccumPoints,
		SlopeThreshold: slopeThreshold,
		R2Threshold:    r2Threshold,
		AutocorrThresh: autocorrThresh,
		BiasThreshold:  biasThreshold,
		Log:            log,
		parser:         NewParser(),
		lineRdr:        NewLineReader(),
		structure:      NewStructureAnalyzer(),
		format:         NewFormatTracker(),
		diff:           NewDifferenceAnalyzer(diag),
		accum:          NewAccumulationAnalyzer(minAccumPoints, slopeThreshold, r2Threshold, autocorrThresh, biasThreshold),
		report:         NewReporter(),
	}
}

// Compare reads both files in full, analyzes their structural
// compatibility, walks every paired element through the difference
// pipeline, and returns the accumulated state and final verdict.
func (o *Orchestrator) Compare(a, b io.Reader) (*Accumulators, Verdict, error) {
	acc := NewAccumulators()

	linesA, err := o.lineRdr.ReadAll(a)
	if err != nil {
		acc.Flags.FileAccessError = true
		return acc, o.report.DetermineVerdict(acc), err
	}
	linesB, err := o.lineRdr.ReadAll(b)
	if err != nil {
		acc.Flags.FileAccessError = true
		return acc, o.report.DetermineVerdict(acc), err
	}

	o.Log.Debug("read %d lines from file A, %d lines from file B", len(linesA), len(linesB))

	countsA := o.structure.ColumnCounts(linesA)
	countsB := o.structure.ColumnCounts(linesB)
	groupsA := o.structure.GroupColumnCounts(countsA)
	groupsB := o.structure.GroupColumnCounts(countsB)
	compatible := o.structure.Compatible(groupsA, groupsB)

	pairs, tailA, tailB := o.lineRdr.Pair(linesA, linesB)
	hardTail := HasNonBlankTail(tailA) || HasNonBlankTail(tailB)
	acc.Flags.StructuresCompatible = compatible && !hardTail
	if !acc.Flags.StructuresCompatible {
		o.Log.Warn("structures not compatible: groups_a=%d groups_b=%d hard_tail=%v", len(groupsA), len(groupsB), hardTail)
	}

	col0A := extractColumn0(linesA, pairs)
	col0B := extractColumn0(linesB, pairs)
	acc.Flags.Column1IsRangeData = o.structure.IsRangeData(col0A)
	if acc.Flags.Column1IsRangeData {
		if mismatch, firstLine, ratio := o.structure.DetectUnitMismatch(col0A, col0B); mismatch {
			acc.Flags.UnitMismatch = true
			acc.Flags.UnitMismatchLine = firstLine + 1
			acc.Flags.UnitMismatchRatio = ratio
		}
	}

	for i := 0; i < pairs; i++ {
		lineNo := i + 1
		acc.Counts.LineNumber = int64(lineNo)

		recA, errsA := o.parser.ParseLine(lineNo, linesA[i])
		recB, errsB := o.parser.ParseLine(lineNo, linesB[i])
		if len(errsA) > 0 || len(errsB) > 0 {
			acc.Flags.ErrorFound = true
			for _, e := range errsA {
				o.Log.Warn("%v", e)
			}
			for _, e := range errsB {
				o.Log.Warn("%v", e)
			}
		}

		n := minInt(len(recA.Cells), len(recB.Cells))
		var rangeVal float64
		if n > 0 {
			rangeVal = recA.Cells[0].Value
		}

		for col := 0; col < n; col++ {
			cellA, cellB := recA.Cells[col], recB.Cells[col]
			if cellA.Decimals == -1 || cellB.Decimals == -1 {
				continue // malformed token: skip this column, keep the rest of the line
			}

			minDP := minInt(cellA.Decimals, cellB.Decimals)
			maxDP := maxInt(cellA.Decimals, cellB.Decimals)
			if o.format.Update(col, minDP) {
				acc.Flags.NewFmt = true
			}
			colThreshold := o.format.ColumnThreshold(col)

			cv := ColumnValues{
				V1: cellA.Value, V2: cellB.Value,
				Range: rangeVal,
				DP1:   cellA.Decimals, DP2: cellB.Decimals,
				MinDP: minDP, MaxDP: maxDP,
			}

			skipTL := col == 0 && acc.Flags.Column1IsRangeData
			isDataColumn := !skipTL
			rawDiff := absFloat(cv.V1 - cv.V2)
			acc.RMSE.Observe(col, rawDiff, isDataColumn)
			if isDataColumn {
				weight := TLWeight((cv.V1 + cv.V2) / 2)
				acc.RMSE.ObserveWeighted(weight, rawDiff)
				acc.TL.Observe(rangeVal, cv.V1, cv.V2)
			}

			isSig := o.diff.Process(col, cv, o.Thresholds, colThreshold, skipTL, acc)
			if acc.Flags.Column1IsRangeData && isDataColumn && isSig {
				acc.Accum.Append(rangeVal, cv.V1-cv.V2, cv.V1, cv.V2, isSig)
			}
		}

		if !acc.Flags.StructuresCompatible {
			o.format.Reset()
		}
	}

	acc.Flags.FileEndReached = true

	if acc.Flags.Column1IsRangeData {
		acc.AccumResult = o.accum.Analyze(&acc.Accum)

		m1 := ComputeM1(&acc.RMSE)
		m2, err := ComputeM2(acc.TL.Points, acc.TL.MaxRange)
		if err != nil {
			o.Log.Warn("M2 computation failed: %v", err)
		}
		m3 := ComputeM3(acc.TL.Points)
		acc.Curve = CurveMetrics{M1: m1, M2: m2, M3: m3, MCurve: ComputeMCurve(m1, m2, m3)}
	}

	verdict := o.report.DetermineVerdict(acc)
	return acc, verdict, nil
}

// WriteReport renders the full summary for acc/verdict to w.
func (o *Orchestrator) WriteReport(w io.Writer, acc *Accumulators, verdict Verdict) error {
	return o.report.WriteSummary(w, acc, verdict)
}

// extractColumn0 parses the first column of up to n lines as a float,
// skipping (zero-valued) any line whose first field doesn't parse. Used
// only for the coarse range/unit-mismatch heuristics of the Structure
// Analyzer, which tolerate an occasional unparsed value.
func extractColumn0(lines []string, n int) []float64 {
	if n > len(lines) {
		n = len(lines)
	}
	vals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			vals = append(vals, 0)
			continue
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			vals = append(vals, 0)
			continue
		}
		vals = append(vals, v)
	}
	return vals
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
