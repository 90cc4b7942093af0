package tldiff

import "strings"

// ColumnGroup is a maximal run of consecutive lines sharing the same
// whitespace-delimited field count.
type ColumnGroup struct {
	ColumnCount int
	LineCount   int
}

// StructureAnalyzer is the Structure Analyzer (C3): it groups each file's
// lines by column count, tests whether the two group sequences are
// compatible, and flags column-0-as-range-data and range/TL unit mismatch.
type StructureAnalyzer struct{}

// NewStructureAnalyzer returns a ready-to-use StructureAnalyzer.
func NewStructureAnalyzer() *StructureAnalyzer {
	return &StructureAnalyzer{}
}

// GroupColumnCounts collapses a per-line column-count sequence into
// maximal runs.
func (s *StructureAnalyzer) GroupColumnCounts(counts []int) []ColumnGroup {
	var groups []ColumnGroup
	for _, c := range counts {
		if len(groups) > 0 && groups[len(groups)-1].ColumnCount == c {
			groups[len(groups)-1].LineCount++
			continue
		}
		groups = append(groups, ColumnGroup{ColumnCount: c, LineCount: 1})
	}
	return groups
}

// Compatible reports whether two group sequences are structurally
// compatible: same number of groups, and matching column count in the
// final group. This is a deliberately coarse test — it
// does not require every group boundary to line up, only that the files
// settle into the same final tabular shape.
func (s *StructureAnalyzer) Compatible(a, b []ColumnGroup) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return a[len(a)-1].ColumnCount == b[len(b)-1].ColumnCount
}

// ColumnCounts returns the whitespace-delimited field count of each line.
func (s *StructureAnalyzer) ColumnCounts(lines []string) []int {
	counts := make([]int, len(lines))
	for i, l := range lines {
		counts[i] = len(strings.Fields(l))
	}
	return counts
}

// IsRangeData reports whether a column-0 value series looks like a
// monotonically increasing range axis: non-decreasing, a roughly constant
// positive step (within 1%), and a first value under 100.
func (s *StructureAnalyzer) IsRangeData(values []float64) bool {
	if len(values) < 3 {
		return false
	}
	if values[0] >= 100 {
		return false
	}
	firstStep := values[1] - values[0]
	if firstStep <= 0 {
		return false
	}
	for i := 1; i < len(values); i++ {
		step := values[i] - values[i-1]
		if step < 0 {
			return false
		}
		if step > 0 && absFloat(step-firstStep) > 0.01*firstStep {
			return false
		}
	}
	return true
}

// unitMismatchRatio is the nautical-mile-to-meter ratio tldiff checks for
// when one file's range axis looks like it was emitted in the other
// file's unit system.
const unitMismatchRatio = 1852.0

// DetectUnitMismatch scans paired column-0 values for at least three
// consecutive lines whose ratio b[i]/a[i] sits within 1% of 1852 (meters
// per nautical mile), reporting the first line and the median ratio over
// the run.
func (s *StructureAnalyzer) DetectUnitMismatch(a, b []float64) (mismatch bool, firstLine int, ratio float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	run := 0
	var ratios []float64
	for i := 0; i < n; i++ {
		if a[i] == 0 {
			run, ratios = 0, nil
			continue
		}
		r := b[i] / a[i]
		if absFloat(r-unitMismatchRatio) <= 0.01*unitMismatchRatio {
			if run == 0 {
				firstLine = i
			}
			run++
			ratios = append(ratios, r)
			if run >= 3 {
				return true, firstLine, median(ratios)
			}
			continue
		}
		run, ratios = 0, nil
	}
	return false, 0, 0
}

func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
