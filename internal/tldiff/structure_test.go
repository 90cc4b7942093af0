package tldiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupColumnCounts(t *testing.T) {
	s := NewStructureAnalyzer()
	groups := s.GroupColumnCounts([]int{3, 3, 3, 4, 4})
	assert.Equal(t, []ColumnGroup{{ColumnCount: 3, LineCount: 3}, {ColumnCount: 4, LineCount: 2}}, groups)
}

func TestCompatible(t *testing.T) {
	s := NewStructureAnalyzer()
	a := []ColumnGroup{{ColumnCount: 3, LineCount: 3}, {ColumnCount: 4, LineCount: 2}}
	b := []ColumnGroup{{ColumnCount: 3, LineCount: 1}, {ColumnCount: 4, LineCount: 5}}
	assert.True(t, s.Compatible(a, b))

	c := []ColumnGroup{{ColumnCount: 3, LineCount: 3}}
	assert.False(t, s.Compatible(a, c))

	d := []ColumnGroup{{ColumnCount: 3, LineCount: 3}, {ColumnCount: 5, LineCount: 2}}
	assert.False(t, s.Compatible(a, d))
}

func TestIsRangeData(t *testing.T) {
	s := NewStructureAnalyzer()
	assert.True(t, s.IsRangeData([]float64{0, 1, 2, 3, 4}))
	assert.False(t, s.IsRangeData([]float64{0, 1})) // too few points
	assert.False(t, s.IsRangeData([]float64{150, 151, 152}))
	assert.False(t, s.IsRangeData([]float64{4, 3, 2, 1}))
}

func TestDetectUnitMismatch(t *testing.T) {
	s := NewStructureAnalyzer()
	a := []float64{1, 2, 3, 4}
	b := []float64{1852, 3704, 5556, 7408}
	mismatch, firstLine, ratio := s.DetectUnitMismatch(a, b)
	assert.True(t, mismatch)
	assert.Equal(t, 0, firstLine)
	assert.InDelta(t, 1852, ratio, 1)
}

func TestDetectUnitMismatch_None(t *testing.T) {
	s := NewStructureAnalyzer()
	mismatch, _, _ := s.DetectUnitMismatch([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	assert.False(t, mismatch)
}
