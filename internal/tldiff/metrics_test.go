package tldiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeM1(t *testing.T) {
	var r RMSEStats
	r.ObserveWeighted(1.0, 2.0)
	r.ObserveWeighted(0.5, 4.0)
	m1 := ComputeM1(&r)
	assert.Greater(t, m1, 0.0)
}

func TestComputeM2_RestrictsToTailRange(t *testing.T) {
	points := []TLPoint{
		{Range: 10, AbsDiff: 100}, // far from the tail, excluded
		{Range: 98, AbsDiff: 2},
		{Range: 99, AbsDiff: 4},
	}
	m2, err := ComputeM2(points, 100)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, m2, 1e-9)
}

func TestComputeM3_PerfectCorrelation(t *testing.T) {
	points := []TLPoint{{TL1: 1, TL2: 2}, {TL1: 2, TL2: 4}, {TL1: 3, TL2: 6}}
	m3 := ComputeM3(points)
	assert.InDelta(t, 1.0, m3, 1e-9)
}

func TestComputeM3_NoVariance(t *testing.T) {
	points := []TLPoint{{TL1: 1, TL2: 2}, {TL1: 1, TL2: 2}}
	assert.Equal(t, 1.0, ComputeM3(points))
}

func TestScoreDiff(t *testing.T) {
	assert.InDelta(t, 100, scoreDiff(0), 1e-9)
	assert.InDelta(t, 90, scoreDiff(3), 1e-9)
	assert.InDelta(t, 0, scoreDiff(20), 1e-9)
	assert.Equal(t, 0.0, scoreDiff(25))
}

func TestComputeMCurve(t *testing.T) {
	mc := ComputeMCurve(0, 0, 1)
	assert.InDelta(t, 100, mc, 1e-9)
}
