package tldiff

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator() *Orchestrator {
	th := NewThresholds(0.01, 1.0, 0.001, DefaultZero, 110.0, 138.47)
	return New(th, 10, 0.001, 0.5, 0.5, 3*DefaultZero, nil, nil)
}

func TestOrchestrator_IdenticalFiles(t *testing.T) {
	o := newTestOrchestrator()
	content := "0.0 150.0\n1.0 151.0\n2.0 152.0\n"
	acc, verdict, err := o.Compare(strings.NewReader(content), strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, ExitOK, verdict.ExitCode)
	assert.True(t, acc.Flags.FilesAreSame)
}

func TestOrchestrator_StructurallyIncompatible(t *testing.T) {
	o := newTestOrchestrator()
	a := "1.0 2.0 3.0\n1.0 2.0 3.0\n1.0 2.0 3.0\n"
	b := "1.0 2.0\n1.0 2.0\n1.0 2.0\n"
	_, verdict, err := o.Compare(strings.NewReader(a), strings.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, ExitDiffers, verdict.ExitCode)
}

func TestOrchestrator_SignificantDifference(t *testing.T) {
	o := newTestOrchestrator()
	a := "0.0 100.0\n1.0 101.0\n2.0 102.0\n"
	b := "0.0 100.0\n1.0 101.5\n2.0 105.0\n" // second/third rows differ well beyond 0.01
	acc, verdict, err := o.Compare(strings.NewReader(a), strings.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, ExitDiffers, verdict.ExitCode)
	assert.True(t, acc.Flags.HasSignificantDiff)
}

func TestOrchestrator_MalformedTokenDoesNotAbortScan(t *testing.T) {
	o := newTestOrchestrator()
	a := "0.0 150.0\n1.0 NaNtoken\n2.0 152.0\n"
	b := "0.0 150.0\n1.0 151.0\n2.0 152.0\n"
	acc, _, err := o.Compare(strings.NewReader(a), strings.NewReader(b))
	require.NoError(t, err)
	assert.True(t, acc.Flags.ErrorFound)
	assert.Equal(t, int64(3), acc.Counts.LineNumber)
}

func TestOrchestrator_RangeDataTriggersAccumulation(t *testing.T) {
	o := newTestOrchestrator()
	var aLines, bLines []string
	for i := 0; i < 20; i++ {
		rng := float64(i)
		aLines = append(aLines, sprintLine(rng, 100.0))
		bLines = append(bLines, sprintLine(rng, 100.0+0.1*rng)) // growing discrepancy
	}
	a := strings.Join(aLines, "\n") + "\n"
	b := strings.Join(bLines, "\n") + "\n"
	acc, _, err := o.Compare(strings.NewReader(a), strings.NewReader(b))
	require.NoError(t, err)
	assert.True(t, acc.Flags.Column1IsRangeData)
	assert.NotEqual(t, Pattern(""), acc.AccumResult.Pattern)
}

func TestOrchestrator_BothAboveIgnoreRoutedInsignificant(t *testing.T) {
	o := newTestOrchestrator()
	a := "0.0 140.0\n1.0 141.0\n2.0 142.0\n"
	b := "0.0 141.0\n1.0 142.0\n2.0 143.0\n" // diff 1.0, both sides above the 138.47 ignore floor
	acc, verdict, err := o.Compare(strings.NewReader(a), strings.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, ExitOK, verdict.ExitCode)
	assert.Equal(t, int64(0), acc.Counts.DiffSignificant)
	assert.True(t, acc.Counts.DiffHighIgnore > 0)
}

func sprintLine(rng, tl float64) string {
	return floatStr(rng) + " " + floatStr(tl)
}

func floatStr(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
