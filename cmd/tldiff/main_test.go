package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonlighthall/tldiff/internal/tldiff"
)

// writeTemp writes content to a temp file under t's test directory.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func compareFiles(t *testing.T, a, b string, thresholds ...float64) (*tldiff.Accumulators, tldiff.Verdict) {
	t.Helper()
	significant, critical, printT := 0.01, 1.0, 0.001
	if len(thresholds) > 0 {
		significant = thresholds[0]
	}
	if len(thresholds) > 1 {
		critical = thresholds[1]
	}
	if len(thresholds) > 2 {
		printT = thresholds[2]
	}
	th := tldiff.NewThresholds(significant, critical, printT, tldiff.DefaultZero, 110.0, 138.47)
	orch := tldiff.New(th, 10, 0.001, 0.5, 0.5, 3*tldiff.DefaultZero, nil, nil)

	fa, err := os.Open(a)
	require.NoError(t, err)
	defer fa.Close()
	fb, err := os.Open(b)
	require.NoError(t, err)
	defer fb.Close()

	acc, verdict, err := orch.Compare(fa, fb)
	require.NoError(t, err)
	return acc, verdict
}

// Scenario 1: byte-identical tables report IDENTICAL.
func TestScenario_Identical(t *testing.T) {
	content := "0.0 150.000\n1.0 150.500\n2.0 151.000\n"
	a := writeTemp(t, "a.txt", content)
	b := writeTemp(t, "b.txt", content)
	acc, verdict := compareFiles(t, a, b)
	assert.Equal(t, tldiff.ExitOK, verdict.ExitCode)
	assert.True(t, acc.Flags.FilesAreSame)
}

// Scenario 2: differences below printed precision report EQUIVALENT.
func TestScenario_EquivalentAtPrecision(t *testing.T) {
	a := writeTemp(t, "a.txt", "0.0 150.000\n1.0 150.500\n")
	b := writeTemp(t, "b.txt", "0.0 150.0001\n1.0 150.5000\n")
	acc, verdict := compareFiles(t, a, b)
	assert.Equal(t, tldiff.ExitOK, verdict.ExitCode)
	assert.False(t, acc.Flags.FilesAreSame)
	assert.True(t, acc.Flags.FilesHaveSameValues)
}

// Scenario 3: small but above-threshold differences report CLOSE_ENOUGH
// or a significant-difference FAIL, depending on the configured threshold.
func TestScenario_CloseEnough(t *testing.T) {
	a := writeTemp(t, "a.txt", "0.0 100.00\n1.0 100.50\n")
	b := writeTemp(t, "b.txt", "0.0 100.02\n1.0 100.52\n")
	acc, verdict := compareFiles(t, a, b, 0.5, 5.0, 0.001) // significant=0.5, above the 0.02 diff
	assert.Equal(t, tldiff.ExitOK, verdict.ExitCode)
	assert.True(t, acc.Flags.FilesAreCloseEnough)
}

// Scenario 4: differences beyond the significant threshold fail.
func TestScenario_SignificantDifference(t *testing.T) {
	a := writeTemp(t, "a.txt", "0.0 100.00\n1.0 100.50\n")
	b := writeTemp(t, "b.txt", "0.0 100.50\n1.0 101.00\n")
	_, verdict := compareFiles(t, a, b, 0.01, 5.0, 0.001)
	assert.Equal(t, tldiff.ExitDiffers, verdict.ExitCode)
}

// Scenario 5: a difference beyond the critical threshold in the
// non-ignore TL range fails with a critical verdict.
func TestScenario_CriticalDifference(t *testing.T) {
	a := writeTemp(t, "a.txt", "0.0 90.00\n1.0 91.00\n")
	b := writeTemp(t, "b.txt", "0.0 95.00\n1.0 96.00\n")
	acc, verdict := compareFiles(t, a, b, 0.01, 1.0, 0.001)
	assert.Equal(t, tldiff.ExitDiffers, verdict.ExitCode)
	assert.True(t, acc.Flags.HasCriticalDiff)
}

// Scenario 6: structurally incompatible files (different column counts
// throughout) fail the comparison outright.
func TestScenario_StructuralIncompatibility(t *testing.T) {
	a := writeTemp(t, "a.txt", "1.0 2.0 3.0\n1.0 2.0 3.0\n1.0 2.0 3.0\n")
	b := writeTemp(t, "b.txt", "1.0 2.0\n1.0 2.0\n1.0 2.0\n")
	_, verdict := compareFiles(t, a, b)
	assert.Equal(t, tldiff.ExitDiffers, verdict.ExitCode)
}

func TestWriteReport_ContainsVerdict(t *testing.T) {
	content := "0.0 150.000\n1.0 150.500\n"
	a := writeTemp(t, "a.txt", content)
	b := writeTemp(t, "b.txt", content)

	th := tldiff.NewThresholds(0.01, 1.0, 0.001, tldiff.DefaultZero, 110.0, 138.47)
	orch := tldiff.New(th, 10, 0.001, 0.5, 0.5, 3*tldiff.DefaultZero, nil, nil)
	fa, _ := os.Open(a)
	defer fa.Close()
	fb, _ := os.Open(b)
	defer fb.Close()
	acc, verdict, err := orch.Compare(fa, fb)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, orch.WriteReport(&buf, acc, verdict))
	assert.Contains(t, buf.String(), "verdict:")
}
