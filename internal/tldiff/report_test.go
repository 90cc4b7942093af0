package tldiff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_DetermineVerdict(t *testing.T) {
	rp := NewReporter()

	same := NewAccumulators()
	assert.Equal(t, ExitOK, rp.DetermineVerdict(same).ExitCode)
	assert.Equal(t, "IDENTICAL", rp.DetermineVerdict(same).Label)

	critical := NewAccumulators()
	critical.Flags.HasCriticalDiff = true
	critical.Flags.FilesAreSame = false
	assert.Equal(t, ExitDiffers, rp.DetermineVerdict(critical).ExitCode)

	incompatible := NewAccumulators()
	incompatible.Flags.StructuresCompatible = false
	assert.Equal(t, ExitDiffers, rp.DetermineVerdict(incompatible).ExitCode)

	access := NewAccumulators()
	access.Flags.FileAccessError = true
	assert.Equal(t, ExitComparisonFailed, rp.DetermineVerdict(access).ExitCode)
}

func TestReporter_WriteSummary(t *testing.T) {
	rp := NewReporter()
	acc := NewAccumulators()
	acc.Counts.ElemNumber = 10
	var buf bytes.Buffer
	err := rp.WriteSummary(&buf, acc, rp.DetermineVerdict(acc))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "verdict: IDENTICAL")
	assert.Contains(t, buf.String(), "elements: 10")
}
