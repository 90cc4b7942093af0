package tldiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTracker_Update(t *testing.T) {
	f := NewFormatTracker()
	assert.False(t, f.Update(0, 3)) // first observation never signals new_fmt
	assert.False(t, f.Update(0, 4)) // precision improved, no narrowing
	assert.True(t, f.Update(0, 2))  // precision got coarser
	assert.Equal(t, 2, f.MinDP(0))
}

func TestFormatTracker_ColumnThreshold(t *testing.T) {
	f := NewFormatTracker()
	f.Update(0, 2)
	assert.InDelta(t, 0.01, f.ColumnThreshold(0), 1e-12)
}

func TestFormatTracker_Reset(t *testing.T) {
	f := NewFormatTracker()
	f.Update(0, 2)
	f.Reset()
	assert.Equal(t, 0, f.MinDP(0))
}
