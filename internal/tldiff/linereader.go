package tldiff

import (
	"bufio"
	"io"
	"strings"

	"github.com/jonlighthall/tldiff/internal/tlerrors"
)

// LineReader is the Line Reader (C2): it loads a file into memory as a
// slice of raw lines and pairs two such slices elementwise in lockstep,
// Reading the whole file up front (rather than re-seeking a
// live handle) lets the Structure Analyzer (C3) inspect the full column-
// count sequence before the element walk begins, while the walk itself
// still proceeds strictly one paired line at a time.
type LineReader struct{}

// NewLineReader returns a ready-to-use LineReader.
func NewLineReader() *LineReader {
	return &LineReader{}
}

// ReadAll reads every line of r, stripping the trailing newline.
func (lr *LineReader) ReadAll(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, tlerrors.FileAccess("failed to read file", err)
	}
	return lines, nil
}

// Pair returns the elementwise-paired prefix of a and b plus whatever tail
// remains on the longer side once the shorter one runs out.
func (lr *LineReader) Pair(a, b []string) (pairs int, tailA, tailB []string) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return n, a[n:], b[n:]
}

// HasNonBlankTail reports whether a residual tail contains any non-blank
// line: a trailing run of blank lines is not a hard structural
// incompatibility.
func HasNonBlankTail(tail []string) bool {
	for _, l := range tail {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}
