package tldiff

import (
	"strconv"
	"strings"

	"github.com/jonlighthall/tldiff/internal/tlerrors"
)

// Parser is the Precision Parser (C1): it tokenizes one line of whitespace-
// separated numeric fields — including Fortran-style scientific notation
// ("D"/"d" exponents) and parenthesized complex pairs "(a,b)" — and infers
// each token's effective printed decimal precision.
type Parser struct{}

// NewParser returns a ready-to-use Parser. Stateless; kept as a type so the
// call sites read like the rest of the C1-C9 pipeline.
func NewParser() *Parser {
	return &Parser{}
}

// ParseLine tokenizes one line and parses every token into one or more
// NumericCells (a complex token expands to two). Malformed tokens are
// reported as errors but do not stop the scan: the offending cell is
// recorded with the -1 decimals sentinel so the caller can skip that
// column while still processing the rest of the line (an edge
// cases, §7 error handling).
func (p *Parser) ParseLine(lineNo int, line string) (*LineRecord, []error) {
	rec := &LineRecord{LineNo: lineNo}
	var errs []error

	for col, tok := range tokenizeLine(line) {
		if strings.HasPrefix(tok, "(") {
			a, b, err := parseComplexToken(tok)
			if err != nil {
				errs = append(errs, tlerrors.MalformedComplex(lineNo, col, tok))
				rec.Cells = append(rec.Cells, NumericCell{Decimals: -1})
				continue
			}
			rec.Cells = append(rec.Cells, a, b)
			continue
		}
		cell, err := parseNumericToken(tok)
		if err != nil {
			errs = append(errs, tlerrors.MalformedNumber(lineNo, col, tok))
			rec.Cells = append(rec.Cells, NumericCell{Decimals: -1})
			continue
		}
		rec.Cells = append(rec.Cells, cell)
	}
	return rec, errs
}

// tokenizeLine splits a line on whitespace, except that a run starting
// with '(' is scanned through its matching ')' (which may itself contain
// whitespace, as in "(1.0, 2.0)") and kept as a single token.
func tokenizeLine(line string) []string {
	var toks []string
	i, n := 0, len(line)
	for i < n {
		for i < n && isSpace(line[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		if line[i] == '(' {
			depth := 0
			for i < n {
				if line[i] == '(' {
					depth++
				} else if line[i] == ')' {
					depth--
					i++
					if depth == 0 {
						break
					}
					continue
				}
				i++
			}
			toks = append(toks, line[start:i])
			continue
		}
		for i < n && !isSpace(line[i]) {
			i++
		}
		toks = append(toks, line[start:i])
	}
	return toks
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// parseComplexToken parses "(a,b)" into its two NumericCells.
func parseComplexToken(tok string) (a, b NumericCell, err error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(tok, "("), ")")
	if inner == tok || !strings.HasSuffix(tok, ")") {
		return NumericCell{}, NumericCell{}, tlerrors.MalformedComplex(0, 0, tok)
	}
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return NumericCell{}, NumericCell{}, tlerrors.MalformedComplex(0, 0, tok)
	}
	a, errA := parseNumericToken(strings.TrimSpace(parts[0]))
	if errA != nil {
		return NumericCell{}, NumericCell{}, errA
	}
	b, errB := parseNumericToken(strings.TrimSpace(parts[1]))
	if errB != nil {
		return NumericCell{}, NumericCell{}, errB
	}
	return a, b, nil
}

// parseNumericToken parses one fixed- or scientific-notation token and
// infers its effective decimal precision.
func parseNumericToken(tok string) (NumericCell, error) {
	if tok == "" {
		return NumericCell{}, tlerrors.MalformedNumber(0, 0, tok)
	}

	mantissa, exponent, isSci := splitExponent(tok)

	parseable := tok
	if isSci {
		parseable = mantissa + "e" + exponent
	}
	value, err := strconv.ParseFloat(parseable, 64)
	if err != nil {
		return NumericCell{}, tlerrors.MalformedNumber(0, 0, tok)
	}

	if !isSci {
		return NumericCell{Value: value, Decimals: decimalsOfFixed(mantissa)}, nil
	}

	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return NumericCell{}, tlerrors.MalformedNumber(0, 0, tok)
	}
	digits := digitsOnly(mantissa)
	sig := significantFigures(digits)
	decimals := clampInt(sig-1-exp, 0, 17)
	return NumericCell{Value: value, Decimals: decimals}, nil
}

// splitExponent splits a token into its mantissa and exponent text around
// an 'e'/'E'/'d'/'D' marker, normalizing the Fortran 'd'/'D' exponent
// marker that strconv.ParseFloat does not accept on its own.
func splitExponent(tok string) (mantissa, exponent string, isSci bool) {
	for i := 1; i < len(tok); i++ { // i=1: never split on a leading sign
		c := tok[i]
		if c == 'e' || c == 'E' || c == 'd' || c == 'D' {
			return tok[:i], tok[i+1:], true
		}
	}
	return tok, "", false
}

// decimalsOfFixed counts the digits after the decimal point in plain fixed
// notation ("123.450" -> 3, "123" -> 0).
func decimalsOfFixed(tok string) int {
	idx := strings.IndexByte(tok, '.')
	if idx < 0 {
		return 0
	}
	return len(tok) - idx - 1
}

// digitsOnly strips sign and decimal point, leaving just the digit run
// used for significant-figure counting.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteByte(byte(c))
		}
	}
	return b.String()
}
