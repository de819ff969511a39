package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParseFloat trims s and parses it as a plain decimal number. Thousands
// separators, currency symbols, hex literals, NaN and infinities are rejected.
func ParseFloat(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	if strings.IndexFunc(raw, notDecimalRune) >= 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func notDecimalRune(r rune) bool {
	return !strings.ContainsRune("0123456789.+-eE", r)
}

// isMissing treats empty and whitespace-only cells as absent.
func isMissing(v string) bool { return strings.TrimSpace(v) == "" }

// parseOrZero is the lenient parse used by chart aggregation: anything that
// does not parse contributes 0.
func parseOrZero(v string) float64 {
	if f, ok := ParseFloat(v); ok {
		return f
	}
	return 0
}

// numericValues returns the successfully parsed, non-missing values of vals
// in their original order.
func numericValues(vals []string) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if isMissing(v) {
			continue
		}
		if f, ok := ParseFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// quantile linearly interpolates the q-th quantile of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
