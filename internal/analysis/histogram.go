package analysis

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// histogram buckets vals into equal-width bins spanning [min, max]. Fewer
// than two distinct values collapse into a single bucket; no values yield an
// empty series.
func histogram(vals []float64, bins int) *CategorySeries {
	s := &CategorySeries{Labels: []string{}, Values: []float64{}, Bins: []Bin{}}
	if len(vals) == 0 {
		return s
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	sorted := sortedCopy(vals)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		s.Labels = append(s.Labels, binLabel(lo, hi))
		s.Values = append(s.Values, float64(len(sorted)))
		s.Bins = append(s.Bins, Bin{Start: lo, End: hi, Count: len(sorted)})
		return s
	}

	dividers := spanEdges(lo, hi, bins)
	bounds := append([]float64(nil), dividers...)
	// stat.Histogram uses half-open bins; nudge the top edge so max lands in the last bin.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	for i, c := range counts {
		s.Labels = append(s.Labels, binLabel(bounds[i], bounds[i+1]))
		s.Values = append(s.Values, c)
		s.Bins = append(s.Bins, Bin{Start: bounds[i], End: bounds[i+1], Count: int(c)})
	}
	return s
}

// spanEdges returns bins+1 non-decreasing edges from lo to hi. Edges are
// interpolated from unit fractions so hi-lo is never formed; it overflows for
// ranges like [-1e308, 1e308].
func spanEdges(lo, hi float64, bins int) []float64 {
	edges := floats.Span(make([]float64, bins+1), 0, 1)
	for i, f := range edges {
		edges[i] = lo*(1-f) + hi*f
		if i > 0 && edges[i] < edges[i-1] {
			edges[i] = edges[i-1]
		}
	}
	edges[0], edges[bins] = lo, hi
	return edges
}

func binLabel(lo, hi float64) string {
	return formatBound(lo) + " - " + formatBound(hi)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
