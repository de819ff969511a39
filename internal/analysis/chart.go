package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/datadeck/internal/apperr"
	"github.com/KaramelBytes/datadeck/internal/dataset"
	"github.com/montanaflynn/stats"
)

// Kind is a supported chart kind.
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindScatter   Kind = "scatter"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
	KindBox       Kind = "box"
)

// Kinds lists every supported chart kind.
var Kinds = []Kind{KindBar, KindLine, KindScatter, KindPie, KindHistogram, KindBox}

// DefaultBins is the histogram bucket count used when none is configured.
const DefaultBins = 10

// ParseKind maps a request string onto a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", apperr.New(apperr.CodeUnsupportedChartKind, "invalid chart type %q", s)
}

// ChartRequest selects a chart kind and the columns it draws from.
// YColumn is optional for pie (value counts when empty) and histogram.
type ChartRequest struct {
	Kind    string `json:"chart_type" yaml:"chart_type"`
	XColumn string `json:"x_column" yaml:"x_column"`
	YColumn string `json:"y_column,omitempty" yaml:"y_column,omitempty"`
}

// ChartOptions tunes payload construction.
type ChartOptions struct {
	// Bins for histograms; <= 0 means DefaultBins.
	Bins int
}

// Payload is a chart-kind tagged value. Exactly one of Series, Points or Box
// is set.
type Payload struct {
	Kind    Kind            `json:"type" yaml:"type"`
	Title   string          `json:"title" yaml:"title"`
	XColumn string          `json:"x_column,omitempty" yaml:"x_column,omitempty"`
	YColumn string          `json:"y_column,omitempty" yaml:"y_column,omitempty"`
	Series  *CategorySeries `json:"series,omitempty" yaml:"series,omitempty"`
	Points  *PointSeries    `json:"points,omitempty" yaml:"points,omitempty"`
	Box     *BoxSummary     `json:"box,omitempty" yaml:"box,omitempty"`
}

// CategorySeries holds parallel label/value sequences (bar, pie, histogram).
type CategorySeries struct {
	Labels []string  `json:"labels" yaml:"labels"`
	Values []float64 `json:"values" yaml:"values"`
	// Bins carries bucket bounds for histograms.
	Bins []Bin `json:"bins,omitempty" yaml:"bins,omitempty"`
}

// Bin is one histogram bucket, [Start, End) except the last which includes End.
type Bin struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Count int     `json:"count" yaml:"count"`
}

// PointSeries holds one (x, y) pair per row (line, scatter). X stays raw.
type PointSeries struct {
	X []string  `json:"x" yaml:"x"`
	Y []float64 `json:"y" yaml:"y"`
}

// BoxSummary describes a numeric distribution for box plots.
type BoxSummary struct {
	Column string    `json:"column" yaml:"column"`
	Values []float64 `json:"values" yaml:"values"`
	Count  int       `json:"count" yaml:"count"`
	Min    float64   `json:"min" yaml:"min"`
	Q1     float64   `json:"q1" yaml:"q1"`
	Median float64   `json:"median" yaml:"median"`
	Q3     float64   `json:"q3" yaml:"q3"`
	Max    float64   `json:"max" yaml:"max"`
}

// Build turns a chart request into a payload. types must come from Infer on
// the same table so classification agrees with Summarize.
func Build(t *dataset.Table, types ColumnTypes, req ChartRequest, opt ChartOptions) (*Payload, error) {
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	x, y := req.XColumn, req.YColumn
	if kind == KindBox && y == "" {
		y, x = x, ""
	}
	for _, col := range []string{x, y} {
		if col != "" && !t.HasColumn(col) {
			return nil, apperr.New(apperr.CodeColumnNotFound, "column %q not found", col)
		}
	}
	switch kind {
	case KindBox:
		if y == "" {
			return nil, apperr.New(apperr.CodeColumnNotFound, "a value column is required for %s charts", kind)
		}
	case KindBar, KindLine, KindScatter:
		if x == "" || y == "" {
			return nil, apperr.New(apperr.CodeColumnNotFound, "x and y columns are required for %s charts", kind)
		}
	default:
		if x == "" {
			return nil, apperr.New(apperr.CodeColumnNotFound, "an x column is required for %s charts", kind)
		}
	}

	p := &Payload{Kind: kind, XColumn: x, YColumn: y}
	switch kind {
	case KindBar:
		p.Title = fmt.Sprintf("Bar Chart: %s by %s", y, x)
		p.Series = groupSum(t, x, y)
	case KindLine:
		p.Title = fmt.Sprintf("Line Chart: %s vs %s", y, x)
		p.Points = points(t, x, y)
	case KindScatter:
		p.Title = fmt.Sprintf("Scatter Plot: %s vs %s", y, x)
		p.Points = points(t, x, y)
	case KindPie:
		if y == "" {
			p.Title = fmt.Sprintf("Pie Chart of %s", x)
			p.Series = groupCount(t, x)
		} else {
			p.Title = fmt.Sprintf("Pie Chart: %s by %s", y, x)
			p.Series = groupSum(t, x, y)
		}
	case KindHistogram:
		p.Title = fmt.Sprintf("Histogram of %s", x)
		var vals []float64
		if types.Of(x) == Numeric {
			vals = numericValues(t.Values(x))
		}
		p.Series = histogram(vals, opt.Bins)
	case KindBox:
		p.Title = fmt.Sprintf("Box Plot of %s", y)
		box, err := boxSummary(t, types, y)
		if err != nil {
			return nil, err
		}
		p.Box = box
	}
	return p, nil
}

// groupSum sums parsed y per distinct raw x, in first-seen order.
func groupSum(t *dataset.Table, x, y string) *CategorySeries {
	s := &CategorySeries{Labels: []string{}, Values: []float64{}}
	idx := make(map[string]int)
	for _, r := range t.Rows {
		key := r.Get(x)
		i, ok := idx[key]
		if !ok {
			i = len(s.Labels)
			idx[key] = i
			s.Labels = append(s.Labels, key)
			s.Values = append(s.Values, 0)
		}
		s.Values[i] = saturatingAdd(s.Values[i], parseOrZero(r.Get(y)))
	}
	return s
}

// saturatingAdd clamps overflowing sums to ±MaxFloat64 so totals stay finite.
func saturatingAdd(a, b float64) float64 {
	sum := a + b
	switch {
	case math.IsInf(sum, 1):
		return math.MaxFloat64
	case math.IsInf(sum, -1):
		return -math.MaxFloat64
	}
	return sum
}

// groupCount counts occurrences of each distinct raw x, in first-seen order.
func groupCount(t *dataset.Table, x string) *CategorySeries {
	s := &CategorySeries{Labels: []string{}, Values: []float64{}}
	idx := make(map[string]int)
	for _, r := range t.Rows {
		key := r.Get(x)
		i, ok := idx[key]
		if !ok {
			i = len(s.Labels)
			idx[key] = i
			s.Labels = append(s.Labels, key)
			s.Values = append(s.Values, 0)
		}
		s.Values[i]++
	}
	return s
}

func points(t *dataset.Table, x, y string) *PointSeries {
	ps := &PointSeries{X: make([]string, 0, t.NumRows()), Y: make([]float64, 0, t.NumRows())}
	for _, r := range t.Rows {
		ps.X = append(ps.X, r.Get(x))
		ps.Y = append(ps.Y, parseOrZero(r.Get(y)))
	}
	return ps
}

func boxSummary(t *dataset.Table, types ColumnTypes, col string) (*BoxSummary, error) {
	var vals []float64
	if types.Of(col) == Numeric {
		vals = numericValues(t.Values(col))
	}
	if len(vals) == 0 {
		return nil, apperr.New(apperr.CodeInsufficientData, "column %q has no numeric values to plot", col)
	}
	sorted := sortedCopy(vals)
	median, err := stats.Median(sorted)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInsufficientData, err, "median of %q", col)
	}
	if math.IsInf(median, 0) {
		// the midpoint of two huge values overflows; interpolate instead
		median = quantile(sorted, 0.5)
	}
	return &BoxSummary{
		Column: col,
		Values: vals,
		Count:  len(vals),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: median,
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}, nil
}
