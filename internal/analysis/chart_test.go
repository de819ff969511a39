package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/KaramelBytes/datadeck/internal/apperr"
)

func build(t *testing.T, header []string, req ChartRequest, records ...[]string) (*Payload, error) {
	t.Helper()
	tab := table(t, header, records...)
	return Build(tab, Infer(tab), req, ChartOptions{})
}

func TestBuildBar_FirstSeenOrderAndSums(t *testing.T) {
	p, err := build(t, []string{"cat", "v"}, ChartRequest{Kind: "bar", XColumn: "cat", YColumn: "v"},
		[]string{"A", "5"}, []string{"B", "3"}, []string{"A", "2"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(p.Series.Labels, []string{"A", "B"}) || !reflect.DeepEqual(p.Series.Values, []float64{7, 3}) {
		t.Fatalf("unexpected series: %+v", p.Series)
	}
	if p.Title != "Bar Chart: v by cat" || p.Kind != KindBar {
		t.Fatalf("unexpected payload header: %+v", p)
	}
}

func TestBuildBar_UnparsableContributesZero(t *testing.T) {
	p, err := build(t, []string{"cat", "v"}, ChartRequest{Kind: "BAR", XColumn: "cat", YColumn: "v"},
		[]string{"A", "x"}, []string{"B", ""}, []string{"A", "0"}, []string{"A", "4"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(p.Series.Values, []float64{4, 0}) {
		t.Fatalf("values = %v", p.Series.Values)
	}
}

func TestBuildLineAndScatter_OnePointPerRow(t *testing.T) {
	for _, kind := range []string{"line", "scatter"} {
		p, err := build(t, []string{"day", "v"}, ChartRequest{Kind: kind, XColumn: "day", YColumn: "v"},
			[]string{"Mon", "1.5"}, []string{"Tue", "bad"}, []string{"Mon", "2"})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if !reflect.DeepEqual(p.Points.X, []string{"Mon", "Tue", "Mon"}) || !reflect.DeepEqual(p.Points.Y, []float64{1.5, 0, 2}) {
			t.Fatalf("%s: unexpected points %+v", kind, p.Points)
		}
		if p.Series != nil || p.Box != nil {
			t.Fatalf("%s: only points should be set", kind)
		}
	}
}

func TestBuildPie_CountsOrSums(t *testing.T) {
	header := []string{"q", "rev"}
	rows := [][]string{{"Q1", "10"}, {"Q2", "5"}, {"Q1", "1"}}
	p, err := build(t, header, ChartRequest{Kind: "pie", XColumn: "q"}, rows...)
	if err != nil {
		t.Fatalf("Build counts: %v", err)
	}
	if !reflect.DeepEqual(p.Series.Values, []float64{2, 1}) || p.Title != "Pie Chart of q" {
		t.Fatalf("unexpected count pie: %+v %q", p.Series, p.Title)
	}
	p, err = build(t, header, ChartRequest{Kind: "pie", XColumn: "q", YColumn: "rev"}, rows...)
	if err != nil {
		t.Fatalf("Build sums: %v", err)
	}
	if !reflect.DeepEqual(p.Series.Values, []float64{11, 5}) {
		t.Fatalf("unexpected value pie: %+v", p.Series)
	}
}

func TestBuildHistogram(t *testing.T) {
	var rows [][]string
	for _, v := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"} {
		rows = append(rows, []string{v})
	}
	p, err := build(t, []string{"n"}, ChartRequest{Kind: "histogram", XColumn: "n"}, rows...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Series.Values) != DefaultBins {
		t.Fatalf("bins = %d, want %d", len(p.Series.Values), DefaultBins)
	}
	total := 0.0
	for _, c := range p.Series.Values {
		total += c
	}
	if total != 11 {
		t.Fatalf("histogram total = %v, want 11", total)
	}
	// max lands in the last, closed bucket
	if p.Series.Values[DefaultBins-1] != 2 {
		t.Fatalf("last bucket = %v, want 2 (9 and 10)", p.Series.Values[DefaultBins-1])
	}
	if p.Series.Bins[0].Start != 0 || p.Series.Bins[DefaultBins-1].End != 10 {
		t.Fatalf("unexpected bounds: %+v", p.Series.Bins)
	}
}

func TestBuildHistogram_DegenerateAndCustomBins(t *testing.T) {
	p, err := build(t, []string{"n"}, ChartRequest{Kind: "histogram", XColumn: "n"}, []string{"3"}, []string{"3"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Series.Values) != 1 || p.Series.Values[0] != 2 {
		t.Fatalf("expected single bucket of 2, got %+v", p.Series)
	}

	tab := table(t, []string{"n"}, []string{"1"}, []string{"2"}, []string{"3"}, []string{"4"})
	p, err = Build(tab, Infer(tab), ChartRequest{Kind: "histogram", XColumn: "n"}, ChartOptions{Bins: 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Series.Values) != 3 {
		t.Fatalf("bins = %d, want 3", len(p.Series.Values))
	}

	p, err = build(t, []string{"s"}, ChartRequest{Kind: "histogram", XColumn: "s"}, []string{"abc"}, []string{"5"})
	if err != nil {
		t.Fatalf("text column should not fail: %v", err)
	}
	if len(p.Series.Labels) != 0 || len(p.Series.Values) != 0 {
		t.Fatalf("expected empty series for text column, got %+v", p.Series)
	}
}

func TestBuildBox(t *testing.T) {
	p, err := build(t, []string{"g", "v"}, ChartRequest{Kind: "box", XColumn: "g", YColumn: "v"},
		[]string{"a", "1"}, []string{"a", "2"}, []string{"b", "x"}, []string{"b", "3"}, []string{"b", "4"}, []string{"c", "5"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b := p.Box
	if b.Count != 5 || b.Min != 1 || b.Q1 != 2 || b.Median != 3 || b.Q3 != 4 || b.Max != 5 {
		t.Fatalf("unexpected box: %+v", b)
	}
	if p.Title != "Box Plot of v" {
		t.Fatalf("title = %q", p.Title)
	}

	// y omitted falls back to the x column
	p, err = build(t, []string{"v"}, ChartRequest{Kind: "box", XColumn: "v"}, []string{"7"})
	if err != nil {
		t.Fatalf("Build single value: %v", err)
	}
	if p.Box.Column != "v" || p.Box.Min != 7 || p.Box.Median != 7 || p.Box.Max != 7 {
		t.Fatalf("unexpected single-value box: %+v", p.Box)
	}
}

func TestBuildBox_NoNumericValues(t *testing.T) {
	_, err := build(t, []string{"g", "v"}, ChartRequest{Kind: "box", XColumn: "g", YColumn: "v"},
		[]string{"a", "x"}, []string{"b", ""})
	if !errors.Is(err, apperr.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	header := []string{"a", "b"}
	rows := [][]string{{"1", "2"}}
	cases := []struct {
		req  ChartRequest
		want error
	}{
		{ChartRequest{Kind: "radar", XColumn: "a", YColumn: "b"}, apperr.ErrUnsupportedChartKind},
		{ChartRequest{Kind: "bar", XColumn: "zzz", YColumn: "b"}, apperr.ErrColumnNotFound},
		{ChartRequest{Kind: "line", XColumn: "a", YColumn: "zzz"}, apperr.ErrColumnNotFound},
		{ChartRequest{Kind: "bar", XColumn: "a"}, apperr.ErrColumnNotFound},
		{ChartRequest{Kind: "pie", YColumn: "b"}, apperr.ErrColumnNotFound},
		{ChartRequest{Kind: "histogram", XColumn: "a", YColumn: "nope"}, apperr.ErrColumnNotFound},
		{ChartRequest{Kind: "box"}, apperr.ErrColumnNotFound},
	}
	for _, tc := range cases {
		_, err := build(t, header, tc.req, rows...)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%+v: got %v, want %v", tc.req, err, tc.want)
		}
	}
}

func TestBuild_EmptyTableYieldsEmptyPayloads(t *testing.T) {
	for _, kind := range []string{"bar", "line", "scatter", "pie", "histogram"} {
		p, err := build(t, []string{"a", "b"}, ChartRequest{Kind: kind, XColumn: "a", YColumn: "b"})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		switch {
		case p.Series != nil:
			if len(p.Series.Labels) != 0 || p.Series.Values == nil {
				t.Fatalf("%s: expected empty non-nil series, got %+v", kind, p.Series)
			}
		case p.Points != nil:
			if len(p.Points.X) != 0 || p.Points.Y == nil {
				t.Fatalf("%s: expected empty non-nil points, got %+v", kind, p.Points)
			}
		default:
			t.Fatalf("%s: no variant set", kind)
		}
	}
}

func TestBuild_ExtremeMagnitudesStayFinite(t *testing.T) {
	header := []string{"g", "v"}
	rows := [][]string{{"a", "-1e308"}, {"b", "1e308"}, {"b", "1e308"}, {"c", "-1e308"}, {"c", "-1e308"}}

	p, err := build(t, header, ChartRequest{Kind: "histogram", XColumn: "v"}, rows...)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	total := 0.0
	for _, c := range p.Series.Values {
		total += c
	}
	if total != 5 || p.Series.Values[0] != 3 || p.Series.Values[DefaultBins-1] != 2 {
		t.Fatalf("unexpected counts: %v", p.Series.Values)
	}
	if p.Series.Bins[0].Start != -1e308 || p.Series.Bins[DefaultBins-1].End != 1e308 {
		t.Fatalf("unexpected bounds: %+v", p.Series.Bins)
	}

	for _, kind := range []string{"bar", "pie"} {
		p, err = build(t, header, ChartRequest{Kind: kind, XColumn: "g", YColumn: "v"}, rows...)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		want := []float64{-1e308, math.MaxFloat64, -math.MaxFloat64}
		if !reflect.DeepEqual(p.Series.Values, want) {
			t.Fatalf("%s: values = %v, want %v", kind, p.Series.Values, want)
		}
	}

	p, err = build(t, header, ChartRequest{Kind: "box", XColumn: "v"}, []string{"a", "1e308"}, []string{"b", "1e308"})
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	if p.Box.Median != 1e308 || math.IsInf(p.Box.Q1, 0) || math.IsInf(p.Box.Q3, 0) {
		t.Fatalf("unexpected box: %+v", p.Box)
	}

	for _, kind := range []string{"histogram", "bar", "pie", "box"} {
		p, err = build(t, header, ChartRequest{Kind: kind, XColumn: "g", YColumn: "v"}, rows...)
		if kind == "histogram" {
			p, err = build(t, header, ChartRequest{Kind: kind, XColumn: "v"}, rows...)
		}
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if _, err := json.Marshal(p); err != nil {
			t.Fatalf("%s payload does not serialize: %v", kind, err)
		}
	}
}

func TestSpanEdgesMonotonic(t *testing.T) {
	lo := 1.0
	hi := math.Nextafter(math.Nextafter(lo, 2), 2)
	edges := spanEdges(lo, hi, 10)
	if len(edges) != 11 || edges[0] != lo || edges[10] != hi {
		t.Fatalf("unexpected edges: %v", edges)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] < edges[i-1] {
			t.Fatalf("edges not sorted: %v", edges)
		}
	}
}
