package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadeck/internal/dataset"
	"github.com/montanaflynn/stats"
)

// Metric is a numeric aggregate that may be unavailable (no parsable input).
// Unavailable metrics render as "N/A", never as 0 or NaN.
type Metric struct {
	Value float64
	Valid bool
}

// available wraps v; non-finite values are reported as unavailable.
func available(v float64) *Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unavailable()
	}
	return &Metric{Value: v, Valid: true}
}

func (m Metric) ok() bool { return m.Valid && !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0) }

func unavailable() *Metric { return &Metric{} }

func (m Metric) String() string {
	if !m.ok() {
		return "N/A"
	}
	return strconv.FormatFloat(m.Value, 'g', -1, 64)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.ok() {
		return []byte(`"N/A"`), nil
	}
	return json.Marshal(m.Value)
}

func (m Metric) MarshalYAML() (any, error) {
	if !m.ok() {
		return "N/A", nil
	}
	return m.Value, nil
}

// ColumnStats captures per-column counts and, for numeric columns, aggregates.
type ColumnStats struct {
	Name    string     `json:"name" yaml:"name"`
	Type    ColumnType `json:"type" yaml:"type"`
	Missing int        `json:"missing" yaml:"missing"`
	Unique  int        `json:"unique_values" yaml:"unique_values"`
	// Set only for numeric columns.
	Mean *Metric `json:"mean,omitempty" yaml:"mean,omitempty"`
	Min  *Metric `json:"min,omitempty" yaml:"min,omitempty"`
	Max  *Metric `json:"max,omitempty" yaml:"max,omitempty"`
}

// Summary is the whole-table statistics report.
type Summary struct {
	Name           string        `json:"name,omitempty" yaml:"name,omitempty"`
	TotalRows      int           `json:"total_rows" yaml:"total_rows"`
	TotalColumns   int           `json:"total_columns" yaml:"total_columns"`
	NumericColumns int           `json:"numeric_columns" yaml:"numeric_columns"`
	TextColumns    int           `json:"text_columns" yaml:"text_columns"`
	MissingValues  int           `json:"missing_values" yaml:"missing_values"`
	Columns        []ColumnStats `json:"column_info" yaml:"column_info"`
}

// Summarize computes fresh statistics for t using the inferred types. It has
// no side effects; calling it twice on the same input yields equal results.
func Summarize(t *dataset.Table, types ColumnTypes) *Summary {
	s := &Summary{
		Name:         t.Name,
		TotalRows:    t.NumRows(),
		TotalColumns: len(t.Columns),
		Columns:      []ColumnStats{},
	}
	for _, col := range t.Columns {
		if types.Of(col) == Numeric {
			s.NumericColumns++
		} else {
			s.TextColumns++
		}
	}
	if t.NumRows() == 0 {
		return s
	}
	for _, col := range t.Columns {
		cs := summarizeColumn(col, types.Of(col), t.Values(col))
		s.MissingValues += cs.Missing
		s.Columns = append(s.Columns, cs)
	}
	return s
}

func summarizeColumn(name string, typ ColumnType, vals []string) ColumnStats {
	cs := ColumnStats{Name: name, Type: typ}
	uniq := make(map[string]struct{})
	for _, v := range vals {
		if isMissing(v) {
			cs.Missing++
			continue
		}
		uniq[v] = struct{}{}
	}
	cs.Unique = len(uniq)
	if typ != Numeric {
		return cs
	}
	nums := numericValues(vals)
	if len(nums) == 0 {
		cs.Mean, cs.Min, cs.Max = unavailable(), unavailable(), unavailable()
		return cs
	}
	mean := meanOf(nums)
	lo, _ := stats.Min(nums)
	hi, _ := stats.Max(nums)
	cs.Mean, cs.Min, cs.Max = available(mean), available(lo), available(hi)
	return cs
}

// meanOf is the arithmetic mean rounded to two places. When the plain sum
// overflows it falls back to summing pre-divided terms.
func meanOf(nums []float64) float64 {
	mean, err := stats.Mean(nums)
	if err != nil || math.IsInf(mean, 0) {
		mean = 0
		n := float64(len(nums))
		for _, x := range nums {
			mean += x / n
		}
	}
	// Round scales by 100 first, which overflows near MaxFloat64.
	if r, err := stats.Round(mean, 2); err == nil && !math.IsInf(r, 0) {
		mean = r
	}
	return mean
}

// Markdown renders a compact report for terminals and docs.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.TotalRows))
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d, text %d)\n", s.TotalColumns, s.NumericColumns, s.TextColumns))
	b.WriteString(fmt.Sprintf("Missing values: %d\n", s.MissingValues))
	if len(s.Columns) == 0 {
		return b.String()
	}
	b.WriteString("\n[SCHEMA]\n")
	for _, c := range s.Columns {
		missPct := 0.0
		if s.TotalRows > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(s.TotalRows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %.1f%%; unique %d)", safeName(c.Name), c.Type, c.Missing, missPct, c.Unique))
		if c.Type == Numeric && c.Mean != nil {
			b.WriteString(fmt.Sprintf(" — min %s, max %s, mean %s", c.Min, c.Max, c.Mean))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
