package analysis

import (
	"strings"

	"github.com/KaramelBytes/datadeck/internal/dataset"
	"github.com/KaramelBytes/datadeck/internal/utils"
)

const (
	DefaultPreviewRows     = 5
	DefaultPreviewMaxChars = 50
	truncationMarker       = "..."
	noDataMessage          = "No data to preview"
)

// PreviewOptions bounds the preview sample.
type PreviewOptions struct {
	// Limit is the number of rows; <= 0 means DefaultPreviewRows.
	Limit int
	// MaxChars is the per-cell display width; <= 0 means DefaultPreviewMaxChars.
	MaxChars int
}

// PreviewTable is a display-ready sample: ordered columns and ordered rows of
// cells. Empty is set, with Message, when the table has no rows.
type PreviewTable struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
	Empty   bool       `json:"empty,omitempty" yaml:"empty,omitempty"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
}

// Preview returns the first rows of t with long cells truncated.
func Preview(t *dataset.Table, opt PreviewOptions) *PreviewTable {
	if t.NumRows() == 0 {
		return &PreviewTable{Columns: append([]string{}, t.Columns...), Rows: [][]string{}, Empty: true, Message: noDataMessage}
	}
	limit := opt.Limit
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	maxChars := opt.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultPreviewMaxChars
	}
	n := min(limit, t.NumRows())
	pt := &PreviewTable{Columns: append([]string{}, t.Columns...), Rows: make([][]string, 0, n)}
	for _, r := range t.Rows[:n] {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = utils.TruncateRunes(r.Get(col), maxChars, truncationMarker)
		}
		pt.Rows = append(pt.Rows, cells)
	}
	return pt
}

// Markdown renders the preview as a pipe table.
func (p *PreviewTable) Markdown() string {
	var b strings.Builder
	b.WriteString("[HEAD AND SAMPLE ROWS]\n")
	if p.Empty {
		b.WriteString(p.Message)
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString("| ")
	for i, c := range p.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range p.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range p.Rows {
		b.WriteString("| ")
		for i, v := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(v))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}
