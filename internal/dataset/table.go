// Package dataset loads tabular files (CSV, spreadsheets) into an in-memory Table.
package dataset

// Row maps a column name to its raw cell value. Spreadsheet cells are
// coerced to their display strings at load time, so every value is a string.
type Row map[string]string

// Get returns the raw value for col, or "" when the row has no such key.
func (r Row) Get(col string) string { return r[col] }

// Table is a loaded dataset: column order plus rows in file order.
type Table struct {
	Name string
	// Header holds the header cells verbatim, duplicates included.
	Header []string
	// Columns holds distinct header names in first-seen order.
	Columns []string
	Rows    []Row
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns the raw values of col in row order.
func (t *Table) Values(col string) []string {
	out := make([]string, 0, t.NumRows())
	for _, r := range t.Rows {
		out = append(out, r.Get(col))
	}
	return out
}

// builder assembles a Table from a header and raw records, enforcing the
// row shape invariant: every row carries every column.
type builder struct {
	t *Table
}

func newBuilder(name string, header []string) *builder {
	t := &Table{Name: name, Header: append([]string(nil), header...)}
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		t.Columns = append(t.Columns, h)
	}
	return &builder{t: t}
}

// add appends a record. Missing trailing fields become "", extra fields are
// dropped, and duplicate header names keep the last value.
func (b *builder) add(rec []string) {
	row := make(Row, len(b.t.Columns))
	for i, h := range b.t.Header {
		v := ""
		if i < len(rec) {
			v = rec[i]
		}
		row[h] = v
	}
	b.t.Rows = append(b.t.Rows, row)
}

func (b *builder) table() *Table { return b.t }
