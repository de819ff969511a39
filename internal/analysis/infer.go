package analysis

import (
	"fmt"

	"github.com/KaramelBytes/datadeck/internal/dataset"
)

// ColumnType is the coarse classification assigned to a column once per load.
type ColumnType int

const (
	Text ColumnType = iota
	Numeric
)

func (c ColumnType) String() string {
	if c == Numeric {
		return "numeric"
	}
	return "text"
}

func (c ColumnType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ColumnType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "numeric":
		*c = Numeric
	case "text":
		*c = Text
	default:
		return fmt.Errorf("unknown column type %q", string(b))
	}
	return nil
}

// ColumnTypes maps column name to its inferred type.
type ColumnTypes map[string]ColumnType

// Of returns the type of col; unknown columns are Text.
func (ct ColumnTypes) Of(col string) ColumnType { return ct[col] }

// Infer classifies every column: Numeric when its first non-missing value
// parses as a number, Text otherwise. Later values are not checked.
func Infer(t *dataset.Table) ColumnTypes {
	out := make(ColumnTypes, len(t.Columns))
	for _, col := range t.Columns {
		out[col] = Text
		for _, r := range t.Rows {
			v := r.Get(col)
			if isMissing(v) {
				continue
			}
			if _, ok := ParseFloat(v); ok {
				out[col] = Numeric
			}
			break
		}
	}
	return out
}
