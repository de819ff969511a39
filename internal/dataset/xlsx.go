//go:build !noxlsx

package dataset

import (
	"bytes"
	"strings"

	"github.com/KaramelBytes/datadeck/internal/apperr"
	"github.com/xuri/excelize/v2"
)

type xlsxDecoder struct{}

// Decode reads the selected (or active) sheet. The first populated row is
// the header; cells come back as their formatted display strings.
func (xlsxDecoder) Decode(name string, content []byte, opt Options) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeFormatError, err, "open workbook")
	}
	defer f.Close()

	sheet := opt.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperr.New(apperr.CodeSchemaError, "sheet %q not found in workbook %q, available sheets: %s",
			sheet, name, strings.Join(f.GetSheetList(), ", "))
	}
	if sheet == "" {
		return nil, apperr.New(apperr.CodeSchemaError, "workbook %q has no sheets", name)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeFormatError, err, "read sheet %q", sheet)
	}
	start := -1
	for i, r := range rows {
		if populated(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, apperr.New(apperr.CodeSchemaError, "sheet %q has no header row", sheet)
	}
	b := newBuilder(name, rows[start])
	for _, r := range rows[start+1:] {
		b.add(r)
	}
	return b.table(), nil
}

func populated(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}

func init() {
	Register(FormatXLSX, xlsxDecoder{})
	Register(FormatXLS, xlsxDecoder{})
}
