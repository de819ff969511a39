//go:build !noxlsx

package sample

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

func writeWorkbook(path string, recs []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Product, r.Sales, r.Price, r.Category, r.Quarter, r.Rating, r.Revenue}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
