//go:build noxlsx

package sample

import "github.com/KaramelBytes/datadeck/internal/apperr"

func writeWorkbook(path string, recs []Record) error {
	return apperr.New(apperr.CodeCapabilityUnavailable, "spreadsheet support not available, write a .csv file instead")
}
