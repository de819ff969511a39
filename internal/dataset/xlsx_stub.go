//go:build noxlsx

package dataset

// Built with -tags noxlsx: no workbook decoder is registered, so xlsx/xls
// uploads are rejected with a capability error by FormatFromFilename and Load.
