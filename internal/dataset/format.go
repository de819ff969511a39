package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datadeck/internal/apperr"
)

// Format is a declared upload format, derived from the file extension.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// IsSpreadsheet reports whether f is one of the workbook formats.
func (f Format) IsSpreadsheet() bool { return f == FormatXLSX || f == FormatXLS }

// Options controls decoding.
type Options struct {
	// Delimiter for CSV. If 0, ',' is used.
	Delimiter rune
	// SheetName selects a workbook sheet; empty means the active sheet.
	SheetName string
}

// Decoder turns raw file bytes of one format into a Table.
type Decoder interface {
	Decode(name string, content []byte, opt Options) (*Table, error)
}

var registry = map[Format]Decoder{}

// Register installs the decoder for a format, replacing any previous one.
func Register(f Format, d Decoder) {
	registry[f] = d
}

// SpreadsheetSupported reports whether workbook decoding was compiled in.
func SpreadsheetSupported() bool {
	_, ok := registry[FormatXLSX]
	return ok
}

// AllowedExtensions lists the extensions accepted by FormatFromFilename.
func AllowedExtensions() []string {
	if SpreadsheetSupported() {
		return []string{"csv", "xlsx", "xls"}
	}
	return []string{"csv"}
}

// FormatFromFilename classifies an upload by its extension.
func FormatFromFilename(name string) (Format, error) {
	if strings.TrimSpace(name) == "" {
		return "", apperr.New(apperr.CodeNoFileProvided, "no file selected")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch Format(ext) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, FormatXLS:
		if !SpreadsheetSupported() {
			return "", apperr.New(apperr.CodeCapabilityUnavailable, "spreadsheet support not available, please use CSV files")
		}
		return Format(ext), nil
	}
	return "", apperr.New(apperr.CodeUnsupportedFormat, "invalid file format %q, please upload one of: %s",
		filepath.Base(name), strings.Join(AllowedExtensions(), ", "))
}

// Load decodes content declared as format. Decoder panics are reported as
// format errors so a malformed upload never takes the process down.
func Load(name string, content []byte, format Format, opt Options) (t *Table, err error) {
	d, ok := registry[format]
	if !ok {
		if format.IsSpreadsheet() {
			return nil, apperr.New(apperr.CodeCapabilityUnavailable, "spreadsheet support not available")
		}
		return nil, apperr.New(apperr.CodeFormatError, "unsupported format %q", format)
	}
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = apperr.New(apperr.CodeFormatError, "error processing file: %v", r)
		}
	}()
	return d.Decode(name, content, opt)
}

// LoadFile reads path fully and decodes it.
func LoadFile(path string, format Format, opt Options) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Load(filepath.Base(path), b, format, opt)
}
