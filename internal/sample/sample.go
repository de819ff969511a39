// Package sample generates a small synthetic sales dataset for trying out
// the analyzer and the chart endpoints.
package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/datadeck/internal/apperr"
	"github.com/KaramelBytes/datadeck/internal/dataset"
)

// DefaultRows matches the size of the demo dataset.
const DefaultRows = 50

// Header is the column order of generated datasets.
var Header = []string{"Product", "Sales", "Price", "Category", "Quarter", "Rating", "Revenue"}

var (
	products   = []string{"Laptop", "Phone", "Tablet", "Monitor", "Keyboard"}
	categories = []string{"Electronics", "Electronics", "Electronics", "Electronics", "Accessories"}
	quarters   = []string{"Q1", "Q2", "Q3", "Q4"}
)

// Record is one generated row.
type Record struct {
	Product  string
	Sales    int
	Price    float64
	Category string
	Quarter  string
	Rating   float64
	Revenue  float64
}

// Strings renders r in Header order.
func (r Record) Strings() []string {
	return []string{
		r.Product,
		strconv.Itoa(r.Sales),
		formatFloat(r.Price),
		r.Category,
		r.Quarter,
		formatFloat(r.Rating),
		formatFloat(r.Revenue),
	}
}

// Generate returns n records. The same seed always yields the same data.
func Generate(n int, seed uint64) []Record {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	price := distuv.Uniform{Min: 50, Max: 2000, Src: src}
	rating := distuv.Uniform{Min: 3, Max: 5, Src: src}

	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		sales := 100 + rng.IntN(900)
		p := price.Rand()
		out = append(out, Record{
			Product:  products[i%len(products)],
			Sales:    sales,
			Price:    round(p, 2),
			Category: categories[i%len(categories)],
			Quarter:  quarters[rng.IntN(len(quarters))],
			Rating:   round(rating.Rand(), 1),
			Revenue:  round(float64(sales)*p, 2),
		})
	}
	return out
}

// WriteCSV writes a header line followed by recs.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(r.Strings()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write generates n records and saves them to path, choosing CSV or a
// workbook from the file extension.
func Write(path string, n int, seed uint64) error {
	if n <= 0 {
		return apperr.New(apperr.CodeInvalidRequest, "rows must be positive, got %d", n)
	}
	format, err := dataset.FormatFromFilename(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir output dir: %w", err)
		}
	}
	recs := Generate(n, seed)
	switch format {
	case dataset.FormatCSV:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := WriteCSV(f, recs); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	case dataset.FormatXLSX:
		return writeWorkbook(path, recs)
	}
	return apperr.New(apperr.CodeUnsupportedFormat, "cannot write %s files, use .csv or .xlsx", format)
}

func round(v float64, places int) float64 {
	r, err := stats.Round(v, places)
	if err != nil {
		return v
	}
	return r
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
