package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/KaramelBytes/datadeck/internal/apperr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvDecoder struct{}

func (csvDecoder) Decode(name string, content []byte, opt Options) (*Table, error) {
	if !utf8.Valid(content) {
		return nil, apperr.New(apperr.CodeFormatError, "csv is not valid UTF-8")
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Name: name}, nil
		}
		return nil, apperr.Wrap(apperr.CodeFormatError, err, "read header")
	}
	b := newBuilder(name, header)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, apperr.Wrap(apperr.CodeFormatError, err, "read row %d", b.t.NumRows()+1)
		}
		b.add(rec)
	}
	return b.table(), nil
}

func init() {
	Register(FormatCSV, csvDecoder{})
}
