package export

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// Columns returns the header shared by every flat-file sink.
func Columns() []string {
	h, err := csvutil.Header(Row{}, "csv")
	if err != nil {
		// Row is a fixed struct; a failure here is a programming error.
		panic(err)
	}
	return h
}

// WriteCSV writes recs to path with a header row, replacing any existing file.
func WriteCSV(path string, recs []model.ResortRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	if err := EncodeCSV(f, recs); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "export: close csv")
}

// EncodeCSV writes recs as CSV to w. An empty table still gets its header.
func EncodeCSV(w io.Writer, recs []model.ResortRecord) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	rows := toRows(recs)
	if len(rows) == 0 {
		if err := enc.EncodeHeader(Row{}); err != nil {
			return eris.Wrap(err, "export: encode header")
		}
	} else if err := enc.Encode(rows); err != nil {
		return eris.Wrap(err, "export: encode rows")
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// ReadCSV reads a table previously written by WriteCSV.
func ReadCSV(path string) ([]model.ResortRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open csv")
	}
	defer f.Close() //nolint:errcheck

	return DecodeCSV(f)
}

// DecodeCSV parses CSV produced by EncodeCSV. Columns are matched by header
// name, so extra or reordered columns are tolerated.
func DecodeCSV(r io.Reader) ([]model.ResortRecord, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "export: read csv header")
	}

	var recs []model.ResortRecord
	for {
		var row Row
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "export: decode row %d", len(recs)+1)
		}
		recs = append(recs, row.Record())
	}
	return recs, nil
}
