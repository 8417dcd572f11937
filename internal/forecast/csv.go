package forecast

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// TimestampLayout formats the Last_Updated column.
const TimestampLayout = "2006-01-02 15:04:05"

// Header returns the column names: Resort, one per day, then the totals.
func (t Table) Header() []string {
	h := make([]string, 0, Days+4)
	h = append(h, "Resort")
	h = append(h, t.Labels[:]...)
	return append(h, "Total_7day", "Days_With_Snow", "Last_Updated")
}

// EncodeCSV writes t to w, stamping Last_Updated in tz (UTC when nil).
func EncodeCSV(w io.Writer, t Table, tz *time.Location) error {
	if tz == nil {
		tz = time.UTC
	}
	stamp := t.UpdatedAt.In(tz).Format(TimestampLayout)

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return eris.Wrap(err, "forecast: write header")
	}
	for _, r := range t.Rows {
		rec := make([]string, 0, Days+4)
		rec = append(rec, r.Resort)
		for _, v := range r.Days {
			rec = append(rec, formatInches(v))
		}
		rec = append(rec, formatInches(r.Total7Day), strconv.Itoa(r.DaysWithSnow), stamp)
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "forecast: write row %s", r.Resort)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "forecast: flush csv")
}

// WriteCSV writes t to path, replacing any existing file.
func WriteCSV(path string, t Table, tz *time.Location) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "forecast: create csv")
	}
	if err := EncodeCSV(f, t, tz); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "forecast: close csv")
}

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
