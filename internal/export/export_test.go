package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

var fetched = time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)

func sampleRecords() []model.ResortRecord {
	return []model.ResortRecord{
		{
			Name:              "Breckenridge",
			Status:            model.StatusOpen,
			NewSnow24h:        6,
			NewSnow48h:        9,
			BaseDepth:         48,
			MidMountainDepth:  52,
			SurfaceConditions: "Packed Powder",
			OpenLifts:         20,
			TotalLifts:        model.Int(35),
			OpenTrails:        94,
			TotalTrails:       model.Int(187),
			LiftsOpenPct:      57.1,
			TrailsOpenPct:     50.3,
			Latitude:          model.Float(39.4782643),
			Longitude:         model.Float(-106.07232),
			Source:            model.SourceAggregatorA,
			FetchedAt:         fetched,
		},
		{
			Name:      "Bluebird Backcountry",
			Status:    model.StatusClosed,
			Source:    model.SourceAggregatorB,
			FetchedAt: fetched,
		},
	}
}

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, 17)
	assert.Equal(t, "name", cols[0])
	assert.Equal(t, "new_snow_24h", cols[2])
	assert.Equal(t, "mid_mountain_depth", cols[5])
	assert.Equal(t, "fetched_at", cols[16])
	assert.Len(t, Row{}.values(), len(cols))
}

func TestCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resorts.csv")
	in := sampleRecords()

	require.NoError(t, WriteCSV(path, in))
	out, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	br := out[0]
	assert.Equal(t, "Breckenridge", br.Name)
	assert.Equal(t, model.StatusOpen, br.Status)
	assert.Equal(t, 6, br.NewSnow24h)
	assert.Equal(t, 48, br.BaseDepth)
	assert.Equal(t, 20, br.OpenLifts)
	require.NotNil(t, br.TotalLifts)
	assert.Equal(t, 35, *br.TotalLifts)
	assert.Equal(t, "Packed Powder", br.SurfaceConditions)
	assert.InDelta(t, 50.3, br.TrailsOpenPct, 1e-9)
	require.True(t, br.HasCoordinates())
	assert.InDelta(t, 39.4782643, *br.Latitude, 1e-9)
	assert.True(t, fetched.Equal(br.FetchedAt))

	bb := out[1]
	assert.Nil(t, bb.TotalLifts)
	assert.Nil(t, bb.TotalTrails)
	assert.False(t, bb.HasCoordinates())
	assert.Equal(t, model.SourceAggregatorB, bb.Source)
}

func TestCSV_RoundTripKeyFields(t *testing.T) {
	var in []model.ResortRecord
	for i := range 50 {
		rec := model.ResortRecord{
			Name:       fmt.Sprintf("Resort, \"No.\" %d", i),
			NewSnow24h: i % 13,
			BaseDepth:  i * 3,
			OpenLifts:  i % 7,
		}
		if i%3 != 0 {
			rec.TotalLifts = model.Int(i%7 + i%5)
		}
		in = append(in, rec)
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, in))
	out, err := DecodeCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].Name, out[i].Name)
		assert.Equal(t, in[i].NewSnow24h, out[i].NewSnow24h)
		assert.Equal(t, in[i].BaseDepth, out[i].BaseDepth)
		assert.Equal(t, in[i].OpenLifts, out[i].OpenLifts)
		assert.Equal(t, in[i].TotalLifts, out[i].TotalLifts, "record %d", i)
	}
}

func TestEncodeCSV_EmptyWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, nil))
	assert.Equal(t, strings.Join(Columns(), ",")+"\n", buf.String())

	out, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecodeCSV_EmptyInput(t *testing.T) {
	out, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDecodeCSV_ToleratesMissingColumns(t *testing.T) {
	out, err := DecodeCSV(strings.NewReader("name,new_snow_24h,latitude,longitude\nVail,5,39.6,-106.3\n"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Vail", out[0].Name)
	assert.Equal(t, 5, out[0].NewSnow24h)
	assert.Nil(t, out[0].TotalTrails)
	assert.True(t, out[0].HasCoordinates())
}

func TestDecodeCSV_BadNumber(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("name,new_snow_24h\nVail,lots\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: decode row 1")
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resorts.xlsx")
	require.NoError(t, WriteXLSX(path, sampleRecords()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	var header []string
	for _, c := range sheet.Rows[0].Cells {
		header = append(header, c.String())
	}
	assert.Equal(t, Columns(), header)

	br := sheet.Rows[1].Cells
	assert.Equal(t, "Breckenridge", br[0].String())
	assert.Equal(t, "6", br[2].String())
	assert.Equal(t, "35", br[8].String())

	bb := sheet.Rows[2].Cells
	assert.Equal(t, "Bluebird Backcountry", bb[0].String())
	assert.Equal(t, "", bb[8].String())
	assert.Equal(t, "AggregatorB", bb[15].String())
}
