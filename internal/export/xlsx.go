package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// SheetName is the worksheet the XLSX sink writes to.
const SheetName = "Conditions"

// WriteXLSX writes recs to a single-sheet workbook at path. Numbers are stored
// as numeric cells; unreported totals and coordinates are left blank.
func WriteXLSX(path string, recs []model.ResortRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns() {
		header.AddCell().SetString(col)
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		for _, v := range FromRecord(rec).values() {
			setCell(row.AddCell(), v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

func setCell(c *xlsx.Cell, v any) {
	switch v := v.(type) {
	case nil:
		c.SetString("")
	case int:
		c.SetInt(v)
	case float64:
		c.SetFloat(v)
	case string:
		c.SetString(v)
	}
}
