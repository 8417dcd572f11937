package sheets

// Request shapes for spreadsheets.batchUpdate. Only the fields this client
// sends are modeled.

type batchUpdateRequest struct {
	Requests []request `json:"requests"`
}

type request struct {
	UpdateSheetProperties *updateSheetProperties `json:"updateSheetProperties,omitempty"`
	RepeatCell            *repeatCell            `json:"repeatCell,omitempty"`
	AutoResizeDimensions  *autoResizeDimensions  `json:"autoResizeDimensions,omitempty"`
}

type updateSheetProperties struct {
	Properties sheetProperties `json:"properties"`
	Fields     string          `json:"fields"`
}

type sheetProperties struct {
	SheetID        int64          `json:"sheetId"`
	GridProperties gridProperties `json:"gridProperties"`
}

type gridProperties struct {
	FrozenRowCount int `json:"frozenRowCount"`
}

type repeatCell struct {
	Range  gridRange `json:"range"`
	Cell   cellData  `json:"cell"`
	Fields string    `json:"fields"`
}

type gridRange struct {
	SheetID       int64 `json:"sheetId"`
	StartRowIndex int   `json:"startRowIndex"`
	EndRowIndex   int   `json:"endRowIndex"`
}

type cellData struct {
	UserEnteredFormat cellFormat `json:"userEnteredFormat"`
}

type cellFormat struct {
	TextFormat textFormat `json:"textFormat"`
}

type textFormat struct {
	Bold bool `json:"bold"`
}

type autoResizeDimensions struct {
	Dimensions dimensionRange `json:"dimensions"`
}

type dimensionRange struct {
	SheetID    int64  `json:"sheetId"`
	Dimension  string `json:"dimension"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
}
