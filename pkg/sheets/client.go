// Package sheets is a small client for the Google Sheets v4 REST API: clear a
// range, write values, and format the header row.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com/v4"
	defaultTimeout = 30 * time.Second
)

// ErrSheetNotFound is returned by SheetID when no tab has the given title.
var ErrSheetNotFound = eris.New("sheets: sheet not found")

// Client performs Google Sheets API operations.
type Client interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) (*UpdateResponse, error)
	SheetID(ctx context.Context, spreadsheetID, title string) (int64, error)
	FormatHeader(ctx context.Context, spreadsheetID string, sheetID int64, columns int) error
}

// UpdateResponse is the response from PUT values/{range}.
type UpdateResponse struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int    `json:"updatedRows"`
	UpdatedColumns int    `json:"updatedColumns"`
	UpdatedCells   int    `json:"updatedCells"`
}

// APIError is returned when the Sheets API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client. The client is expected to
// add authorization itself, as the one from NewServiceAccountClient does.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Sheets client. Without WithHTTPClient requests are
// unauthenticated, which only suits tests.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type valueRange struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

func (c *httpClient) Clear(ctx context.Context, spreadsheetID, rng string) error {
	path := c.valuesPath(spreadsheetID, rng) + ":clear"
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, nil); err != nil {
		return eris.Wrapf(err, "sheets: clear %s", rng)
	}
	return nil
}

func (c *httpClient) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) (*UpdateResponse, error) {
	body := valueRange{Range: rng, MajorDimension: "ROWS", Values: values}
	path := c.valuesPath(spreadsheetID, rng) + "?valueInputOption=RAW"

	var resp UpdateResponse
	if err := c.do(ctx, http.MethodPut, path, body, &resp); err != nil {
		return nil, eris.Wrapf(err, "sheets: update %s", rng)
	}
	return &resp, nil
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			SheetID int64  `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

func (c *httpClient) SheetID(ctx context.Context, spreadsheetID, title string) (int64, error) {
	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) + "?fields=sheets.properties"

	var meta spreadsheetMeta
	if err := c.do(ctx, http.MethodGet, path, nil, &meta); err != nil {
		return 0, eris.Wrap(err, "sheets: get spreadsheet")
	}
	for _, s := range meta.Sheets {
		if s.Properties.Title == title {
			return s.Properties.SheetID, nil
		}
	}
	return 0, eris.Wrapf(ErrSheetNotFound, "title %q", title)
}

// FormatHeader freezes and bolds the first row and auto-sizes the first
// columns columns.
func (c *httpClient) FormatHeader(ctx context.Context, spreadsheetID string, sheetID int64, columns int) error {
	req := batchUpdateRequest{Requests: []request{
		{UpdateSheetProperties: &updateSheetProperties{
			Properties: sheetProperties{
				SheetID:        sheetID,
				GridProperties: gridProperties{FrozenRowCount: 1},
			},
			Fields: "gridProperties.frozenRowCount",
		}},
		{RepeatCell: &repeatCell{
			Range: gridRange{SheetID: sheetID, StartRowIndex: 0, EndRowIndex: 1},
			Cell: cellData{UserEnteredFormat: cellFormat{
				TextFormat: textFormat{Bold: true},
			}},
			Fields: "userEnteredFormat.textFormat.bold",
		}},
		{AutoResizeDimensions: &autoResizeDimensions{
			Dimensions: dimensionRange{SheetID: sheetID, Dimension: "COLUMNS", StartIndex: 0, EndIndex: columns},
		}},
	}}

	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) + ":batchUpdate"
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return eris.Wrap(err, "sheets: format header")
	}
	return nil
}

func (c *httpClient) valuesPath(spreadsheetID, rng string) string {
	return "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(rng)
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
