package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazette-evn/colorado-snow-conditions/internal/export"
	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/monitoring"
	"github.com/gazette-evn/colorado-snow-conditions/internal/publish"
	"github.com/gazette-evn/colorado-snow-conditions/internal/reconcile"
	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
	"github.com/gazette-evn/colorado-snow-conditions/internal/stage"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/datawrapper"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/sheets"
)

func sampleRecords() []model.ResortRecord {
	fetched := time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)
	return []model.ResortRecord{
		{
			Name: "Breckenridge", Status: model.StatusOpen, NewSnow24h: 4, NewSnow48h: 7, BaseDepth: 40,
			OpenLifts: 30, TotalLifts: model.Int(35), OpenTrails: 150, TotalTrails: model.Int(187),
			Latitude: model.Float(39.4817), Longitude: model.Float(-106.0384),
			Source: model.SourceAggregatorA, FetchedAt: fetched,
		},
		{
			Name: "Vail", Status: model.StatusOpen, NewSnow24h: 6, NewSnow48h: 9, BaseDepth: 45,
			OpenLifts: 25, TotalLifts: model.Int(31), OpenTrails: 200, TotalTrails: model.Int(277),
			Latitude: model.Float(39.6061444), Longitude: model.Float(-106.35497),
			Source: model.SourceAggregatorB, FetchedAt: fetched,
		},
	}
}

func fastPolicy() resilience.Policy {
	return resilience.Policy{Attempts: 2, Base: time.Millisecond, Cap: time.Millisecond}
}

func TestRunScrape_AllSourcesDown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := testConfig(t.TempDir())
	c.Sources.OfficialURL = ts.URL + "/feed"
	c.Sources.OnTheSnowURL = ts.URL + "/skireport.html"
	c.Sources.ColoradoSkiURL = ts.URL + "/snow-report"

	col := monitoring.NewCollector("test-run", nil)
	err := runScrape(context.Background(), c, col)

	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrNoData))
	assert.NoFileExists(t, c.Output.ConditionsCSV)

	snap := col.Snapshot()
	assert.Equal(t, 3, snap.SourcesTotal)
	assert.True(t, snap.AllSourcesFailed())
	assert.Empty(t, snap.Placeholders)
}

func TestRunForecast_WritesRegion(t *testing.T) {
	var calls int
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "snowfall_sum", r.URL.Query().Get("daily"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"daily":{
			"time":["2026-01-15","2026-01-16","2026-01-17","2026-01-18","2026-01-19","2026-01-20","2026-01-21"],
			"snowfall_sum":[2.54,0,5.08,0,0,0,null]}}`)
	}))
	defer ts.Close()

	dir := t.TempDir()
	c := testConfig(dir)
	c.Forecast.BaseURL = ts.URL
	c.Forecast.RunCA = true // input missing, skipped
	require.NoError(t, export.WriteCSV(c.Output.ConditionsCSV, sampleRecords()))

	col := monitoring.NewCollector("test-run", nil)
	err := runForecast(context.Background(), c, newForecastBuilder(c), col)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	data, err := os.ReadFile(c.Output.ForecastCO)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Resort,2026-01-15,"))
	assert.True(t, strings.HasPrefix(lines[1], "Breckenridge,1,0,2,0,0,0,0,3,2,"))
	assert.NoFileExists(t, c.Output.ForecastCA)

	snap := col.Snapshot()
	assert.Equal(t, 2, snap.ForecastResorts)
	assert.Zero(t, snap.ForecastFailed)
}

func TestRunForecast_RequiresARegion(t *testing.T) {
	c := testConfig(t.TempDir())
	c.Forecast.RunCO = false

	err := runForecast(context.Background(), c, newForecastBuilder(c), monitoring.NewCollector("r", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_CO")
}

func TestRunForecast_MissingColoradoInputFails(t *testing.T) {
	c := testConfig(t.TempDir())

	err := runForecast(context.Background(), c, newForecastBuilder(c), monitoring.NewCollector("r", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CO")
}

// sheetsRecorder is a fake Sheets API that records the value updates it
// receives.
type sheetsRecorder struct {
	mu      sync.Mutex
	paths   []string
	updates [][][]any
}

func (s *sheetsRecorder) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.paths = append(s.paths, r.Method+" "+r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPut:
			var body struct {
				Values [][]any `json:"values"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			s.updates = append(s.updates, body.Values)
			_, _ = io.WriteString(w, `{"updatedRows":1}`)
		case r.Method == http.MethodGet:
			_, _ = io.WriteString(w, `{"sheets":[{"properties":{"sheetId":7,"title":"Sheet1"}}]}`)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	})
}

func TestRunSheets_UploadsConditions(t *testing.T) {
	rec := &sheetsRecorder{}
	ts := httptest.NewServer(rec.handler(t))
	defer ts.Close()

	c := testConfig(t.TempDir())
	require.NoError(t, export.WriteCSV(c.Output.ConditionsCSV, sampleRecords()))

	p := publish.NewSheetPublisher(sheets.NewClient(sheets.WithBaseURL(ts.URL)), fastPolicy())
	require.NoError(t, runSheets(context.Background(), c, p))

	require.Len(t, rec.updates, 1)
	values := rec.updates[0]
	require.Len(t, values, 3)
	assert.Equal(t, "Resort Name", values[0][0])
	assert.Equal(t, "Breckenridge", values[1][0])
	assert.Contains(t, rec.paths, "POST /spreadsheets/conditions-sheet/values/Sheet1!A:Z:clear")
	assert.Contains(t, rec.paths, "POST /spreadsheets/conditions-sheet:batchUpdate")
}

func TestRunSheets_MissingInput(t *testing.T) {
	c := testConfig(t.TempDir())
	p := publish.NewSheetPublisher(sheets.NewClient(sheets.WithBaseURL("http://127.0.0.1:1")), fastPolicy())

	err := runSheets(context.Background(), c, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read consolidated table")
}

func TestRunForecastSheets_CopiesCSV(t *testing.T) {
	rec := &sheetsRecorder{}
	ts := httptest.NewServer(rec.handler(t))
	defer ts.Close()

	c := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(c.Output.ForecastCO, []byte(
		"Resort,Day1,Total_7day\nVail,1.5,1.5\n"), 0o644))

	p := publish.NewSheetPublisher(sheets.NewClient(sheets.WithBaseURL(ts.URL)), fastPolicy())
	require.NoError(t, runForecastSheets(context.Background(), c, p))

	require.Len(t, rec.updates, 1)
	assert.Equal(t, []any{"Vail", 1.5, 1.5}, rec.updates[0][1])
	assert.Contains(t, rec.paths, "POST /spreadsheets/forecast-sheet/values/Sheet1!A:Z:clear")
}

func TestRunForecastSheets_HeaderOnly(t *testing.T) {
	c := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(c.Output.ForecastCO, []byte("Resort,Day1\n"), 0o644))

	p := publish.NewSheetPublisher(sheets.NewClient(sheets.WithBaseURL("http://127.0.0.1:1")), fastPolicy())
	err := runForecastSheets(context.Background(), c, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows")
}

func TestRunCharts_RefreshesBothCharts(t *testing.T) {
	var mu sync.Mutex
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Method+" "+r.URL.Path)
		mu.Unlock()
		assert.Equal(t, "Bearer dw-key", r.Header.Get("Authorization"))
		if r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"data":{"id":"x","publicUrl":"https://datawrapper.dwcdn.net/x/3/","publicVersion":3}}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := testConfig(t.TempDir())
	c.Datawrapper.APIKey = "dw-key"
	c.Datawrapper.BaseURL = ts.URL
	c.Datawrapper.MapChartID = "map01"
	c.Datawrapper.TableChartID = "tab01"
	require.NoError(t, export.WriteCSV(c.Output.ConditionsCSV, sampleRecords()))

	client := datawrapper.NewClient(c.Datawrapper.APIKey, datawrapper.WithBaseURL(ts.URL))
	p := publish.NewChartPublisher(client, publish.ChartIDs{Map: "map01", Table: "tab01"}, fastPolicy())
	require.NoError(t, runCharts(context.Background(), c, p))

	assert.Equal(t, []string{
		"PUT /charts/map01/data",
		"POST /charts/map01/publish",
		"PUT /charts/tab01/data",
		"POST /charts/tab01/publish",
	}, got)
}

func TestUpdateStages(t *testing.T) {
	c := testConfig(t.TempDir())
	col := monitoring.NewCollector("r", nil)

	var names []string
	for _, s := range updateStages(c, col) {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"scrape", "sheets"}, names)

	c.Datawrapper.APIKey = "dw-key"
	c.Datawrapper.MapChartID = "map01"
	names = nil
	for _, s := range updateStages(c, col) {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"scrape", "sheets", "charts"}, names)
}

func TestRunUpdate_ReportsFailedStages(t *testing.T) {
	col := monitoring.NewCollector("r", nil)
	runner := stage.NewRunner(time.Second, stage.WithObserver(col.ObserveStage))

	err := runUpdate(context.Background(), runner, []stage.Stage{
		{Name: "scrape", Run: func(context.Context) error { return nil }},
		{Name: "sheets", Run: func(context.Context) error { return errors.New("quota exceeded") }},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets")
	assert.Equal(t, []string{"sheets"}, col.Snapshot().FailedStages)
}

func TestRunUpdate_AllStagesOK(t *testing.T) {
	runner := stage.NewRunner(time.Second)
	err := runUpdate(context.Background(), runner, []stage.Stage{
		{Name: "scrape", Run: func(context.Context) error { return nil }},
	})
	assert.NoError(t, err)
}

func TestUpdateSheetsStage_FailsWithoutCredentials(t *testing.T) {
	c := testConfig(t.TempDir())
	stages := updateStages(c, monitoring.NewCollector("r", nil))

	err := stages[1].Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CREDENTIALS")
}
