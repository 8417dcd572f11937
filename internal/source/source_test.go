package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazette-evn/colorado-snow-conditions/internal/fetcher"
	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
)

var fixedTime = time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)

// stubFetcher serves canned bodies keyed by URL.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	s.calls = append(s.calls, rawURL)
	body, ok := s.pages[rawURL]
	if !ok {
		return nil, resilience.NewStatusError(rawURL, http.StatusNotFound)
	}
	return []byte(body), nil
}

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`5"`, 5},
		{`0-1"`, 1},
		{`2 - 4"`, 4},
		{"18 in", 18},
		{"--", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseMeasurement(tt.in), tt.in)
	}
}

func TestParseInches(t *testing.T) {
	assert.Equal(t, 5, parseInches(`24-hour snow total: 5"`))
	assert.Equal(t, 38, parseInches(`38 "`))
	assert.Equal(t, 0, parseInches("n/a"))
}

func TestParseRatio(t *testing.T) {
	open, total, ok := parseRatio("4/140")
	require.True(t, ok)
	assert.Equal(t, 4, open)
	require.NotNil(t, total)
	assert.Equal(t, 140, *total)

	open, total, ok = parseRatio("0/0")
	require.True(t, ok)
	assert.Equal(t, 0, open)
	assert.Nil(t, total)

	_, _, ok = parseRatio("closed")
	assert.False(t, ok)
}

func TestDetectBlock(t *testing.T) {
	assert.Equal(t, blockCloudflare, detectBlock([]byte("<html>Checking your browser before accessing</html>")))
	assert.Equal(t, blockCaptcha, detectBlock([]byte("<html>please solve the reCAPTCHA</html>")))
	assert.Equal(t, blockJSShell, detectBlock([]byte("<html><noscript>Enable JavaScript</noscript></html>")))
	assert.Equal(t, blockNone, detectBlock([]byte("<html><table></table></html>")))
}

func TestOfficial_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("mountain") {
		case "Snowmass":
			w.Write([]byte(`{"status":"Open","snow24Hours":{"inches":6},"snow48Hours":{"inches":9},
				"snowBase":{"inches":41},"lifts":{"openCount":15,"totalCount":17},
				"trails":{"openCount":80,"totalCount":98}}`))
		case "Buttermilk":
			w.Write([]byte(`{"status":"closed for season","lifts":{"openCount":0,"totalCount":0}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.Options{RatePerSec: 1000, Retry: resilience.Policy{Attempts: 1}})
	clock := clockwork.NewFakeClockAt(fixedTime)
	a := NewOfficial(f, srv.URL+"/Feed", AspenSnowmass, clock)
	assert.Equal(t, model.SourceOfficial, a.Name())

	recs, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	sm := recs[0]
	assert.Equal(t, "Snowmass", sm.Name)
	assert.Equal(t, model.StatusOpen, sm.Status)
	assert.Equal(t, 6, sm.NewSnow24h)
	assert.Equal(t, 9, sm.NewSnow48h)
	assert.Equal(t, 41, sm.BaseDepth)
	assert.Equal(t, 15, sm.OpenLifts)
	assert.Equal(t, 17, *sm.TotalLifts)
	assert.Equal(t, 80, sm.OpenTrails)
	assert.Equal(t, 98, *sm.TotalTrails)
	assert.Equal(t, model.SourceOfficial, sm.Source)
	assert.Equal(t, fixedTime, sm.FetchedAt)

	bm := recs[1]
	assert.Equal(t, "Buttermilk", bm.Name)
	assert.Equal(t, model.StatusClosed, bm.Status)
	assert.Nil(t, bm.TotalLifts)
	assert.Nil(t, bm.TotalTrails)
}

func TestOfficial_AllMountainsFail(t *testing.T) {
	a := NewOfficial(&stubFetcher{}, "https://feed.example/Feed", AspenSnowmass, nil)
	_, err := a.Fetch(context.Background())
	require.Error(t, err)

	var se *resilience.StatusError
	assert.True(t, errors.As(err, &se))
}

func TestOfficial_InvalidJSONSkipsMountain(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://feed.example/Feed?mountain=Snowmass":      `<html>maintenance</html>`,
		"https://feed.example/Feed?mountain=AspenMountain": `{"status":"Open","snow24Hours":{"inches":"3"}}`,
	}}
	a := NewOfficial(f, "https://feed.example/Feed", AspenSnowmass[:2], clockwork.NewFakeClockAt(fixedTime))

	recs, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Aspen Mountain", recs[0].Name)
	assert.Equal(t, 3, recs[0].NewSnow24h)
}

const onTheSnowPage = `<html><body>
<table>
  <tr><th><span class="h4 styles_h4__x3zzi">Resort Name</span></th><th>24h</th><th>3 Day</th><th>Base</th><th>Trails</th><th>Lifts</th></tr>
  <tr>
    <td><a href="/colorado/vail/skireport"><span class="h4 styles_h4__x3zzi">Vail</span></a></td>
    <td><span class="h4 styles_h4__a">3"</span></td>
    <td><span class="h4 styles_h4__a">0-1"</span></td>
    <td><span class="h4 styles_h4__a">38"</span></td>
    <td><span class="h4 styles_h4__a">120/277<div class="small">43% Open</div></span></td>
    <td><span class="h4 styles_h4__a">25/31</span></td>
  </tr>
  <tr>
    <td><a href="/colorado/keystone/skireport"><span class="h4 styles_h4__x3zzi">Keystone</span></a></td>
    <td><span class="h4 styles_h4__a">-</span></td>
    <td><span class="h4 styles_h4__a">2"</span></td>
    <td><span class="h4 styles_h4__a">30"</span></td>
    <td><span class="h4 styles_h4__a">10/0</span></td>
    <td><span class="h4 styles_h4__a">5/0</span></td>
  </tr>
</table>
<table>
  <tr>
    <td><span class="h4 styles_h4__x3zzi">Wolf Creek Ski Area</span></td>
    <td>Opens Nov 1</td>
  </tr>
</table>
</body></html>`

func TestOnTheSnow_Fetch(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{"https://ots.example/colorado/skireport.html": onTheSnowPage}}
	a := NewOnTheSnow(f, "https://ots.example/colorado/skireport.html", clockwork.NewFakeClockAt(fixedTime))
	assert.Equal(t, model.SourceAggregatorA, a.Name())

	recs, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	vail := recs[0]
	assert.Equal(t, "Vail", vail.Name)
	assert.Equal(t, model.StatusOpen, vail.Status)
	assert.Equal(t, 3, vail.NewSnow24h)
	assert.Equal(t, 1, vail.NewSnow48h)
	assert.Equal(t, 38, vail.BaseDepth)
	assert.Equal(t, 120, vail.OpenTrails)
	assert.Equal(t, 277, *vail.TotalTrails)
	assert.Equal(t, 25, vail.OpenLifts)
	assert.Equal(t, 31, *vail.TotalLifts)
	assert.Equal(t, model.SourceAggregatorA, vail.Source)
	assert.Equal(t, fixedTime, vail.FetchedAt)

	ks := recs[1]
	assert.Equal(t, 0, ks.NewSnow24h)
	assert.Equal(t, 10, ks.OpenTrails)
	assert.Nil(t, ks.TotalTrails)

	wc := recs[2]
	assert.Equal(t, "Wolf Creek Ski Area", wc.Name)
	assert.Equal(t, model.StatusClosed, wc.Status)
	assert.Equal(t, 0, wc.OpenLifts)
	assert.Nil(t, wc.TotalLifts)

	// Detail pages are skipped by default.
	assert.Len(t, f.calls, 1)
}

func TestOnTheSnow_DetailPagesFillTotals(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://ots.example/colorado/skireport.html": onTheSnowPage,
		"https://ots.example/colorado/keystone/skireport": `<html><body>
			<div>Runs Open <b>10/140 runs</b></div><div>Lifts <b>5 / 21 Lifts</b></div></body></html>`,
	}}
	a := NewOnTheSnow(f, "https://ots.example/colorado/skireport.html", nil, WithDetailPages())

	recs, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	ks := recs[1]
	require.NotNil(t, ks.TotalTrails)
	assert.Equal(t, 140, *ks.TotalTrails)
	require.NotNil(t, ks.TotalLifts)
	assert.Equal(t, 21, *ks.TotalLifts)
	// Vail had totals; Wolf Creek has no link.
	assert.Len(t, f.calls, 2)
}

func TestOnTheSnow_EmptyAndBlocked(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		"https://a.example/": "<html><body><table></table></body></html>",
		"https://b.example/": "<html><noscript>Please enable JavaScript</noscript></html>",
	}}

	_, err := NewOnTheSnow(f, "https://a.example/", nil).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = NewOnTheSnow(f, "https://b.example/", nil).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrBlocked)

	_, err = NewOnTheSnow(f, "https://missing.example/", nil).Fetch(context.Background())
	assert.Error(t, err)
}

const coloradoSkiPage = `<html><body>
<div class="one-snow-card">
  <h3 class="h5 text-left">Copper Mountain</h3>
  <span class="open mt-3">Open</span>
  <span class="answer twentyfour">24-hour snow total: 4"</span>
  <span class="answer fortyeight">7"</span>
  <span class="answer mid-mtn">42"</span>
  <p class="surface">Surface: <span>Packed Powder</span></p>
  <p class="lifts-open"><span class="open">18</span> of <span class="total">24</span></p>
</div>
<div class="one-snow-card">
  <h3 class="h5">Sunlight</h3>
  <span class="closed">Closed</span>
  <p class="lifts-open"><span class="open">0</span> of <span class="total">0</span></p>
</div>
<div class="one-snow-card">
  <h3 class="h5">Echo Mountain</h3>
</div>
<div class="one-snow-card"><p>no name</p></div>
</body></html>`

func TestColoradoSki_Fetch(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{"https://cs.example/snow-report": coloradoSkiPage}}
	a := NewColoradoSki(f, "https://cs.example/snow-report", clockwork.NewFakeClockAt(fixedTime))
	assert.Equal(t, model.SourceAggregatorB, a.Name())

	recs, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	cm := recs[0]
	assert.Equal(t, "Copper Mountain", cm.Name)
	assert.Equal(t, model.StatusOpen, cm.Status)
	assert.Equal(t, 4, cm.NewSnow24h)
	assert.Equal(t, 7, cm.NewSnow48h)
	assert.Equal(t, 42, cm.MidMountainDepth)
	assert.Equal(t, "Packed Powder", cm.SurfaceConditions)
	assert.Equal(t, 18, cm.OpenLifts)
	assert.Equal(t, 24, *cm.TotalLifts)
	assert.Nil(t, cm.TotalTrails)
	assert.Equal(t, fixedTime, cm.FetchedAt)

	assert.Equal(t, model.StatusClosed, recs[1].Status)
	assert.Nil(t, recs[1].TotalLifts)
	assert.Equal(t, model.StatusUnknown, recs[2].Status)
}

func TestColoradoSki_NoCards(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{"https://cs.example/": "<html><body>Nothing here today, come back later.</body></html>"}}
	_, err := NewColoradoSki(f, "https://cs.example/", nil).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
}
