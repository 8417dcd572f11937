package source

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/fetcher"
	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// OnTheSnow scrapes the aggregator report table. Rows with six or more cells
// describe open resorts; shorter rows list closed resorts with an opening
// date.
type OnTheSnow struct {
	pageURL    string
	fetch      fetcher.Fetcher
	clock      clockwork.Clock
	skipDetail bool
}

// OnTheSnowOption configures the OnTheSnow adapter.
type OnTheSnowOption func(*OnTheSnow)

// WithDetailPages makes the adapter visit each resort's own page when the
// report table leaves its trail or lift total blank.
func WithDetailPages() OnTheSnowOption {
	return func(a *OnTheSnow) { a.skipDetail = false }
}

// NewOnTheSnow creates the aggregator A adapter.
func NewOnTheSnow(f fetcher.Fetcher, pageURL string, clock clockwork.Clock, opts ...OnTheSnowOption) *OnTheSnow {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	a := &OnTheSnow{pageURL: pageURL, fetch: f, clock: clock, skipDetail: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *OnTheSnow) Name() model.SourceLabel { return model.SourceAggregatorA }

// Fetch implements Adapter.
func (a *OnTheSnow) Fetch(ctx context.Context) ([]model.ResortRecord, error) {
	body, err := a.fetch.Fetch(ctx, a.pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: onthesnow report")
	}

	rows, err := parseOnTheSnow(body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, emptyPage("onthesnow", body)
	}

	now := a.clock.Now()
	out := make([]model.ResortRecord, 0, len(rows))
	for _, row := range rows {
		if !a.skipDetail && row.detail != "" && (row.rec.TotalTrails == nil || row.rec.TotalLifts == nil) {
			a.fillFromDetail(ctx, &row)
		}
		row.rec.FetchedAt = now
		out = append(out, row.rec)
	}
	return out, nil
}

type onTheSnowRow struct {
	rec    model.ResortRecord
	detail string
}

var skipNames = map[string]bool{
	"resort": true, "name": true, "location": true, "open": true, "closed": true, "resort name": true,
}

func parseOnTheSnow(body []byte) ([]onTheSnowRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "source: parse onthesnow html")
	}

	var rows []onTheSnowRow
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		first := cells.First()
		name := strings.TrimSpace(first.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return strings.Contains(class, "h4") && strings.Contains(class, "styles_h4")
		}).First().Text())
		if len(name) < 3 || skipNames[strings.ToLower(name)] {
			return
		}

		row := onTheSnowRow{rec: model.ResortRecord{
			Name:   name,
			Status: model.StatusClosed,
			Source: model.SourceAggregatorA,
		}}
		if href, ok := first.Find("a[href]").First().Attr("href"); ok {
			row.detail = href
		}

		if cells.Length() >= 6 {
			row.rec.Status = model.StatusOpen
			row.rec.NewSnow24h = parseMeasurement(h4Text(cells.Eq(1)))
			row.rec.NewSnow48h = parseMeasurement(h4Text(cells.Eq(2)))
			row.rec.BaseDepth = parseMeasurement(h4Text(cells.Eq(3)))
			row.rec.OpenTrails, row.rec.TotalTrails = ratioCell(cells.Eq(4))
			row.rec.OpenLifts, row.rec.TotalLifts = ratioCell(cells.Eq(5))
		}
		rows = append(rows, row)
	})
	return rows, nil
}

func h4Span(cell *goquery.Selection) *goquery.Selection {
	return cell.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return strings.Contains(class, "h4")
	}).First()
}

func h4Text(cell *goquery.Selection) string {
	return strings.TrimSpace(h4Span(cell).Text())
}

// ratioCell reads "open/total" from a cell's own text, ignoring nested
// elements such as the "3% Open" caption.
func ratioCell(cell *goquery.Selection) (int, *int) {
	span := h4Span(cell)
	if span.Length() == 0 {
		return 0, nil
	}
	direct := span.Contents().FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "#text"
	}).Text()
	if open, total, ok := parseRatio(direct); ok {
		return open, total
	}
	open, total, _ := parseRatio(span.Text())
	return open, total
}

var (
	detailTrailsRe = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*(?:runs|trails)`)
	detailLiftsRe  = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*lifts`)
)

func (a *OnTheSnow) fillFromDetail(ctx context.Context, row *onTheSnowRow) {
	base, err := url.Parse(a.pageURL)
	if err != nil {
		return
	}
	ref, err := url.Parse(row.detail)
	if err != nil {
		return
	}
	target := base.ResolveReference(ref).String()

	body, err := a.fetch.Fetch(ctx, target)
	if err != nil {
		zap.L().Warn("onthesnow: detail page failed",
			zap.String("resort", row.rec.Name),
			zap.String("url", target),
			zap.Error(err),
		)
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return
	}
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	if row.rec.TotalTrails == nil {
		if m := detailTrailsRe.FindStringSubmatch(text); m != nil {
			row.rec.TotalTrails = positive(atoi(m[2]))
		}
	}
	if row.rec.TotalLifts == nil {
		if m := detailLiftsRe.FindStringSubmatch(text); m != nil {
			row.rec.TotalLifts = positive(atoi(m[2]))
		}
	}
}

// emptyPage explains a page that parsed to nothing.
func emptyPage(source string, body []byte) error {
	if kind := detectBlock(body); kind != blockNone {
		return eris.Wrapf(ErrBlocked, "source: %s served a %s page", source, kind)
	}
	return eris.Wrapf(ErrNoRecords, "source: %s", source)
}
