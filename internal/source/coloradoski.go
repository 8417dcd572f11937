package source

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"

	"github.com/gazette-evn/colorado-snow-conditions/internal/fetcher"
	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// ColoradoSki scrapes the industry association's snow report, which renders
// one card per resort. It reports mid-mountain depth and surface conditions
// but no trail counts.
type ColoradoSki struct {
	pageURL string
	fetch   fetcher.Fetcher
	clock   clockwork.Clock
}

// NewColoradoSki creates the aggregator B adapter.
func NewColoradoSki(f fetcher.Fetcher, pageURL string, clock clockwork.Clock) *ColoradoSki {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ColoradoSki{pageURL: pageURL, fetch: f, clock: clock}
}

// Name implements Adapter.
func (a *ColoradoSki) Name() model.SourceLabel { return model.SourceAggregatorB }

// Fetch implements Adapter.
func (a *ColoradoSki) Fetch(ctx context.Context) ([]model.ResortRecord, error) {
	body, err := a.fetch.Fetch(ctx, a.pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: coloradoski report")
	}

	recs, err := parseColoradoSki(body)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, emptyPage("coloradoski", body)
	}

	now := a.clock.Now()
	for i := range recs {
		recs[i].FetchedAt = now
	}
	return recs, nil
}

func parseColoradoSki(body []byte) ([]model.ResortRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "source: parse coloradoski html")
	}

	var out []model.ResortRecord
	doc.Find("div.one-snow-card").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("h3.h5").First().Text())
		if name == "" {
			return
		}

		rec := model.ResortRecord{
			Name:              name,
			NewSnow24h:        parseInches(card.Find("span.answer.twentyfour").First().Text()),
			NewSnow48h:        parseInches(card.Find("span.answer.fortyeight").First().Text()),
			MidMountainDepth:  parseInches(card.Find("span.answer.mid-mtn").First().Text()),
			SurfaceConditions: strings.TrimSpace(card.Find("p.surface span").First().Text()),
			Status:            model.StatusUnknown,
			Source:            model.SourceAggregatorB,
		}

		lifts := card.Find("p.lifts-open")
		open, total := lifts.Find("span.open").First(), lifts.Find("span.total").First()
		if open.Length() > 0 && total.Length() > 0 {
			rec.OpenLifts = atoi(open.Text())
			rec.TotalLifts = positive(atoi(total.Text()))
		}

		switch {
		case card.Find("span.open.mt-3").Length() > 0:
			rec.Status = model.StatusOpen
		case card.Find("span.closed").Length() > 0:
			rec.Status = model.StatusClosed
		}

		out = append(out, rec)
	})
	return out, nil
}
