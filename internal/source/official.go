package source

import (
	"context"
	"net/url"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/fetcher"
	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// Mountain is one resort served by the official feed.
type Mountain struct {
	Name   string
	FeedID string
}

// AspenSnowmass lists the mountains in the Aspen Snowmass feed.
var AspenSnowmass = []Mountain{
	{Name: "Snowmass", FeedID: "Snowmass"},
	{Name: "Aspen Mountain", FeedID: "AspenMountain"},
	{Name: "Aspen Highlands", FeedID: "AspenHighlands"},
	{Name: "Buttermilk", FeedID: "Buttermilk"},
}

// Official reads the resort operator's JSON snow report, one request per
// mountain.
type Official struct {
	feedURL   string
	mountains []Mountain
	fetch     fetcher.Fetcher
	clock     clockwork.Clock
}

// NewOfficial creates the official-feed adapter.
func NewOfficial(f fetcher.Fetcher, feedURL string, mountains []Mountain, clock clockwork.Clock) *Official {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Official{feedURL: feedURL, mountains: mountains, fetch: f, clock: clock}
}

// Name implements Adapter.
func (o *Official) Name() model.SourceLabel { return model.SourceOfficial }

// Fetch implements Adapter. A mountain that fails is skipped; the call only
// fails when every mountain does.
func (o *Official) Fetch(ctx context.Context) ([]model.ResortRecord, error) {
	var (
		out     []model.ResortRecord
		lastErr error
	)
	for _, m := range o.mountains {
		rec, err := o.fetchMountain(ctx, m)
		if err != nil {
			lastErr = err
			zap.L().Warn("official feed: mountain failed",
				zap.String("resort", m.Name),
				zap.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		if lastErr != nil {
			return nil, eris.Wrap(lastErr, "source: official feed")
		}
		return nil, ErrNoRecords
	}
	return out, nil
}

func (o *Official) fetchMountain(ctx context.Context, m Mountain) (model.ResortRecord, error) {
	u, err := url.Parse(o.feedURL)
	if err != nil {
		return model.ResortRecord{}, eris.Wrap(err, "source: parse feed url")
	}
	q := u.Query()
	q.Set("mountain", m.FeedID)
	u.RawQuery = q.Encode()

	body, err := o.fetch.Fetch(ctx, u.String())
	if err != nil {
		return model.ResortRecord{}, err
	}
	return parseOfficial(m.Name, body, o.clock)
}

func parseOfficial(name string, body []byte, clock clockwork.Clock) (model.ResortRecord, error) {
	if !gjson.ValidBytes(body) {
		return model.ResortRecord{}, eris.Errorf("source: %s feed is not valid JSON", name)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return model.ResortRecord{}, eris.Errorf("source: %s feed is not an object", name)
	}

	rec := model.ResortRecord{
		Name:       name,
		Status:     model.ParseStatus(doc.Get("status").String()),
		NewSnow24h: nonNegative(doc.Get("snow24Hours.inches")),
		NewSnow48h: nonNegative(doc.Get("snow48Hours.inches")),
		BaseDepth:  nonNegative(doc.Get("snowBase.inches")),
		OpenLifts:  nonNegative(doc.Get("lifts.openCount")),
		OpenTrails: nonNegative(doc.Get("trails.openCount")),
		Source:     model.SourceOfficial,
		FetchedAt:  clock.Now(),
	}
	if v := doc.Get("lifts.totalCount"); v.Exists() {
		rec.TotalLifts = positive(int(v.Int()))
	}
	if v := doc.Get("trails.totalCount"); v.Exists() {
		rec.TotalTrails = positive(int(v.Int()))
	}
	return rec, nil
}

func nonNegative(v gjson.Result) int {
	if n := int(v.Int()); n > 0 {
		return n
	}
	return 0
}
