package data

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

// PolygonProvider loads daily aggregates from polygon.io.
type PolygonProvider struct {
	client *polygon.Client
}

func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeConfiguration, "polygon api key is required")
	}

	return &PolygonProvider{client: polygon.New(apiKey)}, nil
}

func (p *PolygonProvider) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]market.PriceBar, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	var out []market.PriceBar
	for iter.Next() {
		agg := iter.Item()
		out = append(out, market.PriceBar{
			Date:   market.TruncateDay(time.Time(agg.Timestamp)),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return nil, fmt.Errorf("polygon aggregates for %s: %w", symbol, iter.Err())
	}

	return out, nil
}
