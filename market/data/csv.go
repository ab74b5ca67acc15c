package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

// CSVProvider reads daily bars from a CSV file:
//
//	date,open,high,low,close,volume
//
// A header row is optional. When present, columns are matched by name
// (date|time, open, high, low, close, volume, symbol|ticker) so exports with
// extra or reordered columns work. With a symbol column, rows for other symbols
// are skipped. Path may contain "{symbol}" to select one file per symbol.
type CSVProvider struct {
	Path string
}

func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{Path: path}
}

type csvColumns struct {
	date, open, high, low, close, volume, symbol int
}

var defaultColumns = csvColumns{date: 0, open: 1, high: 2, low: 3, close: 4, volume: 5, symbol: -1}

func (p *CSVProvider) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]market.PriceBar, error) {
	path := strings.ReplaceAll(p.Path, "{symbol}", symbol)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "cannot open price file %s", path)
	}
	defer f.Close()

	return readBarsCSV(ctx, f, symbol)
}

func readBarsCSV(ctx context.Context, rd io.Reader, symbol string) ([]market.PriceBar, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	cols := defaultColumns
	sawFirst := false
	line := 0

	var out []market.PriceBar
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "cannot read price file", err)
		}
		line++
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if c, ok := headerColumns(row); ok {
				cols = c
				continue
			}
		}

		if cols.symbol >= 0 && cols.symbol < len(row) &&
			!strings.EqualFold(strings.TrimSpace(row[cols.symbol]), symbol) {
			continue
		}

		b, ok, err := parseBarRow(row, cols)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "price file line %d", line)
		}
		if !ok {
			continue
		}
		out = append(out, b)
	}
}

func headerColumns(row []string) (csvColumns, bool) {
	first := strings.ToLower(strings.TrimSpace(row[0]))
	if _, err := strconv.ParseFloat(first, 64); err == nil {
		return csvColumns{}, false
	}
	if _, err := market.ParseDate(first); err == nil {
		return csvColumns{}, false
	}

	c := csvColumns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1, symbol: -1}
	for i, name := range row {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "time", "timestamp":
			c.date = i
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close":
			c.close = i
		case "volume":
			c.volume = i
		case "symbol", "ticker":
			c.symbol = i
		}
	}
	if c.date < 0 || c.close < 0 {
		return csvColumns{}, false
	}
	return c, true
}

func parseBarRow(row []string, cols csvColumns) (market.PriceBar, bool, error) {
	if cols.date >= len(row) || cols.close >= len(row) {
		return market.PriceBar{}, false, nil
	}

	ds := strings.TrimSpace(row[cols.date])
	if ds == "" {
		return market.PriceBar{}, false, nil
	}
	// Accept YYYY-MM-DD or a full RFC3339 timestamp.
	t, err := market.ParseDate(ds)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339, ds)
		if err2 != nil {
			return market.PriceBar{}, false, err
		}
		t = market.TruncateDay(t2)
	}

	closePx, err := field(row, cols.close)
	if err != nil {
		return market.PriceBar{}, false, err
	}

	b := market.PriceBar{Date: t, Open: closePx, High: closePx, Low: closePx, Close: closePx}
	for _, fc := range []struct {
		idx int
		dst *float64
	}{
		{cols.open, &b.Open},
		{cols.high, &b.High},
		{cols.low, &b.Low},
		{cols.volume, &b.Volume},
	} {
		if fc.idx < 0 || fc.idx >= len(row) || strings.TrimSpace(row[fc.idx]) == "" {
			continue
		}
		v, err := field(row, fc.idx)
		if err != nil {
			return market.PriceBar{}, false, err
		}
		*fc.dst = v
	}
	return b, true, nil
}

func field(row []string, idx int) (float64, error) {
	s := strings.TrimSpace(row[idx])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return v, nil
}
