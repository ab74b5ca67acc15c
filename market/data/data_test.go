package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

func day(s string) time.Time {
	t, err := market.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func flatBars(start string, n int, px float64) []market.PriceBar {
	var out []market.PriceBar
	d := day(start)
	for len(out) < n {
		if market.IsTradingDay(d) {
			out = append(out, market.PriceBar{Date: d, Open: px, High: px, Low: px, Close: px, Volume: 1})
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func TestWindowReturnsNormalizedBars(t *testing.T) {
	bars := flatBars("2024-01-01", 6, 100)
	// shuffle a duplicate in at the front
	in := append([]market.PriceBar{bars[3]}, bars...)

	w := NewWindow(NewMemoryProvider("TEST", in), nil)
	got, err := w.Fetch(context.Background(), "TEST", day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	assert.Len(t, got, 6)
	assert.True(t, got.Ascending())
}

func TestWindowDataUnavailable(t *testing.T) {
	w := NewWindow(NewMemoryProvider("TEST", nil), nil)
	_, err := w.Fetch(context.Background(), "TEST", day("2024-01-01"), day("2024-01-31"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func TestWindowProviderFailureIsDataUnavailable(t *testing.T) {
	p := ProviderFunc(func(ctx context.Context, symbol string, start, end time.Time) ([]market.PriceBar, error) {
		return nil, fmt.Errorf("connection refused")
	})
	_, err := NewWindow(p, nil).Fetch(context.Background(), "TEST", day("2024-01-01"), day("2024-01-31"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func TestWindowInvalidRange(t *testing.T) {
	tests := []struct {
		name    string
		bars    int
		min     int
		wantErr bool
	}{
		{"default minimum met", 5, 0, false},
		{"default minimum missed", 4, 0, true},
		{"custom minimum", 3, 3, false},
		{"custom minimum missed", 9, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(NewMemoryProvider("TEST", flatBars("2024-01-01", tt.bars, 50)), nil)
			w.MinTradingDays = tt.min
			_, err := w.Fetch(context.Background(), "TEST", day("2024-01-01"), day("2024-03-01"))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRange))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCSVProviderHeaderless(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TEST.csv")
	content := strings.Join([]string{
		"2024-01-02,100,101,99,100.5,1000",
		"2024-01-03,100.5,102,100,101.5,1100",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := NewCSVProvider(filepath.Join(dir, "{symbol}.csv")).Fetch(context.Background(), "TEST", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day("2024-01-02"), got[0].Date)
	assert.Equal(t, 100.5, got[0].Close)
	assert.Equal(t, 1100.0, got[1].Volume)
}

func TestCSVProviderHeaderWithSymbolColumn(t *testing.T) {
	content := strings.Join([]string{
		"Symbol,Date,Close,Open,High,Low,Volume",
		"AAA,2024-01-02,10,9,11,8,100",
		"BBB,2024-01-02,20,19,21,18,200",
		"AAA,2024-01-03T00:00:00Z,11,10,12,9,150",
	}, "\n")

	got, err := readBarsCSV(context.Background(), strings.NewReader(content), "AAA")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].Close)
	assert.Equal(t, 9.0, got[0].Open)
	assert.Equal(t, day("2024-01-03"), got[1].Date)
}

func TestCSVProviderBadNumber(t *testing.T) {
	_, err := readBarsCSV(context.Background(), strings.NewReader("2024-01-02,1,1,1,abc,1\n"), "X")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataParseFailed))
}

func TestCSVProviderMissingFile(t *testing.T) {
	_, err := NewCSVProvider("/nonexistent/prices.csv").Fetch(context.Background(), "X", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func TestPolygonProviderRequiresKey(t *testing.T) {
	_, err := NewPolygonProvider("")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
}
