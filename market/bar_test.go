package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(date string, close float64) PriceBar {
	return PriceBar{Date: day(date), Open: close, High: close, Low: close, Close: close, Volume: 1000}
}

func TestNormalizeSortsDedupesAndFilters(t *testing.T) {
	in := []PriceBar{
		bar("2024-01-04", 103),
		bar("2024-01-02", 101),
		bar("2024-01-02", 999), // duplicate, first wins
		bar("2024-01-06", 104), // Saturday
		bar("2024-01-03", 102),
		{Date: day("2024-01-05"), Close: 0}, // invalid
		bar("2024-01-10", 110),              // out of range
	}

	got, stats := Normalize(in, day("2024-01-01"), day("2024-01-09"))

	require.Len(t, got, 3)
	assert.True(t, got.Ascending())
	assert.Equal(t, []float64{101, 102, 103}, got.Closes())

	assert.Equal(t, 7, stats.Input)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.NonTrading)
	assert.Equal(t, 1, stats.Invalid)
	assert.Equal(t, 1, stats.OutOfRange)
	assert.Equal(t, 4, stats.Dropped())
}

func TestNormalizeTruncatesTimeOfDay(t *testing.T) {
	in := []PriceBar{{Date: time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC), Close: 10}}
	got, _ := Normalize(in, time.Time{}, time.Time{})
	require.Len(t, got, 1)
	assert.Equal(t, day("2024-01-02"), got[0].Date)
}

func TestThroughNeverExposesLaterBars(t *testing.T) {
	bs := Bars{bar("2024-01-02", 1), bar("2024-01-03", 2), bar("2024-01-04", 3)}

	hist := bs.Through(day("2024-01-03"))
	require.Len(t, hist, 2)
	assert.Equal(t, 2, cap(hist))

	// Mutating the copy must not touch the source.
	hist[0].Close = 42
	assert.Equal(t, 1.0, bs[0].Close)

	assert.Empty(t, bs.Through(day("2024-01-01")))
	assert.Len(t, bs.Through(day("2024-02-01")), 3)
}

func TestDateHelpers(t *testing.T) {
	_, err := ParseDate("2024/01/02")
	assert.Error(t, err)

	assert.Equal(t, "2024-03-01", FormatDate(day("2024-03-01")))
	assert.Equal(t, 366, CalendarDays(day("2024-01-01"), day("2025-01-01")))
	assert.True(t, IsTradingDay(day("2024-01-05")))
	assert.False(t, IsTradingDay(day("2024-01-07")))

	last, ok := Bars{bar("2024-01-02", 1), bar("2024-01-03", 2)}.Last()
	require.True(t, ok)
	assert.Equal(t, 2.0, last.Close)
	_, ok = Bars{}.Last()
	assert.False(t, ok)
}
