package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCloses() []float64 {
	return []float64{102, 105, 106, 108, 110, 111, 113, 114, 116, 118}
}

func TestMA(t *testing.T) {
	ma, err := MA(testCloses(), 5)
	require.NoError(t, err)
	// Last 5 closes: 111,113,114,116,118 => 572/5 = 114.4
	assert.InDelta(t, 114.4, ma, 0.001)
}

func TestMAErrors(t *testing.T) {
	_, err := MA(testCloses(), 0)
	assert.Error(t, err)
	_, err = MA(testCloses()[:3], 5)
	assert.Error(t, err)
}

func TestEMASeriesSeededWithSMA(t *testing.T) {
	series, err := EMASeries([]float64{1, 2, 3, 4}, 3)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.InDelta(t, 2.0, series[0], 1e-9)
	// (4-2)*0.5 + 2 = 3
	assert.InDelta(t, 3.0, series[1], 1e-9)

	_, err = EMASeries([]float64{1, 2}, 3)
	assert.Error(t, err)
}

func TestEMASeriesLength(t *testing.T) {
	series, err := EMASeries(testCloses(), 4)
	require.NoError(t, err)
	assert.Len(t, series, 7)
	last, ready := Feed(NewEMA(4), testCloses())
	require.True(t, ready)
	assert.Equal(t, last, series[len(series)-1])
}

func TestSeriesMatchesFeed(t *testing.T) {
	tests := []struct {
		name string
		ind  func() Indicator
		len  int
	}{
		{"MA", func() Indicator { return NewMA(5) }, 6},
		{"EMA", func() Indicator { return NewEMA(5) }, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := Series(tt.ind(), testCloses())
			require.Len(t, series, tt.len)
			got, ready := Feed(tt.ind(), testCloses())
			require.True(t, ready)
			assert.InDelta(t, series[len(series)-1], got, 1e-9)
		})
	}
}

func TestMAWindowSlides(t *testing.T) {
	m := NewMA(3)
	assert.Equal(t, "MA(3)", m.Name())
	assert.Equal(t, []float64{2, 3, 4}, Series(m, []float64{1, 2, 3, 4, 5}))
}

func TestStreamingWarmup(t *testing.T) {
	e := NewEMA(3)
	assert.Equal(t, "EMA(3)", e.Name())
	assert.Equal(t, 3, e.Warmup())
	e.Update(1)
	e.Update(2)
	assert.False(t, e.Ready())
	assert.Equal(t, 0.0, e.Value())
	e.Update(3)
	assert.True(t, e.Ready())

	e.Reset()
	assert.False(t, e.Ready())
}
