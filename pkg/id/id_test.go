package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValidAndSortable(t *testing.T) {
	prev := New()
	assert.Len(t, prev, 26)
	assert.True(t, Valid(prev))

	for i := 0; i < 100; i++ {
		next := New()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewAtSameMillisecondIncreases(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	a := NewAt(ts)
	b := NewAt(ts)
	assert.Greater(t, b, a)
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC)
	got, err := Time(NewAt(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))
}

func TestInvalid(t *testing.T) {
	assert.False(t, Valid("not-an-id"))
	_, err := Time("")
	assert.Error(t, err)
}
