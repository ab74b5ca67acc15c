package oracle

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/advisor/internal/logger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Evaluate(ctx context.Context, q Query) (Recommendation, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(Recommendation), args.Error(1)
}

func fastConfig(retries int) AdapterConfig {
	return AdapterConfig{
		Timeout:        time.Second,
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func testQuery() Query {
	return Query{Symbol: "TEST", AsOf: mustDate("2024-01-10")}
}

func mustDate(s string) time.Time {
	t, err := market.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolveDecidedFirstTry(t *testing.T) {
	m := &mockOracle{}
	q := testQuery()
	m.On("Evaluate", mock.Anything, mock.Anything).
		Return(Recommendation{AsOf: q.AsOf, Action: Buy, Confidence: 7}, nil).Once()

	d := NewAdapter(m, fastConfig(2), logger.NewNop()).Resolve(context.Background(), q)
	assert.Equal(t, Decided, d.State)
	assert.Equal(t, Buy, d.Recommendation.Action)
	assert.Equal(t, 1, d.Attempts)
	assert.NoError(t, d.Err)
	m.AssertExpectations(t)
}

func TestResolveRetriesThenDecides(t *testing.T) {
	m := &mockOracle{}
	q := testQuery()
	m.On("Evaluate", mock.Anything, mock.Anything).Return(Recommendation{}, fmt.Errorf("503")).Twice()
	m.On("Evaluate", mock.Anything, mock.Anything).
		Return(Recommendation{AsOf: q.AsOf, Action: Sell, Confidence: 9}, nil).Once()

	d := NewAdapter(m, fastConfig(2), logger.NewNop()).Resolve(context.Background(), q)
	assert.Equal(t, Decided, d.State)
	assert.Equal(t, Sell, d.Recommendation.Action)
	assert.Equal(t, 3, d.Attempts)
	m.AssertNumberOfCalls(t, "Evaluate", 3)
}

func TestResolveDegradesAfterRetries(t *testing.T) {
	m := &mockOracle{}
	m.On("Evaluate", mock.Anything, mock.Anything).Return(Recommendation{}, fmt.Errorf("boom"))

	q := testQuery()
	d := NewAdapter(m, fastConfig(2), logger.NewNop()).Resolve(context.Background(), q)
	assert.Equal(t, Degraded, d.State)
	assert.True(t, d.State.Terminal())
	assert.Equal(t, 3, d.Attempts)
	assert.Equal(t, Hold, d.Recommendation.Action)
	assert.Equal(t, q.AsOf, d.Recommendation.AsOf)
	require.Error(t, d.Err)
	assert.True(t, errors.HasCode(d.Err, errors.ErrCodeDecisionUnavailable))
	m.AssertNumberOfCalls(t, "Evaluate", 3)
}

func TestResolveInvalidRecommendationIsRetried(t *testing.T) {
	q := testQuery()
	tests := []struct {
		name string
		rec  Recommendation
	}{
		{"confidence too high", Recommendation{AsOf: q.AsOf, Action: Buy, Confidence: 11}},
		{"confidence zero", Recommendation{AsOf: q.AsOf, Action: Buy, Confidence: 0}},
		{"bad action", Recommendation{AsOf: q.AsOf, Action: Action(7), Confidence: 5}},
		{"future date", Recommendation{AsOf: q.AsOf.AddDate(0, 0, 1), Action: Buy, Confidence: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockOracle{}
			m.On("Evaluate", mock.Anything, mock.Anything).Return(tt.rec, nil)

			d := NewAdapter(m, fastConfig(1), logger.NewNop()).Resolve(context.Background(), q)
			assert.Equal(t, Degraded, d.State)
			assert.Equal(t, Hold, d.Recommendation.Action)
			assert.True(t, errors.HasCodeInChain(d.Err, errors.ErrCodeInvalidDecision))
			m.AssertNumberOfCalls(t, "Evaluate", 2)
		})
	}
}

func TestResolveFillsMissingDate(t *testing.T) {
	m := &mockOracle{}
	m.On("Evaluate", mock.Anything, mock.Anything).Return(Recommendation{Action: Buy, Confidence: 6}, nil)

	q := testQuery()
	d := NewAdapter(m, fastConfig(0), logger.NewNop()).Resolve(context.Background(), q)
	require.Equal(t, Decided, d.State)
	assert.Equal(t, q.AsOf, d.Recommendation.AsOf)
}

func TestResolveTimeoutDegrades(t *testing.T) {
	blocking := Func(func(ctx context.Context, q Query) (Recommendation, error) {
		<-ctx.Done()
		return Recommendation{}, ctx.Err()
	})
	cfg := fastConfig(1)
	cfg.Timeout = 10 * time.Millisecond

	d := NewAdapter(blocking, cfg, logger.NewNop()).Resolve(context.Background(), testQuery())
	assert.Equal(t, Degraded, d.State)
	assert.Equal(t, 2, d.Attempts)
}

func TestResolveAbandonsBackendIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stuck := Func(func(ctx context.Context, q Query) (Recommendation, error) {
		<-release
		return Recommendation{}, nil
	})
	cfg := fastConfig(0)
	cfg.Timeout = 10 * time.Millisecond

	start := time.Now()
	d := NewAdapter(stuck, cfg, logger.NewNop()).Resolve(context.Background(), testQuery())
	assert.Equal(t, Degraded, d.State)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSynchronizedRecoversAfterStuckCall(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	backend := Func(func(ctx context.Context, q Query) (Recommendation, error) {
		if calls.Add(1) == 1 {
			<-release
		}
		return Recommendation{Action: Buy, Confidence: 7}, nil
	})
	cfg := fastConfig(0)
	cfg.Timeout = 50 * time.Millisecond
	a := NewAdapter(NewSynchronized(backend), cfg, logger.NewNop())
	ctx := context.Background()

	first := a.Resolve(ctx, Query{Symbol: "TEST", AsOf: mustDate("2024-01-10")})
	assert.Equal(t, Degraded, first.State)

	// the first call still holds the backend; this one gives up on its own timeout
	second := a.Resolve(ctx, Query{Symbol: "TEST", AsOf: mustDate("2024-01-11")})
	assert.Equal(t, Degraded, second.State)

	close(release)
	third := a.Resolve(ctx, Query{Symbol: "TEST", AsOf: mustDate("2024-01-12")})
	assert.Equal(t, Decided, third.State)
	assert.Equal(t, Buy, third.Recommendation.Action)
	// the waiter that timed out never reached the backend
	assert.Equal(t, int32(2), calls.Load())
}

func TestSynchronizedSkipsBackendWhenContextDone(t *testing.T) {
	s := NewStub(Buy, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSynchronized(s).Evaluate(ctx, testQuery())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Calls())
}

func TestResolveUsesLimiter(t *testing.T) {
	s := NewStub(Buy, 6)
	cfg := fastConfig(0)
	cfg.Limiter = rate.NewLimiter(rate.Inf, 1)

	d := NewAdapter(s, cfg, logger.NewNop()).Resolve(context.Background(), testQuery())
	assert.Equal(t, Decided, d.State)
	assert.Equal(t, 1, s.Calls())
}

func TestNewAdapterDefaults(t *testing.T) {
	a := NewAdapter(NewStub(Hold, 1), AdapterConfig{MaxRetries: -1}, nil)
	def := DefaultAdapterConfig()
	assert.Equal(t, def.Timeout, a.cfg.Timeout)
	assert.Equal(t, 0, a.cfg.MaxRetries)
	assert.Equal(t, def.InitialBackoff, a.cfg.InitialBackoff)
	assert.GreaterOrEqual(t, a.cfg.MaxBackoff, a.cfg.InitialBackoff)
}

func TestDayStateString(t *testing.T) {
	assert.Equal(t, "PENDING", Pending.String())
	assert.Equal(t, "QUERYING", Querying.String())
	assert.Equal(t, "DECIDED", Decided.String())
	assert.Equal(t, "DEGRADED", Degraded.String())
	assert.False(t, Querying.Terminal())
}
