// Package oracle bridges the backtester to whatever produces trading recommendations.
//
// Backends implement Oracle. The engine never calls a backend directly: it goes
// through an Adapter, which applies per-call timeouts, bounded retries with
// exponential backoff and validation, and always resolves a day to either a
// decided recommendation or a degraded forced HOLD.
package oracle

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rustyeddy/advisor/market"
)

// Query is everything a backend may look at when deciding for one day.
// History holds only bars dated on or before AsOf and is the caller's copy.
type Query struct {
	Symbol  string
	AsOf    time.Time
	History market.Bars
}

// Oracle produces one recommendation for a symbol as of a date.
type Oracle interface {
	Evaluate(ctx context.Context, q Query) (Recommendation, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, q Query) (Recommendation, error)

func (f Func) Evaluate(ctx context.Context, q Query) (Recommendation, error) {
	return f(ctx, q)
}

// Synchronized serializes calls into a backend that is not safe for concurrent
// use, so one client can be shared by concurrent runs. Waiting for the backend
// honours the caller's context.
type Synchronized struct {
	sem   *semaphore.Weighted
	inner Oracle
}

func NewSynchronized(inner Oracle) *Synchronized {
	return &Synchronized{sem: semaphore.NewWeighted(1), inner: inner}
}

func (s *Synchronized) Evaluate(ctx context.Context, q Query) (Recommendation, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Recommendation{}, err
	}
	defer s.sem.Release(1)
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	return s.inner.Evaluate(ctx, q)
}
