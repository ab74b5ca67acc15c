package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/advisor/internal/logger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

// DayState is where a single day's query is in its lifecycle.
//
//	Pending -> Querying -> Decided
//	                    -> Degraded
type DayState uint8

const (
	Pending DayState = iota
	Querying
	Decided
	Degraded
)

func (s DayState) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Querying:
		return "QUERYING"
	case Decided:
		return "DECIDED"
	case Degraded:
		return "DEGRADED"
	default:
		return fmt.Sprintf("DayState(%d)", uint8(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s DayState) Terminal() bool {
	return s == Decided || s == Degraded
}

// Decision is the resolved outcome for one day. A Degraded decision always
// carries a HOLD recommendation and the last failure in Err.
type Decision struct {
	State          DayState
	Recommendation Recommendation
	Attempts       int
	Err            error
}

// AdapterConfig controls how hard the adapter tries before degrading a day.
type AdapterConfig struct {
	// Timeout bounds each individual call, never the whole run.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Limiter, when set, is waited on before every call. Share one limiter
	// between adapters that talk to the same service.
	Limiter *rate.Limiter
}

// DefaultAdapterConfig matches the latency profile of model-driven backends.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Timeout:        300 * time.Second,
		MaxRetries:     2,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// Adapter resolves days against a backend. It keeps no per-run state and is
// safe for concurrent use as long as the backend is.
type Adapter struct {
	inner Oracle
	cfg   AdapterConfig
	log   *logger.Logger
}

func NewAdapter(inner Oracle, cfg AdapterConfig, log *logger.Logger) *Adapter {
	def := DefaultAdapterConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	return &Adapter{inner: inner, cfg: cfg, log: log.Named("oracle")}
}

// Resolve drives one day from Pending to Decided or Degraded. It never returns
// an error: failures are folded into a Degraded decision so the run continues.
func (a *Adapter) Resolve(ctx context.Context, q Query) Decision {
	q.AsOf = market.TruncateDay(q.AsOf)
	d := Decision{State: Pending}

	d.State = Querying

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.cfg.InitialBackoff
	policy.MaxInterval = a.cfg.MaxBackoff
	policy.MaxElapsedTime = 0
	policy.RandomizationFactor = 0
	policy.Reset()

	var rec Recommendation
	op := func() error {
		d.Attempts++
		if a.cfg.Limiter != nil {
			if err := a.cfg.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		r, err := a.call(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if r.AsOf.IsZero() {
			r.AsOf = q.AsOf
		}
		r.AsOf = market.TruncateDay(r.AsOf)
		if err := r.Validate(q.AsOf); err != nil {
			return err
		}
		rec = r
		return nil
	}

	notify := func(err error, wait time.Duration) {
		a.log.Warn("oracle call failed, retrying",
			zap.String("symbol", q.Symbol),
			zap.String("date", market.FormatDate(q.AsOf)),
			zap.Int("attempt", d.Attempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(a.cfg.MaxRetries)), ctx),
		notify)
	if err != nil {
		d.State = Degraded
		d.Err = errors.Wrapf(errors.ErrCodeDecisionUnavailable, err,
			"no decision for %s on %s after %d attempt(s)", q.Symbol, market.FormatDate(q.AsOf), d.Attempts)
		d.Recommendation = HoldFor(q.AsOf, "degraded: decision unavailable")
		a.log.Error("day degraded to HOLD",
			zap.String("symbol", q.Symbol),
			zap.String("date", market.FormatDate(q.AsOf)),
			zap.Int("attempts", d.Attempts),
			zap.Error(err),
		)
		return d
	}

	d.State = Decided
	d.Recommendation = rec
	return d
}

// call runs one backend evaluation under the per-call timeout. Backends that
// ignore their context are abandoned when the timeout fires.
func (a *Adapter) call(ctx context.Context, q Query) (Recommendation, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	type result struct {
		rec Recommendation
		err error
	}
	ch := make(chan result, 1)
	go func() {
		r, err := a.inner.Evaluate(callCtx, q)
		ch <- result{r, err}
	}()

	select {
	case res := <-ch:
		return res.rec, res.err
	case <-callCtx.Done():
		return Recommendation{}, fmt.Errorf("oracle call timed out after %s: %w", a.cfg.Timeout, callCtx.Err())
	}
}
