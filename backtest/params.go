package backtest

import (
	"strings"
	"time"

	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
	"github.com/rustyeddy/advisor/risk"
)

// Params fully describe one run. They are fixed for the run's lifetime.
type Params struct {
	Symbol         string      `json:"symbol"`
	Start          time.Time   `json:"start_date"`
	End            time.Time   `json:"end_date"`
	InitialCapital float64     `json:"initial_capital"`
	Policy         risk.Policy `json:"policy"`
	Oracle         string      `json:"oracle,omitempty"`
}

func (p Params) Validate() error {
	if strings.TrimSpace(p.Symbol) == "" {
		return errors.New(errors.ErrCodeConfiguration, "symbol is required")
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return errors.New(errors.ErrCodeConfiguration, "start and end dates are required")
	}
	if !market.TruncateDay(p.End).After(market.TruncateDay(p.Start)) {
		return errors.Newf(errors.ErrCodeConfiguration, "start date %s must be before end date %s",
			market.FormatDate(p.Start), market.FormatDate(p.End))
	}
	if p.InitialCapital <= 0 {
		return errors.Newf(errors.ErrCodeConfiguration, "initial capital must be positive, got %.2f", p.InitialCapital)
	}
	if err := p.Policy.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err.Error(), err)
	}
	return nil
}
