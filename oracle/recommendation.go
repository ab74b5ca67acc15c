package oracle

import (
	"fmt"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

// Action is what a recommendation asks the portfolio to do.
type Action uint8

const (
	Hold Action = iota
	Buy
	Sell
)

const (
	MinConfidence = 1
	MaxConfidence = 10
)

var actionNames = map[Action]string{
	Hold: "HOLD",
	Buy:  "BUY",
	Sell: "SELL",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// Valid reports whether a is one of Buy, Sell or Hold.
func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

// ParseAction is the strict parser used for files we control.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "HOLD":
		return Hold, nil
	default:
		return Hold, fmt.Errorf("unknown action %q", s)
	}
}

// NormalizeAction is the lenient parser used on free-form model output:
// anything that is not clearly BUY or SELL becomes HOLD.
func NormalizeAction(s string) Action {
	a, err := ParseAction(s)
	if err != nil {
		return Hold
	}
	return a
}

func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Recommendation is one day's judgement from the decision oracle.
type Recommendation struct {
	AsOf        time.Time                `json:"asof_date"`
	Action      Action                   `json:"action"`
	Confidence  int                      `json:"confidence"`
	TargetPrice optional.Option[float64] `json:"target_price,omitempty"`
	Rationale   string                   `json:"rationale,omitempty"`
}

// HoldFor is the neutral recommendation used when nothing else is known.
func HoldFor(asOf time.Time, rationale string) Recommendation {
	return Recommendation{
		AsOf:        market.TruncateDay(asOf),
		Action:      Hold,
		Confidence:  MinConfidence,
		TargetPrice: optional.None[float64](),
		Rationale:   rationale,
	}
}

// Validate checks the recommendation against the date it was requested for.
func (r Recommendation) Validate(asOf time.Time) error {
	if !r.Action.Valid() {
		return errors.Newf(errors.ErrCodeInvalidDecision, "invalid action %d", uint8(r.Action))
	}
	if r.Confidence < MinConfidence || r.Confidence > MaxConfidence {
		return errors.Newf(errors.ErrCodeInvalidDecision,
			"confidence %d outside %d-%d", r.Confidence, MinConfidence, MaxConfidence)
	}
	if r.AsOf.After(market.TruncateDay(asOf)) {
		return errors.Newf(errors.ErrCodeInvalidDecision,
			"recommendation dated %s answers a query for %s",
			market.FormatDate(r.AsOf), market.FormatDate(asOf))
	}
	if r.TargetPrice.IsSome() && r.TargetPrice.Unwrap() < 0 {
		return errors.Newf(errors.ErrCodeInvalidDecision, "negative target price %.4f", r.TargetPrice.Unwrap())
	}
	return nil
}

func (r Recommendation) String() string {
	s := fmt.Sprintf("%s %s (confidence %d/10)", market.FormatDate(r.AsOf), r.Action, r.Confidence)
	if r.TargetPrice.IsSome() {
		s += fmt.Sprintf(" target %.2f", r.TargetPrice.Unwrap())
	}
	return s
}
