package oracle

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/moznion/go-optional"

	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

// Recorded replays recommendations captured from an external reasoning
// system. Days with no recording resolve to HOLD.
//
// File format, header optional:
//
//	date,action,confidence,target_price,rationale
//	2024-01-02,BUY,8,195.5,breakout above resistance
type Recorded struct {
	byDate map[string]Recommendation
}

// LoadRecorded reads a recording from path.
func LoadRecorded(path string) (*Recorded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfiguration, err, "open recommendations %s", path)
	}
	defer f.Close()
	return ReadRecorded(f)
}

// ReadRecorded parses a recording. Actions are parsed strictly.
func ReadRecorded(r io.Reader) (*Recorded, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rec := &Recorded{byDate: map[string]Recommendation{}}
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfiguration, err, "recommendations line %d", line)
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		if len(row) < 3 {
			return nil, errors.Newf(errors.ErrCodeConfiguration,
				"recommendations line %d: want at least date,action,confidence", line)
		}

		asOf, err := market.ParseDate(row[0])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfiguration, err, "recommendations line %d", line)
		}
		action, err := ParseAction(row[1])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfiguration, err, "recommendations line %d", line)
		}
		conf, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfiguration, err, "recommendations line %d: confidence", line)
		}

		r := Recommendation{AsOf: asOf, Action: action, Confidence: conf}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			px, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeConfiguration, err, "recommendations line %d: target_price", line)
			}
			r.TargetPrice = optional.Some(px)
		}
		if len(row) > 4 {
			r.Rationale = strings.TrimSpace(row[4])
		}

		key := market.FormatDate(asOf)
		if _, dup := rec.byDate[key]; !dup {
			rec.byDate[key] = r
		}
	}
	return rec, nil
}

// Len returns the number of recorded days.
func (r *Recorded) Len() int { return len(r.byDate) }

func (r *Recorded) Evaluate(ctx context.Context, q Query) (Recommendation, error) {
	if rec, ok := r.byDate[market.FormatDate(q.AsOf)]; ok {
		return rec, nil
	}
	return HoldFor(q.AsOf, "no recorded recommendation"), nil
}
