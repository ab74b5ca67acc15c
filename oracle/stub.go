package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/advisor/market"
)

// Stub is a deterministic oracle for tests and dry runs. Recommendations are
// looked up by date first, then by the zero-based call index, then Default.
// Every query is recorded so callers can assert what the oracle was shown.
type Stub struct {
	ByDate  map[string]Recommendation
	ByIndex map[int]Recommendation
	Default Recommendation
	// Fail, when set, is consulted before answering; a non-nil error is returned as is.
	Fail func(q Query, call int) error

	mu      sync.Mutex
	calls   int
	queries []Query
}

// NewStub returns a stub that answers fallback for every day.
func NewStub(fallback Action, confidence int) *Stub {
	return &Stub{
		ByDate:  map[string]Recommendation{},
		ByIndex: map[int]Recommendation{},
		Default: Recommendation{Action: fallback, Confidence: confidence},
	}
}

// On scripts a recommendation for a specific date.
func (s *Stub) On(date time.Time, a Action, confidence int) *Stub {
	s.ByDate[market.FormatDate(date)] = Recommendation{Action: a, Confidence: confidence}
	return s
}

// At scripts a recommendation for the n-th call.
func (s *Stub) At(n int, a Action, confidence int) *Stub {
	s.ByIndex[n] = Recommendation{Action: a, Confidence: confidence}
	return s
}

func (s *Stub) Evaluate(ctx context.Context, q Query) (Recommendation, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if s.Fail != nil {
		if err := s.Fail(q, call); err != nil {
			return Recommendation{}, err
		}
	}

	rec, ok := s.ByDate[market.FormatDate(q.AsOf)]
	if !ok {
		rec, ok = s.ByIndex[call]
	}
	if !ok {
		rec = s.Default
	}
	rec.AsOf = q.AsOf
	if rec.Confidence == 0 {
		rec.Confidence = MinConfidence
	}
	return rec, nil
}

// Queries returns a copy of everything the stub has been asked.
func (s *Stub) Queries() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Query, len(s.queries))
	copy(out, s.queries)
	return out
}

// Calls returns how many times Evaluate ran.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
