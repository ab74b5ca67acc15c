package sim

// Position is the single long holding. The zero value is flat.
type Position struct {
	Quantity float64 `json:"quantity"`
	// AverageCost is the quantity-weighted fill price, excluding commission.
	AverageCost float64 `json:"average_cost"`
	// EntryCommission is the commission paid to open what is still held.
	EntryCommission float64 `json:"entry_commission"`
}

func (p Position) Flat() bool { return p.Quantity <= 0 }

func (p Position) MarketValue(price float64) float64 {
	return p.Quantity * price
}

func (p Position) UnrealizedPL(price float64) float64 {
	return p.Quantity * (price - p.AverageCost)
}

// add folds a purchase into the weighted-average cost.
func (p Position) add(qty, price, commission float64) Position {
	total := p.Quantity + qty
	return Position{
		Quantity:        total,
		AverageCost:     (p.Quantity*p.AverageCost + qty*price) / total,
		EntryCommission: p.EntryCommission + commission,
	}
}

// reduce removes qty and returns the entry commission attributed to it.
func (p Position) reduce(qty float64) (Position, float64) {
	if qty >= p.Quantity {
		return Position{}, p.EntryCommission
	}
	attributed := p.EntryCommission * qty / p.Quantity
	return Position{
		Quantity:        p.Quantity - qty,
		AverageCost:     p.AverageCost,
		EntryCommission: p.EntryCommission - attributed,
	}, attributed
}
