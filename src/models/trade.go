package models

// Trade represents a single journaled trade. The date is a plain calendar
// date string (YYYY-MM-DD) with no time or timezone component; it is grouped
// by exact string match and only parsed for weekday derivation.
type Trade struct {
	ID          int64    `json:"id,omitempty"`
	UserID      int64    `json:"-"`
	Date        string   `json:"date"`
	Ticker      string   `json:"ticker"`
	RealizedPnl *float64 `json:"realizedPnl,omitempty"`
	PercentDiff *float64 `json:"percentDiff,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Pnl returns the realized P&L, treating an absent value as 0.
func (t Trade) Pnl() float64 {
	if t.RealizedPnl == nil {
		return 0
	}
	return *t.RealizedPnl
}

// Percent returns the percentage return, treating an absent value as 0.
func (t Trade) Percent() float64 {
	if t.PercentDiff == nil {
		return 0
	}
	return *t.PercentDiff
}

// PositionSizeEstimate derives an approximate position size from P&L and
// percentage return. When the percentage is zero the |pnl|*10 fallback is a
// crude heuristic kept for output compatibility with existing consumers.
func (t Trade) PositionSizeEstimate() float64 {
	pnl := t.Pnl()
	pct := t.Percent()
	if pct != 0 {
		return abs(pnl / (pct / 100))
	}
	return abs(pnl) * 10
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
