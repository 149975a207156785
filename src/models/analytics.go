package models

// MonthlySummary holds the per-month slice of the trade statistics. It has
// the same shape as the top-level counters in TradeAnalytics so the monthly
// computation can reuse the overall one on a filtered subset.
type MonthlySummary struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	SuccessRate   float64 `json:"success_rate"`
	TotalPnl      float64 `json:"total_pnl"`
}

// TradeAnalytics is the full set of statistics derived from a trade list.
// Every ratio degrades to 0 (never NaN or Inf) when its denominator is zero,
// because consumers format these values directly for display.
type TradeAnalytics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	SuccessRate   float64 `json:"success_rate"`
	TotalPnl      float64 `json:"total_pnl"`
	AveragePnl    float64 `json:"average_pnl"`

	ProfitFactor    float64 `json:"profit_factor"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`

	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	// BestDayOfWeek is "N/A" when no trades qualify.
	BestDayOfWeek     string  `json:"best_day_of_week"`
	BestDayAveragePnl float64 `json:"best_day_average_pnl"`

	// BestTicker has the highest total realized P&L; MostTraded the highest
	// trade count. Both are "N/A" for an empty trade list.
	BestTicker string `json:"best_ticker"`
	MostTraded string `json:"most_traded"`

	// MonthlyPerformance is keyed "YYYY-MM". Storage order is unspecified;
	// callers sort the keys for display.
	MonthlyPerformance map[string]MonthlySummary `json:"monthly_performance"`
}
