package analytics

import (
	"reflect"
	"testing"

	"github.com/username/tradelens/backend/src/models"
)

func f(v float64) *float64 { return &v }

func trade(date, ticker string, pnl float64) models.Trade {
	return models.Trade{Date: date, Ticker: ticker, RealizedPnl: f(pnl)}
}

func TestCalculateEmptyInput(t *testing.T) {
	got := NewStatsProcessor().Calculate(nil)

	if got.TotalTrades != 0 || got.WinningTrades != 0 || got.LosingTrades != 0 {
		t.Fatalf("counts = %d/%d/%d, want 0/0/0", got.TotalTrades, got.WinningTrades, got.LosingTrades)
	}
	if got.SuccessRate != 0 || got.TotalPnl != 0 || got.AveragePnl != 0 {
		t.Fatalf("rates = %v/%v/%v, want all 0", got.SuccessRate, got.TotalPnl, got.AveragePnl)
	}
	if got.ProfitFactor != 0 || got.RiskRewardRatio != 0 {
		t.Fatalf("profitFactor=%v riskReward=%v, want 0", got.ProfitFactor, got.RiskRewardRatio)
	}
	if got.BestDayOfWeek != "N/A" || got.BestTicker != "N/A" || got.MostTraded != "N/A" {
		t.Fatalf("categorical outputs = %q/%q/%q, want N/A", got.BestDayOfWeek, got.BestTicker, got.MostTraded)
	}
}

func TestCalculateWinLossClassification(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-02", "AAPL", 100),
		trade("2024-01-03", "AAPL", -50),
		trade("2024-01-04", "AAPL", 0),
		trade("2024-01-05", "AAPL", 200),
	}
	got := NewStatsProcessor().Calculate(trades)

	if got.WinningTrades != 2 || got.LosingTrades != 1 {
		t.Fatalf("wins=%d losses=%d, want 2/1", got.WinningTrades, got.LosingTrades)
	}
	if got.SuccessRate != 50.0 {
		t.Fatalf("successRate=%v, want 50.0", got.SuccessRate)
	}
}

func TestCalculateProfitFactor(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-02", "AAPL", 100),
		trade("2024-01-03", "MSFT", 200),
		trade("2024-01-04", "AAPL", -50),
	}
	got := NewStatsProcessor().Calculate(trades)

	if got.ProfitFactor != 6.0 {
		t.Fatalf("profitFactor=%v, want 6.0", got.ProfitFactor)
	}
}

func TestCalculateStreaks(t *testing.T) {
	pnls := []float64{10, 20, -5, -5, -5, 15}
	var trades []models.Trade
	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-08"}
	for i, p := range pnls {
		trades = append(trades, trade(dates[i], "SPY", p))
	}
	// Input order must not matter: the walk sorts by date first.
	trades[0], trades[5] = trades[5], trades[0]

	got := NewStatsProcessor().Calculate(trades)
	if got.MaxConsecutiveWins != 2 || got.MaxConsecutiveLosses != 3 {
		t.Fatalf("streaks=%d/%d, want 2/3", got.MaxConsecutiveWins, got.MaxConsecutiveLosses)
	}
}

func TestStreaksZeroPnlResetsBoth(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-01", "SPY", 10),
		trade("2024-01-02", "SPY", 20),
		trade("2024-01-03", "SPY", 0),
		trade("2024-01-04", "SPY", 30),
	}
	wins, losses := streaks(trades)
	if wins != 2 || losses != 0 {
		t.Fatalf("streaks=%d/%d, want 2/0", wins, losses)
	}
}

func TestCalculateMonthlyGrouping(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-15", "AAPL", 100),
		trade("2024-02-01", "MSFT", -20),
	}
	got := NewStatsProcessor().Calculate(trades)

	if len(got.MonthlyPerformance) != 2 {
		t.Fatalf("monthly buckets=%d, want 2", len(got.MonthlyPerformance))
	}
	jan, ok := got.MonthlyPerformance["2024-01"]
	if !ok || jan.TotalTrades != 1 || jan.TotalPnl != 100 {
		t.Fatalf("2024-01 bucket = %+v, ok=%v", jan, ok)
	}
	feb, ok := got.MonthlyPerformance["2024-02"]
	if !ok || feb.TotalTrades != 1 || feb.LosingTrades != 1 {
		t.Fatalf("2024-02 bucket = %+v, ok=%v", feb, ok)
	}
}

func TestCalculateBestDayOfWeek(t *testing.T) {
	// 2024-03-04 is a Monday, 2024-03-05 a Tuesday.
	trades := []models.Trade{
		trade("2024-03-04", "AAPL", 10),
		trade("2024-03-11", "AAPL", 30), // Monday avg 20
		trade("2024-03-05", "MSFT", 50), // Tuesday avg 50
	}
	got := NewStatsProcessor().Calculate(trades)
	if got.BestDayOfWeek != "Tuesday" {
		t.Fatalf("bestDayOfWeek=%q, want Tuesday", got.BestDayOfWeek)
	}
	if got.BestDayAveragePnl != 50 {
		t.Fatalf("bestDayAveragePnl=%v, want 50", got.BestDayAveragePnl)
	}
}

func TestCalculateTickerLeaders(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-02", "AAPL", 100),
		trade("2024-01-03", "MSFT", 40),
		trade("2024-01-04", "MSFT", 40),
		trade("2024-01-05", "MSFT", -10),
	}
	got := NewStatsProcessor().Calculate(trades)
	if got.BestTicker != "AAPL" {
		t.Fatalf("bestTicker=%q, want AAPL", got.BestTicker)
	}
	if got.MostTraded != "MSFT" {
		t.Fatalf("mostTraded=%q, want MSFT", got.MostTraded)
	}
}

func TestCalculateRiskRewardRatio(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-02", "AAPL", 100),
		trade("2024-01-03", "AAPL", 300),
		trade("2024-01-04", "AAPL", -100),
	}
	got := NewStatsProcessor().Calculate(trades)
	// avg win 200, avg loss 100
	if got.RiskRewardRatio != 2.0 {
		t.Fatalf("riskRewardRatio=%v, want 2.0", got.RiskRewardRatio)
	}
}

func TestCalculateMissingFieldsDefaultToZero(t *testing.T) {
	trades := []models.Trade{
		{Date: "2024-01-02", Ticker: "AAPL"}, // no pnl, no percent
		trade("2024-01-03", "AAPL", 50),
	}
	got := NewStatsProcessor().Calculate(trades)
	if got.TotalTrades != 2 || got.WinningTrades != 1 || got.LosingTrades != 0 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/0", got.TotalTrades, got.WinningTrades, got.LosingTrades)
	}
	if got.TotalPnl != 50 {
		t.Fatalf("totalPnl=%v, want 50", got.TotalPnl)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	trades := []models.Trade{
		trade("2024-03-01", "AAPL", 150),
		trade("2024-03-01", "MSFT", -50),
		trade("2024-03-04", "TSLA", 0),
	}
	first := NewStatsProcessor().Calculate(trades)
	second := NewStatsProcessor().Calculate(trades)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calculation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCalculateScenario(t *testing.T) {
	trades := []models.Trade{
		{Date: "2024-03-01", Ticker: "AAPL", RealizedPnl: f(150), PercentDiff: f(5)},
		{Date: "2024-03-01", Ticker: "MSFT", RealizedPnl: f(-50), PercentDiff: f(-2)},
	}
	got := NewStatsProcessor().Calculate(trades)

	if got.TotalTrades != 2 || got.WinningTrades != 1 || got.LosingTrades != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/1", got.TotalTrades, got.WinningTrades, got.LosingTrades)
	}
	if got.TotalPnl != 100 {
		t.Fatalf("totalPnl=%v, want 100", got.TotalPnl)
	}
	march, ok := got.MonthlyPerformance["2024-03"]
	if !ok || march.TotalTrades != 2 || march.TotalPnl != 100 {
		t.Fatalf("2024-03 bucket = %+v, ok=%v", march, ok)
	}
}

func TestPositionSizeEstimate(t *testing.T) {
	tests := []struct {
		name string
		pnl  float64
		pct  *float64
		want float64
	}{
		{"from percent", 150, f(5), 3000},
		{"negative percent", -50, f(-2), 2500},
		{"zero percent fallback", 80, f(0), 800},
		{"missing percent fallback", -30, nil, 300},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := models.Trade{Date: "2024-01-02", Ticker: "X", RealizedPnl: f(tc.pnl), PercentDiff: tc.pct}
			if got := tr.PositionSizeEstimate(); got != tc.want {
				t.Fatalf("estimate=%v, want %v", got, tc.want)
			}
		})
	}
}
