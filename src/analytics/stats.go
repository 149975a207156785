package analytics

import (
	"sort"
	"time"

	"github.com/username/tradelens/backend/src/models"
)

// notAvailable is the placeholder for categorical outputs when no trades qualify.
const notAvailable = "N/A"

// statsProcessorImpl implements the StatsProcessor interface.
type statsProcessorImpl struct{}

// NewStatsProcessor creates a new instance of StatsProcessor.
func NewStatsProcessor() StatsProcessor {
	return &statsProcessorImpl{}
}

// summarize computes the counters shared by the overall summary and each
// monthly bucket. A trade with zero P&L counts toward neither wins nor losses.
func summarize(trades []models.Trade) models.MonthlySummary {
	var s models.MonthlySummary
	for _, t := range trades {
		pnl := t.Pnl()
		s.TotalTrades++
		s.TotalPnl += pnl
		if pnl > 0 {
			s.WinningTrades++
		} else if pnl < 0 {
			s.LosingTrades++
		}
	}
	if s.TotalTrades > 0 {
		s.SuccessRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	}
	return s
}

// Calculate reduces the full trade list into derived statistics. It is a pure
// function: no I/O, no mutation of the input, identical output for identical
// input. Every ratio has an explicit zero-denominator branch returning 0.
func (p *statsProcessorImpl) Calculate(trades []models.Trade) models.TradeAnalytics {
	overall := summarize(trades)

	result := models.TradeAnalytics{
		TotalTrades:        overall.TotalTrades,
		WinningTrades:      overall.WinningTrades,
		LosingTrades:       overall.LosingTrades,
		SuccessRate:        overall.SuccessRate,
		TotalPnl:           overall.TotalPnl,
		BestDayOfWeek:      notAvailable,
		BestTicker:         notAvailable,
		MostTraded:         notAvailable,
		MonthlyPerformance: map[string]models.MonthlySummary{},
	}

	if overall.TotalTrades > 0 {
		result.AveragePnl = overall.TotalPnl / float64(overall.TotalTrades)
	}

	var grossProfit, grossLoss float64
	for _, t := range trades {
		pnl := t.Pnl()
		if pnl > 0 {
			grossProfit += pnl
		} else if pnl < 0 {
			grossLoss += -pnl
		}
	}
	if grossLoss > 0 {
		result.ProfitFactor = grossProfit / grossLoss
	}
	if result.LosingTrades > 0 && result.WinningTrades > 0 {
		avgWin := grossProfit / float64(result.WinningTrades)
		avgLoss := grossLoss / float64(result.LosingTrades)
		if avgLoss > 0 {
			result.RiskRewardRatio = avgWin / avgLoss
		}
	}

	// Monthly buckets are the overall computation applied per partition.
	byMonth := map[string][]models.Trade{}
	for _, t := range trades {
		if len(t.Date) < 7 {
			continue
		}
		key := t.Date[:7] // YYYY-MM
		byMonth[key] = append(byMonth[key], t)
	}
	for key, subset := range byMonth {
		result.MonthlyPerformance[key] = summarize(subset)
	}

	result.MaxConsecutiveWins, result.MaxConsecutiveLosses = streaks(trades)
	result.BestDayOfWeek, result.BestDayAveragePnl = bestDayOfWeek(trades)
	result.BestTicker, result.MostTraded = tickerLeaders(trades)

	return result
}

// streaks walks the trades in date-ascending order and tracks the longest
// run of strictly-positive and strictly-negative P&L trades. A zero-P&L
// trade resets both running counters without updating either maximum.
func streaks(trades []models.Trade) (maxWins, maxLosses int) {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	var curWins, curLosses int
	for _, t := range sorted {
		pnl := t.Pnl()
		switch {
		case pnl > 0:
			curWins++
			curLosses = 0
			if curWins > maxWins {
				maxWins = curWins
			}
		case pnl < 0:
			curLosses++
			curWins = 0
			if curLosses > maxLosses {
				maxLosses = curLosses
			}
		default:
			curWins = 0
			curLosses = 0
		}
	}
	return maxWins, maxLosses
}

// bestDayOfWeek picks the weekday with the highest average P&L. Ties keep
// the earlier weekday in Monday-to-Sunday scan order, which makes the
// selection deterministic.
func bestDayOfWeek(trades []models.Trade) (string, float64) {
	totals := map[time.Weekday]float64{}
	counts := map[time.Weekday]int{}
	for _, t := range trades {
		d, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			continue
		}
		totals[d.Weekday()] += t.Pnl()
		counts[d.Weekday()]++
	}

	scanOrder := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	best := notAvailable
	var bestAvg float64
	found := false
	for _, wd := range scanOrder {
		n := counts[wd]
		if n == 0 {
			continue
		}
		avg := totals[wd] / float64(n)
		if !found || avg > bestAvg {
			best = wd.String()
			bestAvg = avg
			found = true
		}
	}
	if !found {
		return notAvailable, 0
	}
	return best, bestAvg
}

// tickerLeaders returns the ticker with the highest total realized P&L and
// the most-traded ticker. Keys are scanned in sorted order so ties resolve
// deterministically.
func tickerLeaders(trades []models.Trade) (bestTicker, mostTraded string) {
	totals := map[string]float64{}
	counts := map[string]int{}
	for _, t := range trades {
		totals[t.Ticker] += t.Pnl()
		counts[t.Ticker]++
	}
	if len(totals) == 0 {
		return notAvailable, notAvailable
	}

	tickers := make([]string, 0, len(totals))
	for ticker := range totals {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	bestTicker = tickers[0]
	mostTraded = tickers[0]
	for _, ticker := range tickers[1:] {
		if totals[ticker] > totals[bestTicker] {
			bestTicker = ticker
		}
		if counts[ticker] > counts[mostTraded] {
			mostTraded = ticker
		}
	}
	return bestTicker, mostTraded
}
