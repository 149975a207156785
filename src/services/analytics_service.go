// backend/src/services/analytics_service.go
package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradelens/backend/src/analytics"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/models"
)

type analyticsServiceImpl struct {
	statsProcessor    analytics.StatsProcessor
	calendarProcessor analytics.CalendarProcessor
	reportCache       *cache.Cache
}

func NewAnalyticsService(
	statsProcessor analytics.StatsProcessor,
	calendarProcessor analytics.CalendarProcessor,
	reportCache *cache.Cache,
) AnalyticsService {
	return &analyticsServiceImpl{
		statsProcessor:    statsProcessor,
		calendarProcessor: calendarProcessor,
		reportCache:       reportCache,
	}
}

func analyticsCacheKey(userID int64) string {
	return fmt.Sprintf("trade_analytics_%d", userID)
}

func tradesCacheKey(userID int64) string {
	return fmt.Sprintf("trades_%d", userID)
}

// loadTrades fetches the user's full trade list from the database, cached
// until the next mutation. The aggregators always recompute over the full
// list; only the database read is cached.
func (s *analyticsServiceImpl) loadTrades(userID int64) ([]models.Trade, error) {
	if cached, found := s.reportCache.Get(tradesCacheKey(userID)); found {
		if trades, ok := cached.([]models.Trade); ok {
			return trades, nil
		}
	}

	rows, err := database.DB.Query(`
		SELECT id, user_id, date, ticker, realized_pnl, percent_diff, notes
		FROM trades
		WHERE user_id = ?
		ORDER BY date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying trades for user %d: %w", userID, err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Ticker, &t.RealizedPnl, &t.PercentDiff, &t.Notes); err != nil {
			return nil, fmt.Errorf("scanning trade for user %d: %w", userID, err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	s.reportCache.Set(tradesCacheKey(userID), trades, DefaultCacheExpiration)
	return trades, nil
}

func (s *analyticsServiceImpl) ListTrades(userID int64, sortOrder string) ([]models.Trade, error) {
	trades, err := s.loadTrades(userID)
	if err != nil {
		return nil, err
	}
	if sortOrder == "date_desc" {
		reversed := make([]models.Trade, len(trades))
		for i, t := range trades {
			reversed[len(trades)-1-i] = t
		}
		return reversed, nil
	}
	return trades, nil
}

func (s *analyticsServiceImpl) GetTradeAnalytics(userID int64) (models.TradeAnalytics, error) {
	if cached, found := s.reportCache.Get(analyticsCacheKey(userID)); found {
		if result, ok := cached.(models.TradeAnalytics); ok {
			logger.L.Debug("Trade analytics served from cache", "userID", userID)
			return result, nil
		}
	}

	trades, err := s.loadTrades(userID)
	if err != nil {
		return models.TradeAnalytics{}, err
	}

	result := s.statsProcessor.Calculate(trades)
	s.reportCache.Set(analyticsCacheKey(userID), result, DefaultCacheExpiration)
	return result, nil
}

// GetCalendar rebuilds the grid on every call; month navigation fully
// discards the previous grid, only the trade list read is cached.
func (s *analyticsServiceImpl) GetCalendar(userID int64, month time.Month, year int, mode models.DisplayMode, rUnit float64) (models.CalendarGrid, error) {
	trades, err := s.loadTrades(userID)
	if err != nil {
		return models.CalendarGrid{}, err
	}
	return s.calendarProcessor.Build(trades, month, year, mode, rUnit), nil
}

func (s *analyticsServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(tradesCacheKey(userID))
	s.reportCache.Delete(analyticsCacheKey(userID))
	logger.L.Debug("Analytics cache invalidated", "userID", userID)
}
