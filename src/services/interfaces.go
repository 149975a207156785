// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/username/tradelens/backend/src/models"
)

// Define common service errors
var (
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrImageParseFailed = errors.New("statement image parsing failed")
)

const (
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// QuoteResult is the outcome of a batch quote lookup: prices for the tickers
// that resolved and the list of those that did not.
type QuoteResult struct {
	Prices        map[string]float64 `json:"prices"`
	FailedTickers []string           `json:"failed_tickers"`
	Timestamp     string             `json:"timestamp"`
}

// PriceService fetches current market prices, caching one quote per ticker
// per calendar day.
type PriceService interface {
	GetQuotes(tickers []string) (QuoteResult, error)
	GetQuote(ticker string) (float64, error)
}

// AnalyticsService wraps the pure aggregators with per-user caching and
// database access. Mutating handlers must call InvalidateUserCache.
type AnalyticsService interface {
	ListTrades(userID int64, sortOrder string) ([]models.Trade, error)
	GetTradeAnalytics(userID int64) (models.TradeAnalytics, error)
	GetCalendar(userID int64, month time.Month, year int, mode models.DisplayMode, rUnit float64) (models.CalendarGrid, error)
	InvalidateUserCache(userID int64)
}

// PortfolioService computes the derived portfolio view over a user's assets.
type PortfolioService interface {
	GetValuation(userID int64, refreshPrices bool) (models.PortfolioValuation, error)
}

// VisionService extracts assets from a portfolio statement image.
type VisionService interface {
	ParseStatement(ctx context.Context, imageBase64, mimeType string) ([]models.Asset, error)
}
