package services

import (
	"database/sql"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradelens/backend/src/analytics"
	"github.com/username/tradelens/backend/src/database"
	_ "modernc.org/sqlite"
)

func createTradesSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		CREATE TABLE trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			ticker TEXT NOT NULL,
			realized_pnl REAL,
			percent_diff REAL,
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		t.Fatalf("creating trades table: %v", err)
	}
}

func insertTrade(t *testing.T, db *sql.DB, userID int64, date, ticker string, pnl float64) {
	t.Helper()
	if _, err := db.Exec(`
		INSERT INTO trades (user_id, date, ticker, realized_pnl, notes)
		VALUES (?, ?, ?, ?, '')`, userID, date, ticker, pnl); err != nil {
		t.Fatalf("inserting trade: %v", err)
	}
}

func newTestAnalyticsService() AnalyticsService {
	return NewAnalyticsService(
		analytics.NewStatsProcessor(),
		analytics.NewCalendarProcessor(),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	)
}

func TestListTradesSortOrder(t *testing.T) {
	db := openTestDB(t)
	createTradesSchema(t, db)
	database.DB = db

	insertTrade(t, db, 1, "2024-03-05", "AAPL", 100)
	insertTrade(t, db, 1, "2024-03-01", "MSFT", -50)
	insertTrade(t, db, 1, "2024-03-08", "NVDA", 25)
	insertTrade(t, db, 2, "2024-03-02", "TSLA", 10) // other user

	svc := newTestAnalyticsService()

	asc, err := svc.ListTrades(1, "date_asc")
	if err != nil {
		t.Fatalf("ListTrades asc: %v", err)
	}
	if len(asc) != 3 {
		t.Fatalf("got %d trades, want 3", len(asc))
	}
	if asc[0].Ticker != "MSFT" || asc[2].Ticker != "NVDA" {
		t.Errorf("ascending order wrong: %v %v %v", asc[0].Ticker, asc[1].Ticker, asc[2].Ticker)
	}

	desc, err := svc.ListTrades(1, "date_desc")
	if err != nil {
		t.Fatalf("ListTrades desc: %v", err)
	}
	if desc[0].Ticker != "NVDA" || desc[2].Ticker != "MSFT" {
		t.Errorf("descending order wrong: %v %v %v", desc[0].Ticker, desc[1].Ticker, desc[2].Ticker)
	}
}

func TestAnalyticsCacheInvalidation(t *testing.T) {
	db := openTestDB(t)
	createTradesSchema(t, db)
	database.DB = db

	insertTrade(t, db, 1, "2024-03-01", "AAPL", 100)

	svc := newTestAnalyticsService()

	first, err := svc.GetTradeAnalytics(1)
	if err != nil {
		t.Fatalf("GetTradeAnalytics: %v", err)
	}
	if first.TotalTrades != 1 {
		t.Fatalf("TotalTrades = %d, want 1", first.TotalTrades)
	}

	// A direct insert does not show up until the cache is invalidated.
	insertTrade(t, db, 1, "2024-03-02", "MSFT", -20)

	stale, err := svc.GetTradeAnalytics(1)
	if err != nil {
		t.Fatalf("GetTradeAnalytics (cached): %v", err)
	}
	if stale.TotalTrades != 1 {
		t.Errorf("cached TotalTrades = %d, want 1", stale.TotalTrades)
	}

	svc.InvalidateUserCache(1)

	fresh, err := svc.GetTradeAnalytics(1)
	if err != nil {
		t.Fatalf("GetTradeAnalytics (fresh): %v", err)
	}
	if fresh.TotalTrades != 2 {
		t.Errorf("fresh TotalTrades = %d, want 2", fresh.TotalTrades)
	}
}

func TestGetCalendarUsesStoredTrades(t *testing.T) {
	db := openTestDB(t)
	createTradesSchema(t, db)
	database.DB = db

	insertTrade(t, db, 1, "2024-03-04", "AAPL", 150) // Monday

	svc := newTestAnalyticsService()

	grid, err := svc.GetCalendar(1, 3, 2024, "dollar", 0)
	if err != nil {
		t.Fatalf("GetCalendar: %v", err)
	}

	cell, ok := grid.Days["2024-03-04"]
	if !ok {
		t.Fatal("expected a cell for 2024-03-04")
	}
	if cell.Pnl != 150 || cell.TradeCount != 1 {
		t.Errorf("cell = %+v, want pnl 150 count 1", cell)
	}
}
