package services

import (
	"database/sql"
	"math"
	"testing"

	"github.com/username/tradelens/backend/src/database"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func createAssetsSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		CREATE TABLE assets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			is_stock BOOLEAN NOT NULL,
			ticker TEXT NOT NULL DEFAULT '',
			shares REAL NOT NULL DEFAULT 0,
			current_price REAL NOT NULL DEFAULT 0,
			balance REAL NOT NULL DEFAULT 0,
			apy REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		t.Fatalf("creating assets table: %v", err)
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestGetValuationMixedPortfolio(t *testing.T) {
	db := openTestDB(t)
	createAssetsSchema(t, db)
	database.DB = db

	inserts := []struct {
		name    string
		isStock bool
		ticker  string
		shares  float64
		price   float64
		balance float64
		apy     float64
	}{
		{"Apple Inc", true, "AAPL", 10, 150.25, 0, 0},
		{"High Yield Savings", false, "", 0, 0, 5000, 0.04},
		{"Checking", false, "", 0, 0, 1000, 0.01},
	}
	for _, a := range inserts {
		if _, err := db.Exec(`
			INSERT INTO assets (user_id, name, is_stock, ticker, shares, current_price, balance, apy)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
			a.name, a.isStock, a.ticker, a.shares, a.price, a.balance, a.apy); err != nil {
			t.Fatalf("inserting asset: %v", err)
		}
	}

	svc := NewPortfolioService(nil)
	v, err := svc.GetValuation(1, false)
	if err != nil {
		t.Fatalf("GetValuation: %v", err)
	}

	if !approx(v.StockValue, 1502.50) {
		t.Errorf("StockValue = %v, want 1502.50", v.StockValue)
	}
	if !approx(v.CashValue, 6000) {
		t.Errorf("CashValue = %v, want 6000", v.CashValue)
	}
	if !approx(v.TotalValue, 7502.50) {
		t.Errorf("TotalValue = %v, want 7502.50", v.TotalValue)
	}
	// 5000*0.04 + 1000*0.01 = 210 projected annual interest
	if !approx(v.AnnualInterest, 210) {
		t.Errorf("AnnualInterest = %v, want 210", v.AnnualInterest)
	}
	if !approx(v.WeightedAPY, 210.0/6000.0) {
		t.Errorf("WeightedAPY = %v, want 0.035", v.WeightedAPY)
	}

	if len(v.Assets) != 3 {
		t.Fatalf("got %d asset valuations, want 3", len(v.Assets))
	}

	var allocationSum float64
	for _, av := range v.Assets {
		allocationSum += av.AllocationPercent
	}
	if math.Abs(allocationSum-100) > 1e-6 {
		t.Errorf("allocation percentages sum to %v, want 100", allocationSum)
	}

	for _, av := range v.Assets {
		if av.IsStock && !approx(av.Value, 1502.50) {
			t.Errorf("stock value = %v, want 1502.50", av.Value)
		}
	}
}

// stubPriceService resolves quotes from a fixed map.
type stubPriceService struct {
	prices map[string]float64
}

func (s *stubPriceService) GetQuotes(tickers []string) (QuoteResult, error) {
	result := QuoteResult{
		Prices:    make(map[string]float64),
		Timestamp: "2024-03-04T12:00:00Z",
	}
	for _, tk := range tickers {
		if p, ok := s.prices[tk]; ok {
			result.Prices[tk] = p
		} else {
			result.FailedTickers = append(result.FailedTickers, tk)
		}
	}
	return result, nil
}

func (s *stubPriceService) GetQuote(ticker string) (float64, error) {
	if p, ok := s.prices[ticker]; ok {
		return p, nil
	}
	return 0, ErrQuoteUnavailable
}

func TestGetValuationRefreshPersistsPrices(t *testing.T) {
	db := openTestDB(t)
	createAssetsSchema(t, db)
	database.DB = db

	if _, err := db.Exec(`
		INSERT INTO assets (user_id, name, is_stock, ticker, shares, current_price, balance, apy)
		VALUES (1, 'Apple Inc', 1, 'AAPL', 10, 100, 0, 0)`); err != nil {
		t.Fatalf("inserting asset: %v", err)
	}

	svc := NewPortfolioService(&stubPriceService{prices: map[string]float64{"AAPL": 150.25}})
	v, err := svc.GetValuation(1, true)
	if err != nil {
		t.Fatalf("GetValuation: %v", err)
	}

	if !approx(v.StockValue, 1502.50) {
		t.Errorf("StockValue = %v, want 1502.50 from the refreshed quote", v.StockValue)
	}
	if v.PricesAsOf == "" {
		t.Error("PricesAsOf should carry the quote timestamp")
	}

	// The refreshed price is written back, not just applied in memory.
	var stored float64
	if err := db.QueryRow(`SELECT current_price FROM assets WHERE user_id = 1 AND ticker = 'AAPL'`).Scan(&stored); err != nil {
		t.Fatalf("reading stored price: %v", err)
	}
	if !approx(stored, 150.25) {
		t.Errorf("stored current_price = %v, want 150.25", stored)
	}
}

func TestGetValuationRefreshFailedTicker(t *testing.T) {
	db := openTestDB(t)
	createAssetsSchema(t, db)
	database.DB = db

	if _, err := db.Exec(`
		INSERT INTO assets (user_id, name, is_stock, ticker, shares, current_price, balance, apy)
		VALUES (1, 'Mystery Corp', 1, 'XXXX', 5, 20, 0, 0)`); err != nil {
		t.Fatalf("inserting asset: %v", err)
	}

	svc := NewPortfolioService(&stubPriceService{prices: map[string]float64{}})
	v, err := svc.GetValuation(1, true)
	if err != nil {
		t.Fatalf("GetValuation: %v", err)
	}

	// Falls back to the stored price and reports the ticker as failed.
	if !approx(v.StockValue, 100) {
		t.Errorf("StockValue = %v, want 100 from the stored price", v.StockValue)
	}
	if len(v.FailedTickers) != 1 || v.FailedTickers[0] != "XXXX" {
		t.Errorf("FailedTickers = %v, want [XXXX]", v.FailedTickers)
	}

	var stored float64
	if err := db.QueryRow(`SELECT current_price FROM assets WHERE user_id = 1`).Scan(&stored); err != nil {
		t.Fatalf("reading stored price: %v", err)
	}
	if !approx(stored, 20) {
		t.Errorf("stored current_price = %v, want 20 untouched", stored)
	}
}

func TestGetValuationEmptyPortfolio(t *testing.T) {
	db := openTestDB(t)
	createAssetsSchema(t, db)
	database.DB = db

	svc := NewPortfolioService(nil)
	v, err := svc.GetValuation(42, false)
	if err != nil {
		t.Fatalf("GetValuation: %v", err)
	}

	if v.TotalValue != 0 || v.StockValue != 0 || v.CashValue != 0 || v.WeightedAPY != 0 {
		t.Errorf("empty portfolio should value to zero: %+v", v)
	}
	if v.Assets == nil || len(v.Assets) != 0 {
		t.Errorf("Assets should be an empty slice, got %v", v.Assets)
	}
}
