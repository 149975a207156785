package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/models"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

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

func createAssetsTable(t *testing.T, db *sql.DB) {
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
			apy REAL NOT NULL DEFAULT 0
		)`)
	if err != nil {
		t.Fatalf("creating assets table: %v", err)
	}
}

func authedRequest(method, target string, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(context.WithValue(req.Context(), userIDContextKey, userID))
}

func TestHandleListAssets(t *testing.T) {
	db := openTestDB(t)
	createAssetsTable(t, db)
	database.DB = db

	inserts := []struct {
		userID  int64
		name    string
		isStock bool
		ticker  string
	}{
		{1, "Savings", false, ""},
		{1, "Apple Inc", true, "AAPL"},
		{1, "Nvidia", true, "NVDA"},
		{2, "Other User Stock", true, "MSFT"},
	}
	for _, a := range inserts {
		if _, err := db.Exec(`
			INSERT INTO assets (user_id, name, is_stock, ticker, shares, current_price, balance, apy)
			VALUES (?, ?, ?, ?, 1, 1, 100, 0)`, a.userID, a.name, a.isStock, a.ticker); err != nil {
			t.Fatalf("inserting asset: %v", err)
		}
	}

	h := NewAssetHandler(nil)
	rr := httptest.NewRecorder()
	h.HandleListAssets(rr, authedRequest("GET", "/api/assets", 1))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var assets []models.Asset
	if err := json.NewDecoder(rr.Body).Decode(&assets); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("got %d assets, want 3", len(assets))
	}
	// Stocks sort before cash, alphabetical within each group.
	if assets[0].Name != "Apple Inc" || assets[1].Name != "Nvidia" || assets[2].Name != "Savings" {
		t.Errorf("order wrong: %v %v %v", assets[0].Name, assets[1].Name, assets[2].Name)
	}
	for _, a := range assets {
		if a.UserID != 1 {
			t.Errorf("asset %q belongs to user %d, want 1", a.Name, a.UserID)
		}
	}
}

func TestHandleListAssetsEmpty(t *testing.T) {
	db := openTestDB(t)
	createAssetsTable(t, db)
	database.DB = db

	h := NewAssetHandler(nil)
	rr := httptest.NewRecorder()
	h.HandleListAssets(rr, authedRequest("GET", "/api/assets", 7))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var assets []models.Asset
	if err := json.NewDecoder(rr.Body).Decode(&assets); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if assets == nil || len(assets) != 0 {
		t.Errorf("want empty JSON array, got %v", assets)
	}
}

func TestHandleListAssetsRequiresAuth(t *testing.T) {
	h := NewAssetHandler(nil)
	rr := httptest.NewRecorder()
	h.HandleListAssets(rr, httptest.NewRequest("GET", "/api/assets", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}
