package handlers

import (
	"database/sql"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradelens/backend/src/analytics"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/models"
	"github.com/username/tradelens/backend/src/services"
)

// staticPrefsStore serves fixed preferences without a database.
type staticPrefsStore struct {
	prefs models.DisplayPreferences
}

func (s staticPrefsStore) Load(userID int64) (models.DisplayPreferences, error) { return s.prefs, nil }
func (s staticPrefsStore) Save(userID int64, p models.DisplayPreferences) error { return nil }

func createTradesTable(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		CREATE TABLE trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			ticker TEXT NOT NULL,
			realized_pnl REAL,
			percent_diff REAL,
			notes TEXT
		)`)
	if err != nil {
		t.Fatalf("creating trades table: %v", err)
	}
}

func newCalendarTestHandler() *TradeHandler {
	svc := services.NewAnalyticsService(
		analytics.NewStatsProcessor(),
		analytics.NewCalendarProcessor(),
		cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval),
	)
	return NewTradeHandler(svc, staticPrefsStore{models.DefaultPreferences()})
}

func TestHandleExportCalendarCSV(t *testing.T) {
	db := openTestDB(t)
	createTradesTable(t, db)
	database.DB = db

	inserts := []struct {
		date string
		pnl  float64
	}{
		{"2024-03-04", 150}, // Monday
		{"2024-03-04", -30},
		{"2024-03-09", 40}, // Saturday, outside the weekday grid
	}
	for _, tr := range inserts {
		if _, err := db.Exec(`
			INSERT INTO trades (user_id, date, ticker, realized_pnl, notes)
			VALUES (1, ?, 'AAPL', ?, '')`, tr.date, tr.pnl); err != nil {
			t.Fatalf("inserting trade: %v", err)
		}
	}

	h := newCalendarTestHandler()
	rr := httptest.NewRecorder()
	h.HandleExportCalendarCSV(rr, authedRequest("GET", "/api/trades/calendar/export?year=2024&month=3&mode=dollar", 1))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "calendar.csv") {
		t.Errorf("Content-Disposition = %q, want calendar.csv attachment", cd)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parsing CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d CSV records, want header + 2 day rows", len(records))
	}
	if records[0][0] != "date" || records[0][5] != "rendered" {
		t.Errorf("header wrong: %v", records[0])
	}

	// Rows are date sorted; the weekend day is present in the flat export.
	monday, saturday := records[1], records[2]
	if monday[0] != "2024-03-04" || saturday[0] != "2024-03-09" {
		t.Fatalf("dates wrong: %v / %v", monday[0], saturday[0])
	}
	if monday[1] != "120.00" || monday[4] != "2" {
		t.Errorf("monday row = %v, want pnl 120.00 count 2", monday)
	}
	if saturday[1] != "40.00" || saturday[4] != "1" {
		t.Errorf("saturday row = %v, want pnl 40.00 count 1", saturday)
	}

	// Dollar renderings start with + or -, so they are formula-escaped.
	if monday[5] != "'+$120.00" {
		t.Errorf("monday rendered = %q, want formula-escaped '+$120.00", monday[5])
	}
}

func TestHandleExportCalendarCSVBadMonth(t *testing.T) {
	db := openTestDB(t)
	createTradesTable(t, db)
	database.DB = db

	h := newCalendarTestHandler()
	rr := httptest.NewRecorder()
	h.HandleExportCalendarCSV(rr, authedRequest("GET", "/api/trades/calendar/export?year=2024&month=13", 1))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
