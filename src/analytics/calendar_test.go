package analytics

import (
	"testing"
	"time"

	"github.com/username/tradelens/backend/src/models"
)

func TestBuildGridAlwaysCompleteWeeks(t *testing.T) {
	months := []struct {
		month time.Month
		year  int
	}{
		{time.January, 2024},   // starts on a Monday
		{time.March, 2024},     // starts on a Friday
		{time.September, 2024}, // starts on a Sunday
		{time.February, 2025},
		{time.December, 1999},
	}
	p := NewCalendarProcessor()
	for _, m := range months {
		grid := p.Build(nil, m.month, m.year, models.ModeDollar, 0)
		if len(grid.Cells) == 0 || len(grid.Cells)%5 != 0 {
			t.Fatalf("%v %d: %d cells, want non-zero multiple of 5", m.month, m.year, len(grid.Cells))
		}
		if len(grid.Weeks) != len(grid.Cells)/5 {
			t.Fatalf("%v %d: %d weeks for %d cells", m.month, m.year, len(grid.Weeks), len(grid.Cells))
		}
		// Weekday-only grid.
		for _, c := range grid.Cells {
			d, err := time.Parse("2006-01-02", c.Date)
			if err != nil {
				t.Fatalf("bad cell date %q: %v", c.Date, err)
			}
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				t.Fatalf("weekend date %s emitted in grid", c.Date)
			}
		}
		// Each chunk starts on a Monday.
		for _, w := range grid.Weeks {
			d, _ := time.Parse("2006-01-02", w.WeekStart)
			if d.Weekday() != time.Monday {
				t.Fatalf("week start %s is %v, want Monday", w.WeekStart, d.Weekday())
			}
		}
	}
}

func TestBuildEmptyMonthRendersEmptyCells(t *testing.T) {
	grid := NewCalendarProcessor().Build(nil, time.June, 2024, models.ModeDollar, 1)
	for _, c := range grid.Cells {
		if c.TradeCount != 0 || c.Pnl != 0 {
			t.Fatalf("cell %s not empty: %+v", c.Date, c)
		}
		if c.Rendered != "$0.00" {
			t.Fatalf("cell %s rendered %q, want $0.00", c.Date, c.Rendered)
		}
	}
}

func TestBuildRModeZeroGuard(t *testing.T) {
	trades := []models.Trade{
		trade("2024-03-01", "AAPL", 150),
		trade("2024-03-04", "MSFT", -75),
	}
	grid := NewCalendarProcessor().Build(trades, time.March, 2024, models.ModeRMultiple, 0)
	for _, c := range grid.Cells {
		if c.Rendered != "0.0R" {
			t.Fatalf("cell %s rendered %q with rUnit=0, want 0.0R", c.Date, c.Rendered)
		}
		if c.RReturn != 0 {
			t.Fatalf("cell %s rReturn=%v with rUnit=0, want 0", c.Date, c.RReturn)
		}
	}
	for _, w := range grid.Weeks {
		if w.Rendered != "0.0R" {
			t.Fatalf("week %s rendered %q with rUnit=0, want 0.0R", w.WeekStart, w.Rendered)
		}
	}
}

func TestBuildRModeValues(t *testing.T) {
	trades := []models.Trade{trade("2024-03-04", "AAPL", 150)}
	grid := NewCalendarProcessor().Build(trades, time.March, 2024, models.ModeRMultiple, 50)
	cell, ok := grid.Days["2024-03-04"]
	if !ok {
		t.Fatal("missing day cell for 2024-03-04")
	}
	if cell.RReturn != 3 {
		t.Fatalf("rReturn=%v, want 3", cell.RReturn)
	}
	if got := FormatCellValue(models.ModeRMultiple, cell.Pnl, cell.PercentageReturn, 50); got != "+3.0R" {
		t.Fatalf("rendered %q, want +3.0R", got)
	}
}

func TestBuildScenarioDayCell(t *testing.T) {
	trades := []models.Trade{
		{Date: "2024-03-01", Ticker: "AAPL", RealizedPnl: f(150), PercentDiff: f(5)},
		{Date: "2024-03-01", Ticker: "MSFT", RealizedPnl: f(-50), PercentDiff: f(-2)},
	}
	grid := NewCalendarProcessor().Build(trades, time.March, 2024, models.ModeDollar, 0)

	cell, ok := grid.Days["2024-03-01"]
	if !ok {
		t.Fatal("missing day cell for 2024-03-01")
	}
	if cell.Pnl != 100 || cell.TradeCount != 2 {
		t.Fatalf("cell = %+v, want pnl=100 tradeCount=2", cell)
	}
	// invested estimate: |150/(5/100)| + |-50/(-2/100)| = 3000 + 2500
	wantPct := 100.0 / 5500 * 100
	if diff := cell.PercentageReturn - wantPct; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("percentageReturn=%v, want %v", cell.PercentageReturn, wantPct)
	}
}

func TestBuildWeeklyAggregateSumsItsCells(t *testing.T) {
	// 2024-03-04 to 2024-03-08 is a full Monday-Friday week.
	trades := []models.Trade{
		trade("2024-03-04", "AAPL", 100),
		trade("2024-03-06", "MSFT", -40),
		trade("2024-03-08", "TSLA", 25),
	}
	grid := NewCalendarProcessor().Build(trades, time.March, 2024, models.ModeDollar, 10)

	var week *models.WeeklyAggregate
	for i := range grid.Weeks {
		if grid.Weeks[i].WeekStart == "2024-03-04" {
			week = &grid.Weeks[i]
			break
		}
	}
	if week == nil {
		t.Fatal("no weekly aggregate starting 2024-03-04")
	}
	if week.Pnl != 85 || week.TradeCount != 3 {
		t.Fatalf("week = %+v, want pnl=85 tradeCount=3", week)
	}
	if week.RReturn != 8.5 {
		t.Fatalf("week rReturn=%v, want 8.5", week.RReturn)
	}
	if week.Rendered != "+$85.00" {
		t.Fatalf("week rendered %q, want +$85.00", week.Rendered)
	}
}

func TestBuildWeekendTradesStayOutOfGrid(t *testing.T) {
	// 2024-03-02 is a Saturday.
	trades := []models.Trade{trade("2024-03-02", "BTC", 500)}
	grid := NewCalendarProcessor().Build(trades, time.March, 2024, models.ModeDollar, 0)

	for _, c := range grid.Cells {
		if c.Date == "2024-03-02" {
			t.Fatal("Saturday trade emitted in weekday grid")
		}
	}
	if cell, ok := grid.Days["2024-03-02"]; !ok || cell.Pnl != 500 {
		t.Fatalf("Days map cell = %+v, ok=%v; weekend trade must stay in the flat map", cell, ok)
	}
}

func TestBuildInvalidModeFallsBackToDollar(t *testing.T) {
	grid := NewCalendarProcessor().Build(nil, time.April, 2024, models.DisplayMode("sparkles"), 0)
	if grid.Mode != models.ModeDollar {
		t.Fatalf("mode=%q, want dollar fallback", grid.Mode)
	}
}

func TestFormatCellValue(t *testing.T) {
	tests := []struct {
		name string
		mode models.DisplayMode
		pnl  float64
		pct  float64
		r    float64
		want string
	}{
		{"dollar gain", models.ModeDollar, 150, 0, 0, "+$150.00"},
		{"dollar loss", models.ModeDollar, -50, 0, 0, "-$50.00"},
		{"dollar flat", models.ModeDollar, 0, 0, 0, "$0.00"},
		{"percent gain", models.ModePercent, 0, 5, 0, "+5.00%"},
		{"percent loss", models.ModePercent, 0, -1.5, 0, "-1.50%"},
		{"percent flat", models.ModePercent, 0, 0, 0, "0.00%"},
		{"r multiple", models.ModeRMultiple, 30, 0, 10, "+3.0R"},
		{"r negative", models.ModeRMultiple, -25, 0, 10, "-2.5R"},
		{"r zero unit", models.ModeRMultiple, 30, 0, 0, "0.0R"},
		{"r negative unit", models.ModeRMultiple, 30, 0, -1, "0.0R"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCellValue(tc.mode, tc.pnl, tc.pct, tc.r); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
