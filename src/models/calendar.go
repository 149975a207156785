package models

// DisplayMode selects how a calendar cell value is rendered.
type DisplayMode string

const (
	ModeDollar    DisplayMode = "dollar"
	ModePercent   DisplayMode = "percent"
	ModeRMultiple DisplayMode = "rMultiple"
)

// Valid reports whether the mode is one of the three supported values.
func (m DisplayMode) Valid() bool {
	switch m {
	case ModeDollar, ModePercent, ModeRMultiple:
		return true
	}
	return false
}

// CalendarCell holds the aggregates for a single calendar date.
type CalendarCell struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	Pnl              float64 `json:"pnl"`
	PercentageReturn float64 `json:"percentage_return"`
	RReturn          float64 `json:"r_return"`
	TradeCount       int     `json:"trade_count"`
	Invested         float64 `json:"-"` // position-size estimate sum, kept for weekly rollups
	Rendered         string  `json:"rendered"`
	InMonth          bool    `json:"in_month"`
}

// WeeklyAggregate sums one working week (5 weekday cells) of the grid,
// keyed by the Monday that starts it.
type WeeklyAggregate struct {
	WeekStart        string  `json:"week_start"` // Monday, YYYY-MM-DD
	Pnl              float64 `json:"pnl"`
	PercentageReturn float64 `json:"percentage_return"`
	RReturn          float64 `json:"r_return"`
	TradeCount       int     `json:"trade_count"`
	Rendered         string  `json:"rendered"`
}

// CalendarGrid is the month view: weekday-only cells in chunks of five plus
// one aggregate per chunk. Days is the flat date-keyed map for consumers
// that do not need the grid shape (e.g. CSV export).
type CalendarGrid struct {
	Month int                     `json:"month"` // 1-12
	Year  int                     `json:"year"`
	Mode  DisplayMode             `json:"mode"`
	RUnit float64                 `json:"r_unit"`
	Cells []CalendarCell          `json:"cells"` // length is always a multiple of 5
	Weeks []WeeklyAggregate       `json:"weeks"`
	Days  map[string]CalendarCell `json:"days"`
}
