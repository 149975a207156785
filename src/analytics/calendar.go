package analytics

import (
	"fmt"
	"time"

	"github.com/username/tradelens/backend/src/models"
)

const dateLayout = "2006-01-02"

// calendarProcessorImpl implements the CalendarProcessor interface.
type calendarProcessorImpl struct{}

// NewCalendarProcessor creates a new instance of CalendarProcessor.
func NewCalendarProcessor() CalendarProcessor {
	return &calendarProcessorImpl{}
}

// Build produces the month grid for the given cursor. The grid emits only
// Monday-to-Friday dates, starting at the Monday on or before the 1st and
// ending on a complete week boundary, so len(Cells) is always a multiple of
// five. Weekend trades never appear in the grid; they stay visible in the
// flat Days map for non-calendar consumers.
func (p *calendarProcessorImpl) Build(trades []models.Trade, month time.Month, year int, mode models.DisplayMode, rUnit float64) models.CalendarGrid {
	if !mode.Valid() {
		mode = models.ModeDollar
	}

	days := groupByDate(trades, rUnit)

	grid := models.CalendarGrid{
		Month: int(month),
		Year:  year,
		Mode:  mode,
		RUnit: rUnit,
		Days:  days,
	}

	// time.Date normalizes out-of-range months, so arbitrary navigation
	// cannot crash the walk.
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	// Walk back to the most recent Monday on or before the 1st.
	cursor := first
	for cursor.Weekday() != time.Monday {
		cursor = cursor.AddDate(0, 0, -1)
	}

	for {
		wd := cursor.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			key := cursor.Format(dateLayout)
			cell, ok := days[key]
			if !ok {
				cell = models.CalendarCell{Date: key}
			}
			cell.InMonth = cursor.Month() == first.Month() && cursor.Year() == first.Year()
			cell.Rendered = FormatCellValue(mode, cell.Pnl, cell.PercentageReturn, rUnit)
			grid.Cells = append(grid.Cells, cell)
		}
		cursor = cursor.AddDate(0, 0, 1)
		// The grid always ends on a complete week: past month end, at Saturday.
		if cursor.After(last) && cursor.Weekday() == time.Saturday {
			break
		}
	}

	for i := 0; i+5 <= len(grid.Cells); i += 5 {
		grid.Weeks = append(grid.Weeks, weeklyAggregate(grid.Cells[i:i+5], mode, rUnit))
	}

	return grid
}

// groupByDate buckets trades by exact date-string match and computes the
// per-day cell figures. Grouping never parses the date, so there is no
// timezone ambiguity; only weekday derivation in the grid walk parses.
func groupByDate(trades []models.Trade, rUnit float64) map[string]models.CalendarCell {
	days := map[string]models.CalendarCell{}
	for _, t := range trades {
		cell := days[t.Date]
		cell.Date = t.Date
		cell.Pnl += t.Pnl()
		cell.Invested += t.PositionSizeEstimate()
		cell.TradeCount++
		days[t.Date] = cell
	}
	for key, cell := range days {
		if cell.Invested > 0 {
			cell.PercentageReturn = cell.Pnl / cell.Invested * 100
		}
		if rUnit > 0 {
			cell.RReturn = cell.Pnl / rUnit
		}
		days[key] = cell
	}
	return days
}

// weeklyAggregate sums one 5-cell working week and derives its percentage
// and R figures from the summed totals rather than averaging the cells.
func weeklyAggregate(cells []models.CalendarCell, mode models.DisplayMode, rUnit float64) models.WeeklyAggregate {
	agg := models.WeeklyAggregate{WeekStart: cells[0].Date}
	var invested float64
	for _, c := range cells {
		agg.Pnl += c.Pnl
		agg.TradeCount += c.TradeCount
		invested += c.Invested
	}
	if invested > 0 {
		agg.PercentageReturn = agg.Pnl / invested * 100
	}
	if rUnit > 0 {
		agg.RReturn = agg.Pnl / rUnit
	}
	agg.Rendered = FormatCellValue(mode, agg.Pnl, agg.PercentageReturn, rUnit)
	return agg
}

// FormatCellValue renders a cell value for the selected display mode. An
// invalid rUnit (<= 0) renders the literal "0.0R" rather than dividing.
func FormatCellValue(mode models.DisplayMode, pnl, percentageReturn, rUnit float64) string {
	switch mode {
	case models.ModePercent:
		if percentageReturn == 0 {
			return "0.00%"
		}
		return fmt.Sprintf("%+.2f%%", percentageReturn)
	case models.ModeRMultiple:
		if rUnit <= 0 || pnl == 0 {
			return "0.0R"
		}
		return fmt.Sprintf("%+.1fR", pnl/rUnit)
	default:
		if pnl == 0 {
			return "$0.00"
		}
		if pnl < 0 {
			return fmt.Sprintf("-$%.2f", -pnl)
		}
		return fmt.Sprintf("+$%.2f", pnl)
	}
}
