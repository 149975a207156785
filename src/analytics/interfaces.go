// backend/src/analytics/interfaces.go
package analytics

import (
	"time"

	"github.com/username/tradelens/backend/src/models"
)

// StatsProcessor reduces a trade list into summary statistics. The input
// list carries no ordering guarantee and is never mutated.
type StatsProcessor interface {
	Calculate(trades []models.Trade) models.TradeAnalytics
}

// CalendarProcessor builds the month-grid view over the same trade list.
type CalendarProcessor interface {
	Build(trades []models.Trade, month time.Month, year int, mode models.DisplayMode, rUnit float64) models.CalendarGrid
}
