// backend/src/handlers/trade_handler.go
package handlers

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/tradelens/backend/src/analytics"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/model"
	"github.com/username/tradelens/backend/src/models"
	"github.com/username/tradelens/backend/src/security/validation"
	"github.com/username/tradelens/backend/src/services"
	"github.com/username/tradelens/backend/src/utils"
)

type TradeHandler struct {
	analyticsService services.AnalyticsService
	prefsStore       models.PreferencesStore
}

func NewTradeHandler(analyticsService services.AnalyticsService, prefsStore models.PreferencesStore) *TradeHandler {
	return &TradeHandler{
		analyticsService: analyticsService,
		prefsStore:       prefsStore,
	}
}

// validateTradePayload sanitizes and validates the mutable trade fields in
// place. Returns the first validation failure.
func validateTradePayload(t *models.Trade) error {
	t.Ticker = strings.ToUpper(validation.SanitizeText(strings.TrimSpace(t.Ticker)))
	t.Notes = validation.SanitizeText(validation.StripUnprintable(strings.TrimSpace(t.Notes)))

	if err := validation.ValidateTicker(t.Ticker); err != nil {
		return err
	}
	if _, err := validation.ValidateTradeDate(t.Date); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(t.Notes, validation.MaxNotesLength, "Notes"); err != nil {
		return err
	}
	return nil
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	sortOrder := r.URL.Query().Get("sort")
	if sortOrder == "" {
		prefs, err := h.prefsStore.Load(userID)
		if err != nil {
			logger.L.Warn("Failed to load preferences, using defaults", "userID", userID, "error", err)
			prefs = models.DefaultPreferences()
		}
		sortOrder = prefs.SortOrder
	}

	trades, err := h.analyticsService.ListTrades(userID, sortOrder)
	if err != nil {
		logger.L.Error("Failed to list trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to fetch trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	trade.UserID = userID
	trade.ID = 0

	if err := validateTradePayload(&trade); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.CreateTrade(database.DB, &trade); err != nil {
		logger.L.Error("Failed to create trade", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	h.analyticsService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(trade)
}

func (h *TradeHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	trade.ID = tradeID
	trade.UserID = userID

	if err := validateTradePayload(&trade); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.UpdateTrade(database.DB, &trade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update trade", "userID", userID, "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Failed to update trade", http.StatusInternalServerError)
		return
	}

	h.analyticsService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trade)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteTrade(database.DB, tradeID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete trade", "userID", userID, "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	h.analyticsService.InvalidateUserCache(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TradeHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	analytics, err := h.analyticsService.GetTradeAnalytics(userID)
	if err != nil {
		logger.L.Error("Failed to compute trade analytics", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analytics)
}

// calendarRequestParams resolves the calendar query parameters against the
// user's stored preferences, defaulting to the current month. On a bad
// parameter it writes the error response and returns ok=false.
func (h *TradeHandler) calendarRequestParams(w http.ResponseWriter, r *http.Request, userID int64) (month time.Month, year int, mode models.DisplayMode, rUnit float64, ok bool) {
	prefs, err := h.prefsStore.Load(userID)
	if err != nil {
		logger.L.Warn("Failed to load preferences, using defaults", "userID", userID, "error", err)
		prefs = models.DefaultPreferences()
	}

	now := time.Now()
	year = now.Year()
	month = now.Month()

	if yStr := r.URL.Query().Get("year"); yStr != "" {
		y, err := strconv.Atoi(yStr)
		if err != nil || y < 1970 || y > 9999 {
			utils.SendJSONError(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = y
	}
	if mStr := r.URL.Query().Get("month"); mStr != "" {
		m, err := strconv.Atoi(mStr)
		if err != nil || m < 1 || m > 12 {
			utils.SendJSONError(w, "Invalid month", http.StatusBadRequest)
			return
		}
		month = time.Month(m)
	}

	mode = prefs.CalendarMode
	if modeStr := r.URL.Query().Get("mode"); modeStr != "" {
		mode = models.DisplayMode(modeStr)
		if !mode.Valid() {
			utils.SendJSONError(w, "Invalid display mode", http.StatusBadRequest)
			return
		}
	}

	rUnit = prefs.RUnit
	if rStr := r.URL.Query().Get("r_unit"); rStr != "" {
		ru, err := strconv.ParseFloat(rStr, 64)
		if err != nil {
			utils.SendJSONError(w, "Invalid r_unit", http.StatusBadRequest)
			return
		}
		rUnit = ru
	}

	return month, year, mode, rUnit, true
}

func (h *TradeHandler) HandleGetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	month, year, mode, rUnit, ok := h.calendarRequestParams(w, r, userID)
	if !ok {
		return
	}

	grid, err := h.analyticsService.GetCalendar(userID, month, year, mode, rUnit)
	if err != nil {
		logger.L.Error("Failed to build calendar", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to build calendar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(grid)
}

// HandleExportCalendarCSV streams the month's per-day aggregates as a CSV
// download. Rows come from the flat date map rather than the weekday grid, so
// weekend trading days are included. Rendered values pass through
// formula-injection sanitization since they can start with + or -.
func (h *TradeHandler) HandleExportCalendarCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	month, year, mode, rUnit, ok := h.calendarRequestParams(w, r, userID)
	if !ok {
		return
	}

	grid, err := h.analyticsService.GetCalendar(userID, month, year, mode, rUnit)
	if err != nil {
		logger.L.Error("Failed to build calendar for export", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to export calendar", http.StatusInternalServerError)
		return
	}

	dates := make([]string, 0, len(grid.Days))
	for d := range grid.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"date", "pnl", "percentage_return", "r_return", "trade_count", "rendered"})
	for _, d := range dates {
		cell := grid.Days[d]
		rendered := analytics.FormatCellValue(mode, cell.Pnl, cell.PercentageReturn, rUnit)
		if err := cw.Write([]string{
			d,
			strconv.FormatFloat(cell.Pnl, 'f', 2, 64),
			strconv.FormatFloat(cell.PercentageReturn, 'f', 4, 64),
			strconv.FormatFloat(cell.RReturn, 'f', 4, 64),
			strconv.Itoa(cell.TradeCount),
			validation.SanitizeForFormulaInjection(rendered),
		}); err != nil {
			logger.L.Error("Failed to write CSV row", "userID", userID, "error", err)
			return
		}
	}

	logger.L.Info("Exported calendar to CSV", "userID", userID, "year", year, "month", int(month), "days", len(dates))
}

// HandleExportTradesCSV streams the user's trade log as a CSV download. Text
// fields pass through formula-injection sanitization first.
func (h *TradeHandler) HandleExportTradesCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	trades, err := h.analyticsService.ListTrades(userID, "date_asc")
	if err != nil {
		logger.L.Error("Failed to fetch trades for export", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to export trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"date", "ticker", "realized_pnl", "percent_diff", "notes"})
	for _, t := range trades {
		pnl := ""
		if t.RealizedPnl != nil {
			pnl = strconv.FormatFloat(*t.RealizedPnl, 'f', -1, 64)
		}
		pct := ""
		if t.PercentDiff != nil {
			pct = strconv.FormatFloat(*t.PercentDiff, 'f', -1, 64)
		}
		if err := cw.Write([]string{
			t.Date,
			validation.SanitizeForFormulaInjection(t.Ticker),
			pnl,
			pct,
			validation.SanitizeForFormulaInjection(t.Notes),
		}); err != nil {
			logger.L.Error("Failed to write CSV row", "userID", userID, "error", err)
			return
		}
	}

	logger.L.Info("Exported trades to CSV", "userID", userID, "count", len(trades))
}
