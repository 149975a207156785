// backend/src/handlers/watchlist_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/username/tradelens/backend/src/config"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/model"
	"github.com/username/tradelens/backend/src/models"
	"github.com/username/tradelens/backend/src/security"
	"github.com/username/tradelens/backend/src/security/validation"
	"github.com/username/tradelens/backend/src/services"
	"github.com/username/tradelens/backend/src/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
)

type WatchlistHandler struct {
	authService  *security.AuthService
	priceService services.PriceService
	upgrader     websocket.Upgrader
}

func NewWatchlistHandler(authService *security.AuthService, priceService services.PriceService) *WatchlistHandler {
	return &WatchlistHandler{
		authService:  authService,
		priceService: priceService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == config.Cfg.FrontendBaseURL || origin == "http://localhost:3000"
			},
		},
	}
}

func (h *WatchlistHandler) HandleListWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	items, err := model.GetWatchlistByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list watchlist", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to fetch watchlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *WatchlistHandler) HandleAddWatchlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var item models.WatchlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	item.UserID = userID
	item.ID = 0

	item.Ticker = strings.ToUpper(validation.SanitizeText(strings.TrimSpace(item.Ticker)))
	item.Notes = validation.SanitizeText(validation.StripUnprintable(strings.TrimSpace(item.Notes)))
	if err := validation.ValidateTicker(item.Ticker); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(item.Notes, validation.MaxNotesLength, "Notes"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.CreateWatchlistItem(database.DB, &item); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			utils.SendJSONError(w, "Ticker already on watchlist", http.StatusConflict)
			return
		}
		logger.L.Error("Failed to add watchlist item", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to add to watchlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *WatchlistHandler) HandleDeleteWatchlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid watchlist item ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteWatchlistItem(database.DB, itemID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Watchlist item not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete watchlist item", "userID", userID, "itemID", itemID, "error", err)
		utils.SendJSONError(w, "Failed to delete watchlist item", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleWatchlistStream upgrades to a WebSocket and pushes quote snapshots
// for the user's watchlist on a fixed interval. Browsers cannot set an
// Authorization header on the upgrade request, so the access token travels
// in the token query parameter instead.
func (h *WatchlistHandler) HandleWatchlistStream(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		utils.SendJSONError(w, "Authentication token required", http.StatusUnauthorized)
		return
	}

	userIDStr, err := h.authService.ValidateToken(tokenString)
	if err != nil {
		logger.L.Warn("Watchlist stream token validation failed", "error", err)
		utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid user ID in token", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L.Warn("WebSocket upgrade failed", "userID", userID, "error", err)
		return
	}
	defer conn.Close()

	logger.L.Info("Watchlist stream opened", "userID", userID)

	done := make(chan struct{})

	// Read pump: we never expect client messages, but reading drains control
	// frames and detects the close.
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	quoteTicker := time.NewTicker(config.Cfg.QuoteRefreshInterval)
	defer quoteTicker.Stop()
	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()

	if err := h.pushQuotes(conn, userID); err != nil {
		logger.L.Debug("Watchlist stream closed on first push", "userID", userID, "error", err)
		return
	}

	for {
		select {
		case <-done:
			logger.L.Info("Watchlist stream closed by client", "userID", userID)
			return
		case <-quoteTicker.C:
			if err := h.pushQuotes(conn, userID); err != nil {
				logger.L.Debug("Watchlist stream write failed", "userID", userID, "error", err)
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WatchlistHandler) pushQuotes(conn *websocket.Conn, userID int64) error {
	items, err := model.GetWatchlistByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to load watchlist for stream", "userID", userID, "error", err)
		return nil // keep the connection; transient DB errors skip a tick
	}

	tickers := make([]string, 0, len(items))
	for _, item := range items {
		tickers = append(tickers, item.Ticker)
	}

	result, err := h.priceService.GetQuotes(tickers)
	if err != nil {
		logger.L.Warn("Quote fetch failed for stream", "userID", userID, "error", err)
		return nil
	}

	quotes := make([]models.WatchlistQuote, 0, len(tickers))
	for _, ticker := range tickers {
		if price, ok := result.Prices[ticker]; ok {
			quotes = append(quotes, models.WatchlistQuote{
				Ticker:    ticker,
				Price:     price,
				Timestamp: result.Timestamp,
			})
		}
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(map[string]interface{}{
		"quotes":         quotes,
		"failed_tickers": result.FailedTickers,
	})
}
