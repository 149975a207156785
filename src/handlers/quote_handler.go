// backend/src/handlers/quote_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/security/validation"
	"github.com/username/tradelens/backend/src/services"
	"github.com/username/tradelens/backend/src/utils"
)

const maxQuoteBatchSize = 25

type QuoteHandler struct {
	priceService services.PriceService
}

func NewQuoteHandler(priceService services.PriceService) *QuoteHandler {
	return &QuoteHandler{priceService: priceService}
}

// HandleGetQuotes resolves prices for a comma-separated tickers parameter.
func (h *QuoteHandler) HandleGetQuotes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tickers")
	if raw == "" {
		utils.SendJSONError(w, "tickers query parameter is required", http.StatusBadRequest)
		return
	}

	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if err := validation.ValidateTicker(t); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		tickers = append(tickers, t)
	}
	if len(tickers) == 0 {
		utils.SendJSONError(w, "No valid tickers provided", http.StatusBadRequest)
		return
	}
	if len(tickers) > maxQuoteBatchSize {
		utils.SendJSONError(w, "Too many tickers in one request", http.StatusBadRequest)
		return
	}

	result, err := h.priceService.GetQuotes(tickers)
	if err != nil {
		if errors.Is(err, services.ErrQuoteUnavailable) {
			utils.SendJSONError(w, "Quotes unavailable", http.StatusBadGateway)
			return
		}
		logger.L.Error("Quote lookup failed", "error", err)
		utils.SendJSONError(w, "Failed to fetch quotes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
