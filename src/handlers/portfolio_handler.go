// backend/src/handlers/portfolio_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/services"
	"github.com/username/tradelens/backend/src/utils"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
}

func NewPortfolioHandler(portfolioService services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// HandleGetValuation returns the user's assets with computed values,
// allocations and the balance-weighted APY. Pass refresh=true to pull
// current market prices before valuing.
func (h *PortfolioHandler) HandleGetValuation(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"

	valuation, err := h.portfolioService.GetValuation(userID, refresh)
	if err != nil {
		logger.L.Error("Failed to compute portfolio valuation", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to compute portfolio value", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(valuation)
}
