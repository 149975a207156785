// backend/src/handlers/asset_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/tradelens/backend/src/config"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/model"
	"github.com/username/tradelens/backend/src/models"
	"github.com/username/tradelens/backend/src/security/validation"
	"github.com/username/tradelens/backend/src/services"
	"github.com/username/tradelens/backend/src/utils"
)

type AssetHandler struct {
	visionService services.VisionService
}

func NewAssetHandler(visionService services.VisionService) *AssetHandler {
	return &AssetHandler{visionService: visionService}
}

// validateAssetPayload sanitizes and validates an asset before persistence.
// The field group not matching is_stock is zeroed so stale values never
// leak into valuations.
func validateAssetPayload(a *models.Asset) error {
	a.Name = validation.SanitizeText(strings.TrimSpace(a.Name))
	a.Ticker = strings.ToUpper(validation.SanitizeText(strings.TrimSpace(a.Ticker)))

	if err := validation.ValidateStringNotEmpty(a.Name, "Name"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(a.Name, validation.MaxNameLength, "Name"); err != nil {
		return err
	}

	if a.IsStock {
		if err := validation.ValidateTicker(a.Ticker); err != nil {
			return err
		}
		if err := validation.ValidateFloatRange(a.Shares, "Shares", 0, 1e12); err != nil {
			return err
		}
		if err := validation.ValidateFloatRange(a.CurrentPrice, "Current price", 0, 1e12); err != nil {
			return err
		}
		a.Balance = 0
		a.APY = 0
	} else {
		if err := validation.ValidateFloatRange(a.Balance, "Balance", 0, 1e15); err != nil {
			return err
		}
		if err := validation.ValidateAPY(a.APY); err != nil {
			return err
		}
		a.Ticker = ""
		a.Shares = 0
		a.CurrentPrice = 0
	}
	return nil
}

func (h *AssetHandler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	assets, err := model.GetAssetsByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list assets", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to fetch assets", http.StatusInternalServerError)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assets)
}

func (h *AssetHandler) HandleCreateAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	asset.UserID = userID
	asset.ID = 0

	if err := validateAssetPayload(&asset); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.CreateAsset(database.DB, &asset); err != nil {
		logger.L.Error("Failed to create asset", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create asset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(asset)
}

func (h *AssetHandler) HandleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	assetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	asset.ID = assetID
	asset.UserID = userID

	if err := validateAssetPayload(&asset); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.UpdateAsset(database.DB, &asset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Asset not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update asset", "userID", userID, "assetID", assetID, "error", err)
		utils.SendJSONError(w, "Failed to update asset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

func (h *AssetHandler) HandleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	assetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteAsset(database.DB, assetID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Asset not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete asset", "userID", userID, "assetID", assetID, "error", err)
		utils.SendJSONError(w, "Failed to delete asset", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleImportStatement runs a portfolio statement image through the vision
// service and returns the extracted assets for client-side review. Nothing is
// persisted here; the client confirms and posts assets individually.
func (h *AssetHandler) HandleImportStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if h.visionService == nil {
		utils.SendJSONError(w, "Statement import is not configured on this server", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxImageSizeBytes)

	var req struct {
		Image    string `json:"image"` // base64-encoded image bytes
		MimeType string `json:"mime_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body or image too large", http.StatusBadRequest)
		return
	}
	if req.Image == "" {
		utils.SendJSONError(w, "Image data is required", http.StatusBadRequest)
		return
	}

	assets, err := h.visionService.ParseStatement(r.Context(), req.Image, req.MimeType)
	if err != nil {
		if errors.Is(err, services.ErrImageParseFailed) {
			logger.L.Warn("Statement image parse failed", "userID", userID, "error", err)
			utils.SendJSONError(w, "Could not extract assets from the image", http.StatusUnprocessableEntity)
			return
		}
		logger.L.Error("Statement import failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to process statement image", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Statement image parsed", "userID", userID, "assetCount", len(assets))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"assets": assets,
	})
}
