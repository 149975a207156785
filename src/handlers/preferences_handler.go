// backend/src/handlers/preferences_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/models"
	"github.com/username/tradelens/backend/src/utils"
)

type PreferencesHandler struct {
	store models.PreferencesStore
}

func NewPreferencesHandler(store models.PreferencesStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

func (h *PreferencesHandler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	prefs, err := h.store.Load(userID)
	if err != nil {
		logger.L.Error("Failed to load preferences", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to load preferences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}

func (h *PreferencesHandler) HandleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var prefs models.DisplayPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if prefs.SortOrder != "date_asc" && prefs.SortOrder != "date_desc" {
		utils.SendJSONError(w, "Invalid sort order", http.StatusBadRequest)
		return
	}
	if !prefs.CalendarMode.Valid() {
		utils.SendJSONError(w, "Invalid calendar mode", http.StatusBadRequest)
		return
	}
	if prefs.RUnit < 0 {
		utils.SendJSONError(w, "R unit cannot be negative", http.StatusBadRequest)
		return
	}

	if err := h.store.Save(userID, prefs); err != nil {
		logger.L.Error("Failed to save preferences", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to save preferences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}
