// backend/src/handlers/user_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/model"
	"github.com/username/tradelens/backend/src/security"
	"github.com/username/tradelens/backend/src/services"
	"github.com/username/tradelens/backend/src/utils"
	"golang.org/x/oauth2"
)

type contextKey string

const userIDContextKey contextKey = "userID"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var passwordRegex = regexp.MustCompile(`^.{6,}$`)

var googleOauthConfig *oauth2.Config

type UserHandler struct {
	authService *security.AuthService
	mfaService  *services.MFAService
	cache       *cache.Cache
}

func NewUserHandler(authService *security.AuthService, mfaService *services.MFAService, reportCache *cache.Cache) *UserHandler {
	return &UserHandler{
		authService: authService,
		mfaService:  mfaService,
		cache:       reportCache,
	}
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"auth_provider": user.AuthProvider,
		"mfa_enabled":   user.MfaEnabled,
	})
}

func (h *UserHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !passwordRegex.MatchString(req.NewPassword) {
		utils.SendJSONError(w, "New password must be at least 6 characters long", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	if user.AuthProvider != "local" {
		utils.SendJSONError(w, "Password change is not available for this account", http.StatusBadRequest)
		return
	}
	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		logger.L.Warn("Password change rejected: current password mismatch", "userID", userID)
		utils.SendJSONError(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	hashed, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		logger.L.Error("Failed to hash new password", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if err := model.UpdateUserPassword(database.DB, userID, hashed); err != nil {
		logger.L.Error("Failed to persist new password", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Password changed", "userID", userID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Password changed successfully"})
}

func (h *UserHandler) HandleSetupMFA(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	secret, qrCode, err := h.mfaService.GenerateMFASecret(user.Username)
	if err != nil {
		utils.SendJSONError(w, "Failed to generate MFA", http.StatusInternalServerError)
		return
	}

	// Store the secret but keep mfa_enabled off until the first code verifies.
	if err := model.SetMfaSecret(database.DB, userID, secret); err != nil {
		utils.SendJSONError(w, "Failed to save MFA secret", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"secret":  secret,
		"qr_code": qrCode,
	})
}

func (h *UserHandler) HandleActivateMFA(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	if user.MfaSecret == "" {
		utils.SendJSONError(w, "MFA setup has not been started", http.StatusBadRequest)
		return
	}

	if !h.mfaService.ValidateToken(user.MfaSecret, req.Code) {
		utils.SendJSONError(w, "Invalid MFA code", http.StatusUnauthorized)
		return
	}

	if err := model.EnableMfa(database.DB, userID); err != nil {
		logger.L.Error("Failed to enable MFA", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to enable MFA", http.StatusInternalServerError)
		return
	}

	logger.L.Info("MFA enabled", "userID", userID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "MFA enabled successfully"})
}
