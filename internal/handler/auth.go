package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/store"
)

type AuthHandler struct {
	householdStore *store.HouseholdStore
	logger         *slog.Logger
}

func NewAuthHandler(hs *store.HouseholdStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{householdStore: hs, logger: logger}
}

// Login verifies a shared access key. It never reveals whether a key is
// close to valid — just success plus the household name, or failure.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessKey string `json:"access_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.AccessKey = strings.TrimSpace(req.AccessKey)
	if req.AccessKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "access_key is required"})
		return
	}

	household, err := h.householdStore.GetByAccessKeyHash(auth.HashKey(req.AccessKey))
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if household == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"household_name": household.Name,
	})
}
