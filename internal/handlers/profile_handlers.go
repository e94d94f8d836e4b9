package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aimarketing/accounts/internal/domain"
)

// Dashboard aggregates the signed-in member's purchased count, saved
// collections and active member resources.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", CodeUnauthorized)
		return
	}

	dashboard, err := h.profileService.GetDashboard(r.Context(), claims.Sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", CodeUnauthorized)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), claims.Sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", CodeUnauthorized)
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", CodeInvalidInput)
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), claims.Sub, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Your profile has been updated successfully.",
		"profile": profile,
	})
}
