package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

const previewLimit = 4

// PublicResourcesPreview shows the first few active member resources to
// anonymous visitors.
func (h *Handlers) PublicResourcesPreview(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceRepo.ListActive(r.Context(), previewLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list resources", CodeInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resources": resources,
	})
}

// Admin handlers

func (h *Handlers) ListResources(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	resources, err := h.resourceRepo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list resources", CodeInternalError)
		return
	}

	writeJSON(w, http.StatusOK, resources)
}

func (h *Handlers) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", CodeInvalidInput)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}

	resource, err := h.resourceRepo.Create(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create resource", CodeInternalError)
		return
	}

	writeJSON(w, http.StatusCreated, resource)
}

func (h *Handlers) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resource ID", CodeInvalidInput)
		return
	}

	var req domain.UpsertResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", CodeInvalidInput)
		return
	}

	req.Normalize()

	resource, err := h.resourceRepo.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update resource", CodeInternalError)
		return
	}
	if resource == nil {
		writeError(w, http.StatusNotFound, "Resource not found", CodeNotFound)
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

func (h *Handlers) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid resource ID", CodeInvalidInput)
		return
	}

	if err := h.resourceRepo.Delete(r.Context(), id); err != nil {
		if err == pgx.ErrNoRows {
			writeError(w, http.StatusNotFound, "Resource not found", CodeNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete resource", CodeInternalError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles listing all users (admin only)
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.accountService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", CodeInternalError)
		return
	}

	userInfos := make([]*domain.UserInfo, len(users))
	for i, user := range users {
		userInfos[i] = user.ToUserInfo()
	}

	writeJSON(w, http.StatusOK, userInfos)
}

// SendReminders triggers reminder emails for unverified accounts holding a
// still-valid token (admin only).
func (h *Handlers) SendReminders(w http.ResponseWriter, r *http.Request) {
	sent, err := h.accountService.SendReminders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send reminders", CodeInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Reminders sent",
		"sent":    sent,
	})
}

// PurgeExpiredTokens deletes verification tokens past their validity window
// (admin only).
func (h *Handlers) PurgeExpiredTokens(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.accountService.PurgeExpiredTokens(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to purge expired tokens", CodeInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
	})
}
