package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/aimarketing/accounts/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Register handles account creation. The account stays inactive until the
// emailed verification link is used.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", CodeInvalidInput)
		return
	}

	user, verifyURL, err := h.accountService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"message": "Registration successful. Please check your email to verify your account.",
		"user":    user.ToUserInfo(),
	}

	// Include verify URL in development mode
	if h.config.Email.DevMode {
		response["dev_verify_url"] = verifyURL
	}

	writeJSON(w, http.StatusCreated, response)
}

// VerifyEmail consumes the emailed token. Unknown and expired tokens get
// the same response on purpose.
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing verification token", CodeInvalidInput)
		return
	}

	user, err := h.accountService.VerifyEmail(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email verified successfully. Your account is now active.",
		"user":    user.ToUserInfo(),
	})
}

// ResendVerification re-issues the token for an unverified account. The
// response never reveals whether the email is registered.
func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required", CodeInvalidInput)
		return
	}

	if err := h.accountService.ResendVerification(r.Context(), req.Email); err != nil {
		logger.ErrorContext(r.Context(), "Failed to resend verification", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered and unverified, a new verification link is on its way.",
	})
}

// Login signs in with either username or email in one field.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", CodeInvalidInput)
		return
	}

	response, err := h.accountService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// Logout acknowledges sign-out. Sessions are stateless bearer tokens, so
// the client discards the token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "You have been logged out successfully.",
	})
}
