package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/aimarketing/accounts/internal/repository"
	"github.com/aimarketing/accounts/internal/service"
	"github.com/aimarketing/accounts/pkg/auth"
	"github.com/aimarketing/accounts/pkg/config"
	"github.com/aimarketing/accounts/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	accountService   service.AccountService
	profileService   service.ProfileService
	favouriteService service.FavouriteService
	resourceRepo     repository.ResourceRepository
	rateLimitRepo    repository.RateLimitRepository
	config           *config.Config
}

func New(
	accountService service.AccountService,
	profileService service.ProfileService,
	favouriteService service.FavouriteService,
	resourceRepo repository.ResourceRepository,
	rateLimitRepo repository.RateLimitRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		accountService:   accountService,
		profileService:   profileService,
		favouriteService: favouriteService,
		resourceRepo:     resourceRepo,
		rateLimitRepo:    rateLimitRepo,
		config:           config,
	}
}

// Error codes returned in the JSON error envelope.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeNotActivated     = "NOT_ACTIVATED"
	CodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// RequireJWT authenticates the bearer token and optionally requires a role.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", CodeUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token", CodeUnauthorized)
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != "admin" {
				writeError(w, http.StatusForbidden, "Insufficient permissions", CodeForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit guards credential-adjacent endpoints per client IP.
func (h *Handlers) RateLimit(prefix string, requests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := prefix + ":" + getClientIP(r)

			allowed, err := h.rateLimitRepo.CheckRateLimit(r.Context(), key, requests, window)
			if err != nil {
				logger.ErrorContext(r.Context(), "Rate limit check failed", "error", err)
				// Allow request on error (fail open)
			} else if !allowed {
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", CodeRateLimit)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Helper functions

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// isXHR reports the request-type signal used to pick JSON over a redirect.
func isXHR(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code,
	})
}

// writeServiceError maps domain errors to HTTP responses. Token not-found
// and expired deliberately share one response body.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"code":   CodeValidationFailed,
			"fields": verr.Fields,
		})
	case errors.Is(err, domain.ErrTokenNotFound), errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, "This verification link is invalid or has expired.", CodeInvalidToken)
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password.", CodeUnauthorized)
	case errors.Is(err, domain.ErrNotActivated):
		writeError(w, http.StatusUnauthorized, "Account not activated. Please check your email for the verification link.", CodeNotActivated)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", CodeNotFound)
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong", CodeInternalError)
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
