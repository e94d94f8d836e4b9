package handlers

import (
	"net/http"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ToggleFavouriteProduct flips the product's membership in the member's
// favourites. XHR callers get JSON; browser form posts get a redirect back
// to the referring page.
func (h *Handlers) ToggleFavouriteProduct(w http.ResponseWriter, r *http.Request) {
	h.toggleFavourite(w, r, domain.KindProduct, chi.URLParam(r, "slug"))
}

func (h *Handlers) ToggleSavedPrompt(w http.ResponseWriter, r *http.Request) {
	h.toggleFavourite(w, r, domain.KindPrompt, chi.URLParam(r, "id"))
}

func (h *Handlers) ToggleSavedTemplate(w http.ResponseWriter, r *http.Request) {
	h.toggleFavourite(w, r, domain.KindTemplate, chi.URLParam(r, "slug"))
}

func (h *Handlers) toggleFavourite(w http.ResponseWriter, r *http.Request, kind domain.CatalogKind, ref string) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required", CodeUnauthorized)
		return
	}

	if ref == "" {
		writeError(w, http.StatusBadRequest, "Missing item identifier", CodeInvalidInput)
		return
	}

	result, err := h.favouriteService.Toggle(r.Context(), claims.Sub, kind, ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if isXHR(r) {
		payload := map[string]interface{}{
			"status": result.Status,
		}
		if kind == domain.KindProduct {
			payload["is_favourite"] = result.IsMember
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	redirectTo := r.Referer()
	if redirectTo == "" {
		redirectTo = "/v1/dashboard"
	}
	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
}
