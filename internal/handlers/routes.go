package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
)

// Routes wires the versioned API surface. Credential-adjacent endpoints sit
// behind the per-IP rate limiter.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.RateLimit("auth", 10, time.Minute))
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/resend-verification", h.ResendVerification)
	})

	r.Get("/verify-email/{token}", h.VerifyEmail)
	r.Get("/resources/preview", h.PublicResourcesPreview)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireJWT(""))
		r.Post("/logout", h.Logout)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Post("/favourites/products/{slug}", h.ToggleFavouriteProduct)
		r.Post("/favourites/prompts/{id}", h.ToggleSavedPrompt)
		r.Post("/favourites/templates/{slug}", h.ToggleSavedTemplate)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireJWT("admin"))
		r.Get("/users", h.ListUsers)
		r.Get("/resources", h.ListResources)
		r.Post("/resources", h.CreateResource)
		r.Put("/resources/{id}", h.UpdateResource)
		r.Delete("/resources/{id}", h.DeleteResource)
		r.Post("/verification/reminders", h.SendReminders)
		r.Delete("/verification/expired", h.PurgeExpiredTokens)
	})

	return r
}
