package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
)

// Routes returns the /profile subrouter. Creating a profile is the
// public sign-up path; editing one requires a verified member token.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Put("/", h.HandleUpdate)
	})

	return r
}
