package registrations

import (
	"github.com/go-chi/chi/v5"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
)

// Routes returns the /registrations subrouter. Creation is public;
// listing and deletion are admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAdmin)
		pr.Get("/", h.HandleList)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
