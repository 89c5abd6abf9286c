package events

import (
	"github.com/go-chi/chi/v5"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
)

// Routes returns the /events subrouter. The active listing is public;
// everything else is admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleListActive)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAdmin)
		pr.Get("/all", h.HandleListAll)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
