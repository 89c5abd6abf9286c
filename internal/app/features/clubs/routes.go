package clubs

import (
	"github.com/go-chi/chi/v5"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
)

// Routes returns the /clubs subrouter. Filing a request and listing
// approved clubs are public; moderation and the full listing are
// admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleListApproved)
	r.Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAdmin)
		pr.Get("/all", h.HandleListAll)
		pr.Patch("/{id}/status", h.HandleUpdateStatus)
	})

	return r
}
