package clubmemberships

import "github.com/go-chi/chi/v5"

// Routes returns the /club-memberships subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{clubID}/join", h.HandleJoin)
	r.Post("/{clubID}/leave", h.HandleLeave)
	return r
}
