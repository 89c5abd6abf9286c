package login

import "github.com/go-chi/chi/v5"

// Routes returns the /auth subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleMemberLogin)
	r.Post("/admin/login", h.HandleAdminLogin)
	r.Post("/logout", h.HandleLogout)
	return r
}
